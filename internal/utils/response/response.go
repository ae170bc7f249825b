package response

import (
	"eventflex/internal/apperr"
	"eventflex/internal/logger"

	"github.com/gofiber/fiber/v2"
)

// Success writes the standard success envelope with status 200.
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// Created writes the success envelope with status 201.
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// Error writes the error envelope. The client shows "message" in its alert banners.
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, message)
}

func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, message)
}

func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, message)
}

// FromError maps a service error to its status. Errors without a status are
// logged and reported as 500.
func FromError(c *fiber.Ctx, err error) error {
	status := apperr.StatusOf(err)
	if status >= fiber.StatusInternalServerError {
		logger.WithRequest(c).WithError(err).Error("request failed")
	}
	return Error(c, status, apperr.MessageOf(err))
}
