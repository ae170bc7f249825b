package handlers

import (
	"eventflex/internal/services/user"
	"eventflex/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService user.Service
}

func NewUserHandler(userService user.Service) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	profile, err := h.userService.GetProfile(c.UserContext(), claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Profile", profile)
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	var req user.UpdateProfileRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	profile, err := h.userService.UpdateProfile(c.UserContext(), claims.UserID, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Profile updated", profile)
}
