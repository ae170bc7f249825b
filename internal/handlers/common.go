package handlers

import (
	"eventflex/internal/models"
	"eventflex/internal/utils"
	"eventflex/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// extractUserClaims returns the claims stored by the auth middleware.
func extractUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, err := utils.GetUserClaims(c)
	if err != nil || claims == nil {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}

// parseBody decodes the request body into dst; services validate it. An empty
// body leaves dst zeroed. On failure the error response has already been
// written and the returned error must be passed back to fiber as is.
func parseBody(c *fiber.Ctx, dst interface{}) (bool, error) {
	if len(c.Body()) == 0 {
		return true, nil
	}
	if err := c.BodyParser(dst); err != nil {
		return false, response.BadRequest(c, "invalid request body")
	}
	return true, nil
}

// pathID parses a positive numeric route parameter.
func pathID(c *fiber.Ctx, name string) (uint, bool) {
	return utils.ParseID(c.Params(name))
}

func invalidID(c *fiber.Ctx) error {
	return response.BadRequest(c, "invalid id")
}
