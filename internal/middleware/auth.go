// Package middleware provides the authentication and authorization handlers
// shared by every protected route group.
package middleware

import (
	"context"
	"strings"

	"eventflex/internal/apperr"
	"eventflex/internal/logger"
	"eventflex/internal/models"
	"eventflex/internal/services/audit"
	"eventflex/internal/utils"
	"eventflex/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// AccessCookie is the cookie the web client sends the access token in.
const AccessCookie = "accessToken"

// SessionValidator checks that a token's claims still describe a live session.
type SessionValidator interface {
	ValidateSession(ctx context.Context, claims *models.UserClaims) error
}

// AuthMiddleware validates access tokens and loads the caller's claims.
type AuthMiddleware struct {
	tokens   *utils.TokenManager
	sessions SessionValidator
}

func NewAuthMiddleware(tokens *utils.TokenManager, sessions SessionValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, sessions: sessions}
}

// Handler reads the token from the Authorization header or the access cookie
// and rejects it when the signature, expiry, token version or account status
// no longer hold.
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	raw := bearerToken(c.Get(fiber.HeaderAuthorization))
	if raw == "" {
		raw = c.Cookies(AccessCookie)
	}
	if raw == "" {
		return response.Unauthorized(c, "missing access token")
	}

	claims, err := m.tokens.ParseAccessToken(raw)
	if err != nil {
		logger.WithRequest(c).WithError(err).Debug("access token rejected")
		return response.Unauthorized(c, "invalid token")
	}

	if err := m.sessions.ValidateSession(c.UserContext(), claims); err != nil {
		status := apperr.StatusOf(err)
		if status >= fiber.StatusInternalServerError {
			return response.FromError(c, err)
		}
		return response.Error(c, fiber.StatusUnauthorized, apperr.MessageOf(err))
	}

	c.Locals("claims", claims)
	c.Locals("userID", claims.UserID)
	return c.Next()
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// RequireRole admits callers whose role is one of roles.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := utils.GetUserClaims(c)
		if err != nil {
			return response.Unauthorized(c, "unauthorized")
		}
		for _, r := range roles {
			if claims.Role == r {
				return c.Next()
			}
		}
		return response.Forbidden(c, "insufficient permissions")
	}
}

// RequirePermission admits callers holding permission. Admins hold all of them.
func RequirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := utils.GetUserClaims(c)
		if err != nil {
			return response.Unauthorized(c, "unauthorized")
		}
		if claims.Role == models.RoleAdmin || claims.HasPermission(permission) {
			return c.Next()
		}
		return response.Forbidden(c, "insufficient permissions")
	}
}

// RequestContext carries the caller's address into the request context for
// the audit trail.
func RequestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.SetUserContext(audit.WithIP(c.UserContext(), c.IP()))
		return c.Next()
	}
}
