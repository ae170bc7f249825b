package handlers

import (
	"time"

	"eventflex/internal/config"
	"eventflex/internal/middleware"
	"eventflex/internal/models"
	"eventflex/internal/services/auth"
	"eventflex/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

const refreshCookie = "refreshToken"

type AuthHandler struct {
	authService auth.Service
	jwt         config.JWTConfig
}

func NewAuthHandler(authService auth.Service, jwt config.JWTConfig) *AuthHandler {
	return &AuthHandler{authService: authService, jwt: jwt}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req auth.RegisterRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	user, err := h.authService.Register(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Registration successful", user)
}

// Login authenticates by email or phone and sets the auth cookies.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req auth.LoginRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	user, tokens, err := h.authService.Login(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}

	h.setAuthCookies(c, tokens)
	return response.Success(c, "Login successful", fiber.Map{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"user": fiber.Map{
			"id":          user.ID,
			"name":        user.Name,
			"email":       user.Email,
			"role":        user.Role,
			"kyc_status":  user.KYCStatus,
			"permissions": models.GetDefaultPermissions(user.Role),
		},
	})
}

// RefreshToken reads the refresh token from its cookie, falling back to the body.
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	token := c.Cookies(refreshCookie)
	if token == "" {
		var input struct {
			RefreshToken string `json:"refresh_token"`
		}
		_ = c.BodyParser(&input)
		token = input.RefreshToken
	}
	if token == "" {
		return response.Unauthorized(c, "refresh token not provided")
	}

	tokens, err := h.authService.RefreshTokens(c.UserContext(), token)
	if err != nil {
		return response.FromError(c, err)
	}

	h.setAuthCookies(c, tokens)
	return response.Success(c, "Token refreshed", tokens)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	if err := h.authService.Logout(c.UserContext(), claims.UserID); err != nil {
		return response.FromError(c, err)
	}

	h.clearAuthCookies(c)
	return response.Success(c, "Successfully logged out", nil)
}

// ChangePassword signs the user out everywhere, this session included.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	var req auth.ChangePasswordRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	if err := h.authService.ChangePassword(c.UserContext(), claims.UserID, req); err != nil {
		return response.FromError(c, err)
	}

	h.clearAuthCookies(c)
	return response.Success(c, "Password changed successfully", nil)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	user, err := h.authService.Me(c.UserContext(), claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Current user", fiber.Map{
		"user":        user,
		"permissions": claims.Permissions,
	})
}

func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, tokens *auth.TokenPair) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AccessCookie,
		Value:    tokens.AccessToken,
		HTTPOnly: true,
		Secure:   config.IsProduction(),
		Path:     "/",
		SameSite: fiber.CookieSameSiteStrictMode,
		MaxAge:   int(h.jwt.AccessTTL.Seconds()),
	})
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookie,
		Value:    tokens.RefreshToken,
		HTTPOnly: true,
		Secure:   config.IsProduction(),
		Path:     "/",
		SameSite: fiber.CookieSameSiteStrictMode,
		MaxAge:   int(h.jwt.RefreshTTL.Seconds()),
	})
}

func (h *AuthHandler) clearAuthCookies(c *fiber.Ctx) {
	for _, name := range []string{middleware.AccessCookie, refreshCookie} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Expires:  time.Now().Add(-time.Hour),
			HTTPOnly: true,
			Secure:   config.IsProduction(),
			Path:     "/",
		})
	}
}
