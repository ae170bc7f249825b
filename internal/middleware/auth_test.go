package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventflex/internal/config"
	"eventflex/internal/models"
	"eventflex/internal/services/auth"
	"eventflex/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSessions struct{ err error }

func (s stubSessions) ValidateSession(context.Context, *models.UserClaims) error { return s.err }

func tokens() *utils.TokenManager {
	return utils.NewTokenManager(config.JWTConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    time.Hour,
		Issuer:        "test",
	})
}

func accessToken(t *testing.T, tm *utils.TokenManager, role string) string {
	t.Helper()
	access, _, err := tm.GenerateTokens(&models.UserClaims{
		UserID:       4,
		Role:         role,
		TokenVersion: 1,
		Permissions:  models.GetDefaultPermissions(role),
	})
	require.NoError(t, err)
	return access
}

func newApp(tm *utils.TokenManager, sessions SessionValidator, guards ...fiber.Handler) *fiber.App {
	app := fiber.New()
	handlers := append([]fiber.Handler{NewAuthMiddleware(tm, sessions).Handler}, guards...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("claims").(*models.UserClaims).Role)
	})
	app.Get("/private", handlers...)
	return app
}

func TestAuthMiddleware(t *testing.T) {
	tm := tokens()
	host := accessToken(t, tm, models.RoleHost)

	tests := []struct {
		name       string
		sessions   SessionValidator
		prepare    func(r *http.Request)
		wantStatus int
	}{
		{
			name:       "bearer header",
			sessions:   stubSessions{},
			prepare:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+host) },
			wantStatus: http.StatusOK,
		},
		{
			name:       "cookie",
			sessions:   stubSessions{},
			prepare:    func(r *http.Request) { r.AddCookie(&http.Cookie{Name: AccessCookie, Value: host}) },
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing token",
			sessions:   stubSessions{},
			prepare:    func(*http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			sessions:   stubSessions{},
			prepare:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "blocked account",
			sessions:   stubSessions{err: auth.ErrAccountBlocked},
			prepare:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+host) },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "stale token version",
			sessions:   stubSessions{err: auth.ErrSessionExpired},
			prepare:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+host) },
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp(tm, tt.sessions)
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			tt.prepare(req)
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestRequireRole(t *testing.T) {
	tm := tokens()
	app := newApp(tm, stubSessions{}, RequireRole(models.RoleOrganizer))

	for role, want := range map[string]int{
		models.RoleOrganizer: http.StatusOK,
		models.RoleGig:       http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer "+accessToken(t, tm, role))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, role)
	}
}

func TestRequirePermission(t *testing.T) {
	tm := tokens()
	app := newApp(tm, stubSessions{}, RequirePermission(models.PermissionEscrowWrite))

	for role, want := range map[string]int{
		models.RoleHost:      http.StatusOK,
		models.RoleAdmin:     http.StatusOK,
		models.RoleOrganizer: http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer "+accessToken(t, tm, role))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, role)
	}
}
