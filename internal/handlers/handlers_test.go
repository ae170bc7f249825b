package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eventflex/internal/models"
	"eventflex/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWallets struct {
	wallet.Service
	gotUser   uint
	gotAmount int64
	err       error
}

func (f *fakeWallets) Withdraw(_ context.Context, userID uint, amount int64) (*models.Withdrawal, error) {
	f.gotUser, f.gotAmount = userID, amount
	if f.err != nil {
		return nil, f.err
	}
	return &models.Withdrawal{UserID: userID, Amount: amount, Status: models.WithdrawalRequested}, nil
}

// withClaims stands in for the auth middleware.
func withClaims(userID uint, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("claims", &models.UserClaims{UserID: userID, Role: role})
		c.Locals("userID", userID)
		return c.Next()
	}
}

func decode(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestWithdraw(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"created", `{"amount":25000}`, nil, http.StatusCreated, "Withdrawal requested"},
		{"malformed body", `{"amount":`, nil, http.StatusBadRequest, "invalid request body"},
		{"kyc missing", `{"amount":25000}`, wallet.ErrKYCRequired, http.StatusForbidden, wallet.ErrKYCRequired.Message},
		{"insufficient", `{"amount":25000}`, wallet.ErrInsufficientBalance, http.StatusUnprocessableEntity, wallet.ErrInsufficientBalance.Message},
		{"unexpected", `{"amount":25000}`, errors.New("db gone"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeWallets{err: tt.err}
			app := fiber.New()
			app.Post("/wallet/withdraw", withClaims(9, models.RoleGig), NewWalletHandler(svc).Withdraw)

			req := httptest.NewRequest(http.MethodPost, "/wallet/withdraw", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body := decode(t, resp.Body)
			assert.Equal(t, tt.wantMsg, body["message"])
			if tt.wantStatus == http.StatusCreated {
				assert.Equal(t, uint(9), svc.gotUser)
				assert.Equal(t, int64(25000), svc.gotAmount)
			}
		})
	}
}

func TestWithdraw_RequiresClaims(t *testing.T) {
	app := fiber.New()
	app.Post("/wallet/withdraw", NewWalletHandler(&fakeWallets{}).Withdraw)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/wallet/withdraw", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealthCheck(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("refused") }

	app := fiber.New()
	app.Get("/up", NewHealthHandler("1.0.0", map[string]Pinger{"database": ok, "redis": ok}).HealthCheck)
	app.Get("/down", NewHealthHandler("1.0.0", map[string]Pinger{"database": ok, "mongo": down}).HealthCheck)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/up", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/down", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	body := decode(t, resp.Body)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "unavailable", body["services"].(map[string]interface{})["mongo"])
}

func TestPathIDRejectsGarbage(t *testing.T) {
	app := fiber.New()
	app.Get("/escrows/:id", withClaims(1, models.RoleHost), NewPaymentHandler(nil, nil).GetEscrow)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/escrows/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
