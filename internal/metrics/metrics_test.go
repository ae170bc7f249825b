package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func value(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	return m.GetCounter().GetValue()
}

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/api/events/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/metrics", adaptor.HTTPHandler(Handler()))

	before := value(t, httpRequests.WithLabelValues("GET", "/api/events/:id", "204"))
	resp, err := app.Test(httptest.NewRequest("GET", "/api/events/17", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	after := value(t, httpRequests.WithLabelValues("GET", "/api/events/:id", "204"))
	assert.Equal(t, before+1, after)

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.Contains(string(body), "eventflex_http_requests_total"))
}

func TestWalletCollector(t *testing.T) {
	var c WalletCollector
	before := value(t, walletVolume.WithLabelValues("credit", "escrow_release"))
	c.RecordTransaction("credit", "escrow_release", 2500)
	assert.Equal(t, before+2500, value(t, walletVolume.WithLabelValues("credit", "escrow_release")))

	c.RecordOperationResult("withdraw", "success")
	assert.GreaterOrEqual(t, value(t, walletOperations.WithLabelValues("withdraw", "success")), 1.0)
}

func TestRecordJobRun(t *testing.T) {
	RecordJobRun("escrow_auto_release", 0, true)
	RecordJobRun("escrow_auto_release", time.Second, false)
	assert.Equal(t, 1.0, value(t, jobRuns.WithLabelValues("escrow_auto_release", "true")))
	assert.Equal(t, 1.0, value(t, jobRuns.WithLabelValues("escrow_auto_release", "false")))
}
