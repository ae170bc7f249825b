// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "eventflex"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	walletOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wallet",
			Name:      "operations_total",
			Help:      "Wallet operations by outcome.",
		},
		[]string{"operation", "result"},
	)

	walletOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "wallet",
			Name:      "operation_duration_seconds",
			Help:      "Duration of wallet operations.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation"},
	)

	walletVolume = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wallet",
			Name:      "volume_paise_total",
			Help:      "Amount moved through wallets, in minor units.",
		},
		[]string{"type", "category"},
	)

	walletCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wallet",
			Name:      "cache_lookups_total",
			Help:      "Wallet cache lookups by result.",
		},
		[]string{"result"},
	)

	escrowTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "escrow",
			Name:      "transitions_total",
			Help:      "Escrow status transitions.",
		},
		[]string{"status"},
	)

	paymentOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "outcomes_total",
			Help:      "Gateway payment outcomes.",
		},
		[]string{"gateway", "outcome"},
	)

	jobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "runs_total",
			Help:      "Scheduled job runs.",
		},
		[]string{"job", "success"},
	)

	jobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "run_duration_seconds",
			Help:      "Duration of scheduled job runs.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"job"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		walletOperations,
		walletOperationDuration,
		walletVolume,
		walletCache,
		escrowTransitions,
		paymentOutcomes,
		jobRuns,
		jobDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency per route pattern.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}

		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		method := strings.ToUpper(c.Method())
		path := c.Route().Path

		httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		return err
	}
}

func RecordEscrowTransition(status string) {
	escrowTransitions.WithLabelValues(status).Inc()
}

func RecordPaymentOutcome(gateway, outcome string) {
	paymentOutcomes.WithLabelValues(gateway, outcome).Inc()
}

// RecordJobRun records metrics for one scheduled job execution.
func RecordJobRun(job string, duration time.Duration, success bool) {
	if duration <= 0 {
		duration = time.Millisecond
	}
	jobRuns.WithLabelValues(job, strconv.FormatBool(success)).Inc()
	jobDuration.WithLabelValues(job).Observe(duration.Seconds())
}

// WalletCollector implements the wallet service's MetricsCollector on the shared registry.
type WalletCollector struct{}

func (WalletCollector) RecordOperationDuration(operation string, d time.Duration) {
	walletOperationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (WalletCollector) RecordOperationResult(operation, result string) {
	walletOperations.WithLabelValues(operation, result).Inc()
}

func (WalletCollector) RecordCacheHit()  { walletCache.WithLabelValues("hit").Inc() }
func (WalletCollector) RecordCacheMiss() { walletCache.WithLabelValues("miss").Inc() }

func (WalletCollector) RecordTransaction(txType, category string, amount int64) {
	walletVolume.WithLabelValues(txType, category).Add(float64(amount))
}
