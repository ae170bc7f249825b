package gateway

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// rateLimited throttles outbound calls to the provider. Webhook parsing is
// local and is not throttled.
type rateLimited struct {
	Gateway
	limiter *rate.Limiter
}

// WithRateLimit wraps gw; perSecond <= 0 disables throttling.
func WithRateLimit(gw Gateway, perSecond int) Gateway {
	if perSecond <= 0 {
		return gw
	}
	return &rateLimited{
		Gateway: gw,
		limiter: rate.NewLimiter(rate.Limit(perSecond), perSecond),
	}
}

func (g *rateLimited) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (*Order, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("gateway rate limit: %w", err)
	}
	return g.Gateway.CreateOrder(ctx, amount, currency, receipt, notes)
}

func (g *rateLimited) VerifyPayment(ctx context.Context, v Verification) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("gateway rate limit: %w", err)
	}
	return g.Gateway.VerifyPayment(ctx, v)
}
