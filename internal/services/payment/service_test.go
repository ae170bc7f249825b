package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventflex/internal/gateway"
	"eventflex/internal/models"
	"eventflex/internal/repositories"
	"eventflex/internal/repositories/mocks"
	"eventflex/internal/services/wallet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeGateway struct {
	verifyErr error
	event     *gateway.WebhookEvent
	orders    int
}

func (g *fakeGateway) Name() string            { return "razorpay" }
func (g *fakeGateway) SignatureHeader() string { return "X-Razorpay-Signature" }

func (g *fakeGateway) CreateOrder(_ context.Context, amount int64, currency, receipt string, _ map[string]string) (*gateway.Order, error) {
	g.orders++
	return &gateway.Order{ID: "order_abc", Amount: amount, Currency: currency, Receipt: receipt, KeyID: "rzp_test"}, nil
}

func (g *fakeGateway) VerifyPayment(context.Context, gateway.Verification) error { return g.verifyErr }

func (g *fakeGateway) ParseWebhook([]byte, string) (*gateway.WebhookEvent, error) {
	if g.event == nil {
		return nil, gateway.ErrInvalidSignature
	}
	return g.event, nil
}

type fakeWallets struct {
	wallet.Service
	credits []wallet.CreditRequest
}

func (f *fakeWallets) CreditTx(_ context.Context, _ *gorm.DB, req wallet.CreditRequest) (*models.Wallet, error) {
	f.credits = append(f.credits, req)
	return &models.Wallet{UserID: req.UserID}, nil
}

func (f *fakeWallets) Invalidate(context.Context, ...uint) {}

type nopNotifier struct{ count int }

func (n *nopNotifier) Notify(context.Context, uint, string, string, string, models.JSON) { n.count++ }

type testDeps struct {
	gw       *fakeGateway
	payments *mocks.PaymentRepository
	escrows  *mocks.EscrowRepository
	events   *mocks.EventRepository
	cache    *mocks.Cache
	wallets  *fakeWallets
	notifier *nopNotifier
}

func newTestService(t *testing.T) (*service, *testDeps) {
	t.Helper()
	d := &testDeps{
		gw:       &fakeGateway{},
		payments: new(mocks.PaymentRepository),
		escrows:  new(mocks.EscrowRepository),
		events:   new(mocks.EventRepository),
		cache:    new(mocks.Cache),
		wallets:  &fakeWallets{},
		notifier: &nopNotifier{},
	}
	svc := NewService(Dependencies{
		Gateway:  d.gw,
		Payments: d.payments,
		Escrows:  d.escrows,
		Events:   d.events,
		Tx:       mocks.Transactor{},
		Cache:    d.cache,
		Wallets:  d.wallets,
		Notifier: d.notifier,
	}, "INR").(*service)
	svc.now = func() time.Time { return time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC) }
	return svc, d
}

func hostEvent(status string) *models.Event {
	ev := &models.Event{HostID: 1, Title: "Expo", Status: status}
	ev.ID = 9
	return ev
}

func TestDeposit(t *testing.T) {
	svc, d := newTestService(t)

	d.events.On("GetByID", mock.Anything, uint(9)).Return(hostEvent(models.EventStatusPublished), nil)
	d.escrows.On("GetActiveByEvent", mock.Anything, uint(9)).Return(nil, repositories.ErrNotFound)
	d.escrows.On("Create", mock.Anything, mock.AnythingOfType("*models.Escrow")).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Escrow).ID = 3
	}).Return(nil)
	d.payments.On("Create", mock.Anything, mock.AnythingOfType("*models.Payment")).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Payment).ID = 4
	}).Return(nil)
	d.escrows.On("Update", mock.Anything, mock.MatchedBy(func(e *models.Escrow) bool {
		return e.PaymentID == 4 && e.Status == models.EscrowPendingPayment
	})).Return(nil)

	res, err := svc.Deposit(context.Background(), 1, DepositRequest{
		EventID: 9, Amount: 500000, OrganizerPercentage: 20, GigsPercentage: 80,
	})
	require.NoError(t, err)
	assert.Equal(t, "order_abc", res.OrderID)
	assert.Equal(t, int64(500000), res.Amount)
	assert.Equal(t, "INR", res.Currency)
	assert.Equal(t, "rzp_test", res.Key)
	assert.Equal(t, uint(4), res.PaymentID)
	assert.Equal(t, uint(3), res.EscrowID)
}

func TestDeposit_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		req     DepositRequest
		setup   func(d *testDeps)
		wantErr error
	}{
		{
			name:    "percentages do not add up",
			req:     DepositRequest{EventID: 9, Amount: 1000, OrganizerPercentage: 30, GigsPercentage: 60},
			wantErr: ErrPercentageSum,
		},
		{
			name: "someone else's event",
			req:  DepositRequest{EventID: 9, Amount: 1000, OrganizerPercentage: 30, GigsPercentage: 70},
			setup: func(d *testDeps) {
				ev := hostEvent(models.EventStatusDraft)
				ev.HostID = 2
				d.events.On("GetByID", mock.Anything, uint(9)).Return(ev, nil)
			},
			wantErr: ErrEventNotFound,
		},
		{
			name: "cancelled event",
			req:  DepositRequest{EventID: 9, Amount: 1000, OrganizerPercentage: 30, GigsPercentage: 70},
			setup: func(d *testDeps) {
				d.events.On("GetByID", mock.Anything, uint(9)).Return(hostEvent(models.EventStatusCancelled), nil)
			},
			wantErr: ErrEventClosed,
		},
		{
			name: "already funded",
			req:  DepositRequest{EventID: 9, Amount: 1000, OrganizerPercentage: 30, GigsPercentage: 70},
			setup: func(d *testDeps) {
				d.events.On("GetByID", mock.Anything, uint(9)).Return(hostEvent(models.EventStatusPublished), nil)
				d.escrows.On("GetActiveByEvent", mock.Anything, uint(9)).Return(&models.Escrow{Status: models.EscrowFunded}, nil)
			},
			wantErr: ErrAlreadyFunded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newTestService(t)
			if tt.setup != nil {
				tt.setup(d)
			}
			_, err := svc.Deposit(context.Background(), 1, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, d.gw.orders)
		})
	}
}

func TestDeposit_BelowMinimum(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Deposit(context.Background(), 1, DepositRequest{EventID: 9, Amount: 50, OrganizerPercentage: 50, GigsPercentage: 50})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount")
}

func pendingPayment() *models.Payment {
	p := &models.Payment{HostID: 1, EventID: 9, EscrowID: 3, OrderID: "order_abc", Amount: 500000, Status: models.PaymentCreated}
	p.ID = 4
	return p
}

func pendingEscrow() *models.Escrow {
	e := &models.Escrow{EventID: 9, HostID: 1, Amount: 500000, Status: models.EscrowPendingPayment}
	e.ID = 3
	return e
}

func TestVerify(t *testing.T) {
	svc, d := newTestService(t)

	d.payments.On("GetByOrderIDForUpdate", mock.Anything, "order_abc").Return(pendingPayment(), nil)
	d.payments.On("Update", mock.Anything, mock.MatchedBy(func(p *models.Payment) bool {
		return p.Status == models.PaymentPaid && p.GatewayPaymentID == "pay_1" && p.PaidAt != nil
	})).Return(nil)
	d.escrows.On("GetByIDForUpdate", mock.Anything, uint(3)).Return(pendingEscrow(), nil)
	d.escrows.On("Update", mock.Anything, mock.MatchedBy(func(e *models.Escrow) bool {
		return e.Status == models.EscrowFunded && e.FundedAt != nil
	})).Return(nil)

	p, err := svc.Verify(context.Background(), 1, gateway.Verification{OrderID: "order_abc", PaymentID: "pay_1", Signature: "sig"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, p.Status)
	assert.Equal(t, 1, d.notifier.count)
}

func TestVerify_Idempotent(t *testing.T) {
	svc, d := newTestService(t)
	paid := pendingPayment()
	paid.Status = models.PaymentPaid
	d.payments.On("GetByOrderIDForUpdate", mock.Anything, "order_abc").Return(paid, nil)

	p, err := svc.Verify(context.Background(), 1, gateway.Verification{OrderID: "order_abc", PaymentID: "pay_1", Signature: "sig"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, p.Status)
	d.payments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	assert.Zero(t, d.notifier.count)
}

func TestVerify_BadSignature(t *testing.T) {
	svc, d := newTestService(t)
	d.gw.verifyErr = gateway.ErrInvalidSignature

	_, err := svc.Verify(context.Background(), 1, gateway.Verification{OrderID: "order_abc", PaymentID: "pay_1", Signature: "bad"})
	assert.ErrorIs(t, err, ErrInvalidSignature)
	d.payments.AssertNotCalled(t, "GetByOrderIDForUpdate", mock.Anything, mock.Anything)
}

func TestVerify_LateCaptureOfCancelledEscrow(t *testing.T) {
	svc, d := newTestService(t)
	cancelled := pendingEscrow()
	cancelled.Status = models.EscrowCancelled

	d.payments.On("GetByOrderIDForUpdate", mock.Anything, "order_abc").Return(pendingPayment(), nil)
	d.payments.On("Update", mock.Anything, mock.Anything).Return(nil)
	d.escrows.On("GetByIDForUpdate", mock.Anything, uint(3)).Return(cancelled, nil)
	d.escrows.On("Update", mock.Anything, mock.MatchedBy(func(e *models.Escrow) bool {
		return e.Status == models.EscrowRefunded
	})).Return(nil)

	_, err := svc.Verify(context.Background(), 1, gateway.Verification{OrderID: "order_abc", PaymentID: "pay_1", Signature: "sig"})
	require.NoError(t, err)
	require.Len(t, d.wallets.credits, 1)
	assert.Equal(t, models.CategoryEscrowRefund, d.wallets.credits[0].Category)
	assert.Equal(t, int64(500000), d.wallets.credits[0].Amount)
}

func TestHandleWebhook(t *testing.T) {
	t.Run("duplicate delivery is ignored", func(t *testing.T) {
		svc, d := newTestService(t)
		d.gw.event = &gateway.WebhookEvent{ID: "evt_1", OrderID: "order_abc", Outcome: gateway.OutcomePaid}
		d.cache.On("MarkOnce", mock.Anything, "webhook:event:evt_1", webhookDedupTTL).Return(false, nil)

		require.NoError(t, svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"))
		d.payments.AssertNotCalled(t, "GetByOrderIDForUpdate", mock.Anything, mock.Anything)
	})

	t.Run("failed payment", func(t *testing.T) {
		svc, d := newTestService(t)
		d.gw.event = &gateway.WebhookEvent{ID: "evt_2", OrderID: "order_abc", PaymentID: "pay_2", Outcome: gateway.OutcomeFailed, FailureReason: "card declined"}
		d.cache.On("MarkOnce", mock.Anything, "webhook:event:evt_2", webhookDedupTTL).Return(true, nil)
		d.payments.On("GetByOrderIDForUpdate", mock.Anything, "order_abc").Return(pendingPayment(), nil)
		d.payments.On("Update", mock.Anything, mock.MatchedBy(func(p *models.Payment) bool {
			return p.Status == models.PaymentFailed && p.FailureReason == "card declined"
		})).Return(nil)

		require.NoError(t, svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"))
		d.payments.AssertExpectations(t)
	})

	t.Run("retry after failed delivery is processed", func(t *testing.T) {
		svc, d := newTestService(t)
		d.gw.event = &gateway.WebhookEvent{ID: "evt_4", OrderID: "order_abc", PaymentID: "pay_4", Outcome: gateway.OutcomePaid}
		d.cache.On("MarkOnce", mock.Anything, "webhook:event:evt_4", webhookDedupTTL).Return(true, nil).Twice()
		d.cache.On("Forget", mock.Anything, "webhook:event:evt_4").Return(nil).Once()
		d.payments.On("GetByOrderIDForUpdate", mock.Anything, "order_abc").Return(nil, errors.New("connection reset")).Once()

		require.Error(t, svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"))
		d.cache.AssertCalled(t, "Forget", mock.Anything, "webhook:event:evt_4")

		var saved *models.Payment
		d.payments.On("GetByOrderIDForUpdate", mock.Anything, "order_abc").Return(pendingPayment(), nil).Once()
		d.payments.On("Update", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			saved = args.Get(1).(*models.Payment)
		}).Return(nil)
		d.escrows.On("GetByIDForUpdate", mock.Anything, uint(3)).Return(pendingEscrow(), nil)
		d.escrows.On("Update", mock.Anything, mock.Anything).Return(nil)

		require.NoError(t, svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"))
		require.NotNil(t, saved)
		assert.Equal(t, models.PaymentPaid, saved.Status)
		assert.Equal(t, "pay_4", saved.GatewayPaymentID)
		d.cache.AssertExpectations(t)
	})

	t.Run("unknown order", func(t *testing.T) {
		svc, d := newTestService(t)
		d.gw.event = &gateway.WebhookEvent{ID: "evt_3", OrderID: "order_zzz", Outcome: gateway.OutcomePaid}
		d.cache.On("MarkOnce", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
		d.payments.On("GetByOrderIDForUpdate", mock.Anything, "order_zzz").Return(nil, repositories.ErrNotFound)

		assert.NoError(t, svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"))
	})

	t.Run("bad signature", func(t *testing.T) {
		svc, _ := newTestService(t)
		err := svc.HandleWebhook(context.Background(), []byte(`{}`), "nope")
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})
}
