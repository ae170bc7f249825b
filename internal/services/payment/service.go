package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"eventflex/internal/apperr"
	"eventflex/internal/gateway"
	"eventflex/internal/logger"
	"eventflex/internal/metrics"
	"eventflex/internal/models"
	"eventflex/internal/repositories"
	"eventflex/internal/repositories/cache"
	"eventflex/internal/services/notification"
	"eventflex/internal/services/wallet"
	"eventflex/internal/utils"
	"eventflex/internal/validation"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const webhookDedupTTL = 72 * time.Hour

var (
	ErrPercentageSum    = apperr.BadRequest("organizer_percentage and gigs_percentage must add up to 100")
	ErrEventNotFound    = apperr.NotFound("event not found")
	ErrEventClosed      = apperr.Unprocessable("event is cancelled or completed")
	ErrAlreadyFunded    = apperr.Conflict("event already has a funded escrow")
	ErrPaymentNotFound  = apperr.NotFound("payment not found")
	ErrInvalidSignature = apperr.BadRequest("payment verification failed")
	ErrPaymentNotPaid   = apperr.Unprocessable("payment has not been completed")
	ErrGatewayFailure   = apperr.New(http.StatusBadGateway, "payment gateway unavailable, please try again")
)

type service struct {
	gateway  gateway.Gateway
	payments repositories.PaymentRepository
	escrows  repositories.EscrowRepository
	events   repositories.EventRepository
	tx       repositories.Transactor
	cache    cache.Cache
	wallets  wallet.Service
	notifier notification.Notifier
	currency string
	now      func() time.Time
}

type Dependencies struct {
	Gateway  gateway.Gateway
	Payments repositories.PaymentRepository
	Escrows  repositories.EscrowRepository
	Events   repositories.EventRepository
	Tx       repositories.Transactor
	Cache    cache.Cache
	Wallets  wallet.Service
	Notifier notification.Notifier
}

func NewService(deps Dependencies, currency string) Service {
	if currency == "" {
		currency = "INR"
	}
	return &service{
		gateway:  deps.Gateway,
		payments: deps.Payments,
		escrows:  deps.Escrows,
		events:   deps.Events,
		tx:       deps.Tx,
		cache:    deps.Cache,
		wallets:  deps.Wallets,
		notifier: deps.Notifier,
		currency: currency,
		now:      time.Now,
	}
}

func (s *service) SignatureHeader() string { return s.gateway.SignatureHeader() }

func (s *service) Deposit(ctx context.Context, hostID uint, req DepositRequest) (*DepositResult, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if req.OrganizerPercentage+req.GigsPercentage != 100 {
		return nil, ErrPercentageSum
	}

	event, err := s.events.GetByID(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if event.HostID != hostID {
		return nil, ErrEventNotFound
	}
	if event.Status == models.EventStatusCancelled || event.Status == models.EventStatusCompleted {
		return nil, ErrEventClosed
	}

	existing, err := s.escrows.GetActiveByEvent(ctx, event.ID)
	switch {
	case err == nil && existing.Status == models.EscrowFunded:
		return nil, ErrAlreadyFunded
	case err != nil && !errors.Is(err, repositories.ErrNotFound):
		return nil, err
	}

	receipt := utils.NewReference("rcpt")
	order, err := s.gateway.CreateOrder(ctx, req.Amount, s.currency, receipt, map[string]string{
		"event_id": strconv.FormatUint(uint64(event.ID), 10),
		"host_id":  strconv.FormatUint(uint64(hostID), 10),
	})
	if err != nil {
		logger.Log.WithError(err).WithField("event_id", event.ID).Error("failed to create gateway order")
		return nil, ErrGatewayFailure
	}

	var payment *models.Payment
	var escrow *models.Escrow
	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		// A checkout that was abandoned leaves an unpaid escrow behind; it is
		// superseded by the new order.
		if existing != nil && existing.Status == models.EscrowPendingPayment {
			stale, err := s.escrows.WithTx(tx).GetByIDForUpdate(ctx, existing.ID)
			if err != nil {
				return err
			}
			if stale.Status == models.EscrowFunded {
				return ErrAlreadyFunded
			}
			if stale.Status == models.EscrowPendingPayment {
				stale.Status = models.EscrowCancelled
				if err := s.escrows.WithTx(tx).Update(ctx, stale); err != nil {
					return err
				}
			}
		}

		escrow = &models.Escrow{
			EventID:             event.ID,
			HostID:              hostID,
			OrganizerID:         event.OrganizerID,
			Amount:              req.Amount,
			Currency:            s.currency,
			OrganizerPercentage: req.OrganizerPercentage,
			GigsPercentage:      req.GigsPercentage,
			Status:              models.EscrowPendingPayment,
		}
		if err := s.escrows.WithTx(tx).Create(ctx, escrow); err != nil {
			return fmt.Errorf("failed to create escrow: %w", err)
		}

		payment = &models.Payment{
			HostID:   hostID,
			EventID:  event.ID,
			EscrowID: escrow.ID,
			Gateway:  s.gateway.Name(),
			OrderID:  order.ID,
			Receipt:  receipt,
			Amount:   req.Amount,
			Currency: s.currency,
			Status:   models.PaymentCreated,
		}
		if err := s.payments.WithTx(tx).Create(ctx, payment); err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}

		escrow.PaymentID = payment.ID
		return s.escrows.WithTx(tx).Update(ctx, escrow)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordEscrowTransition(models.EscrowPendingPayment)
	metrics.RecordPaymentOutcome(s.gateway.Name(), models.PaymentCreated)
	logger.Log.WithFields(logrus.Fields{
		"payment_id": payment.ID,
		"escrow_id":  escrow.ID,
		"order_id":   order.ID,
		"amount":     req.Amount,
	}).Info("deposit order created")

	return &DepositResult{
		OrderID:      order.ID,
		Amount:       order.Amount,
		Currency:     order.Currency,
		Key:          order.KeyID,
		ClientSecret: order.ClientSecret,
		Gateway:      s.gateway.Name(),
		PaymentID:    payment.ID,
		EscrowID:     escrow.ID,
	}, nil
}

func (s *service) Verify(ctx context.Context, hostID uint, v gateway.Verification) (*models.Payment, error) {
	if err := validation.Struct(v); err != nil {
		return nil, err
	}
	if err := s.gateway.VerifyPayment(ctx, v); err != nil {
		metrics.RecordPaymentOutcome(s.gateway.Name(), "rejected")
		switch {
		case errors.Is(err, gateway.ErrInvalidSignature):
			return nil, ErrInvalidSignature
		case errors.Is(err, gateway.ErrPaymentNotPaid):
			return nil, ErrPaymentNotPaid
		}
		logger.Log.WithError(err).WithField("order_id", v.OrderID).Error("payment verification failed")
		return nil, ErrGatewayFailure
	}

	var payment *models.Payment
	var escrow *models.Escrow
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		p, err := s.payments.WithTx(tx).GetByOrderIDForUpdate(ctx, v.OrderID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}
		if p.HostID != hostID {
			return ErrPaymentNotFound
		}
		payment = p
		if p.Status == models.PaymentPaid {
			return nil
		}
		escrow, err = s.markPaid(ctx, tx, p, v.PaymentID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterPaid(ctx, payment, escrow)
	return payment, nil
}

func (s *service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ev, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, gateway.ErrInvalidSignature) {
			return ErrInvalidSignature
		}
		return apperr.BadRequest("malformed webhook payload")
	}
	log := logger.Log.WithFields(logrus.Fields{
		"gateway":  s.gateway.Name(),
		"event":    ev.Type,
		"order_id": ev.OrderID,
	})
	if ev.Outcome == gateway.OutcomeIgnored || ev.OrderID == "" {
		log.Debug("webhook ignored")
		return nil
	}

	dedupKey := cache.GenerateKey(cache.EntityWebhook, cache.KeyEvent, ev.ID)
	first, err := s.cache.MarkOnce(ctx, dedupKey, webhookDedupTTL)
	if err != nil {
		// The row lock and status checks below still keep this idempotent.
		log.WithError(err).Warn("webhook dedup unavailable")
	} else if !first {
		log.Debug("duplicate webhook delivery")
		return nil
	}

	var payment *models.Payment
	var escrow *models.Escrow
	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		p, err := s.payments.WithTx(tx).GetByOrderIDForUpdate(ctx, ev.OrderID)
		if err != nil {
			return err
		}
		if p.Status == models.PaymentPaid {
			return nil
		}
		switch ev.Outcome {
		case gateway.OutcomePaid:
			payment = p
			escrow, err = s.markPaid(ctx, tx, p, ev.PaymentID)
			return err
		case gateway.OutcomeFailed:
			p.Status = models.PaymentFailed
			p.FailureReason = ev.FailureReason
			if ev.PaymentID != "" {
				p.GatewayPaymentID = ev.PaymentID
			}
			if err := s.payments.WithTx(tx).Update(ctx, p); err != nil {
				return err
			}
			metrics.RecordPaymentOutcome(s.gateway.Name(), models.PaymentFailed)
			log.WithField("reason", ev.FailureReason).Info("payment failed")
		}
		return nil
	})
	if errors.Is(err, repositories.ErrNotFound) {
		log.Warn("webhook for unknown order")
		return nil
	}
	if err != nil {
		// Let the gateway's retry through.
		if first {
			if ferr := s.cache.Forget(ctx, dedupKey); ferr != nil {
				log.WithError(ferr).Warn("failed to clear webhook dedup key")
			}
		}
		return err
	}

	if payment != nil {
		s.afterPaid(ctx, payment, escrow)
	}
	return nil
}

// markPaid records the capture and funds the escrow. If the escrow was
// cancelled while the host was in checkout, the money goes to the host wallet.
func (s *service) markPaid(ctx context.Context, tx *gorm.DB, p *models.Payment, gatewayPaymentID string) (*models.Escrow, error) {
	now := s.now()
	p.Status = models.PaymentPaid
	p.FailureReason = ""
	p.PaidAt = &now
	if gatewayPaymentID != "" {
		p.GatewayPaymentID = gatewayPaymentID
	}
	if err := s.payments.WithTx(tx).Update(ctx, p); err != nil {
		return nil, err
	}

	escrow, err := s.escrows.WithTx(tx).GetByIDForUpdate(ctx, p.EscrowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load escrow %d: %w", p.EscrowID, err)
	}
	switch escrow.Status {
	case models.EscrowPendingPayment:
		escrow.Status = models.EscrowFunded
		escrow.FundedAt = &now
	case models.EscrowCancelled:
		_, err := s.wallets.CreditTx(ctx, tx, wallet.CreditRequest{
			UserID:      p.HostID,
			Amount:      p.Amount,
			Category:    models.CategoryEscrowRefund,
			Reference:   fmt.Sprintf("escrow:%d", escrow.ID),
			Description: "Deposit received after the escrow was cancelled",
		})
		if err != nil {
			return nil, err
		}
		escrow.Status = models.EscrowRefunded
		escrow.RefundedAt = &now
	default:
		return escrow, nil
	}
	if err := s.escrows.WithTx(tx).Update(ctx, escrow); err != nil {
		return nil, err
	}
	return escrow, nil
}

func (s *service) afterPaid(ctx context.Context, p *models.Payment, escrow *models.Escrow) {
	if escrow == nil {
		return
	}
	metrics.RecordPaymentOutcome(s.gateway.Name(), models.PaymentPaid)
	metrics.RecordEscrowTransition(escrow.Status)

	title, body := "Escrow funded", fmt.Sprintf("Your deposit of %d paise is held in escrow.", p.Amount)
	if escrow.Status == models.EscrowRefunded {
		s.wallets.Invalidate(ctx, p.HostID)
		title, body = "Deposit refunded", fmt.Sprintf("%d paise were credited to your wallet because the escrow was cancelled.", p.Amount)
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, p.HostID, models.NotifyPayment, title, body,
			models.JSON{"payment_id": p.ID, "escrow_id": escrow.ID, "event_id": p.EventID})
	}
	logger.Log.WithFields(logrus.Fields{
		"payment_id": p.ID,
		"escrow_id":  escrow.ID,
		"status":     escrow.Status,
	}).Info("payment captured")
}

func (s *service) ListPayments(ctx context.Context, hostID uint, limit, offset int) ([]models.Payment, int64, error) {
	return s.payments.ListByHost(ctx, hostID, limit, offset)
}
