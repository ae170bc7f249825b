// Package event manages the host's event lifecycle.
package event

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventflex/internal/apperr"
	"eventflex/internal/logger"
	"eventflex/internal/models"
	"eventflex/internal/repositories"
	"eventflex/internal/services/escrow"
	"eventflex/internal/services/notification"
	"eventflex/internal/validation"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Transition targets accepted by Transition.
const (
	ActionPublish  = "publish"
	ActionStart    = "start"
	ActionComplete = "complete"
	ActionCancel   = "cancel"
)

var actionTargets = map[string]string{
	ActionPublish:  models.EventStatusPublished,
	ActionStart:    models.EventStatusInProgress,
	ActionComplete: models.EventStatusCompleted,
	ActionCancel:   models.EventStatusCancelled,
}

var (
	ErrEventNotFound     = apperr.NotFound("event not found")
	ErrNotEditable       = apperr.Unprocessable("only draft or published events can be edited")
	ErrNotDraft          = apperr.Unprocessable("only draft events can be deleted")
	ErrInvalidTransition = apperr.Unprocessable("event cannot move to that status")
	ErrUnknownAction     = apperr.BadRequest("unknown event action")
	ErrStartInPast       = apperr.BadRequest("starts_at must be in the future")
	ErrOrganizerInvalid  = apperr.BadRequest("organizer_id must belong to an active organizer")
	ErrOrganizerLocked   = apperr.Conflict("the current organizer already created a pool for this event")
	ErrEndBeforeStart    = apperr.BadRequest("ends_at must be after starts_at")
)

type Service interface {
	Create(ctx context.Context, hostID uint, req EventRequest) (*models.Event, error)
	Get(ctx context.Context, hostID, id uint) (*models.Event, error)
	List(ctx context.Context, f repositories.EventFilter, limit, offset int) ([]models.Event, int64, error)
	Update(ctx context.Context, hostID, id uint, req EventRequest) (*models.Event, error)
	Delete(ctx context.Context, hostID, id uint) error
	// Transition applies publish, start, complete or cancel. Cancelling
	// refunds or cancels the event's escrow in the same transaction.
	Transition(ctx context.Context, hostID, id uint, action string) (*models.Event, error)
	AssignOrganizer(ctx context.Context, hostID, id, organizerID uint) (*models.Event, error)
	// GetPublished returns an event visible to every signed-in user.
	GetPublished(ctx context.Context, id uint) (*models.Event, error)
}

type EventRequest struct {
	Title        string    `json:"title" validate:"required,min=3,max=150"`
	Description  string    `json:"description" validate:"max=5000"`
	Venue        string    `json:"venue" validate:"required,max=200"`
	City         string    `json:"city" validate:"required,max=100"`
	StartsAt     time.Time `json:"starts_at" validate:"required"`
	EndsAt       time.Time `json:"ends_at" validate:"required"`
	Budget       int64     `json:"budget" validate:"gte=0"`
	RequiredGigs int       `json:"required_gigs" validate:"gte=0,lte=1000"`
	Skills       []string  `json:"skills" validate:"omitempty,max=20,dive,min=1,max=50"`
}

type service struct {
	events   repositories.EventRepository
	pools    repositories.PoolRepository
	users    repositories.UserRepository
	tx       repositories.Transactor
	escrow   escrow.Service
	notifier notification.Notifier
	now      func() time.Time
}

type Dependencies struct {
	Events   repositories.EventRepository
	Pools    repositories.PoolRepository
	Users    repositories.UserRepository
	Tx       repositories.Transactor
	Escrow   escrow.Service
	Notifier notification.Notifier
}

func NewService(deps Dependencies) Service {
	return &service{
		events:   deps.Events,
		pools:    deps.Pools,
		users:    deps.Users,
		tx:       deps.Tx,
		escrow:   deps.Escrow,
		notifier: deps.Notifier,
		now:      time.Now,
	}
}

func (s *service) check(req EventRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}
	if !req.EndsAt.After(req.StartsAt) {
		return ErrEndBeforeStart
	}
	return nil
}

func (s *service) Create(ctx context.Context, hostID uint, req EventRequest) (*models.Event, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	if !req.StartsAt.After(s.now()) {
		return nil, ErrStartInPast
	}

	event := &models.Event{
		HostID: hostID,
		Status: models.EventStatusDraft,
	}
	apply(event, req)
	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

func (s *service) Get(ctx context.Context, hostID, id uint) (*models.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if hostID != 0 && event.HostID != hostID {
		return nil, ErrEventNotFound
	}
	return event, nil
}

func (s *service) GetPublished(ctx context.Context, id uint) (*models.Event, error) {
	event, err := s.Get(ctx, 0, id)
	if err != nil {
		return nil, err
	}
	if event.Status != models.EventStatusPublished {
		return nil, ErrEventNotFound
	}
	return event, nil
}

func (s *service) List(ctx context.Context, f repositories.EventFilter, limit, offset int) ([]models.Event, int64, error) {
	return s.events.List(ctx, f, limit, offset)
}

func (s *service) Update(ctx context.Context, hostID, id uint, req EventRequest) (*models.Event, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	event, err := s.Get(ctx, hostID, id)
	if err != nil {
		return nil, err
	}
	if !event.Editable() {
		return nil, ErrNotEditable
	}
	if !req.StartsAt.Equal(event.StartsAt) && !req.StartsAt.After(s.now()) {
		return nil, ErrStartInPast
	}

	apply(event, req)
	if err := s.events.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return event, nil
}

func (s *service) Delete(ctx context.Context, hostID, id uint) error {
	event, err := s.Get(ctx, hostID, id)
	if err != nil {
		return err
	}
	if event.Status != models.EventStatusDraft {
		return ErrNotDraft
	}
	return s.events.Delete(ctx, event.ID)
}

func (s *service) Transition(ctx context.Context, hostID, id uint, action string) (*models.Event, error) {
	target, ok := actionTargets[action]
	if !ok {
		return nil, ErrUnknownAction
	}

	var event *models.Event
	var refunded *models.Escrow
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		e, err := s.events.WithTx(tx).GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrEventNotFound
			}
			return err
		}
		if hostID != 0 && e.HostID != hostID {
			return ErrEventNotFound
		}
		if !e.CanTransition(target) {
			return ErrInvalidTransition
		}
		if target == models.EventStatusPublished && !e.StartsAt.After(s.now()) {
			return ErrStartInPast
		}

		e.Status = target
		if target == models.EventStatusCompleted {
			now := s.now()
			e.CompletedAt = &now
		}
		if err := s.events.WithTx(tx).Update(ctx, e); err != nil {
			return err
		}

		if target == models.EventStatusCancelled || target == models.EventStatusCompleted {
			if err := s.closePool(ctx, tx, e.ID); err != nil {
				return err
			}
		}
		if target == models.EventStatusCancelled {
			refunded, err = s.escrow.RefundEventTx(ctx, tx, e.ID, "event cancelled")
			if err != nil {
				return fmt.Errorf("failed to refund escrow: %w", err)
			}
		}
		event = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.escrow.AfterRefund(ctx, hostID, refunded, "event cancelled")
	logger.Log.WithFields(logrus.Fields{
		"event_id": event.ID,
		"status":   event.Status,
	}).Info("event status changed")
	return event, nil
}

func (s *service) closePool(ctx context.Context, tx *gorm.DB, eventID uint) error {
	pool, err := s.pools.WithTx(tx).GetByEventID(ctx, eventID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if pool.Status == models.PoolStatusClosed {
		return nil
	}
	pool.Status = models.PoolStatusClosed
	return s.pools.WithTx(tx).Update(ctx, pool)
}

func (s *service) AssignOrganizer(ctx context.Context, hostID, id, organizerID uint) (*models.Event, error) {
	organizer, err := s.users.GetByID(ctx, organizerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrganizerInvalid
		}
		return nil, err
	}
	if organizer.Role != models.RoleOrganizer || organizer.Status == models.UserStatusBlocked {
		return nil, ErrOrganizerInvalid
	}

	event, err := s.Get(ctx, hostID, id)
	if err != nil {
		return nil, err
	}
	if !event.Editable() {
		return nil, ErrNotEditable
	}
	if event.IsOrganizer(organizerID) {
		return event, nil
	}

	pool, err := s.pools.GetByEventID(ctx, event.ID)
	if err == nil && pool.OrganizerID != organizerID {
		return nil, ErrOrganizerLocked
	}
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	event.OrganizerID = &organizerID
	if err := s.events.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to assign organizer: %w", err)
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, organizerID, models.NotifyEventAssigned, "New event assigned",
			fmt.Sprintf("You are the organizer for %s.", event.Title),
			models.JSON{"event_id": event.ID})
	}
	return event, nil
}

func apply(e *models.Event, req EventRequest) {
	e.Title = strings.TrimSpace(req.Title)
	e.Description = req.Description
	e.Venue = req.Venue
	e.City = strings.TrimSpace(req.City)
	e.StartsAt = req.StartsAt
	e.EndsAt = req.EndsAt
	e.Budget = req.Budget
	e.RequiredGigs = req.RequiredGigs
	e.Skills = req.Skills
}
