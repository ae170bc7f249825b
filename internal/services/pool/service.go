// Package pool handles recruiting gig workers for an event: organizer
// invitations, gig applications, capacity and attendance.
package pool

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
	"eventflex/internal/services/notification"
	"eventflex/internal/validation"

	"gorm.io/gorm"
)

var (
	ErrEventNotFound      = apperr.NotFound("event not found")
	ErrNotEventOrganizer  = apperr.Forbidden("you are not the organizer of this event")
	ErrEventClosed        = apperr.Unprocessable("event is no longer accepting gigs")
	ErrPoolExists         = apperr.Conflict("a pool already exists for this event")
	ErrPoolNotFound       = apperr.NotFound("pool not found")
	ErrPoolClosed         = apperr.Unprocessable("pool is closed")
	ErrPoolFull           = apperr.Conflict("pool is full")
	ErrInvitationNotFound = apperr.NotFound("invitation not found")
	ErrAlreadyInPool      = apperr.Conflict("gig already has an invitation or application for this pool")
	ErrNotPending         = apperr.Unprocessable("invitation has already been answered")
	ErrWrongKind          = apperr.Unprocessable("this action does not apply to the invitation")
	ErrGigInvalid         = apperr.BadRequest("gig_id must belong to an active gig")
	ErrAttendanceTooEarly = apperr.Unprocessable("attendance can be marked once the event has started")
	ErrNotAccepted        = apperr.Unprocessable("attendance applies to accepted gigs only")
)

type Service interface {
	// Organizer
	CreatePool(ctx context.Context, organizerID, eventID uint, req CreatePoolRequest) (*models.Pool, error)
	ListPools(ctx context.Context, organizerID uint, limit, offset int) ([]models.Pool, int64, error)
	GetPool(ctx context.Context, organizerID, poolID uint) (*PoolDetail, error)
	Invite(ctx context.Context, organizerID, poolID, gigID uint) (*models.PoolInvitation, error)
	DecideApplication(ctx context.Context, organizerID, invitationID uint, accept bool) (*models.PoolInvitation, error)
	MarkAttendance(ctx context.Context, organizerID, invitationID uint, attended bool) (*models.PoolInvitation, error)

	// Gig
	ListOpen(ctx context.Context, limit, offset int) ([]models.Pool, int64, error)
	Apply(ctx context.Context, gigID, poolID uint) (*models.PoolInvitation, error)
	ListInvitations(ctx context.Context, gigID uint, status string) ([]models.PoolInvitation, error)
	Respond(ctx context.Context, gigID, invitationID uint, accept bool) (*models.PoolInvitation, error)

	// ExpirePending expires unanswered invitations of events that have started.
	ExpirePending(ctx context.Context, now time.Time) (int64, error)
}

type CreatePoolRequest struct {
	RoleTitle string `json:"role_title" validate:"required,min=2,max=100"`
	Capacity  int    `json:"capacity" validate:"required,gte=1,lte=1000"`
	PayNote   string `json:"pay_note" validate:"max=500"`
}

// PoolDetail is a pool with its invitations and how many seats are taken.
type PoolDetail struct {
	*models.Pool
	Accepted    int64                   `json:"accepted"`
	Invitations []models.PoolInvitation `json:"invitations"`
}

type service struct {
	pools    repositories.PoolRepository
	events   repositories.EventRepository
	users    repositories.UserRepository
	tx       repositories.Transactor
	notifier notification.Notifier
	now      func() time.Time
}

func NewService(pools repositories.PoolRepository, events repositories.EventRepository, users repositories.UserRepository, tx repositories.Transactor, notifier notification.Notifier) Service {
	return &service{
		pools:    pools,
		events:   events,
		users:    users,
		tx:       tx,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *service) CreatePool(ctx context.Context, organizerID, eventID uint, req CreatePoolRequest) (*models.Pool, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if !event.IsOrganizer(organizerID) {
		return nil, ErrNotEventOrganizer
	}
	if !event.Editable() {
		return nil, ErrEventClosed
	}

	pool := &models.Pool{
		EventID:     event.ID,
		OrganizerID: organizerID,
		RoleTitle:   strings.TrimSpace(req.RoleTitle),
		Capacity:    req.Capacity,
		PayNote:     req.PayNote,
		Status:      models.PoolStatusOpen,
	}
	if err := s.pools.Create(ctx, pool); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrPoolExists
		}
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	pool.Event = event
	return pool, nil
}

func (s *service) ListPools(ctx context.Context, organizerID uint, limit, offset int) ([]models.Pool, int64, error) {
	return s.pools.ListByOrganizer(ctx, organizerID, limit, offset)
}

func (s *service) ownedPool(ctx context.Context, organizerID, poolID uint) (*models.Pool, error) {
	pool, err := s.pools.GetByID(ctx, poolID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPoolNotFound
		}
		return nil, err
	}
	if pool.OrganizerID != organizerID {
		return nil, ErrPoolNotFound
	}
	return pool, nil
}

func (s *service) GetPool(ctx context.Context, organizerID, poolID uint) (*PoolDetail, error) {
	pool, err := s.ownedPool(ctx, organizerID, poolID)
	if err != nil {
		return nil, err
	}
	invs, err := s.pools.ListInvitationsByPool(ctx, pool.ID)
	if err != nil {
		return nil, err
	}
	var accepted int64
	for _, inv := range invs {
		if inv.Status == models.InvitationAccepted {
			accepted++
		}
	}
	return &PoolDetail{Pool: pool, Accepted: accepted, Invitations: invs}, nil
}

func (s *service) Invite(ctx context.Context, organizerID, poolID, gigID uint) (*models.PoolInvitation, error) {
	pool, err := s.ownedPool(ctx, organizerID, poolID)
	if err != nil {
		return nil, err
	}
	if pool.Status != models.PoolStatusOpen {
		return nil, ErrPoolClosed
	}

	gig, err := s.users.GetByID(ctx, gigID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrGigInvalid
		}
		return nil, err
	}
	if gig.Role != models.RoleGig || gig.Status == models.UserStatusBlocked {
		return nil, ErrGigInvalid
	}

	inv := &models.PoolInvitation{PoolID: pool.ID, GigID: gigID, Status: models.InvitationInvited}
	if err := s.pools.CreateInvitation(ctx, inv); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrAlreadyInPool
		}
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	s.notify(ctx, gigID, models.NotifyInvitation, "New invitation",
		fmt.Sprintf("You were invited to work as %s%s.", pool.RoleTitle, eventSuffix(pool)),
		models.JSON{"invitation_id": inv.ID, "pool_id": pool.ID})
	return inv, nil
}

func (s *service) Apply(ctx context.Context, gigID, poolID uint) (*models.PoolInvitation, error) {
	pool, err := s.pools.GetByID(ctx, poolID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPoolNotFound
		}
		return nil, err
	}
	if pool.Status != models.PoolStatusOpen || (pool.Event != nil && pool.Event.Status != models.EventStatusPublished) {
		return nil, ErrPoolClosed
	}

	inv := &models.PoolInvitation{PoolID: pool.ID, GigID: gigID, Status: models.InvitationApplied}
	if err := s.pools.CreateInvitation(ctx, inv); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrAlreadyInPool
		}
		return nil, fmt.Errorf("failed to apply: %w", err)
	}

	s.notify(ctx, pool.OrganizerID, models.NotifyApplication, "New application",
		fmt.Sprintf("A gig applied for %s%s.", pool.RoleTitle, eventSuffix(pool)),
		models.JSON{"invitation_id": inv.ID, "pool_id": pool.ID, "gig_id": gigID})
	return inv, nil
}

func (s *service) ListOpen(ctx context.Context, limit, offset int) ([]models.Pool, int64, error) {
	return s.pools.ListOpen(ctx, limit, offset)
}

func (s *service) ListInvitations(ctx context.Context, gigID uint, status string) ([]models.PoolInvitation, error) {
	return s.pools.ListInvitationsByGig(ctx, gigID, status)
}

func (s *service) DecideApplication(ctx context.Context, organizerID, invitationID uint, accept bool) (*models.PoolInvitation, error) {
	inv, err := s.answer(ctx, invitationID, models.InvitationApplied, accept, models.InvitationRejected, func(inv *models.PoolInvitation) bool {
		return inv.Pool != nil && inv.Pool.OrganizerID == organizerID
	})
	if err != nil {
		return nil, err
	}

	title, verb := "Application accepted", "accepted"
	if !accept {
		title, verb = "Application declined", "declined"
	}
	s.notify(ctx, inv.GigID, models.NotifyApplication, title,
		fmt.Sprintf("Your application for %s was %s.", roleOf(inv), verb),
		models.JSON{"invitation_id": inv.ID, "pool_id": inv.PoolID})
	return inv, nil
}

func (s *service) Respond(ctx context.Context, gigID, invitationID uint, accept bool) (*models.PoolInvitation, error) {
	inv, err := s.answer(ctx, invitationID, models.InvitationInvited, accept, models.InvitationDeclined, func(inv *models.PoolInvitation) bool {
		return inv.GigID == gigID
	})
	if err != nil {
		return nil, err
	}

	if inv.Pool != nil {
		verb := "accepted"
		if !accept {
			verb = "declined"
		}
		s.notify(ctx, inv.Pool.OrganizerID, models.NotifyInvitation, "Invitation "+verb,
			fmt.Sprintf("A gig %s your invitation for %s.", verb, roleOf(inv)),
			models.JSON{"invitation_id": inv.ID, "pool_id": inv.PoolID, "gig_id": gigID})
	}
	return inv, nil
}

// answer moves a pending invitation of the expected kind to accepted or to
// refusal. Acceptance locks the pool row so concurrent accepts cannot
// overfill it.
func (s *service) answer(ctx context.Context, invitationID uint, kind string, accept bool, refusal string, owns func(*models.PoolInvitation) bool) (*models.PoolInvitation, error) {
	var result *models.PoolInvitation
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		inv, err := s.pools.WithTx(tx).GetInvitation(ctx, invitationID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrInvitationNotFound
			}
			return err
		}
		if !owns(inv) {
			return ErrInvitationNotFound
		}
		if !inv.Pending() {
			return ErrNotPending
		}
		if inv.Status != kind {
			return ErrWrongKind
		}

		now := s.now()
		inv.RespondedAt = &now
		if !accept {
			inv.Status = refusal
			result = inv
			return s.pools.WithTx(tx).UpdateInvitation(ctx, inv)
		}

		if !s.acceptingGigs(inv) {
			return ErrEventClosed
		}
		pool, err := s.pools.WithTx(tx).GetByIDForUpdate(ctx, inv.PoolID)
		if err != nil {
			return err
		}
		if pool.Status != models.PoolStatusOpen {
			return ErrPoolClosed
		}
		accepted, err := s.pools.WithTx(tx).CountAccepted(ctx, pool.ID)
		if err != nil {
			return err
		}
		if accepted >= int64(pool.Capacity) {
			return ErrPoolFull
		}

		inv.Status = models.InvitationAccepted
		result = inv
		return s.pools.WithTx(tx).UpdateInvitation(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// acceptingGigs reports whether the invitation's event is still published and
// has not started yet.
func (s *service) acceptingGigs(inv *models.PoolInvitation) bool {
	if inv.Pool == nil || inv.Pool.Event == nil {
		return false
	}
	ev := inv.Pool.Event
	return ev.Status == models.EventStatusPublished && ev.StartsAt.After(s.now())
}

func (s *service) MarkAttendance(ctx context.Context, organizerID, invitationID uint, attended bool) (*models.PoolInvitation, error) {
	inv, err := s.pools.GetInvitation(ctx, invitationID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}
	if inv.Pool == nil || inv.Pool.OrganizerID != organizerID {
		return nil, ErrInvitationNotFound
	}
	if inv.Status != models.InvitationAccepted {
		return nil, ErrNotAccepted
	}
	if ev := inv.Pool.Event; ev == nil ||
		(ev.Status != models.EventStatusInProgress && ev.Status != models.EventStatusCompleted) {
		return nil, ErrAttendanceTooEarly
	}

	now := s.now()
	inv.Attended = attended
	inv.AttendanceMarkedAt = &now
	if err := s.pools.UpdateInvitation(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to record attendance: %w", err)
	}
	return inv, nil
}

func (s *service) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.pools.ExpirePending(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire invitations: %w", err)
	}
	if n > 0 {
		logger.Log.WithField("count", n).Info("expired pending invitations")
	}
	return n, nil
}

func (s *service) notify(ctx context.Context, userID uint, kind, title, body string, data models.JSON) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, userID, kind, title, body, data)
	}
}

func eventSuffix(p *models.Pool) string {
	if p.Event == nil {
		return ""
	}
	return " at " + p.Event.Title
}

func roleOf(inv *models.PoolInvitation) string {
	if inv.Pool == nil {
		return "the pool"
	}
	return inv.Pool.RoleTitle + eventSuffix(inv.Pool)
}
