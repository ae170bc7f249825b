package event

import (
	"context"
	"testing"
	"time"

	"eventflex/internal/models"
	"eventflex/internal/repositories"
	"eventflex/internal/repositories/mocks"
	"eventflex/internal/services/escrow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeEscrow struct {
	escrow.Service
	refundedEvents []uint
	after          []*models.Escrow
}

func (f *fakeEscrow) RefundEventTx(_ context.Context, _ *gorm.DB, eventID uint, _ string) (*models.Escrow, error) {
	f.refundedEvents = append(f.refundedEvents, eventID)
	return &models.Escrow{EventID: eventID, Status: models.EscrowRefunded}, nil
}

func (f *fakeEscrow) AfterRefund(_ context.Context, _ uint, e *models.Escrow, _ string) {
	f.after = append(f.after, e)
}

type fakeNotifier struct{ kinds []string }

func (f *fakeNotifier) Notify(_ context.Context, _ uint, kind, _, _ string, _ models.JSON) {
	f.kinds = append(f.kinds, kind)
}

var now = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

type testDeps struct {
	events   *mocks.EventRepository
	pools    *mocks.PoolRepository
	users    *mocks.UserRepository
	escrow   *fakeEscrow
	notifier *fakeNotifier
}

func newTestService(t *testing.T) (*service, *testDeps) {
	t.Helper()
	d := &testDeps{
		events:   new(mocks.EventRepository),
		pools:    new(mocks.PoolRepository),
		users:    new(mocks.UserRepository),
		escrow:   &fakeEscrow{},
		notifier: &fakeNotifier{},
	}
	svc := NewService(Dependencies{
		Events:   d.events,
		Pools:    d.pools,
		Users:    d.users,
		Tx:       mocks.Transactor{},
		Escrow:   d.escrow,
		Notifier: d.notifier,
	}).(*service)
	svc.now = func() time.Time { return now }
	return svc, d
}

func validRequest() EventRequest {
	return EventRequest{
		Title:    "Product launch",
		Venue:    "Hall 4",
		City:     "Bengaluru",
		StartsAt: now.Add(48 * time.Hour),
		EndsAt:   now.Add(52 * time.Hour),
		Budget:   2500000,
	}
}

func storedEvent(status string) *models.Event {
	e := &models.Event{HostID: 1, Title: "Product launch", Status: status, StartsAt: now.Add(48 * time.Hour), EndsAt: now.Add(52 * time.Hour)}
	e.ID = 30
	return e
}

func TestCreate(t *testing.T) {
	svc, d := newTestService(t)
	d.events.On("Create", mock.Anything, mock.MatchedBy(func(e *models.Event) bool {
		return e.HostID == 1 && e.Status == models.EventStatusDraft && e.City == "Bengaluru"
	})).Return(nil)

	ev, err := svc.Create(context.Background(), 1, validRequest())
	require.NoError(t, err)
	assert.Equal(t, "Product launch", ev.Title)
}

func TestCreate_Invalid(t *testing.T) {
	svc, _ := newTestService(t)

	req := validRequest()
	req.EndsAt = req.StartsAt.Add(-time.Hour)
	_, err := svc.Create(context.Background(), 1, req)
	assert.ErrorIs(t, err, ErrEndBeforeStart)

	req = validRequest()
	req.StartsAt = now.Add(-time.Hour)
	_, err = svc.Create(context.Background(), 1, req)
	assert.ErrorIs(t, err, ErrStartInPast)

	req = validRequest()
	req.Title = ""
	_, err = svc.Create(context.Background(), 1, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title")
}

func TestTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		action  string
		want    string
		wantErr error
	}{
		{"publish draft", models.EventStatusDraft, ActionPublish, models.EventStatusPublished, nil},
		{"start published", models.EventStatusPublished, ActionStart, models.EventStatusInProgress, nil},
		{"complete draft", models.EventStatusDraft, ActionComplete, "", ErrInvalidTransition},
		{"cancel in progress", models.EventStatusInProgress, ActionCancel, "", ErrInvalidTransition},
		{"unknown", models.EventStatusDraft, "archive", "", ErrUnknownAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newTestService(t)
			d.events.On("GetByIDForUpdate", mock.Anything, uint(30)).Return(storedEvent(tt.from), nil)
			d.events.On("Update", mock.Anything, mock.Anything).Return(nil)

			ev, err := svc.Transition(context.Background(), 1, 30, tt.action)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ev.Status)
		})
	}
}

func TestTransition_CompleteClosesPool(t *testing.T) {
	svc, d := newTestService(t)
	d.events.On("GetByIDForUpdate", mock.Anything, uint(30)).Return(storedEvent(models.EventStatusInProgress), nil)
	d.events.On("Update", mock.Anything, mock.Anything).Return(nil)
	d.pools.On("GetByEventID", mock.Anything, uint(30)).Return(&models.Pool{EventID: 30, Status: models.PoolStatusOpen}, nil)
	d.pools.On("Update", mock.Anything, mock.MatchedBy(func(p *models.Pool) bool { return p.Status == models.PoolStatusClosed })).Return(nil)

	ev, err := svc.Transition(context.Background(), 1, 30, ActionComplete)
	require.NoError(t, err)
	require.NotNil(t, ev.CompletedAt)
	assert.Equal(t, now, *ev.CompletedAt)
	d.pools.AssertExpectations(t)
	assert.Empty(t, d.escrow.refundedEvents)
}

func TestTransition_CancelRefundsEscrow(t *testing.T) {
	svc, d := newTestService(t)
	d.events.On("GetByIDForUpdate", mock.Anything, uint(30)).Return(storedEvent(models.EventStatusPublished), nil)
	d.events.On("Update", mock.Anything, mock.Anything).Return(nil)
	d.pools.On("GetByEventID", mock.Anything, uint(30)).Return(nil, repositories.ErrNotFound)

	_, err := svc.Transition(context.Background(), 1, 30, ActionCancel)
	require.NoError(t, err)
	assert.Equal(t, []uint{30}, d.escrow.refundedEvents)
	require.Len(t, d.escrow.after, 1)
}

func TestTransition_OtherHost(t *testing.T) {
	svc, d := newTestService(t)
	d.events.On("GetByIDForUpdate", mock.Anything, uint(30)).Return(storedEvent(models.EventStatusDraft), nil)

	_, err := svc.Transition(context.Background(), 2, 30, ActionPublish)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestDelete(t *testing.T) {
	svc, d := newTestService(t)
	d.events.On("GetByID", mock.Anything, uint(30)).Return(storedEvent(models.EventStatusPublished), nil)
	assert.ErrorIs(t, svc.Delete(context.Background(), 1, 30), ErrNotDraft)
}

func TestAssignOrganizer(t *testing.T) {
	organizer := &models.User{Role: models.RoleOrganizer, Status: models.UserStatusActive}
	organizer.ID = 4

	t.Run("assigns and notifies", func(t *testing.T) {
		svc, d := newTestService(t)
		d.users.On("GetByID", mock.Anything, uint(4)).Return(organizer, nil)
		d.events.On("GetByID", mock.Anything, uint(30)).Return(storedEvent(models.EventStatusPublished), nil)
		d.pools.On("GetByEventID", mock.Anything, uint(30)).Return(nil, repositories.ErrNotFound)
		d.events.On("Update", mock.Anything, mock.MatchedBy(func(e *models.Event) bool { return e.IsOrganizer(4) })).Return(nil)

		ev, err := svc.AssignOrganizer(context.Background(), 1, 30, 4)
		require.NoError(t, err)
		assert.True(t, ev.IsOrganizer(4))
		assert.Equal(t, []string{models.NotifyEventAssigned}, d.notifier.kinds)
	})

	t.Run("not an organizer", func(t *testing.T) {
		svc, d := newTestService(t)
		gig := &models.User{Role: models.RoleGig}
		d.users.On("GetByID", mock.Anything, uint(4)).Return(gig, nil)
		_, err := svc.AssignOrganizer(context.Background(), 1, 30, 4)
		assert.ErrorIs(t, err, ErrOrganizerInvalid)
	})

	t.Run("pool owned by previous organizer", func(t *testing.T) {
		svc, d := newTestService(t)
		d.users.On("GetByID", mock.Anything, uint(4)).Return(organizer, nil)
		d.events.On("GetByID", mock.Anything, uint(30)).Return(storedEvent(models.EventStatusPublished), nil)
		d.pools.On("GetByEventID", mock.Anything, uint(30)).Return(&models.Pool{OrganizerID: 8}, nil)
		_, err := svc.AssignOrganizer(context.Background(), 1, 30, 4)
		assert.ErrorIs(t, err, ErrOrganizerLocked)
	})
}
