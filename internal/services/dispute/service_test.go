package dispute

import (
	"context"
	"testing"
	"time"

	"eventflex/internal/models"
	"eventflex/internal/repositories"
	"eventflex/internal/repositories/mocks"
	"eventflex/internal/services/audit"
	"eventflex/internal/services/escrow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeEscrow struct {
	escrow.Service
	refunded []uint
	after    []*models.Escrow
}

func (f *fakeEscrow) RefundTx(_ context.Context, _ *gorm.DB, escrowID uint, _ string) (*models.Escrow, error) {
	f.refunded = append(f.refunded, escrowID)
	e := &models.Escrow{Status: models.EscrowRefunded}
	e.ID = escrowID
	return e, nil
}

func (f *fakeEscrow) AfterRefund(_ context.Context, _ uint, e *models.Escrow, _ string) {
	f.after = append(f.after, e)
}

type fakeNotifier struct{ users []uint }

func (f *fakeNotifier) Notify(_ context.Context, userID uint, _, _, _ string, _ models.JSON) {
	f.users = append(f.users, userID)
}

type fakeAudit struct{ actions []string }

func (f *fakeAudit) Record(_ context.Context, _ uint, action, _ string, _ uint, _ map[string]interface{}) {
	f.actions = append(f.actions, action)
}

type testDeps struct {
	disputes *mocks.DisputeRepository
	events   *mocks.EventRepository
	pools    *mocks.PoolRepository
	escrows  *mocks.EscrowRepository
	escrow   *fakeEscrow
	notifier *fakeNotifier
	audit    *fakeAudit
}

func newTestService() (*service, *testDeps) {
	d := &testDeps{
		disputes: new(mocks.DisputeRepository),
		events:   new(mocks.EventRepository),
		pools:    new(mocks.PoolRepository),
		escrows:  new(mocks.EscrowRepository),
		escrow:   &fakeEscrow{},
		notifier: &fakeNotifier{},
		audit:    &fakeAudit{},
	}
	svc := NewService(Dependencies{
		Disputes: d.disputes,
		Events:   d.events,
		Pools:    d.pools,
		Escrows:  d.escrows,
		Tx:       mocks.Transactor{},
		Escrow:   d.escrow,
		Notifier: d.notifier,
		Audit:    d.audit,
	}).(*service)
	svc.now = func() time.Time { return time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC) }
	return svc, d
}

func completedEvent() *models.Event {
	organizer := uint(2)
	e := &models.Event{HostID: 1, OrganizerID: &organizer, Title: "Launch", Status: models.EventStatusCompleted}
	e.ID = 10
	return e
}

func fundedEscrow() *models.Escrow {
	e := &models.Escrow{EventID: 10, HostID: 1, Amount: 50000, Status: models.EscrowFunded}
	e.ID = 20
	return e
}

func TestFile_MarksEscrowDisputed(t *testing.T) {
	svc, d := newTestService()
	ctx := context.Background()

	esc := fundedEscrow()
	d.events.On("GetByID", ctx, uint(10)).Return(completedEvent(), nil)
	d.pools.On("HasAcceptedGig", ctx, uint(10), uint(5)).Return(true, nil)
	d.disputes.On("ExistsOpen", ctx, uint(10), uint(5)).Return(false, nil)
	d.escrows.On("GetActiveByEvent", ctx, uint(10)).Return(esc, nil)
	d.escrows.On("GetByIDForUpdate", ctx, uint(20)).Return(esc, nil)
	d.escrows.On("Update", ctx, esc).Return(nil)
	d.disputes.On("Create", ctx, mock.AnythingOfType("*models.Dispute")).Return(nil)

	got, err := svc.File(ctx, 5, models.RoleGig, FileRequest{EventID: 10, Reason: "  I was never paid for the shift  "})
	require.NoError(t, err)
	assert.True(t, esc.Disputed)
	require.NotNil(t, got.EscrowID)
	assert.Equal(t, uint(20), *got.EscrowID)
	assert.Equal(t, "I was never paid for the shift", got.Reason)
	assert.Equal(t, []uint{1}, d.notifier.users)
}

func TestFile_WithoutActiveEscrow(t *testing.T) {
	svc, d := newTestService()
	ctx := context.Background()

	d.events.On("GetByID", ctx, uint(10)).Return(completedEvent(), nil)
	d.disputes.On("ExistsOpen", ctx, uint(10), uint(1)).Return(false, nil)
	d.escrows.On("GetActiveByEvent", ctx, uint(10)).Return(nil, repositories.ErrNotFound)
	d.disputes.On("Create", ctx, mock.AnythingOfType("*models.Dispute")).Return(nil)

	got, err := svc.File(ctx, 1, models.RoleHost, FileRequest{EventID: 10, Reason: "organizer no-show at venue"})
	require.NoError(t, err)
	assert.Nil(t, got.EscrowID)
	assert.Empty(t, d.notifier.users, "host is not notified about their own dispute")
}

func TestFile_Refused(t *testing.T) {
	tests := []struct {
		name    string
		userID  uint
		role    string
		setup   func(d *testDeps)
		wantErr error
	}{
		{
			name:   "stranger host",
			userID: 9,
			role:   models.RoleHost,
			setup: func(d *testDeps) {
				d.events.On("GetByID", mock.Anything, uint(10)).Return(completedEvent(), nil)
			},
			wantErr: ErrNotParticipant,
		},
		{
			name:   "gig without accepted invitation",
			userID: 5,
			role:   models.RoleGig,
			setup: func(d *testDeps) {
				d.events.On("GetByID", mock.Anything, uint(10)).Return(completedEvent(), nil)
				d.pools.On("HasAcceptedGig", mock.Anything, uint(10), uint(5)).Return(false, nil)
			},
			wantErr: ErrNotParticipant,
		},
		{
			name:   "duplicate open dispute",
			userID: 2,
			role:   models.RoleOrganizer,
			setup: func(d *testDeps) {
				d.events.On("GetByID", mock.Anything, uint(10)).Return(completedEvent(), nil)
				d.disputes.On("ExistsOpen", mock.Anything, uint(10), uint(2)).Return(true, nil)
			},
			wantErr: ErrAlreadyOpen,
		},
		{
			name:   "draft event",
			userID: 1,
			role:   models.RoleHost,
			setup: func(d *testDeps) {
				e := completedEvent()
				e.Status = models.EventStatusDraft
				d.events.On("GetByID", mock.Anything, uint(10)).Return(e, nil)
			},
			wantErr: ErrEventNotDisputable,
		},
		{
			name:   "unknown event",
			userID: 1,
			role:   models.RoleHost,
			setup: func(d *testDeps) {
				d.events.On("GetByID", mock.Anything, uint(10)).Return(nil, repositories.ErrNotFound)
			},
			wantErr: ErrEventNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newTestService()
			tt.setup(d)
			_, err := svc.File(context.Background(), tt.userID, tt.role, FileRequest{EventID: 10, Reason: "something went wrong"})
			assert.ErrorIs(t, err, tt.wantErr)
			d.disputes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func openDispute() *models.Dispute {
	escrowID := uint(20)
	dsp := &models.Dispute{EventID: 10, EscrowID: &escrowID, RaisedBy: 5, Status: models.DisputeOpen}
	dsp.ID = 30
	return dsp
}

func TestResolve_RefundsHost(t *testing.T) {
	svc, d := newTestService()
	ctx := context.Background()

	esc := fundedEscrow()
	esc.Disputed = true
	dsp := openDispute()
	d.disputes.On("GetByIDForUpdate", ctx, uint(30)).Return(dsp, nil)
	d.escrows.On("GetActiveByEvent", ctx, uint(10)).Return(esc, nil)
	d.escrows.On("GetByIDForUpdate", ctx, uint(20)).Return(esc, nil)
	d.disputes.On("Update", ctx, dsp).Return(nil)

	got, err := svc.Resolve(ctx, 99, 30, ResolveRequest{Resolution: "host refunded", RefundHost: true})
	require.NoError(t, err)
	assert.Equal(t, models.DisputeResolved, got.Status)
	assert.True(t, got.RefundHost)
	assert.Equal(t, []uint{20}, d.escrow.refunded)
	require.Len(t, d.escrow.after, 1)
	assert.Equal(t, models.EscrowRefunded, d.escrow.after[0].Status)
	assert.Equal(t, []string{audit.ActionDisputeResolve}, d.audit.actions)
	d.disputes.AssertNotCalled(t, "CountOpenByEvent", mock.Anything, mock.Anything)
}

func TestResolve_ClearsFlagWhenLastOpen(t *testing.T) {
	tests := []struct {
		name        string
		otherOpen   int64
		wantFlagged bool
	}{
		{"last open dispute", 0, false},
		{"another dispute still open", 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newTestService()
			ctx := context.Background()

			esc := fundedEscrow()
			esc.Disputed = true
			dsp := openDispute()
			d.disputes.On("GetByIDForUpdate", ctx, uint(30)).Return(dsp, nil)
			d.escrows.On("GetActiveByEvent", ctx, uint(10)).Return(esc, nil)
			d.escrows.On("GetByIDForUpdate", ctx, uint(20)).Return(esc, nil)
			d.disputes.On("Update", ctx, dsp).Return(nil)
			d.disputes.On("CountOpenByEvent", ctx, uint(10)).Return(tt.otherOpen, nil)
			d.escrows.On("Update", ctx, esc).Return(nil).Maybe()

			got, err := svc.Resolve(ctx, 99, 30, ResolveRequest{Resolution: "paid out as agreed"})
			require.NoError(t, err)
			assert.False(t, got.RefundHost)
			assert.Equal(t, tt.wantFlagged, esc.Disputed)
			assert.Empty(t, d.escrow.refunded)
			require.Len(t, d.escrow.after, 1)
			assert.Nil(t, d.escrow.after[0])
		})
	}
}

func TestResolve_DisputeFiledBeforeDeposit(t *testing.T) {
	svc, d := newTestService()
	ctx := context.Background()

	// Filed while the event had no escrow; the host funded one afterwards.
	dsp := openDispute()
	dsp.EscrowID = nil
	esc := fundedEscrow()
	d.disputes.On("GetByIDForUpdate", ctx, uint(30)).Return(dsp, nil)
	d.escrows.On("GetActiveByEvent", ctx, uint(10)).Return(esc, nil)
	d.escrows.On("GetByIDForUpdate", ctx, uint(20)).Return(esc, nil)
	d.disputes.On("Update", ctx, dsp).Return(nil)

	got, err := svc.Resolve(ctx, 99, 30, ResolveRequest{Resolution: "refund the host", RefundHost: true})
	require.NoError(t, err)
	require.NotNil(t, got.EscrowID)
	assert.Equal(t, uint(20), *got.EscrowID)
	assert.Equal(t, []uint{20}, d.escrow.refunded)
}

func TestReject(t *testing.T) {
	svc, d := newTestService()
	ctx := context.Background()

	_, err := svc.Reject(ctx, 99, 30, " ")
	require.Error(t, err)

	dsp := openDispute()
	dsp.EscrowID = nil
	d.disputes.On("GetByIDForUpdate", ctx, uint(30)).Return(dsp, nil)
	d.escrows.On("GetActiveByEvent", ctx, uint(10)).Return(nil, repositories.ErrNotFound)
	d.disputes.On("Update", ctx, dsp).Return(nil)

	got, err := svc.Reject(ctx, 99, 30, "no evidence")
	require.NoError(t, err)
	assert.Equal(t, models.DisputeRejected, got.Status)
	require.NotNil(t, got.ResolvedBy)
	assert.Equal(t, uint(99), *got.ResolvedBy)
	assert.Equal(t, []uint{5}, d.notifier.users)
	assert.Equal(t, []string{audit.ActionDisputeReject}, d.audit.actions)
}

func TestResolve_AlreadyClosed(t *testing.T) {
	svc, d := newTestService()
	dsp := openDispute()
	dsp.Status = models.DisputeRejected
	d.disputes.On("GetByIDForUpdate", mock.Anything, uint(30)).Return(dsp, nil)

	_, err := svc.Resolve(context.Background(), 99, 30, ResolveRequest{Resolution: "again"})
	assert.ErrorIs(t, err, ErrDisputeClosed)
	assert.Empty(t, d.audit.actions)
}
