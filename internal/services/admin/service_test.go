package admin

import (
	"context"
	"errors"
	"testing"

	"eventflex/internal/models"
	"eventflex/internal/repositories"
	"eventflex/internal/repositories/mocks"
	"eventflex/internal/services/audit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct{ kinds []string }

func (f *fakeNotifier) Notify(_ context.Context, _ uint, kind, _, _ string, _ models.JSON) {
	f.kinds = append(f.kinds, kind)
}

type fakeAudit struct{ actions []string }

func (f *fakeAudit) Record(_ context.Context, _ uint, action, _ string, _ uint, _ map[string]interface{}) {
	f.actions = append(f.actions, action)
}

type testDeps struct {
	users    *mocks.UserRepository
	cache    *mocks.Cache
	logs     *mocks.AuditRepository
	notifier *fakeNotifier
	audit    *fakeAudit
}

func newTestService() (Service, *testDeps) {
	d := &testDeps{
		users:    new(mocks.UserRepository),
		cache:    new(mocks.Cache),
		logs:     new(mocks.AuditRepository),
		notifier: &fakeNotifier{},
		audit:    &fakeAudit{},
	}
	svc := NewService(Dependencies{
		Users:    d.users,
		Events:   new(mocks.EventRepository),
		Escrows:  new(mocks.EscrowRepository),
		Tx:       mocks.Transactor{},
		Cache:    d.cache,
		Notifier: d.notifier,
		Audit:    d.audit,
		Logs:     d.logs,
	})
	return svc, d
}

func user(id uint, role, status string) *models.User {
	u := &models.User{Role: role, Status: status, TokenVersion: 1}
	u.ID = id
	return u
}

func TestBlockUser(t *testing.T) {
	svc, d := newTestService()
	ctx := context.Background()

	d.users.On("GetByID", ctx, uint(7)).Return(user(7, models.RoleGig, models.UserStatusActive), nil)
	d.users.On("SetStatus", ctx, uint(7), models.UserStatusBlocked).Return(nil)
	d.users.On("IncrementTokenVersion", ctx, uint(7)).Return(nil)
	d.cache.On("InvalidateSession", ctx, uint(7)).Return(errors.New("redis down"))

	u, err := svc.BlockUser(ctx, 1, 7, " fake documents ")
	require.NoError(t, err, "cache failures do not fail the block")
	assert.Equal(t, models.UserStatusBlocked, u.Status)
	assert.Equal(t, 2, u.TokenVersion)
	assert.Equal(t, []string{audit.ActionUserBlock}, d.audit.actions)
	assert.Equal(t, []string{models.NotifyAccountBlocked}, d.notifier.kinds)
	d.users.AssertExpectations(t)
}

func TestBlockUser_Refused(t *testing.T) {
	tests := []struct {
		name    string
		target  *models.User
		lookup  error
		wantErr error
	}{
		{"self", nil, nil, ErrCannotBlockSelf},
		{"admin", user(7, models.RoleAdmin, models.UserStatusActive), nil, ErrCannotBlockAdmin},
		{"already blocked", user(7, models.RoleHost, models.UserStatusBlocked), nil, ErrAlreadyInStatus},
		{"missing", nil, repositories.ErrNotFound, ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newTestService()
			target := uint(7)
			if tt.name == "self" {
				target = 1
			}
			d.users.On("GetByID", mock.Anything, uint(7)).Return(tt.target, tt.lookup)

			_, err := svc.BlockUser(context.Background(), 1, target, "")
			assert.ErrorIs(t, err, tt.wantErr)
			d.users.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
			assert.Empty(t, d.audit.actions)
		})
	}
}

func TestUnblockUser(t *testing.T) {
	svc, d := newTestService()
	ctx := context.Background()

	d.users.On("GetByID", ctx, uint(7)).Return(user(7, models.RoleHost, models.UserStatusBlocked), nil)
	d.users.On("SetStatus", ctx, uint(7), models.UserStatusActive).Return(nil)
	d.users.On("IncrementTokenVersion", ctx, uint(7)).Return(nil)
	d.cache.On("InvalidateSession", ctx, uint(7)).Return(nil)

	u, err := svc.UnblockUser(ctx, 1, 7)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusActive, u.Status)
	assert.Equal(t, []string{audit.ActionUserUnblock}, d.audit.actions)
}

func TestListUsers_InvalidRole(t *testing.T) {
	svc, _ := newTestService()
	_, _, err := svc.ListUsers(context.Background(), "merchant", 10, 0)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestAuditLogs(t *testing.T) {
	svc, d := newTestService()
	f := models.AuditFilter{Action: audit.ActionKYCApprove}
	d.logs.On("List", mock.Anything, f, 20, 40).Return([]models.AuditLog{{Action: audit.ActionKYCApprove}}, int64(41), nil)

	logs, total, err := svc.AuditLogs(context.Background(), f, 20, 40)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
	assert.Equal(t, int64(41), total)
}
