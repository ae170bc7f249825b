package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventflex/internal/models"
	"eventflex/internal/repositories/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRecord_StoresEntryWithIP(t *testing.T) {
	repo := new(mocks.AuditRepository)
	svc := NewService(repo)
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.FixedZone("IST", 19800))
	svc.now = func() time.Time { return at }

	repo.On("Insert", mock.Anything, mock.MatchedBy(func(e *models.AuditLog) bool {
		return e.ActorID == 1 &&
			e.Action == ActionUserBlock &&
			e.EntityID == 42 &&
			e.IP == "10.0.0.7" &&
			e.At.Equal(at) && e.At.Location() == time.UTC
	})).Return(nil)

	ctx := WithIP(context.Background(), "10.0.0.7")
	svc.Record(ctx, 1, ActionUserBlock, "user", 42, map[string]interface{}{"reason": "fraud"})
	repo.AssertExpectations(t)
}

func TestRecord_SwallowsErrors(t *testing.T) {
	repo := new(mocks.AuditRepository)
	repo.On("Insert", mock.Anything, mock.Anything).Return(errors.New("mongo down"))
	svc := NewService(repo)

	assert.NotPanics(t, func() {
		svc.Record(context.Background(), 1, ActionKYCApprove, "kyc", 3, nil)
	})
}
