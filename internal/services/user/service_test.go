package user

import (
	"context"
	"testing"

	"eventflex/internal/models"
	"eventflex/internal/repositories"
	"eventflex/internal/repositories/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func gigUser() *models.User {
	u := &models.User{Name: "Ravi", Phone: "+919811111111", Role: models.RoleGig}
	u.ID = 3
	return u
}

func TestUpdateProfile_BankAccount(t *testing.T) {
	repo := new(mocks.UserRepository)
	svc := NewService(repo)

	repo.On("GetByID", mock.Anything, uint(3)).Return(gigUser(), nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	p, err := svc.UpdateProfile(context.Background(), 3, UpdateProfileRequest{
		City:              strPtr(" Pune "),
		Skills:            []string{"bartending", "setup"},
		BankAccountName:   strPtr("Ravi S"),
		BankAccountNumber: strPtr("123456789012"),
		BankIFSC:          strPtr("sbin0001234"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Pune", p.City)
	assert.Equal(t, "SBIN0001234", p.BankIFSC)
	assert.Equal(t, "XXXXXXXX9012", p.BankAccountNumber)
	assert.True(t, p.HasPayoutAccount)
}

func TestUpdateProfile_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		req     UpdateProfileRequest
		setup   func(repo *mocks.UserRepository)
		wantErr error
		wantMsg string
	}{
		{
			name:    "bad ifsc",
			req:     UpdateProfileRequest{BankIFSC: strPtr("SBIN1234")},
			wantMsg: "IFSC",
		},
		{
			name:    "partial bank details",
			req:     UpdateProfileRequest{BankAccountName: strPtr("Ravi S")},
			wantErr: ErrBankIncomplete,
		},
		{
			name:    "company on a gig",
			req:     UpdateProfileRequest{Company: strPtr("Acme")},
			wantErr: ErrFieldNotAllowed,
		},
		{
			name: "phone in use",
			req:  UpdateProfileRequest{Phone: strPtr("+919822222222")},
			setup: func(repo *mocks.UserRepository) {
				other := &models.User{}
				other.ID = 9
				repo.On("GetByPhone", mock.Anything, "+919822222222").Return(other, nil)
			},
			wantErr: ErrPhoneTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.UserRepository)
			repo.On("GetByID", mock.Anything, uint(3)).Return(gigUser(), nil)
			if tt.setup != nil {
				tt.setup(repo)
			}
			_, err := NewService(repo).UpdateProfile(context.Background(), 3, tt.req)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
			repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		})
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	repo := new(mocks.UserRepository)
	repo.On("GetByID", mock.Anything, uint(3)).Return(nil, repositories.ErrNotFound)

	_, err := NewService(repo).GetProfile(context.Background(), 3)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
