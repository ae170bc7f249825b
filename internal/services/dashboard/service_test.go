package dashboard

import (
	"context"
	"errors"
	"testing"

	"eventflex/internal/models"
	"eventflex/internal/repositories/mocks"
	"eventflex/internal/services/wallet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeWallets struct {
	wallet.Service
	balances map[uint]int64
}

func (f *fakeWallets) GetWallet(_ context.Context, userID uint) (*models.Wallet, error) {
	b, ok := f.balances[userID]
	if !ok {
		return nil, wallet.ErrWalletNotFound
	}
	return &models.Wallet{UserID: userID, Balance: b}, nil
}

func TestHost(t *testing.T) {
	stats := new(mocks.StatsRepository)
	svc := NewService(stats, new(mocks.UserRepository), &fakeWallets{balances: map[uint]int64{1: 2500}})
	ctx := context.Background()

	stats.On("EventsByStatus", ctx, uint(1)).Return(map[string]int64{models.EventStatusDraft: 2}, nil)
	stats.On("EscrowTotals", ctx, uint(1)).Return(map[string]int64{
		models.EscrowFunded:   100000,
		models.EscrowReleased: 40000,
	}, nil)
	stats.On("CountOpenDisputesForHost", ctx, uint(1)).Return(int64(1), nil)

	d, err := svc.Host(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), d.EventsByStatus[models.EventStatusDraft])
	assert.Equal(t, int64(100000), d.EscrowFunded)
	assert.Equal(t, int64(40000), d.EscrowReleased)
	assert.Zero(t, d.EscrowRefunded)
	assert.Equal(t, int64(2500), d.WalletBalance)
}

func TestGig_NoWallet(t *testing.T) {
	stats := new(mocks.StatsRepository)
	users := new(mocks.UserRepository)
	svc := NewService(stats, users, &fakeWallets{})
	ctx := context.Background()

	gig := &models.User{Role: models.RoleGig, KYCStatus: models.KYCPending}
	stats.On("InvitationsByStatus", ctx, uint(5)).Return(map[string]int64{models.InvitationAccepted: 3}, nil)
	stats.On("Earnings", ctx, uint(5)).Return(int64(7000), nil)
	users.On("GetByID", ctx, uint(5)).Return(gig, nil)

	d, err := svc.Gig(ctx, 5)
	require.NoError(t, err)
	assert.Zero(t, d.WalletBalance)
	assert.Equal(t, int64(7000), d.Earnings)
	assert.Equal(t, models.KYCPending, d.KYCStatus)
}

func TestAdmin(t *testing.T) {
	stats := new(mocks.StatsRepository)
	svc := NewService(stats, new(mocks.UserRepository), &fakeWallets{})
	ctx := context.Background()

	stats.On("UsersByRole", ctx).Return(map[string]int64{models.RoleGig: 10}, nil)
	stats.On("Count", ctx, mock.AnythingOfType("*models.KYCVerification"), models.KYCPending).Return(int64(4), nil)
	stats.On("Count", ctx, mock.AnythingOfType("*models.Dispute"), models.DisputeOpen).Return(int64(2), nil)
	stats.On("Count", ctx, mock.AnythingOfType("*models.Withdrawal"), models.WithdrawalRequested).Return(int64(1), nil)
	stats.On("EscrowTotals", ctx, uint(0)).Return(map[string]int64{
		models.EscrowFunded:         1000,
		models.EscrowReleased:       2000,
		models.EscrowRefunded:       500,
		models.EscrowPendingPayment: 9999,
	}, nil)

	d, err := svc.Admin(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), d.PendingKYC)
	assert.Equal(t, int64(2), d.OpenDisputes)
	assert.Equal(t, int64(1), d.RequestedWithdrawals)
	assert.Equal(t, int64(3500), d.EscrowVolume, "unpaid escrows are not volume")
}

func TestOrganizer_WrapsErrors(t *testing.T) {
	stats := new(mocks.StatsRepository)
	svc := NewService(stats, new(mocks.UserRepository), &fakeWallets{})

	stats.On("CountPools", mock.Anything, uint(2)).Return(int64(0), errors.New("connection reset"))

	_, err := svc.Organizer(context.Background(), 2)
	assert.ErrorContains(t, err, "failed to count pools")
}
