// Package dashboard aggregates per-role summary figures.
package dashboard

import (
	"context"
	"errors"
	"fmt"

	"eventflex/internal/models"
	"eventflex/internal/repositories"
	"eventflex/internal/services/wallet"
)

type Service interface {
	Host(ctx context.Context, hostID uint) (*models.HostDashboard, error)
	Organizer(ctx context.Context, organizerID uint) (*models.OrganizerDashboard, error)
	Gig(ctx context.Context, gigID uint) (*models.GigDashboard, error)
	Admin(ctx context.Context) (*models.AdminDashboard, error)
}

type service struct {
	stats   repositories.StatsRepository
	users   repositories.UserRepository
	wallets wallet.Service
}

func NewService(stats repositories.StatsRepository, users repositories.UserRepository, wallets wallet.Service) Service {
	return &service{stats: stats, users: users, wallets: wallets}
}

func (s *service) Host(ctx context.Context, hostID uint) (*models.HostDashboard, error) {
	events, err := s.stats.EventsByStatus(ctx, hostID)
	if err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}
	totals, err := s.stats.EscrowTotals(ctx, hostID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum escrows: %w", err)
	}
	disputes, err := s.stats.CountOpenDisputesForHost(ctx, hostID)
	if err != nil {
		return nil, fmt.Errorf("failed to count disputes: %w", err)
	}
	balance, err := s.balance(ctx, hostID)
	if err != nil {
		return nil, err
	}

	return &models.HostDashboard{
		EventsByStatus: events,
		EscrowFunded:   totals[models.EscrowFunded],
		EscrowReleased: totals[models.EscrowReleased],
		EscrowRefunded: totals[models.EscrowRefunded],
		OpenDisputes:   disputes,
		WalletBalance:  balance,
	}, nil
}

func (s *service) Organizer(ctx context.Context, organizerID uint) (*models.OrganizerDashboard, error) {
	pools, err := s.stats.CountPools(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count pools: %w", err)
	}
	accepted, err := s.stats.CountAcceptedForOrganizer(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count accepted gigs: %w", err)
	}
	earnings, err := s.stats.Earnings(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum earnings: %w", err)
	}
	balance, err := s.balance(ctx, organizerID)
	if err != nil {
		return nil, err
	}
	kyc, err := s.kycStatus(ctx, organizerID)
	if err != nil {
		return nil, err
	}

	return &models.OrganizerDashboard{
		Pools:         pools,
		AcceptedGigs:  accepted,
		Earnings:      earnings,
		WalletBalance: balance,
		KYCStatus:     kyc,
	}, nil
}

func (s *service) Gig(ctx context.Context, gigID uint) (*models.GigDashboard, error) {
	invitations, err := s.stats.InvitationsByStatus(ctx, gigID)
	if err != nil {
		return nil, fmt.Errorf("failed to count invitations: %w", err)
	}
	earnings, err := s.stats.Earnings(ctx, gigID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum earnings: %w", err)
	}
	balance, err := s.balance(ctx, gigID)
	if err != nil {
		return nil, err
	}
	kyc, err := s.kycStatus(ctx, gigID)
	if err != nil {
		return nil, err
	}

	return &models.GigDashboard{
		InvitationsByStatus: invitations,
		Earnings:            earnings,
		WalletBalance:       balance,
		KYCStatus:           kyc,
	}, nil
}

func (s *service) Admin(ctx context.Context) (*models.AdminDashboard, error) {
	users, err := s.stats.UsersByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	pendingKYC, err := s.stats.Count(ctx, &models.KYCVerification{}, models.KYCPending)
	if err != nil {
		return nil, fmt.Errorf("failed to count KYC: %w", err)
	}
	disputes, err := s.stats.Count(ctx, &models.Dispute{}, models.DisputeOpen)
	if err != nil {
		return nil, fmt.Errorf("failed to count disputes: %w", err)
	}
	withdrawals, err := s.stats.Count(ctx, &models.Withdrawal{}, models.WithdrawalRequested)
	if err != nil {
		return nil, fmt.Errorf("failed to count withdrawals: %w", err)
	}
	totals, err := s.stats.EscrowTotals(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to sum escrows: %w", err)
	}

	return &models.AdminDashboard{
		UsersByRole:          users,
		PendingKYC:           pendingKYC,
		OpenDisputes:         disputes,
		RequestedWithdrawals: withdrawals,
		EscrowVolume:         totals[models.EscrowFunded] + totals[models.EscrowReleased] + totals[models.EscrowRefunded],
	}, nil
}

// balance reads through the wallet cache; users without a wallet show zero.
func (s *service) balance(ctx context.Context, userID uint) (int64, error) {
	w, err := s.wallets.GetWallet(ctx, userID)
	if err != nil {
		if errors.Is(err, wallet.ErrWalletNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return w.Balance, nil
}

func (s *service) kycStatus(ctx context.Context, userID uint) (string, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.KYCStatus, nil
}
