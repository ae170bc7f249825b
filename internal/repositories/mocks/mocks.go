// Package mocks holds testify mocks for the repository interfaces. WithTx
// returns the receiver so expectations hold inside transactions.
package mocks

import (
	"context"
	"time"

	"eventflex/internal/models"
	"eventflex/internal/repositories"
	"eventflex/internal/repositories/cache"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func get[T any](args mock.Arguments, i int) T {
	v, _ := args.Get(i).(T)
	return v
}

// Transactor runs fn immediately with a nil handle.
type Transactor struct{}

func (Transactor) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type UserRepository struct{ mock.Mock }

var _ repositories.UserRepository = (*UserRepository)(nil)

func (m *UserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	return get[*models.User](args, 0), args.Error(1)
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	return get[*models.User](args, 0), args.Error(1)
}

func (m *UserRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	args := m.Called(ctx, phone)
	return get[*models.User](args, 0), args.Error(1)
}

func (m *UserRepository) Update(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) IncrementTokenVersion(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *UserRepository) SetStatus(ctx context.Context, id uint, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *UserRepository) SetKYCStatus(ctx context.Context, id uint, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *UserRepository) List(ctx context.Context, role string, limit, offset int) ([]models.User, int64, error) {
	args := m.Called(ctx, role, limit, offset)
	return get[[]models.User](args, 0), get[int64](args, 1), args.Error(2)
}

func (m *UserRepository) WithTx(*gorm.DB) repositories.UserRepository { return m }

type EventRepository struct{ mock.Mock }

var _ repositories.EventRepository = (*EventRepository)(nil)

func (m *EventRepository) Create(ctx context.Context, event *models.Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *EventRepository) GetByID(ctx context.Context, id uint) (*models.Event, error) {
	args := m.Called(ctx, id)
	return get[*models.Event](args, 0), args.Error(1)
}

func (m *EventRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Event, error) {
	args := m.Called(ctx, id)
	return get[*models.Event](args, 0), args.Error(1)
}

func (m *EventRepository) Update(ctx context.Context, event *models.Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *EventRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *EventRepository) List(ctx context.Context, f repositories.EventFilter, limit, offset int) ([]models.Event, int64, error) {
	args := m.Called(ctx, f, limit, offset)
	return get[[]models.Event](args, 0), get[int64](args, 1), args.Error(2)
}

func (m *EventRepository) WithTx(*gorm.DB) repositories.EventRepository { return m }

type PoolRepository struct{ mock.Mock }

var _ repositories.PoolRepository = (*PoolRepository)(nil)

func (m *PoolRepository) Create(ctx context.Context, pool *models.Pool) error {
	return m.Called(ctx, pool).Error(0)
}

func (m *PoolRepository) GetByID(ctx context.Context, id uint) (*models.Pool, error) {
	args := m.Called(ctx, id)
	return get[*models.Pool](args, 0), args.Error(1)
}

func (m *PoolRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Pool, error) {
	args := m.Called(ctx, id)
	return get[*models.Pool](args, 0), args.Error(1)
}

func (m *PoolRepository) GetByEventID(ctx context.Context, eventID uint) (*models.Pool, error) {
	args := m.Called(ctx, eventID)
	return get[*models.Pool](args, 0), args.Error(1)
}

func (m *PoolRepository) Update(ctx context.Context, pool *models.Pool) error {
	return m.Called(ctx, pool).Error(0)
}

func (m *PoolRepository) ListByOrganizer(ctx context.Context, organizerID uint, limit, offset int) ([]models.Pool, int64, error) {
	args := m.Called(ctx, organizerID, limit, offset)
	return get[[]models.Pool](args, 0), get[int64](args, 1), args.Error(2)
}

func (m *PoolRepository) ListOpen(ctx context.Context, limit, offset int) ([]models.Pool, int64, error) {
	args := m.Called(ctx, limit, offset)
	return get[[]models.Pool](args, 0), get[int64](args, 1), args.Error(2)
}

func (m *PoolRepository) CreateInvitation(ctx context.Context, inv *models.PoolInvitation) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *PoolRepository) GetInvitation(ctx context.Context, id uint) (*models.PoolInvitation, error) {
	args := m.Called(ctx, id)
	return get[*models.PoolInvitation](args, 0), args.Error(1)
}

func (m *PoolRepository) UpdateInvitation(ctx context.Context, inv *models.PoolInvitation) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *PoolRepository) ListInvitationsByPool(ctx context.Context, poolID uint) ([]models.PoolInvitation, error) {
	args := m.Called(ctx, poolID)
	return get[[]models.PoolInvitation](args, 0), args.Error(1)
}

func (m *PoolRepository) ListInvitationsByGig(ctx context.Context, gigID uint, status string) ([]models.PoolInvitation, error) {
	args := m.Called(ctx, gigID, status)
	return get[[]models.PoolInvitation](args, 0), args.Error(1)
}

func (m *PoolRepository) CountAccepted(ctx context.Context, poolID uint) (int64, error) {
	args := m.Called(ctx, poolID)
	return get[int64](args, 0), args.Error(1)
}

func (m *PoolRepository) AttendedGigs(ctx context.Context, eventID uint) ([]models.PoolInvitation, error) {
	args := m.Called(ctx, eventID)
	return get[[]models.PoolInvitation](args, 0), args.Error(1)
}

func (m *PoolRepository) HasAcceptedGig(ctx context.Context, eventID, gigID uint) (bool, error) {
	args := m.Called(ctx, eventID, gigID)
	return args.Bool(0), args.Error(1)
}

func (m *PoolRepository) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return get[int64](args, 0), args.Error(1)
}

func (m *PoolRepository) WithTx(*gorm.DB) repositories.PoolRepository { return m }

type EscrowRepository struct{ mock.Mock }

var _ repositories.EscrowRepository = (*EscrowRepository)(nil)

func (m *EscrowRepository) Create(ctx context.Context, escrow *models.Escrow) error {
	return m.Called(ctx, escrow).Error(0)
}

func (m *EscrowRepository) GetByID(ctx context.Context, id uint) (*models.Escrow, error) {
	args := m.Called(ctx, id)
	return get[*models.Escrow](args, 0), args.Error(1)
}

func (m *EscrowRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Escrow, error) {
	args := m.Called(ctx, id)
	return get[*models.Escrow](args, 0), args.Error(1)
}

func (m *EscrowRepository) Update(ctx context.Context, escrow *models.Escrow) error {
	return m.Called(ctx, escrow).Error(0)
}

func (m *EscrowRepository) GetActiveByEvent(ctx context.Context, eventID uint) (*models.Escrow, error) {
	args := m.Called(ctx, eventID)
	return get[*models.Escrow](args, 0), args.Error(1)
}

func (m *EscrowRepository) List(ctx context.Context, hostID uint, status string, limit, offset int) ([]models.Escrow, int64, error) {
	args := m.Called(ctx, hostID, status, limit, offset)
	return get[[]models.Escrow](args, 0), get[int64](args, 1), args.Error(2)
}

func (m *EscrowRepository) ListReleasable(ctx context.Context, cutoff time.Time) ([]models.Escrow, error) {
	args := m.Called(ctx, cutoff)
	return get[[]models.Escrow](args, 0), args.Error(1)
}

func (m *EscrowRepository) WithTx(*gorm.DB) repositories.EscrowRepository { return m }

type PaymentRepository struct{ mock.Mock }

var _ repositories.PaymentRepository = (*PaymentRepository)(nil)

func (m *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *PaymentRepository) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	args := m.Called(ctx, id)
	return get[*models.Payment](args, 0), args.Error(1)
}

func (m *PaymentRepository) GetByOrderIDForUpdate(ctx context.Context, orderID string) (*models.Payment, error) {
	args := m.Called(ctx, orderID)
	return get[*models.Payment](args, 0), args.Error(1)
}

func (m *PaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *PaymentRepository) ListByHost(ctx context.Context, hostID uint, limit, offset int) ([]models.Payment, int64, error) {
	args := m.Called(ctx, hostID, limit, offset)
	return get[[]models.Payment](args, 0), get[int64](args, 1), args.Error(2)
}

func (m *PaymentRepository) WithTx(*gorm.DB) repositories.PaymentRepository { return m }

type WalletRepository struct{ mock.Mock }

var _ repositories.WalletRepository = (*WalletRepository)(nil)

func (m *WalletRepository) Create(ctx context.Context, wallet *models.Wallet) error {
	return m.Called(ctx, wallet).Error(0)
}

func (m *WalletRepository) GetByUserID(ctx context.Context, userID uint) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	return get[*models.Wallet](args, 0), args.Error(1)
}

func (m *WalletRepository) GetByUserIDForUpdate(ctx context.Context, userID uint) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	return get[*models.Wallet](args, 0), args.Error(1)
}

func (m *WalletRepository) Credit(ctx context.Context, userID uint, amount int64, entry *models.Transaction) (*models.Wallet, error) {
	args := m.Called(ctx, userID, amount, entry)
	return get[*models.Wallet](args, 0), args.Error(1)
}

func (m *WalletRepository) Debit(ctx context.Context, userID uint, amount int64, entry *models.Transaction) (*models.Wallet, error) {
	args := m.Called(ctx, userID, amount, entry)
	return get[*models.Wallet](args, 0), args.Error(1)
}

func (m *WalletRepository) ListTransactions(ctx context.Context, userID uint, limit, offset int) ([]models.Transaction, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	return get[[]models.Transaction](args, 0), get[int64](args, 1), args.Error(2)
}

func (m *WalletRepository) SumByCategory(ctx context.Context, userID uint, category string, since time.Time) (int64, error) {
	args := m.Called(ctx, userID, category, since)
	return get[int64](args, 0), args.Error(1)
}

func (m *WalletRepository) SumWithdrawalReversals(ctx context.Context, userID uint, since time.Time) (int64, error) {
	args := m.Called(ctx, userID, since)
	return get[int64](args, 0), args.Error(1)
}

func (m *WalletRepository) WithTx(*gorm.DB) repositories.WalletRepository { return m }

type WithdrawalRepository struct{ mock.Mock }

var _ repositories.WithdrawalRepository = (*WithdrawalRepository)(nil)

func (m *WithdrawalRepository) Create(ctx context.Context, w *models.Withdrawal) error {
	return m.Called(ctx, w).Error(0)
}

func (m *WithdrawalRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Withdrawal, error) {
	args := m.Called(ctx, id)
	return get[*models.Withdrawal](args, 0), args.Error(1)
}

func (m *WithdrawalRepository) Update(ctx context.Context, w *models.Withdrawal) error {
	return m.Called(ctx, w).Error(0)
}

func (m *WithdrawalRepository) List(ctx context.Context, userID uint, status string, limit, offset int) ([]models.Withdrawal, int64, error) {
	args := m.Called(ctx, userID, status, limit, offset)
	return get[[]models.Withdrawal](args, 0), get[int64](args, 1), args.Error(2)
}

func (m *WithdrawalRepository) WithTx(*gorm.DB) repositories.WithdrawalRepository { return m }

type DocumentRepository struct{ mock.Mock }

var _ repositories.DocumentRepository = (*DocumentRepository)(nil)

func (m *DocumentRepository) GetByID(ctx context.Context, id uint) (*models.Document, error) {
	args := m.Called(ctx, id)
	return get[*models.Document](args, 0), args.Error(1)
}

func (m *DocumentRepository) GetByUserAndType(ctx context.Context, userID uint, docType string) (*models.Document, error) {
	args := m.Called(ctx, userID, docType)
	return get[*models.Document](args, 0), args.Error(1)
}

func (m *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *DocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *DocumentRepository) ListByUser(ctx context.Context, userID uint) ([]models.Document, error) {
	args := m.Called(ctx, userID)
	return get[[]models.Document](args, 0), args.Error(1)
}

func (m *DocumentRepository) WithTx(*gorm.DB) repositories.DocumentRepository { return m }

type KYCRepository struct{ mock.Mock }

var _ repositories.KYCRepository = (*KYCRepository)(nil)

func (m *KYCRepository) GetByUserID(ctx context.Context, userID uint) (*models.KYCVerification, error) {
	args := m.Called(ctx, userID)
	return get[*models.KYCVerification](args, 0), args.Error(1)
}

func (m *KYCRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.KYCVerification, error) {
	args := m.Called(ctx, id)
	return get[*models.KYCVerification](args, 0), args.Error(1)
}

func (m *KYCRepository) Create(ctx context.Context, kyc *models.KYCVerification) error {
	return m.Called(ctx, kyc).Error(0)
}

func (m *KYCRepository) Update(ctx context.Context, kyc *models.KYCVerification) error {
	return m.Called(ctx, kyc).Error(0)
}

func (m *KYCRepository) List(ctx context.Context, status string, limit, offset int) ([]models.KYCVerification, int64, error) {
	args := m.Called(ctx, status, limit, offset)
	return get[[]models.KYCVerification](args, 0), get[int64](args, 1), args.Error(2)
}

func (m *KYCRepository) WithTx(*gorm.DB) repositories.KYCRepository { return m }

type NotificationRepository struct{ mock.Mock }

var _ repositories.NotificationRepository = (*NotificationRepository)(nil)

func (m *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *NotificationRepository) ListByUser(ctx context.Context, userID uint, unreadOnly bool, limit, offset int) ([]models.Notification, int64, error) {
	args := m.Called(ctx, userID, unreadOnly, limit, offset)
	return get[[]models.Notification](args, 0), get[int64](args, 1), args.Error(2)
}

func (m *NotificationRepository) MarkRead(ctx context.Context, userID, id uint) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *NotificationRepository) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return get[int64](args, 0), args.Error(1)
}

func (m *NotificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return get[int64](args, 0), args.Error(1)
}

func (m *NotificationRepository) WithTx(*gorm.DB) repositories.NotificationRepository { return m }

type DisputeRepository struct{ mock.Mock }

var _ repositories.DisputeRepository = (*DisputeRepository)(nil)

func (m *DisputeRepository) Create(ctx context.Context, d *models.Dispute) error {
	return m.Called(ctx, d).Error(0)
}

func (m *DisputeRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Dispute, error) {
	args := m.Called(ctx, id)
	return get[*models.Dispute](args, 0), args.Error(1)
}

func (m *DisputeRepository) Update(ctx context.Context, d *models.Dispute) error {
	return m.Called(ctx, d).Error(0)
}

func (m *DisputeRepository) List(ctx context.Context, raisedBy uint, status string, limit, offset int) ([]models.Dispute, int64, error) {
	args := m.Called(ctx, raisedBy, status, limit, offset)
	return get[[]models.Dispute](args, 0), get[int64](args, 1), args.Error(2)
}

func (m *DisputeRepository) ExistsOpen(ctx context.Context, eventID, raisedBy uint) (bool, error) {
	args := m.Called(ctx, eventID, raisedBy)
	return args.Bool(0), args.Error(1)
}

func (m *DisputeRepository) CountOpenByEvent(ctx context.Context, eventID uint) (int64, error) {
	args := m.Called(ctx, eventID)
	return get[int64](args, 0), args.Error(1)
}

func (m *DisputeRepository) WithTx(*gorm.DB) repositories.DisputeRepository { return m }

type StatsRepository struct{ mock.Mock }

var _ repositories.StatsRepository = (*StatsRepository)(nil)

func (m *StatsRepository) EventsByStatus(ctx context.Context, hostID uint) (map[string]int64, error) {
	args := m.Called(ctx, hostID)
	return get[map[string]int64](args, 0), args.Error(1)
}

func (m *StatsRepository) EscrowTotals(ctx context.Context, hostID uint) (map[string]int64, error) {
	args := m.Called(ctx, hostID)
	return get[map[string]int64](args, 0), args.Error(1)
}

func (m *StatsRepository) InvitationsByStatus(ctx context.Context, gigID uint) (map[string]int64, error) {
	args := m.Called(ctx, gigID)
	return get[map[string]int64](args, 0), args.Error(1)
}

func (m *StatsRepository) CountPools(ctx context.Context, organizerID uint) (int64, error) {
	args := m.Called(ctx, organizerID)
	return get[int64](args, 0), args.Error(1)
}

func (m *StatsRepository) CountAcceptedForOrganizer(ctx context.Context, organizerID uint) (int64, error) {
	args := m.Called(ctx, organizerID)
	return get[int64](args, 0), args.Error(1)
}

func (m *StatsRepository) Earnings(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return get[int64](args, 0), args.Error(1)
}

func (m *StatsRepository) UsersByRole(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	return get[map[string]int64](args, 0), args.Error(1)
}

func (m *StatsRepository) Count(ctx context.Context, model interface{}, status string) (int64, error) {
	args := m.Called(ctx, model, status)
	return get[int64](args, 0), args.Error(1)
}

func (m *StatsRepository) CountOpenDisputesForHost(ctx context.Context, hostID uint) (int64, error) {
	args := m.Called(ctx, hostID)
	return get[int64](args, 0), args.Error(1)
}

type Cache struct{ mock.Mock }

var _ cache.Cache = (*Cache)(nil)

func (m *Cache) GetSession(ctx context.Context, userID uint) (*cache.SessionState, error) {
	args := m.Called(ctx, userID)
	return get[*cache.SessionState](args, 0), args.Error(1)
}

func (m *Cache) CacheSession(ctx context.Context, userID uint, state *cache.SessionState) error {
	return m.Called(ctx, userID, state).Error(0)
}

func (m *Cache) InvalidateSession(ctx context.Context, userID uint) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *Cache) GetWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	return get[*models.Wallet](args, 0), args.Error(1)
}

func (m *Cache) CacheWallet(ctx context.Context, wallet *models.Wallet) error {
	return m.Called(ctx, wallet).Error(0)
}

func (m *Cache) InvalidateWallet(ctx context.Context, userID uint) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *Cache) MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *Cache) Forget(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}
