package routes

import (
	"eventflex/internal/config"
	"eventflex/internal/gateway"
	"eventflex/internal/metrics"
	"eventflex/internal/repositories"
	"eventflex/internal/repositories/cache"
	"eventflex/internal/repositories/mongostore"
	"eventflex/internal/services/admin"
	"eventflex/internal/services/audit"
	"eventflex/internal/services/auth"
	"eventflex/internal/services/dashboard"
	"eventflex/internal/services/dispute"
	"eventflex/internal/services/escrow"
	"eventflex/internal/services/event"
	"eventflex/internal/services/kyc"
	"eventflex/internal/services/message"
	"eventflex/internal/services/notification"
	"eventflex/internal/services/payment"
	"eventflex/internal/services/pool"
	"eventflex/internal/services/user"
	"eventflex/internal/services/wallet"
	"eventflex/internal/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Infrastructure holds the connections the services are built on.
type Infrastructure struct {
	Config  *config.Config
	DB      *gorm.DB
	Cache   cache.Cache
	Mongo   *mongo.Database
	Gateway gateway.Gateway
}

// Services is the fully wired service layer. The scheduler shares it with the HTTP routes.
type Services struct {
	Tokens        *utils.TokenManager
	Auth          auth.Service
	User          user.Service
	Event         event.Service
	Pool          pool.Service
	Escrow        escrow.Service
	Payment       payment.Service
	Wallet        wallet.Service
	KYC           kyc.Service
	Dispute       dispute.Service
	Notifications *notification.Service
	Messages      message.Service
	Dashboard     dashboard.Service
	Admin         admin.Service
}

// NewServices builds repositories and services in dependency order.
func NewServices(infra Infrastructure) *Services {
	cfg, db := infra.Config, infra.DB

	userRepo := repositories.NewUserRepository(db)
	walletRepo := repositories.NewWalletRepository(db)
	eventRepo := repositories.NewEventRepository(db)
	poolRepo := repositories.NewPoolRepository(db)
	escrowRepo := repositories.NewEscrowRepository(db)
	disputeRepo := repositories.NewDisputeRepository(db)
	tx := repositories.NewTransactor(db)

	notifications := notification.NewService(repositories.NewNotificationRepository(db))
	auditLog := audit.NewService(mongostore.NewAuditRepository(infra.Mongo))
	tokens := utils.NewTokenManager(cfg.JWT)

	wallets := wallet.NewService(wallet.Dependencies{
		Users:       userRepo,
		Wallets:     walletRepo,
		Withdrawals: repositories.NewWithdrawalRepository(db),
		Tx:          tx,
		Cache:       infra.Cache,
		Notifier:    notifications,
		Audit:       auditLog,
		Metrics:     metrics.WalletCollector{},
	}, cfg.Wallet, cfg.Gateway.Currency)

	escrows := escrow.NewService(escrow.Dependencies{
		Escrows:  escrowRepo,
		Events:   eventRepo,
		Pools:    poolRepo,
		Disputes: disputeRepo,
		Tx:       tx,
		Wallets:  wallets,
		Notifier: notifications,
		Audit:    auditLog,
	})

	return &Services{
		Tokens: tokens,
		Auth:   auth.NewService(userRepo, walletRepo, tx, infra.Cache, tokens),
		User:   user.NewService(userRepo),
		Event: event.NewService(event.Dependencies{
			Events:   eventRepo,
			Pools:    poolRepo,
			Users:    userRepo,
			Tx:       tx,
			Escrow:   escrows,
			Notifier: notifications,
		}),
		Pool:   pool.NewService(poolRepo, eventRepo, userRepo, tx, notifications),
		Escrow: escrows,
		Payment: payment.NewService(payment.Dependencies{
			Gateway:  infra.Gateway,
			Payments: repositories.NewPaymentRepository(db),
			Escrows:  escrowRepo,
			Events:   eventRepo,
			Tx:       tx,
			Cache:    infra.Cache,
			Wallets:  wallets,
			Notifier: notifications,
		}, cfg.Gateway.Currency),
		Wallet: wallets,
		KYC: kyc.NewService(kyc.Dependencies{
			Documents: repositories.NewDocumentRepository(db),
			KYC:       repositories.NewKYCRepository(db),
			Users:     userRepo,
			Tx:        tx,
			Files:     mongostore.NewFileStore(infra.Mongo),
			Notifier:  notifications,
			Audit:     auditLog,
		}, cfg.Upload.MaxSize),
		Dispute: dispute.NewService(dispute.Dependencies{
			Disputes: disputeRepo,
			Events:   eventRepo,
			Pools:    poolRepo,
			Escrows:  escrowRepo,
			Tx:       tx,
			Escrow:   escrows,
			Notifier: notifications,
			Audit:    auditLog,
		}),
		Notifications: notifications,
		Messages:      message.NewService(mongostore.NewMessageRepository(infra.Mongo), userRepo, notifications),
		Dashboard:     dashboard.NewService(repositories.NewStatsRepository(db), userRepo, wallets),
		Admin: admin.NewService(admin.Dependencies{
			Users:    userRepo,
			Events:   eventRepo,
			Escrows:  escrowRepo,
			Tx:       tx,
			Cache:    infra.Cache,
			Notifier: notifications,
			Audit:    auditLog,
			Logs:     auditLog,
		}),
	}
}
