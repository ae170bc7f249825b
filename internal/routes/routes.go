// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including middleware and authentication requirements.
package routes

import (
	"eventflex/internal/config"
	"eventflex/internal/handlers"
	"eventflex/internal/middleware"
	"eventflex/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all application routes.
// It groups routes by role and applies the matching guards.
func SetupRoutes(app *fiber.App, svc *Services, jwt config.JWTConfig) {
	authHandler := handlers.NewAuthHandler(svc.Auth, jwt)
	userHandler := handlers.NewUserHandler(svc.User)
	eventHandler := handlers.NewEventHandler(svc.Event)
	poolHandler := handlers.NewPoolHandler(svc.Pool)
	paymentHandler := handlers.NewPaymentHandler(svc.Payment, svc.Escrow)
	walletHandler := handlers.NewWalletHandler(svc.Wallet)
	kycHandler := handlers.NewKYCHandler(svc.KYC)
	disputeHandler := handlers.NewDisputeHandler(svc.Dispute)
	notificationHandler := handlers.NewNotificationHandler(svc.Notifications)
	messageHandler := handlers.NewMessageHandler(svc.Messages)
	dashboardHandler := handlers.NewDashboardHandler(svc.Dashboard)
	adminHandler := handlers.NewAdminHandler(svc.Admin)

	api := app.Group("/api", middleware.RequestContext())

	// Public endpoints (no auth required)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Signed by the gateway, not by a user token.
	api.Post("/webhooks/payment", paymentHandler.Webhook)

	authMiddleware := middleware.NewAuthMiddleware(svc.Tokens, svc.Auth)
	protected := api.Group("", authMiddleware.Handler)

	me := protected.Group("/auth")
	me.Get("/me", authHandler.Me)
	me.Post("/logout", authHandler.Logout)
	me.Post("/change-password", middleware.RequirePermission(models.PermissionChangePassword), authHandler.ChangePassword)

	// Shared by every authenticated role
	protected.Get("/events", eventHandler.ListPublished)
	protected.Get("/events/:id", eventHandler.GetPublished)

	notifications := protected.Group("/notifications")
	notifications.Get("/", notificationHandler.List)
	notifications.Get("/unread-count", notificationHandler.UnreadCount)
	notifications.Post("/read-all", notificationHandler.MarkAllRead)
	notifications.Post("/:id/read", notificationHandler.MarkRead)

	messages := protected.Group("/messages")
	messages.Get("/", messageHandler.Conversations)
	messages.Post("/", middleware.RequirePermission(models.PermissionMessageWrite), messageHandler.Send)
	messages.Get("/:userId", messageHandler.Conversation)

	disputes := protected.Group("/disputes", middleware.RequireRole(models.RoleHost, models.RoleOrganizer, models.RoleGig))
	disputes.Get("/", disputeHandler.GetDisputes)
	disputes.Post("/", middleware.RequirePermission(models.PermissionDisputeWrite), disputeHandler.FileDispute)

	host := protected.Group("/host", middleware.RequireRole(models.RoleHost))
	organizer := protected.Group("/organizer", middleware.RequireRole(models.RoleOrganizer))
	gigs := protected.Group("/gigs", middleware.RequireRole(models.RoleGig))

	member := account{user: userHandler, wallet: walletHandler, kyc: kycHandler}
	member.mount(host, dashboardHandler.Host)
	member.mount(organizer, dashboardHandler.Organizer)
	member.mount(gigs, dashboardHandler.Gig)

	setupHostRoutes(host, eventHandler, paymentHandler)
	setupOrganizerRoutes(organizer, poolHandler)
	setupGigRoutes(gigs, poolHandler)

	setupAdminRoutes(protected, adminHandler, walletHandler, kycHandler, disputeHandler, dashboardHandler)
}

// account groups the endpoints every non-admin role gets under its own prefix.
type account struct {
	user   *handlers.UserHandler
	wallet *handlers.WalletHandler
	kyc    *handlers.KYCHandler
}

func (a account) mount(router fiber.Router, dashboard fiber.Handler) {
	router.Get("/profile", a.user.GetProfile)
	router.Put("/profile", a.user.UpdateProfile)
	router.Get("/dashboard", dashboard)

	wallet := router.Group("/wallet", middleware.RequirePermission(models.PermissionWalletRead))
	wallet.Get("/", a.wallet.GetWallet)
	wallet.Get("/transactions", a.wallet.Transactions)
	wallet.Get("/withdrawals", a.wallet.ListWithdrawals)
	wallet.Post("/withdraw", middleware.RequirePermission(models.PermissionWalletWrite), a.wallet.Withdraw)

	router.Post("/documents", middleware.RequirePermission(models.PermissionKYCSubmit), a.kyc.UploadDocument)
	router.Get("/documents", a.kyc.ListDocuments)
	router.Get("/documents/:id/file", a.kyc.DocumentFile)
	router.Get("/kyc", a.kyc.GetStatus)
	router.Post("/kyc/submit", middleware.RequirePermission(models.PermissionKYCSubmit), a.kyc.Submit)
}

func setupHostRoutes(host fiber.Router, events *handlers.EventHandler, payments *handlers.PaymentHandler) {
	write := middleware.RequirePermission(models.PermissionEventWrite)
	host.Post("/events", write, events.Create)
	host.Get("/events", events.List)
	host.Get("/events/:id", events.Get)
	host.Put("/events/:id", write, events.Update)
	host.Delete("/events/:id", write, events.Delete)
	host.Post("/events/:id/organizer", write, events.AssignOrganizer)
	// publish, start, complete or cancel
	host.Post("/events/:id/:action", write, events.Transition)

	host.Post("/payment/deposit", middleware.RequirePermission(models.PermissionEscrowWrite), payments.Deposit)
	host.Post("/payment/verify", middleware.RequirePermission(models.PermissionEscrowWrite), payments.Verify)
	host.Get("/payments", payments.ListPayments)
	host.Get("/escrows", payments.ListEscrows)
	host.Get("/escrows/:id", payments.GetEscrow)
	host.Post("/escrows/:id/release", middleware.RequirePermission(models.PermissionEscrowWrite), payments.ReleaseEscrow)
}

func setupOrganizerRoutes(organizer fiber.Router, pools *handlers.PoolHandler) {
	write := middleware.RequirePermission(models.PermissionPoolWrite)

	organizer.Post("/events/:id/pool", write, pools.CreatePool)
	organizer.Get("/pools", pools.ListPools)
	organizer.Get("/pools/:id", pools.GetPool)
	organizer.Post("/pools/:id/invite", write, pools.Invite)
	organizer.Post("/invitations/:id/accept", write, pools.DecideApplication(true))
	organizer.Post("/invitations/:id/reject", write, pools.DecideApplication(false))
	organizer.Post("/invitations/:id/attendance", write, pools.MarkAttendance)
}

func setupGigRoutes(gigs fiber.Router, pools *handlers.PoolHandler) {
	apply := middleware.RequirePermission(models.PermissionPoolApply)

	gigs.Get("/pools", pools.ListOpen)
	gigs.Post("/pools/:id/apply", apply, pools.Apply)
	gigs.Get("/invitations", pools.ListInvitations)
	gigs.Post("/invitations/:id/accept", apply, pools.Respond(true))
	gigs.Post("/invitations/:id/decline", apply, pools.Respond(false))
}

func setupAdminRoutes(
	router fiber.Router,
	h *handlers.AdminHandler,
	wallets *handlers.WalletHandler,
	kyc *handlers.KYCHandler,
	disputes *handlers.DisputeHandler,
	dashboard *handlers.DashboardHandler,
) {
	admin := router.Group("/admin", middleware.RequireRole(models.RoleAdmin))
	read := middleware.RequirePermission(models.PermissionReadAdmin)
	write := middleware.RequirePermission(models.PermissionWriteAdmin)

	admin.Get("/dashboard", read, dashboard.Admin)

	admin.Get("/users", read, h.GetUsersPaginated)
	admin.Post("/users/:id/block", write, h.BlockUser)
	admin.Post("/users/:id/unblock", write, h.UnblockUser)
	admin.Get("/events", read, h.GetEvents)
	admin.Get("/escrows", read, h.GetEscrows)
	admin.Get("/audit-logs", read, h.GetAuditLogs)

	admin.Get("/withdrawals", read, wallets.AdminListWithdrawals)
	admin.Post("/withdrawals/:id/process", write, wallets.ProcessWithdrawal)
	admin.Post("/withdrawals/:id/reject", write, wallets.RejectWithdrawal)

	admin.Get("/kyc", read, kyc.List)
	admin.Post("/kyc/approve/:id", write, kyc.Approve)
	admin.Post("/kyc/reject/:id", write, kyc.Reject)
	admin.Get("/documents/:id/file", read, kyc.AdminDocumentFile)

	admin.Get("/disputes", read, disputes.AdminList)
	admin.Post("/disputes/:id/resolve", write, disputes.Resolve)
	admin.Post("/disputes/:id/reject", write, disputes.Reject)
}
