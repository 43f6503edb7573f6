// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including middleware and authentication requirements.
package routes

import (
	"github.com/gofiber/fiber/v2"

	"sevapoint/internal/config"
	"sevapoint/internal/handlers"
	"sevapoint/internal/middleware"
	"sevapoint/internal/models"
	"sevapoint/internal/repositories"
	"sevapoint/internal/services/application"
	"sevapoint/internal/services/auth"
	"sevapoint/internal/services/cleanup"
	"sevapoint/internal/services/gateway"
	"sevapoint/internal/services/notification"
	"sevapoint/internal/services/scheme"
	"sevapoint/internal/services/wallet"
)

// SetupRoutes wires repositories, services, and handlers, then registers
// every route group on the app.
func SetupRoutes(app *fiber.App) {
	// Repositories
	walletRepo := repositories.NewWalletRepository(repositories.DB)
	appRepo := repositories.NewApplicationRepository(repositories.DB)
	schemeRepo := repositories.NewSchemeRepository(repositories.DB)
	userRepo := repositories.NewUserRepository(repositories.DB)
	notificationRepo := repositories.NewNotificationRepository(repositories.DB)

	// Services
	var walletCache wallet.Cache = wallet.NoopCache{}
	if repositories.CacheService != nil {
		walletCache = repositories.CacheService
	}
	walletService := wallet.NewService(walletRepo, walletCache)
	notificationService := notification.NewService(notificationRepo, userRepo)
	appService := application.NewService(appRepo, schemeRepo, walletService, notificationService)
	schemeService := scheme.NewService(schemeRepo)
	cleanupService := cleanup.NewService(appRepo, walletRepo, notificationRepo)
	authService := auth.NewService(userRepo)
	gatewayService := gateway.NewService(
		config.GetEnv("RAZORPAY_WEBHOOK_SECRET", ""),
		walletService,
		notificationService,
	)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userRepo)
	walletHandler := handlers.NewWalletHandler(walletService)
	appHandler := handlers.NewApplicationHandler(appService)
	schemeHandler := handlers.NewSchemeHandler(schemeService)
	adminHandler := handlers.NewAdminHandler(walletService, cleanupService)
	webhookHandler := handlers.NewWebhookHandler(gatewayService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	app.Get("/health", handlers.HealthCheck)

	api := app.Group("/api")

	// Public endpoints
	api.Post("/register", authHandler.RegisterUser)
	api.Post("/login", authHandler.LoginUser)
	api.Post("/refresh", authHandler.RefreshToken)
	api.Post("/webhooks/razorpay", webhookHandler.HandleRazorpayWebhook)

	// Protected endpoints
	authMiddleware := middleware.NewAuthMiddleware(userRepo)
	protected := api.Use(authMiddleware.Handler)

	protected.Get("/profile", userHandler.GetProfile)
	protected.Post("/logout", authHandler.Logout)
	protected.Put("/password", authHandler.ChangePassword)

	protected.Get("/wallet", walletHandler.GetWallet)
	protected.Get("/wallet/transactions", walletHandler.GetTransactions)

	protected.Post("/applications", middleware.RequireRoles(models.RoleRetailer), appHandler.CreateApplication)
	protected.Get("/applications", appHandler.ListApplications)
	protected.Get("/applications/:id", appHandler.GetApplication)
	protected.Put("/applications/:id/status", middleware.ReviewerOnly(), appHandler.UpdateStatus)
	protected.Post("/applications/:id/complete", middleware.ReviewerOnly(), appHandler.CompleteApplication)
	protected.Delete("/applications/:id", middleware.AdminOnly(), appHandler.DeleteApplication)

	protected.Get("/schemes", schemeHandler.ListSchemes)
	protected.Get("/schemes/:id", schemeHandler.GetScheme)
	protected.Post("/schemes", middleware.AdminOnly(), schemeHandler.CreateScheme)
	protected.Put("/schemes/:id", middleware.AdminOnly(), schemeHandler.UpdateScheme)

	protected.Get("/notifications", notificationHandler.ListNotifications)
	protected.Put("/notifications/:id/read", notificationHandler.MarkNotificationRead)

	admin := protected.Group("/admin", middleware.AdminOnly())
	admin.Post("/refunds", adminHandler.CreateRefund)
	admin.Patch("/refunds/:id", adminHandler.SettleRefund)
	admin.Post("/data-cleanup", adminHandler.DataCleanup)
}
