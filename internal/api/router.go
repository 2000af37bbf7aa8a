package api

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/vendorgate/vendorgate/internal/api/v1"
	"github.com/vendorgate/vendorgate/internal/config"
	"github.com/vendorgate/vendorgate/internal/logger"
	"github.com/vendorgate/vendorgate/internal/rest/middleware"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Health       *v1.HealthHandler
	Notification *v1.NotificationHandler
	Entitlement  *v1.EntitlementHandler
	Account      *v1.AccountHandler
	Activation   *v1.ActivationHandler
	UI           *v1.UIHandler
}

// NewRouter assembles the gin engine: liveness probe, push-notification
// webhook, signup activation, the operator control API under /v1, and the
// server-rendered operator pages.
func NewRouter(handlers Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	router := gin.New()

	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.LoggingMiddleware(log),
		middleware.SentryMiddleware(cfg),
		middleware.ErrorHandler(log),
	)

	router.GET("/alive", handlers.Health.Alive)

	// Push subscription endpoint. Must stay 200 on every outcome.
	router.POST("/v1/notification", handlers.Notification.HandleNotification)

	// Marketplace signup handshake. Both paths accept the same token form
	// post; which one the marketplace calls depends on listing settings.
	router.POST("/login", handlers.Activation.Activate)
	router.POST("/activate", handlers.Activation.Activate)

	apiV1 := router.Group("/v1")
	{
		entitlements := apiV1.Group("/entitlements")
		{
			entitlements.GET("", handlers.Entitlement.ListEntitlements)
			entitlements.POST("/:id/approve", handlers.Entitlement.ApproveEntitlement)
			entitlements.POST("/:id/reject", handlers.Entitlement.RejectEntitlement)
		}

		accounts := apiV1.Group("/accounts")
		{
			accounts.GET("", handlers.Account.ListAccounts)
			accounts.POST("/:id/approve", handlers.Account.ApproveAccount)
			accounts.POST("/:id/reset", handlers.Account.ResetAccount)
		}
	}

	router.GET("/app", handlers.UI.Entitlements)
	router.GET("/accounts", handlers.UI.Accounts)
	router.GET("/app/account/:id", handlers.UI.Account)
	router.GET("/signup", handlers.UI.Signup)
	router.GET("/registration", handlers.UI.Signup)

	return router
}
