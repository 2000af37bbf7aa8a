package main

import (
	"context"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/vendorgate/vendorgate/internal/api"
	v1 "github.com/vendorgate/vendorgate/internal/api/v1"
	"github.com/vendorgate/vendorgate/internal/auth"
	"github.com/vendorgate/vendorgate/internal/config"
	domainprocurement "github.com/vendorgate/vendorgate/internal/domain/procurement"
	"github.com/vendorgate/vendorgate/internal/email"
	"github.com/vendorgate/vendorgate/internal/logger"
	"github.com/vendorgate/vendorgate/internal/procurement"
	"github.com/vendorgate/vendorgate/internal/publisher"
	"github.com/vendorgate/vendorgate/internal/service"
	"github.com/vendorgate/vendorgate/internal/slack"
)

func main() {
	fx.New(
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			email.NewEmailClient,
			email.NewService,
			slack.NewService,
			procurement.NewClient,
			publisher.NewKafkaPublisher,
			auth.NewMarketplaceVerifier,
			newServiceParams,
			service.NewAccountService,
			service.NewEntitlementService,
			service.NewActivationService,
			v1.NewHealthHandler,
			v1.NewNotificationHandler,
			v1.NewEntitlementHandler,
			v1.NewAccountHandler,
			v1.NewActivationHandler,
			v1.NewUIHandler,
			newHandlers,
			api.NewRouter,
		),
		fx.Invoke(
			initSentry,
			startServer,
		),
	).Run()
}

func newServiceParams(
	log *logger.Logger,
	cfg *config.Configuration,
	procurementClient domainprocurement.Client,
	emailService email.Service,
	slackService slack.Service,
	changePublisher publisher.ChangePublisher,
) service.ServiceParams {
	return service.ServiceParams{
		Logger:      log,
		Config:      cfg,
		Procurement: procurementClient,
		Email:       emailService,
		Slack:       slackService,
		Publisher:   changePublisher,
	}
}

func newHandlers(
	health *v1.HealthHandler,
	notification *v1.NotificationHandler,
	entitlement *v1.EntitlementHandler,
	account *v1.AccountHandler,
	activation *v1.ActivationHandler,
	ui *v1.UIHandler,
) api.Handlers {
	return api.Handlers{
		Health:       health,
		Notification: notification,
		Entitlement:  entitlement,
		Account:      account,
		Activation:   activation,
		UI:           ui,
	}
}

func initSentry(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger) {
	if !cfg.Sentry.Enabled || cfg.Sentry.DSN == "" {
		log.Debugw("sentry is disabled")
		return
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		EnableTracing:    true,
		TracesSampleRate: cfg.Sentry.SampleRate,
	})
	if err != nil {
		log.Errorw("failed to initialize sentry", "error", err)
		return
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sentry.Flush(2 * time.Second)
			return nil
		},
	})
}

func startServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
	changePublisher publisher.ChangePublisher,
) {
	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting server", "address", cfg.Server.Address)

			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("failed to start server: %v", err)
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("shutting down server")

			if err := changePublisher.Close(); err != nil {
				log.Errorw("failed to close change publisher", "error", err)
			}

			return server.Shutdown(ctx)
		},
	})
}
