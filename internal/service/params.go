package service

import (
	"github.com/vendorgate/vendorgate/internal/config"
	"github.com/vendorgate/vendorgate/internal/domain/procurement"
	"github.com/vendorgate/vendorgate/internal/email"
	"github.com/vendorgate/vendorgate/internal/logger"
	"github.com/vendorgate/vendorgate/internal/publisher"
	"github.com/vendorgate/vendorgate/internal/slack"
)

// ServiceParams bundles the dependencies shared by all services. Everything
// here is constructed once at process start and injected; services hold no
// mutable state of their own.
type ServiceParams struct {
	Logger      *logger.Logger
	Config      *config.Configuration
	Procurement procurement.Client
	Email       email.Service
	Slack       slack.Service
	Publisher   publisher.ChangePublisher
}
