package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/slack-go/slack"

	"github.com/vendorgate/vendorgate/internal/domain/procurement"
	ierr "github.com/vendorgate/vendorgate/internal/errors"
	"github.com/vendorgate/vendorgate/internal/logger"
)

const webhookTimeout = 10 * time.Second

// Service posts entitlement notifications to per-product Slack webhooks.
type Service interface {
	NotifyEntitlement(ctx context.Context, webhookURL, title string, entitlement *procurement.Entitlement) error
}

type service struct {
	httpClient *http.Client
	logger     *logger.Logger
}

// NewService creates a new slack notification service.
func NewService(log *logger.Logger) Service {
	return &service{
		httpClient: &http.Client{Timeout: webhookTimeout},
		logger:     log,
	}
}

// NotifyEntitlement posts a block-kit message with a header and the
// entitlement rendered as pre-formatted JSON.
func (s *service) NotifyEntitlement(ctx context.Context, webhookURL, title string, entitlement *procurement.Entitlement) error {
	if webhookURL == "" {
		s.logger.Warnw("no slack webhook url configured, skipping notification")
		return nil
	}

	body, err := json.MarshalIndent(entitlement, "", "  ")
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to marshal entitlement for slack message").
			Mark(ierr.ErrInternal)
	}

	msg := &slack.WebhookMessage{
		Text: title,
		Blocks: &slack.Blocks{
			BlockSet: []slack.Block{
				slack.NewHeaderBlock(
					slack.NewTextBlockObject(slack.PlainTextType, title, false, false),
				),
				slack.NewSectionBlock(
					slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("```%s```", string(body)), false, false),
					nil, nil,
				),
			},
		},
	}

	if err := slack.PostWebhookCustomHTTPContext(ctx, webhookURL, s.httpClient, msg); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to post slack message").
			WithReportableDetails(map[string]interface{}{
				"entitlement_id": entitlement.ID,
			}).
			Mark(ierr.ErrHTTPClient)
	}

	s.logger.Infow("slack notification sent", "entitlement_id", entitlement.ID)

	return nil
}
