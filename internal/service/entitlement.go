package service

import (
	"context"
	"encoding/json"

	"github.com/vendorgate/vendorgate/internal/config"
	"github.com/vendorgate/vendorgate/internal/domain/procurement"
	"github.com/vendorgate/vendorgate/internal/email"
	ierr "github.com/vendorgate/vendorgate/internal/errors"
)

const entitlementEmailFooter = "If you did not subscribe to this, you may ignore this message."

// EntitlementService reacts to entitlement lifecycle notifications and
// exposes the operator-driven entitlement operations of the control API.
type EntitlementService interface {
	// HandleEntitlementEvent classifies an inbound lifecycle event against
	// the entitlement's current remote state and performs the resulting
	// side effect. Same fail-soft contract as account handling: nothing
	// propagates to the webhook boundary.
	HandleEntitlementEvent(ctx context.Context, event *procurement.EntitlementEvent, eventType procurement.EventType)

	GetEntitlement(ctx context.Context, entitlementID string) (*procurement.Entitlement, error)
	ListEntitlements(ctx context.Context, state procurement.EntitlementState) ([]*procurement.Entitlement, error)
	ApproveEntitlement(ctx context.Context, entitlementID string) error
	RejectEntitlement(ctx context.Context, entitlementID, reason string) error
}

type entitlementService struct {
	ServiceParams
}

// NewEntitlementService creates a new entitlement service.
func NewEntitlementService(params ServiceParams) EntitlementService {
	return &entitlementService{ServiceParams: params}
}

func (s *entitlementService) HandleEntitlementEvent(ctx context.Context, event *procurement.EntitlementEvent, eventType procurement.EventType) {
	log := s.Logger.WithContext(ctx)

	if event == nil || event.ID == "" {
		log.Errorw("invalid entitlement event, missing id", "event", event)
		return
	}

	if eventType == "" {
		log.Errorw("missing entitlement event type", "entitlement_id", event.ID)
		return
	}

	// The event payload is advisory only. Fetch authoritative state and
	// dispatch on that, so replayed or reordered deliveries whose remote
	// state has moved on degrade to no-ops.
	entitlement, err := s.Procurement.GetEntitlement(ctx, event.ID)
	if err != nil {
		if ierr.IsNotFound(err) {
			// An entitlement must be cancelled before it can be deleted,
			// so a missing entitlement was already handled by a
			// cancellation event. Deliberate idempotence guard.
			log.Debugw("entitlement not found in procurement service, nothing to do",
				"entitlement_id", event.ID)
			return
		}

		log.Errorw("failed to fetch entitlement", "entitlement_id", event.ID, "error", err)

		return
	}

	if entitlement.Product == "" {
		log.Errorw("entitlement missing product information", "entitlement_id", event.ID)
		return
	}

	if entitlement.Account == "" {
		log.Errorw("entitlement missing account information", "entitlement_id", event.ID)
		return
	}

	productKey := entitlement.ProductKey()

	settings, ok := s.Config.ProductSettingsFor(productKey)
	if !ok {
		log.Errorw("no product settings configured",
			"entitlement_id", event.ID,
			"product", productKey,
		)

		return
	}

	accountID := entitlement.AccountID()

	account, err := s.Procurement.GetAccount(ctx, accountID)
	if err != nil {
		log.Errorw("failed to fetch entitlement account",
			"entitlement_id", event.ID,
			"account_id", accountID,
			"error", err,
		)

		return
	}

	if !account.IsApproved() {
		// Entitlement approval is gated on account approval, which only
		// happens through the signup frontend integration.
		log.Warnw("customer account is not approved, account must be approved via the frontend integration",
			"entitlement_id", event.ID,
			"account_id", accountID,
		)

		return
	}

	if entitlement.State == "" {
		log.Errorw("entitlement missing state information", "entitlement_id", event.ID)
		return
	}

	s.dispatch(ctx, entitlement, eventType, settings)
}

// dispatch is the state-transition table. It matches the (event type,
// current remote state) pair; unlisted combinations are informational only
// since the remote service is authoritative, and fall through to a logged
// no-op.
func (s *entitlementService) dispatch(ctx context.Context, entitlement *procurement.Entitlement, eventType procurement.EventType, settings config.ProductSettings) {
	log := s.Logger.WithContext(ctx)

	switch eventType {
	case procurement.EventTypeCreationRequested:
		if entitlement.State == procurement.EntitlementStateActivationRequested {
			s.handleCreationRequested(ctx, entitlement, settings)
			return
		}

	case procurement.EventTypeActive:
		if entitlement.State == procurement.EntitlementStateActive {
			s.publishChange(ctx, procurement.ChangeEventCreate, entitlement, settings)
			return
		}

	case procurement.EventTypePlanChangeRequested:
		if entitlement.State == procurement.EntitlementStatePendingPlanChangeApproval {
			// Nothing is recorded locally until the plan change becomes
			// active within the procurement service.
			if entitlement.NewPendingPlan == "" {
				log.Errorw("missing newPendingPlan on entitlement",
					"entitlement_id", entitlement.ID)
				return
			}

			if err := s.Procurement.ApprovePlanChange(ctx, entitlement.ID, entitlement.NewPendingPlan); err != nil {
				log.Errorw("failed to approve plan change",
					"entitlement_id", entitlement.ID,
					"pending_plan", entitlement.NewPendingPlan,
					"error", err,
				)
			}

			return
		}

	case procurement.EventTypePlanChanged:
		if entitlement.State == procurement.EntitlementStateActive {
			s.publishChange(ctx, procurement.ChangeEventUpgrade, entitlement, settings)
			return
		}

	case procurement.EventTypePlanChangeCancelled:
		// The original change was approved but never recorded or acted on
		// since it had not taken effect yet.
		return

	case procurement.EventTypeCancelled:
		if entitlement.State == procurement.EntitlementStateCancelled {
			s.publishChange(ctx, procurement.ChangeEventDestroy, entitlement, settings)
			return
		}

	case procurement.EventTypePendingCancellation:
		// Teardown waits for the real cancellation; for now the
		// entitlement is only set to lapse at the end of the billing cycle.
		return

	case procurement.EventTypeCancellationRevert:
		// The service was already active and now simply renews again.
		return

	case procurement.EventTypeDeleted:
		// Deletion requires prior cancellation, already handled by the
		// cancellation event.
		return

	case procurement.EventTypeOfferAccepted:
		if entitlement.State == procurement.EntitlementStateActivationRequested {
			s.sendEntitlementEmail(ctx, entitlement, settings.EmailRecipients,
				"New Entitlement Offer Accepted",
				"The following offer has been accepted:",
			)

			return
		}
	}

	log.Warnw("unhandled entitlement event type or state combination",
		"entitlement_id", entitlement.ID,
		"event_type", eventType,
		"entitlement_state", entitlement.State,
	)
}

// handleCreationRequested optionally auto-approves the entitlement, then
// notifies the back office. The approval write happens first and is never
// rolled back by a notification failure.
func (s *entitlementService) handleCreationRequested(ctx context.Context, entitlement *procurement.Entitlement, settings config.ProductSettings) {
	log := s.Logger.WithContext(ctx)

	if settings.AutoApprove {
		log.Infow("auto approving entitlement", "entitlement_id", entitlement.ID)

		if err := s.Procurement.ApproveEntitlement(ctx, entitlement.ID); err != nil {
			log.Errorw("failed to auto-approve entitlement",
				"entitlement_id", entitlement.ID,
				"error", err,
			)
		}
	}

	if len(settings.EmailRecipients) > 0 {
		s.sendEntitlementEmail(ctx, entitlement, settings.EmailRecipients,
			"New Entitlement Creation Request",
			"A new entitlement creation request has been submitted:",
		)
	} else {
		log.Warnw("no email recipients configured for product",
			"product", entitlement.ProductKey())
	}

	if settings.SlackWebhook != "" {
		if err := s.Slack.NotifyEntitlement(ctx, settings.SlackWebhook,
			"New Entitlement Creation Request", entitlement); err != nil {
			log.Errorw("failed to send slack notification",
				"entitlement_id", entitlement.ID,
				"error", err,
			)
		}
	}
}

// publishChange emits a normalized change event when the product has an
// event topic configured. Publish failures are logged and swallowed.
func (s *entitlementService) publishChange(ctx context.Context, changeType procurement.ChangeEventType, entitlement *procurement.Entitlement, settings config.ProductSettings) {
	log := s.Logger.WithContext(ctx)

	if settings.EventTopic == "" {
		log.Warnw("no event topic configured, change event dropped",
			"entitlement_id", entitlement.ID,
			"change", changeType,
		)

		return
	}

	event := &procurement.ChangeEvent{
		Event:       changeType,
		Entitlement: entitlement,
	}

	if err := s.Publisher.PublishChange(ctx, settings.EventTopic, event); err != nil {
		log.Errorw("failed to publish change event",
			"entitlement_id", entitlement.ID,
			"topic", settings.EventTopic,
			"change", changeType,
			"error", err,
		)
	}
}

func (s *entitlementService) sendEntitlementEmail(ctx context.Context, entitlement *procurement.Entitlement, recipients []string, subject, headline string) {
	log := s.Logger.WithContext(ctx)

	if len(recipients) == 0 {
		log.Warnw("no email recipients configured, skipping entitlement notification",
			"entitlement_id", entitlement.ID)
		return
	}

	body, err := json.MarshalIndent(entitlement, "", "  ")
	if err != nil {
		log.Errorw("failed to render entitlement payload", "error", err)
		return
	}

	err = s.Email.SendTemplated(ctx, email.SendTemplatedRequest{
		Subject:      subject,
		Recipients:   recipients,
		TemplatePath: "entitlement.html",
		Data: map[string]interface{}{
			"title":    subject,
			"headline": headline,
			"body":     string(body),
			"footer":   entitlementEmailFooter,
		},
	})
	if err != nil {
		log.Errorw("failed to send entitlement notification",
			"entitlement_id", entitlement.ID,
			"error", err,
		)
	}
}

func (s *entitlementService) GetEntitlement(ctx context.Context, entitlementID string) (*procurement.Entitlement, error) {
	if entitlementID == "" {
		return nil, ierr.NewError("entitlement id is required").
			WithHint("Entitlement ID is required").
			Mark(ierr.ErrValidation)
	}

	return s.Procurement.GetEntitlement(ctx, entitlementID)
}

func (s *entitlementService) ListEntitlements(ctx context.Context, state procurement.EntitlementState) ([]*procurement.Entitlement, error) {
	return s.Procurement.ListEntitlements(ctx, procurement.ListEntitlementsFilter{
		State: state,
	})
}

func (s *entitlementService) ApproveEntitlement(ctx context.Context, entitlementID string) error {
	if entitlementID == "" {
		return ierr.NewError("entitlement id is required").
			WithHint("Entitlement ID is required").
			Mark(ierr.ErrValidation)
	}

	s.Logger.WithContext(ctx).Infow("approving entitlement", "entitlement_id", entitlementID)

	return s.Procurement.ApproveEntitlement(ctx, entitlementID)
}

func (s *entitlementService) RejectEntitlement(ctx context.Context, entitlementID, reason string) error {
	if entitlementID == "" {
		return ierr.NewError("entitlement id is required").
			WithHint("Entitlement ID is required").
			Mark(ierr.ErrValidation)
	}

	if reason == "" {
		return ierr.NewError("rejection reason is required").
			WithHint("Rejection reason is required").
			Mark(ierr.ErrValidation)
	}

	s.Logger.WithContext(ctx).Infow("rejecting entitlement",
		"entitlement_id", entitlementID,
		"reason", reason,
	)

	return s.Procurement.RejectEntitlement(ctx, entitlementID, reason)
}
