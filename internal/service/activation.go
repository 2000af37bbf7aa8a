package service

import (
	"context"

	"github.com/vendorgate/vendorgate/internal/auth"
	"github.com/vendorgate/vendorgate/internal/domain/procurement"
)

// ActivationService drives the signup handshake after a marketplace token
// has been verified: approve the account, then optionally sweep pending
// entitlement creation requests.
type ActivationService interface {
	Activate(ctx context.Context, claims *auth.MarketplaceClaims) error
}

type activationService struct {
	ServiceParams
}

// NewActivationService creates a new activation service.
func NewActivationService(params ServiceParams) ActivationService {
	return &activationService{ServiceParams: params}
}

// Activate approves the account identified by the verified token subject.
// When auto-approval is enabled, every entitlement still awaiting
// activation for that account is approved as well — "approve all pending"
// is the deliberate selection policy, so a customer who clicked through
// signup with several queued requests is not left half-activated.
// Entitlement approval failures are logged and do not fail the activation:
// the account approval is the handshake's success criterion.
func (s *activationService) Activate(ctx context.Context, claims *auth.MarketplaceClaims) error {
	log := s.Logger.WithContext(ctx)
	accountID := claims.Subject

	log.Infow("activating account", "account_id", accountID)

	if err := s.Procurement.ApproveAccount(ctx, accountID); err != nil {
		return err
	}

	log.Infow("account approved", "account_id", accountID)

	if !s.Config.Marketplace.AutoApproveEntitlements {
		return nil
	}

	pending, err := s.Procurement.ListEntitlements(ctx, procurement.ListEntitlementsFilter{
		State:     procurement.EntitlementStateActivationRequested,
		AccountID: accountID,
	})
	if err != nil {
		log.Errorw("failed to list pending entitlements",
			"account_id", accountID,
			"error", err,
		)

		return nil
	}

	approved := 0

	for _, entitlement := range pending {
		entitlementID := procurement.ExtractResourceID(entitlement.Name)

		log.Infow("approving pending entitlement",
			"account_id", accountID,
			"entitlement_id", entitlementID,
		)

		if err := s.Procurement.ApproveEntitlement(ctx, entitlementID); err != nil {
			log.Errorw("failed to approve pending entitlement",
				"account_id", accountID,
				"entitlement_id", entitlementID,
				"error", err,
			)

			continue
		}

		approved++
	}

	log.Infow("activation sweep complete",
		"account_id", accountID,
		"pending", len(pending),
		"approved", approved,
	)

	return nil
}
