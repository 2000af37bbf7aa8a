package procurement

import "context"

// Client is the typed surface over the remote procurement service. The
// remote service is the sole source of truth; every read fetches current
// state and writes are expected to be idempotent at the remote side.
//
// Get operations return an error marked ierr.ErrNotFound when the remote
// resource is absent; callers pattern-match with ierr.IsNotFound instead of
// treating absence as a transport failure.
type Client interface {
	// Account operations
	GetAccount(ctx context.Context, accountID string) (*Account, error)
	ApproveAccount(ctx context.Context, accountID string) error
	ResetAccount(ctx context.Context, accountID string) error
	ListAccounts(ctx context.Context) ([]*Account, error)

	// Entitlement operations
	GetEntitlement(ctx context.Context, entitlementID string) (*Entitlement, error)
	ApproveEntitlement(ctx context.Context, entitlementID string) error
	RejectEntitlement(ctx context.Context, entitlementID, reason string) error
	ApprovePlanChange(ctx context.Context, entitlementID, pendingPlanName string) error
	ListEntitlements(ctx context.Context, filter ListEntitlementsFilter) ([]*Entitlement, error)
}

// ListEntitlementsFilter narrows entitlement listing by remote state and
// owning account. Zero values are omitted from the remote filter expression.
type ListEntitlementsFilter struct {
	State     EntitlementState
	AccountID string
}
