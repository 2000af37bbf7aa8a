package dto

import (
	"github.com/vendorgate/vendorgate/internal/domain/procurement"
	"github.com/vendorgate/vendorgate/internal/validator"
)

// RejectEntitlementRequest is the body of the entitlement reject call.
type RejectEntitlementRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func (r *RejectEntitlementRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ListEntitlementsResponse mirrors the procurement list shape.
type ListEntitlementsResponse struct {
	Entitlements []*procurement.Entitlement `json:"entitlements"`
}

// ListAccountsResponse mirrors the procurement list shape.
type ListAccountsResponse struct {
	Accounts []*procurement.Account `json:"accounts"`
}
