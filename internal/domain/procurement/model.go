package procurement

import "strings"

// ApprovalName identifies a named approval sub-record on an account.
type ApprovalName string

const (
	// ApprovalNameSignup is the only approval this system acts on. Its
	// absence on an account means the account is not approved, which also
	// covers accounts deleted upstream.
	ApprovalNameSignup ApprovalName = "signup"
)

// ApprovalState is the gating state of a named approval.
type ApprovalState string

const (
	ApprovalStatePending  ApprovalState = "PENDING"
	ApprovalStateApproved ApprovalState = "APPROVED"
)

// Approval is a named gating record on an account.
type Approval struct {
	Name  ApprovalName  `json:"name"`
	State ApprovalState `json:"state"`
}

// Account is a customer's registration record with the marketplace. The
// procurement service owns it; this is only an on-demand view.
type Account struct {
	Name       string     `json:"name"`
	Provider   string     `json:"provider,omitempty"`
	State      string     `json:"state,omitempty"`
	Approvals  []Approval `json:"approvals,omitempty"`
	CreateTime string     `json:"createTime,omitempty"`
	UpdateTime string     `json:"updateTime,omitempty"`
}

// ID returns the account identifier derived from the resource name.
func (a *Account) ID() string {
	return ExtractResourceID(a.Name)
}

// SignupApproval returns the "signup" approval if present.
func (a *Account) SignupApproval() (Approval, bool) {
	for _, approval := range a.Approvals {
		if approval.Name == ApprovalNameSignup {
			return approval, true
		}
	}

	return Approval{}, false
}

// IsApproved reports whether the account's "signup" approval is APPROVED.
// A missing signup approval means not approved; that state is shared by
// accounts that never completed signup and accounts deleted upstream, and
// the two are deliberately indistinguishable here.
func (a *Account) IsApproved() bool {
	approval, found := a.SignupApproval()
	if !found {
		return false
	}

	return approval.State == ApprovalStateApproved
}

// EntitlementState is the remote lifecycle state of an entitlement.
type EntitlementState string

const (
	EntitlementStateActivationRequested       EntitlementState = "ENTITLEMENT_ACTIVATION_REQUESTED"
	EntitlementStateActive                    EntitlementState = "ENTITLEMENT_ACTIVE"
	EntitlementStatePendingCancellation       EntitlementState = "ENTITLEMENT_PENDING_CANCELLATION"
	EntitlementStateCancelled                 EntitlementState = "ENTITLEMENT_CANCELLED"
	EntitlementStatePendingPlanChange         EntitlementState = "ENTITLEMENT_PENDING_PLAN_CHANGE"
	EntitlementStatePendingPlanChangeApproval EntitlementState = "ENTITLEMENT_PENDING_PLAN_CHANGE_APPROVAL"
	EntitlementStateSuspended                 EntitlementState = "ENTITLEMENT_SUSPENDED"
	EntitlementStateUnspecified               EntitlementState = "ENTITLEMENT_STATE_UNSPECIFIED"
	EntitlementStateDeleted                   EntitlementState = "ENTITLEMENT_DELETED"
)

// FilterValue returns the state in the list-filter grammar form, which
// drops the ENTITLEMENT_ prefix carried by the state enum.
func (s EntitlementState) FilterValue() string {
	return strings.TrimPrefix(string(s), "ENTITLEMENT_")
}

// EntitlementStateFromFilterValue maps a short filter-grammar state name
// back to the state enum. Unknown names return false.
func EntitlementStateFromFilterValue(value string) (EntitlementState, bool) {
	state := EntitlementState("ENTITLEMENT_" + value)

	switch state {
	case EntitlementStateActivationRequested,
		EntitlementStateActive,
		EntitlementStatePendingCancellation,
		EntitlementStateCancelled,
		EntitlementStatePendingPlanChange,
		EntitlementStatePendingPlanChangeApproval,
		EntitlementStateSuspended:
		return state, true
	default:
		return "", false
	}
}

// Entitlement is a customer's subscription/order record for a product,
// owned entirely by the procurement service. Observed via notification
// events, never persisted locally.
type Entitlement struct {
	ID               string           `json:"id,omitempty"`
	Name             string           `json:"name"`
	Account          string           `json:"account,omitempty"`
	Provider         string           `json:"provider,omitempty"`
	Product          string           `json:"product,omitempty"`
	Plan             string           `json:"plan,omitempty"`
	State            EntitlementState `json:"state,omitempty"`
	NewPendingPlan   string           `json:"newPendingPlan,omitempty"`
	UsageReportingID string           `json:"usageReportingId,omitempty"`
	CreateTime       string           `json:"createTime,omitempty"`
	UpdateTime       string           `json:"updateTime,omitempty"`
}

// ProductKey returns the per-product configuration key: the first
// dot-segment of the product identifier.
func (e *Entitlement) ProductKey() string {
	return strings.SplitN(e.Product, ".", 2)[0]
}

// AccountID returns the account identifier derived from the entitlement's
// account resource name.
func (e *Entitlement) AccountID() string {
	return ExtractResourceID(e.Account)
}

// ExtractResourceID returns the last segment of a procurement resource
// name such as providers/{project}/accounts/{id}.
func ExtractResourceID(resourceName string) string {
	sl := strings.Split(resourceName, "/")

	return sl[len(sl)-1]
}
