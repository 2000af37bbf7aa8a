package procurement

// EventType is the lifecycle event type attached to inbound entitlement
// notifications.
type EventType string

const (
	EventTypeCreationRequested   EventType = "ENTITLEMENT_CREATION_REQUESTED"
	EventTypeActive              EventType = "ENTITLEMENT_ACTIVE"
	EventTypePlanChangeRequested EventType = "ENTITLEMENT_PLAN_CHANGE_REQUESTED"
	EventTypePlanChanged         EventType = "ENTITLEMENT_PLAN_CHANGED"
	EventTypePlanChangeCancelled EventType = "ENTITLEMENT_PLAN_CHANGE_CANCELLED"
	EventTypeCancelled           EventType = "ENTITLEMENT_CANCELLED"
	EventTypePendingCancellation EventType = "ENTITLEMENT_PENDING_CANCELLATION"
	EventTypeCancellationRevert  EventType = "ENTITLEMENT_CANCELLATION_REVERTED"
	EventTypeDeleted             EventType = "ENTITLEMENT_DELETED"
	EventTypeOfferAccepted       EventType = "ENTITLEMENT_OFFER_ACCEPTED"
)

// EntitlementEvent is the entitlement portion of an inbound notification.
// Its embedded fields are advisory; handlers re-fetch authoritative state
// from the procurement service before acting.
type EntitlementEvent struct {
	ID             string `json:"id"`
	NewPendingPlan string `json:"newPendingPlan,omitempty"`
}

// AccountEvent is the account portion of an inbound notification.
type AccountEvent struct {
	ID         string `json:"id"`
	UpdateTime string `json:"updateTime,omitempty"`
}

// ChangeEventType is the normalized lifecycle change published to the
// outbound event topic for downstream provisioning systems.
type ChangeEventType string

const (
	ChangeEventCreate  ChangeEventType = "create"
	ChangeEventUpgrade ChangeEventType = "upgrade"
	ChangeEventDestroy ChangeEventType = "destroy"
)

// ChangeEvent is the payload published to the per-product event topic.
type ChangeEvent struct {
	Event       ChangeEventType `json:"event"`
	Entitlement *Entitlement    `json:"entitlement"`
}
