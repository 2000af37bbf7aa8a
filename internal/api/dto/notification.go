package dto

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/vendorgate/vendorgate/internal/domain/procurement"
	ierr "github.com/vendorgate/vendorgate/internal/errors"
)

// PubsubEnvelope is the push-delivery envelope posted to the notification
// webhook: {"message": {"data": base64(utf8(json))}}.
type PubsubEnvelope struct {
	Message      *PubsubMessage `json:"message"`
	Subscription string         `json:"subscription,omitempty"`
}

type PubsubMessage struct {
	Data       string            `json:"data"`
	MessageID  string            `json:"messageId,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// NotificationPayload is the decoded notification body. Exactly one of
// Entitlement (with EventType) or Account is expected; any other shape is
// acknowledged without action.
type NotificationPayload struct {
	Entitlement *procurement.EntitlementEvent `json:"entitlement,omitempty"`
	EventType   procurement.EventType         `json:"eventType,omitempty"`
	Account     *procurement.AccountEvent     `json:"account,omitempty"`
}

// DecodePayload base64-decodes and parses the enclosed notification body.
func (e *PubsubEnvelope) DecodePayload() (*NotificationPayload, error) {
	if e.Message == nil || e.Message.Data == "" {
		return nil, ierr.NewError("envelope has no message data").
			WithHint("Invalid notification envelope").
			Mark(ierr.ErrValidation)
	}

	decoded, err := base64.StdEncoding.DecodeString(e.Message.Data)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to base64-decode notification data").
			Mark(ierr.ErrValidation)
	}

	var payload NotificationPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(decoded))), &payload); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to parse notification data").
			Mark(ierr.ErrValidation)
	}

	return &payload, nil
}
