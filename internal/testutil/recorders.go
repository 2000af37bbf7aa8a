package testutil

import (
	"context"
	"sync"

	"github.com/vendorgate/vendorgate/internal/domain/procurement"
	"github.com/vendorgate/vendorgate/internal/email"
)

// EmailRecorder implements email.Service and records every send.
type EmailRecorder struct {
	mu   sync.Mutex
	Sent []email.SendTemplatedRequest
	Err  error
}

func NewEmailRecorder() *EmailRecorder {
	return &EmailRecorder{}
}

func (r *EmailRecorder) SendTemplated(ctx context.Context, req email.SendTemplatedRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}

	r.Sent = append(r.Sent, req)

	return nil
}

// SlackNotification is one recorded slack post.
type SlackNotification struct {
	WebhookURL  string
	Title       string
	Entitlement *procurement.Entitlement
}

// SlackRecorder implements slack.Service and records every notification.
type SlackRecorder struct {
	mu            sync.Mutex
	Notifications []SlackNotification
	Err           error
}

func NewSlackRecorder() *SlackRecorder {
	return &SlackRecorder{}
}

func (r *SlackRecorder) NotifyEntitlement(ctx context.Context, webhookURL, title string, entitlement *procurement.Entitlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}

	r.Notifications = append(r.Notifications, SlackNotification{
		WebhookURL:  webhookURL,
		Title:       title,
		Entitlement: entitlement,
	})

	return nil
}

// PublishedEvent is one recorded change event.
type PublishedEvent struct {
	Topic string
	Event *procurement.ChangeEvent
}

// PublisherRecorder implements publisher.ChangePublisher and records every
// published change event.
type PublisherRecorder struct {
	mu        sync.Mutex
	Published []PublishedEvent
	Err       error
}

func NewPublisherRecorder() *PublisherRecorder {
	return &PublisherRecorder{}
}

func (r *PublisherRecorder) PublishChange(ctx context.Context, topic string, event *procurement.ChangeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}

	r.Published = append(r.Published, PublishedEvent{Topic: topic, Event: event})

	return nil
}

func (r *PublisherRecorder) Close() error {
	return nil
}
