package email

import (
	"context"

	"github.com/resend/resend-go/v2"

	"github.com/vendorgate/vendorgate/internal/config"
	ierr "github.com/vendorgate/vendorgate/internal/errors"
)

// EmailClient wraps the Resend API client.
type EmailClient struct {
	client      *resend.Client
	fromAddress string
	enabled     bool
}

// NewEmailClient creates a new email client from configuration. When email
// is disabled the client is still constructed so callers can no-op cleanly.
func NewEmailClient(cfg *config.Configuration) *EmailClient {
	c := &EmailClient{
		fromAddress: cfg.Email.FromAddress,
		enabled:     cfg.Email.Enabled && cfg.Email.APIKey != "",
	}

	if c.enabled {
		c.client = resend.NewClient(cfg.Email.APIKey)
	}

	return c
}

// IsEnabled reports whether outbound email is configured.
func (c *EmailClient) IsEnabled() bool {
	return c.enabled
}

// GetFromAddress returns the configured sender address.
func (c *EmailClient) GetFromAddress() string {
	return c.fromAddress
}

// SendEmail sends an email to the given recipients and returns the provider
// message id.
func (c *EmailClient) SendEmail(ctx context.Context, from string, to []string, subject, html string) (string, error) {
	if !c.enabled {
		return "", ierr.NewError("email client is disabled").
			WithHint("Configure email.api_key to enable outbound email").
			Mark(ierr.ErrSystem)
	}

	params := &resend.SendEmailRequest{
		From:    from,
		To:      to,
		Subject: subject,
		Html:    html,
	}

	sent, err := c.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to send email").
			Mark(ierr.ErrHTTPClient)
	}

	return sent.Id, nil
}
