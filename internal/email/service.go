package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/vendorgate/vendorgate/internal/logger"
)

// emailTemplates stores notification templates as string constants so the
// service has no runtime file dependencies.
var emailTemplates = map[string]string{
	"account.html": `<!DOCTYPE html>
<html>
<head>
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
    <title>{{.title}}</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; font-size: 14px; line-height: 1.6; color: #333;">
    <h2>{{.title}}</h2>
    <p>{{.headline}}</p>
    <pre style="background: #f6f8fa; padding: 12px; border-radius: 6px;">{{.body}}</pre>
    <p style="color: #888; font-size: 12px;">{{.footer}}</p>
</body>
</html>`,
	"entitlement.html": `<!DOCTYPE html>
<html>
<head>
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
    <title>{{.title}}</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; font-size: 14px; line-height: 1.6; color: #333;">
    <h2>{{.title}}</h2>
    <p>{{.headline}}</p>
    <pre style="background: #f6f8fa; padding: 12px; border-radius: 6px;">{{.body}}</pre>
    <p style="color: #888; font-size: 12px;">{{.footer}}</p>
</body>
</html>`,
}

// SendTemplatedRequest describes a templated notification email.
type SendTemplatedRequest struct {
	Subject      string
	Recipients   []string
	TemplatePath string
	Data         map[string]interface{}
}

// Service sends templated notification emails to the configured back-office
// recipients.
type Service interface {
	SendTemplated(ctx context.Context, req SendTemplatedRequest) error
}

type service struct {
	client *EmailClient
	logger *logger.Logger
}

// NewService creates a new email notification service.
func NewService(client *EmailClient, log *logger.Logger) Service {
	return &service{
		client: client,
		logger: log,
	}
}

func (s *service) SendTemplated(ctx context.Context, req SendTemplatedRequest) error {
	if !s.client.IsEnabled() {
		s.logger.Warnw("email client is disabled, skipping email send",
			"subject", req.Subject,
			"template", req.TemplatePath,
		)

		return nil
	}

	htmlContent, err := s.readTemplate(req.TemplatePath)
	if err != nil {
		s.logger.Errorw("failed to read email template",
			"error", err,
			"template", req.TemplatePath,
		)

		return err
	}

	htmlContent, err = s.renderTemplate(htmlContent, req.Data)
	if err != nil {
		s.logger.Errorw("failed to render email template",
			"error", err,
			"template", req.TemplatePath,
		)

		return err
	}

	messageID, err := s.client.SendEmail(ctx, s.client.GetFromAddress(), req.Recipients, req.Subject, htmlContent)
	if err != nil {
		s.logger.Errorw("failed to send templated email",
			"error", err,
			"subject", req.Subject,
			"recipients", req.Recipients,
			"template", req.TemplatePath,
		)

		return err
	}

	s.logger.Infow("templated email sent successfully",
		"message_id", messageID,
		"subject", req.Subject,
		"recipients", req.Recipients,
		"template", req.TemplatePath,
	)

	return nil
}

func (s *service) readTemplate(templatePath string) (string, error) {
	templateContent, exists := emailTemplates[templatePath]
	if !exists {
		return "", fmt.Errorf("template not found: %s", templatePath)
	}

	return templateContent, nil
}

// renderTemplate renders an HTML template using Go's html/template for safe HTML rendering
func (s *service) renderTemplate(templateContent string, data map[string]interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateContent)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
