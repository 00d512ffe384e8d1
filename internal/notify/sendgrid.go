package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/mail"
	"time"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// SendGridConfig configures the SendGrid notifier.
type SendGridConfig struct {
	APIKey   string
	From     mail.Address
	To       mail.Address
	College  string
	Location *time.Location
}

// SendGrid emails the notice through the SendGrid v3 API.
type SendGrid struct {
	client *sendgrid.Client
	cfg    SendGridConfig
	logger *zap.Logger
}

var _ Notifier = (*SendGrid)(nil)

// NewSendGrid creates a SendGrid notifier.
func NewSendGrid(cfg SendGridConfig, logger *zap.Logger) *SendGrid {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SendGrid{client: sendgrid.NewSendClient(cfg.APIKey), cfg: cfg, logger: logger}
}

// Send renders and posts the email; any non-2xx answer is an error.
func (s *SendGrid) Send(ctx context.Context, n ClassCodeNotice) error {
	msg, err := Render(n, s.cfg.To, s.cfg.College, s.cfg.Location)
	if err != nil {
		return err
	}
	from := sgmail.NewEmail(s.cfg.From.Name, s.cfg.From.Address)
	to := sgmail.NewEmail(msg.To.Name, msg.To.Address)
	m := sgmail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)

	res, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if res.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("sendgrid: status %d: %s", res.StatusCode, res.Body)
	}
	s.logger.Info("class code email sent",
		zap.String("to", msg.To.Address),
		zap.String("requested_by", n.RequestedBy))
	return nil
}
