package notify

import (
	"context"
	"net/mail"
	"time"

	"go.uber.org/zap"
)

// Console logs the rendered notice instead of sending it. Used in development.
type Console struct {
	to      mail.Address
	college string
	loc     *time.Location
	logger  *zap.Logger
}

var _ Notifier = (*Console)(nil)

// NewConsole creates a console notifier.
func NewConsole(to mail.Address, college string, loc *time.Location, logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{to: to, college: college, loc: loc, logger: logger}
}

// Send logs the email.
func (c *Console) Send(ctx context.Context, n ClassCodeNotice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := Render(n, c.to, c.college, c.loc)
	if err != nil {
		return err
	}
	c.logger.Info("class code email (console)",
		zap.String("to", msg.To.String()),
		zap.String("subject", msg.Subject),
		zap.String("code", n.Code),
		zap.Time("expires_at", n.ExpiresAt),
		zap.String("body", msg.Text))
	return nil
}
