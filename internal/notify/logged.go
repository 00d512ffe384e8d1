package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gtn-college/attendance-backend/internal/models"
)

// LogStore persists delivery attempts.
type LogStore interface {
	Create(ctx context.Context, el *models.EmailLog) error
}

// Logged records every delivery attempt of the wrapped notifier in the email log.
type Logged struct {
	next      Notifier
	store     LogStore
	recipient string
	logger    *zap.Logger
	now       func() time.Time
}

var _ Notifier = (*Logged)(nil)

// NewLogged wraps next so that each Send is written to store.
func NewLogged(next Notifier, store LogStore, recipient string, logger *zap.Logger) *Logged {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logged{next: next, store: store, recipient: recipient, logger: logger, now: time.Now}
}

// Send delegates and records the outcome. A failing log write never fails the delivery.
func (l *Logged) Send(ctx context.Context, n ClassCodeNotice) error {
	err := l.next.Send(ctx, n)

	el := &models.EmailLog{
		EmailType:      models.EmailTypeClassOTP,
		RecipientEmail: l.recipient,
		Subject:        "CLASS ATTENDANCE OTP",
		RequestedBy:    n.RequestedBy,
		Status:         models.EmailLogStatusSent,
	}
	if err != nil {
		el.Status = models.EmailLogStatusFailed
		el.ErrorMessage = err.Error()
	} else {
		sent := l.now()
		el.SentAt = &sent
	}
	// Detached from ctx: the request context may already be past its deadline.
	logCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if logErr := l.store.Create(logCtx, el); logErr != nil {
		l.logger.Warn("email log write failed", zap.Error(logErr), zap.String("status", el.Status))
	}
	return err
}
