package emaillogs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gtn-college/attendance-backend/internal/models"
)

// Repository handles email_logs persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an email logs repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create stores one delivery attempt.
func (r *Repository) Create(ctx context.Context, el *models.EmailLog) error {
	if el.ID == uuid.Nil {
		el.ID = uuid.New()
	}
	const q = `INSERT INTO email_logs (id, email_type, recipient_email, subject, requested_by, status, sent_at, error_message)
		VALUES ($1, $2, $3, NULLIF($4,''), NULLIF($5,''), $6, $7, NULLIF($8,''))
		RETURNING created_at`
	err := r.pool.QueryRow(ctx, q, el.ID, el.EmailType, el.RecipientEmail, el.Subject, el.RequestedBy, el.Status, el.SentAt, el.ErrorMessage).
		Scan(&el.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert email log: %w", err)
	}
	return nil
}

// ListRecent returns the newest email logs of a type.
func (r *Repository) ListRecent(ctx context.Context, emailType string, limit int) ([]*models.EmailLog, error) {
	const q = `SELECT id, email_type, recipient_email, subject, requested_by, status, sent_at, error_message, created_at
		FROM email_logs
		WHERE email_type = $1
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := r.pool.Query(ctx, q, emailType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]*models.EmailLog, 0)
	for rows.Next() {
		var el models.EmailLog
		var subject, requestedBy, errMsg *string
		if err := rows.Scan(&el.ID, &el.EmailType, &el.RecipientEmail, &subject, &requestedBy, &el.Status, &el.SentAt, &errMsg, &el.CreatedAt); err != nil {
			return nil, err
		}
		if subject != nil {
			el.Subject = *subject
		}
		if requestedBy != nil {
			el.RequestedBy = *requestedBy
		}
		if errMsg != nil {
			el.ErrorMessage = *errMsg
		}
		list = append(list, &el)
	}
	return list, rows.Err()
}
