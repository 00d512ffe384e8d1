package announcements

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gtn-college/attendance-backend/internal/models"
)

// Repository handles announcements persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an announcements repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create stores a new announcement.
func (r *Repository) Create(ctx context.Context, a *models.Announcement) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	const q = `INSERT INTO announcements (id, title, message, type, priority, date, expires_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`
	err := r.pool.QueryRow(ctx, q, a.ID, a.Title, a.Message, a.Type, a.Priority, a.Date, a.ExpiresAt, a.IsActive).
		Scan(&a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert announcement: %w", err)
	}
	return nil
}

// ListActive returns active announcements not yet expired at now, highest priority
// first then newest. A non-positive limit returns all of them.
func (r *Repository) ListActive(ctx context.Context, now time.Time, limit int) ([]*models.Announcement, error) {
	const q = `SELECT id, title, message, type, priority, date, expires_at, is_active, created_at
		FROM announcements
		WHERE is_active AND expires_at > $1
		ORDER BY CASE priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END DESC, date DESC
		LIMIT NULLIF($2::int, 0)`
	if limit < 0 {
		limit = 0
	}
	rows, err := r.pool.Query(ctx, q, now, limit)
	if err != nil {
		return nil, fmt.Errorf("query announcements: %w", err)
	}
	defer rows.Close()
	list := make([]*models.Announcement, 0)
	for rows.Next() {
		var a models.Announcement
		if err := rows.Scan(&a.ID, &a.Title, &a.Message, &a.Type, &a.Priority, &a.Date, &a.ExpiresAt, &a.IsActive, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan announcement: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

// Exists reports whether an announcement with this title is stored.
func (r *Repository) Exists(ctx context.Context, title string) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM announcements WHERE title = $1)`, title).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check announcement %q: %w", title, err)
	}
	return ok, nil
}
