package schedules

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gtn-college/attendance-backend/internal/models"
)

// ErrNotFound is returned when a weekday has no periods stored.
var ErrNotFound = errors.New("schedule not found")

// Repository handles schedule_periods persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a schedules repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindByDay returns the day's periods ordered by number, or ErrNotFound.
func (r *Repository) FindByDay(ctx context.Context, day string) (*models.DaySchedule, error) {
	const q = `SELECT period_number, start_time, end_time, subject, faculty, room
		FROM schedule_periods
		WHERE day = $1
		ORDER BY period_number`
	rows, err := r.pool.Query(ctx, q, day)
	if err != nil {
		return nil, fmt.Errorf("query schedule %s: %w", day, err)
	}
	defer rows.Close()
	sched := &models.DaySchedule{Day: day, Periods: make([]models.Period, 0)}
	for rows.Next() {
		var p models.Period
		if err := rows.Scan(&p.PeriodNumber, &p.StartTime, &p.EndTime, &p.Subject, &p.Faculty, &p.Room); err != nil {
			return nil, fmt.Errorf("scan period: %w", err)
		}
		sched.Periods = append(sched.Periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read schedule %s: %w", day, err)
	}
	if len(sched.Periods) == 0 {
		return nil, ErrNotFound
	}
	return sched, nil
}

// ReplaceDay swaps the stored periods of sched.Day for sched.Periods in one transaction.
func (r *Repository) ReplaceDay(ctx context.Context, sched models.DaySchedule) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM schedule_periods WHERE day = $1`, sched.Day); err != nil {
		return fmt.Errorf("clear schedule %s: %w", sched.Day, err)
	}
	const q = `INSERT INTO schedule_periods (day, period_number, start_time, end_time, subject, faculty, room)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, p := range sched.Periods {
		if _, err := tx.Exec(ctx, q, sched.Day, p.PeriodNumber, p.StartTime, p.EndTime, p.Subject, p.Faculty, p.Room); err != nil {
			return fmt.Errorf("insert period %s/%d: %w", sched.Day, p.PeriodNumber, err)
		}
	}
	return tx.Commit(ctx)
}
