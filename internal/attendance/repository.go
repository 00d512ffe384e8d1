package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gtn-college/attendance-backend/internal/models"
)

var (
	// ErrNotFound is returned when the student has no record for the date.
	ErrNotFound = errors.New("attendance record not found")
	// ErrDuplicate is returned when a record for (student, date) already exists.
	ErrDuplicate = errors.New("attendance already recorded for this date")
)

const uniqueViolation = "23505"

// Repository is the attendance ledger backed by PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an attendance repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindByStudentAndDate returns the record for the day or ErrNotFound. date uses models.DateLayout.
func (r *Repository) FindByStudentAndDate(ctx context.Context, registerNo, date string) (*models.AttendanceRecord, error) {
	day, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", date, err)
	}
	const q = `SELECT id, register_no, student_name, date, marked_at, status, marked_with
		FROM attendance_records WHERE register_no = $1 AND date = $2`
	rec, err := scanRecord(r.pool.QueryRow(ctx, q, registerNo, day))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find attendance %s/%s: %w", registerNo, date, err)
	}
	return rec, nil
}

// Insert stores a record. The (register_no, date) unique constraint maps to ErrDuplicate.
func (r *Repository) Insert(ctx context.Context, rec *models.AttendanceRecord) error {
	day, err := time.Parse(models.DateLayout, rec.Date)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", rec.Date, err)
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	const q = `INSERT INTO attendance_records (id, register_no, student_name, date, marked_at, status, marked_with)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.pool.Exec(ctx, q, rec.ID, rec.RegisterNo, rec.StudentName, day, rec.Timestamp, rec.Status, rec.MarkedWith)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert attendance %s/%s: %w", rec.RegisterNo, rec.Date, err)
	}
	return nil
}

// CountDistinctDates returns how many different days appear in the whole ledger.
func (r *Repository) CountDistinctDates(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(DISTINCT date) FROM attendance_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count distinct dates: %w", err)
	}
	return n, nil
}

// CountByStudentAndStatus counts a student's records with the given status.
func (r *Repository) CountByStudentAndStatus(ctx context.Context, registerNo, status string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM attendance_records WHERE register_no = $1 AND status = $2`,
		registerNo, status).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count attendance of %s: %w", registerNo, err)
	}
	return n, nil
}

// ListByStudent returns the student's most recent records, newest first.
func (r *Repository) ListByStudent(ctx context.Context, registerNo string, limit int) ([]models.AttendanceRecord, error) {
	const q = `SELECT id, register_no, student_name, date, marked_at, status, marked_with
		FROM attendance_records WHERE register_no = $1
		ORDER BY date DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, q, registerNo, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]models.AttendanceRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *rec)
	}
	return list, rows.Err()
}

func scanRecord(row pgx.Row) (*models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	var day time.Time
	if err := row.Scan(&rec.ID, &rec.RegisterNo, &rec.StudentName, &day, &rec.Timestamp, &rec.Status, &rec.MarkedWith); err != nil {
		return nil, err
	}
	rec.Date = day.Format(models.DateLayout)
	return &rec, nil
}
