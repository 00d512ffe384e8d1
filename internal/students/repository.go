package students

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gtn-college/attendance-backend/internal/models"
)

// ErrNotFound is returned when no student has the register number.
var ErrNotFound = errors.New("student not found")

// Repository is the student directory backed by PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a student repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectStudent = `SELECT register_no, password_hash, name, dob, grade, attendance, courses, fees, created_at, updated_at
	FROM students`

// FindByRegisterNo returns the student or ErrNotFound.
func (r *Repository) FindByRegisterNo(ctx context.Context, registerNo string) (*models.Student, error) {
	var s models.Student
	err := r.pool.QueryRow(ctx, selectStudent+` WHERE register_no = $1`, registerNo).
		Scan(&s.RegisterNo, &s.PasswordHash, &s.Name, &s.DOB, &s.Grade, &s.Attendance, &s.Courses, &s.Fees, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find student %s: %w", registerNo, err)
	}
	return &s, nil
}

// UpdateAttendancePercentage stores the recomputed percentage on the student.
func (r *Repository) UpdateAttendancePercentage(ctx context.Context, registerNo string, percentage int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE students SET attendance = $2, updated_at = NOW() WHERE register_no = $1`,
		registerNo, percentage)
	if err != nil {
		return fmt.Errorf("update attendance of %s: %w", registerNo, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateParams holds the fields of a new student.
type CreateParams struct {
	RegisterNo   string
	PasswordHash string
	Name         string
	DOB          time.Time
	Grade        float64
	Attendance   int
	Courses      int
	Fees         int
}

// CreateIfAbsent inserts a student; created is false when the register number already exists.
func (r *Repository) CreateIfAbsent(ctx context.Context, p CreateParams) (created bool, err error) {
	const q = `INSERT INTO students (register_no, password_hash, name, dob, grade, attendance, courses, fees)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (register_no) DO NOTHING`
	tag, err := r.pool.Exec(ctx, q, p.RegisterNo, p.PasswordHash, p.Name, p.DOB, p.Grade, p.Attendance, p.Courses, p.Fees)
	if err != nil {
		return false, fmt.Errorf("insert student %s: %w", p.RegisterNo, err)
	}
	return tag.RowsAffected() == 1, nil
}
