package attendance

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/gtn-college/attendance-backend/internal/models"
)

// Counter is the part of the ledger the percentage needs.
type Counter interface {
	CountDistinctDates(ctx context.Context) (int, error)
	CountByStudentAndStatus(ctx context.Context, registerNo, status string) (int, error)
}

// PercentageWriter persists a student's percentage.
type PercentageWriter interface {
	UpdateAttendancePercentage(ctx context.Context, registerNo string, percentage int) error
}

// Percentage returns round(present/total*100). total counts every distinct day in the
// ledger, not a configured working calendar; an empty ledger counts as one day.
func Percentage(present, total int) int {
	if total <= 0 {
		total = 1
	}
	return int(math.Round(float64(present) / float64(total) * 100))
}

// Calculator recomputes and stores attendance percentages.
type Calculator struct {
	ledger Counter
	writer PercentageWriter
	logger *zap.Logger
}

// NewCalculator creates a percentage calculator.
func NewCalculator(ledger Counter, writer PercentageWriter, logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{ledger: ledger, writer: writer, logger: logger}
}

// Recompute derives the student's percentage from the ledger and stores it on the student.
func (c *Calculator) Recompute(ctx context.Context, registerNo string) error {
	total, err := c.ledger.CountDistinctDates(ctx)
	if err != nil {
		return err
	}
	present, err := c.ledger.CountByStudentAndStatus(ctx, registerNo, models.StatusPresent)
	if err != nil {
		return err
	}
	pct := Percentage(present, total)
	if err := c.writer.UpdateAttendancePercentage(ctx, registerNo, pct); err != nil {
		return fmt.Errorf("store percentage: %w", err)
	}
	c.logger.Info("attendance percentage updated",
		zap.String("register_no", registerNo),
		zap.Int("present_days", present),
		zap.Int("total_days", total),
		zap.Int("percentage", pct))
	return nil
}
