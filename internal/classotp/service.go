// Package classotp issues the shared class verification code and records attendance
// for students who redeem it.
package classotp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gtn-college/attendance-backend/internal/attendance"
	"github.com/gtn-college/attendance-backend/internal/models"
	"github.com/gtn-college/attendance-backend/internal/notify"
	"github.com/gtn-college/attendance-backend/internal/students"
)

const (
	codeMin = 100000
	codeMax = 999999
)

// StudentDirectory resolves register numbers.
type StudentDirectory interface {
	FindByRegisterNo(ctx context.Context, registerNo string) (*models.Student, error)
}

// Ledger is the durable per-student per-day attendance store.
type Ledger interface {
	FindByStudentAndDate(ctx context.Context, registerNo, date string) (*models.AttendanceRecord, error)
	Insert(ctx context.Context, rec *models.AttendanceRecord) error
}

// PercentageUpdater refreshes a student's attendance percentage after a redemption.
type PercentageUpdater interface {
	Recompute(ctx context.Context, registerNo string) error
}

// Deps are the collaborators of Service.
type Deps struct {
	Students    StudentDirectory
	Ledger      Ledger
	Store       Store
	Notifier    notify.Notifier
	Percentages PercentageUpdater
}

// Options tune code lifetime and the attendance window.
type Options struct {
	TTL           time.Duration
	NotifyTimeout time.Duration
	StartHour     int // inclusive
	EndHour       int // exclusive
	Location      *time.Location
}

// DefaultOptions is a 30 minute code, 10 second delivery timeout and 09:00-17:00 local window.
func DefaultOptions() Options {
	return Options{
		TTL:           30 * time.Minute,
		NotifyTimeout: 10 * time.Second,
		StartHour:     9,
		EndHour:       17,
		Location:      time.Local,
	}
}

// IssueResult is returned by IssueOrReuseCode.
type IssueResult struct {
	Code      string
	ExpiresAt time.Time
	Reused    bool
	TotalUses int
}

// RedeemResult is returned by RedeemCode.
type RedeemResult struct {
	StudentName string
	// TotalUses counts reservations on the session, read after the insert. It may
	// include students whose redemption is still in flight and later released.
	TotalUses int
}

// StatusResult describes the current slot without revealing the code.
type StatusResult struct {
	Active    bool
	ExpiresAt time.Time
	TotalUses int
}

// Service owns the class code lifecycle.
type Service struct {
	students    StudentDirectory
	ledger      Ledger
	store       Store
	notifier    notify.Notifier
	percentages PercentageUpdater
	opts        Options
	logger      *zap.Logger

	now     func() time.Time
	newCode func() (string, error)

	// issueMu serializes issuance in this process so one window gets one delivered code.
	issueMu sync.Mutex
}

// NewService creates the class code service. Percentages may be nil.
func NewService(deps Deps, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Service{
		students:    deps.Students,
		ledger:      deps.Ledger,
		store:       deps.Store,
		notifier:    deps.Notifier,
		percentages: deps.Percentages,
		opts:        opts,
		logger:      logger,
		now:         time.Now,
		newCode:     generateCode,
	}
}

// Window returns the attendance hours [start, end).
func (s *Service) Window() (start, end int) {
	return s.opts.StartHour, s.opts.EndHour
}

// generateCode returns a uniform 6 digit code in [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", fmt.Errorf("generate class code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}

func (s *Service) lookup(ctx context.Context, registerNo string) (*models.Student, error) {
	st, err := s.students.FindByRegisterNo(ctx, registerNo)
	if errors.Is(err, students.ErrNotFound) {
		return nil, ErrStudentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find student %s: %w", registerNo, err)
	}
	return st, nil
}

// IssueOrReuseCode returns the live class code, or creates and delivers a new one.
// A new code is stored only after delivery succeeds.
func (s *Service) IssueOrReuseCode(ctx context.Context, requesterID string) (*IssueResult, error) {
	if requesterID == "" {
		return nil, ErrMissingFields
	}
	requester, err := s.lookup(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	s.issueMu.Lock()
	defer s.issueMu.Unlock()

	now := s.now()
	cur, err := s.store.Current(ctx)
	if err != nil {
		return nil, err
	}
	if cur != nil && cur.Live(now) {
		s.logger.Info("class code reused",
			zap.String("requested_by", requesterID),
			zap.Time("expires_at", cur.ExpiresAt),
			zap.Int("total_uses", cur.TotalUses))
		return &IssueResult{Code: cur.Code, ExpiresAt: cur.ExpiresAt, Reused: true, TotalUses: cur.TotalUses}, nil
	}

	code, err := s.newCode()
	if err != nil {
		return nil, err
	}
	candidate := Session{
		ID:        uuid.New().String(),
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.opts.TTL),
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.opts.NotifyTimeout)
	err = s.notifier.Send(sendCtx, notify.ClassCodeNotice{
		Code:          candidate.Code,
		IssuedAt:      candidate.IssuedAt,
		ExpiresAt:     candidate.ExpiresAt,
		RequestedBy:   requester.RegisterNo,
		RequesterName: requester.Name,
	})
	cancel()
	if err != nil {
		s.logger.Error("class code delivery failed", zap.String("requested_by", requesterID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	stored, created, err := s.store.CreateIfAbsent(ctx, candidate, now)
	if err != nil {
		return nil, err
	}
	if !created {
		// Another instance stored a live code while ours was being delivered.
		s.logger.Warn("class code issued elsewhere, discarding delivered code",
			zap.String("requested_by", requesterID),
			zap.String("session_id", stored.ID))
		return &IssueResult{Code: stored.Code, ExpiresAt: stored.ExpiresAt, Reused: true, TotalUses: stored.TotalUses}, nil
	}
	s.logger.Info("class code issued",
		zap.String("requested_by", requesterID),
		zap.String("session_id", stored.ID),
		zap.Time("expires_at", stored.ExpiresAt))
	return &IssueResult{Code: stored.Code, ExpiresAt: stored.ExpiresAt}, nil
}

// RedeemCode validates a submitted code and records today's attendance. Checks run in order:
// student, session present, not expired, code match, not redeemed by this student,
// not marked today, within hours.
func (s *Service) RedeemCode(ctx context.Context, registerNo, code string) (res *RedeemResult, err error) {
	if registerNo == "" || code == "" {
		return nil, ErrMissingFields
	}
	student, err := s.lookup(ctx, registerNo)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sess, err := s.store.Current(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNoActiveCode
	}
	if sess.Expired(now) {
		if err := s.store.Invalidate(ctx, sess.ID); err != nil {
			s.logger.Warn("invalidate expired class code", zap.String("session_id", sess.ID), zap.Error(err))
		}
		return nil, ErrCodeExpired
	}
	if code != sess.Code {
		return nil, ErrInvalidCode
	}

	reserved, err := s.store.Reserve(ctx, sess.ID, registerNo)
	if errors.Is(err, errSessionReplaced) {
		return nil, ErrCodeExpired
	}
	if err != nil {
		return nil, err
	}
	if !reserved {
		return nil, ErrAlreadyRedeemed
	}
	defer func() {
		if err == nil {
			return
		}
		if rerr := s.store.Release(context.WithoutCancel(ctx), sess.ID, registerNo); rerr != nil {
			s.logger.Warn("release class code use", zap.String("register_no", registerNo), zap.Error(rerr))
		}
	}()

	local := now.In(s.opts.Location)
	today := local.Format(models.DateLayout)
	_, err = s.ledger.FindByStudentAndDate(ctx, registerNo, today)
	switch {
	case err == nil:
		return nil, ErrAlreadyMarked
	case !errors.Is(err, attendance.ErrNotFound):
		return nil, fmt.Errorf("check attendance %s: %w", registerNo, err)
	}

	if h := local.Hour(); h < s.opts.StartHour || h >= s.opts.EndHour {
		return nil, ErrOutOfWindow
	}

	rec := &models.AttendanceRecord{
		ID:          uuid.New(),
		RegisterNo:  student.RegisterNo,
		StudentName: student.Name,
		Date:        today,
		Timestamp:   now,
		Status:      models.StatusPresent,
		MarkedWith:  models.MarkedWithClassOTP,
	}
	if err = s.ledger.Insert(ctx, rec); err != nil {
		if errors.Is(err, attendance.ErrDuplicate) {
			return nil, ErrAlreadyMarked
		}
		return nil, fmt.Errorf("insert attendance %s: %w", registerNo, err)
	}

	uses, uerr := s.store.Uses(ctx, sess.ID)
	if uerr != nil {
		s.logger.Warn("count class code uses", zap.String("session_id", sess.ID), zap.Error(uerr))
		uses = sess.TotalUses + 1
	}
	s.logger.Info("attendance marked",
		zap.String("register_no", registerNo),
		zap.String("date", today),
		zap.Int("total_uses", uses))

	s.recompute(ctx, registerNo)
	return &RedeemResult{StudentName: student.Name, TotalUses: uses}, nil
}

// recompute is best-effort; the attendance record stays even if it fails.
func (s *Service) recompute(ctx context.Context, registerNo string) {
	if s.percentages == nil {
		return
	}
	if err := s.percentages.Recompute(ctx, registerNo); err != nil {
		s.logger.Error("attendance percentage update failed", zap.String("register_no", registerNo), zap.Error(err))
	}
}

// Status reports whether a live code exists and how many students redeemed it.
func (s *Service) Status(ctx context.Context) (*StatusResult, error) {
	sess, err := s.store.Current(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil || !sess.Live(s.now()) {
		return &StatusResult{}, nil
	}
	return &StatusResult{Active: true, ExpiresAt: sess.ExpiresAt, TotalUses: sess.TotalUses}, nil
}
