package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gtn-college/attendance-backend/internal/students"
	"github.com/gtn-college/attendance-backend/pkg/queue"
)

// Recomputer updates one student's attendance percentage.
type Recomputer interface {
	Recompute(ctx context.Context, registerNo string) error
}

// PercentageProcessor processes percentage recompute jobs from the Redis queue.
type PercentageProcessor struct {
	calc    Recomputer
	queue   *queue.Queue
	backoff time.Duration
	logger  *zap.Logger
}

// NewPercentageProcessor creates a percentage job processor.
func NewPercentageProcessor(calc Recomputer, q *queue.Queue, logger *zap.Logger) *PercentageProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PercentageProcessor{calc: calc, queue: q, backoff: queue.RetryBackoff, logger: logger}
}

// Process executes one percentage recompute job.
func (p *PercentageProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypePercentageRecompute {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.PercentagePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if payload.RegisterNo == "" {
		return errors.New("payload missing register number")
	}

	err := p.calc.Recompute(ctx, payload.RegisterNo)
	if errors.Is(err, students.ErrNotFound) {
		// Student removed after the job was queued.
		p.logger.Warn("percentage job for unknown student", zap.String("register_no", payload.RegisterNo))
		return nil
	}
	if err != nil {
		return fmt.Errorf("recompute %s: %w", payload.RegisterNo, err)
	}
	p.logger.Info("percentage job completed", zap.String("job_id", job.ID), zap.String("register_no", payload.RegisterNo))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *PercentageProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("percentage worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.sleep(ctx)
		}
	}
}

func (p *PercentageProcessor) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// AsyncPercentages hands recomputation to the worker instead of running it in the request.
type AsyncPercentages struct {
	queue *queue.Queue
}

// NewAsyncPercentages creates a queue-backed percentage updater.
func NewAsyncPercentages(q *queue.Queue) *AsyncPercentages {
	return &AsyncPercentages{queue: q}
}

// Recompute enqueues a percentage job for registerNo.
func (a *AsyncPercentages) Recompute(ctx context.Context, registerNo string) error {
	return a.queue.EnqueuePercentage(ctx, queue.PercentagePayload{RegisterNo: registerNo})
}
