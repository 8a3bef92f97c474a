package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"mailblast/internal/logger"
)

var (
	ErrNoJobs      = errors.New("no jobs in queue")
	ErrJobNotFound = errors.New("job not found")
)

// JobQueue feeds the dispatch loop.
type JobQueue interface {
	Push(ctx context.Context, job *SendJob) error
	// Pop returns ErrNoJobs when the queue is empty.
	Pop(ctx context.Context) (*SendJob, error)
}

// JobStore keeps jobs addressable by ID, before and after dispatch.
type JobStore interface {
	Save(ctx context.Context, job *SendJob) error
	// Get returns ErrJobNotFound for unknown IDs.
	Get(ctx context.Context, id string) (*SendJob, error)
}

// Composer drafts an email body from a stated purpose. Implemented by
// the chat-completions client in internal/compose.
type Composer interface {
	ComposeEmail(ctx context.Context, purpose, tone string) (string, error)
}

type Service struct {
	Queue      JobQueue
	Store      JobStore
	Composer   Composer
	Dispatcher *Dispatcher
}

// NewSendJob builds a queued job with one pending result slot per
// recipient, in submission order.
func NewSendJob(from EmailAddress, tpl Template, recipients []Recipient, ratePerSecond float64) *SendJob {
	job := &SendJob{
		ID:            uuid.NewString(),
		From:          from,
		Template:      tpl,
		Recipients:    recipients,
		RatePerSecond: ratePerSecond,
		Status:        JobQueued,
		Results:       make([]SendResult, len(recipients)),
		CreatedAt:     time.Now(),
	}

	for i := range recipients {
		job.Results[i] = SendResult{
			Address: recipients[i].Address,
			Status:  StatusPending,
		}
	}

	return job
}

// EnqueueJob validates and persists a job, then hands it to the queue.
// Validation failures surface to the caller before anything is stored.
func (s *Service) EnqueueJob(ctx context.Context, job *SendJob) error {
	if err := job.Validate(); err != nil {
		return err
	}

	if err := s.Store.Save(ctx, job); err != nil {
		return errors.Wrap(err, "failed to save job")
	}

	if err := s.Queue.Push(ctx, job); err != nil {
		return errors.Wrap(err, "failed to push job to the queue")
	}

	logger.FromContext(ctx).
		WithField("job_id", job.ID).
		WithField("recipients", len(job.Recipients)).
		Info("job enqueued")

	return nil
}

// DispatchNext pops and runs one job. It reports false with a nil
// error when the queue is empty so the caller can back off. Failing to
// persist results after sending is fatal: rerunning such a job would
// duplicate mail.
func (s *Service) DispatchNext(ctx context.Context) (ok bool, e error) {
	job, err := s.Queue.Pop(ctx)
	if errors.Cause(err) == ErrNoJobs {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "failed to pop job")
	}

	job.Status = JobRunning
	job.StartedAt = time.Now()

	if err := s.Store.Save(ctx, job); err != nil {
		return false, errors.Wrap(err, "failed to mark job running")
	}

	dispatchErr := s.Dispatcher.Dispatch(ctx, job)

	if err := s.Store.Save(ctx, job); err != nil {
		return false, Fatal(errors.Wrap(err, "failed to persist job results"))
	}

	if dispatchErr != nil {
		return true, errors.Wrap(dispatchErr, "dispatch failed")
	}

	return true, nil
}

// Job looks up a job by ID.
func (s *Service) Job(ctx context.Context, id string) (*SendJob, error) {
	return s.Store.Get(ctx, id)
}

// Compose drafts an email body for the given purpose and tone.
func (s *Service) Compose(ctx context.Context, purpose, tone string) (string, error) {
	body, err := s.Composer.ComposeEmail(ctx, purpose, tone)
	if err != nil {
		return "", errors.Wrap(err, "failed to compose email")
	}

	return body, nil
}
