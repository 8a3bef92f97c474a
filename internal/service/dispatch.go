package service

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"mailblast/internal/logger"
)

// SuppressionSet remembers addresses that were already mailed. When a
// dispatcher carries one, recipients found in the set are skipped and
// successfully sent addresses are added.
type SuppressionSet interface {
	Add(ctx context.Context, address string) error
	Contains(ctx context.Context, address string) (bool, error)
}

// Dispatcher drives one SendJob to completion: validate everything up
// front, dial one mail session, then walk the recipients in submission
// order at the configured rate.
type Dispatcher struct {
	Transport   Transport
	Suppression SuppressionSet // nil disables deduplication
}

// Dispatch finalizes the job in place. A validation or dial failure
// marks the whole job failed before any send; a per-recipient transport
// failure is recorded and the run continues. Each recipient gets at
// most one send attempt per run. On cancellation the remaining
// recipients are left pending.
func (d *Dispatcher) Dispatch(ctx context.Context, job *SendJob) error {
	log := logger.FromContext(ctx).WithField("job_id", job.ID)

	if err := job.Validate(); err != nil {
		return d.abort(job, errors.WithMessage(err, "job validation failed"))
	}

	if len(job.Results) != len(job.Recipients) {
		job.Results = make([]SendResult, len(job.Recipients))
	}

	conn, err := d.Transport.Dial(ctx)
	if err != nil {
		return d.abort(job, errors.Wrap(err, "failed to open mail session"))
	}
	defer conn.Close()

	limiter := newIntervalLimiter(job.RatePerSecond)

	for i := range job.Recipients {
		if err := ctx.Err(); err != nil {
			job.FinishedAt = time.Now()
			return errors.Wrap(err, "dispatch cancelled")
		}

		if done, err := d.suppress(ctx, job, i); err != nil {
			job.FinishedAt = time.Now()
			return err
		} else if done {
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			job.FinishedAt = time.Now()
			return errors.Wrap(err, "dispatch cancelled")
		}

		d.sendOne(ctx, conn, job, i)

		result := &job.Results[i]
		if result.Status == StatusFailed {
			log.WithField("recipient", result.Address).
				WithField("error", result.Error).
				Warn("send failed")
		}
	}

	job.Status = JobCompleted
	job.FinishedAt = time.Now()

	summary := job.Summary()
	log.WithField("sent", summary.Sent).
		WithField("failed", summary.Failed).
		WithField("skipped", summary.Skipped).
		Info("job finished")

	return nil
}

func (d *Dispatcher) abort(job *SendJob, err error) error {
	job.Status = JobFailed
	job.Error = err.Error()
	job.FinishedAt = time.Now()

	return err
}

// suppress checks the dedupe set for recipient i. It reports true when
// the recipient was skipped. Set lookup errors stop the run so the
// dedupe guarantee is not silently dropped mid-job.
func (d *Dispatcher) suppress(ctx context.Context, job *SendJob, i int) (bool, error) {
	if d.Suppression == nil {
		return false, nil
	}

	address := normalizeAddress(job.Recipients[i].Address)

	seen, err := d.Suppression.Contains(ctx, address)
	if err != nil {
		return false, errors.Wrap(err, "failed to check suppression set")
	}
	if !seen {
		return false, nil
	}

	job.Results[i] = SendResult{
		Address: job.Recipients[i].Address,
		Status:  StatusSkipped,
		At:      time.Now(),
	}

	return true, nil
}

func (d *Dispatcher) sendOne(ctx context.Context, conn TransportConn, job *SendJob, i int) {
	recipient := &job.Recipients[i]
	result := &job.Results[i]
	result.Address = recipient.Address

	// Validate already proved this renders.
	subject, body, err := job.Template.Render(recipient.Fields)
	if err != nil {
		result.Status = StatusFailed
		result.Error = err.Error()
		result.At = time.Now()
		return
	}

	err = conn.Send(ctx, job.From, EmailAddress{
		Name:    recipient.DisplayName(),
		Address: recipient.Address,
	}, Email{
		Subject: subject,
		Body:    body,
	})
	result.At = time.Now()

	if err != nil {
		result.Status = StatusFailed
		result.Error = err.Error()
		return
	}

	result.Status = StatusSent

	if d.Suppression != nil {
		if err := d.Suppression.Add(ctx, normalizeAddress(recipient.Address)); err != nil {
			logger.FromContext(ctx).WithError(err).
				WithField("recipient", recipient.Address).
				Error("failed to record address in suppression set")
		}
	}
}

func normalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
