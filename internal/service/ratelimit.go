package service

import (
	"context"
	"time"
)

// intervalLimiter spaces consecutive sends by a fixed interval derived
// from the job's sends-per-second budget. Sequential use only; one
// limiter belongs to one dispatch run.
type intervalLimiter struct {
	interval time.Duration
	last     time.Time
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

func newIntervalLimiter(perSecond float64) *intervalLimiter {
	return &intervalLimiter{
		interval: time.Duration(float64(time.Second) / perSecond),
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Wait blocks until the interval since the previous send has elapsed.
// The first call never blocks.
func (l *intervalLimiter) Wait(ctx context.Context) error {
	if !l.last.IsZero() {
		if wait := l.interval - l.now().Sub(l.last); wait > 0 {
			if err := l.sleep(ctx, wait); err != nil {
				return err
			}
		}
	}

	l.last = l.now()

	return nil
}
