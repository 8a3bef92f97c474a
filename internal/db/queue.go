package db

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"mailblast/internal/service"
)

// Snapshots go through JSON so callers never share slices with the
// store, matching the copy semantics of the Redis implementation.
func marshalJob(job *service.SendJob) (string, error) {
	bts, err := json.Marshal(job)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal job")
	}

	return string(bts), nil
}

func unmarshalJob(bts string) (*service.SendJob, error) {
	var job service.SendJob

	err := json.Unmarshal([]byte(bts), &job)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode job")
	}

	return &job, nil
}

// Inmem mirrors the Redis store for tests and single-process dev runs.
type Inmem struct {
	bufMu sync.Mutex
	jobs  []service.SendJob

	storeMu sync.RWMutex
	byID    map[string]string // job ID -> JSON snapshot

	setMu sync.RWMutex
	set   map[string]struct{}
}

func NewInmem() *Inmem {
	return &Inmem{
		byID: map[string]string{},
		set:  map[string]struct{}{},
	}
}

func (q *Inmem) Push(_ context.Context, job *service.SendJob) error {
	if job == nil {
		return errors.New("job is nil")
	}

	q.bufMu.Lock()
	defer q.bufMu.Unlock()

	q.jobs = append(q.jobs, *job)
	return nil
}

func (q *Inmem) Pop(_ context.Context) (*service.SendJob, error) {
	q.bufMu.Lock()
	defer q.bufMu.Unlock()

	if len(q.jobs) == 0 {
		return nil, service.ErrNoJobs
	}

	job := q.jobs[0]
	q.jobs = q.jobs[1:]

	return &job, nil
}

func (q *Inmem) Save(_ context.Context, job *service.SendJob) error {
	bts, err := marshalJob(job)
	if err != nil {
		return err
	}

	q.storeMu.Lock()
	defer q.storeMu.Unlock()

	q.byID[job.ID] = bts
	return nil
}

func (q *Inmem) Get(_ context.Context, id string) (*service.SendJob, error) {
	q.storeMu.RLock()
	defer q.storeMu.RUnlock()

	bts, found := q.byID[id]
	if !found {
		return nil, service.ErrJobNotFound
	}

	return unmarshalJob(bts)
}

func (q *Inmem) Add(_ context.Context, address string) error {
	q.setMu.Lock()
	defer q.setMu.Unlock()

	q.set[address] = struct{}{}
	return nil
}

func (q *Inmem) Contains(_ context.Context, address string) (bool, error) {
	q.setMu.RLock()
	defer q.setMu.RUnlock()

	_, found := q.set[address]
	return found, nil
}
