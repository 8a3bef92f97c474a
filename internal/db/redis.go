package db

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis"
	"github.com/pkg/errors"

	"mailblast/internal/service"
)

const (
	queueName      = "mailblast_job_queue"
	jobKeyPrefix   = "mailblast_job:"
	suppressionSet = "mailblast_sent_addresses"
)

// Redis backs the job queue, the job store and the suppression set with
// a single client. Jobs are stored as JSON blobs.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Push(ctx context.Context, job *service.SendJob) error {
	bts, err := json.Marshal(job)
	if err != nil {
		return errors.Wrap(err, "failed to marshal job")
	}

	return r.client.WithContext(ctx).RPush(queueName, string(bts)).Err()
}

func (r *Redis) Pop(ctx context.Context) (*service.SendJob, error) {
	res, err := r.client.WithContext(ctx).LPop(queueName).Result()
	if err == redis.Nil {
		return nil, service.ErrNoJobs
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to pop job")
	}

	var job service.SendJob

	err = json.Unmarshal([]byte(res), &job)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode job")
	}

	return &job, nil
}

func (r *Redis) Save(ctx context.Context, job *service.SendJob) error {
	bts, err := json.Marshal(job)
	if err != nil {
		return errors.Wrap(err, "failed to marshal job")
	}

	return r.client.WithContext(ctx).Set(jobKeyPrefix+job.ID, string(bts), 0).Err()
}

func (r *Redis) Get(ctx context.Context, id string) (*service.SendJob, error) {
	res, err := r.client.WithContext(ctx).Get(jobKeyPrefix + id).Result()
	if err == redis.Nil {
		return nil, service.ErrJobNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load job")
	}

	var job service.SendJob

	err = json.Unmarshal([]byte(res), &job)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode job")
	}

	return &job, nil
}

func (r *Redis) Add(ctx context.Context, address string) error {
	return r.client.WithContext(ctx).SAdd(suppressionSet, address).Err()
}

func (r *Redis) Contains(ctx context.Context, address string) (bool, error) {
	return r.client.WithContext(ctx).SIsMember(suppressionSet, address).Result()
}
