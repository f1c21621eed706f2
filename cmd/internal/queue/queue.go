// Package queue carries background jobs from request handlers to the worker.
package queue

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/oklog/ulid/v2"
	"time"
)

var ErrQueueFull = errors.New("queue is full")

// Job is one unit of background work. Payload is the JSON encoding of what
// the producer handed to Add.
type Job struct {
	ID        string          `json:"id"`
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt int64           `json:"created_at"`

	// backend specific handle used to acknowledge the job
	ref string
}

// Backend stores jobs until a worker takes them.
type Backend interface {
	Add(ctx context.Context, key string, payload any) error
	// Next blocks until a job is available or ctx is done.
	Next(ctx context.Context) (*Job, error)
	Ack(ctx context.Context, job *Job) error
}

func newJob(key string, payload any) (*Job, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", key, err)
	}
	now := time.Now()
	return &Job{
		ID:        ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		Key:       key,
		Payload:   data,
		CreatedAt: now.UnixMilli(),
	}, nil
}
