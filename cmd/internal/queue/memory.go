package queue

import "context"

// MemoryQueue keeps jobs in a buffered channel. Jobs are lost on restart.
type MemoryQueue struct {
	jobs chan *Job
}

func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 1
	}
	return &MemoryQueue{jobs: make(chan *Job, size)}
}

// Add never blocks; a full buffer yields ErrQueueFull.
func (m *MemoryQueue) Add(_ context.Context, key string, payload any) error {
	job, err := newJob(key, payload)
	if err != nil {
		return err
	}

	select {
	case m.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

func (m *MemoryQueue) Next(ctx context.Context) (*Job, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case job := <-m.jobs:
		return job, nil
	}
}

func (m *MemoryQueue) Ack(context.Context, *Job) error {
	return nil
}

func (m *MemoryQueue) Len() int {
	return len(m.jobs)
}
