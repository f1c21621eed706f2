package queue

import (
	"context"
	"errors"
	"github.com/labstack/gommon/log"
	"sync"
	"time"
)

const retryFetchAfter = time.Second

// Handler runs every job added under Key.
type Handler interface {
	Key() string
	Handle(ctx context.Context, payload []byte) error
}

// Worker pulls jobs off a Backend and dispatches them by key. A failed job
// is logged and acknowledged; redelivery is not attempted.
type Worker struct {
	backend  Backend
	handlers map[string]Handler

	mu      sync.Mutex
	started bool
}

func NewWorker(backend Backend, handlers ...Handler) *Worker {
	w := &Worker{backend: backend, handlers: make(map[string]Handler, len(handlers))}
	for _, h := range handlers {
		w.handlers[h.Key()] = h
	}
	return w
}

// Run blocks until ctx is canceled.
func (w *Worker) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return errors.New("worker already started")
	}
	w.started = true
	w.mu.Unlock()

	log.Info("queue worker started")
	for {
		job, err := w.backend.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("queue worker stopped")
				return nil
			}
			log.Errorf("failed to fetch next job: %v", err)
			select {
			case <-ctx.Done():
			case <-time.After(retryFetchAfter):
			}
			continue
		}
		w.process(ctx, job)
	}
}

func (w *Worker) process(ctx context.Context, job *Job) {
	defer func() {
		// a job already handled is acknowledged even while shutting down
		if err := w.backend.Ack(context.WithoutCancel(ctx), job); err != nil {
			log.Errorf("failed to ack job %s (%s): %v", job.ID, job.Key, err)
		}
	}()

	handler, ok := w.handlers[job.Key]
	if !ok {
		log.Warnf("no handler registered for job %s (%s)", job.ID, job.Key)
		return
	}

	if err := handler.Handle(ctx, job.Payload); err != nil {
		log.Errorf("job %s (%s) failed: %v", job.ID, job.Key, err)
		return
	}
	log.Debugf("job %s (%s) done", job.ID, job.Key)
}
