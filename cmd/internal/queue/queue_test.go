package queue

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sync"
	"testing"
	"time"
)

type payload struct {
	AppointmentID int `json:"appointment_id"`
}

func TestMemoryQueue_AddNext(t *testing.T) {
	q := NewMemoryQueue(2)
	ctx := context.Background()

	require.NoError(t, q.Add(ctx, "CancellationMail", payload{AppointmentID: 1}))
	require.NoError(t, q.Add(ctx, "CancellationMail", payload{AppointmentID: 2}))
	assert.ErrorIs(t, q.Add(ctx, "CancellationMail", payload{AppointmentID: 3}), ErrQueueFull)
	assert.Equal(t, 2, q.Len())

	job, err := q.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "CancellationMail", job.Key)
	assert.NotEmpty(t, job.ID)
	assert.JSONEq(t, `{"appointment_id":1}`, string(job.Payload))
	assert.NoError(t, q.Ack(ctx, job))
}

func TestMemoryQueue_NextHonorsContext(t *testing.T) {
	q := NewMemoryQueue(1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := q.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryQueue_RejectsUnencodablePayload(t *testing.T) {
	q := NewMemoryQueue(1)

	err := q.Add(context.Background(), "x", make(chan int))
	assert.Error(t, err)
	assert.Zero(t, q.Len())
}

type recordingHandler struct {
	key  string
	err  error
	mu   sync.Mutex
	seen []payload
	done chan struct{}
}

func (h *recordingHandler) Key() string { return h.key }

func (h *recordingHandler) Handle(_ context.Context, data []byte) error {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	h.mu.Lock()
	h.seen = append(h.seen, p)
	h.mu.Unlock()
	h.done <- struct{}{}
	return h.err
}

func TestWorker_DispatchesByKey(t *testing.T) {
	q := NewMemoryQueue(10)
	mailHandler := &recordingHandler{key: "CancellationMail", done: make(chan struct{}, 10)}
	failing := &recordingHandler{key: "Failing", err: errors.New("smtp down"), done: make(chan struct{}, 10)}

	ctx, cancel := context.WithCancel(context.Background())
	w := NewWorker(q, mailHandler, failing)

	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	require.NoError(t, q.Add(ctx, "Unknown", payload{AppointmentID: 9}))
	require.NoError(t, q.Add(ctx, "Failing", payload{AppointmentID: 2}))
	require.NoError(t, q.Add(ctx, "CancellationMail", payload{AppointmentID: 1}))

	waitFor(t, failing.done)
	waitFor(t, mailHandler.done)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}

	assert.Equal(t, []payload{{AppointmentID: 1}}, mailHandler.seen)
	assert.Equal(t, []payload{{AppointmentID: 2}}, failing.seen)
	assert.Zero(t, q.Len())

	assert.Error(t, w.Run(context.Background()), "a worker runs once")
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for job")
	}
}

func TestRedisQueue_RoundTrip(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	q, err := NewRedisQueue(ctx, client, "", "worker-1")
	require.NoError(t, err)

	// creating the group twice is fine
	_, err = NewRedisQueue(ctx, client, "", "worker-2")
	require.NoError(t, err)

	require.NoError(t, q.Add(ctx, "CancellationMail", payload{AppointmentID: 42}))

	job, err := q.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "CancellationMail", job.Key)
	assert.NotEmpty(t, job.ID)
	assert.NotZero(t, job.CreatedAt)
	assert.JSONEq(t, `{"appointment_id":42}`, string(job.Payload))

	require.NoError(t, q.Ack(ctx, job))

	pending, err := client.XPending(ctx, DefaultStream, ConsumerGroup).Result()
	require.NoError(t, err)
	assert.Zero(t, pending.Count)
}

func TestRedisQueue_NextHonorsContext(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	q, err := NewRedisQueue(context.Background(), client, "jobs:test", "worker-1")
	require.NoError(t, err)
	q.SetBlockTimeout(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = q.Next(ctx)
	assert.Error(t, err)
}

func TestRedisQueue_ReclaimsJobsOfDeadConsumer(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	first, err := NewRedisQueue(ctx, client, "", "api-boot-1")
	require.NoError(t, err)
	require.NoError(t, first.Add(ctx, "CancellationMail", payload{AppointmentID: 7}))

	// read and never acknowledged, as if the process died mid-job
	lost, err := first.Next(ctx)
	require.NoError(t, err)

	second, err := NewRedisQueue(ctx, client, "", "api-boot-2")
	require.NoError(t, err)
	second.SetBlockTimeout(10 * time.Millisecond)
	second.SetClaimPolicy(20*time.Millisecond, 0)
	time.Sleep(50 * time.Millisecond)

	nextCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	job, err := second.Next(nextCtx)
	require.NoError(t, err)
	assert.Equal(t, lost.ID, job.ID)
	assert.JSONEq(t, `{"appointment_id":7}`, string(job.Payload))

	require.NoError(t, second.Ack(ctx, job))
	pending, err := client.XPending(ctx, DefaultStream, ConsumerGroup).Result()
	require.NoError(t, err)
	assert.Zero(t, pending.Count)
}

type ackRecorder struct {
	*MemoryQueue
	ackErr chan error
}

func (a *ackRecorder) Ack(ctx context.Context, job *Job) error {
	a.ackErr <- ctx.Err()
	return a.MemoryQueue.Ack(ctx, job)
}

type stoppingHandler struct {
	stop context.CancelFunc
}

func (h *stoppingHandler) Key() string { return "CancellationMail" }

func (h *stoppingHandler) Handle(context.Context, []byte) error {
	h.stop()
	return nil
}

func TestWorker_AcksAfterShutdownStarts(t *testing.T) {
	backend := &ackRecorder{MemoryQueue: NewMemoryQueue(1), ackErr: make(chan error, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, backend.Add(ctx, "CancellationMail", payload{AppointmentID: 1}))
	w := NewWorker(backend, &stoppingHandler{stop: cancel})
	require.NoError(t, w.Run(ctx))

	select {
	case err := <-backend.ackErr:
		assert.NoError(t, err, "ack must not see the canceled context")
	case <-time.After(time.Second):
		t.Fatal("job was not acknowledged")
	}
}
