package queue

import (
	"context"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultStream is the Redis stream holding pending jobs.
	DefaultStream = "gobarber:jobs"

	// ConsumerGroup is shared by every worker process.
	ConsumerGroup = "gobarber_workers"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 10000

	DefaultBlockTimeout = 5 * time.Second

	// DefaultClaimIdle is how long a delivered job may stay unacknowledged
	// before another consumer takes it over.
	DefaultClaimIdle = time.Minute

	DefaultClaimInterval = 30 * time.Second
)

// RedisQueue stores jobs in a Redis stream read through a consumer group, so
// several worker processes share the load.
type RedisQueue struct {
	client       *redis.Client
	stream       string
	consumer     string
	blockTimeout time.Duration

	claimIdle     time.Duration
	claimInterval time.Duration
	claimStartID  string
	lastClaim     time.Time
}

func NewRedisQueue(ctx context.Context, client *redis.Client, stream, consumer string) (*RedisQueue, error) {
	if stream == "" {
		stream = DefaultStream
	}
	q := &RedisQueue{
		client:       client,
		stream:       stream,
		consumer:     consumer,
		blockTimeout: DefaultBlockTimeout,

		claimIdle:     DefaultClaimIdle,
		claimInterval: DefaultClaimInterval,
		claimStartID:  "0-0",
	}

	err := client.XGroupCreateMkStream(ctx, stream, ConsumerGroup, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("create consumer group: %w", err)
	}
	return q, nil
}

// SetBlockTimeout overrides how long Next waits on Redis per round trip.
func (q *RedisQueue) SetBlockTimeout(d time.Duration) {
	if d > 0 {
		q.blockTimeout = d
	}
}

// SetClaimPolicy sets how long a job stays pending before it is reclaimed and
// how often Next looks for such jobs.
func (q *RedisQueue) SetClaimPolicy(idle, interval time.Duration) {
	q.claimIdle = idle
	q.claimInterval = interval
}

func (q *RedisQueue) Add(ctx context.Context, key string, payload any) error {
	job, err := newJob(key, payload)
	if err != nil {
		return err
	}

	err = q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		MaxLen: MaxStreamLen,
		Approx: true,
		ID:     "*",
		Values: map[string]any{
			"id":         job.ID,
			"key":        job.Key,
			"payload":    string(job.Payload),
			"created_at": job.CreatedAt,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd: %w", err)
	}
	return nil
}

// Next first takes over jobs left pending by consumers that died before
// acknowledging them, then waits for new ones.
func (q *RedisQueue) Next(ctx context.Context) (*Job, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		claimed, err := q.claimPending(ctx)
		if err != nil {
			return nil, err
		}
		if claimed != nil {
			return claimed, nil
		}

		streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    ConsumerGroup,
			Consumer: q.consumer,
			Streams:  []string{q.stream, ">"},
			Count:    1,
			Block:    q.blockTimeout,
		}).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("xreadgroup: %w", err)
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				return decodeMessage(msg), nil
			}
		}
	}
}

func (q *RedisQueue) claimPending(ctx context.Context) (*Job, error) {
	if q.claimIdle <= 0 {
		return nil, nil
	}
	if !q.lastClaim.IsZero() && time.Since(q.lastClaim) < q.claimInterval {
		return nil, nil
	}

	messages, start, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   q.stream,
		Group:    ConsumerGroup,
		Consumer: q.consumer,
		MinIdle:  q.claimIdle,
		Start:    q.claimStartID,
		Count:    1,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("xautoclaim: %w", err)
	}
	if start == "" {
		start = "0-0"
	}
	q.claimStartID = start
	if len(messages) == 0 {
		// the scan wrapped around with nothing stuck
		if start == "0-0" {
			q.lastClaim = time.Now()
		}
		return nil, nil
	}
	return decodeMessage(messages[0]), nil
}

func (q *RedisQueue) Ack(ctx context.Context, job *Job) error {
	if job.ref == "" {
		return nil
	}
	return q.client.XAck(ctx, q.stream, ConsumerGroup, job.ref).Err()
}

func decodeMessage(msg redis.XMessage) *Job {
	job := &Job{ref: msg.ID}
	job.ID, _ = msg.Values["id"].(string)
	job.Key, _ = msg.Values["key"].(string)
	if payload, ok := msg.Values["payload"].(string); ok {
		job.Payload = []byte(payload)
	}
	if created, ok := msg.Values["created_at"].(string); ok {
		job.CreatedAt, _ = strconv.ParseInt(created, 10, 64)
	}
	return job
}
