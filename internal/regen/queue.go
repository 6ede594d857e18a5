// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package regen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultQueueKey is the Valkey list holding pending jobs.
const DefaultQueueKey = "pagecraft:regen:jobs"

// Queue is a FIFO of regeneration jobs stored in a Valkey list. Producers
// LPUSH, consumers BRPOP.
type Queue struct {
	client *redis.Client
	key    string
}

// NewQueue creates a queue on the given list key.
func NewQueue(client *redis.Client, key string) *Queue {
	if key == "" {
		key = DefaultQueueKey
	}
	return &Queue{client: client, key: key}
}

// Enqueue pushes jobs in one round trip.
func (q *Queue) Enqueue(ctx context.Context, jobs ...Job) error {
	if len(jobs) == 0 {
		return nil
	}
	values := make([]any, 0, len(jobs))
	for _, j := range jobs {
		b, err := json.Marshal(j)
		if err != nil {
			return fmt.Errorf("marshal job: %w", err)
		}
		values = append(values, b)
	}
	if err := q.client.LPush(ctx, q.key, values...).Err(); err != nil {
		return fmt.Errorf("enqueue jobs: %w", err)
	}
	slog.Info("regeneration jobs enqueued", "count", len(jobs), "queue", q.key)
	return nil
}

// Dequeue blocks up to wait for the next job. It returns (nil, nil) when
// the wait elapses with an empty queue. A payload that cannot be decoded is
// dropped and logged.
func (q *Queue) Dequeue(ctx context.Context, wait time.Duration) (*Job, error) {
	res, err := q.client.BRPop(ctx, wait, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dequeue job: %w", err)
	}
	// res is [key, value].
	if len(res) != 2 {
		return nil, fmt.Errorf("dequeue job: unexpected reply %v", res)
	}

	var job Job
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		slog.Error("dropping malformed regeneration job", "queue", q.key, "error", err)
		queueJobsTotal.WithLabelValues("malformed").Inc()
		return nil, nil
	}
	return &job, nil
}

// Len returns the number of pending jobs.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("queue length: %w", err)
	}
	return n, nil
}
