// Package queue moves dispatch jobs between the API server and the worker
// over a Redis stream with a consumer group. A job carries a fact id only;
// the worker re-reads the fact so it always delivers the latest content.
package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

type DispatchJob struct {
	FactID  int64
	TraceID *string
	Attempt int
}

type Producer interface {
	Enqueue(ctx context.Context, job DispatchJob) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) Enqueue(ctx context.Context, job DispatchJob) error {
	attempt := job.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	fields := map[string]any{
		"fact_id": job.FactID,
		"attempt": attempt,
	}

	if job.TraceID != nil && *job.TraceID != "" {
		fields["trace_id"] = *job.TraceID
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}).Err(); err != nil {
		return fmt.Errorf("enqueue dispatch job: %w", err)
	}

	p.logger.InfoContext(ctx, "enqueued dispatch job", "fact_id", job.FactID, "attempt", attempt)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
