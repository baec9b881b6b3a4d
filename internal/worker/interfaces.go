package worker

import (
	"context"
	"time"

	"factlog.app/api/internal/queue"
)

// Consumer abstracts the message queue for testability.
type Consumer interface {
	Read(ctx context.Context) ([]queue.Message, error)
	Ack(ctx context.Context, msg queue.Message) error
	Requeue(ctx context.Context, msg queue.Message, attempt int, delay time.Duration, errMsg string) error
	SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error
}

// DispatchResult reports what happened to a single dispatch attempt.
type DispatchResult struct {
	// Skipped is set when the fact was already delivered and nothing
	// was sent.
	Skipped bool
	// MessageID is the provider's message timestamp for a delivered fact.
	MessageID string
}

// Dispatcher delivers one fact to its destination.
type Dispatcher interface {
	Dispatch(ctx context.Context, factID int64) (*DispatchResult, error)
}
