package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"factlog.app/api/internal/metrics"
	"factlog.app/api/internal/queue"
)

type Config struct {
	MaxAttempts int
	// BaseBackoff is the delay before the second attempt; each further
	// attempt doubles it.
	BaseBackoff time.Duration
	// RateInterval spaces out Slack calls across this worker; Slack's
	// chat.postMessage budget is roughly one message per second per
	// channel.
	RateInterval time.Duration
}

type Worker struct {
	consumer   Consumer
	dispatcher Dispatcher
	limiter    *rate.Limiter
	cfg        Config

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(consumer Consumer, dispatcher Dispatcher, cfg Config) *Worker {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = time.Second
	}
	if cfg.RateInterval <= 0 {
		cfg.RateInterval = time.Second
	}
	return &Worker{
		consumer:   consumer,
		dispatcher: dispatcher,
		limiter:    rate.NewLimiter(rate.Every(cfg.RateInterval), 1),
		cfg:        cfg,
		stopCh:     make(chan struct{}),
		stoppedCh:  make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stoppedCh)

	slog.InfoContext(ctx, "dispatch worker started",
		"max_attempts", w.cfg.MaxAttempts,
		"base_backoff", w.cfg.BaseBackoff.String(),
		"rate_interval", w.cfg.RateInterval.String())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			slog.InfoContext(ctx, "dispatch worker stopping")
			return nil
		default:
			if err := w.processOneBatch(ctx); err != nil {
				slog.ErrorContext(ctx, "batch processing error", "error", err)
				// Brief backoff on error
				time.Sleep(time.Second)
			}
		}
	}
}

func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
}

func (w *Worker) processOneBatch(ctx context.Context) error {
	messages, err := w.consumer.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading from stream: %w", err)
	}

	for _, msg := range messages {
		if err := w.limiter.Wait(ctx); err != nil {
			return err
		}
		if err := w.processMessageSafe(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "message processing failed",
				"error", err,
				"message_id", msg.ID,
				"fact_id", msg.FactID,
				"attempt", msg.Attempt)
			w.handleFailedMessage(ctx, msg, err)
		}
	}

	return nil
}

func (w *Worker) processMessageSafe(ctx context.Context, msg queue.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in message processing",
				"panic", r,
				"message_id", msg.ID,
				"fact_id", msg.FactID)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.ProcessMessage(ctx, msg)
}

// ProcessMessage dispatches one message. Exported so it can be reused by
// the reclaimer.
func (w *Worker) ProcessMessage(ctx context.Context, msg queue.Message) error {
	slog.InfoContext(ctx, "processing dispatch job",
		"message_id", msg.ID,
		"fact_id", msg.FactID,
		"attempt", msg.Attempt)

	start := time.Now()
	result, err := w.dispatcher.Dispatch(ctx, msg.FactID)
	metrics.DispatchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		// Leave the message unacked; handleFailedMessage decides between
		// requeue and DLQ.
		return err
	}

	if err := w.consumer.Ack(ctx, msg); err != nil {
		// The dispatch succeeded; the idempotency guard absorbs the
		// redelivery the missing ack will cause.
		slog.WarnContext(ctx, "failed to ACK message",
			"error", err,
			"message_id", msg.ID)
	}

	if result.Skipped {
		metrics.DispatchAttemptsTotal.WithLabelValues("skipped").Inc()
		return nil
	}

	metrics.DispatchAttemptsTotal.WithLabelValues("delivered").Inc()
	slog.InfoContext(ctx, "dispatch job completed",
		"fact_id", msg.FactID,
		"slack_message_id", result.MessageID)
	return nil
}

func (w *Worker) handleFailedMessage(ctx context.Context, msg queue.Message, err error) {
	if msg.Attempt >= w.cfg.MaxAttempts {
		slog.ErrorContext(ctx, "max attempts reached, sending to DLQ",
			"message_id", msg.ID,
			"fact_id", msg.FactID,
			"attempts", msg.Attempt)
		if dlqErr := w.consumer.SendDLQ(ctx, msg, err.Error()); dlqErr != nil {
			slog.ErrorContext(ctx, "failed to send to DLQ", "error", dlqErr)
		}
		metrics.DispatchAttemptsTotal.WithLabelValues("dead_lettered").Inc()
		return
	}

	delay := w.BackoffFor(msg.Attempt)
	slog.WarnContext(ctx, "requeuing failed dispatch job",
		"message_id", msg.ID,
		"fact_id", msg.FactID,
		"attempt", msg.Attempt,
		"delay", delay.String())
	if requeueErr := w.consumer.Requeue(ctx, msg, msg.Attempt+1, delay, err.Error()); requeueErr != nil {
		slog.ErrorContext(ctx, "failed to requeue message", "error", requeueErr)
	}
	metrics.DispatchAttemptsTotal.WithLabelValues("retried").Inc()
}

// BackoffFor returns the delay applied after a failure of the given
// attempt: base, 2x base, 4x base, and so on.
func (w *Worker) BackoffFor(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return w.cfg.BaseBackoff << (attempt - 1)
}
