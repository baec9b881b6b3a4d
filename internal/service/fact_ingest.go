package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"factlog.app/api/common/id"
	"factlog.app/api/internal/mapper"
	"factlog.app/api/internal/metrics"
	"factlog.app/api/internal/queue"
)

type IngestResult struct {
	FactIDs []int64
	Created []int64
}

// IngestService turns provider webhook events into upserted facts and
// enqueues a dispatch job for each fact that is new. Redelivered events
// update the existing row without re-notifying.
type IngestService interface {
	ProcessGitHub(ctx context.Context, eventType string, body []byte) (*IngestResult, error)
}

type ingestService struct {
	github   *mapper.GitHub
	txRunner TxRunner
	producer queue.Producer
	logger   *slog.Logger
}

func NewIngestService(github *mapper.GitHub, txRunner TxRunner, producer queue.Producer, logger *slog.Logger) IngestService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ingestService{
		github:   github,
		txRunner: txRunner,
		producer: producer,
		logger:   logger,
	}
}

func (s *ingestService) ProcessGitHub(ctx context.Context, eventType string, body []byte) (*IngestResult, error) {
	inputs, err := s.github.Map(eventType, body)
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues("github", eventType, "invalid").Inc()
		return nil, fmt.Errorf("mapping github event: %w", err)
	}
	if len(inputs) == 0 {
		metrics.WebhookEventsTotal.WithLabelValues("github", eventType, "ignored").Inc()
		s.logger.InfoContext(ctx, "github event produced no facts", "event_type", eventType)
		return &IngestResult{}, nil
	}

	result := &IngestResult{}
	if err := s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		for _, input := range inputs {
			fact, created, err := stores.Facts().Upsert(ctx, id.New(), input)
			if err != nil {
				return fmt.Errorf("upserting fact %s: %w", input.ExternalID, err)
			}
			result.FactIDs = append(result.FactIDs, fact.ID)
			if created {
				result.Created = append(result.Created, fact.ID)
			}
			metrics.FactUpsertsTotal.WithLabelValues(string(input.Source), strconv.FormatBool(created)).Inc()
		}
		return nil
	}); err != nil {
		metrics.WebhookEventsTotal.WithLabelValues("github", eventType, "error").Inc()
		return nil, err
	}

	// Enqueue after the transaction commits so the worker never races a
	// fact row that does not exist yet.
	traceID := traceIDFromContext(ctx)
	for _, factID := range result.Created {
		if err := s.producer.Enqueue(ctx, queue.DispatchJob{FactID: factID, TraceID: traceID}); err != nil {
			s.logger.ErrorContext(ctx, "failed to enqueue dispatch for fact", "fact_id", factID, "error", err)
		}
	}

	metrics.WebhookEventsTotal.WithLabelValues("github", eventType, "processed").Inc()
	s.logger.InfoContext(ctx, "processed github event",
		"event_type", eventType,
		"facts", len(result.FactIDs),
		"created", len(result.Created))
	return result, nil
}
