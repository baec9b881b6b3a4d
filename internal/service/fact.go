package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"factlog.app/api/common/id"
	"factlog.app/api/internal/apperr"
	"factlog.app/api/internal/model"
	"factlog.app/api/internal/queue"
	"factlog.app/api/internal/store"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 100
)

type ListFactsParams struct {
	Source *model.FactSource
	Type   *string
	From   *time.Time
	To     *time.Time
	Limit  int32
	Cursor *int64
}

type FactPage struct {
	Data       []model.Fact
	HasMore    bool
	NextCursor *int64
}

type CreateFactParams struct {
	ExternalID *string
	Source     model.FactSource
	SourceURL  *string
	Type       string
	Title      string
	Summary    *string
	Content    *string
	Metadata   json.RawMessage
	OccurredAt *time.Time
}

type FactService interface {
	List(ctx context.Context, params ListFactsParams) (*FactPage, error)
	Get(ctx context.Context, id int64) (*model.Fact, error)
	Create(ctx context.Context, params CreateFactParams) (*model.Fact, error)
}

type factService struct {
	facts    store.FactStore
	producer queue.Producer
	logger   *slog.Logger
}

func NewFactService(facts store.FactStore, producer queue.Producer, logger *slog.Logger) FactService {
	if logger == nil {
		logger = slog.Default()
	}
	return &factService{
		facts:    facts,
		producer: producer,
		logger:   logger,
	}
}

func (s *factService) List(ctx context.Context, params ListFactsParams) (*FactPage, error) {
	limit := params.Limit
	if limit == 0 {
		limit = defaultPageLimit
	}
	if limit < 1 || limit > maxPageLimit {
		return nil, apperr.Validation(fmt.Sprintf("limit must be between 1 and %d", maxPageLimit))
	}

	filter := store.FactFilter{
		Source: params.Source,
		Type:   params.Type,
		From:   params.From,
		To:     params.To,
		// Fetch one extra row to detect whether another page exists.
		Limit: limit + 1,
	}

	if params.Cursor != nil {
		cursorRow, err := s.facts.GetByID(ctx, *params.Cursor)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, apperr.Validation("invalid cursor")
			}
			return nil, fmt.Errorf("resolving cursor: %w", err)
		}
		filter.AfterOccurredAt = &cursorRow.OccurredAt
		filter.AfterID = &cursorRow.ID
	}

	facts, err := s.facts.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing facts: %w", err)
	}

	page := &FactPage{Data: facts}
	if int32(len(facts)) > limit {
		page.Data = facts[:limit]
		page.HasMore = true
		nextCursor := page.Data[len(page.Data)-1].ID
		page.NextCursor = &nextCursor
	}
	return page, nil
}

func (s *factService) Get(ctx context.Context, id int64) (*model.Fact, error) {
	fact, err := s.facts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("fact")
		}
		return nil, fmt.Errorf("fetching fact: %w", err)
	}
	return fact, nil
}

func (s *factService) Create(ctx context.Context, params CreateFactParams) (*model.Fact, error) {
	if params.Title == "" || params.Source == "" || params.Type == "" {
		return nil, apperr.Validation("source, type, and title are required")
	}

	externalID := ""
	if params.ExternalID != nil {
		externalID = *params.ExternalID
	}
	if externalID == "" {
		externalID = "manual-" + uuid.NewString()
	}

	occurredAt := time.Now()
	if params.OccurredAt != nil {
		occurredAt = *params.OccurredAt
	}

	fact, err := s.facts.Create(ctx, id.New(), model.FactInput{
		ExternalID: externalID,
		Source:     params.Source,
		SourceURL:  params.SourceURL,
		Type:       params.Type,
		Title:      params.Title,
		Summary:    params.Summary,
		Content:    params.Content,
		Metadata:   params.Metadata,
		Raw:        params.Metadata,
		OccurredAt: occurredAt,
	})
	if err != nil {
		return nil, fmt.Errorf("creating fact: %w", err)
	}

	if err := s.producer.Enqueue(ctx, queue.DispatchJob{
		FactID:  fact.ID,
		TraceID: traceIDFromContext(ctx),
	}); err != nil {
		// The fact exists; delivery will be retried by the operator or a
		// future re-enqueue, so creation still succeeds.
		s.logger.ErrorContext(ctx, "failed to enqueue dispatch for fact", "fact_id", fact.ID, "error", err)
	}

	return fact, nil
}

func traceIDFromContext(ctx context.Context) *string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.HasTraceID() {
		return nil
	}
	traceID := spanCtx.TraceID().String()
	return &traceID
}
