package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"factlog.app/api/core/db"
	"factlog.app/api/internal/model"
)

type factStore struct {
	q db.Querier
}

func newFactStore(q db.Querier) FactStore {
	return &factStore{q: q}
}

const factColumns = `id, external_id, source, source_url, type, title, summary, content,
	metadata, raw, occurred_at, processed_at, slack_message_id, created_at, updated_at`

func scanFact(row pgx.Row) (*model.Fact, error) {
	var f model.Fact
	err := row.Scan(
		&f.ID, &f.ExternalID, &f.Source, &f.SourceURL, &f.Type, &f.Title,
		&f.Summary, &f.Content, &f.Metadata, &f.Raw, &f.OccurredAt,
		&f.ProcessedAt, &f.SlackMessageID, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (s *factStore) Upsert(ctx context.Context, id int64, input model.FactInput) (*model.Fact, bool, error) {
	row := s.q.QueryRow(ctx, `
		INSERT INTO facts (id, external_id, source, source_url, type, title, summary, content, metadata, raw, occurred_at, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
		ON CONFLICT (source, external_id) DO UPDATE SET
			source_url = EXCLUDED.source_url,
			type = EXCLUDED.type,
			title = EXCLUDED.title,
			summary = EXCLUDED.summary,
			content = EXCLUDED.content,
			metadata = EXCLUDED.metadata,
			raw = EXCLUDED.raw,
			occurred_at = EXCLUDED.occurred_at,
			processed_at = now(),
			updated_at = now()
		RETURNING `+factColumns,
		id, input.ExternalID, input.Source, input.SourceURL, input.Type,
		input.Title, input.Summary, input.Content, input.Metadata, input.Raw,
		input.OccurredAt,
	)
	fact, err := scanFact(row)
	if err != nil {
		return nil, false, err
	}
	// The returned row keeps its original id on conflict, so a match with
	// the id we supplied means the insert won.
	return fact, fact.ID == id, nil
}

func (s *factStore) Create(ctx context.Context, id int64, input model.FactInput) (*model.Fact, error) {
	row := s.q.QueryRow(ctx, `
		INSERT INTO facts (id, external_id, source, source_url, type, title, summary, content, metadata, raw, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+factColumns,
		id, input.ExternalID, input.Source, input.SourceURL, input.Type,
		input.Title, input.Summary, input.Content, input.Metadata, input.Raw,
		input.OccurredAt,
	)
	return scanFact(row)
}

func (s *factStore) GetByID(ctx context.Context, id int64) (*model.Fact, error) {
	row := s.q.QueryRow(ctx, `SELECT `+factColumns+` FROM facts WHERE id = $1`, id)
	return scanFact(row)
}

func (s *factStore) List(ctx context.Context, filter FactFilter) ([]model.Fact, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Source != nil {
		conds = append(conds, "source = "+arg(*filter.Source))
	}
	if filter.Type != nil {
		conds = append(conds, "type = "+arg(*filter.Type))
	}
	if filter.From != nil {
		conds = append(conds, "occurred_at >= "+arg(*filter.From))
	}
	if filter.To != nil {
		conds = append(conds, "occurred_at <= "+arg(*filter.To))
	}
	if filter.AfterOccurredAt != nil && filter.AfterID != nil {
		conds = append(conds, fmt.Sprintf("(occurred_at, id) < (%s, %s)",
			arg(*filter.AfterOccurredAt), arg(*filter.AfterID)))
	}

	query := `SELECT ` + factColumns + ` FROM facts`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY occurred_at DESC, id DESC LIMIT " + arg(filter.Limit)

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facts []model.Fact
	for rows.Next() {
		fact, err := scanFact(rows)
		if err != nil {
			return nil, err
		}
		facts = append(facts, *fact)
	}
	return facts, rows.Err()
}

func (s *factStore) MarkDispatched(ctx context.Context, id int64, slackMessageID string) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE facts
		SET slack_message_id = $2, processed_at = now(), updated_at = now()
		WHERE id = $1`,
		id, slackMessageID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
