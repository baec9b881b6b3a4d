package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"factlog.app/api/core/db"
	"factlog.app/api/internal/model"
)

type integrationStore struct {
	q db.Querier
}

func newIntegrationStore(q db.Querier) IntegrationStore {
	return &integrationStore{q: q}
}

const integrationColumns = `id, provider, account_id, account_name, access_token, refresh_token,
	expires_at, scope, status, last_sync_at, created_at, updated_at`

func scanIntegration(row pgx.Row) (*model.Integration, error) {
	var i model.Integration
	err := row.Scan(
		&i.ID, &i.Provider, &i.AccountID, &i.AccountName, &i.AccessToken,
		&i.RefreshToken, &i.ExpiresAt, &i.Scope, &i.Status, &i.LastSyncAt,
		&i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &i, nil
}

func (s *integrationStore) GetByID(ctx context.Context, id int64) (*model.Integration, error) {
	row := s.q.QueryRow(ctx, `SELECT `+integrationColumns+` FROM integrations WHERE id = $1`, id)
	return scanIntegration(row)
}

func (s *integrationStore) GetByProviderAndAccount(ctx context.Context, provider, accountID string) (*model.Integration, error) {
	row := s.q.QueryRow(ctx,
		`SELECT `+integrationColumns+` FROM integrations WHERE provider = $1 AND account_id = $2`,
		provider, accountID,
	)
	return scanIntegration(row)
}

func (s *integrationStore) GetActiveByProvider(ctx context.Context, provider string) (*model.Integration, error) {
	row := s.q.QueryRow(ctx, `
		SELECT `+integrationColumns+` FROM integrations
		WHERE provider = $1 AND status = 'active'
		ORDER BY updated_at DESC
		LIMIT 1`,
		provider,
	)
	return scanIntegration(row)
}

func (s *integrationStore) List(ctx context.Context, provider *string) ([]model.Integration, error) {
	query := `SELECT ` + integrationColumns + ` FROM integrations`
	var args []any
	if provider != nil {
		query += ` WHERE provider = $1`
		args = append(args, *provider)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var integrations []model.Integration
	for rows.Next() {
		integration, err := scanIntegration(rows)
		if err != nil {
			return nil, err
		}
		integrations = append(integrations, *integration)
	}
	return integrations, rows.Err()
}

func (s *integrationStore) Upsert(ctx context.Context, id int64, integration *model.Integration) (*model.Integration, error) {
	row := s.q.QueryRow(ctx, `
		INSERT INTO integrations (id, provider, account_id, account_name, access_token, refresh_token, expires_at, scope, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (provider, account_id) DO UPDATE SET
			account_name = EXCLUDED.account_name,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at,
			scope = EXCLUDED.scope,
			status = EXCLUDED.status,
			updated_at = now()
		RETURNING `+integrationColumns,
		id, integration.Provider, integration.AccountID, integration.AccountName,
		integration.AccessToken, integration.RefreshToken, integration.ExpiresAt,
		integration.Scope, integration.Status,
	)
	return scanIntegration(row)
}

func (s *integrationStore) Update(ctx context.Context, integration *model.Integration) (*model.Integration, error) {
	row := s.q.QueryRow(ctx, `
		UPDATE integrations
		SET account_name = $2,
			access_token = $3,
			refresh_token = $4,
			expires_at = $5,
			scope = $6,
			status = $7,
			updated_at = now()
		WHERE id = $1
		RETURNING `+integrationColumns,
		integration.ID, integration.AccountName, integration.AccessToken,
		integration.RefreshToken, integration.ExpiresAt, integration.Scope,
		integration.Status,
	)
	return scanIntegration(row)
}

func (s *integrationStore) UpdateStatus(ctx context.Context, id int64, status model.IntegrationStatus) error {
	tag, err := s.q.Exec(ctx,
		`UPDATE integrations SET status = $2, updated_at = now() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *integrationStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM integrations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *integrationStore) UpdateLastSync(ctx context.Context, id int64, at time.Time) error {
	tag, err := s.q.Exec(ctx,
		`UPDATE integrations SET last_sync_at = $2, updated_at = now() WHERE id = $1`,
		id, at,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
