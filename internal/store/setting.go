package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"factlog.app/api/core/db"
	"factlog.app/api/internal/model"
)

type settingStore struct {
	q db.Querier
}

func newSettingStore(q db.Querier) SettingStore {
	return &settingStore{q: q}
}

const settingColumns = `id, provider, setting_type, value, created_at, updated_at`

func scanSetting(row pgx.Row) (*model.Setting, error) {
	var s model.Setting
	err := row.Scan(&s.ID, &s.Provider, &s.SettingType, &s.Value, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (s *settingStore) GetByProviderAndType(ctx context.Context, provider, settingType string) (*model.Setting, error) {
	row := s.q.QueryRow(ctx,
		`SELECT `+settingColumns+` FROM settings WHERE provider = $1 AND setting_type = $2`,
		provider, settingType,
	)
	return scanSetting(row)
}

func (s *settingStore) List(ctx context.Context, provider *string) ([]model.Setting, error) {
	query := `SELECT ` + settingColumns + ` FROM settings`
	var args []any
	if provider != nil {
		query += ` WHERE provider = $1`
		args = append(args, *provider)
	}
	query += ` ORDER BY provider, setting_type`

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []model.Setting
	for rows.Next() {
		setting, err := scanSetting(rows)
		if err != nil {
			return nil, err
		}
		settings = append(settings, *setting)
	}
	return settings, rows.Err()
}

func (s *settingStore) Upsert(ctx context.Context, id int64, setting *model.Setting) (*model.Setting, error) {
	row := s.q.QueryRow(ctx, `
		INSERT INTO settings (id, provider, setting_type, value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (provider, setting_type) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = now()
		RETURNING `+settingColumns,
		id, setting.Provider, setting.SettingType, setting.Value,
	)
	return scanSetting(row)
}

func (s *settingStore) Delete(ctx context.Context, provider, settingType string) error {
	tag, err := s.q.Exec(ctx,
		`DELETE FROM settings WHERE provider = $1 AND setting_type = $2`,
		provider, settingType,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
