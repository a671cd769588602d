package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"artyra/internal/domain"
)

// SettingsRepo manages the single settings row (id = 1).
type SettingsRepo struct{ db *sqlx.DB }

func NewSettingsRepo(db *sqlx.DB) *SettingsRepo { return &SettingsRepo{db: db} }

type settingsRow struct {
	StoreName string `db:"store_name"`
	LogoURL   string `db:"logo_url"`
}

// Get returns the stored settings or the defaults when none were saved yet.
func (r *SettingsRepo) Get(ctx context.Context) (domain.StoreSettings, error) {
	var row settingsRow
	err := r.db.GetContext(ctx, &row, `SELECT store_name, logo_url FROM settings WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultSettings(), nil
	}
	if err != nil {
		return domain.StoreSettings{}, err
	}
	return domain.StoreSettings{StoreName: row.StoreName, LogoURL: row.LogoURL}, nil
}

// Upsert replaces the settings row wholesale.
func (r *SettingsRepo) Upsert(ctx context.Context, s domain.StoreSettings) (domain.StoreSettings, error) {
	var row settingsRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
		INSERT INTO settings(id, store_name, logo_url) VALUES(1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET store_name = excluded.store_name, logo_url = excluded.logo_url
		RETURNING store_name, logo_url
	`), s.StoreName, s.LogoURL)
	if err != nil {
		return domain.StoreSettings{}, err
	}
	return domain.StoreSettings{StoreName: row.StoreName, LogoURL: row.LogoURL}, nil
}
