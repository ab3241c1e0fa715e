package repository

import (
	"context"

	"tailorbooks-backend/internal/db"
)

type SettingsRepository struct {
	DB *db.Postgres
}

// Load returns every stored key for the owner.
func (r SettingsRepository) Load(ctx context.Context, ownerUserID int64) (map[string]string, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT key, value FROM settings WHERE owner_user_id=$1
	`, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

// Save upserts the given keys in one transaction.
func (r SettingsRepository) Save(ctx context.Context, ownerUserID int64, values map[string]string) error {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for k, v := range values {
		if _, err := tx.Exec(ctx, `
			INSERT INTO settings (owner_user_id, key, value, updated_at)
			VALUES ($1,$2,$3, now())
			ON CONFLICT (owner_user_id, key) DO UPDATE SET value=EXCLUDED.value, updated_at=now()
		`, ownerUserID, k, v); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
