package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"
)

// ArchiveRepository stores superseded latest-post rows, keyed by
// (tenant, the row's own timestamp). Rows carry an expiry a year out so a
// cleanup job can eventually drop them.
type ArchiveRepository interface {
	Save(ctx context.Context, tenant, archivedTS string, row map[string]string) error
	Get(ctx context.Context, tenant, archivedTS string) (map[string]string, error)
}

type archiveRepository struct {
	db *sql.DB
}

func NewArchiveRepository(db *sql.DB) ArchiveRepository {
	return &archiveRepository{db: db}
}

const archiveTTL = 365 * 24 * time.Hour

func (r *archiveRepository) Save(ctx context.Context, tenant, archivedTS string, row map[string]string) error {
	payload, err := json.Marshal(row)
	if err != nil {
		slog.Error(err.Error())
		return err
	}

	query := `
		INSERT INTO post_archive (tenant_domain, archived_ts, payload, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_domain, archived_ts) DO UPDATE
		SET payload = EXCLUDED.payload, expires_at = EXCLUDED.expires_at
	`

	_, err = r.db.ExecContext(ctx, query, tenant, archivedTS, payload, time.Now().Add(archiveTTL))
	if err != nil {
		slog.Error(err.Error())
		return err
	}
	return nil
}

func (r *archiveRepository) Get(ctx context.Context, tenant, archivedTS string) (map[string]string, error) {
	query := `SELECT payload FROM post_archive WHERE tenant_domain = $1 AND archived_ts = $2`

	var payload []byte
	err := r.db.QueryRowContext(ctx, query, tenant, archivedTS).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Error(err.Error())
		return nil, err
	}

	var row map[string]string
	if err := json.Unmarshal(payload, &row); err != nil {
		slog.Error(err.Error())
		return nil, err
	}
	return row, nil
}
