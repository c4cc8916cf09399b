package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dreschagin/uptime-dashboard/internal/domain/entity"
	_ "github.com/lib/pq"
)

const incidentColumns = `site_name, start_ts, end_ts, status_key, status_label, resolved, duration_ms, reason, http_status_code, archived_at`

const createIncidentArchiveSQL = `
	CREATE TABLE IF NOT EXISTS incident_archive (
		site_name        TEXT        NOT NULL,
		start_ts         BIGINT      NOT NULL,
		end_ts           BIGINT,
		status_key       TEXT        NOT NULL,
		status_label     TEXT,
		resolved         BOOLEAN     NOT NULL DEFAULT FALSE,
		duration_ms      BIGINT,
		reason           TEXT,
		http_status_code INTEGER,
		archived_at      TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (site_name, start_ts)
	)
`

const upsertIncidentSQL = `
	INSERT INTO incident_archive (` + incidentColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (site_name, start_ts) DO UPDATE SET
		end_ts = EXCLUDED.end_ts,
		status_key = EXCLUDED.status_key,
		status_label = EXCLUDED.status_label,
		resolved = EXCLUDED.resolved,
		duration_ms = EXCLUDED.duration_ms,
		reason = EXCLUDED.reason,
		http_status_code = EXCLUDED.http_status_code,
		archived_at = EXCLUDED.archived_at
`

// PostgresIncidentArchive implements repository.IncidentArchiveRepository.
// Rows are keyed by (site_name, start_ts), so re-archiving an incident
// updates it in place, e.g. when it gets resolved.
type PostgresIncidentArchive struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresIncidentArchive(db *sql.DB) *PostgresIncidentArchive {
	return &PostgresIncidentArchive{db: db, now: time.Now}
}

// EnsureSchema creates the archive table when it does not exist
func (r *PostgresIncidentArchive) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createIncidentArchiveSQL); err != nil {
		return fmt.Errorf("failed to create incident_archive: %w", err)
	}
	return nil
}

// SaveBatch upserts all incidents in one transaction
func (r *PostgresIncidentArchive) SaveBatch(ctx context.Context, incidents []entity.Incident) error {
	if len(incidents) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, upsertIncidentSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	archivedAt := r.now().UTC()
	for _, incident := range incidents {
		if incident.StartTs == nil {
			continue
		}
		model := ToDBModel(incident, archivedAt)
		_, err := stmt.ExecContext(ctx,
			model.SiteName,
			model.StartTs,
			model.EndTs,
			model.StatusKey,
			model.StatusLabel,
			model.Resolved,
			model.DurationMs,
			model.Reason,
			model.HTTPStatusCode,
			model.ArchivedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert incident %s@%d: %w", model.SiteName, model.StartTs, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// FindBySite returns a site's incidents, newest start first
func (r *PostgresIncidentArchive) FindBySite(ctx context.Context, siteName string, limit int) ([]entity.Incident, error) {
	query := `
		SELECT ` + incidentColumns + `
		FROM incident_archive
		WHERE site_name = $1
		ORDER BY start_ts DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, siteName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]entity.Incident, 0)
	for rows.Next() {
		model, err := ScanIncidentRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}
		incidents = append(incidents, ToEntity(model))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return incidents, nil
}

// Ping is used by the readiness probe
func (r *PostgresIncidentArchive) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
