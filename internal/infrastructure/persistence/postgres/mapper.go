package postgres

import (
	"database/sql"
	"time"

	"github.com/dreschagin/uptime-dashboard/internal/domain/entity"
)

// IncidentDBModel is one row of incident_archive
type IncidentDBModel struct {
	SiteName       string
	StartTs        int64
	EndTs          sql.NullInt64
	StatusKey      string
	StatusLabel    sql.NullString
	Resolved       bool
	DurationMs     sql.NullInt64
	Reason         sql.NullString
	HTTPStatusCode sql.NullInt64
	ArchivedAt     time.Time
}

// ToDBModel converts an incident; the caller guarantees StartTs is set
func ToDBModel(incident entity.Incident, archivedAt time.Time) IncidentDBModel {
	model := IncidentDBModel{
		SiteName:   incident.SiteName,
		StartTs:    incident.StartMs(),
		StatusKey:  incident.StatusKey,
		Resolved:   incident.IsResolved(),
		ArchivedAt: archivedAt,
	}
	if incident.EndTs != nil {
		model.EndTs = sql.NullInt64{Int64: *incident.EndTs, Valid: true}
	}
	if incident.StatusLabel != "" {
		model.StatusLabel = sql.NullString{String: incident.StatusLabel, Valid: true}
	}
	if incident.DurationMs != nil {
		model.DurationMs = sql.NullInt64{Int64: *incident.DurationMs, Valid: true}
	}
	if incident.Reason != nil {
		model.Reason = sql.NullString{String: *incident.Reason, Valid: true}
	}
	if incident.HTTPStatusCode != nil {
		model.HTTPStatusCode = sql.NullInt64{Int64: int64(*incident.HTTPStatusCode), Valid: true}
	}
	return model
}

// ToEntity converts a row back to the wire-shaped incident
func ToEntity(model IncidentDBModel) entity.Incident {
	start := model.StartTs
	resolved := model.Resolved
	incident := entity.Incident{
		SiteName:    model.SiteName,
		StatusKey:   model.StatusKey,
		StatusLabel: model.StatusLabel.String,
		StartTs:     &start,
		Resolved:    &resolved,
	}
	if model.EndTs.Valid {
		end := model.EndTs.Int64
		incident.EndTs = &end
	}
	if model.DurationMs.Valid {
		d := model.DurationMs.Int64
		incident.DurationMs = &d
	}
	if model.Reason.Valid {
		reason := model.Reason.String
		incident.Reason = &reason
	}
	if model.HTTPStatusCode.Valid {
		code := int(model.HTTPStatusCode.Int64)
		incident.HTTPStatusCode = &code
	}
	return incident
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// ScanIncidentRow scans columns in incidentColumns order
func ScanIncidentRow(row rowScanner) (IncidentDBModel, error) {
	var model IncidentDBModel
	err := row.Scan(
		&model.SiteName,
		&model.StartTs,
		&model.EndTs,
		&model.StatusKey,
		&model.StatusLabel,
		&model.Resolved,
		&model.DurationMs,
		&model.Reason,
		&model.HTTPStatusCode,
		&model.ArchivedAt,
	)
	return model, err
}
