package dto

import (
	"fmt"
	"time"

	"github.com/dreschagin/uptime-dashboard/internal/domain/entity"
	"github.com/dreschagin/uptime-dashboard/internal/domain/service"
	"github.com/dreschagin/uptime-dashboard/internal/domain/valueobject"
)

const (
	unresolvedText = "Unresolved"
	rowTimeLayout  = "2006-01-02 15:04:05"
)

// AlertRowDTO is one rendered row of the alert history table.
type AlertRowDTO struct {
	Key          string `json:"key"`
	SiteName     string `json:"site_name"`
	StatusKey    string `json:"status_key"`
	TypeLabel    string `json:"type_label"`
	StartTs      *int64 `json:"start_ts"`
	EndTs        *int64 `json:"end_ts"`
	StartText    string `json:"start_text"`
	EndText      string `json:"end_text"`
	Resolved     bool   `json:"resolved"`
	DurationMs   int64  `json:"duration_ms"`
	DurationText string `json:"duration_text"`
	Detail       string `json:"detail"`
	Highlighted  bool   `json:"highlighted"`
}

func NewAlertRowDTO(incident entity.Incident, highlighted bool) AlertRowDTO {
	row := AlertRowDTO{
		Key:         incident.Key().String(),
		SiteName:    incident.SiteName,
		StatusKey:   incident.StatusKey,
		TypeLabel:   incident.TypeLabel(),
		StartTs:     incident.StartTs,
		EndTs:       incident.EndTs,
		StartText:   valueobject.Placeholder(),
		EndText:     unresolvedText,
		Resolved:    incident.IsResolved(),
		Detail:      incident.DetailText(),
		Highlighted: highlighted,
	}
	if incident.StartTs != nil {
		row.StartText = valueobject.MillisToTime(*incident.StartTs).Format(rowTimeLayout)
	}
	if row.Resolved && incident.EndTs != nil {
		row.EndText = valueobject.MillisToTime(*incident.EndTs).Format(rowTimeLayout)
	}
	row.DurationMs = service.IncidentDuration(incident)
	row.DurationText = service.FormatDuration(row.DurationMs)
	return row
}

// AlertTableDTO is the ranked alert list with its footnote or empty message.
type AlertTableDTO struct {
	Rows         []AlertRowDTO `json:"rows"`
	TotalMatched int           `json:"total_matched"`
	Truncated    bool          `json:"truncated"`
	Footnote     string        `json:"footnote,omitempty"`
	EmptyState   string        `json:"empty_state,omitempty"`
	EmptyMessage string        `json:"empty_message,omitempty"`
}

func NewAlertTableDTO(ranked service.RankedIncidents, highlight *service.Highlight, limit int, now time.Time) *AlertTableDTO {
	active := highlight.Active(now)

	table := &AlertTableDTO{
		Rows:         make([]AlertRowDTO, 0, len(ranked.Rows)),
		TotalMatched: ranked.TotalMatched,
		Truncated:    ranked.Truncated,
	}
	for _, incident := range ranked.Rows {
		table.Rows = append(table.Rows, NewAlertRowDTO(incident, active && highlight.Contains(incident.Key())))
	}
	if ranked.Truncated {
		table.Footnote = fmt.Sprintf("Showing the latest %d of %d alerts", limit, ranked.TotalMatched)
	}

	switch state := ranked.EmptyState(); state {
	case service.EmptyStateNoIncidents:
		table.EmptyState = string(state)
		table.EmptyMessage = MessageNoAlerts
	case service.EmptyStateNoFilterMatch:
		table.EmptyState = string(state)
		table.EmptyMessage = service.NoFilterMatchMessage(ranked.Filters)
	}
	return table
}

// AlertDTO announces a site status change.
type AlertDTO struct {
	SiteName   string    `json:"site_name"`
	From       string    `json:"from,omitempty"`
	To         string    `json:"to"`
	Since      string    `json:"since,omitempty"`
	DetectedAt time.Time `json:"detected_at"`
}
