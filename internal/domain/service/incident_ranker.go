package service

import (
	"sort"

	"github.com/dreschagin/uptime-dashboard/internal/domain/entity"
	"github.com/dreschagin/uptime-dashboard/internal/domain/valueobject"
)

// DefaultAlertLimit is how many alert rows are rendered.
const DefaultAlertLimit = 30

// EmptyState tells the renderer which empty-list message applies.
type EmptyState string

const (
	EmptyStateNone          EmptyState = ""
	EmptyStateNoIncidents   EmptyState = "no_incidents"
	EmptyStateNoFilterMatch EmptyState = "no_filter_match"
)

// RankedIncidents is the alert table content for one snapshot and filter state.
type RankedIncidents struct {
	Rows            []entity.Incident
	TotalMatched    int
	Truncated       bool
	UnfilteredEmpty bool
	Filters         valueobject.AlertFilterState
}

// EmptyState picks the empty-list message: nothing at all in range, or
// nothing matching the active filters.
func (r RankedIncidents) EmptyState() EmptyState {
	switch {
	case len(r.Rows) > 0:
		return EmptyStateNone
	case r.UnfilteredEmpty:
		return EmptyStateNoIncidents
	default:
		return EmptyStateNoFilterMatch
	}
}

// IncidentRanker flattens, sorts, filters and truncates incidents.
type IncidentRanker struct {
	limit int
}

func NewIncidentRanker(limit int) *IncidentRanker {
	if limit <= 0 {
		limit = DefaultAlertLimit
	}
	return &IncidentRanker{limit: limit}
}

func (r *IncidentRanker) Limit() int {
	return r.limit
}

// Rank is deterministic for a given snapshot and filter state.
func (r *IncidentRanker) Rank(snapshot *entity.HistorySnapshot, filters valueobject.AlertFilterState) RankedIncidents {
	all := snapshot.Incidents()

	// stable keeps snapshot order between incidents with equal start_ts
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].StartMs() > all[j].StartMs()
	})

	matched := make([]entity.Incident, 0, len(all))
	for _, incident := range all {
		if !filters.MatchesResolution(incident.Resolved) {
			continue
		}
		if !filters.MatchesType(incident.StatusKey) {
			continue
		}
		matched = append(matched, incident)
	}

	rows := matched
	truncated := false
	if len(rows) > r.limit {
		rows = rows[:r.limit]
		truncated = true
	}

	return RankedIncidents{
		Rows:            rows,
		TotalMatched:    len(matched),
		Truncated:       truncated,
		UnfilteredEmpty: len(all) == 0,
		Filters:         filters,
	}
}
