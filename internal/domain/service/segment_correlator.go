package service

import (
	"time"

	"github.com/dreschagin/uptime-dashboard/internal/domain/entity"
	"github.com/dreschagin/uptime-dashboard/internal/domain/valueobject"
)

// DefaultHighlightTTL is how long correlated rows stay highlighted.
const DefaultHighlightTTL = 3 * time.Second

// SegmentClick is a click on a rendered timeline segment.
type SegmentClick struct {
	SiteName string
	StartTs  int64
	EndTs    int64
	Status   valueobject.SegmentStatus
}

// Highlight is the transient set of rows matching a click.
type Highlight struct {
	Keys      []entity.IncidentKey
	ExpiresAt time.Time
}

// Active reports whether the highlight is still visible at now.
func (h *Highlight) Active(now time.Time) bool {
	return h != nil && now.Before(h.ExpiresAt)
}

// Contains reports whether key is highlighted.
func (h *Highlight) Contains(key entity.IncidentKey) bool {
	if h == nil {
		return false
	}
	for _, k := range h.Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Correlation is the outcome of a segment click: new filters, re-ranked rows
// and the rows to highlight.
type Correlation struct {
	Filters   valueobject.AlertFilterState
	Ranked    RankedIncidents
	Highlight Highlight
}

// SegmentCorrelator maps a clicked segment to matching alert rows.
type SegmentCorrelator struct {
	ranker *IncidentRanker
	ttl    time.Duration
}

func NewSegmentCorrelator(ranker *IncidentRanker, ttl time.Duration) *SegmentCorrelator {
	if ttl <= 0 {
		ttl = DefaultHighlightTTL
	}
	return &SegmentCorrelator{ranker: ranker, ttl: ttl}
}

// Correlate returns false for Up and NoData clicks, which change nothing.
// Only rows whose start falls inside the clicked window are highlighted, so an
// incident that started before the window is not matched.
func (c *SegmentCorrelator) Correlate(snapshot *entity.HistorySnapshot, click SegmentClick, now time.Time) (Correlation, bool) {
	incidentType, ok := click.Status.IncidentType()
	if !ok {
		return Correlation{}, false
	}

	filters := valueobject.AlertFilterState{
		Status: valueobject.StatusFilterAll,
		Type:   incidentType,
	}
	ranked := c.ranker.Rank(snapshot, filters)

	window := valueobject.NewTimeRangeFromMillis(click.StartTs, click.EndTs)
	keys := make([]entity.IncidentKey, 0)
	for _, row := range ranked.Rows {
		if row.SiteName != click.SiteName || row.StartTs == nil {
			continue
		}
		if window.ContainsMillis(*row.StartTs) {
			keys = append(keys, row.Key())
		}
	}

	return Correlation{
		Filters: filters,
		Ranked:  ranked,
		Highlight: Highlight{
			Keys:      keys,
			ExpiresAt: now.Add(c.ttl),
		},
	}, true
}
