package valueobject

import (
	"errors"
	"strings"
)

var ErrEmptySelection = errors.New("no sites selected")

// HistoryQuery identifies one /api/history request.
type HistoryQuery struct {
	sites []string
	rng   TimeRange
}

// NewHistoryQuery trims and de-duplicates site names, keeping first-seen order.
// An empty selection is reported with ErrEmptySelection.
func NewHistoryQuery(sites []string, rng TimeRange) (HistoryQuery, error) {
	seen := make(map[string]struct{}, len(sites))
	normalized := make([]string, 0, len(sites))
	for _, site := range sites {
		name := strings.TrimSpace(site)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		normalized = append(normalized, name)
	}

	if rng.IsZero() {
		return HistoryQuery{}, errors.New("time range is required")
	}
	q := HistoryQuery{sites: normalized, rng: rng}
	if len(normalized) == 0 {
		return q, ErrEmptySelection
	}
	return q, nil
}

func (q HistoryQuery) Sites() []string {
	out := make([]string, len(q.sites))
	copy(out, q.sites)
	return out
}

func (q HistoryQuery) Range() TimeRange {
	return q.rng
}

// StartParam and EndParam are the exact start_time/end_time request values.
func (q HistoryQuery) StartParam() string {
	return FormatRequestTimestamp(q.rng.Start())
}

func (q HistoryQuery) EndParam() string {
	return FormatRequestTimestamp(q.rng.End())
}
