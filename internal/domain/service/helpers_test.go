package service

import (
	"github.com/dreschagin/uptime-dashboard/internal/domain/entity"
)

func i64(v int64) *int64 { return &v }

func f64(v float64) *float64 { return &v }

func boolp(v bool) *bool { return &v }

func millis(values ...int64) []*int64 {
	out := make([]*int64, len(values))
	for i := range values {
		out[i] = i64(values[i])
	}
	return out
}

func samples(values ...float64) []*float64 {
	out := make([]*float64, len(values))
	for i := range values {
		out[i] = f64(values[i])
	}
	return out
}

func incident(key string, start int64, resolved *bool) entity.Incident {
	inc := entity.Incident{
		StatusKey: key,
		StartTs:   i64(start),
		Resolved:  resolved,
	}
	if resolved != nil && *resolved {
		inc.EndTs = i64(start + 60_000)
	}
	return inc
}

func snapshotOf(sites ...entity.SiteHistory) *entity.HistorySnapshot {
	byName := make(map[string]entity.SiteHistory, len(sites))
	order := make([]string, 0, len(sites))
	for _, site := range sites {
		byName[site.Name] = site
		order = append(order, site.Name)
	}
	return entity.NewHistorySnapshot(byName, order)
}
