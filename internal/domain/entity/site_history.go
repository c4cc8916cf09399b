package entity

import (
	"math"
	"sort"
)

// OverallStats summarizes one site over the requested range. All fields are nullable.
type OverallStats struct {
	Availability    *float64 `json:"availability"`
	AvgResponseTime *float64 `json:"avg_response_time"`
	P95ResponseTime *float64 `json:"p95_response_time"`
	P99ResponseTime *float64 `json:"p99_response_time"`
}

// ResponseTimes holds parallel sample arrays. Times[i] is nil when there was no sample.
type ResponseTimes struct {
	TimestampsMs []*int64   `json:"timestamps_ms,omitempty"`
	Labels       []string   `json:"timestamps,omitempty"`
	Times        []*float64 `json:"times"`
}

// SLAStats carries availability for fixed windows.
type SLAStats struct {
	Today *float64 `json:"today"`
	Week  *float64 `json:"week"`
	Month *float64 `json:"month"`
}

// SiteHistory is everything /api/history returns for one site.
type SiteHistory struct {
	Name          string        `json:"name"`
	Timeline      Timeline      `json:"timeline_data"`
	OverallStats  OverallStats  `json:"overall_stats"`
	ResponseTimes ResponseTimes `json:"response_times"`
	Incidents     []Incident    `json:"incidents"`
	SLA           *SLAStats     `json:"sla_stats,omitempty"`
}

// Value dereferences a nullable number, returning NaN when absent.
func Value(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

// HistorySnapshot is one complete history response. It is replaced wholesale
// on every poll and never mutated.
type HistorySnapshot struct {
	Sites []SiteHistory `json:"sites"`
}

// NewHistorySnapshot orders sites by the preferred order first, then by name.
func NewHistorySnapshot(byName map[string]SiteHistory, preferred []string) *HistorySnapshot {
	sites := make([]SiteHistory, 0, len(byName))
	used := make(map[string]struct{}, len(byName))

	for _, name := range preferred {
		site, ok := byName[name]
		if !ok {
			continue
		}
		if _, dup := used[name]; dup {
			continue
		}
		site.Name = name
		sites = append(sites, site)
		used[name] = struct{}{}
	}

	rest := make([]string, 0, len(byName)-len(used))
	for name := range byName {
		if _, ok := used[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		site := byName[name]
		site.Name = name
		sites = append(sites, site)
	}

	return &HistorySnapshot{Sites: sites}
}

// IsEmpty reports whether the snapshot carries no site at all.
func (s *HistorySnapshot) IsEmpty() bool {
	return s == nil || len(s.Sites) == 0
}

// Site looks a site up by name.
func (s *HistorySnapshot) Site(name string) (SiteHistory, bool) {
	if s == nil {
		return SiteHistory{}, false
	}
	for _, site := range s.Sites {
		if site.Name == name {
			return site, true
		}
	}
	return SiteHistory{}, false
}

// SiteNames returns site names in snapshot order.
func (s *HistorySnapshot) SiteNames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Sites))
	for _, site := range s.Sites {
		names = append(names, site.Name)
	}
	return names
}

// Incidents flattens every site's incidents, annotated with site_name.
func (s *HistorySnapshot) Incidents() []Incident {
	if s == nil {
		return nil
	}
	total := 0
	for _, site := range s.Sites {
		total += len(site.Incidents)
	}
	out := make([]Incident, 0, total)
	for _, site := range s.Sites {
		for _, incident := range site.Incidents {
			out = append(out, incident.WithSite(site.Name))
		}
	}
	return out
}
