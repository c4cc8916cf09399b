package service

import (
	"sort"

	"github.com/dreschagin/uptime-dashboard/internal/domain/entity"
	"github.com/dreschagin/uptime-dashboard/internal/domain/valueobject"
)

// AlignedSeries is every site's response-time samples expressed against one
// shared, sorted, de-duplicated timestamp axis. A nil value means
// "no sample at this instant".
type AlignedSeries struct {
	SortedTimestamps []int64
	Sites            []string
	PerSite          map[string][]*float64
}

// ReferenceLine is a flat percentile line for one site.
type ReferenceLine struct {
	Site string
	P95  *float64
	P99  *float64
}

// SeriesAligner merges per-site response-time samples onto a shared axis.
type SeriesAligner struct{}

func NewSeriesAligner() *SeriesAligner {
	return &SeriesAligner{}
}

// Align never interpolates: gaps stay nil and sites without any usable
// timestamp are left out.
func (a *SeriesAligner) Align(snapshot *entity.HistorySnapshot) AlignedSeries {
	result := AlignedSeries{
		SortedTimestamps: []int64{},
		Sites:            []string{},
		PerSite:          map[string][]*float64{},
	}
	if snapshot.IsEmpty() {
		return result
	}

	type siteSamples struct {
		name   string
		values map[int64]*float64
	}

	perSite := make([]siteSamples, 0, len(snapshot.Sites))
	axis := make(map[int64]struct{})

	for _, site := range snapshot.Sites {
		values := samplesFromMillis(site.ResponseTimes)
		if len(values) == 0 {
			values = samplesFromLabels(site.ResponseTimes)
		}
		if len(values) == 0 {
			continue
		}
		for ts := range values {
			axis[ts] = struct{}{}
		}
		perSite = append(perSite, siteSamples{name: site.Name, values: values})
	}

	sorted := make([]int64, 0, len(axis))
	for ts := range axis {
		sorted = append(sorted, ts)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	result.SortedTimestamps = sorted

	for _, site := range perSite {
		series := make([]*float64, len(sorted))
		for i, ts := range sorted {
			if v, ok := site.values[ts]; ok && v != nil {
				value := *v
				series[i] = &value
			}
		}
		result.Sites = append(result.Sites, site.name)
		result.PerSite[site.name] = series
	}

	return result
}

func samplesFromMillis(rt entity.ResponseTimes) map[int64]*float64 {
	values := make(map[int64]*float64)
	for i, ts := range rt.TimestampsMs {
		if ts == nil {
			continue
		}
		if _, seen := values[*ts]; seen {
			continue
		}
		values[*ts] = sampleAt(rt.Times, i)
	}
	return values
}

// samplesFromLabels parses labels in their original order; the first label
// that maps to a timestamp wins.
func samplesFromLabels(rt entity.ResponseTimes) map[int64]*float64 {
	values := make(map[int64]*float64)
	for i, label := range rt.Labels {
		if label == "" {
			continue
		}
		t, ok := valueobject.ParseFlexibleTimestamp(label)
		if !ok {
			continue
		}
		ts := t.UnixMilli()
		if _, seen := values[ts]; seen {
			continue
		}
		values[ts] = sampleAt(rt.Times, i)
	}
	return values
}

func sampleAt(times []*float64, i int) *float64 {
	if i >= len(times) || times[i] == nil || !valueobject.IsFinite(*times[i]) {
		return nil
	}
	return times[i]
}

// ReferenceLines returns P95/P99 lines for sites where those values are finite and positive.
func (a *SeriesAligner) ReferenceLines(snapshot *entity.HistorySnapshot) []ReferenceLine {
	lines := make([]ReferenceLine, 0)
	if snapshot.IsEmpty() {
		return lines
	}
	for _, site := range snapshot.Sites {
		line := ReferenceLine{
			Site: site.Name,
			P95:  positive(site.OverallStats.P95ResponseTime),
			P99:  positive(site.OverallStats.P99ResponseTime),
		}
		if line.P95 == nil && line.P99 == nil {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func positive(p *float64) *float64 {
	if p == nil || !valueobject.IsFinite(*p) || *p <= 0 {
		return nil
	}
	v := *p
	return &v
}
