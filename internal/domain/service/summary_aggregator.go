package service

import (
	"fmt"

	"github.com/dreschagin/uptime-dashboard/internal/domain/entity"
	"github.com/dreschagin/uptime-dashboard/internal/domain/valueobject"
)

const neutralIncidentHint = "Down + slow alerts"

// Summary is the dashboard-wide fold over one snapshot and selection.
type Summary struct {
	SiteCount       int
	HasData         bool
	AvgAvailability *float64
	AvgResponse     *float64
	DownSegments    int
	SlowSegments    int
	TotalIncidents  int
}

// SummaryLabels is Summary rendered for the summary cards.
type SummaryLabels struct {
	SiteCount         string
	Availability      valueobject.AvailabilityLabel
	AvailabilityTitle string
	AvgResponse       string
	Incidents         string
	IncidentHint      string
}

// SummaryAggregator folds per-site stats and timelines into dashboard counters.
type SummaryAggregator struct{}

func NewSummaryAggregator() *SummaryAggregator {
	return &SummaryAggregator{}
}

// Aggregate has no hidden state: the same snapshot and selection always give
// the same summary. Only selected sites contribute.
func (a *SummaryAggregator) Aggregate(snapshot *entity.HistorySnapshot, selected []string) Summary {
	summary := Summary{SiteCount: len(selected)}
	if len(selected) == 0 || snapshot.IsEmpty() {
		return summary
	}

	wanted := make(map[string]struct{}, len(selected))
	for _, name := range selected {
		wanted[name] = struct{}{}
	}

	var (
		availabilitySum   float64
		availabilityCount int
		responseSum       float64
		responseCount     int
	)

	for _, site := range snapshot.Sites {
		if _, ok := wanted[site.Name]; !ok {
			continue
		}
		summary.HasData = true

		if availability := entity.Value(site.OverallStats.Availability); valueobject.IsFinite(availability) {
			availabilitySum += availability
			availabilityCount++
		}
		if response := entity.Value(site.OverallStats.AvgResponseTime); valueobject.IsFinite(response) && response > 0 {
			responseSum += response
			responseCount++
		}

		summary.DownSegments += site.Timeline.CountByStatus(valueobject.StatusDown)
		summary.SlowSegments += site.Timeline.CountByStatus(valueobject.StatusSlow)
	}

	if availabilityCount > 0 {
		avg := availabilitySum / float64(availabilityCount)
		summary.AvgAvailability = &avg
	}
	if responseCount > 0 {
		avg := responseSum / float64(responseCount)
		summary.AvgResponse = &avg
	}
	summary.TotalIncidents = summary.DownSegments + summary.SlowSegments

	return summary
}

// Labels renders placeholders instead of failing on missing values.
func (s Summary) Labels() SummaryLabels {
	labels := SummaryLabels{
		SiteCount:    fmt.Sprintf("%d", s.SiteCount),
		Availability: valueobject.DescribeAvailability(entity.Value(s.AvgAvailability)),
		AvgResponse:  valueobject.Placeholder(),
		IncidentHint: neutralIncidentHint,
	}

	if !s.HasData {
		labels.Incidents = valueobject.Placeholder()
		if s.SiteCount > 0 {
			labels.Incidents = "0"
		}
		return labels
	}

	if labels.Availability.NinesLabel != "" {
		labels.AvailabilityTitle = fmt.Sprintf("%s (%s)", labels.Availability.ValueText, labels.Availability.NinesLabel)
	} else if s.AvgAvailability != nil {
		labels.AvailabilityTitle = labels.Availability.ValueText
	}
	if s.AvgResponse != nil {
		labels.AvgResponse = fmt.Sprintf("%.2f", *s.AvgResponse)
	}

	labels.Incidents = fmt.Sprintf("%d", s.TotalIncidents)
	if s.TotalIncidents > 0 {
		labels.IncidentHint = fmt.Sprintf("Down: %d · Slow: %d", s.DownSegments, s.SlowSegments)
	}

	return labels
}
