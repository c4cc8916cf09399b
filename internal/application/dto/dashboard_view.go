package dto

import (
	"time"

	"github.com/dreschagin/uptime-dashboard/internal/domain/entity"
	"github.com/dreschagin/uptime-dashboard/internal/domain/service"
	"github.com/dreschagin/uptime-dashboard/internal/domain/valueobject"
)

// ViewState is the state every dependent view is rendered in.
type ViewState string

const (
	ViewStateIdle           ViewState = "idle"
	ViewStateLoading        ViewState = "loading"
	ViewStateReady          ViewState = "ready"
	ViewStateError          ViewState = "error"
	ViewStateEmptySelection ViewState = "empty_selection"
)

// User facing messages for the non-ready states.
const (
	MessageFetchFailed          = "Data load failed, please retry later"
	MessageEmptySelection       = "Select at least one site to view history"
	MessageEmptySelectionAlerts = "Select sites to view alerts"
	MessageNoAlerts             = "No alerts in the selected range"
	MessageNoSLAData            = "No SLA comparison data"
)

// DashboardViewDTO is everything the dashboard page renders for one session.
type DashboardViewDTO struct {
	SessionID      string                       `json:"session_id"`
	State          ViewState                    `json:"state"`
	Message        string                       `json:"message,omitempty"`
	RequestSeq     uint64                       `json:"request_seq"`
	Sites          []string                     `json:"sites"`
	Range          *RangeDTO                    `json:"range,omitempty"`
	Filters        valueobject.AlertFilterState `json:"filters"`
	Summary        *SummaryDTO                  `json:"summary,omitempty"`
	Series         *SeriesDTO                   `json:"series,omitempty"`
	ReferenceLines []ReferenceLineDTO           `json:"reference_lines,omitempty"`
	SLA            *SLAComparisonDTO            `json:"sla,omitempty"`
	Timelines      []TimelineDTO                `json:"timelines,omitempty"`
	Alerts         *AlertTableDTO               `json:"alerts,omitempty"`
	Highlight      *HighlightDTO                `json:"highlight,omitempty"`
	UpdatedAt      time.Time                    `json:"updated_at"`
}

// RangeDTO echoes the request boundaries in the backend format.
type RangeDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func NewRangeDTO(rng valueobject.TimeRange) *RangeDTO {
	if rng.IsZero() {
		return nil
	}
	return &RangeDTO{
		Start: valueobject.FormatRequestTimestamp(rng.Start()),
		End:   valueobject.FormatRequestTimestamp(rng.End()),
	}
}

// SummaryDTO carries both raw values and the labels of the summary cards.
type SummaryDTO struct {
	SiteCount         int                           `json:"site_count"`
	AvgAvailability   *float64                      `json:"avg_availability"`
	AvgResponseTime   *float64                      `json:"avg_response_time"`
	DownSegments      int                           `json:"down_segments"`
	SlowSegments      int                           `json:"slow_segments"`
	TotalIncidents    int                           `json:"total_incidents"`
	SiteCountText     string                        `json:"site_count_text"`
	Availability      valueobject.AvailabilityLabel `json:"availability"`
	AvailabilityTitle string                        `json:"availability_title,omitempty"`
	AvgResponseText   string                        `json:"avg_response_text"`
	IncidentsText     string                        `json:"incidents_text"`
	IncidentHint      string                        `json:"incident_hint"`
}

func NewSummaryDTO(summary service.Summary) *SummaryDTO {
	labels := summary.Labels()
	return &SummaryDTO{
		SiteCount:         summary.SiteCount,
		AvgAvailability:   summary.AvgAvailability,
		AvgResponseTime:   summary.AvgResponse,
		DownSegments:      summary.DownSegments,
		SlowSegments:      summary.SlowSegments,
		TotalIncidents:    summary.TotalIncidents,
		SiteCountText:     labels.SiteCount,
		Availability:      labels.Availability,
		AvailabilityTitle: labels.AvailabilityTitle,
		AvgResponseText:   labels.AvgResponse,
		IncidentsText:     labels.Incidents,
		IncidentHint:      labels.IncidentHint,
	}
}

// SeriesDTO is the aligned response-time chart. Values[i] lines up with Timestamps[i].
type SeriesDTO struct {
	Granularity valueobject.AxisGranularity `json:"granularity"`
	Timestamps  []int64                     `json:"timestamps"`
	AxisLabels  []string                    `json:"axis_labels"`
	Sites       []SiteSeriesDTO             `json:"sites"`
}

type SiteSeriesDTO struct {
	Site   string     `json:"site"`
	Values []*float64 `json:"values"`
}

func NewSeriesDTO(aligned service.AlignedSeries, granularity valueobject.AxisGranularity) *SeriesDTO {
	series := &SeriesDTO{
		Granularity: granularity,
		Timestamps:  aligned.SortedTimestamps,
		AxisLabels:  make([]string, len(aligned.SortedTimestamps)),
		Sites:       make([]SiteSeriesDTO, 0, len(aligned.Sites)),
	}
	if series.Timestamps == nil {
		series.Timestamps = []int64{}
	}

	layout := granularity.Layout()
	for i, ts := range aligned.SortedTimestamps {
		series.AxisLabels[i] = valueobject.MillisToTime(ts).Format(layout)
	}
	for _, site := range aligned.Sites {
		series.Sites = append(series.Sites, SiteSeriesDTO{Site: site, Values: aligned.PerSite[site]})
	}
	return series
}

type ReferenceLineDTO struct {
	Site string   `json:"site"`
	P95  *float64 `json:"p95,omitempty"`
	P99  *float64 `json:"p99,omitempty"`
}

func NewReferenceLineDTOs(lines []service.ReferenceLine) []ReferenceLineDTO {
	out := make([]ReferenceLineDTO, 0, len(lines))
	for _, line := range lines {
		out = append(out, ReferenceLineDTO{Site: line.Site, P95: line.P95, P99: line.P99})
	}
	return out
}

// SLAComparisonDTO compares fixed-window availability across sites.
type SLAComparisonDTO struct {
	Sites   []SiteSLADTO `json:"sites"`
	Message string       `json:"message,omitempty"`
}

type SiteSLADTO struct {
	Site  string  `json:"site"`
	Today float64 `json:"today"`
	Week  float64 `json:"week"`
	Month float64 `json:"month"`
}

// NewSLAComparisonDTO falls back to the overall availability for missing or
// zero windows, and to 0 when that is missing too.
func NewSLAComparisonDTO(snapshot *entity.HistorySnapshot) *SLAComparisonDTO {
	if snapshot.IsEmpty() {
		return &SLAComparisonDTO{Sites: []SiteSLADTO{}, Message: MessageNoSLAData}
	}

	out := &SLAComparisonDTO{Sites: make([]SiteSLADTO, 0, len(snapshot.Sites))}
	for _, site := range snapshot.Sites {
		overall := entity.Value(site.OverallStats.Availability)
		if !valueobject.IsFinite(overall) {
			overall = 0
		}
		window := func(p *float64) float64 {
			v := entity.Value(p)
			if !valueobject.IsFinite(v) || v == 0 {
				return overall
			}
			return v
		}

		sla := entity.SLAStats{}
		if site.SLA != nil {
			sla = *site.SLA
		}
		out.Sites = append(out.Sites, SiteSLADTO{
			Site:  site.Name,
			Today: window(sla.Today),
			Week:  window(sla.Week),
			Month: window(sla.Month),
		})
	}
	return out
}

// TimelineDTO is one site's status bar.
type TimelineDTO struct {
	Site     string       `json:"site"`
	Segments []SegmentDTO `json:"segments"`
}

type SegmentDTO struct {
	StartTs    int64  `json:"start_ts"`
	EndTs      int64  `json:"end_ts"`
	Status     string `json:"status"`
	StatusCode int    `json:"status_code"`
	Detail     string `json:"detail,omitempty"`
}

func NewTimelineDTOs(snapshot *entity.HistorySnapshot) []TimelineDTO {
	if snapshot.IsEmpty() {
		return []TimelineDTO{}
	}
	out := make([]TimelineDTO, 0, len(snapshot.Sites))
	for _, site := range snapshot.Sites {
		segments := make([]SegmentDTO, 0, len(site.Timeline))
		for _, seg := range site.Timeline {
			segments = append(segments, SegmentDTO{
				StartTs:    seg.StartTs,
				EndTs:      seg.EndTs,
				Status:     seg.Status.String(),
				StatusCode: int(seg.Status),
				Detail:     seg.Detail,
			})
		}
		out = append(out, TimelineDTO{Site: site.Name, Segments: segments})
	}
	return out
}

// HighlightDTO lists the rows to emphasize until ExpiresAt.
type HighlightDTO struct {
	Keys      []entity.IncidentKey `json:"keys"`
	ExpiresAt time.Time            `json:"expires_at"`
}

func NewHighlightDTO(h *service.Highlight, now time.Time) *HighlightDTO {
	if !h.Active(now) {
		return nil
	}
	keys := make([]entity.IncidentKey, len(h.Keys))
	copy(keys, h.Keys)
	return &HighlightDTO{Keys: keys, ExpiresAt: h.ExpiresAt}
}
