package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dreschagin/uptime-dashboard/internal/domain/valueobject"
)

// DecodeReport counts the entries dropped while decoding one site.
type DecodeReport struct {
	SkippedSegments  int
	SkippedIncidents int
	// NullifiedFields counts scalar fields that were present but unreadable.
	NullifiedFields int
}

func (r DecodeReport) Clean() bool {
	return r.SkippedSegments == 0 && r.SkippedIncidents == 0 && r.NullifiedFields == 0
}

// DecodeSiteHistory reads one /api/history entry. Unreadable scalars become
// null and malformed segments or incidents are skipped; only a body that is
// not a JSON object fails.
func DecodeSiteHistory(data []byte) (SiteHistory, DecodeReport, error) {
	var report DecodeReport
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return SiteHistory{}, report, fmt.Errorf("%w: site history is not an object", valueobject.ErrParse)
	}

	site := SiteHistory{Name: lenientString(fields["name"], &report)}

	if raw, ok := fields["timeline_data"]; ok && !isNull(raw) {
		timeline, skipped, err := decodeTimeline(raw)
		if err != nil {
			report.NullifiedFields++
		}
		site.Timeline = timeline
		report.SkippedSegments += skipped
	}

	site.OverallStats = decodeOverallStats(fields["overall_stats"], &report)
	site.ResponseTimes = decodeResponseTimes(fields["response_times"], &report)
	site.Incidents = decodeIncidents(fields["incidents"], &report)

	if raw, ok := fields["sla_stats"]; ok && !isNull(raw) {
		if obj, ok := object(raw, &report); ok {
			site.SLA = &SLAStats{
				Today: lenientFloat(obj["today"], &report),
				Week:  lenientFloat(obj["week"], &report),
				Month: lenientFloat(obj["month"], &report),
			}
		}
	}

	return site, report, nil
}

func (s *SiteHistory) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	site, _, err := DecodeSiteHistory(data)
	if err != nil {
		return err
	}
	*s = site
	return nil
}

func (i *Incident) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var report DecodeReport
	incident, ok := decodeIncident(data, &report)
	if !ok {
		return fmt.Errorf("%w: incident is not an object", valueobject.ErrParse)
	}
	*i = incident
	return nil
}

func decodeIncident(data []byte, report *DecodeReport) (Incident, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return Incident{}, false
	}
	return Incident{
		SiteName:       lenientString(fields["site_name"], report),
		StatusKey:      lenientString(fields["status_key"], report),
		StatusLabel:    lenientString(fields["status_label"], report),
		StartTs:        lenientMillis(fields["start_ts"], report),
		EndTs:          lenientMillis(fields["end_ts"], report),
		Resolved:       lenientBool(fields["resolved"], report),
		DurationMs:     lenientMillis(fields["duration_ms"], report),
		Reason:         lenientStringPtr(fields["reason"], report),
		HTTPStatusCode: lenientInt(fields["http_status_code"], report),
	}, true
}

func decodeIncidents(raw json.RawMessage, report *DecodeReport) []Incident {
	if len(raw) == 0 || isNull(raw) {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		report.NullifiedFields++
		return nil
	}

	incidents := make([]Incident, 0, len(items))
	for _, item := range items {
		incident, ok := decodeIncident(item, report)
		if !ok {
			report.SkippedIncidents++
			continue
		}
		incidents = append(incidents, incident)
	}
	return incidents
}

func decodeOverallStats(raw json.RawMessage, report *DecodeReport) OverallStats {
	fields, ok := object(raw, report)
	if !ok {
		return OverallStats{}
	}
	return OverallStats{
		Availability:    lenientFloat(fields["availability"], report),
		AvgResponseTime: lenientFloat(fields["avg_response_time"], report),
		P95ResponseTime: lenientFloat(fields["p95_response_time"], report),
		P99ResponseTime: lenientFloat(fields["p99_response_time"], report),
	}
}

func decodeResponseTimes(raw json.RawMessage, report *DecodeReport) ResponseTimes {
	fields, ok := object(raw, report)
	if !ok {
		return ResponseTimes{}
	}

	var rt ResponseTimes
	if items := array(fields["timestamps_ms"], report); items != nil {
		rt.TimestampsMs = make([]*int64, 0, len(items))
		for _, item := range items {
			rt.TimestampsMs = append(rt.TimestampsMs, lenientMillis(item, report))
		}
	}
	if items := array(fields["timestamps"], report); items != nil {
		rt.Labels = make([]string, 0, len(items))
		for _, item := range items {
			rt.Labels = append(rt.Labels, lenientString(item, report))
		}
	}
	if items := array(fields["times"], report); items != nil {
		rt.Times = make([]*float64, 0, len(items))
		for _, item := range items {
			rt.Times = append(rt.Times, lenientFloat(item, report))
		}
	}
	return rt
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// object returns nil, false for a missing or null value without counting it.
func object(raw json.RawMessage, report *DecodeReport) (map[string]json.RawMessage, bool) {
	if len(raw) == 0 || isNull(raw) {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		report.NullifiedFields++
		return nil, false
	}
	return fields, true
}

func array(raw json.RawMessage, report *DecodeReport) []json.RawMessage {
	if len(raw) == 0 || isNull(raw) {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		report.NullifiedFields++
		return nil
	}
	return items
}

// lenientFloat accepts JSON numbers and numeric strings.
func lenientFloat(raw json.RawMessage, report *DecodeReport) *float64 {
	if len(raw) == 0 || isNull(raw) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if json.Unmarshal(raw, &s) != nil {
			report.NullifiedFields++
			return nil
		}
		parsed, perr := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if perr != nil {
			report.NullifiedFields++
			return nil
		}
		f = parsed
	}
	if !valueobject.IsFinite(f) {
		report.NullifiedFields++
		return nil
	}
	return &f
}

// lenientMillis rounds fractional and exponent forms to whole milliseconds.
func lenientMillis(raw json.RawMessage, report *DecodeReport) *int64 {
	f := lenientFloat(raw, report)
	if f == nil {
		return nil
	}
	if math.Abs(*f) >= math.MaxInt64 {
		report.NullifiedFields++
		return nil
	}
	v := int64(math.Round(*f))
	return &v
}

func lenientInt(raw json.RawMessage, report *DecodeReport) *int {
	ms := lenientMillis(raw, report)
	if ms == nil {
		return nil
	}
	if *ms > math.MaxInt32 || *ms < math.MinInt32 {
		report.NullifiedFields++
		return nil
	}
	v := int(*ms)
	return &v
}

func lenientBool(raw json.RawMessage, report *DecodeReport) *bool {
	if len(raw) == 0 || isNull(raw) {
		return nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		report.NullifiedFields++
		return nil
	}
	return &b
}

func lenientStringPtr(raw json.RawMessage, report *DecodeReport) *string {
	if len(raw) == 0 || isNull(raw) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		// numbers and other scalars keep their literal text
		var f float64
		if json.Unmarshal(raw, &f) != nil {
			report.NullifiedFields++
			return nil
		}
		s = string(bytes.TrimSpace(raw))
	}
	return &s
}

func lenientString(raw json.RawMessage, report *DecodeReport) string {
	if s := lenientStringPtr(raw, report); s != nil {
		return *s
	}
	return ""
}
