package valueobject

import (
	"errors"
	"strings"
	"time"
)

// RequestTimestampLayout is the local, zone-less format the backend expects
// for start_time/end_time.
const RequestTimestampLayout = "2006-01-02T15:04"

// ErrParse marks a timestamp or numeric field that could not be interpreted.
// Callers recover from it locally.
var ErrParse = errors.New("parse error")

var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	RequestTimestampLayout,
	"2006-01-02",
}

// ParseFlexibleTimestamp accepts ISO-like timestamps and the space-separated
// "2006-01-02 15:04:05" variant. Zone-less values are read in local time.
func ParseFlexibleTimestamp(value string) (time.Time, bool) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return time.Time{}, false
	}

	if t, err := parseDirect(raw); err == nil {
		return t, true
	}

	normalized := strings.Replace(raw, " ", "T", 1)
	if normalized == raw {
		return time.Time{}, false
	}
	if t, err := parseDirect(normalized); err == nil {
		return t, true
	}

	return time.Time{}, false
}

func parseDirect(raw string) (time.Time, error) {
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrParse
}

// SpanMs is the absolute distance between two raw boundaries in milliseconds.
// The result does not depend on argument order.
func SpanMs(startRaw, endRaw string) (int64, bool) {
	start, ok := ParseFlexibleTimestamp(startRaw)
	if !ok {
		return 0, false
	}
	end, ok := ParseFlexibleTimestamp(endRaw)
	if !ok {
		return 0, false
	}

	diff := end.Sub(start).Milliseconds()
	if diff < 0 {
		diff = -diff
	}
	return diff, true
}

// FormatRequestTimestamp renders t as YYYY-MM-DDTHH:MM in local time.
func FormatRequestTimestamp(t time.Time) string {
	return t.In(time.Local).Format(RequestTimestampLayout)
}

// AxisGranularity selects how chart axis labels are rendered for a range.
type AxisGranularity string

const (
	GranularityMinute AxisGranularity = "minute"
	GranularityHour   AxisGranularity = "hour"
	GranularityDay    AxisGranularity = "day"
)

const (
	dayMs  = int64(24 * time.Hour / time.Millisecond)
	weekMs = 7 * dayMs
)

// AxisGranularityFor picks label granularity from a range span.
func AxisGranularityFor(spanMs int64) AxisGranularity {
	switch {
	case spanMs <= dayMs:
		return GranularityMinute
	case spanMs <= weekMs:
		return GranularityHour
	default:
		return GranularityDay
	}
}

// Layout is the Go time layout for labels at this granularity.
func (g AxisGranularity) Layout() string {
	switch g {
	case GranularityMinute:
		return "15:04"
	case GranularityHour:
		return "01-02 15:04"
	default:
		return "2006-01-02"
	}
}

// MillisToTime converts epoch milliseconds to local time.
func MillisToTime(ms int64) time.Time {
	return time.UnixMilli(ms).In(time.Local)
}
