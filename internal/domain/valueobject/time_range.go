package valueobject

import (
	"errors"
	"time"
)

// TimeRange is an immutable closed interval [start, end] (Value Object)
type TimeRange struct {
	start time.Time
	end   time.Time
}

// NewTimeRange validates boundary order
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if start.IsZero() || end.IsZero() {
		return TimeRange{}, errors.New("start and end times cannot be zero")
	}
	if start.After(end) {
		return TimeRange{}, errors.New("start time must be before end time")
	}

	return TimeRange{
		start: start,
		end:   end,
	}, nil
}

// NewTimeRangeFromMillis builds a range from epoch-ms boundaries, swapping them if reversed.
func NewTimeRangeFromMillis(startMs, endMs int64) TimeRange {
	if endMs < startMs {
		startMs, endMs = endMs, startMs
	}
	return TimeRange{
		start: time.UnixMilli(startMs),
		end:   time.UnixMilli(endMs),
	}
}

// LastDuration returns [now-d, now]
func LastDuration(now time.Time, d time.Duration) (TimeRange, error) {
	if d <= 0 {
		return TimeRange{}, errors.New("duration must be positive")
	}
	return TimeRange{start: now.Add(-d), end: now}, nil
}

func (tr TimeRange) Start() time.Time {
	return tr.start
}

func (tr TimeRange) End() time.Time {
	return tr.end
}

func (tr TimeRange) Duration() time.Duration {
	return tr.end.Sub(tr.start)
}

// IsZero reports whether the range was never set.
func (tr TimeRange) IsZero() bool {
	return tr.start.IsZero() && tr.end.IsZero()
}

// Contains is inclusive on both ends
func (tr TimeRange) Contains(t time.Time) bool {
	return !t.Before(tr.start) && !t.After(tr.end)
}

// ContainsMillis is Contains for an epoch-ms instant.
func (tr TimeRange) ContainsMillis(ms int64) bool {
	return ms >= tr.start.UnixMilli() && ms <= tr.end.UnixMilli()
}

func (tr TimeRange) Overlaps(other TimeRange) bool {
	return tr.start.Before(other.end) && other.start.Before(tr.end)
}
