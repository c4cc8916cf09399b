package valueobject

import (
	"errors"
	"fmt"
)

// SegmentStatus classifies a timeline segment (Value Object)
type SegmentStatus int

const (
	StatusNoData SegmentStatus = 0
	StatusUp     SegmentStatus = 1
	StatusSlow   SegmentStatus = 2
	StatusDown   SegmentStatus = 3
)

var ErrInvalidSegmentStatus = errors.New("invalid segment status")

// Validate checks that the status is one of the known classifications
func (s SegmentStatus) Validate() error {
	switch s {
	case StatusNoData, StatusUp, StatusSlow, StatusDown:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrInvalidSegmentStatus, int(s))
	}
}

func (s SegmentStatus) String() string {
	switch s {
	case StatusNoData:
		return "no_data"
	case StatusUp:
		return "up"
	case StatusSlow:
		return "slow"
	case StatusDown:
		return "down"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// IsIncident reports whether a segment with this status corresponds to an alert.
func (s SegmentStatus) IsIncident() bool {
	return s == StatusSlow || s == StatusDown
}

// IncidentType maps Slow/Down to the alert type filter value.
func (s SegmentStatus) IncidentType() (TypeFilter, bool) {
	switch s {
	case StatusDown:
		return TypeDown, true
	case StatusSlow:
		return TypeSlow, true
	default:
		return "", false
	}
}
