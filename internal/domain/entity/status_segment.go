package entity

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/dreschagin/uptime-dashboard/internal/domain/valueobject"
)

// StatusSegment is a contiguous interval of one site with a single status.
// On the wire it is the array [start_ts, end_ts, status, detail].
type StatusSegment struct {
	StartTs int64
	EndTs   int64
	Status  valueobject.SegmentStatus
	Detail  string
}

// NewStatusSegment enforces end >= start and a known status.
func NewStatusSegment(startTs, endTs int64, status valueobject.SegmentStatus, detail string) (StatusSegment, error) {
	if endTs < startTs {
		return StatusSegment{}, fmt.Errorf("%w: segment ends before it starts", valueobject.ErrParse)
	}
	if err := status.Validate(); err != nil {
		return StatusSegment{}, err
	}
	return StatusSegment{StartTs: startTs, EndTs: endTs, Status: status, Detail: detail}, nil
}

// Range returns the segment window.
func (s StatusSegment) Range() valueobject.TimeRange {
	return valueobject.NewTimeRangeFromMillis(s.StartTs, s.EndTs)
}

func (s StatusSegment) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{s.StartTs, s.EndTs, int(s.Status), s.Detail})
}

func (s *StatusSegment) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: segment is not an array: %v", valueobject.ErrParse, err)
	}
	if len(raw) < 3 {
		return fmt.Errorf("%w: segment has %d fields", valueobject.ErrParse, len(raw))
	}

	start, err := rawMillis(raw[0])
	if err != nil {
		return err
	}
	end, err := rawMillis(raw[1])
	if err != nil {
		return err
	}
	statusValue, err := rawMillis(raw[2])
	if err != nil {
		return err
	}

	detail := ""
	if len(raw) > 3 {
		// detail may be null or a non-string value
		if err := json.Unmarshal(raw[3], &detail); err != nil {
			detail = string(raw[3])
		}
	}

	segment, err := NewStatusSegment(start, end, valueobject.SegmentStatus(statusValue), detail)
	if err != nil {
		return err
	}
	*s = segment
	return nil
}

func rawMillis(raw json.RawMessage) (int64, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, fmt.Errorf("%w: %s is not a number", valueobject.ErrParse, string(raw))
	}
	if !valueobject.IsFinite(f) {
		return 0, fmt.Errorf("%w: %s is not finite", valueobject.ErrParse, string(raw))
	}
	return int64(math.Round(f)), nil
}

// Timeline is an ordered list of segments. Decoding skips malformed entries
// instead of failing the whole payload.
type Timeline []StatusSegment

func (t *Timeline) UnmarshalJSON(data []byte) error {
	segments, _, err := decodeTimeline(data)
	if err != nil {
		return err
	}
	*t = segments
	return nil
}

// decodeTimeline returns the readable segments and how many were dropped.
func decodeTimeline(data []byte) (Timeline, int, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Timeline{}, 0, fmt.Errorf("%w: timeline_data is not an array: %v", valueobject.ErrParse, err)
	}

	segments := make(Timeline, 0, len(raw))
	skipped := 0
	for _, item := range raw {
		var segment StatusSegment
		if err := segment.UnmarshalJSON(item); err != nil {
			skipped++
			continue
		}
		segments = append(segments, segment)
	}
	return segments, skipped, nil
}

// CountByStatus counts segments with the given status.
func (t Timeline) CountByStatus(status valueobject.SegmentStatus) int {
	count := 0
	for _, segment := range t {
		if segment.Status == status {
			count++
		}
	}
	return count
}
