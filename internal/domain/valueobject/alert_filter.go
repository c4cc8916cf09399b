package valueobject

import (
	"errors"
	"strings"
)

// StatusFilter selects incidents by resolution state
type StatusFilter string

const (
	StatusFilterAll        StatusFilter = "all"
	StatusFilterResolved   StatusFilter = "resolved"
	StatusFilterUnresolved StatusFilter = "unresolved"
)

// TypeFilter selects incidents by status_key
type TypeFilter string

const (
	TypeAll  TypeFilter = "all"
	TypeDown TypeFilter = "down"
	TypeSlow TypeFilter = "slow"
)

var ErrInvalidFilter = errors.New("invalid alert filter")

func (f StatusFilter) Validate() error {
	switch f {
	case StatusFilterAll, StatusFilterResolved, StatusFilterUnresolved:
		return nil
	default:
		return ErrInvalidFilter
	}
}

func (f TypeFilter) Validate() error {
	switch f {
	case TypeAll, TypeDown, TypeSlow:
		return nil
	default:
		return ErrInvalidFilter
	}
}

// AlertFilterState is the pair of filters applied to the alert history.
type AlertFilterState struct {
	Status StatusFilter `json:"status"`
	Type   TypeFilter   `json:"type"`
}

// DefaultAlertFilter shows every incident.
func DefaultAlertFilter() AlertFilterState {
	return AlertFilterState{Status: StatusFilterAll, Type: TypeAll}
}

// NewAlertFilterState parses raw control values. Empty values mean "all".
func NewAlertFilterState(status, typ string) (AlertFilterState, error) {
	state := AlertFilterState{
		Status: StatusFilter(strings.ToLower(strings.TrimSpace(status))),
		Type:   TypeFilter(strings.ToLower(strings.TrimSpace(typ))),
	}
	if state.Status == "" {
		state.Status = StatusFilterAll
	}
	if state.Type == "" {
		state.Type = TypeAll
	}
	if err := state.Validate(); err != nil {
		return AlertFilterState{}, err
	}
	return state, nil
}

func (s AlertFilterState) Validate() error {
	if err := s.Status.Validate(); err != nil {
		return err
	}
	return s.Type.Validate()
}

// MatchesResolution applies the status filter. A nil resolved flag counts as unresolved.
func (s AlertFilterState) MatchesResolution(resolved *bool) bool {
	switch s.Status {
	case StatusFilterResolved:
		return resolved != nil && *resolved
	case StatusFilterUnresolved:
		return resolved == nil || !*resolved
	default:
		return true
	}
}

// MatchesType applies the type filter to an incident status_key.
func (s AlertFilterState) MatchesType(statusKey string) bool {
	if s.Type == TypeAll || s.Type == "" {
		return true
	}
	return statusKey == string(s.Type)
}

// IsDefault reports whether no narrowing filter is active.
func (s AlertFilterState) IsDefault() bool {
	return s.Status == StatusFilterAll && s.Type == TypeAll
}
