package session

import (
	"sync"
	"time"

	"github.com/dreschagin/uptime-dashboard/internal/domain/entity"
	"github.com/dreschagin/uptime-dashboard/internal/domain/service"
	"github.com/dreschagin/uptime-dashboard/internal/domain/valueobject"
)

// Phase is where a session is in its fetch cycle.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseLoading        Phase = "loading"
	PhaseReady          Phase = "ready"
	PhaseFailed         Phase = "failed"
	PhaseEmptySelection Phase = "empty_selection"
)

// DashboardSession is the mutable state behind one dashboard page: the
// selection, the last applied snapshot, alert filters and the highlight.
// All methods are safe for concurrent use.
type DashboardSession struct {
	mu sync.Mutex

	id         string
	issuedSeq  uint64
	appliedSeq uint64

	phase    Phase
	query    valueobject.HistoryQuery
	snapshot *entity.HistorySnapshot
	lastErr  error

	filters   valueobject.AlertFilterState
	highlight *service.Highlight

	wallSeen   bool
	wallSelect []string

	createdAt  time.Time
	lastActive time.Time
	updatedAt  time.Time
}

// State is a consistent copy of a session taken under its lock.
type State struct {
	ID         string
	Phase      Phase
	Seq        uint64
	Query      valueobject.HistoryQuery
	Snapshot   *entity.HistorySnapshot
	Err        error
	Filters    valueobject.AlertFilterState
	Highlight  *service.Highlight
	UpdatedAt  time.Time
	LastActive time.Time
}

func New(id string, now time.Time) *DashboardSession {
	return &DashboardSession{
		id:         id,
		phase:      PhaseIdle,
		filters:    valueobject.DefaultAlertFilter(),
		createdAt:  now,
		lastActive: now,
		updatedAt:  now,
	}
}

func (s *DashboardSession) ID() string {
	return s.id
}

// BeginFetch issues the next request sequence number. Any fetch issued
// earlier becomes stale and will be discarded when it completes.
func (s *DashboardSession) BeginFetch(now time.Time) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.issuedSeq++
	s.phase = PhaseLoading
	s.lastActive = now
	s.updatedAt = now
	return s.issuedSeq
}

// BeginEmptySelection supersedes in-flight fetches and clears the data views.
func (s *DashboardSession) BeginEmptySelection(query valueobject.HistoryQuery, now time.Time) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.issuedSeq++
	s.appliedSeq = s.issuedSeq
	s.phase = PhaseEmptySelection
	s.query = query
	s.snapshot = nil
	s.lastErr = nil
	s.highlight = nil
	s.lastActive = now
	s.updatedAt = now
	return s.issuedSeq
}

// CompleteFetch applies a fetched snapshot if seq is still the newest issued
// request. It reports whether the snapshot was applied.
func (s *DashboardSession) CompleteFetch(seq uint64, query valueobject.HistoryQuery, snapshot *entity.HistorySnapshot, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.issuedSeq {
		return false
	}
	s.appliedSeq = seq
	s.phase = PhaseReady
	s.query = query
	s.snapshot = snapshot
	s.lastErr = nil
	s.highlight = nil
	s.updatedAt = now
	return true
}

// FailFetch moves the session to the error state if seq is still the newest.
// The previous snapshot is dropped: no view renders stale data next to an error.
func (s *DashboardSession) FailFetch(seq uint64, query valueobject.HistoryQuery, err error, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.issuedSeq {
		return false
	}
	s.appliedSeq = seq
	s.phase = PhaseFailed
	s.query = query
	s.snapshot = nil
	s.lastErr = err
	s.highlight = nil
	s.updatedAt = now
	return true
}

// Snapshot returns the applied snapshot. It survives BeginFetch and is
// dropped by a failure or an empty selection.
func (s *DashboardSession) Snapshot() *entity.HistorySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// SetFilters replaces the alert filters and drops any highlight.
func (s *DashboardSession) SetFilters(filters valueobject.AlertFilterState, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filters = filters
	s.highlight = nil
	s.lastActive = now
	s.updatedAt = now
}

// ApplyCorrelation stores the filters and highlight of a segment click.
func (s *DashboardSession) ApplyCorrelation(correlation service.Correlation, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	highlight := correlation.Highlight
	s.filters = correlation.Filters
	s.highlight = &highlight
	s.lastActive = now
	s.updatedAt = now
}

// Touch records activity without changing state.
func (s *DashboardSession) Touch(now time.Time) {
	s.mu.Lock()
	s.lastActive = now
	s.mu.Unlock()
}

// WallSelection returns the status wall selection and whether the session
// has not seen a status wall yet.
func (s *DashboardSession) WallSelection() ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.wallSelect))
	copy(out, s.wallSelect)
	return out, !s.wallSeen
}

func (s *DashboardSession) SetWallSelection(sites []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.wallSeen = true
	s.wallSelect = make([]string, len(sites))
	copy(s.wallSelect, sites)
}

// State copies the session. An expired highlight is cleared on the way.
func (s *DashboardSession) State(now time.Time) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.highlight != nil && !s.highlight.Active(now) {
		s.highlight = nil
	}

	var highlight *service.Highlight
	if s.highlight != nil {
		h := *s.highlight
		highlight = &h
	}

	return State{
		ID:         s.id,
		Phase:      s.phase,
		Seq:        s.appliedSeq,
		Query:      s.query,
		Snapshot:   s.snapshot,
		Err:        s.lastErr,
		Filters:    s.filters,
		Highlight:  highlight,
		UpdatedAt:  s.updatedAt,
		LastActive: s.lastActive,
	}
}

func (s *DashboardSession) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastActive)
}
