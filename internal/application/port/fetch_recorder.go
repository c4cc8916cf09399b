package port

import "time"

// Fetch outcomes reported to a FetchRecorder.
const (
	FetchOutcomeOK    = "ok"
	FetchOutcomeError = "error"
	FetchOutcomeStale = "stale"
	FetchOutcomeEmpty = "empty_selection"
)

// FetchRecorder counts history fetches by outcome.
type FetchRecorder interface {
	RecordFetch(outcome string, duration time.Duration)
}
