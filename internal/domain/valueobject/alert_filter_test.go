package valueobject

import (
	"errors"
	"testing"
	"time"
)

func TestNewAlertFilterState(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		typ     string
		want    AlertFilterState
		wantErr bool
	}{
		{name: "defaults", want: DefaultAlertFilter()},
		{name: "mixed case", status: "Unresolved", typ: "DOWN", want: AlertFilterState{Status: StatusFilterUnresolved, Type: TypeDown}},
		{name: "bad status", status: "open", typ: "down", wantErr: true},
		{name: "bad type", status: "all", typ: "timeout", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewAlertFilterState(tt.status, tt.typ)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFilter) {
					t.Fatalf("expected ErrInvalidFilter, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMatchesResolution(t *testing.T) {
	yes, no := true, false

	unresolved := AlertFilterState{Status: StatusFilterUnresolved, Type: TypeAll}
	if !unresolved.MatchesResolution(nil) || !unresolved.MatchesResolution(&no) || unresolved.MatchesResolution(&yes) {
		t.Fatal("unresolved filter must keep nil and false, drop true")
	}

	resolved := AlertFilterState{Status: StatusFilterResolved, Type: TypeAll}
	if resolved.MatchesResolution(nil) || resolved.MatchesResolution(&no) || !resolved.MatchesResolution(&yes) {
		t.Fatal("resolved filter must keep only true")
	}
}

func TestHistoryQuery(t *testing.T) {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.Local)
	rng, err := NewTimeRange(start, start.Add(6*time.Hour))
	if err != nil {
		t.Fatalf("NewTimeRange() error = %v", err)
	}

	q, err := NewHistoryQuery([]string{" api ", "web", "api", ""}, rng)
	if err != nil {
		t.Fatalf("NewHistoryQuery() error = %v", err)
	}
	if got := q.Sites(); len(got) != 2 || got[0] != "api" || got[1] != "web" {
		t.Fatalf("unexpected sites: %v", got)
	}
	if q.StartParam() != "2024-05-01T09:00" || q.EndParam() != "2024-05-01T15:00" {
		t.Fatalf("unexpected params: %s %s", q.StartParam(), q.EndParam())
	}

	if _, err := NewHistoryQuery(nil, rng); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("expected ErrEmptySelection, got %v", err)
	}
}
