package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// Incident is a contiguous Down or Slow period reported by the backend.
// Nullable fields mirror the wire format; EndTs and Resolved=true are set together.
type Incident struct {
	SiteName       string  `json:"site_name,omitempty"`
	StatusKey      string  `json:"status_key"`
	StatusLabel    string  `json:"status_label,omitempty"`
	StartTs        *int64  `json:"start_ts"`
	EndTs          *int64  `json:"end_ts"`
	Resolved       *bool   `json:"resolved"`
	DurationMs     *int64  `json:"duration_ms"`
	Reason         *string `json:"reason"`
	HTTPStatusCode *int    `json:"http_status_code"`
}

// IncidentKey is the only client-side identity an incident has.
type IncidentKey struct {
	SiteName string `json:"site_name"`
	StartTs  int64  `json:"start_ts"`
}

func (k IncidentKey) String() string {
	return k.SiteName + "@" + strconv.FormatInt(k.StartTs, 10)
}

func (i Incident) Key() IncidentKey {
	return IncidentKey{SiteName: i.SiteName, StartTs: i.StartMs()}
}

// StartMs returns start_ts, treating a missing value as 0 (oldest).
func (i Incident) StartMs() int64 {
	if i.StartTs == nil {
		return 0
	}
	return *i.StartTs
}

func (i Incident) IsResolved() bool {
	return i.Resolved != nil && *i.Resolved
}

// WithSite returns a copy annotated with the owning site.
func (i Incident) WithSite(siteName string) Incident {
	i.SiteName = siteName
	return i
}

// TypeLabel falls back from status_label to status_key to a generic label.
func (i Incident) TypeLabel() string {
	if label := strings.TrimSpace(i.StatusLabel); label != "" {
		return label
	}
	if key := strings.TrimSpace(i.StatusKey); key != "" {
		return key
	}
	return "Alert"
}

// DetailText joins the reason with the HTTP code when the code is an error
// not already mentioned in the reason.
func (i Incident) DetailText() string {
	parts := make([]string, 0, 2)
	reason := ""
	if i.Reason != nil {
		reason = strings.TrimSpace(*i.Reason)
	}
	if reason != "" {
		parts = append(parts, reason)
	}
	if i.HTTPStatusCode != nil && *i.HTTPStatusCode >= 400 {
		code := strconv.Itoa(*i.HTTPStatusCode)
		if !strings.Contains(reason, code) {
			parts = append(parts, fmt.Sprintf("HTTP %s", code))
		}
	}
	if len(parts) == 0 {
		return "—"
	}
	return strings.Join(parts, " / ")
}
