package entity

import "strings"

// HealthState is the coarse classification of a /health status label.
type HealthState string

const (
	HealthOK   HealthState = "ok"
	HealthSlow HealthState = "slow"
	HealthDown HealthState = "down"
)

// Status labels emitted by the backend; English aliases are accepted too.
var (
	okLabels   = []string{"正常", "ok", "up", "normal"}
	slowLabels = []string{"访问过慢", "slow"}
)

// SiteHealth is the latest check result for one site.
type SiteHealth struct {
	Name                string   `json:"name"`
	Status              string   `json:"status"`
	ResponseTimeSeconds *float64 `json:"response_time_seconds"`
	LastChecked         string   `json:"last_checked"`
	DownSince           string   `json:"down_since,omitempty"`
	SlowSince           string   `json:"slow_since,omitempty"`
	TotalChecks         *int     `json:"total_checks,omitempty"`
}

// State classifies the status label. Anything unknown counts as down.
func (h SiteHealth) State() HealthState {
	label := strings.ToLower(strings.TrimSpace(h.Status))
	for _, l := range okLabels {
		if label == l {
			return HealthOK
		}
	}
	for _, l := range slowLabels {
		if label == l {
			return HealthSlow
		}
	}
	return HealthDown
}

// Since returns down_since for down sites and slow_since for slow ones.
func (h SiteHealth) Since() string {
	switch h.State() {
	case HealthDown:
		return h.DownSince
	case HealthSlow:
		return h.SlowSince
	default:
		return ""
	}
}
