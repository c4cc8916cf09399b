package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/dreschagin/uptime-dashboard/internal/domain/entity"
	"github.com/dreschagin/uptime-dashboard/internal/domain/valueobject"
)

// FormatDuration renders milliseconds as "1d 2h 3m 4s", dropping zero units.
func FormatDuration(ms int64) string {
	if ms <= 0 {
		return "0s"
	}

	seconds := int64(math.Round(float64(ms) / 1000))
	days := seconds / 86400
	seconds -= days * 86400
	hours := seconds / 3600
	seconds -= hours * 3600
	minutes := seconds / 60
	seconds -= minutes * 60

	parts := make([]string, 0, 4)
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}
	return strings.Join(parts, " ")
}

// IncidentDuration uses duration_ms when present, else end-start for resolved incidents.
func IncidentDuration(incident entity.Incident) int64 {
	if incident.DurationMs != nil {
		return *incident.DurationMs
	}
	if incident.EndTs != nil && incident.StartTs != nil {
		return *incident.EndTs - *incident.StartTs
	}
	return 0
}

// NoFilterMatchMessage describes an empty filtered list, naming the active filters.
func NoFilterMatchMessage(filters valueobject.AlertFilterState) string {
	parts := make([]string, 0, 2)
	switch filters.Status {
	case valueobject.StatusFilterUnresolved:
		parts = append(parts, "unresolved")
	case valueobject.StatusFilterResolved:
		parts = append(parts, "resolved")
	}
	switch filters.Type {
	case valueobject.TypeDown:
		parts = append(parts, "down")
	case valueobject.TypeSlow:
		parts = append(parts, "slow")
	}

	if len(parts) == 0 {
		return "No alerts for the current filter"
	}
	return fmt.Sprintf("No %s alerts for the current filter", strings.Join(parts, " · "))
}
