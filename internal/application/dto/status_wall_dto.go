package dto

import (
	"fmt"
	"time"

	"github.com/dreschagin/uptime-dashboard/internal/domain/service"
)

// StatusWallDTO is the grid of current site health cards.
type StatusWallDTO struct {
	Cards     []StatusCardDTO `json:"cards"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type StatusCardDTO struct {
	Name             string `json:"name"`
	StatusLabel      string `json:"status_label"`
	State            string `json:"state"`
	ResponseTimeText string `json:"response_time_text"`
	LastChecked      string `json:"last_checked,omitempty"`
	Since            string `json:"since,omitempty"`
	TotalChecks      *int   `json:"total_checks,omitempty"`
	Selected         bool   `json:"selected"`
}

func NewStatusWallDTO(cards []service.StatusCard, updatedAt time.Time) *StatusWallDTO {
	wall := &StatusWallDTO{Cards: make([]StatusCardDTO, 0, len(cards)), UpdatedAt: updatedAt}
	for _, card := range cards {
		responseText := "N/A"
		if rt := card.Health.ResponseTimeSeconds; rt != nil {
			responseText = fmt.Sprintf("%.2fs", *rt)
		}
		wall.Cards = append(wall.Cards, StatusCardDTO{
			Name:             card.Health.Name,
			StatusLabel:      card.Health.Status,
			State:            string(card.State),
			ResponseTimeText: responseText,
			LastChecked:      card.Health.LastChecked,
			Since:            card.Health.Since(),
			TotalChecks:      card.Health.TotalChecks,
			Selected:         card.Selected,
		})
	}
	return wall
}
