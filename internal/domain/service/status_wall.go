package service

import (
	"sort"

	"github.com/dreschagin/uptime-dashboard/internal/domain/entity"
)

// StatusCard is one site on the status wall.
type StatusCard struct {
	Health   entity.SiteHealth
	State    entity.HealthState
	Selected bool
}

// StatusTransition is a site whose health state changed between two polls.
type StatusTransition struct {
	SiteName string
	From     entity.HealthState
	To       entity.HealthState
}

// BuildStatusWall orders cards by name. On the first run every site is
// selected; later runs keep only previously selected sites that still exist.
func BuildStatusWall(health []entity.SiteHealth, previouslySelected []string, firstRun bool) []StatusCard {
	selected := make(map[string]struct{}, len(previouslySelected))
	for _, name := range previouslySelected {
		selected[name] = struct{}{}
	}

	sorted := make([]entity.SiteHealth, len(health))
	copy(sorted, health)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	cards := make([]StatusCard, 0, len(sorted))
	for _, h := range sorted {
		_, wasSelected := selected[h.Name]
		cards = append(cards, StatusCard{
			Health:   h,
			State:    h.State(),
			Selected: firstRun || wasSelected,
		})
	}
	return cards
}

// SelectedSites returns the names of selected cards in wall order.
func SelectedSites(cards []StatusCard) []string {
	names := make([]string, 0, len(cards))
	for _, card := range cards {
		if card.Selected {
			names = append(names, card.Health.Name)
		}
	}
	return names
}

// DetectTransitions compares two polls. Sites that appear for the first time
// are reported only when they are not healthy.
func DetectTransitions(previous, current []entity.SiteHealth) []StatusTransition {
	before := make(map[string]entity.HealthState, len(previous))
	for _, h := range previous {
		before[h.Name] = h.State()
	}

	transitions := make([]StatusTransition, 0)
	for _, h := range current {
		state := h.State()
		prev, known := before[h.Name]
		if known && prev == state {
			continue
		}
		if !known && state == entity.HealthOK {
			continue
		}
		transitions = append(transitions, StatusTransition{SiteName: h.Name, From: prev, To: state})
	}
	sort.Slice(transitions, func(i, j int) bool { return transitions[i].SiteName < transitions[j].SiteName })
	return transitions
}
