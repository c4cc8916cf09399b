package service

import (
	"testing"

	"github.com/dreschagin/uptime-dashboard/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

func TestBuildStatusWall(t *testing.T) {
	health := []entity.SiteHealth{
		{Name: "web", Status: "正常"},
		{Name: "api", Status: "无法访问", DownSince: "2024-01-01 10:00:00"},
		{Name: "cdn", Status: "访问过慢", SlowSince: "2024-01-01 11:00:00"},
	}

	first := BuildStatusWall(health, nil, true)
	assert.Equal(t, []string{"api", "cdn", "web"}, SelectedSites(first))
	assert.Equal(t, entity.HealthDown, first[0].State)
	assert.Equal(t, entity.HealthSlow, first[1].State)
	assert.Equal(t, entity.HealthOK, first[2].State)
	assert.Equal(t, "2024-01-01 10:00:00", first[0].Health.Since())
	assert.Equal(t, "", first[2].Health.Since())

	later := BuildStatusWall(health, []string{"web", "gone"}, false)
	assert.Equal(t, []string{"web"}, SelectedSites(later))
}

func TestDetectTransitions(t *testing.T) {
	previous := []entity.SiteHealth{
		{Name: "web", Status: "ok"},
		{Name: "api", Status: "ok"},
	}
	current := []entity.SiteHealth{
		{Name: "web", Status: "ok"},
		{Name: "api", Status: "down"},
		{Name: "new-ok", Status: "ok"},
		{Name: "new-slow", Status: "slow"},
	}

	transitions := DetectTransitions(previous, current)

	assert.Equal(t, []StatusTransition{
		{SiteName: "api", From: entity.HealthOK, To: entity.HealthDown},
		{SiteName: "new-slow", From: "", To: entity.HealthSlow},
	}, transitions)
}
