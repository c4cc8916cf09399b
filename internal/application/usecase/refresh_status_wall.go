package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dreschagin/uptime-dashboard/internal/application/dto"
	"github.com/dreschagin/uptime-dashboard/internal/application/port"
	"github.com/dreschagin/uptime-dashboard/internal/application/session"
	"github.com/dreschagin/uptime-dashboard/internal/domain/entity"
	"github.com/dreschagin/uptime-dashboard/internal/domain/repository"
	"github.com/dreschagin/uptime-dashboard/internal/domain/service"
	"github.com/dreschagin/uptime-dashboard/pkg/logger"
	"github.com/google/uuid"
)

// RefreshStatusWallUseCase polls /health, keeps the latest result and
// announces sites that became slow or down.
type RefreshStatusWallUseCase struct {
	history  repository.HistoryRepository
	events   port.EventPublisher
	notifier port.NotificationService
	logger   *logger.Logger
	now      func() time.Time

	mu        sync.RWMutex
	latest    []entity.SiteHealth
	updatedAt time.Time
	polled    bool
}

func NewRefreshStatusWallUseCase(
	history repository.HistoryRepository,
	events port.EventPublisher,
	notifier port.NotificationService,
	log *logger.Logger,
) *RefreshStatusWallUseCase {
	return &RefreshStatusWallUseCase{
		history:  history,
		events:   events,
		notifier: notifier,
		logger:   log,
		now:      time.Now,
	}
}

// Execute polls once. On failure the previous result is kept.
func (uc *RefreshStatusWallUseCase) Execute(ctx context.Context) (*dto.StatusWallDTO, error) {
	health, err := uc.history.FetchHealth(ctx)
	if err != nil {
		uc.logger.Error("Failed to fetch site health", err)
		return nil, fmt.Errorf("failed to refresh status wall: %w", err)
	}

	now := uc.now()

	uc.mu.Lock()
	previous := uc.latest
	firstPoll := !uc.polled
	uc.latest = health
	uc.updatedAt = now
	uc.polled = true
	uc.mu.Unlock()

	if !firstPoll {
		for _, transition := range service.DetectTransitions(previous, health) {
			uc.announce(ctx, transition, health, now)
		}
	}

	wall := dto.NewStatusWallDTO(service.BuildStatusWall(health, nil, false), now)
	if uc.notifier != nil {
		uc.notifier.BroadcastStatusWall(wall)
	}
	uc.logger.Debug("Status wall refreshed", "sites", len(health))

	return wall, nil
}

// ForSession renders the latest wall with the session's selection. The first
// wall a session sees selects every site; later walls keep the previous
// selection minus sites that disappeared.
func (uc *RefreshStatusWallUseCase) ForSession(sess *session.DashboardSession) *dto.StatusWallDTO {
	uc.mu.RLock()
	health := uc.latest
	updatedAt := uc.updatedAt
	uc.mu.RUnlock()

	selected, firstRun := sess.WallSelection()
	cards := service.BuildStatusWall(health, selected, firstRun)
	if len(health) > 0 {
		sess.SetWallSelection(service.SelectedSites(cards))
	}
	return dto.NewStatusWallDTO(cards, updatedAt)
}

// Run polls on every tick until ctx is done.
func (uc *RefreshStatusWallUseCase) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	if _, err := uc.Execute(ctx); err != nil {
		uc.logger.Warn("Initial status wall poll failed", "error", err.Error())
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			uc.logger.Info("Status wall poller stopped")
			return
		case <-ticker.C:
			_, _ = uc.Execute(ctx)
		}
	}
}

func (uc *RefreshStatusWallUseCase) announce(ctx context.Context, transition service.StatusTransition, health []entity.SiteHealth, now time.Time) {
	since := ""
	for _, h := range health {
		if h.Name == transition.SiteName {
			since = h.Since()
			break
		}
	}

	alert := &dto.AlertDTO{
		SiteName:   transition.SiteName,
		From:       string(transition.From),
		To:         string(transition.To),
		Since:      since,
		DetectedAt: now.UTC(),
	}

	uc.logger.Info("Site status changed", "site", alert.SiteName, "from", alert.From, "to", alert.To)

	if uc.notifier != nil {
		uc.notifier.BroadcastAlert(alert)
	}
	if uc.events != nil {
		event := port.Event{
			ID:         uuid.NewString(),
			Type:       port.SubjectSiteStatusChanged,
			OccurredAt: alert.DetectedAt,
			Payload:    alert,
		}
		if err := uc.events.PublishEvent(ctx, port.SubjectSiteStatusChanged, event); err != nil {
			uc.logger.Warn("Failed to publish status change", "site", alert.SiteName, "error", err.Error())
		}
	}
}
