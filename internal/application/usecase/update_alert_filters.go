package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/dreschagin/uptime-dashboard/internal/application/dto"
	"github.com/dreschagin/uptime-dashboard/internal/application/port"
	"github.com/dreschagin/uptime-dashboard/internal/application/session"
	"github.com/dreschagin/uptime-dashboard/internal/domain/valueobject"
	"github.com/dreschagin/uptime-dashboard/pkg/logger"
)

type UpdateAlertFiltersCommand struct {
	Status string
	Type   string
}

// UpdateAlertFiltersUseCase changes a session's alert filters and re-ranks.
type UpdateAlertFiltersUseCase struct {
	builder  *DashboardViewBuilder
	notifier port.NotificationService
	logger   *logger.Logger
	now      func() time.Time
}

func NewUpdateAlertFiltersUseCase(builder *DashboardViewBuilder, notifier port.NotificationService, log *logger.Logger) *UpdateAlertFiltersUseCase {
	return &UpdateAlertFiltersUseCase{builder: builder, notifier: notifier, logger: log, now: time.Now}
}

func (uc *UpdateAlertFiltersUseCase) Execute(
	_ context.Context,
	sess *session.DashboardSession,
	cmd UpdateAlertFiltersCommand,
) (*dto.DashboardViewDTO, error) {
	filters, err := valueobject.NewAlertFilterState(cmd.Status, cmd.Type)
	if err != nil {
		return nil, fmt.Errorf("failed to update filters: %w", err)
	}

	now := uc.now()
	sess.SetFilters(filters, now)
	uc.logger.Debug("Alert filters changed", "session", sess.ID(), "status", filters.Status, "type", filters.Type)

	view := uc.builder.Build(sess.State(now), now)
	if uc.notifier != nil {
		uc.notifier.SendDashboard(sess.ID(), view)
	}
	return view, nil
}
