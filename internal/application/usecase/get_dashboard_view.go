package usecase

import (
	"time"

	"github.com/dreschagin/uptime-dashboard/internal/application/dto"
	"github.com/dreschagin/uptime-dashboard/internal/application/session"
)

// GetDashboardViewUseCase renders the current view of a session
type GetDashboardViewUseCase struct {
	builder *DashboardViewBuilder
	now     func() time.Time
}

func NewGetDashboardViewUseCase(builder *DashboardViewBuilder) *GetDashboardViewUseCase {
	return &GetDashboardViewUseCase{builder: builder, now: time.Now}
}

func (uc *GetDashboardViewUseCase) Execute(sess *session.DashboardSession) *dto.DashboardViewDTO {
	now := uc.now()
	sess.Touch(now)
	return uc.builder.Build(sess.State(now), now)
}
