package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/dreschagin/uptime-dashboard/internal/application/dto"
	"github.com/dreschagin/uptime-dashboard/internal/application/port"
	"github.com/dreschagin/uptime-dashboard/internal/application/session"
	"github.com/dreschagin/uptime-dashboard/internal/domain/service"
	"github.com/dreschagin/uptime-dashboard/internal/domain/valueobject"
	"github.com/dreschagin/uptime-dashboard/pkg/logger"
	"github.com/google/uuid"
)

type CorrelateSegmentCommand struct {
	SiteName string
	StartTs  int64
	EndTs    int64
	Status   int
}

type CorrelateSegmentResult struct {
	View *dto.DashboardViewDTO
	// Applied is false when the click changed nothing: Up and NoData
	// segments, or a session without data.
	Applied bool
}

// CorrelateSegmentUseCase handles a click on a timeline segment.
type CorrelateSegmentUseCase struct {
	builder    *DashboardViewBuilder
	correlator *service.SegmentCorrelator
	events     port.EventPublisher
	notifier   port.NotificationService
	logger     *logger.Logger
	now        func() time.Time
}

func NewCorrelateSegmentUseCase(
	builder *DashboardViewBuilder,
	highlightTTL time.Duration,
	events port.EventPublisher,
	notifier port.NotificationService,
	log *logger.Logger,
) *CorrelateSegmentUseCase {
	return &CorrelateSegmentUseCase{
		builder:    builder,
		correlator: service.NewSegmentCorrelator(builder.Ranker(), highlightTTL),
		events:     events,
		notifier:   notifier,
		logger:     log,
		now:        time.Now,
	}
}

func (uc *CorrelateSegmentUseCase) Execute(
	ctx context.Context,
	sess *session.DashboardSession,
	cmd CorrelateSegmentCommand,
) (*CorrelateSegmentResult, error) {
	status := valueobject.SegmentStatus(cmd.Status)
	if err := status.Validate(); err != nil {
		return nil, fmt.Errorf("failed to correlate segment: %w", err)
	}

	now := uc.now()
	state := sess.State(now)
	if state.Snapshot == nil {
		return &CorrelateSegmentResult{View: uc.builder.Build(state, now)}, nil
	}

	correlation, ok := uc.correlator.Correlate(state.Snapshot, service.SegmentClick{
		SiteName: cmd.SiteName,
		StartTs:  cmd.StartTs,
		EndTs:    cmd.EndTs,
		Status:   status,
	}, now)
	if !ok {
		return &CorrelateSegmentResult{View: uc.builder.Build(state, now)}, nil
	}

	sess.ApplyCorrelation(correlation, now)
	view := uc.builder.Build(sess.State(now), now)

	uc.logger.Debug("Segment correlated",
		"session", sess.ID(),
		"site", cmd.SiteName,
		"status", status.String(),
		"highlighted", len(correlation.Highlight.Keys),
	)

	if uc.events != nil {
		keys := make([]string, 0, len(correlation.Highlight.Keys))
		for _, key := range correlation.Highlight.Keys {
			keys = append(keys, key.String())
		}
		event := port.Event{
			ID:         uuid.NewString(),
			Type:       port.SubjectDashboardCorrelated,
			OccurredAt: now.UTC(),
			Payload: map[string]interface{}{
				"session_id":  sess.ID(),
				"site_name":   cmd.SiteName,
				"start_ts":    cmd.StartTs,
				"end_ts":      cmd.EndTs,
				"status":      status.String(),
				"highlighted": keys,
			},
		}
		if err := uc.events.PublishEvent(ctx, port.SubjectDashboardCorrelated, event); err != nil {
			uc.logger.Warn("Failed to publish correlation event", "error", err.Error())
		}
	}
	if uc.notifier != nil {
		uc.notifier.SendDashboard(sess.ID(), view)
	}

	return &CorrelateSegmentResult{View: view, Applied: true}, nil
}
