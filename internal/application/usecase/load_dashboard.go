package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dreschagin/uptime-dashboard/internal/application/dto"
	"github.com/dreschagin/uptime-dashboard/internal/application/port"
	"github.com/dreschagin/uptime-dashboard/internal/application/session"
	"github.com/dreschagin/uptime-dashboard/internal/domain/entity"
	"github.com/dreschagin/uptime-dashboard/internal/domain/repository"
	"github.com/dreschagin/uptime-dashboard/internal/domain/service"
	"github.com/dreschagin/uptime-dashboard/internal/domain/valueobject"
	"github.com/dreschagin/uptime-dashboard/pkg/logger"
	"github.com/google/uuid"
)

var ErrInvalidRange = errors.New("invalid time range")

type LoadDashboardCommand struct {
	Sites []string
	Start string
	End   string
}

// LoadDashboardHooks are the optional side effects of an applied fetch.
type LoadDashboardHooks struct {
	Archive  *ArchiveIncidentsUseCase
	Metrics  port.MetricsPublisher
	Events   port.EventPublisher
	Notifier port.NotificationService
	Recorder port.FetchRecorder
}

// LoadDashboardUseCase fetches history for a session and applies it unless a
// newer fetch was issued in the meantime.
type LoadDashboardUseCase struct {
	history    repository.HistoryRepository
	builder    *DashboardViewBuilder
	aggregator *service.SummaryAggregator
	validator  *service.MetricValidator
	hooks      LoadDashboardHooks
	logger     *logger.Logger
	now        func() time.Time
}

func NewLoadDashboardUseCase(
	history repository.HistoryRepository,
	builder *DashboardViewBuilder,
	hooks LoadDashboardHooks,
	log *logger.Logger,
) *LoadDashboardUseCase {
	return &LoadDashboardUseCase{
		history:    history,
		builder:    builder,
		aggregator: service.NewSummaryAggregator(),
		validator:  service.NewMetricValidator(),
		hooks:      hooks,
		logger:     log,
		now:        time.Now,
	}
}

func (uc *LoadDashboardUseCase) Execute(
	ctx context.Context,
	sess *session.DashboardSession,
	cmd LoadDashboardCommand,
) (*dto.DashboardViewDTO, error) {
	rng, err := parseRange(cmd.Start, cmd.End)
	if err != nil {
		return nil, err
	}

	query, err := valueobject.NewHistoryQuery(cmd.Sites, rng)
	if errors.Is(err, valueobject.ErrEmptySelection) {
		sess.BeginEmptySelection(query, uc.now())
		sess.SetWallSelection(nil)
		uc.record(port.FetchOutcomeEmpty, 0)
		view := uc.builder.Build(sess.State(uc.now()), uc.now())
		uc.push(sess, view)
		return view, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}

	seq := sess.BeginFetch(uc.now())
	sess.SetWallSelection(query.Sites())
	started := uc.now()

	snapshot, fetchErr := uc.history.FetchHistory(ctx, query)
	elapsed := uc.now().Sub(started)

	if fetchErr != nil {
		if !sess.FailFetch(seq, query, fetchErr, uc.now()) {
			uc.logger.Debug("Discarding stale failed fetch", "session", sess.ID(), "seq", seq)
			uc.record(port.FetchOutcomeStale, elapsed)
			return uc.builder.Build(sess.State(uc.now()), uc.now()), nil
		}

		uc.logger.Error("History fetch failed", fetchErr, "session", sess.ID(), "seq", seq)
		uc.record(port.FetchOutcomeError, elapsed)
		uc.publish(ctx, port.SubjectFetchFailed, map[string]interface{}{
			"session_id": sess.ID(),
			"seq":        seq,
			"sites":      query.Sites(),
			"error":      fetchErr.Error(),
		})

		view := uc.builder.Build(sess.State(uc.now()), uc.now())
		uc.push(sess, view)
		return view, nil
	}

	if !sess.CompleteFetch(seq, query, snapshot, uc.now()) {
		uc.logger.Debug("Discarding stale history response", "session", sess.ID(), "seq", seq)
		uc.record(port.FetchOutcomeStale, elapsed)
		return uc.builder.Build(sess.State(uc.now()), uc.now()), nil
	}
	uc.record(port.FetchOutcomeOK, elapsed)

	summary := uc.aggregator.Aggregate(snapshot, query.Sites())
	uc.logger.Info("Dashboard loaded",
		"session", sess.ID(),
		"seq", seq,
		"sites", len(query.Sites()),
		"incidents", summary.TotalIncidents,
		"took", elapsed,
	)

	uc.archive(ctx, snapshot)
	uc.publishMetrics(ctx, summary, uc.now())
	uc.publish(ctx, port.SubjectDashboardLoaded, map[string]interface{}{
		"session_id":       sess.ID(),
		"seq":              seq,
		"sites":            query.Sites(),
		"start":            query.StartParam(),
		"end":              query.EndParam(),
		"avg_availability": summary.AvgAvailability,
		"down_segments":    summary.DownSegments,
		"slow_segments":    summary.SlowSegments,
	})

	view := uc.builder.Build(sess.State(uc.now()), uc.now())
	uc.push(sess, view)
	return view, nil
}

func parseRange(startRaw, endRaw string) (valueobject.TimeRange, error) {
	start, ok := valueobject.ParseFlexibleTimestamp(startRaw)
	if !ok {
		return valueobject.TimeRange{}, fmt.Errorf("%w: cannot parse start %q", ErrInvalidRange, strings.TrimSpace(startRaw))
	}
	end, ok := valueobject.ParseFlexibleTimestamp(endRaw)
	if !ok {
		return valueobject.TimeRange{}, fmt.Errorf("%w: cannot parse end %q", ErrInvalidRange, strings.TrimSpace(endRaw))
	}
	rng, err := valueobject.NewTimeRange(start, end)
	if err != nil {
		return valueobject.TimeRange{}, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	return rng, nil
}

func (uc *LoadDashboardUseCase) archive(ctx context.Context, snapshot *entity.HistorySnapshot) {
	if uc.hooks.Archive == nil {
		return
	}
	if _, err := uc.hooks.Archive.Execute(ctx, snapshot); err != nil {
		uc.logger.Warn("Failed to archive incidents", "error", err.Error())
	}
}

func (uc *LoadDashboardUseCase) publishMetrics(ctx context.Context, summary service.Summary, at time.Time) {
	if uc.hooks.Metrics == nil {
		return
	}

	metrics, err := uc.validator.SummaryMetrics(summary, at)
	if err != nil {
		uc.logger.Warn("Dropped invalid summary metrics", "error", err.Error())
	}
	if len(metrics) == 0 {
		return
	}

	if err := uc.hooks.Metrics.PublishBatch(ctx, metrics); err != nil {
		uc.logger.Warn("Failed to publish summary metrics", "error", err.Error())
	}
}

func (uc *LoadDashboardUseCase) publish(ctx context.Context, subject string, payload interface{}) {
	if uc.hooks.Events == nil {
		return
	}
	event := port.Event{
		ID:         uuid.NewString(),
		Type:       subject,
		OccurredAt: uc.now().UTC(),
		Payload:    payload,
	}
	if err := uc.hooks.Events.PublishEvent(ctx, subject, event); err != nil {
		uc.logger.Warn("Failed to publish event", "subject", subject, "error", err.Error())
	}
}

func (uc *LoadDashboardUseCase) push(sess *session.DashboardSession, view *dto.DashboardViewDTO) {
	if uc.hooks.Notifier != nil {
		uc.hooks.Notifier.SendDashboard(sess.ID(), view)
	}
}

func (uc *LoadDashboardUseCase) record(outcome string, elapsed time.Duration) {
	if uc.hooks.Recorder != nil {
		uc.hooks.Recorder.RecordFetch(outcome, elapsed)
	}
}
