package usecase

import (
	"time"

	"github.com/dreschagin/uptime-dashboard/internal/application/dto"
	"github.com/dreschagin/uptime-dashboard/internal/application/session"
	"github.com/dreschagin/uptime-dashboard/internal/domain/service"
	"github.com/dreschagin/uptime-dashboard/internal/domain/valueobject"
)

// DashboardViewBuilder renders a session state into the dashboard view model.
// It only reads the state, so the same state always renders the same view.
type DashboardViewBuilder struct {
	aligner    *service.SeriesAligner
	ranker     *service.IncidentRanker
	aggregator *service.SummaryAggregator
}

func NewDashboardViewBuilder(ranker *service.IncidentRanker) *DashboardViewBuilder {
	if ranker == nil {
		ranker = service.NewIncidentRanker(service.DefaultAlertLimit)
	}
	return &DashboardViewBuilder{
		aligner:    service.NewSeriesAligner(),
		ranker:     ranker,
		aggregator: service.NewSummaryAggregator(),
	}
}

func (b *DashboardViewBuilder) Ranker() *service.IncidentRanker {
	return b.ranker
}

func (b *DashboardViewBuilder) Build(state session.State, now time.Time) *dto.DashboardViewDTO {
	view := &dto.DashboardViewDTO{
		SessionID:  state.ID,
		RequestSeq: state.Seq,
		Sites:      state.Query.Sites(),
		Range:      dto.NewRangeDTO(state.Query.Range()),
		Filters:    state.Filters,
		UpdatedAt:  state.UpdatedAt,
	}

	switch state.Phase {
	case session.PhaseLoading:
		view.State = dto.ViewStateLoading
		// a refresh keeps showing the previous snapshot until the new one lands
		if state.Snapshot != nil {
			b.fillReady(view, state, now)
		}
	case session.PhaseFailed:
		view.State = dto.ViewStateError
		view.Message = dto.MessageFetchFailed
		view.Alerts = &dto.AlertTableDTO{Rows: []dto.AlertRowDTO{}, EmptyMessage: dto.MessageFetchFailed}
	case session.PhaseEmptySelection:
		view.State = dto.ViewStateEmptySelection
		view.Message = dto.MessageEmptySelection
		view.Summary = dto.NewSummaryDTO(b.aggregator.Aggregate(nil, nil))
		view.Alerts = &dto.AlertTableDTO{Rows: []dto.AlertRowDTO{}, EmptyMessage: dto.MessageEmptySelectionAlerts}
	case session.PhaseReady:
		view.State = dto.ViewStateReady
		b.fillReady(view, state, now)
	default:
		view.State = dto.ViewStateIdle
	}

	return view
}

func (b *DashboardViewBuilder) fillReady(view *dto.DashboardViewDTO, state session.State, now time.Time) {
	snapshot := state.Snapshot
	rng := state.Query.Range()

	view.Summary = dto.NewSummaryDTO(b.aggregator.Aggregate(snapshot, state.Query.Sites()))

	granularity := valueobject.AxisGranularityFor(rng.Duration().Milliseconds())
	view.Series = dto.NewSeriesDTO(b.aligner.Align(snapshot), granularity)
	view.ReferenceLines = dto.NewReferenceLineDTOs(b.aligner.ReferenceLines(snapshot))
	view.SLA = dto.NewSLAComparisonDTO(snapshot)
	view.Timelines = dto.NewTimelineDTOs(snapshot)

	ranked := b.ranker.Rank(snapshot, state.Filters)
	view.Alerts = dto.NewAlertTableDTO(ranked, state.Highlight, b.ranker.Limit(), now)
	view.Highlight = dto.NewHighlightDTO(state.Highlight, now)
}
