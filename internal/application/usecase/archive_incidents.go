package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dreschagin/uptime-dashboard/internal/application/dto"
	"github.com/dreschagin/uptime-dashboard/internal/domain/entity"
	"github.com/dreschagin/uptime-dashboard/internal/domain/repository"
	"github.com/dreschagin/uptime-dashboard/pkg/logger"
)

var ErrInvalidArchiveQuery = errors.New("invalid archive query")

// ArchiveIncidentsUseCase upserts the incidents of a snapshot into the archive.
type ArchiveIncidentsUseCase struct {
	repository repository.IncidentArchiveRepository
	logger     *logger.Logger
}

func NewArchiveIncidentsUseCase(repository repository.IncidentArchiveRepository, log *logger.Logger) *ArchiveIncidentsUseCase {
	return &ArchiveIncidentsUseCase{repository: repository, logger: log}
}

// Execute archives incidents that carry a start timestamp, the archive key.
func (uc *ArchiveIncidentsUseCase) Execute(ctx context.Context, snapshot *entity.HistorySnapshot) (int, error) {
	incidents := make([]entity.Incident, 0)
	for _, incident := range snapshot.Incidents() {
		if incident.StartTs == nil || incident.SiteName == "" {
			continue
		}
		incidents = append(incidents, incident)
	}
	if len(incidents) == 0 {
		return 0, nil
	}

	if err := uc.repository.SaveBatch(ctx, incidents); err != nil {
		return 0, fmt.Errorf("failed to archive incidents: %w", err)
	}

	uc.logger.Debug("Archived incidents", "count", len(incidents))
	return len(incidents), nil
}

type ListArchivedIncidentsConfig struct {
	DefaultLimit int
	MaxLimit     int
}

// ListArchivedIncidentsUseCase reads one site's archive, newest first.
type ListArchivedIncidentsUseCase struct {
	repository repository.IncidentArchiveRepository
	config     ListArchivedIncidentsConfig
}

func NewListArchivedIncidentsUseCase(repository repository.IncidentArchiveRepository, config ListArchivedIncidentsConfig) *ListArchivedIncidentsUseCase {
	if config.DefaultLimit <= 0 {
		config.DefaultLimit = 50
	}
	if config.MaxLimit <= 0 {
		config.MaxLimit = 500
	}
	return &ListArchivedIncidentsUseCase{repository: repository, config: config}
}

func (uc *ListArchivedIncidentsUseCase) Execute(ctx context.Context, siteName string, limit int) ([]dto.AlertRowDTO, error) {
	siteName = strings.TrimSpace(siteName)
	if siteName == "" {
		return nil, fmt.Errorf("%w: site is required", ErrInvalidArchiveQuery)
	}
	if limit <= 0 {
		limit = uc.config.DefaultLimit
	}
	if limit > uc.config.MaxLimit {
		limit = uc.config.MaxLimit
	}

	incidents, err := uc.repository.FindBySite(ctx, siteName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived incidents: %w", err)
	}

	rows := make([]dto.AlertRowDTO, 0, len(incidents))
	for _, incident := range incidents {
		rows = append(rows, dto.NewAlertRowDTO(incident, false))
	}
	return rows, nil
}
