package usecase

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/dreschagin/uptime-dashboard/internal/application/dto"
	"github.com/dreschagin/uptime-dashboard/internal/application/port"
	"github.com/dreschagin/uptime-dashboard/pkg/logger"
)

type ListDashboardReportsCommand struct {
	DashboardID string
	Limit       int
	Cursor      string
}

type ListDashboardReportsConfig struct {
	KeyPrefix           string
	DefaultLimit        int
	MaxLimit            int
	FallbackToS3OnError bool
}

// ListDashboardReportsUseCase lists reports from the index, or from S3 when
// the index is missing or failing.
type ListDashboardReportsUseCase struct {
	storage            port.ReportStorage
	metadataRepository port.ReportMetadataRepository
	config             ListDashboardReportsConfig
	logger             *logger.Logger
}

func NewListDashboardReportsUseCase(
	storage port.ReportStorage,
	metadataRepository port.ReportMetadataRepository,
	config ListDashboardReportsConfig,
	log *logger.Logger,
) *ListDashboardReportsUseCase {
	if config.DefaultLimit <= 0 {
		config.DefaultLimit = 20
	}
	if config.MaxLimit <= 0 {
		config.MaxLimit = 100
	}
	return &ListDashboardReportsUseCase{
		storage:            storage,
		metadataRepository: metadataRepository,
		config:             config,
		logger:             log,
	}
}

func (uc *ListDashboardReportsUseCase) Execute(
	ctx context.Context,
	cmd ListDashboardReportsCommand,
) (*dto.ReportListDTO, error) {
	dashboardID := strings.TrimSpace(cmd.DashboardID)
	if !dashboardIDRegex.MatchString(dashboardID) {
		return nil, ErrInvalidDashboardID
	}

	limit := cmd.Limit
	if limit <= 0 {
		limit = uc.config.DefaultLimit
	}
	if limit > uc.config.MaxLimit {
		limit = uc.config.MaxLimit
	}

	query := port.ReportListQuery{
		DashboardID: dashboardID,
		Limit:       limit,
		Cursor:      strings.TrimSpace(cmd.Cursor),
	}

	if uc.metadataRepository != nil {
		page, err := uc.metadataRepository.ListByDashboard(ctx, query)
		if err == nil {
			return uc.mapMetadataPage(ctx, page), nil
		}

		if !uc.config.FallbackToS3OnError {
			return nil, fmt.Errorf("failed to list reports via metadata index: %w", err)
		}

		uc.logger.Warn("Report index is unavailable, using S3 fallback",
			"dashboard_id", dashboardID,
			"error", err.Error(),
		)
	}

	return uc.listFromS3(ctx, query)
}

func (uc *ListDashboardReportsUseCase) mapMetadataPage(ctx context.Context, page port.ReportListPage) *dto.ReportListDTO {
	items := make([]dto.ReportDTO, 0, len(page.Items))
	for _, record := range page.Items {
		report := reportFromMetadata(record)
		if uc.storage != nil {
			if url, err := uc.storage.GetObjectURL(ctx, record.S3Key); err == nil {
				report.URL = url
			}
		}
		items = append(items, report)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	return &dto.ReportListDTO{Items: items, NextCursor: page.NextCursor}
}

func (uc *ListDashboardReportsUseCase) listFromS3(ctx context.Context, query port.ReportListQuery) (*dto.ReportListDTO, error) {
	if uc.storage == nil {
		return nil, ErrReportsDisabled
	}
	if query.Cursor != "" {
		return nil, fmt.Errorf("%w: pagination requires the report index", port.ErrInvalidCursor)
	}

	objects, err := uc.storage.ListObjects(ctx, reportPrefix(uc.config.KeyPrefix, query.DashboardID), query.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	items := make([]dto.ReportDTO, 0, len(objects))
	for _, object := range objects {
		createdAt := inferReportTime(object.Key)
		if createdAt.IsZero() {
			continue
		}
		items = append(items, dto.ReportDTO{
			DashboardID: query.DashboardID,
			S3Key:       object.Key,
			URL:         object.URL,
			ContentType: reportContentType,
			SizeBytes:   object.SizeBytes,
			Sites:       []string{},
			CreatedAt:   createdAt,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if len(items) > query.Limit {
		items = items[:query.Limit]
	}

	return &dto.ReportListDTO{Items: items}, nil
}

func inferReportTime(key string) time.Time {
	filename := path.Base(strings.TrimSpace(key))
	if !strings.HasSuffix(filename, reportSuffix) {
		return time.Time{}
	}
	capturedAt, err := time.Parse(reportTimestampLayout, strings.TrimSuffix(filename, reportSuffix))
	if err != nil {
		return time.Time{}
	}
	return capturedAt.UTC()
}
