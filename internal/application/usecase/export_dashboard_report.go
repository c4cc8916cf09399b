package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dreschagin/uptime-dashboard/internal/application/dto"
	"github.com/dreschagin/uptime-dashboard/internal/application/port"
	"github.com/dreschagin/uptime-dashboard/internal/application/session"
	"github.com/dreschagin/uptime-dashboard/pkg/logger"
	"github.com/google/uuid"
)

const (
	reportContentType     = "application/json"
	reportTimestampLayout = "20060102T150405Z"
	reportSuffix          = "_view.json"
)

var (
	dashboardIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

	ErrInvalidDashboardID = errors.New("invalid dashboard_id")
	ErrNothingToExport    = errors.New("dashboard has no loaded data")
	ErrReportsDisabled    = errors.New("report storage is not configured")
)

type ExportDashboardReportCommand struct {
	// DashboardID defaults to the session id.
	DashboardID string
	CapturedAt  time.Time
}

type ExportDashboardReportConfig struct {
	KeyPrefix     string
	RetentionDays int
}

// ExportDashboardReportUseCase stores the current session view as a JSON
// report and indexes it.
type ExportDashboardReportUseCase struct {
	storage  port.ReportStorage
	metadata port.ReportMetadataRepository
	builder  *DashboardViewBuilder
	config   ExportDashboardReportConfig
	logger   *logger.Logger
	now      func() time.Time
}

func NewExportDashboardReportUseCase(
	storage port.ReportStorage,
	metadata port.ReportMetadataRepository,
	builder *DashboardViewBuilder,
	config ExportDashboardReportConfig,
	log *logger.Logger,
) *ExportDashboardReportUseCase {
	if config.RetentionDays <= 0 {
		config.RetentionDays = 30
	}
	return &ExportDashboardReportUseCase{
		storage:  storage,
		metadata: metadata,
		builder:  builder,
		config:   config,
		logger:   log,
		now:      time.Now,
	}
}

func (uc *ExportDashboardReportUseCase) Execute(
	ctx context.Context,
	sess *session.DashboardSession,
	cmd ExportDashboardReportCommand,
) (*dto.ReportDTO, error) {
	if uc.storage == nil {
		return nil, ErrReportsDisabled
	}

	dashboardID := strings.TrimSpace(cmd.DashboardID)
	if dashboardID == "" {
		dashboardID = sess.ID()
	}
	if !dashboardIDRegex.MatchString(dashboardID) {
		return nil, ErrInvalidDashboardID
	}

	now := uc.now()
	state := sess.State(now)
	if state.Phase != session.PhaseReady {
		return nil, ErrNothingToExport
	}

	capturedAt := cmd.CapturedAt.UTC()
	if cmd.CapturedAt.IsZero() {
		capturedAt = now.UTC()
	}

	view := uc.builder.Build(state, now)
	body, err := json.Marshal(view)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}

	key := uc.buildS3Key(dashboardID, capturedAt)
	url, err := uc.storage.PutObject(ctx, key, reportContentType, body)
	if err != nil {
		uc.logger.Error("Failed to upload dashboard report", err, "dashboard_id", dashboardID)
		return nil, fmt.Errorf("failed to upload report: %w", err)
	}

	rng := state.Query.Range()
	record := port.ReportMetadata{
		DashboardID: dashboardID,
		ReportID:    uuid.NewString(),
		S3Key:       key,
		ContentType: reportContentType,
		SizeBytes:   int64(len(body)),
		Sites:       state.Query.Sites(),
		RangeStart:  rng.Start().UTC(),
		RangeEnd:    rng.End().UTC(),
		CreatedAt:   capturedAt,
		ExpiresAt:   capturedAt.Add(time.Duration(uc.config.RetentionDays) * 24 * time.Hour),
	}

	if uc.metadata != nil {
		if err := uc.metadata.Put(ctx, record); err != nil {
			// the object is stored; listing falls back to S3
			uc.logger.Warn("Failed to index dashboard report",
				"dashboard_id", dashboardID,
				"s3_key", key,
				"error", err.Error(),
			)
		}
	}

	report := reportFromMetadata(record)
	report.URL = url
	return &report, nil
}

func (uc *ExportDashboardReportUseCase) buildS3Key(dashboardID string, capturedAt time.Time) string {
	return fmt.Sprintf("%s%s/%s%s",
		reportPrefix(uc.config.KeyPrefix, dashboardID),
		capturedAt.Format("2006/01/02"),
		capturedAt.Format(reportTimestampLayout),
		reportSuffix,
	)
}

func reportPrefix(keyPrefix, dashboardID string) string {
	prefix := strings.Trim(keyPrefix, "/")
	if prefix == "" {
		prefix = "reports"
	}
	return fmt.Sprintf("%s/%s/", prefix, dashboardID)
}

func reportFromMetadata(record port.ReportMetadata) dto.ReportDTO {
	sites := record.Sites
	if sites == nil {
		sites = []string{}
	}
	return dto.ReportDTO{
		ReportID:    record.ReportID,
		DashboardID: record.DashboardID,
		S3Key:       record.S3Key,
		ContentType: record.ContentType,
		SizeBytes:   record.SizeBytes,
		Sites:       sites,
		RangeStart:  record.RangeStart,
		RangeEnd:    record.RangeEnd,
		CreatedAt:   record.CreatedAt,
	}
}
