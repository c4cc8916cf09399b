package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dreschagin/uptime-dashboard/internal/application/dto"
	"github.com/dreschagin/uptime-dashboard/internal/application/port"
	"github.com/dreschagin/uptime-dashboard/internal/application/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportDashboardReportUseCase_Success(t *testing.T) {
	sess := readySession(t)
	storage := &mockReportStorage{}
	index := &mockReportIndex{}
	uc := NewExportDashboardReportUseCase(storage, index, NewDashboardViewBuilder(nil),
		ExportDashboardReportConfig{KeyPrefix: "/reports/", RetentionDays: 7}, testLogger())

	capturedAt := time.Date(2026, 2, 7, 12, 34, 56, 0, time.UTC)
	report, err := uc.Execute(context.Background(), sess, ExportDashboardReportCommand{DashboardID: "main", CapturedAt: capturedAt})
	require.NoError(t, err)

	wantKey := "reports/main/2026/02/07/20260207T123456Z_view.json"
	assert.Equal(t, wantKey, report.S3Key)
	assert.Equal(t, "https://example.com/"+wantKey, report.URL)
	assert.Equal(t, []string{"api", "web"}, report.Sites)

	require.Len(t, storage.calls, 1)
	assert.Equal(t, "application/json", storage.calls[0].contentType)

	var stored dto.DashboardViewDTO
	require.NoError(t, json.Unmarshal(storage.calls[0].body, &stored))
	assert.Equal(t, dto.ViewStateReady, stored.State)
	assert.Equal(t, sess.ID(), stored.SessionID)

	require.Len(t, index.records, 1)
	record := index.records[0]
	assert.Equal(t, "main", record.DashboardID)
	assert.Equal(t, report.ReportID, record.ReportID)
	assert.Equal(t, int64(len(storage.calls[0].body)), record.SizeBytes)
	assert.Equal(t, capturedAt.Add(7*24*time.Hour), record.ExpiresAt)
}

func TestExportDashboardReportUseCase_DefaultsToSessionID(t *testing.T) {
	sess := readySession(t)
	storage := &mockReportStorage{}
	uc := NewExportDashboardReportUseCase(storage, nil, NewDashboardViewBuilder(nil), ExportDashboardReportConfig{}, testLogger())

	report, err := uc.Execute(context.Background(), sess, ExportDashboardReportCommand{})
	require.NoError(t, err)
	assert.Equal(t, sess.ID(), report.DashboardID)
	assert.True(t, strings.HasPrefix(report.S3Key, "reports/"+sess.ID()+"/"))
}

func TestExportDashboardReportUseCase_Errors(t *testing.T) {
	builder := NewDashboardViewBuilder(nil)

	tests := []struct {
		name    string
		storage *mockReportStorage
		sess    *session.DashboardSession
		id      string
		wantErr error
		wantMsg string
	}{
		{name: "invalid id", storage: &mockReportStorage{}, sess: readySession(t), id: "bad id", wantErr: ErrInvalidDashboardID},
		{name: "nothing loaded", storage: &mockReportStorage{}, sess: session.New("s1", time.Now()), id: "main", wantErr: ErrNothingToExport},
		{name: "upload failure", storage: &mockReportStorage{err: errors.New("boom")}, sess: readySession(t), id: "main", wantMsg: "failed to upload report"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			uc := NewExportDashboardReportUseCase(tc.storage, nil, builder, ExportDashboardReportConfig{}, testLogger())
			_, err := uc.Execute(context.Background(), tc.sess, ExportDashboardReportCommand{DashboardID: tc.id})
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
			if tc.wantMsg != "" {
				assert.Contains(t, err.Error(), tc.wantMsg)
			}
		})
	}
}

func TestExportDashboardReportUseCase_IndexFailureIsNotFatal(t *testing.T) {
	uc := NewExportDashboardReportUseCase(&mockReportStorage{}, &mockReportIndex{err: errors.New("throttled")},
		NewDashboardViewBuilder(nil), ExportDashboardReportConfig{}, testLogger())

	report, err := uc.Execute(context.Background(), readySession(t), ExportDashboardReportCommand{DashboardID: "main"})
	require.NoError(t, err)
	assert.NotEmpty(t, report.S3Key)
}

func TestListDashboardReportsUseCase_FromIndex(t *testing.T) {
	older := time.Date(2026, 2, 7, 10, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)
	index := &mockReportIndex{page: port.ReportListPage{
		Items: []port.ReportMetadata{
			{DashboardID: "main", ReportID: "r1", S3Key: "reports/main/a_view.json", CreatedAt: older},
			{DashboardID: "main", ReportID: "r2", S3Key: "reports/main/b_view.json", CreatedAt: newer},
		},
		NextCursor: "next",
	}}
	uc := NewListDashboardReportsUseCase(&mockReportStorage{}, index, ListDashboardReportsConfig{DefaultLimit: 5, MaxLimit: 10}, testLogger())

	res, err := uc.Execute(context.Background(), ListDashboardReportsCommand{DashboardID: "main", Limit: 50})
	require.NoError(t, err)

	assert.Equal(t, 10, index.lastQuery.Limit)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "r2", res.Items[0].ReportID)
	assert.Equal(t, "https://signed.example.com/reports/main/b_view.json", res.Items[0].URL)
	assert.Equal(t, "next", res.NextCursor)
}

func TestListDashboardReportsUseCase_S3Fallback(t *testing.T) {
	storage := &mockReportStorage{objectsByPrefix: map[string][]port.ReportObject{
		"reports/main/": {
			{Key: "reports/main/2026/02/07/20260207T100000Z_view.json", URL: "u1"},
			{Key: "reports/main/2026/02/07/20260207T110000Z_view.json", URL: "u2"},
			{Key: "reports/main/2026/02/07/garbage.txt", URL: "u3"},
		},
	}}
	index := &mockReportIndex{err: errors.New("dynamo unavailable")}
	uc := NewListDashboardReportsUseCase(storage, index, ListDashboardReportsConfig{FallbackToS3OnError: true}, testLogger())

	res, err := uc.Execute(context.Background(), ListDashboardReportsCommand{DashboardID: "main"})
	require.NoError(t, err)

	assert.Equal(t, "reports/main/", storage.lastPrefix)
	assert.Equal(t, 20, storage.lastLimit)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "u2", res.Items[0].URL)
	assert.Equal(t, time.Date(2026, 2, 7, 11, 0, 0, 0, time.UTC), res.Items[0].CreatedAt)
}

func TestListDashboardReportsUseCase_Errors(t *testing.T) {
	strict := NewListDashboardReportsUseCase(&mockReportStorage{}, &mockReportIndex{err: errors.New("down")}, ListDashboardReportsConfig{}, testLogger())
	_, err := strict.Execute(context.Background(), ListDashboardReportsCommand{DashboardID: "main"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metadata index")

	_, err = strict.Execute(context.Background(), ListDashboardReportsCommand{DashboardID: "../etc"})
	assert.ErrorIs(t, err, ErrInvalidDashboardID)

	noIndex := NewListDashboardReportsUseCase(&mockReportStorage{}, nil, ListDashboardReportsConfig{}, testLogger())
	_, err = noIndex.Execute(context.Background(), ListDashboardReportsCommand{DashboardID: "main", Cursor: "abc"})
	require.Error(t, err)
	assert.ErrorIs(t, err, port.ErrInvalidCursor)
}
