package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dreschagin/uptime-dashboard/internal/application/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTable struct {
	items     []map[string]types.AttributeValue
	lastQuery *dynamodb.QueryInput
	lastKey   map[string]types.AttributeValue
	err       error
}

func (f *fakeTable) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.items = append(f.items, params.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeTable) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.lastQuery = params
	if f.err != nil {
		return nil, f.err
	}
	// newest first, like ScanIndexForward=false
	out := make([]map[string]types.AttributeValue, 0, len(f.items))
	for i := len(f.items) - 1; i >= 0; i-- {
		out = append(out, f.items[i])
	}
	return &dynamodb.QueryOutput{Items: out, LastEvaluatedKey: f.lastKey}, nil
}

func sampleRecord(createdAt time.Time) port.ReportMetadata {
	return port.ReportMetadata{
		DashboardID: "main",
		ReportID:    "r-1",
		S3Key:       "reports/main/2026/02/07/20260207T123456Z_view.json",
		ContentType: "application/json",
		SizeBytes:   512,
		Sites:       []string{"api", "web"},
		RangeStart:  createdAt.Add(-time.Hour),
		RangeEnd:    createdAt,
		CreatedAt:   createdAt,
		ExpiresAt:   createdAt.Add(24 * time.Hour),
	}
}

func TestReportMetadataRepository_PutAndList(t *testing.T) {
	table := &fakeTable{}
	repo := newRepository(table, "reports", true)
	createdAt := time.Date(2026, 2, 7, 12, 34, 56, 0, time.UTC)

	require.NoError(t, repo.Put(context.Background(), sampleRecord(createdAt)))
	require.Len(t, table.items, 1)

	item := table.items[0]
	assert.Equal(t, "DASHBOARD#main", item[attrPK].(*types.AttributeValueMemberS).Value)
	sk := item[attrSK].(*types.AttributeValueMemberS).Value
	assert.Regexp(t, `^1770467696000#[0-9a-f]{16}$`, sk)
	assert.Equal(t, "1770553696", item[attrExpiresAt].(*types.AttributeValueMemberN).Value)

	page, err := repo.ListByDashboard(context.Background(), port.ReportListQuery{DashboardID: "main", Limit: 500})
	require.NoError(t, err)

	assert.Equal(t, int32(maxListLimit), *table.lastQuery.Limit)
	assert.False(t, *table.lastQuery.ScanIndexForward)
	assert.True(t, *table.lastQuery.ConsistentRead)

	require.Len(t, page.Items, 1)
	got := page.Items[0]
	assert.Equal(t, "r-1", got.ReportID)
	assert.Equal(t, []string{"api", "web"}, got.Sites)
	assert.Equal(t, createdAt, got.CreatedAt)
	assert.Equal(t, createdAt.Add(-time.Hour), got.RangeStart)
	assert.Equal(t, int64(512), got.SizeBytes)
	assert.Empty(t, page.NextCursor)
}

func TestReportMetadataRepository_Cursor(t *testing.T) {
	table := &fakeTable{lastKey: map[string]types.AttributeValue{
		attrPK: &types.AttributeValueMemberS{Value: "DASHBOARD#main"},
		attrSK: &types.AttributeValueMemberS{Value: "0000000000001#abc"},
	}}
	repo := newRepository(table, "reports", false)

	page, err := repo.ListByDashboard(context.Background(), port.ReportListQuery{DashboardID: "main"})
	require.NoError(t, err)
	require.NotEmpty(t, page.NextCursor)
	assert.Equal(t, int32(defaultListLimit), *table.lastQuery.Limit)

	_, err = repo.ListByDashboard(context.Background(), port.ReportListQuery{DashboardID: "main", Cursor: page.NextCursor})
	require.NoError(t, err)
	assert.Equal(t, "0000000000001#abc", table.lastQuery.ExclusiveStartKey[attrSK].(*types.AttributeValueMemberS).Value)

	_, err = repo.ListByDashboard(context.Background(), port.ReportListQuery{DashboardID: "other", Cursor: page.NextCursor})
	assert.ErrorIs(t, err, port.ErrInvalidCursor)
	assert.EqualError(t, err, "invalid cursor: does not match dashboard")

	_, err = repo.ListByDashboard(context.Background(), port.ReportListQuery{DashboardID: "main", Cursor: "%%%"})
	assert.EqualError(t, err, "invalid cursor")
}

func TestReportMetadataRepository_Validation(t *testing.T) {
	repo := newRepository(&fakeTable{}, "reports", false)
	record := sampleRecord(time.Now())

	bad := record
	bad.DashboardID = "has space"
	assert.Error(t, repo.Put(context.Background(), bad))

	bad = record
	bad.S3Key = " "
	assert.Error(t, repo.Put(context.Background(), bad))

	bad = record
	bad.ReportID = ""
	assert.Error(t, repo.Put(context.Background(), bad))

	_, err := repo.ListByDashboard(context.Background(), port.ReportListQuery{DashboardID: "../x"})
	assert.Error(t, err)
}

func TestReportMetadataRepository_ClientError(t *testing.T) {
	repo := newRepository(&fakeTable{err: errors.New("throttled")}, "reports", false)

	err := repo.Put(context.Background(), sampleRecord(time.Now()))
	assert.ErrorContains(t, err, "dynamodb put failed")

	_, err = repo.ListByDashboard(context.Background(), port.ReportListQuery{DashboardID: "main"})
	assert.ErrorContains(t, err, "dynamodb query failed")
}
