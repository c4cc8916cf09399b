package cloudwatch

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreschagin/uptime-dashboard/internal/domain/entity"
	"github.com/dreschagin/uptime-dashboard/internal/domain/valueobject"
	"github.com/dreschagin/uptime-dashboard/pkg/logger"
)

type fakeMetricData struct {
	calls    []*cloudwatch.PutMetricDataInput
	failures int
}

func (f *fakeMetricData) PutMetricData(_ context.Context, params *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.calls = append(f.calls, params)
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("throttled")
	}
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func availabilityMetric(t *testing.T, v float64) *entity.Metric {
	t.Helper()
	value, err := valueobject.NewMetricValue(v, valueobject.UnitPercent)
	require.NoError(t, err)
	metric, err := entity.NewMetric(valueobject.MetricAvailability, "avg_availability", value, time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	metric.SetDimension("source", "dashboard")
	return metric
}

func testMetricsPublisher(client metricDataAPI, bufferSize int) *MetricsPublisher {
	cfg := MetricsPublisherConfig{
		Namespace:         "Uptime/Dashboard",
		Region:            "us-east-1",
		BufferSize:        bufferSize,
		DefaultDimensions: map[string]string{"Environment": "test"},
	}
	_ = normalizeMetricsConfig(&cfg)
	return newMetricsPublisher(client, cfg, logger.NewWithWriter("error", io.Discard))
}

func TestMapUnit(t *testing.T) {
	tests := []struct {
		unit     string
		expected types.StandardUnit
	}{
		{valueobject.UnitPercent, types.StandardUnitPercent},
		{valueobject.UnitSeconds, types.StandardUnitSeconds},
		{"ms", types.StandardUnitMilliseconds},
		{valueobject.UnitCount, types.StandardUnitCount},
		{"furlongs", types.StandardUnitNone},
	}

	for _, tt := range tests {
		t.Run(tt.unit, func(t *testing.T) {
			assert.Equal(t, tt.expected, mapUnit(tt.unit))
		})
	}
}

func TestConvertToDatum(t *testing.T) {
	p := testMetricsPublisher(&fakeMetricData{}, 10)

	datum := p.convertToDatum(availabilityMetric(t, 99.95))

	assert.Equal(t, "avg_availability", *datum.MetricName)
	assert.Equal(t, 99.95, *datum.Value)
	assert.Equal(t, types.StandardUnitPercent, datum.Unit)
	assert.Equal(t, int32(60), *datum.StorageResolution)

	dims := map[string]string{}
	names := []string{}
	for _, d := range datum.Dimensions {
		dims[*d.Name] = *d.Value
		names = append(names, *d.Name)
	}
	assert.Equal(t, map[string]string{
		"Environment": "test",
		"MetricType":  "availability",
		"source":      "dashboard",
	}, dims)
	assert.IsIncreasing(t, names)
}

func TestMetricsPublisher_FlushesWhenBufferFull(t *testing.T) {
	client := &fakeMetricData{}
	p := testMetricsPublisher(client, 2)

	require.NoError(t, p.PublishBatch(context.Background(), []*entity.Metric{availabilityMetric(t, 1)}))
	assert.Empty(t, client.calls)

	require.NoError(t, p.PublishBatch(context.Background(), []*entity.Metric{availabilityMetric(t, 2), nil}))
	require.Len(t, client.calls, 1)
	assert.Equal(t, "Uptime/Dashboard", *client.calls[0].Namespace)
	assert.Len(t, client.calls[0].MetricData, 2)

	require.NoError(t, p.Flush(context.Background()))
	assert.Len(t, client.calls, 1, "empty buffer is not sent")
}

func TestMetricsPublisher_RetriesThenKeepsBuffer(t *testing.T) {
	client := &fakeMetricData{failures: maxRetries}
	p := testMetricsPublisher(client, 10)

	require.NoError(t, p.PublishBatch(context.Background(), []*entity.Metric{availabilityMetric(t, 1)}))
	err := p.Flush(context.Background())
	require.Error(t, err)
	assert.Len(t, client.calls, maxRetries)

	require.NoError(t, p.Flush(context.Background()))
	assert.Len(t, client.calls, maxRetries+1)
}

func TestNormalizeMetricsConfig(t *testing.T) {
	assert.Error(t, normalizeMetricsConfig(&MetricsPublisherConfig{Region: "us-east-1"}))
	assert.Error(t, normalizeMetricsConfig(&MetricsPublisherConfig{Namespace: "n"}))

	cfg := MetricsPublisherConfig{Namespace: "n", Region: "r", StorageResolution: 30}
	require.NoError(t, normalizeMetricsConfig(&cfg))
	assert.Equal(t, int32(60), cfg.StorageResolution)
	assert.Equal(t, 100, cfg.BufferSize)
	assert.Equal(t, 10*time.Second, cfg.FlushInterval)
}
