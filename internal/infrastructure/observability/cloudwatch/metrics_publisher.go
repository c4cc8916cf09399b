package cloudwatch

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/dreschagin/uptime-dashboard/internal/domain/entity"
	"github.com/dreschagin/uptime-dashboard/internal/domain/valueobject"
	"github.com/dreschagin/uptime-dashboard/pkg/logger"
)

// PutMetricData accepts up to 1000 datums per call
const maxMetricsPerRequest = 1000

type MetricsPublisherConfig struct {
	Namespace         string
	Region            string
	Endpoint          string
	AccessKeyID       string
	SecretAccessKey   string
	DefaultDimensions map[string]string
	BufferSize        int
	FlushInterval     time.Duration
	StorageResolution int32
}

type metricDataAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// MetricsPublisher buffers dashboard metrics and ships them to CloudWatch.
type MetricsPublisher struct {
	client            metricDataAPI
	namespace         string
	defaultDimensions map[string]string
	storageResolution int32
	logger            *logger.Logger

	buffer     []*entity.Metric
	bufferSize int
	mu         sync.Mutex

	flushInterval time.Duration
	stopCh        chan struct{}
	wg            sync.WaitGroup
}

func NewMetricsPublisher(ctx context.Context, cfg MetricsPublisherConfig, log *logger.Logger) (*MetricsPublisher, error) {
	if err := normalizeMetricsConfig(&cfg); err != nil {
		return nil, err
	}

	awsCfg, err := buildAWSConfig(ctx, cfg.Region, cfg.Endpoint, cfg.AccessKeyID, cfg.SecretAccessKey)
	if err != nil {
		return nil, fmt.Errorf("failed to build AWS config: %w", err)
	}

	p := newMetricsPublisher(cloudwatch.NewFromConfig(awsCfg), cfg, log)
	p.start()
	return p, nil
}

func normalizeMetricsConfig(cfg *MetricsPublisherConfig) error {
	if cfg.Namespace == "" {
		return fmt.Errorf("namespace is required")
	}
	if cfg.Region == "" {
		return fmt.Errorf("region is required")
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 10 * time.Second
	}
	if cfg.StorageResolution != 1 && cfg.StorageResolution != 60 {
		cfg.StorageResolution = 60
	}
	return nil
}

func newMetricsPublisher(client metricDataAPI, cfg MetricsPublisherConfig, log *logger.Logger) *MetricsPublisher {
	return &MetricsPublisher{
		client:            client,
		namespace:         cfg.Namespace,
		defaultDimensions: cfg.DefaultDimensions,
		storageResolution: cfg.StorageResolution,
		logger:            log,
		buffer:            make([]*entity.Metric, 0, cfg.BufferSize),
		bufferSize:        cfg.BufferSize,
		flushInterval:     cfg.FlushInterval,
		stopCh:            make(chan struct{}),
	}
}

func (p *MetricsPublisher) start() {
	p.wg.Add(1)
	go p.flushLoop()
}

func (p *MetricsPublisher) PublishBatch(ctx context.Context, metrics []*entity.Metric) error {
	if len(metrics) == 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, metric := range metrics {
		if metric == nil {
			continue
		}
		p.buffer = append(p.buffer, metric)
		if len(p.buffer) >= p.bufferSize {
			if err := p.flushBufferUnsafe(ctx); err != nil {
				return fmt.Errorf("failed to flush buffer: %w", err)
			}
		}
	}
	return nil
}

func (p *MetricsPublisher) Flush(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flushBufferUnsafe(ctx)
}

// Close stops the flush loop and ships what is left.
func (p *MetricsPublisher) Close(ctx context.Context) error {
	close(p.stopCh)
	p.wg.Wait()
	return p.Flush(ctx)
}

func (p *MetricsPublisher) flushLoop() {
	defer p.wg.Done()
	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := p.Flush(ctx); err != nil && p.logger != nil {
				p.logger.Warn("CloudWatch metrics flush failed, keeping buffer", "error", err)
			}
			cancel()
		case <-p.stopCh:
			return
		}
	}
}

// flushBufferUnsafe requires p.mu. The buffer is kept when a chunk fails.
func (p *MetricsPublisher) flushBufferUnsafe(ctx context.Context) error {
	if len(p.buffer) == 0 {
		return nil
	}

	data := make([]types.MetricDatum, 0, len(p.buffer))
	for _, metric := range p.buffer {
		data = append(data, p.convertToDatum(metric))
	}

	for i := 0; i < len(data); i += maxMetricsPerRequest {
		end := i + maxMetricsPerRequest
		if end > len(data) {
			end = len(data)
		}
		chunk := data[i:end]
		err := retry(ctx, func() error {
			_, err := p.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
				Namespace:  aws.String(p.namespace),
				MetricData: chunk,
			})
			return err
		})
		if err != nil {
			p.buffer = p.buffer[i:]
			return fmt.Errorf("failed to publish %d metrics: %w", len(chunk), err)
		}
	}

	p.buffer = p.buffer[:0]
	return nil
}

func (p *MetricsPublisher) convertToDatum(metric *entity.Metric) types.MetricDatum {
	merged := make(map[string]string, len(p.defaultDimensions)+4)
	for key, value := range p.defaultDimensions {
		merged[key] = value
	}
	for key, value := range metric.Dimensions() {
		merged[key] = value
	}
	merged["MetricType"] = metric.Type().String()

	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	dimensions := make([]types.Dimension, 0, len(keys))
	for _, key := range keys {
		dimensions = append(dimensions, types.Dimension{
			Name:  aws.String(key),
			Value: aws.String(merged[key]),
		})
	}

	datum := types.MetricDatum{
		MetricName: aws.String(metric.Name()),
		Value:      aws.Float64(metric.Value().Raw()),
		Unit:       mapUnit(metric.Value().Unit()),
		Timestamp:  aws.Time(metric.CollectedAt()),
		Dimensions: dimensions,
	}
	if p.storageResolution > 0 {
		datum.StorageResolution = aws.Int32(p.storageResolution)
	}
	return datum
}

func mapUnit(unit string) types.StandardUnit {
	switch unit {
	case valueobject.UnitPercent:
		return types.StandardUnitPercent
	case valueobject.UnitSeconds:
		return types.StandardUnitSeconds
	case "ms":
		return types.StandardUnitMilliseconds
	case valueobject.UnitCount:
		return types.StandardUnitCount
	default:
		return types.StandardUnitNone
	}
}
