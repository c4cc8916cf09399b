package cloudwatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"

	"github.com/dreschagin/uptime-dashboard/internal/application/port"
)

const (
	maxLogEventsPerRequest = 10000
	maxLogEventSize        = 256000
)

type LogsPublisherConfig struct {
	LogGroupName    string
	LogStreamName   string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BufferSize      int
	FlushInterval   time.Duration
	AutoCreate      bool
}

type logsAPI interface {
	PutLogEvents(ctx context.Context, params *cloudwatchlogs.PutLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error)
	CreateLogGroup(ctx context.Context, params *cloudwatchlogs.CreateLogGroupInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogGroupOutput, error)
	CreateLogStream(ctx context.Context, params *cloudwatchlogs.CreateLogStreamInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogStreamOutput, error)
}

// LogsPublisher ships logger entries to CloudWatch Logs.
// It never logs through pkg/logger itself, since that logger forwards here.
type LogsPublisher struct {
	client        logsAPI
	logGroupName  string
	logStreamName string

	buffer        []port.LogEntry
	bufferSize    int
	sequenceToken *string
	mu            sync.Mutex

	failedFlushes atomic.Int64

	flushInterval time.Duration
	stopCh        chan struct{}
	wg            sync.WaitGroup
}

func NewLogsPublisher(ctx context.Context, cfg LogsPublisherConfig) (*LogsPublisher, error) {
	if err := normalizeLogsConfig(&cfg); err != nil {
		return nil, err
	}

	awsCfg, err := buildAWSConfig(ctx, cfg.Region, cfg.Endpoint, cfg.AccessKeyID, cfg.SecretAccessKey)
	if err != nil {
		return nil, fmt.Errorf("failed to build AWS config: %w", err)
	}

	p := newLogsPublisher(cloudwatchlogs.NewFromConfig(awsCfg), cfg)
	if cfg.AutoCreate {
		if err := p.ensureLogGroupAndStream(ctx); err != nil {
			return nil, fmt.Errorf("failed to create log group/stream: %w", err)
		}
	}
	p.start()
	return p, nil
}

func normalizeLogsConfig(cfg *LogsPublisherConfig) error {
	if cfg.LogGroupName == "" {
		return fmt.Errorf("log group name is required")
	}
	if cfg.LogStreamName == "" {
		return fmt.Errorf("log stream name is required")
	}
	if cfg.Region == "" {
		return fmt.Errorf("region is required")
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 50
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	return nil
}

func newLogsPublisher(client logsAPI, cfg LogsPublisherConfig) *LogsPublisher {
	return &LogsPublisher{
		client:        client,
		logGroupName:  cfg.LogGroupName,
		logStreamName: cfg.LogStreamName,
		buffer:        make([]port.LogEntry, 0, cfg.BufferSize),
		bufferSize:    cfg.BufferSize,
		flushInterval: cfg.FlushInterval,
		stopCh:        make(chan struct{}),
	}
}

func (p *LogsPublisher) start() {
	p.wg.Add(1)
	go p.flushLoop()
}

func (p *LogsPublisher) Publish(ctx context.Context, entry port.LogEntry) error {
	return p.PublishBatch(ctx, []port.LogEntry{entry})
}

func (p *LogsPublisher) PublishBatch(ctx context.Context, entries []port.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, entry := range entries {
		p.buffer = append(p.buffer, entry)
		if len(p.buffer) >= p.bufferSize {
			if err := p.flushBufferUnsafe(ctx); err != nil {
				return fmt.Errorf("failed to flush buffer: %w", err)
			}
		}
	}
	return nil
}

func (p *LogsPublisher) Flush(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flushBufferUnsafe(ctx)
}

func (p *LogsPublisher) Close(ctx context.Context) error {
	close(p.stopCh)
	p.wg.Wait()
	return p.Flush(ctx)
}

// FailedFlushes counts background flushes that gave up.
func (p *LogsPublisher) FailedFlushes() int64 {
	return p.failedFlushes.Load()
}

func (p *LogsPublisher) flushLoop() {
	defer p.wg.Done()
	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := p.Flush(ctx); err != nil {
				p.failedFlushes.Add(1)
			}
			cancel()
		case <-p.stopCh:
			return
		}
	}
}

// flushBufferUnsafe requires p.mu. CloudWatch Logs rejects batches that are not in time order.
func (p *LogsPublisher) flushBufferUnsafe(ctx context.Context) error {
	if len(p.buffer) == 0 {
		return nil
	}

	sort.SliceStable(p.buffer, func(i, j int) bool {
		return p.buffer[i].Timestamp.Before(p.buffer[j].Timestamp)
	})

	events := make([]types.InputLogEvent, 0, len(p.buffer))
	for _, entry := range p.buffer {
		event, err := convertToLogEvent(entry)
		if err != nil {
			continue
		}
		events = append(events, event)
	}
	// the entries are either sent or unrepresentable from here on
	p.buffer = p.buffer[:0]

	for i := 0; i < len(events); i += maxLogEventsPerRequest {
		end := i + maxLogEventsPerRequest
		if end > len(events) {
			end = len(events)
		}
		if err := p.putWithRetry(ctx, events[i:end]); err != nil {
			return fmt.Errorf("failed to publish log chunk: %w", err)
		}
	}
	return nil
}

func (p *LogsPublisher) putWithRetry(ctx context.Context, events []types.InputLogEvent) error {
	return retry(ctx, func() error {
		output, err := p.client.PutLogEvents(ctx, &cloudwatchlogs.PutLogEventsInput{
			LogGroupName:  aws.String(p.logGroupName),
			LogStreamName: aws.String(p.logStreamName),
			LogEvents:     events,
			SequenceToken: p.sequenceToken,
		})
		if err == nil {
			p.sequenceToken = output.NextSequenceToken
			return nil
		}

		var invalidSeq *types.InvalidSequenceTokenException
		if errors.As(err, &invalidSeq) {
			p.sequenceToken = invalidSeq.ExpectedSequenceToken
			return &retryNow{err: err}
		}
		return err
	})
}

func convertToLogEvent(entry port.LogEntry) (types.InputLogEvent, error) {
	logData := map[string]interface{}{
		"timestamp": entry.Timestamp.Format(time.RFC3339Nano),
		"level":     string(entry.Level),
		"message":   entry.Message,
	}
	if len(entry.Fields) > 0 {
		fields := make(map[string]interface{}, len(entry.Fields))
		for key, value := range entry.Fields {
			if err, ok := value.(error); ok {
				value = err.Error()
			}
			fields[key] = value
		}
		logData["fields"] = fields
	}

	messageJSON, err := json.Marshal(logData)
	if err != nil {
		return types.InputLogEvent{}, fmt.Errorf("failed to marshal log entry: %w", err)
	}

	message := string(messageJSON)
	if len(message) > maxLogEventSize {
		message = message[:maxLogEventSize-3] + "..."
	}

	return types.InputLogEvent{
		Message:   aws.String(message),
		Timestamp: aws.Int64(entry.Timestamp.UnixMilli()),
	}, nil
}

func (p *LogsPublisher) ensureLogGroupAndStream(ctx context.Context) error {
	var alreadyExists *types.ResourceAlreadyExistsException

	_, err := p.client.CreateLogGroup(ctx, &cloudwatchlogs.CreateLogGroupInput{
		LogGroupName: aws.String(p.logGroupName),
	})
	if err != nil && !errors.As(err, &alreadyExists) {
		return fmt.Errorf("failed to create log group: %w", err)
	}

	_, err = p.client.CreateLogStream(ctx, &cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  aws.String(p.logGroupName),
		LogStreamName: aws.String(p.logStreamName),
	})
	if err != nil && !errors.As(err, &alreadyExists) {
		return fmt.Errorf("failed to create log stream: %w", err)
	}
	return nil
}
