package cloudwatch

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreschagin/uptime-dashboard/internal/application/port"
)

type fakeLogs struct {
	puts          []*cloudwatchlogs.PutLogEventsInput
	expectedToken *string
	createErr     error
}

func (f *fakeLogs) PutLogEvents(_ context.Context, params *cloudwatchlogs.PutLogEventsInput, _ ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error) {
	f.puts = append(f.puts, params)
	if f.expectedToken != nil && aws.ToString(params.SequenceToken) != *f.expectedToken {
		return nil, &types.InvalidSequenceTokenException{ExpectedSequenceToken: f.expectedToken}
	}
	return &cloudwatchlogs.PutLogEventsOutput{NextSequenceToken: aws.String("next")}, nil
}

func (f *fakeLogs) CreateLogGroup(context.Context, *cloudwatchlogs.CreateLogGroupInput, ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogGroupOutput, error) {
	return nil, f.createErr
}

func (f *fakeLogs) CreateLogStream(context.Context, *cloudwatchlogs.CreateLogStreamInput, ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogStreamOutput, error) {
	return nil, f.createErr
}

func testLogsPublisher(client logsAPI, bufferSize int) *LogsPublisher {
	cfg := LogsPublisherConfig{LogGroupName: "/uptime/dashboard", LogStreamName: "api", Region: "us-east-1", BufferSize: bufferSize}
	_ = normalizeLogsConfig(&cfg)
	return newLogsPublisher(client, cfg)
}

func decodeEvent(t *testing.T, event types.InputLogEvent) map[string]interface{} {
	t.Helper()
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(*event.Message), &data))
	return data
}

func TestConvertToLogEvent(t *testing.T) {
	at := time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)
	entry := port.NewLogEntry(port.LogLevelWarn, "fetch failed", at, "sites", 2, "error", errors.New("timeout"))

	event, err := convertToLogEvent(entry)
	require.NoError(t, err)

	assert.Equal(t, at.UnixMilli(), *event.Timestamp)
	data := decodeEvent(t, event)
	assert.Equal(t, "WARN", data["level"])
	assert.Equal(t, "fetch failed", data["message"])
	fields := data["fields"].(map[string]interface{})
	assert.Equal(t, float64(2), fields["sites"])
	assert.Equal(t, "timeout", fields["error"])
}

func TestConvertToLogEvent_Truncation(t *testing.T) {
	entry := port.LogEntry{Timestamp: time.Now(), Level: port.LogLevelInfo, Message: strings.Repeat("x", maxLogEventSize+1000)}

	event, err := convertToLogEvent(entry)
	require.NoError(t, err)

	assert.Len(t, *event.Message, maxLogEventSize)
	assert.True(t, strings.HasSuffix(*event.Message, "..."))
}

func TestLogsPublisher_SortsAndFlushes(t *testing.T) {
	client := &fakeLogs{}
	p := testLogsPublisher(client, 3)
	now := time.Now()

	require.NoError(t, p.PublishBatch(context.Background(), []port.LogEntry{
		{Timestamp: now.Add(5 * time.Second), Level: port.LogLevelInfo, Message: "third"},
		{Timestamp: now, Level: port.LogLevelInfo, Message: "first"},
	}))
	assert.Empty(t, client.puts)

	require.NoError(t, p.Publish(context.Background(), port.LogEntry{Timestamp: now.Add(2 * time.Second), Level: port.LogLevelInfo, Message: "second"}))
	require.Len(t, client.puts, 1)

	var order []string
	for _, event := range client.puts[0].LogEvents {
		order = append(order, decodeEvent(t, event)["message"].(string))
	}
	assert.Equal(t, []string{"first", "second", "third"}, order)
	assert.Equal(t, "next", aws.ToString(p.sequenceToken))
}

func TestLogsPublisher_RecoversSequenceToken(t *testing.T) {
	client := &fakeLogs{expectedToken: aws.String("expected")}
	p := testLogsPublisher(client, 10)

	require.NoError(t, p.Publish(context.Background(), port.LogEntry{Timestamp: time.Now(), Level: port.LogLevelInfo, Message: "hello"}))
	require.NoError(t, p.Flush(context.Background()))

	require.Len(t, client.puts, 2)
	assert.Nil(t, client.puts[0].SequenceToken)
	assert.Equal(t, "expected", aws.ToString(client.puts[1].SequenceToken))
}

func TestLogsPublisher_EnsureLogGroupAndStream(t *testing.T) {
	exists := &fakeLogs{createErr: &types.ResourceAlreadyExistsException{}}
	assert.NoError(t, testLogsPublisher(exists, 1).ensureLogGroupAndStream(context.Background()))

	denied := &fakeLogs{createErr: errors.New("access denied")}
	assert.ErrorContains(t, testLogsPublisher(denied, 1).ensureLogGroupAndStream(context.Background()), "failed to create log group")
}

func TestNormalizeLogsConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LogsPublisherConfig
		wantErr bool
	}{
		{"valid", LogsPublisherConfig{LogGroupName: "g", LogStreamName: "s", Region: "r"}, false},
		{"missing group", LogsPublisherConfig{LogStreamName: "s", Region: "r"}, true},
		{"missing stream", LogsPublisherConfig{LogGroupName: "g", Region: "r"}, true},
		{"missing region", LogsPublisherConfig{LogGroupName: "g", LogStreamName: "s"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := normalizeLogsConfig(&cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 50, cfg.BufferSize)
			assert.Equal(t, 5*time.Second, cfg.FlushInterval)
		})
	}
}
