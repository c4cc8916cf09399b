package port

import (
	"context"
	"fmt"
	"time"
)

// LogLevel represents the severity of a log entry.
type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

// LogEntry is a structured log line shipped to an external log system.
type LogEntry struct {
	Timestamp time.Time
	Level     LogLevel
	Message   string
	Fields    map[string]interface{}
}

// NewLogEntry builds an entry from alternating key/value arguments.
// A trailing key without a value is dropped.
func NewLogEntry(level LogLevel, msg string, at time.Time, args ...interface{}) LogEntry {
	fields := make(map[string]interface{}, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		fields[fmt.Sprint(args[i])] = args[i+1]
	}
	return LogEntry{Timestamp: at, Level: level, Message: msg, Fields: fields}
}

// LogPublisher ships logs to an external observability platform.
type LogPublisher interface {
	Publish(ctx context.Context, entry LogEntry) error

	// PublishBatch sends multiple entries; implementations split by their own request limits.
	PublishBatch(ctx context.Context, entries []LogEntry) error

	// Flush must be called during graceful shutdown.
	Flush(ctx context.Context) error
}
