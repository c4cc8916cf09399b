package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dreschagin/uptime-dashboard/internal/application/port"
)

const publishTimeout = 2 * time.Second

type Logger struct {
	logger *log.Logger
	level  Level

	mu        sync.RWMutex
	publisher port.LogPublisher
}

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func New(level string) *Logger {
	return NewWithWriter(level, os.Stdout)
}

// NewWithWriter writes log lines to w instead of stdout.
func NewWithWriter(level string, w io.Writer) *Logger {
	return &Logger{
		logger: log.New(w, "", 0),
		level:  parseLevel(level),
	}
}

func parseLevel(level string) Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// SetLogPublisher forwards every emitted entry to an external log system.
// Passing nil stops forwarding.
func (l *Logger) SetLogPublisher(publisher port.LogPublisher) {
	l.mu.Lock()
	l.publisher = publisher
	l.mu.Unlock()
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	if l.level <= DEBUG {
		l.log(port.LogLevelDebug, msg, args...)
	}
}

func (l *Logger) Info(msg string, args ...interface{}) {
	if l.level <= INFO {
		l.log(port.LogLevelInfo, msg, args...)
	}
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	if l.level <= WARN {
		l.log(port.LogLevelWarn, msg, args...)
	}
}

func (l *Logger) Error(msg string, err error, args ...interface{}) {
	if l.level <= ERROR {
		if err != nil {
			args = append(args, "error", err.Error())
		}
		l.log(port.LogLevelError, msg, args...)
	}
}

func (l *Logger) log(level port.LogLevel, msg string, args ...interface{}) {
	now := time.Now()
	message := fmt.Sprintf("[%s] [%s] %s", now.Format("2006-01-02 15:04:05"), level, msg)

	if len(args) > 0 {
		message += " |"
		for i := 0; i+1 < len(args); i += 2 {
			message += fmt.Sprintf(" %v=%v", args[i], args[i+1])
		}
	}

	l.logger.Println(message)

	l.mu.RLock()
	publisher := l.publisher
	l.mu.RUnlock()
	if publisher == nil {
		return
	}

	// the publisher buffers, so this only blocks when its buffer is full
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := publisher.Publish(ctx, port.NewLogEntry(level, msg, now, args...)); err != nil {
		l.logger.Println(fmt.Sprintf("[%s] [%s] log publish failed | error=%v", now.Format("2006-01-02 15:04:05"), port.LogLevelWarn, err))
	}
}
