package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dreschagin/uptime-dashboard/internal/application/port"
	"github.com/dreschagin/uptime-dashboard/pkg/logger"
	"github.com/nats-io/nats.go"
)

// StreamName is the JetStream stream that captures every uptime.> subject.
const StreamName = "UPTIME_DASHBOARD"

// NATSPublisher implements port.EventPublisher on NATS JetStream
type NATSPublisher struct {
	nc     *nats.Conn
	js     nats.JetStreamContext
	logger *logger.Logger
}

// NewNATSPublisher connects, then makes sure the dashboard stream exists
func NewNATSPublisher(natsURL string, log *logger.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("uptime-dashboard"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected", "error", err.Error())
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream(nats.PublishAsyncMaxPending(256))
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}

	if _, err := js.StreamInfo(StreamName); err != nil {
		_, err = js.AddStream(&nats.StreamConfig{
			Name:     StreamName,
			Subjects: []string{"uptime.>"},
			MaxAge:   24 * time.Hour,
			Storage:  nats.FileStorage,
		})
		if err != nil {
			log.Warn("Failed to create JetStream stream", "stream", StreamName, "error", err.Error())
		}
	}

	log.Info("Connected to NATS", "url", natsURL)

	return &NATSPublisher{
		nc:     nc,
		js:     js,
		logger: log,
	}, nil
}

// PublishEvent publishes asynchronously; delivery failures surface in the
// JetStream async error handler, not here.
func (p *NATSPublisher) PublishEvent(ctx context.Context, subject string, event port.Event) error {
	data, err := encodeEvent(event)
	if err != nil {
		return err
	}

	msg := nats.NewMsg(subject)
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, event.ID)

	if _, err := p.js.PublishMsgAsync(msg); err != nil {
		p.logger.Error("Failed to publish event", err, "subject", subject)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("Event published", "subject", subject, "size", len(data))
	return nil
}

func encodeEvent(event port.Event) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return data, nil
}

// Close waits briefly for pending async publishes, then drains the connection.
func (p *NATSPublisher) Close() error {
	if p.nc == nil {
		return nil
	}

	select {
	case <-p.js.PublishAsyncComplete():
	case <-time.After(2 * time.Second):
		p.logger.Warn("Timed out waiting for pending NATS publishes")
	}

	p.logger.Info("Closing NATS connection")
	return p.nc.Drain()
}
