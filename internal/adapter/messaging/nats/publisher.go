package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/LunZaiZai0223/YelpCamp-v2/internal/platform/logger"
)

// Publisher broadcasts lifecycle events (campground.created, review.deleted,
// user.registered, ...) to NATS.
type Publisher struct {
	conn   *nats.Conn
	logger *logger.Logger
}

func NewPublisher(url string, log *logger.Logger, appName string) (*Publisher, error) {
	log.Info("NATS Publisher: connecting...", zap.String("url", url))

	opts := []nats.Option{
		nats.Name(fmt.Sprintf("%s NATS Publisher", appName)),
		nats.Timeout(10 * time.Second),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("NATS connection closed")
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		log.Error("NATS Publisher: failed to connect", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	log.Info("NATS Publisher: successfully connected", zap.String("url", conn.ConnectedUrl()))

	return &Publisher{
		conn:   conn,
		logger: log.Named("NATSPublisher"),
	}, nil
}

func (p *Publisher) Publish(ctx context.Context, subject string, data interface{}) error {
	p.logger.Debug("NATS Publisher: publishing message", zap.String("subject", subject))

	jsonData, err := json.Marshal(data)
	if err != nil {
		p.logger.Error("NATS Publisher: failed to marshal data to JSON", zap.String("subject", subject), zap.Error(err))
		return fmt.Errorf("failed to marshal data for subject %s: %w", subject, err)
	}

	if err := p.conn.Publish(subject, jsonData); err != nil {
		p.logger.Error("NATS Publisher: failed to publish message", zap.String("subject", subject), zap.Error(err))
		return fmt.Errorf("failed to publish message to subject %s: %w", subject, err)
	}

	p.logger.Info("NATS Publisher: message published", zap.String("subject", subject), zap.Int("data_size_bytes", len(jsonData)))
	return nil
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	p.logger.Info("NATS Publisher: closing connection...")
	if p.conn != nil && !p.conn.IsClosed() {
		if err := p.conn.Drain(); err != nil {
			p.logger.Error("NATS Publisher: failed to drain connection", zap.Error(err))
		}
		p.conn.Close()
	}
}
