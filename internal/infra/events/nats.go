package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

type NATSPublisher struct {
	conn *nats.Conn
}

func Connect(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("auction-house"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("nats disconnected", slog.Any("error", err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("nats reconnected", slog.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(Envelope{Subject: subject, OccurredAt: time.Now().UTC(), Data: payload})
	if err != nil {
		return fmt.Errorf("encode %s event: %w", subject, err)
	}
	return p.conn.Publish(subject, data)
}

func (p *NATSPublisher) Close() {
	if p.conn != nil {
		p.conn.Drain()
	}
}
