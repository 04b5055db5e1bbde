// Package events announces comic changes on NATS.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"

	"comicgallery/internal/comic"
	"comicgallery/internal/platform/logging"
)

type Publisher struct {
	nc      *nats.Conn
	subject string
}

func NewPublisher(addr, subject string) (*Publisher, error) {
	nc, err := nats.Connect(addr,
		nats.Name("comicgallery"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logging.Warn().Err(err).Msg("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logging.Info().Str("url", c.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		logging.Error().Err(err).Str("address", addr).Msg("failed to connect to nats")
		return nil, err
	}
	return &Publisher{nc: nc, subject: subject}, nil
}

func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}

// Notify publishes change as JSON and waits for the server to acknowledge the flush.
func (p *Publisher) Notify(ctx context.Context, change comic.Change) error {
	if p.nc == nil {
		return nil
	}
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("encode change: %w", err)
	}
	if err := p.nc.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", p.subject, err)
	}
	if err := p.nc.FlushWithContext(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("failed to flush nats connection")
	}
	return nil
}

// Ping reports whether the connection is usable.
func (p *Publisher) Ping(ctx context.Context) error {
	if p.nc == nil || !p.nc.IsConnected() {
		return fmt.Errorf("nats not connected")
	}
	return nil
}
