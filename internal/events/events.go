package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/yukikurage/rbac-task-api/internal/config"
)

type EventType string

const (
	TaskCreated EventType = "created"
	TaskUpdated EventType = "updated"
	TaskDeleted EventType = "deleted"
)

// Event describes a task lifecycle change.
type Event struct {
	Type       EventType `json:"type"`
	TaskID     string    `json:"taskId"`
	ActorID    string    `json:"actorId"`
	AssignedTo string    `json:"assignedTo"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher announces task lifecycle events. Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

// natsConn is the subset of *nats.Conn used for publishing.
type natsConn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

type NATSPublisher struct {
	conn   natsConn
	prefix string
}

// Connect dials the configured NATS server. An empty URL disables publishing.
func Connect(cfg config.NATSConfig, log zerolog.Logger) (Publisher, error) {
	if cfg.URL == "" {
		log.Info().Msg("NATS_URL not set, task events disabled")
		return NoopPublisher{}, nil
	}

	nc, err := nats.Connect(cfg.URL,
		nats.Name("rbac-task-api"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Info().Str("url", cfg.URL).Msg("NATS connection established")
	return NewNATSPublisher(nc, cfg.SubjectPrefix), nil
}

func NewNATSPublisher(conn natsConn, prefix string) *NATSPublisher {
	return &NATSPublisher{conn: conn, prefix: prefix}
}

// Subject returns the subject an event of type t is published on.
func (p *NATSPublisher) Subject(t EventType) string {
	return p.prefix + "." + string(t)
}

func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.conn.Publish(p.Subject(event.Type), data); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}

// Close flushes pending messages before closing the connection.
func (p *NATSPublisher) Close() {
	_ = p.conn.Drain()
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

func (NoopPublisher) Close() {}
