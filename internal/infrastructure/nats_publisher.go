package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"toothless_dashboard/internal/entities"
)

// SettingsSubjectPrefix is the subject root for settings notifications;
// the category name is appended.
const SettingsSubjectPrefix = "toothless.settings."

type eventEnvelope struct {
	EventID   string    `json:"eventId"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	GuildID   string    `json:"guildId"`
	Payload   any       `json:"payload"`
}

// NATSEventPublisher notifies the bot process that a guild's settings changed.
type NATSEventPublisher struct {
	nc *nats.Conn
}

func NewNATSEventPublisher(url string) (*NATSEventPublisher, error) {
	opts := []nats.Option{
		nats.Name("toothless-dashboard"),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Error("NATS disconnected with error")
			} else {
				log.Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.WithField("servers", url).Info("Connected to NATS")
	return &NATSEventPublisher{nc: nc}, nil
}

// Publish sends the event on toothless.settings.<category>.
func (p *NATSEventPublisher) Publish(ctx context.Context, event entities.SettingsUpdatedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encodeSettingsEvent(event, time.Now().UTC())
	if err != nil {
		return err
	}
	subject := SettingsSubjectPrefix + string(event.Category)
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

func (p *NATSEventPublisher) Close() error {
	if p.nc == nil {
		return nil
	}
	return p.nc.Drain()
}

func encodeSettingsEvent(event entities.SettingsUpdatedEvent, at time.Time) ([]byte, error) {
	data, err := json.Marshal(eventEnvelope{
		EventID:   uuid.NewString(),
		Type:      "settings.updated",
		Timestamp: at,
		GuildID:   event.GuildID,
		Payload:   event.Document,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode settings event: %w", err)
	}
	return data, nil
}

// NoopEventPublisher drops every event. Used when NATS_URL is unset.
type NoopEventPublisher struct{}

func NewNoopEventPublisher() *NoopEventPublisher {
	return &NoopEventPublisher{}
}

func (n *NoopEventPublisher) Publish(context.Context, entities.SettingsUpdatedEvent) error {
	return nil
}

func (n *NoopEventPublisher) Close() error {
	return nil
}
