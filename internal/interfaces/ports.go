package interfaces

import (
	"context"

	"toothless_dashboard/internal/entities"
)

// Backend persists whole collections as JSON documents. Load returns nil, nil
// when the collection was never saved.
type Backend interface {
	Load(ctx context.Context, collection string) ([]byte, error)
	Save(ctx context.Context, collection string, document []byte) error
	Close() error
}

// GuildDirectory answers Discord-side questions about guilds through the bot
// account.
type GuildDirectory interface {
	HasBot(ctx context.Context, guildIDs []string) (map[string]bool, error)
	GuildInfo(ctx context.Context, guildID string) (*entities.GuildInfo, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event entities.SettingsUpdatedEvent) error
}
