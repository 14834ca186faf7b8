package usecases

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"toothless_dashboard/internal/entities"
	"toothless_dashboard/internal/interfaces"
)

type SettingsStore interface {
	Get(category entities.Category, guildID string) (any, bool, error)
	Update(ctx context.Context, category entities.Category, guildID string, raw []byte) (any, error)
	Snapshot(guildID string) entities.GuildSettings
}

type UpdateObserver interface {
	ObserveSettingsUpdate(category string)
}

type DashboardUsecase struct {
	store     SettingsStore
	directory interfaces.GuildDirectory
	publisher interfaces.EventPublisher
	observer  UpdateObserver
}

func NewDashboardUsecase(store SettingsStore, directory interfaces.GuildDirectory, publisher interfaces.EventPublisher, observer UpdateObserver) *DashboardUsecase {
	return &DashboardUsecase{
		store:     store,
		directory: directory,
		publisher: publisher,
		observer:  observer,
	}
}

// GetSettings returns the stored document, or nil when the guild never
// configured the category.
func (u *DashboardUsecase) GetSettings(category entities.Category, guildID string) (any, error) {
	doc, found, err := u.store.Get(category, guildID)
	if err != nil || !found {
		return nil, err
	}
	return doc, nil
}

// UpdateSettings persists raw as the guild's document and then announces it.
// A failed announcement is logged; the update itself already succeeded.
func (u *DashboardUsecase) UpdateSettings(ctx context.Context, category entities.Category, guildID string, raw []byte) (any, error) {
	doc, err := u.store.Update(ctx, category, guildID, raw)
	if err != nil {
		return nil, err
	}
	if u.observer != nil {
		u.observer.ObserveSettingsUpdate(string(category))
	}

	log.WithFields(log.Fields{
		"guild_id": guildID,
		"category": category,
	}).Info("Guild settings updated")

	if u.publisher != nil {
		event := entities.SettingsUpdatedEvent{GuildID: guildID, Category: category, Document: doc}
		if err := u.publisher.Publish(ctx, event); err != nil {
			log.WithFields(log.Fields{
				"guild_id": guildID,
				"category": category,
				"error":    err,
			}).Warn("Failed to publish settings update")
		}
	}
	return doc, nil
}

// GuildOverview combines the guild's Discord-side description with all of its
// settings.
func (u *DashboardUsecase) GuildOverview(ctx context.Context, guildID string) (*entities.GuildOverview, error) {
	info, err := u.directory.GuildInfo(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to load guild %s: %w", guildID, err)
	}
	return &entities.GuildOverview{
		GuildInfo: *info,
		Settings:  u.store.Snapshot(guildID),
	}, nil
}
