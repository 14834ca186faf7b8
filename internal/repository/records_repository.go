package repository

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"toothless_dashboard/internal/entities"
	"toothless_dashboard/internal/interfaces"
)

const (
	EconomyCollection     = "economy-records"
	LevelRecordCollection = "level-records"
)

// RecordRepository reads the collections the bot runtime writes. Each call
// goes back to the backend, so leaderboards follow the bot without a restart.
type RecordRepository struct {
	backend  interfaces.Backend
	observer CorruptionObserver
}

func NewRecordRepository(backend interfaces.Backend, observer CorruptionObserver) *RecordRepository {
	return &RecordRepository{backend: backend, observer: observer}
}

// Economy returns the guild's balances in the order they appear in the
// persisted document.
func (r *RecordRepository) Economy(ctx context.Context, guildID string) ([]entities.UserRecord[entities.EconomyRecord], error) {
	return readRecords(ctx, r, EconomyCollection, guildID, func(v gjson.Result) entities.EconomyRecord {
		return entities.EconomyRecord{
			Wallet: v.Get("wallet").Int(),
			Bank:   v.Get("bank").Int(),
		}
	})
}

func (r *RecordRepository) Levels(ctx context.Context, guildID string) ([]entities.UserRecord[entities.LevelRecord], error) {
	return readRecords(ctx, r, LevelRecordCollection, guildID, func(v gjson.Result) entities.LevelRecord {
		return entities.LevelRecord{
			Level:   v.Get("level").Int(),
			XP:      v.Get("xp").Int(),
			TotalXP: v.Get("totalXp").Int(),
		}
	})
}

func readRecords[T any](ctx context.Context, r *RecordRepository, collection, guildID string, decode func(gjson.Result) T) ([]entities.UserRecord[T], error) {
	data, err := r.backend.Load(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}
	records := []entities.UserRecord[T]{}
	if data == nil {
		return records, nil
	}
	if !gjson.ValidBytes(data) {
		r.corrupted(collection, "collection is not valid JSON")
		return records, nil
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		r.corrupted(collection, "collection is not a JSON object")
		return records, nil
	}

	// Guild ids are looked up by exact key; gjson paths would treat
	// characters such as '.' or '*' specially.
	var guild gjson.Result
	root.ForEach(func(key, value gjson.Result) bool {
		if key.String() == guildID {
			guild = value
		}
		return true
	})
	if !guild.Exists() {
		return records, nil
	}
	if !guild.IsObject() {
		r.corrupted(collection, "guild entry is not a JSON object")
		return records, nil
	}

	// A repeated user id keeps its first position and its last value.
	seen := map[string]int{}
	guild.ForEach(func(userID, value gjson.Result) bool {
		id := userID.String()
		if !value.IsObject() {
			log.WithFields(log.Fields{
				"collection": collection,
				"guild_id":   guildID,
				"user_id":    id,
			}).Warn("Skipping malformed user record")
			return true
		}
		record := entities.UserRecord[T]{UserID: id, Record: decode(value)}
		if i, ok := seen[id]; ok {
			records[i] = record
			return true
		}
		seen[id] = len(records)
		records = append(records, record)
		return true
	})
	return records, nil
}

func (r *RecordRepository) corrupted(collection, reason string) {
	log.WithFields(log.Fields{
		"collection": collection,
		"reason":     reason,
	}).Warn("Ignoring unreadable record collection")
	if r.observer != nil {
		r.observer.ObserveCorruption(collection)
	}
}
