package usecases

import (
	"cmp"
	"context"
	"slices"

	"toothless_dashboard/internal/entities"
)

// LeaderboardSize is the number of entries a leaderboard shows.
const LeaderboardSize = 20

// Rank orders records by key, highest first, keeping the input order between
// equal keys, and returns at most LeaderboardSize of them. The input is not
// modified.
func Rank[T any](records []entities.UserRecord[T], key func(T) int64) []entities.UserRecord[T] {
	ranked := slices.Clone(records)
	slices.SortStableFunc(ranked, func(a, b entities.UserRecord[T]) int {
		return cmp.Compare(key(b.Record), key(a.Record))
	})
	if len(ranked) > LeaderboardSize {
		ranked = ranked[:LeaderboardSize]
	}
	return ranked
}

type RecordSource interface {
	Economy(ctx context.Context, guildID string) ([]entities.UserRecord[entities.EconomyRecord], error)
	Levels(ctx context.Context, guildID string) ([]entities.UserRecord[entities.LevelRecord], error)
}

type LeaderboardUsecase struct {
	records RecordSource
}

func NewLeaderboardUsecase(records RecordSource) *LeaderboardUsecase {
	return &LeaderboardUsecase{records: records}
}

func (uc *LeaderboardUsecase) Economy(ctx context.Context, guildID string) ([]entities.EconomyEntry, error) {
	records, err := uc.records.Economy(ctx, guildID)
	if err != nil {
		return nil, err
	}
	ranked := Rank(records, entities.EconomyRecord.Total)
	entries := make([]entities.EconomyEntry, 0, len(ranked))
	for _, r := range ranked {
		entries = append(entries, entities.EconomyEntry{
			UserID: r.UserID,
			Total:  r.Record.Total(),
			Wallet: r.Record.Wallet,
			Bank:   r.Record.Bank,
		})
	}
	return entries, nil
}

func (uc *LeaderboardUsecase) Levels(ctx context.Context, guildID string) ([]entities.LevelEntry, error) {
	records, err := uc.records.Levels(ctx, guildID)
	if err != nil {
		return nil, err
	}
	ranked := Rank(records, func(r entities.LevelRecord) int64 { return r.TotalXP })
	entries := make([]entities.LevelEntry, 0, len(ranked))
	for _, r := range ranked {
		entries = append(entries, entities.LevelEntry{
			UserID:  r.UserID,
			Level:   r.Record.Level,
			XP:      r.Record.XP,
			TotalXP: r.Record.TotalXP,
		})
	}
	return entries, nil
}
