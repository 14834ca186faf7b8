package entities

// EconomyRecord is one member's balance as written by the bot runtime.
type EconomyRecord struct {
	Wallet int64 `json:"wallet"`
	Bank   int64 `json:"bank"`
}

// Total is the ranking key of the economy leaderboard.
func (r EconomyRecord) Total() int64 {
	return r.Wallet + r.Bank
}

// LevelRecord is one member's progression as written by the bot runtime.
type LevelRecord struct {
	Level   int64 `json:"level"`
	XP      int64 `json:"xp"`
	TotalXP int64 `json:"totalXp"`
}

// UserRecord pairs a record with its owner, in the enumeration order of the
// backing collection.
type UserRecord[T any] struct {
	UserID string
	Record T
}

type EconomyEntry struct {
	UserID string `json:"userId"`
	Total  int64  `json:"total"`
	Wallet int64  `json:"wallet"`
	Bank   int64  `json:"bank"`
}

type LevelEntry struct {
	UserID  string `json:"userId"`
	Level   int64  `json:"level"`
	XP      int64  `json:"xp"`
	TotalXP int64  `json:"totalXp"`
}
