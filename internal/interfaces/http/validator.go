package http

import (
	"regexp"
	"strings"

	"toothless_dashboard/internal/entities"
)

const MaxGuildIDLength = 32

var guildIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidGuildID checks that a guild id is safe to use as a storage key.
func ValidGuildID(s string) bool {
	if s == "" || len(s) > MaxGuildIDLength {
		return false
	}
	return guildIDPattern.MatchString(s)
}

// ParseCategory maps a route segment to a settings category. The frontend
// posts welcome settings to "welcomer".
func ParseCategory(s string) (entities.Category, bool) {
	switch strings.ToLower(s) {
	case "welcome", "welcomer":
		return entities.CategoryWelcome, true
	case "log", "logs":
		return entities.CategoryLog, true
	case "tickets", "ticket":
		return entities.CategoryTickets, true
	case "levels", "level":
		return entities.CategoryLevels, true
	}
	return "", false
}
