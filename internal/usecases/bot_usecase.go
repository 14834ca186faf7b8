package usecases

import (
	"fmt"
	"net/url"
	"time"

	"github.com/skip2/go-qrcode"

	"toothless_dashboard/internal/entities"
)

// InvitePermissions requests Administrator for the bot.
const InvitePermissions = "8"

// DefaultCatalog lists the bot's slash-command groups.
var DefaultCatalog = entities.CommandCatalog{
	{Key: "moderation", Name: "Moderazione", Emoji: "🛡️", Color: "#ED4245", Count: 11},
	{Key: "economy", Name: "Economia", Emoji: "💰", Color: "#FFD700", Count: 12},
	{Key: "fun", Name: "Fun", Emoji: "🎮", Color: "#9B59B6", Count: 12},
	{Key: "utility", Name: "Utility", Emoji: "🔧", Color: "#3498DB", Count: 13},
	{Key: "tickets", Name: "Tickets", Emoji: "🎫", Color: "#E91E63", Count: 5},
	{Key: "giveaway", Name: "Giveaway", Emoji: "🎉", Color: "#FF69B4", Count: 3},
	{Key: "levels", Name: "Livelli", Emoji: "⭐", Color: "#FFD700", Count: 5},
	{Key: "admin", Name: "Admin", Emoji: "⚙️", Color: "#2C3E50", Count: 8},
}

type BotUsecase struct {
	clientID   string
	apiBaseURL string
	catalog    entities.CommandCatalog
	started    time.Time
	now        func() time.Time
}

func NewBotUsecase(clientID, apiBaseURL string) *BotUsecase {
	if apiBaseURL == "" {
		apiBaseURL = DefaultDiscordAPI
	}
	return &BotUsecase{
		clientID:   clientID,
		apiBaseURL: apiBaseURL,
		catalog:    DefaultCatalog,
		started:    time.Now(),
		now:        time.Now,
	}
}

func (uc *BotUsecase) Catalog() entities.CommandCatalog {
	return uc.catalog
}

// Info reports the dashboard's view of the bot. Guild and user counts are
// placeholders until the bot publishes its own statistics.
func (uc *BotUsecase) Info() entities.BotInfo {
	return entities.BotInfo{
		Name:              "Toothless",
		Guilds:            10,
		Users:             1500,
		Commands:          uc.catalog.Total(),
		CommandCategories: uc.catalog,
		Uptime:            uc.now().Sub(uc.started).Milliseconds(),
	}
}

func (uc *BotUsecase) InviteURL() string {
	return fmt.Sprintf("%s/oauth2/authorize?client_id=%s&permissions=%s&scope=bot%%20applications.commands",
		uc.apiBaseURL, url.QueryEscape(uc.clientID), InvitePermissions)
}

// InviteQR renders the invite URL as a PNG.
func (uc *BotUsecase) InviteQR(size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(uc.InviteURL(), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to render invite QR: %w", err)
	}
	return png, nil
}
