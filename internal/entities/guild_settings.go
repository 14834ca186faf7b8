package entities

// Category names one independently stored settings document per guild.
type Category string

const (
	CategoryWelcome Category = "welcome"
	CategoryLog     Category = "log"
	CategoryTickets Category = "tickets"
	CategoryLevels  Category = "levels"
)

// Categories lists every settings category in dashboard order.
var Categories = []Category{CategoryWelcome, CategoryLog, CategoryTickets, CategoryLevels}

// Embed is the optional rich-embed variant of the welcome message.
type Embed struct {
	Title       string `json:"title" validate:"max=256"`
	Description string `json:"description" validate:"max=4096"`
	Color       string `json:"color" validate:"omitempty,rgbhex"`
}

type WelcomeSettings struct {
	Enabled      bool   `json:"enabled"`
	ChannelID    string `json:"channelId" validate:"max=32"`
	Message      string `json:"message" validate:"max=2000"`
	Embed        *Embed `json:"embed"`
	RoleID       string `json:"roleId" validate:"max=32"`
	LeaveEnabled bool   `json:"leaveEnabled"`
	LeaveMessage string `json:"leaveMessage" validate:"max=2000"`
}

type LogSettings struct {
	Enabled   bool   `json:"enabled"`
	ChannelID string `json:"channelId" validate:"max=32"`
}

type TicketSettings struct {
	Enabled        bool   `json:"enabled"`
	CategoryID     string `json:"categoryId" validate:"max=32"`
	SupportRoleID  string `json:"supportRoleId" validate:"max=32"`
	WelcomeMessage string `json:"welcomeMessage" validate:"max=2000"`
}

// XPPerMessage holds the named bounds ("min", "max") of xp granted per message.
type XPPerMessage map[string]int

type LevelSettings struct {
	Enabled           bool         `json:"enabled"`
	AnnounceChannelID string       `json:"announceChannelId" validate:"max=32"`
	XPPerMessage      XPPerMessage `json:"xpPerMessage" validate:"omitempty,dive,keys,oneof=min max,endkeys,min=1,max=100"`
}

// GuildSettings is the per-guild view over all four categories. A nil field
// means the category was never configured.
type GuildSettings struct {
	Welcome *WelcomeSettings `json:"welcome"`
	Log     *LogSettings     `json:"log"`
	Tickets *TicketSettings  `json:"tickets"`
	Levels  *LevelSettings   `json:"levels"`
}

// SettingsUpdatedEvent is published after a settings document was persisted.
type SettingsUpdatedEvent struct {
	GuildID  string   `json:"guildId"`
	Category Category `json:"category"`
	Document any      `json:"document"`
}
