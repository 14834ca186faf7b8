package entities

type ChannelRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RoleRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// GuildInfo is the Discord-side description of a guild: the channels, roles
// and categories an operator can pick from in the settings forms.
type GuildInfo struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Icon        string       `json:"icon"`
	MemberCount int          `json:"memberCount"`
	Channels    []ChannelRef `json:"channels"`
	Roles       []RoleRef    `json:"roles"`
	Categories  []ChannelRef `json:"categories"`
}

type GuildOverview struct {
	GuildInfo
	Settings GuildSettings `json:"settings"`
}
