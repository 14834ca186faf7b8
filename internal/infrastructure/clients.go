package infrastructure

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"toothless_dashboard/internal/entities"
)

// DiscordDirectory answers guild questions through the bot's REST session.
// The gateway is never opened; only REST endpoints are used.
type DiscordDirectory struct {
	Session *discordgo.Session
}

func NewDiscordDirectory(token string) (*DiscordDirectory, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	return &DiscordDirectory{Session: session}, nil
}

// HasBot reports, for every requested guild, whether the bot is a member.
func (d *DiscordDirectory) HasBot(ctx context.Context, guildIDs []string) (map[string]bool, error) {
	member := make(map[string]bool)
	after := ""
	for {
		page, err := d.Session.UserGuilds(200, "", after, false, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("list bot guilds: %w", err)
		}
		for _, g := range page {
			member[g.ID] = true
		}
		if len(page) < 200 {
			break
		}
		after = page[len(page)-1].ID
	}

	result := make(map[string]bool, len(guildIDs))
	for _, id := range guildIDs {
		result[id] = member[id]
	}
	return result, nil
}

func (d *DiscordDirectory) GuildInfo(ctx context.Context, guildID string) (*entities.GuildInfo, error) {
	guild, err := d.Session.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch guild %s: %w", guildID, err)
	}
	channels, err := d.Session.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch channels of %s: %w", guildID, err)
	}
	roles, err := d.Session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch roles of %s: %w", guildID, err)
	}

	info := &entities.GuildInfo{
		ID:          guild.ID,
		Name:        guild.Name,
		Icon:        guild.Icon,
		MemberCount: guild.MemberCount,
		Channels:    []entities.ChannelRef{},
		Roles:       []entities.RoleRef{},
		Categories:  []entities.ChannelRef{},
	}
	if info.MemberCount == 0 {
		info.MemberCount = guild.ApproximateMemberCount
	}

	for _, ch := range channels {
		switch ch.Type {
		case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews:
			info.Channels = append(info.Channels, entities.ChannelRef{ID: ch.ID, Name: ch.Name})
		case discordgo.ChannelTypeGuildCategory:
			info.Categories = append(info.Categories, entities.ChannelRef{ID: ch.ID, Name: ch.Name})
		}
	}
	for _, r := range roles {
		if r.Managed || r.ID == guildID {
			continue // bot roles and @everyone cannot be assigned
		}
		info.Roles = append(info.Roles, entities.RoleRef{ID: r.ID, Name: r.Name, Color: fmt.Sprintf("#%06X", r.Color)})
	}

	log.WithFields(log.Fields{
		"guild_id": guildID,
		"channels": len(info.Channels),
		"roles":    len(info.Roles),
	}).Debug("Fetched guild info from Discord")
	return info, nil
}

// DemoDirectory is used when no bot token is configured: every guild is
// reported as having the bot, with a fixed set of channels and roles.
type DemoDirectory struct{}

func (DemoDirectory) HasBot(_ context.Context, guildIDs []string) (map[string]bool, error) {
	result := make(map[string]bool, len(guildIDs))
	for _, id := range guildIDs {
		result[id] = true
	}
	return result, nil
}

func (DemoDirectory) GuildInfo(_ context.Context, guildID string) (*entities.GuildInfo, error) {
	return &entities.GuildInfo{
		ID:          guildID,
		Name:        "Server Demo",
		MemberCount: 150,
		Channels: []entities.ChannelRef{
			{ID: "1", Name: "generale"},
			{ID: "2", Name: "benvenuto"},
			{ID: "3", Name: "annunci"},
			{ID: "4", Name: "moderazione-log"},
			{ID: "5", Name: "ticket-support"},
		},
		Roles: []entities.RoleRef{
			{ID: "r1", Name: "Admin", Color: "#ED4245"},
			{ID: "r2", Name: "Moderatore", Color: "#FEE75C"},
			{ID: "r3", Name: "VIP", Color: "#9B59B6"},
			{ID: "r4", Name: "Membro", Color: "#57F287"},
			{ID: "r5", Name: "Support Team", Color: "#3498DB"},
		},
		Categories: []entities.ChannelRef{
			{ID: "c1", Name: "GENERALE"},
			{ID: "c2", Name: "TICKET"},
			{ID: "c3", Name: "ADMIN"},
		},
	}, nil
}
