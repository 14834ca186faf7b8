package infrastructure

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoDirectory(t *testing.T) {
	d := DemoDirectory{}
	ctx := context.Background()

	member, err := d.HasBot(ctx, []string{"1", "2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"1": true, "2": true}, member)

	info, err := d.GuildInfo(ctx, "777")
	require.NoError(t, err)
	assert.Equal(t, "777", info.ID)
	assert.Equal(t, "Server Demo", info.Name)
	assert.Equal(t, 150, info.MemberCount)
	assert.Len(t, info.Channels, 5)
	assert.Len(t, info.Roles, 5)
	assert.Len(t, info.Categories, 3)
	assert.Equal(t, "#ED4245", info.Roles[0].Color)
}

func TestNewDiscordDirectory(t *testing.T) {
	d, err := NewDiscordDirectory("not-a-real-token")
	require.NoError(t, err)
	assert.Equal(t, "Bot not-a-real-token", d.Session.Token)
}
