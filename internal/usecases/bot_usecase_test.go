package usecases

import (
	"bytes"
	"encoding/json"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBotCatalog(t *testing.T) {
	uc := NewBotUsecase("123", "")
	assert.Equal(t, 69, uc.Catalog().Total())

	data, err := json.Marshal(uc.Catalog())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte(`{"moderation":{"name":"Moderazione","emoji":`)))

	var decoded map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded, 8)
	assert.Equal(t, "Livelli", decoded["levels"]["name"])
}

func TestBotInfo(t *testing.T) {
	uc := NewBotUsecase("123", "")
	start := uc.started
	uc.now = func() time.Time { return start.Add(90 * time.Second) }

	info := uc.Info()
	assert.Equal(t, "Toothless", info.Name)
	assert.Nil(t, info.Avatar)
	assert.Equal(t, 69, info.Commands)
	assert.Equal(t, int64(90000), info.Uptime)
}

func TestBotInvite(t *testing.T) {
	uc := NewBotUsecase("123", "")
	assert.Equal(t, "https://discord.com/api/oauth2/authorize?client_id=123&permissions=8&scope=bot%20applications.commands", uc.InviteURL())

	raw, err := uc.InviteQR(0)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
}
