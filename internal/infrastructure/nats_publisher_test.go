package infrastructure

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toothless_dashboard/internal/entities"
)

func TestEncodeSettingsEvent(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	data, err := encodeSettingsEvent(entities.SettingsUpdatedEvent{
		GuildID:  "g1",
		Category: entities.CategoryLog,
		Document: &entities.LogSettings{Enabled: true, ChannelID: "9"},
	}, at)
	require.NoError(t, err)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(data, &envelope))
	assert.NotEmpty(t, envelope["eventId"])
	assert.Equal(t, "settings.updated", envelope["type"])
	assert.Equal(t, "2024-05-01T12:00:00Z", envelope["timestamp"])
	assert.Equal(t, "g1", envelope["guildId"])
	assert.Equal(t, map[string]any{"enabled": true, "channelId": "9"}, envelope["payload"])
}

func TestNoopEventPublisher(t *testing.T) {
	p := NewNoopEventPublisher()
	assert.NoError(t, p.Publish(context.Background(), entities.SettingsUpdatedEvent{GuildID: "g1"}))
	assert.NoError(t, p.Close())
}
