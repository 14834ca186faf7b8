package infrastructure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExchangeGuardClaimsOnce(t *testing.T) {
	g := NewExchangeGuard(10 * time.Minute)

	assert.True(t, g.Claim("code-a"))
	assert.False(t, g.Claim("code-a"))
	assert.True(t, g.Claim("code-b"))
	assert.Equal(t, 2, g.Pending())
}

func TestExchangeGuardForgetsExpiredCodes(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	g := NewExchangeGuard(time.Minute)
	g.now = func() time.Time { return now }

	assert.True(t, g.Claim("code"))
	now = now.Add(2 * time.Minute)
	assert.True(t, g.Claim("code"))
	assert.Equal(t, 1, g.Pending())
}
