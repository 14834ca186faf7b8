package infrastructure

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// ExchangeGuard remembers authorization codes that were already submitted.
// Codes are single-use on Discord's side, so a second submission (a double
// click, a reloaded callback page) can be refused without a network call.
type ExchangeGuard struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

func NewExchangeGuard(ttl time.Duration) *ExchangeGuard {
	return &ExchangeGuard{
		seen: make(map[string]time.Time),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Claim returns true the first time a code is seen within the ttl window.
func (g *ExchangeGuard) Claim(code string) bool {
	sum := sha256.Sum256([]byte(code))
	key := hex.EncodeToString(sum[:])

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for k, at := range g.seen {
		if now.Sub(at) > g.ttl {
			delete(g.seen, k)
		}
	}

	if _, exists := g.seen[key]; exists {
		return false
	}
	g.seen[key] = now
	return true
}

// Pending returns the number of remembered codes.
func (g *ExchangeGuard) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.seen)
}
