package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// TurnRegistry tracks in-flight turns per chat. It is advisory only: the
// message store's append-then-read-by-time ordering is the safety net when
// two submissions race, so a stale entry never blocks a turn.
type TurnRegistry struct {
	cache *cache.Cache
}

func NewTurnRegistry() *TurnRegistry {
	// Entries expire after 2 minutes in case a turn never reaches its
	// terminal state (process crash mid-stream).
	c := cache.New(2*time.Minute, 30*time.Second)
	return &TurnRegistry{
		cache: c,
	}
}

// TryAcquire marks a chat as having an in-flight turn. Returns false when a
// turn is already running for that chat.
func (r *TurnRegistry) TryAcquire(chatID string) bool {
	err := r.cache.Add(chatID, time.Now(), cache.DefaultExpiration)
	return err == nil
}

func (r *TurnRegistry) Release(chatID string) {
	r.cache.Delete(chatID)
}

func (r *TurnRegistry) InFlight(chatID string) bool {
	_, found := r.cache.Get(chatID)
	return found
}
