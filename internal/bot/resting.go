package bot

import (
	"time"

	"github.com/Operatorliquid/hyper-bot/internal/domain"
)

// restingEntry is one tracked open order.
type restingEntry struct {
	ID       any // int64 or string, as the exchange issued it
	Side     domain.Side
	PlacedAt time.Time
}

// restingTable tracks currently-resting orders for TTL eviction.
// Owned exclusively by the quoting loop; no locking needed.
type restingTable struct {
	entries map[any]restingEntry
}

func newRestingTable() *restingTable {
	return &restingTable{entries: make(map[any]restingEntry)}
}

func (t *restingTable) Track(id any, side domain.Side, placedAt time.Time) {
	t.entries[id] = restingEntry{ID: id, Side: side, PlacedAt: placedAt}
}

// Expired returns the entries whose age has reached ttl.
func (t *restingTable) Expired(now time.Time, ttl time.Duration) []restingEntry {
	var out []restingEntry
	for _, e := range t.entries {
		if now.Sub(e.PlacedAt) >= ttl {
			out = append(out, e)
		}
	}
	return out
}

func (t *restingTable) Remove(id any) {
	delete(t.entries, id)
}

func (t *restingTable) Has(id any) bool {
	_, ok := t.entries[id]
	return ok
}

func (t *restingTable) Len() int {
	return len(t.entries)
}
