package infra

import (
	"time"
)

const (
	reconnectBase = 1 * time.Second
	reconnectMax  = 30 * time.Second
)

// ReconnectBackoff returns the delay before the next websocket redial:
// reconnectBase * 2^attempt, capped at reconnectMax. A negative attempt
// counts as the first one.
func ReconnectBackoff(attempt int) time.Duration {
	if attempt < 0 {
		return reconnectBase
	}
	// 2^30s already far exceeds the cap; avoid the overflowing shift.
	if attempt > 30 {
		return reconnectMax
	}

	d := reconnectBase * time.Duration(1<<attempt)
	if d > reconnectMax {
		return reconnectMax
	}
	return d
}
