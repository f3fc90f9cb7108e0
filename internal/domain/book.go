package domain

import "time"

// Level is one price level of the order book.
type Level struct {
	Px float64
	Sz float64
}

// Snapshot is the current best-known state of the order book for one
// market. It is immutable once published: the feed replaces the whole
// value on every update, never one side at a time.
type Snapshot struct {
	Bids       []Level // best (highest) first
	Asks       []Level // best (lowest) first
	ReceivedAt time.Time
}

// BestBid returns the top bid price, if any.
func (s *Snapshot) BestBid() (float64, bool) {
	if s == nil || len(s.Bids) == 0 {
		return 0, false
	}
	return s.Bids[0].Px, true
}

// BestAsk returns the top ask price, if any.
func (s *Snapshot) BestAsk() (float64, bool) {
	if s == nil || len(s.Asks) == 0 {
		return 0, false
	}
	return s.Asks[0].Px, true
}

// SpreadPct returns the bid/ask spread in percent of the bid.
// Returns 0 when either side is absent or the bid is not positive.
// A crossed book yields a negative spread; callers gate on the spread
// and therefore never quote into one.
func SpreadPct(bid, ask float64) float64 {
	if bid <= 0 || ask <= 0 {
		return 0
	}
	return (ask - bid) / bid * 100.0
}
