package domain

import (
	"math"
	"testing"
)

func TestSnapshot_Best(t *testing.T) {
	t.Run("Both Sides", func(t *testing.T) {
		s := &Snapshot{
			Bids: []Level{{Px: 100.0, Sz: 2}, {Px: 99.5, Sz: 1}},
			Asks: []Level{{Px: 100.1, Sz: 3}},
		}
		if bid, ok := s.BestBid(); !ok || bid != 100.0 {
			t.Errorf("BestBid = %v, %v; want 100, true", bid, ok)
		}
		if ask, ok := s.BestAsk(); !ok || ask != 100.1 {
			t.Errorf("BestAsk = %v, %v; want 100.1, true", ask, ok)
		}
	})

	t.Run("Empty Side", func(t *testing.T) {
		s := &Snapshot{Asks: []Level{{Px: 100.1, Sz: 3}}}
		if _, ok := s.BestBid(); ok {
			t.Error("BestBid should report absent on empty side")
		}
	})

	t.Run("Nil Snapshot", func(t *testing.T) {
		var s *Snapshot
		if _, ok := s.BestBid(); ok {
			t.Error("nil snapshot should report no price")
		}
	})
}

func TestSpreadPct(t *testing.T) {
	tests := []struct {
		bid, ask float64
		want     float64
	}{
		{100.0, 100.05, 0.05},
		{100.0, 100.10, 0.1},
		{100.0, 100.0, 0.0},
		{0.0, 100.0, 0.0},   // no bid
		{100.0, 0.0, 0.0},   // no ask
		{100.0, 99.0, -1.0}, // crossed book: negative, gate rejects it
	}

	for _, tt := range tests {
		got := SpreadPct(tt.bid, tt.ask)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("SpreadPct(%v, %v) = %v; want %v", tt.bid, tt.ask, got, tt.want)
		}
	}
}
