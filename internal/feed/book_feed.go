// Package feed maintains one continuously-updated order-book snapshot
// from Hyperliquid's push l2Book subscription.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Operatorliquid/hyper-bot/internal/domain"
	"github.com/Operatorliquid/hyper-bot/internal/infra"
)

// ReadyTimeout bounds the startup wait for the first snapshot.
const ReadyTimeout = 15 * time.Second

// BookFeed subscribes to the top-of-book channel for one market and
// publishes full snapshots to a single consumer. Both sides of the
// book are always replaced together; a message missing either side is
// discarded and the previous snapshot retained.
type BookFeed struct {
	coin   string
	url    string
	worker *infra.WSWorker

	// Single-producer/single-consumer with a bounded buffer of one:
	// the newest snapshot overwrites an unconsumed older one, so the
	// reader never blocks the connection goroutine.
	updates chan *domain.Snapshot

	ready     atomic.Bool
	firstOnce sync.Once
	first     chan struct{}

	// Consumer-owned; only Latest touches it.
	last *domain.Snapshot

	now func() time.Time
}

// New creates a feed for the resolved market id. Start must be called
// before Latest returns anything.
func New(coin, wsURL string) *BookFeed {
	f := &BookFeed{
		coin:    coin,
		url:     wsURL,
		updates: make(chan *domain.Snapshot, 1),
		first:   make(chan struct{}),
		now:     time.Now,
	}
	f.worker = infra.NewWSWorker(f)
	return f
}

// Start launches the connection loop.
func (f *BookFeed) Start(ctx context.Context) {
	f.worker.Start(ctx)
}

// Stop tears the connection down.
func (f *BookFeed) Stop() {
	f.worker.Stop()
}

// WaitReady blocks until the first snapshot arrives, the context ends,
// or ReadyTimeout passes. Startup treats a timeout as fatal.
func (f *BookFeed) WaitReady(ctx context.Context) error {
	select {
	case <-f.first:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(ReadyTimeout):
		return fmt.Errorf("order book for %s not ready after %s", f.coin, ReadyTimeout)
	}
}

// Latest returns the newest snapshot. ok is false while the feed is
// disconnected or before the first update: consumers must treat that
// as "no price available", not as stale data.
func (f *BookFeed) Latest() (*domain.Snapshot, bool) {
	select {
	case s := <-f.updates:
		f.last = s
	default:
	}
	if f.last == nil || !f.ready.Load() {
		return nil, false
	}
	return f.last, true
}

// --- infra.StreamHandler ---

func (f *BookFeed) ID() string  { return "l2book:" + f.coin }
func (f *BookFeed) URL() string { return f.url }

func (f *BookFeed) OnConnect(ctx context.Context, conn *websocket.Conn) error {
	sub := map[string]any{
		"method": "subscribe",
		"subscription": map[string]any{
			"type": "l2Book",
			"coin": f.coin,
		},
	}
	b, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	if err := f.worker.Write(websocket.TextMessage, b); err != nil {
		return err
	}
	slog.Info("subscribed l2Book", "coin", f.coin)
	return nil
}

func (f *BookFeed) OnMessage(ctx context.Context, msg []byte) {
	var m bookMessage
	if err := json.Unmarshal(msg, &m); err != nil {
		slog.Warn("feed parse error", "coin", f.coin, "err", err)
		return
	}
	if m.Channel != "l2Book" {
		return
	}
	// levels[0] is bids, levels[1] is asks; anything less is a
	// partial shape and the previous snapshot stands.
	if len(m.Data.Levels) < 2 {
		slog.Warn("feed message missing a side, discarded", "coin", f.coin)
		return
	}

	snap := &domain.Snapshot{
		Bids:       toLevels(m.Data.Levels[0]),
		Asks:       toLevels(m.Data.Levels[1]),
		ReceivedAt: f.now(),
	}
	f.publish(snap)
}

func (f *BookFeed) OnPing(ctx context.Context, conn *websocket.Conn) error {
	return f.worker.Write(websocket.TextMessage, []byte(`{"method":"ping"}`))
}

func (f *BookFeed) OnDisconnect() {
	f.ready.Store(false)
}

func (f *BookFeed) publish(snap *domain.Snapshot) {
	// Drop the stale value, then publish. Never blocks.
	select {
	case <-f.updates:
	default:
	}
	select {
	case f.updates <- snap:
	default:
	}

	f.ready.Store(true)
	f.firstOnce.Do(func() { close(f.first) })
}

func toLevels(ws []wireLevel) []domain.Level {
	out := make([]domain.Level, len(ws))
	for i, w := range ws {
		out[i] = domain.Level{Px: w.Px, Sz: w.Sz}
	}
	return out
}
