// Package bot is the quoting engine: it reads the current order-book
// snapshot, decides whether the spread is wide enough to quote, places
// a quantized buy/sell pair, and retires resting orders after a TTL.
package bot

import (
	"context"
	"log/slog"
	"time"

	"github.com/Operatorliquid/hyper-bot/internal/domain"
	"github.com/Operatorliquid/hyper-bot/internal/exchange"
	"github.com/Operatorliquid/hyper-bot/pkg/quant"
)

const (
	// makerEpsilon nudges maker-only quotes off the touch so they
	// never cross the book.
	makerEpsilon = 1e-6

	// Loop cadence. The fixed idle between iterations bounds the
	// exchange request rate; a persistently failing exchange is
	// retried at this cadence indefinitely (accepted tradeoff, no
	// circuit breaker).
	idleInterval   = 200 * time.Millisecond
	gateInterval   = 250 * time.Millisecond
	errorBackoff   = 1 * time.Second
	statusInterval = 10 * time.Second
)

// Params are the immutable quoting parameters for one bot run.
type Params struct {
	Ticker         string
	AmountPerLevel float64 // USD notional per order
	MinSpreadPct   float64
	MakerOnly      bool
	TTL            time.Duration
	UseTestnet     bool
	UseAgent       bool

	PrivateKey      string
	AgentPrivateKey string
}

// BookSource yields the newest order-book snapshot, or ok=false when
// no price is available (feed not ready or disconnected).
type BookSource interface {
	Latest() (*domain.Snapshot, bool)
}

// Recorder is the optional audit sink for order activity.
type Recorder interface {
	RecordPlacement(ctx context.Context, tsUnixMilli int64, coin string, side domain.Side, px, sz float64, status domain.OrderStatus, oid any) error
	RecordCancel(ctx context.Context, tsUnixMilli int64, coin string, oid any, ok bool) error
}

// Bot runs the quoting loop for a single resolved market. It is the
// sole reader of the snapshot and sole owner of the resting table.
type Bot struct {
	params  Params
	market  exchange.Market
	books   BookSource
	gw      exchange.Gateway
	journal Recorder // may be nil

	resting    *restingTable
	lastStatus time.Time

	now func() time.Time
}

// New assembles a bot over an already-resolved market.
func New(params Params, market exchange.Market, books BookSource, gw exchange.Gateway, journal Recorder) *Bot {
	return &Bot{
		params:  params,
		market:  market,
		books:   books,
		gw:      gw,
		journal: journal,
		resting: newRestingTable(),
		now:     time.Now,
	}
}

// RestingCount returns the size of the resting-order table.
func (b *Bot) RestingCount() int {
	return b.resting.Len()
}

// Run executes the quoting loop until the context is cancelled. A stop
// takes effect between iterations, never mid-call. Outstanding resting
// orders are not cancelled on shutdown.
func (b *Bot) Run(ctx context.Context) error {
	slog.Info("quoting loop started",
		"coin", b.market.Coin,
		"maker_only", b.params.MakerOnly,
		"min_spread_pct", b.params.MinSpreadPct,
		"amount_usd", b.params.AmountPerLevel,
		"ttl", b.params.TTL)

	for {
		delay := b.step(ctx)

		select {
		case <-ctx.Done():
			slog.Info("quoting loop stopped", "coin", b.market.Coin, "resting", b.resting.Len())
			return nil
		case <-time.After(delay):
		}
	}
}

// step runs one loop iteration and returns the idle delay before the
// next. Any panic inside the iteration is contained here: the loop
// survives everything after startup.
func (b *Bot) step(ctx context.Context) (delay time.Duration) {
	delay = idleInterval
	defer func() {
		if r := recover(); r != nil {
			slog.Error("loop iteration failed", "panic", r)
			delay = errorBackoff
		}
	}()

	snap, ok := b.books.Latest()
	if !ok {
		return idleInterval
	}
	bid, haveBid := snap.BestBid()
	ask, haveAsk := snap.BestAsk()
	if !haveBid || !haveAsk {
		return idleInterval
	}

	spread := domain.SpreadPct(bid, ask)
	if spread < b.params.MinSpreadPct {
		// Below the gate; a crossed book lands here too.
		b.maybeLogBook(bid, ask, spread)
		return gateInterval
	}

	var buyPx, sellPx float64
	if b.params.MakerOnly {
		buyPx = bid * (1 - makerEpsilon)
		sellPx = ask * (1 + makerEpsilon)
	} else {
		// Taker mode crosses deliberately.
		buyPx = ask
		sellPx = bid
	}

	// Legs are submitted sequentially so one iteration's exposure is
	// bounded and deterministic in order.
	buyRes := b.placeQuote(ctx, domain.Buy, buyPx)
	sellRes := b.placeQuote(ctx, domain.Sell, sellPx)

	now := b.now()
	if b.params.MakerOnly {
		b.track(domain.Buy, buyRes, now)
		b.track(domain.Sell, sellRes, now)
		b.evictExpired(ctx, now)
	} else {
		// Crossing orders should fill immediately; one that ended up
		// resting is cancelled right away instead of tracked.
		b.cancelStray(ctx, buyRes)
		b.cancelStray(ctx, sellRes)
	}

	b.maybeLogBook(bid, ask, spread)
	return idleInterval
}

// placeQuote sizes one side from the fixed USD notional, quantizes it,
// submits it, and classifies the acknowledgement.
func (b *Bot) placeQuote(ctx context.Context, side domain.Side, px float64) exchange.AckResult {
	size := 0.0
	if px > 0 {
		size = b.params.AmountPerLevel / px
	}
	qSize, qPx := quant.Quantize(b.market.SzDecimals, size, px)

	res := exchange.AckResult{Status: domain.StatusError}
	ack, err := b.gw.PlaceLimit(ctx, b.market.Coin, side, qSize, qPx)
	if err != nil {
		slog.Warn("order submit failed", "side", side, "px", qPx, "sz", qSize, "err", err)
	} else {
		res = exchange.ClassifyAck(ack)
		slog.Info("order submitted",
			"side", side, "px", qPx, "sz", qSize,
			"status", res.Status.String(), "oid", res.OrderID)
	}

	if b.journal != nil {
		if jerr := b.journal.RecordPlacement(ctx, b.now().UnixMilli(), b.market.Coin, side, qPx, qSize, res.Status, res.OrderID); jerr != nil {
			slog.Warn("journal write failed", "err", jerr)
		}
	}
	return res
}

// track records a resting order with a usable id.
func (b *Bot) track(side domain.Side, res exchange.AckResult, now time.Time) {
	if res.Status != domain.StatusResting || !exchange.ValidOrderID(res.OrderID) {
		return
	}
	b.resting.Track(res.OrderID, side, now)
	slog.Info("tracking resting order", "side", side, "oid", res.OrderID, "ttl", b.params.TTL)
}

// evictExpired cancels and forgets every resting order at or past its
// TTL. The local entry goes regardless of the cancel outcome: the
// point is bounding the table, not guaranteeing remote cancellation.
func (b *Bot) evictExpired(ctx context.Context, now time.Time) {
	for _, e := range b.resting.Expired(now, b.params.TTL) {
		coid := exchange.CoerceOrderID(e.ID)
		_, err := b.gw.Cancel(ctx, b.market.Coin, coid)
		if err != nil {
			slog.Warn("ttl cancel failed", "oid", e.ID, "err", err)
		} else {
			slog.Info("ttl cancelled order", "oid", e.ID)
		}
		if b.journal != nil {
			if jerr := b.journal.RecordCancel(ctx, now.UnixMilli(), b.market.Coin, e.ID, err == nil); jerr != nil {
				slog.Warn("journal write failed", "err", jerr)
			}
		}
		b.resting.Remove(e.ID)
	}
}

// cancelStray immediately cancels a taker-mode order that unexpectedly
// rested instead of filling.
func (b *Bot) cancelStray(ctx context.Context, res exchange.AckResult) {
	if res.Status != domain.StatusResting || !exchange.ValidOrderID(res.OrderID) {
		return
	}
	coid := exchange.CoerceOrderID(res.OrderID)
	if _, err := b.gw.Cancel(ctx, b.market.Coin, coid); err != nil {
		slog.Warn("stray cancel failed", "oid", res.OrderID, "err", err)
	} else {
		slog.Info("cancelled stray resting order", "oid", res.OrderID)
	}
}

func (b *Bot) maybeLogBook(bid, ask, spread float64) {
	now := b.now()
	if now.Sub(b.lastStatus) < statusInterval {
		return
	}
	b.lastStatus = now
	slog.Info("book", "coin", b.market.Coin,
		"bid", bid, "ask", ask, "spread_pct", spread,
		"resting", b.resting.Len())
}
