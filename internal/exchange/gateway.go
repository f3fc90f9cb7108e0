// Package exchange talks to Hyperliquid: market metadata, order
// placement and cancellation, and the classification of the
// heterogeneous acknowledgement shapes the API returns.
package exchange

import (
	"context"

	"github.com/Operatorliquid/hyper-bot/internal/domain"
)

// Gateway is the abstract exchange surface the quoting loop uses.
// The raw acknowledgement maps it returns are classified with
// ClassifyAck; callers never poke at the shapes directly.
type Gateway interface {
	// PlaceLimit submits a good-till-cancelled limit order.
	PlaceLimit(ctx context.Context, coin string, side domain.Side, size, price float64) (map[string]any, error)

	// Cancel cancels an order. The id must already be coerced with
	// CoerceOrderID so its type matches what the exchange issued.
	Cancel(ctx context.Context, coin string, oid any) (map[string]any, error)

	// SpotMeta returns the token list and market universe.
	SpotMeta(ctx context.Context) (*SpotMeta, error)

	// SpotBalances returns total balances per coin for the account.
	SpotBalances(ctx context.Context) (map[string]float64, error)
}

// Market is the resolved, immutable description of the one market the
// bot quotes. Built once at startup.
type Market struct {
	Coin       string // canonical id, e.g. "@142" or "UBTC/USDC"
	SzDecimals int
	PxDecimals int
}
