package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Operatorliquid/hyper-bot/internal/exchange"
	"github.com/Operatorliquid/hyper-bot/internal/feed"
	"github.com/Operatorliquid/hyper-bot/pkg/quant"
)

// Runner returns the RunFunc that wires the real exchange client and
// market-data feed. journal may be nil.
func Runner(journal Recorder) RunFunc {
	return func(ctx context.Context, p Params) error {
		return runReal(ctx, p, journal)
	}
}

func runReal(ctx context.Context, p Params, journal Recorder) error {
	if p.PrivateKey == "" {
		return fmt.Errorf("missing private key (set HL_PRIVATE_KEY)")
	}

	gw, err := exchange.NewHLClient(exchange.HLOptions{
		UseTestnet:      p.UseTestnet,
		PrivateKey:      p.PrivateKey,
		UseAgent:        p.UseAgent,
		AgentPrivateKey: p.AgentPrivateKey,
	})
	if err != nil {
		return err
	}

	resolver := exchange.NewResolver(gw)
	coin := resolver.ResolveCoin(ctx, p.Ticker)
	szDec := resolver.SizeDecimals(ctx, coin)
	market := exchange.Market{
		Coin:       coin,
		SzDecimals: szDec,
		PxDecimals: quant.PriceDecimals(szDec),
	}
	slog.Info("market resolved",
		"ticker", p.Ticker, "coin", market.Coin,
		"sz_decimals", market.SzDecimals, "px_decimals", market.PxDecimals)

	wsURL := exchange.MainnetWSURL
	if p.UseTestnet {
		wsURL = exchange.TestnetWSURL
	}

	books := feed.New(coin, wsURL)
	books.Start(ctx)
	defer books.Stop()

	// Startup is the only point where connectivity is fatal.
	if err := books.WaitReady(ctx); err != nil {
		return fmt.Errorf("market data: %w", err)
	}

	return New(p, market, books, gw, journal).Run(ctx)
}
