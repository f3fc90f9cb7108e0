package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Operatorliquid/hyper-bot/internal/bot"
	"github.com/Operatorliquid/hyper-bot/internal/infra"
	"github.com/Operatorliquid/hyper-bot/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	var (
		configPath = flag.String("config", "config.yaml", "path to config file")
		ticker     = flag.String("ticker", "", "spot pair to quote, e.g. UBTC/USDC")
		amount     = flag.Float64("amount-per-level", 0, "USD notional per order")
		minSpread  = flag.Float64("min-spread", -1, "minimum spread percent to quote into")
		makerOnly  = flag.Bool("maker-only", false, "quote inside the book instead of crossing")
		ttl        = flag.Float64("ttl", 0, "resting order lifetime in seconds")
		testnet    = flag.Bool("testnet", false, "use the testnet API")
		useAgent   = flag.Bool("use-agent", false, "sign with the agent key")
	)
	flag.Parse()

	cfg, err := infra.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	applyFlags(cfg, *ticker, *amount, *minSpread, *makerOnly, *ttl, *testnet, *useAgent)

	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	var journal bot.Recorder
	if cfg.Journal.Path != "" {
		j, err := storage.NewJournal(cfg.Journal.Path)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer j.Close()
		journal = j
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := paramsFromConfig(cfg)
	logger.Info("starting bot",
		"ticker", p.Ticker,
		"amount_per_level", p.AmountPerLevel,
		"min_spread_pct", p.MinSpreadPct,
		"maker_only", p.MakerOnly,
		"ttl", p.TTL,
		"testnet", p.UseTestnet,
	)

	if err := bot.Runner(journal)(ctx, p); err != nil {
		return err
	}
	logger.Info("bot stopped")
	return nil
}

// applyFlags layers explicitly passed flags on top of file and env
// config. Zero values mean the flag was not set, except the booleans
// which only ever switch the feature on.
func applyFlags(cfg *infra.Config, ticker string, amount, minSpread float64, makerOnly bool, ttl float64, testnet, useAgent bool) {
	if ticker != "" {
		cfg.Bot.Ticker = ticker
	}
	if amount > 0 {
		cfg.Bot.AmountPerLevel = amount
	}
	if minSpread >= 0 {
		cfg.Bot.MinSpreadPct = minSpread
	}
	if makerOnly {
		cfg.Bot.MakerOnly = true
	}
	if ttl > 0 {
		cfg.Bot.TTLSeconds = ttl
	}
	if testnet {
		cfg.Bot.UseTestnet = true
	}
	if useAgent {
		cfg.Bot.UseAgent = true
	}
}

func paramsFromConfig(cfg *infra.Config) bot.Params {
	b := cfg.Bot
	return bot.Params{
		Ticker:          b.Ticker,
		AmountPerLevel:  b.AmountPerLevel,
		MinSpreadPct:    b.MinSpreadPct,
		MakerOnly:       b.MakerOnly,
		TTL:             time.Duration(b.TTLSeconds * float64(time.Second)),
		UseTestnet:      b.UseTestnet,
		UseAgent:        b.UseAgent,
		PrivateKey:      b.PrivateKey,
		AgentPrivateKey: b.AgentPrivateKey,
	}
}
