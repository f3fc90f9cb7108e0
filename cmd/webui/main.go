package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Operatorliquid/hyper-bot/internal/bot"
	"github.com/Operatorliquid/hyper-bot/internal/exchange"
	"github.com/Operatorliquid/hyper-bot/internal/infra"
	"github.com/Operatorliquid/hyper-bot/internal/storage"
	"github.com/Operatorliquid/hyper-bot/internal/webui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to config file")
	addr := flag.String("addr", "", "listen address, overrides config")
	flag.Parse()

	cfg, err := infra.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.WebUI.Addr = *addr
	}

	// Tee logs into the ring buffer so /logs serves the same stream
	// that goes to stdout.
	logs := webui.NewLogBuffer()
	logger := infra.NewLogger(cfg, logs)
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

	session := bot.NewSession(bot.Runner(journal))
	srv := webui.NewServer(cfg, session, logs, logger)

	// Balances on /status need a signed-in client; skip when no key is
	// configured so the UI still works read-only.
	if cfg.Bot.PrivateKey != "" {
		gw, err := exchange.NewHLClient(exchange.HLOptions{
			UseTestnet:      cfg.Bot.UseTestnet,
			PrivateKey:      cfg.Bot.PrivateKey,
			UseAgent:        cfg.Bot.UseAgent,
			AgentPrivateKey: cfg.Bot.AgentPrivateKey,
		})
		if err != nil {
			return fmt.Errorf("exchange client: %w", err)
		}
		srv.WithBalances(gw.SpotBalances)
	}

	httpSrv := &http.Server{
		Addr:              cfg.WebUI.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("webui listening", "addr", cfg.WebUI.Addr)
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		session.Stop()
		return err
	}

	logger.Info("shutting down")
	session.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return <-errCh
}
