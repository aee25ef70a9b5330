package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"futures-testnet-bot/internal/cli"
	"futures-testnet-bot/internal/config"
	"futures-testnet-bot/internal/gui"
	"futures-testnet-bot/internal/logger"
	"futures-testnet-bot/internal/market"
	"futures-testnet-bot/internal/metrics"
	"futures-testnet-bot/internal/model"
	"futures-testnet-bot/internal/repository"
)

func main() {
	os.Exit(run())
}

func run() int {
	level, dir := config.LogSettings()
	if err := logger.Init(logger.Options{Dir: dir, ConsoleLevel: logger.ParseLevel(level)}); err != nil {
		log.Printf("File logging disabled: %v", err)
		if err := logger.Init(logger.Options{ConsoleLevel: logger.ParseLevel(level)}); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	}
	logger.Info("Starting Futures Testnet GUI...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s error: %v\n", model.KindOf(err), err)
		return 1
	}

	logger.Info("Configuration loaded successfully",
		"base_url", cfg.BaseURL,
		"recv_window_ms", cfg.RecvWindow.Milliseconds(),
		"gui_addr", cfg.GUIAddr,
	)

	exchange, err := cli.NewExchange(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s error: %v\n", model.KindOf(err), err)
		return 1
	}
	if closer, ok := exchange.(io.Closer); ok {
		defer closer.Close()
	}

	opts := gui.Options{
		Exchange:       exchange,
		Metrics:        metrics.NewTracker(),
		RecvWindow:     cfg.RecvWindow,
		PingInterval:   cfg.GUIPingInterval,
		AllowedOrigins: cfg.GUIAllowedOrigins,
	}

	if journal, err := repository.NewJournal(cfg.LogDir); err != nil {
		logger.Warn("Order journal disabled", "error", err)
	} else {
		opts.Journal = journal
	}

	// no public bookTicker stream behind a local mock
	if !cfg.Local() {
		opts.Ticker = market.NewTickerService(cfg.Testnet())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := gui.NewServer(opts).ListenAndServe(ctx, cfg.GUIAddr); err != nil {
		logger.Error("GUI server failed", "error", err)
		return 1
	}
	logger.Info("GUI stopped")
	return 0
}
