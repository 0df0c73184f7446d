package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/steamseller/config"
	"github.com/alejandrodnm/steamseller/internal/adapters/journal"
	"github.com/alejandrodnm/steamseller/internal/adapters/notify"
	"github.com/alejandrodnm/steamseller/internal/adapters/steam"
	"github.com/alejandrodnm/steamseller/internal/pricing"
	"github.com/alejandrodnm/steamseller/internal/seller"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	dryRun := flag.Bool("dry-run", false, "price everything but send no sell orders")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full results table (default: compact 1-line)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *dryRun {
		cfg.Seller.DryRun = true
	}
	setupLogger(cfg.Log)

	slog.Info("steamseller starting",
		"config", *configPath,
		"app_id", cfg.Steam.AppID,
		"dry_run", cfg.Seller.DryRun,
	)

	policy, err := pricing.NewPolicy(pricingConfig(cfg), cfg.Pricing.Formula)
	if err != nil {
		slog.Error("invalid pricing formula", "err", err)
		os.Exit(1)
	}

	client := steam.NewClient(steam.Config{
		BaseURL:     cfg.Steam.BaseURL,
		LoginSecure: cfg.Steam.LoginSecure,
		SteamID:     cfg.Steam.SteamID,
		Language:    cfg.Steam.Language,
		AppID:       cfg.Steam.AppID,
		ContextID:   cfg.Steam.ContextID,
	})

	runJournal, err := journal.NewSQLiteJournal(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open journal", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer runJournal.Close()

	notifier := notify.NewConsole(*table, cfg.Seller.DryRun)

	s := seller.New(
		seller.Config{Workers: cfg.Seller.Workers, DryRun: cfg.Seller.DryRun},
		client, client, client, client,
		runJournal, notifier, policy,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if _, err := s.Run(ctx); err != nil {
		slog.Error("run failed", "err", err)
		os.Exit(1)
	}

	slog.Info("steamseller finished cleanly")
}

// pricingConfig traduce la config YAML a la config de la política.
func pricingConfig(cfg *config.Config) pricing.Config {
	return pricing.Config{
		Gates: pricing.TypeGates{
			AllowClasses: classGate(cfg.Filters.AllowClasses),
			DenyClasses:  classGate(cfg.Filters.DenyClasses),
			AllowDetails: detailGate(cfg.Filters.AllowDetails),
			DenyDetails:  detailGate(cfg.Filters.DenyDetails),
		},
		Liquidity: pricing.LiquidityGates{
			WindowHours:   cfg.Pricing.LeastSellsHours,
			MinSales:      cfg.Pricing.HoursLeastSells,
			MinSellOrders: cfg.Pricing.LeastSellOrders,
			MinBuyOrders:  cfg.Pricing.LeastBuyOrders,
		},
		Global:     bounds(cfg.Pricing.Global),
		NormalCard: bounds(cfg.Pricing.NormalCard),
		FoilCard:   bounds(cfg.Pricing.FoilCard),
		OtherItem:  bounds(cfg.Pricing.OtherItem),
	}
}

func classGate(gc config.ClassGateConfig) pricing.ClassGate {
	g := pricing.ClassGate{Enabled: gc.Enabled, Classes: make(map[int]bool, len(gc.Values))}
	for _, v := range gc.Values {
		g.Classes[v] = true
	}
	return g
}

func detailGate(gc config.DetailGateConfig) pricing.DetailGate {
	g := pricing.DetailGate{Enabled: gc.Enabled, Details: make(map[string]bool, len(gc.Values))}
	for _, v := range gc.Values {
		g.Details[v] = true
	}
	return g
}

func bounds(bc config.BoundsConfig) pricing.Bounds {
	return pricing.Bounds{Lowest: bc.Lowest, Highest: bc.Highest}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
