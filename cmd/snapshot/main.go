package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"MarketBluff/internal/repository"
	"MarketBluff/internal/service/wikipedia"
	"MarketBluff/pkg/config"
	applogger "MarketBluff/pkg/logger"
)

// snapshot scrapes the live constituents page and writes the bundled
// snapshot used when the live listing is unreachable.
func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	out := flag.String("out", "", "snapshot path (defaults to universe.snapshot_file)")
	timeout := flag.Duration("timeout", time.Minute, "fetch timeout")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	l, err := applogger.New(&applogger.Config{Level: cfg.Logger.Level, Format: "console", Output: "stdout"})
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}

	path := *out
	if path == "" {
		path = cfg.Universe.SnapshotFile
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := wikipedia.NewClient(wikipedia.WithURL(cfg.Universe.ListingURL), wikipedia.WithTimeout(*timeout))
	tickers, err := client.FetchConstituents(ctx)
	if err != nil {
		l.Error("listing fetch failed", applogger.Error(err))
		os.Exit(1)
	}

	if err := repository.WriteSnapshot(path, tickers, time.Now().UTC()); err != nil {
		l.Error("snapshot write failed", applogger.String("path", path), applogger.Error(err))
		os.Exit(1)
	}
	l.Info("snapshot written", applogger.String("path", path), applogger.Int("tickers", len(tickers)))
}
