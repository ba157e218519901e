package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"streamhub/internal/catalogcsv"
	"streamhub/internal/logging"
	"streamhub/internal/titles"
	"streamhub/internal/watch"
	"streamhub/pkg/database"
	"streamhub/pkg/models"
	"streamhub/pkg/utils"
)

func main() {
	var (
		configPath = flag.String("config", "", "config file (defaults to $STREAMHUB_CONFIG or ./config.yaml)")
		titlesOut  = flag.String("titles", "data/titles.csv", "output CSV path for titles")
		watchOut   = flag.String("watch", "data/watch_history.csv", "output CSV path for watch history")
	)
	flag.Parse()

	cfg, err := utils.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: "console"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db := database.MustOpen(database.Config{Path: cfg.Database.Path})
	defer db.Close()

	all, err := titles.NewRepo(db).ListAll(ctx)
	if err != nil {
		logging.Fatal().Err(err).Msg("list titles failed")
	}
	if err := writeFile(*titlesOut, func(f *os.File) error { return catalogcsv.WriteTitles(f, all) }); err != nil {
		logging.Fatal().Err(err).Str("path", *titlesOut).Msg("export titles failed")
	}

	var events []models.WatchEvent
	if events, err = watch.NewRepo(db).ListAll(ctx); err != nil {
		logging.Fatal().Err(err).Msg("list watch history failed")
	}
	if err := writeFile(*watchOut, func(f *os.File) error { return catalogcsv.WriteWatch(f, events) }); err != nil {
		logging.Fatal().Err(err).Str("path", *watchOut).Msg("export watch history failed")
	}

	logging.Info().
		Int("titles", len(all)).
		Int("events", len(events)).
		Str("titles_path", *titlesOut).
		Str("watch_path", *watchOut).
		Msg("export complete")
}

func writeFile(path string, write func(*os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
