package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"streamhub/internal/catalogcsv"
	"streamhub/internal/logging"
	"streamhub/internal/titles"
	"streamhub/internal/watch"
	"streamhub/pkg/database"
	"streamhub/pkg/utils"
)

func main() {
	var (
		configPath = flag.String("config", "", "config file (defaults to $STREAMHUB_CONFIG or ./config.yaml)")
		titlesIn   = flag.String("titles", "data/titles.csv", "input CSV path for titles")
		watchIn    = flag.String("watch", "data/watch_history.csv", "input CSV path for watch history (empty to skip)")
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

	n, err := importTitles(ctx, titles.NewRepo(db), *titlesIn)
	if err != nil {
		logging.Fatal().Err(err).Str("path", *titlesIn).Msg("import titles failed")
	}
	logging.Info().Int("rows", n).Str("path", *titlesIn).Msg("imported titles")

	if *watchIn != "" {
		n, err := importWatch(ctx, watch.NewRepo(db), *watchIn)
		if err != nil {
			logging.Fatal().Err(err).Str("path", *watchIn).Msg("import watch history failed")
		}
		logging.Info().Int("rows", n).Str("path", *watchIn).Msg("imported watch history")
	}
}

// importTitles upserts every row by id. Rows without an id get a fresh one.
func importTitles(ctx context.Context, repo *titles.Repo, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	rows, err := catalogcsv.ReadTitles(f)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	for _, t := range rows {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		t.UpdatedAt = now
		t.PosterPath = titles.PosterPath(t.PosterPath, t.PosterFileID)
		t.VideoPath = titles.VideoPath(t.VideoPath, t.VideoFileID)

		updated, err := repo.Update(ctx, t)
		if err != nil {
			return 0, err
		}
		if !updated {
			if err := repo.Create(ctx, t); err != nil {
				return 0, err
			}
		}
	}
	return len(rows), nil
}

func importWatch(ctx context.Context, repo *watch.Repo, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	rows, err := catalogcsv.ReadWatch(f)
	if err != nil {
		return 0, err
	}
	for _, ev := range rows {
		if err := repo.Upsert(ctx, ev); err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}
