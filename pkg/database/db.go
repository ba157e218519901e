package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"streamhub/internal/logging"
)

type Config struct {
	Path string
}

func EnsureDataDir(cfg Config) error {
	return os.MkdirAll(filepath.Dir(cfg.Path), 0o755)
}

func Open(cfg Config) (*sql.DB, error) {
	if err := EnsureDataDir(cfg); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma journal_mode: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

// MustOpen opens and migrates the database, exiting the process on failure.
func MustOpen(cfg Config) *sql.DB {
	db, err := Open(cfg)
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Path).Msg("failed to open db")
	}
	if err := Migrate(db); err != nil {
		_ = db.Close()
		logging.Fatal().Err(err).Msg("db migrate failed")
	}
	return db
}
