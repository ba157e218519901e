package watch

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"streamhub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Upsert keeps only the latest progress per (profile, title).
func (r *Repo) Upsert(ctx context.Context, ev models.WatchEvent) error {
	if ev.UpdatedAt.IsZero() {
		ev.UpdatedAt = time.Now().UTC()
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO watch_history (profile_id, title_id, position_sec, completed, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(profile_id, title_id) DO UPDATE SET
			position_sec = excluded.position_sec,
			completed    = excluded.completed,
			updated_at   = excluded.updated_at
	`, ev.ProfileID, ev.TitleID, max(ev.PositionSec, 0), ev.Completed, ev.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("upsert watch: %w", err)
	}
	return nil
}

func (r *Repo) query(ctx context.Context, q string, args ...any) ([]models.WatchEvent, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list watch: %w", err)
	}
	defer rows.Close()

	out := make([]models.WatchEvent, 0, 32)
	for rows.Next() {
		var ev models.WatchEvent
		if err := rows.Scan(&ev.ProfileID, &ev.TitleID, &ev.PositionSec, &ev.Completed, &ev.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan watch: %w", err)
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// ListByProfile returns the profile's events newest first. limit <= 0 means
// no limit.
func (r *Repo) ListByProfile(ctx context.Context, profileID string, limit int) ([]models.WatchEvent, error) {
	if limit <= 0 {
		limit = -1
	}
	return r.query(ctx, `
		SELECT profile_id, title_id, position_sec, completed, updated_at
		FROM watch_history
		WHERE profile_id = ?
		ORDER BY updated_at DESC, title_id ASC
		LIMIT ?
	`, profileID, limit)
}

// ListSince returns every profile's events updated at or after since.
func (r *Repo) ListSince(ctx context.Context, since time.Time) ([]models.WatchEvent, error) {
	return r.query(ctx, `
		SELECT profile_id, title_id, position_sec, completed, updated_at
		FROM watch_history
		WHERE updated_at >= ?
		ORDER BY updated_at DESC, title_id ASC
	`, since.UTC())
}

func (r *Repo) ListAll(ctx context.Context) ([]models.WatchEvent, error) {
	return r.query(ctx, `
		SELECT profile_id, title_id, position_sec, completed, updated_at
		FROM watch_history
		ORDER BY updated_at ASC
	`)
}

func (r *Repo) WatchedIDs(ctx context.Context, profileID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT title_id FROM watch_history WHERE profile_id = ?`, profileID)
	if err != nil {
		return nil, fmt.Errorf("watched ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan watched id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
