package likes

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Like(ctx context.Context, profileID, titleID string, at time.Time) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO likes (profile_id, title_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(profile_id, title_id) DO UPDATE SET created_at = excluded.created_at
	`, profileID, titleID, at.UTC())
	if err != nil {
		return fmt.Errorf("like: %w", err)
	}
	return nil
}

func (r *Repo) Unlike(ctx context.Context, profileID, titleID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM likes WHERE profile_id = ? AND title_id = ?`, profileID, titleID)
	if err != nil {
		return false, fmt.Errorf("unlike: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("unlike rows: %w", err)
	}
	return n > 0, nil
}

// ListLiked returns liked title ids, most recent first.
func (r *Repo) ListLiked(ctx context.Context, profileID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT title_id FROM likes
		WHERE profile_id = ?
		ORDER BY created_at DESC, title_id ASC
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan like: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return ids, nil
}
