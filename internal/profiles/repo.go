package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"streamhub/pkg/models"
)

const MaxPerUser = 5

var (
	ErrLimitReached = errors.New("max 5 profiles per user")
	ErrLastProfile  = errors.New("cannot delete the last profile")
	ErrNotFound     = errors.New("profile not found")
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) List(ctx context.Context, userID string) ([]models.Profile, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, name, avatar_color, created_at
		FROM profiles
		WHERE user_id = ?
		ORDER BY created_at ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	out := make([]models.Profile, 0, MaxPerUser)
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.AvatarColor, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// ListAll returns every profile, used for stats labels.
func (r *Repo) ListAll(ctx context.Context) ([]models.Profile, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, user_id, name, avatar_color, created_at FROM profiles`)
	if err != nil {
		return nil, fmt.Errorf("list all profiles: %w", err)
	}
	defer rows.Close()

	var out []models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.AvatarColor, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Get returns nil when the profile does not belong to userID.
func (r *Repo) Get(ctx context.Context, userID, id string) (*models.Profile, error) {
	var p models.Profile
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, user_id, name, avatar_color, created_at
		FROM profiles
		WHERE id = ? AND user_id = ?
	`, id, userID).Scan(&p.ID, &p.UserID, &p.Name, &p.AvatarColor, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

// Create enforces MaxPerUser inside the insert transaction.
func (r *Repo) Create(ctx context.Context, p models.Profile) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create profile: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var n int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles WHERE user_id = ?`, p.UserID).Scan(&n); err != nil {
		return fmt.Errorf("count profiles: %w", err)
	}
	if n >= MaxPerUser {
		err = ErrLimitReached
		return err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO profiles (id, user_id, name, avatar_color, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, p.ID, p.UserID, p.Name, p.AvatarColor, p.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create profile: %w", err)
	}
	return nil
}

// Delete removes the profile with its watch history and likes. The last
// profile of a user cannot be deleted.
func (r *Repo) Delete(ctx context.Context, userID, id string) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete profile: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var owned, total int
	if err = tx.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN id = ? THEN 1 ELSE 0 END), 0),
			COUNT(*)
		FROM profiles
		WHERE user_id = ?
	`, id, userID).Scan(&owned, &total); err != nil {
		return fmt.Errorf("check profile: %w", err)
	}
	if owned == 0 {
		err = ErrNotFound
		return err
	}
	if total <= 1 {
		err = ErrLastProfile
		return err
	}

	for _, stmt := range []string{
		`DELETE FROM watch_history WHERE profile_id = ?`,
		`DELETE FROM likes WHERE profile_id = ?`,
		`DELETE FROM profiles WHERE id = ?`,
	} {
		if _, err = tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("delete profile: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete profile: %w", err)
	}
	return nil
}
