package media

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"streamhub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Create(ctx context.Context, f models.MediaFile) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO media_files (id, kind, filename, content_type, size, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, f.ID, string(f.Kind), f.Filename, f.ContentType, f.Size, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert media file: %w", err)
	}
	return nil
}

// Get returns nil when no file of that kind exists.
func (r *Repo) Get(ctx context.Context, kind models.MediaKind, id string) (*models.MediaFile, error) {
	var (
		f        models.MediaFile
		kindText string
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, kind, filename, content_type, size, created_at
		FROM media_files WHERE id = ? AND kind = ?
	`, id, string(kind)).Scan(&f.ID, &kindText, &f.Filename, &f.ContentType, &f.Size, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get media file: %w", err)
	}
	f.Kind = models.MediaKind(kindText)
	return &f, nil
}
