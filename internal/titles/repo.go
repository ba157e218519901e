package titles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"streamhub/internal/catalog"
	"streamhub/pkg/models"
)

const MaxListLimit = 100

type Repo struct {
	DB *sql.DB
}

type ListQuery struct {
	Q       string
	Genre   string // exact, case-insensitive
	Watched catalog.WatchedState
	// WatchedIDs is consulted when Watched is yes or no.
	WatchedIDs []string
	Limit      int
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const titleColumns = `id, kind, name, description, year, genres, series_id, episode_index, actors,
	poster_path, video_path, poster_file_id, video_file_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTitle(s rowScanner) (models.Title, error) {
	var (
		t          models.Title
		kind       string
		year       sql.NullInt64
		genresJSON string
		seriesID   sql.NullString
		episode    sql.NullInt64
		actorsJSON string
	)
	if err := s.Scan(
		&t.ID, &kind, &t.Name, &t.Description, &year, &genresJSON, &seriesID, &episode, &actorsJSON,
		&t.PosterPath, &t.VideoPath, &t.PosterFileID, &t.VideoFileID, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return t, err
	}
	t.Kind = models.Kind(kind)
	if year.Valid {
		y := int(year.Int64)
		t.Year = &y
	}
	t.SeriesID = seriesID.String
	if episode.Valid {
		e := int(episode.Int64)
		t.EpisodeIndex = &e
	}
	t.Genres = []string{}
	_ = json.Unmarshal([]byte(genresJSON), &t.Genres)
	_ = json.Unmarshal([]byte(actorsJSON), &t.Actors)
	return t, nil
}

func (r *Repo) queryTitles(ctx context.Context, query string, args ...any) ([]models.Title, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query titles: %w", err)
	}
	defer rows.Close()

	out := make([]models.Title, 0, 64)
	for rows.Next() {
		t, err := scanTitle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Title, error) {
	t, err := scanTitle(r.DB.QueryRowContext(ctx, `SELECT `+titleColumns+` FROM titles WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan getByID: %w", err)
	}
	return &t, nil
}

// ListAll returns the whole catalog, newest first.
func (r *Repo) ListAll(ctx context.Context) ([]models.Title, error) {
	return r.queryTitles(ctx, `SELECT `+titleColumns+` FROM titles ORDER BY created_at DESC, id DESC`)
}

// ListSeries returns the episodes sharing seriesID.
func (r *Repo) ListSeries(ctx context.Context, seriesID string) ([]models.Title, error) {
	return r.queryTitles(ctx, `SELECT `+titleColumns+` FROM titles WHERE series_id = ? ORDER BY episode_index ASC, id ASC`, seriesID)
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.Title, error) {
	sqlStr, args := buildListSQL(q)
	return r.queryTitles(ctx, sqlStr, args...)
}

// buildListSQL filters in SQL and orders newest first. The genre filter is
// an exact match against the JSON array elements.
func buildListSQL(q ListQuery) (string, []any) {
	var where []string
	var args []any

	if kw := strings.ToLower(strings.TrimSpace(q.Q)); kw != "" {
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)")
		like := "%" + kw + "%"
		args = append(args, like, like)
	}

	if g := strings.ToLower(strings.TrimSpace(q.Genre)); g != "" {
		where = append(where, "EXISTS (SELECT 1 FROM json_each(titles.genres) WHERE LOWER(TRIM(json_each.value)) = ?)")
		args = append(args, g)
	}

	switch q.Watched {
	case catalog.WatchedYes, catalog.WatchedNo:
		op := "IN"
		if q.Watched == catalog.WatchedNo {
			op = "NOT IN"
		}
		if len(q.WatchedIDs) == 0 {
			if q.Watched == catalog.WatchedYes {
				where = append(where, "0")
			}
			break
		}
		marks := strings.TrimSuffix(strings.Repeat("?,", len(q.WatchedIDs)), ",")
		where = append(where, "id "+op+" ("+marks+")")
		for _, id := range q.WatchedIDs {
			args = append(args, id)
		}
	}

	sqlStr := `SELECT ` + titleColumns + ` FROM titles`
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}

	limit := q.Limit
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}
	sqlStr += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)
	return sqlStr, args
}

func nullableInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullableString(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func encodeList(list []string) string {
	if list == nil {
		list = []string{}
	}
	b, _ := json.Marshal(list)
	return string(b)
}

func (r *Repo) Create(ctx context.Context, t models.Title) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO titles (`+titleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, string(t.Kind), t.Name, t.Description, nullableInt(t.Year), encodeList(t.Genres),
		nullableString(t.SeriesID), nullableInt(t.EpisodeIndex), encodeList(t.Actors),
		t.PosterPath, t.VideoPath, t.PosterFileID, t.VideoFileID, t.CreatedAt.UTC(), t.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("create title: %w", err)
	}
	return nil
}

// Update overwrites every mutable column. It reports false when id is unknown.
func (r *Repo) Update(ctx context.Context, t models.Title) (bool, error) {
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = time.Now()
	}
	res, err := r.DB.ExecContext(ctx, `
		UPDATE titles SET
			kind = ?, name = ?, description = ?, year = ?, genres = ?, series_id = ?, episode_index = ?,
			actors = ?, poster_path = ?, video_path = ?, poster_file_id = ?, video_file_id = ?, updated_at = ?
		WHERE id = ?
	`, string(t.Kind), t.Name, t.Description, nullableInt(t.Year), encodeList(t.Genres),
		nullableString(t.SeriesID), nullableInt(t.EpisodeIndex), encodeList(t.Actors),
		t.PosterPath, t.VideoPath, t.PosterFileID, t.VideoFileID, t.UpdatedAt.UTC(), t.ID)
	if err != nil {
		return false, fmt.Errorf("update title: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update title rows: %w", err)
	}
	return n > 0, nil
}

func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM titles WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete title: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete title rows: %w", err)
	}
	return n > 0, nil
}
