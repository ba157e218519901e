// Package catalogcsv reads and writes titles and watch history as CSV.
// List cells (genres, actors) are joined with "|".
package catalogcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"streamhub/pkg/models"
)

const listSep = "|"

var (
	TitleHeader = []string{
		"id", "kind", "name", "description", "year", "genres", "series_id", "episode_index",
		"actors", "poster_path", "video_path", "poster_file_id", "video_file_id", "created_at",
	}
	WatchHeader = []string{"profile_id", "title_id", "position_sec", "completed", "updated_at"}
)

type header map[string]int

func readHeader(r *csv.Reader) (header, error) {
	row, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	h := make(header, len(row))
	for idx, name := range row {
		h[strings.TrimSpace(strings.ToLower(strings.TrimPrefix(name, "\ufeff")))] = idx
	}
	return h, nil
}

func (h header) value(row []string, key string) string {
	idx, ok := h[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, listSep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseOptionalInt(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func eachRow(r io.Reader, fn func(h header, line int, row []string) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	h, err := readHeader(cr)
	if err != nil {
		return err
	}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if len(row) == 0 {
			continue
		}
		if err := fn(h, line, row); err != nil {
			return err
		}
	}
}

// ReadTitles skips rows without a name. Kind defaults to series when a
// series id is present and to movie otherwise.
func ReadTitles(r io.Reader) ([]models.Title, error) {
	var out []models.Title
	err := eachRow(r, func(h header, line int, row []string) error {
		name := h.value(row, "name")
		if name == "" {
			return nil
		}
		t := models.Title{
			ID:           h.value(row, "id"),
			Kind:         models.Kind(strings.ToLower(h.value(row, "kind"))),
			Name:         name,
			Description:  h.value(row, "description"),
			Genres:       splitList(h.value(row, "genres")),
			SeriesID:     h.value(row, "series_id"),
			Actors:       splitList(h.value(row, "actors")),
			PosterPath:   h.value(row, "poster_path"),
			VideoPath:    h.value(row, "video_path"),
			PosterFileID: h.value(row, "poster_file_id"),
			VideoFileID:  h.value(row, "video_file_id"),
		}
		if t.Kind != models.KindMovie && t.Kind != models.KindSeries {
			t.Kind = models.KindMovie
			if t.SeriesID != "" {
				t.Kind = models.KindSeries
			}
		}

		var err error
		if t.Year, err = parseOptionalInt(h.value(row, "year")); err != nil {
			return fmt.Errorf("line %d: parse year: %w", line, err)
		}
		if t.EpisodeIndex, err = parseOptionalInt(h.value(row, "episode_index")); err != nil {
			return fmt.Errorf("line %d: parse episode_index: %w", line, err)
		}
		if t.CreatedAt, err = parseTime(h.value(row, "created_at")); err != nil {
			return fmt.Errorf("line %d: parse created_at: %w", line, err)
		}
		out = append(out, t)
		return nil
	})
	return out, err
}

// ReadWatch skips rows missing a profile or title id.
func ReadWatch(r io.Reader) ([]models.WatchEvent, error) {
	var out []models.WatchEvent
	err := eachRow(r, func(h header, line int, row []string) error {
		ev := models.WatchEvent{
			ProfileID: h.value(row, "profile_id"),
			TitleID:   h.value(row, "title_id"),
		}
		if ev.ProfileID == "" || ev.TitleID == "" {
			return nil
		}
		if raw := h.value(row, "position_sec"); raw != "" {
			pos, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return fmt.Errorf("line %d: parse position_sec: %w", line, err)
			}
			ev.PositionSec = int(pos)
		}
		if raw := h.value(row, "completed"); raw != "" {
			done, err := strconv.ParseBool(raw)
			if err != nil {
				return fmt.Errorf("line %d: parse completed: %w", line, err)
			}
			ev.Completed = done
		}
		var err error
		if ev.UpdatedAt, err = parseTime(h.value(row, "updated_at")); err != nil {
			return fmt.Errorf("line %d: parse updated_at: %w", line, err)
		}
		out = append(out, ev)
		return nil
	})
	return out, err
}

func formatInt(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func WriteTitles(w io.Writer, titles []models.Title) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TitleHeader); err != nil {
		return err
	}
	for _, t := range titles {
		if err := cw.Write([]string{
			t.ID, string(t.Kind), t.Name, t.Description, formatInt(t.Year),
			strings.Join(t.Genres, listSep), t.SeriesID, formatInt(t.EpisodeIndex),
			strings.Join(t.Actors, listSep), t.PosterPath, t.VideoPath,
			t.PosterFileID, t.VideoFileID, formatTime(t.CreatedAt),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteWatch(w io.Writer, events []models.WatchEvent) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(WatchHeader); err != nil {
		return err
	}
	for _, ev := range events {
		if err := cw.Write([]string{
			ev.ProfileID, ev.TitleID, strconv.Itoa(ev.PositionSec),
			strconv.FormatBool(ev.Completed), formatTime(ev.UpdatedAt),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
