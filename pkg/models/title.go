package models

import "time"

type Kind string

const (
	KindMovie  Kind = "movie"
	KindSeries Kind = "series"
)

// Title is one catalog entry. Episodes of a series are separate titles that
// share a SeriesID and carry an EpisodeIndex.
type Title struct {
	ID           string    `json:"_id"`
	Kind         Kind      `json:"kind"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Year         *int      `json:"year,omitempty"`
	Genres       []string  `json:"genres"`
	SeriesID     string    `json:"seriesId,omitempty"`
	EpisodeIndex *int      `json:"episodeIndex,omitempty"`
	Actors       []string  `json:"actors,omitempty"`
	PosterPath   string    `json:"posterPath"`
	VideoPath    string    `json:"videoPath,omitempty"`
	PosterFileID string    `json:"posterFileId,omitempty"`
	VideoFileID  string    `json:"videoFileId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Clone returns a copy that shares no slices or pointers with t.
func (t Title) Clone() Title {
	out := t
	if t.Year != nil {
		y := *t.Year
		out.Year = &y
	}
	if t.EpisodeIndex != nil {
		e := *t.EpisodeIndex
		out.EpisodeIndex = &e
	}
	if t.Genres != nil {
		out.Genres = append([]string(nil), t.Genres...)
	}
	if t.Actors != nil {
		out.Actors = append([]string(nil), t.Actors...)
	}
	return out
}
