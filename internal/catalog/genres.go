package catalog

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"streamhub/pkg/models"
)

const GenreShelfLimit = 15

type GenreShelf struct {
	Name   string          `json:"name"`
	Titles []DisplayEntity `json:"titles"`
}

// BuildGenreShelves groups the titles older than NewWindow and files each
// entity under every genre it carries. Genres are matched case-insensitively
// and labeled as first seen. Shelves come back in first-seen order, each
// sorted newest first.
func BuildGenreShelves(titles []models.Title, now time.Time, perGenre int) []GenreShelf {
	if perGenre <= 0 {
		perGenre = GenreShelfLimit
	}
	var settled []models.Title
	for _, t := range titles {
		if !IsNew(t, now) {
			settled = append(settled, t)
		}
	}

	var (
		order   []string
		shelves = make(map[string]*GenreShelf)
	)
	for _, e := range Group(settled) {
		seen := make(map[string]struct{}, len(e.Genres))
		for _, g := range e.Genres {
			k := fold(g)
			if k == "" {
				continue
			}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			shelf, ok := shelves[k]
			if !ok {
				shelf = &GenreShelf{Name: strings.TrimSpace(g)}
				shelves[k] = shelf
				order = append(order, k)
			}
			shelf.Titles = append(shelf.Titles, e)
		}
	}

	out := make([]GenreShelf, 0, len(order))
	for _, k := range order {
		s := shelves[k]
		sort.SliceStable(s.Titles, func(i, j int) bool {
			return s.Titles[i].CreatedAt.After(s.Titles[j].CreatedAt)
		})
		if len(s.Titles) > perGenre {
			s.Titles = s.Titles[:perGenre]
		}
		out = append(out, *s)
	}
	return out
}

// GenreShelfMap keys shelves by label.
func GenreShelfMap(shelves []GenreShelf) map[string][]DisplayEntity {
	m := make(map[string][]DisplayEntity, len(shelves))
	for _, s := range shelves {
		m[s.Name] = s.Titles
	}
	return m
}

// DistinctGenres lists every genre once, case-insensitively, labeled as first
// seen and sorted for display. Hebrew and Latin labels collate together.
func DistinctGenres(titles []models.Title) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range titles {
		for _, g := range t.Genres {
			label := strings.TrimSpace(g)
			k := fold(label)
			if k == "" {
				continue
			}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, label)
		}
	}
	collate.New(language.Hebrew, collate.IgnoreCase).SortStrings(out)
	return out
}
