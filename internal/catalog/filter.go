package catalog

import (
	"strings"

	"streamhub/pkg/models"
)

type WatchedState string

const (
	WatchedAll WatchedState = "all"
	WatchedYes WatchedState = "yes"
	WatchedNo  WatchedState = "no"
)

// ParseWatchedState maps unknown or empty input to WatchedAll and reports
// whether s was recognized.
func ParseWatchedState(s string) (WatchedState, bool) {
	switch WatchedState(strings.ToLower(strings.TrimSpace(s))) {
	case WatchedYes:
		return WatchedYes, true
	case WatchedNo:
		return WatchedNo, true
	case WatchedAll:
		return WatchedAll, true
	case "":
		return WatchedAll, true
	default:
		return WatchedAll, false
	}
}

type FilterOptions struct {
	Query   string       `form:"q" json:"q"`
	Genre   string       `form:"genre" json:"genre"`
	Watched WatchedState `form:"watched" json:"watched"`
}

// Active reports whether any criterion narrows the result.
func (o FilterOptions) Active() bool {
	return strings.TrimSpace(o.Query) != "" ||
		strings.TrimSpace(o.Genre) != "" ||
		(o.Watched != "" && o.Watched != WatchedAll)
}

// Filter keeps the entities matching every active criterion:
//
//   - Query: case-insensitive substring of the name or description.
//   - Genre: case-insensitive exact match against one of the genres.
//   - Watched: id present in (yes) or absent from (no) watched.
func Filter(entities []DisplayEntity, opts FilterOptions, watched IDSet) []DisplayEntity {
	q := fold(opts.Query)
	genre := fold(opts.Genre)
	out := make([]DisplayEntity, 0, len(entities))
	for _, e := range entities {
		if q != "" && !strings.Contains(fold(e.Name), q) && !strings.Contains(fold(e.Description), q) {
			continue
		}
		if genre != "" && !hasGenre(e.Title, genre) {
			continue
		}
		switch opts.Watched {
		case WatchedYes:
			if !watched.Has(e.ID) {
				continue
			}
		case WatchedNo:
			if watched.Has(e.ID) {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

func hasGenre(t models.Title, key string) bool {
	for _, g := range t.Genres {
		if fold(g) == key {
			return true
		}
	}
	return false
}

// Visibility tells a client which surface to render.
type Visibility struct {
	ShowShelves bool `json:"showShelves"`
	ShowGrid    bool `json:"showGrid"`
}

// VisibilityFor shows the grid while any filter is active and the shelves
// otherwise, never both.
func VisibilityFor(opts FilterOptions) Visibility {
	active := opts.Active()
	return Visibility{ShowShelves: !active, ShowGrid: active}
}

// Browse groups titles and applies opts. When no filter is active the grid is
// empty.
func Browse(titles []models.Title, opts FilterOptions, watched IDSet) (Visibility, []DisplayEntity) {
	vis := VisibilityFor(opts)
	if !vis.ShowGrid {
		return vis, []DisplayEntity{}
	}
	return vis, Filter(Group(newestFirst(titles)), opts, watched)
}
