package catalog

import (
	"sort"
	"strings"

	"streamhub/pkg/models"
)

// Index looks titles up by id.
type Index map[string]models.Title

func IndexTitles(titles []models.Title) Index {
	ix := make(Index, len(titles))
	for _, t := range titles {
		if t.ID == "" {
			continue
		}
		if _, ok := ix[t.ID]; !ok {
			ix[t.ID] = t
		}
	}
	return ix
}

// Lookup ignores blank ids.
func (ix Index) Lookup(id string) (models.Title, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Title{}, false
	}
	t, ok := ix[id]
	return t, ok
}

// IDSet is a set of title ids, used for liked and watched state.
type IDSet map[string]struct{}

// NewIDSet trims ids and skips blanks.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			s[id] = struct{}{}
		}
	}
	return s
}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// newestFirst returns a copy of titles sorted by CreatedAt descending.
func newestFirst(titles []models.Title) []models.Title {
	sorted := append([]models.Title(nil), titles...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return sorted
}

func capTitles(titles []models.Title, limit int) []models.Title {
	if limit >= 0 && len(titles) > limit {
		return titles[:limit]
	}
	return titles
}

// seriesEntity is the display entity for the series key, taken from its
// lowest-index episode in all. fallback is used when the series is not in all.
func seriesEntity(all []models.Title, key string, fallback models.Title) DisplayEntity {
	if first, ok := firstEpisode(all, key); ok {
		return representative([]models.Title{first})
	}
	return representative([]models.Title{fallback})
}

// entityKey separates movie ids from series keys in a shared map.
func entityKey(t models.Title) string {
	if IsSeriesCandidate(t) {
		return "series:" + SeriesKey(t)
	}
	return "movie:" + t.ID
}
