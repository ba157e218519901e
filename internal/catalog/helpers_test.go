package catalog

import (
	"time"

	"streamhub/pkg/models"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func intp(i int) *int { return &i }

func movie(id, name string, age time.Duration, genres ...string) models.Title {
	return models.Title{
		ID:        id,
		Kind:      models.KindMovie,
		Name:      name,
		Genres:    genres,
		CreatedAt: testNow.Add(-age),
	}
}

func episode(id, seriesID, name string, idx int, age time.Duration, genres ...string) models.Title {
	return models.Title{
		ID:           id,
		Kind:         models.KindSeries,
		Name:         name,
		SeriesID:     seriesID,
		EpisodeIndex: intp(idx),
		Genres:       genres,
		CreatedAt:    testNow.Add(-age),
	}
}

func watched(titleID string, ago time.Duration) models.WatchEvent {
	return models.WatchEvent{ProfileID: "p1", TitleID: titleID, UpdatedAt: testNow.Add(-ago)}
}

func ids(entities []DisplayEntity) []string {
	out := make([]string, len(entities))
	for i, e := range entities {
		out[i] = e.ID
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
