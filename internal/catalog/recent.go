package catalog

import (
	"sort"
	"time"

	"streamhub/pkg/models"
)

// RecentFetchLimit is how many watch events feed the recent shelf.
const RecentFetchLimit = 20

type RecentItem struct {
	Title       DisplayEntity `json:"title"`
	PositionSec int           `json:"positionSec"`
	Completed   bool          `json:"completed"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// BuildRecent keeps the most recent event per movie or series. A series shows
// its first episode's details but carries the id of the episode watched, so
// playback resumes there. Events whose title is unknown are skipped.
func BuildRecent(events []models.WatchEvent, index Index, all []models.Title) []RecentItem {
	sorted := append([]models.WatchEvent(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
	})

	seen := make(map[string]struct{}, len(sorted))
	out := make([]RecentItem, 0, len(sorted))
	for _, ev := range sorted {
		t, ok := index.Lookup(ev.TitleID)
		if !ok {
			continue
		}
		key := entityKey(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		display := DisplayEntity{Title: t.Clone()}
		if IsSeriesCandidate(t) {
			if first, ok := firstEpisode(all, SeriesKey(t)); ok {
				display = representative([]models.Title{first})
				display.ID = t.ID
			}
		}
		out = append(out, RecentItem{
			Title:       display,
			PositionSec: max(ev.PositionSec, 0),
			Completed:   ev.Completed,
			UpdatedAt:   ev.UpdatedAt,
		})
	}
	return out
}
