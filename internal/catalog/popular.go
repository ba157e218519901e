package catalog

import (
	"sort"
	"time"

	"streamhub/pkg/models"
)

const PopularWindowDays = 30

type PopularItem struct {
	Title DisplayEntity `json:"title"`
	Views int           `json:"views"`
}

// BuildPopular counts one view per event inside the trailing window and sums
// views across all episodes of a series. Higher counts come first, ties keep
// first-seen order.
func BuildPopular(events []models.WatchEvent, index Index, all []models.Title, now time.Time, windowDays, limit int) []PopularItem {
	if windowDays <= 0 {
		windowDays = PopularWindowDays
	}
	if limit <= 0 {
		limit = DefaultShelfLimit
	}
	since := now.AddDate(0, 0, -windowDays)

	var (
		order []string
		items = make(map[string]*PopularItem)
	)
	for _, ev := range events {
		if ev.UpdatedAt.Before(since) {
			continue
		}
		t, ok := index.Lookup(ev.TitleID)
		if !ok {
			continue
		}
		key := entityKey(t)
		item, ok := items[key]
		if !ok {
			display := DisplayEntity{Title: t.Clone()}
			if IsSeriesCandidate(t) {
				display = seriesEntity(all, SeriesKey(t), t)
			}
			item = &PopularItem{Title: display}
			items[key] = item
			order = append(order, key)
		}
		item.Views++
	}

	out := make([]PopularItem, 0, len(order))
	for _, k := range order {
		out = append(out, *items[k])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Views > out[j].Views
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
