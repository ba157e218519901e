// Package stats aggregates watch history into reporting rows.
package stats

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"streamhub/pkg/models"
)

// FallbackProfileName labels history rows whose profile no longer exists.
func FallbackProfileName(profileID string) string {
	id := []rune(profileID)
	if len(id) > 4 {
		id = id[len(id)-4:]
	}
	return "Profile " + string(id)
}

// DailyViews counts events per UTC day and profile, ordered by day and then
// by profile name.
func DailyViews(events []models.WatchEvent, profiles []models.Profile) []models.DailyViews {
	names := make(map[string]string, len(profiles))
	for _, p := range profiles {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			continue
		}
		name := p.Name
		if name == "" {
			name = FallbackProfileName(id)
		}
		names[id] = name
	}

	var (
		order []string
		rows  = make(map[string]*models.DailyViews)
	)
	for _, ev := range events {
		pid := strings.TrimSpace(ev.ProfileID)
		if pid == "" || ev.UpdatedAt.IsZero() {
			continue
		}
		day := ev.UpdatedAt.UTC().Format("2006-01-02")
		key := day + "|" + pid
		row, ok := rows[key]
		if !ok {
			name, known := names[pid]
			if !known {
				name = FallbackProfileName(pid)
			}
			row = &models.DailyViews{Day: day, ProfileID: pid, ProfileName: name}
			rows[key] = row
			order = append(order, key)
		}
		row.Views++
	}

	out := make([]models.DailyViews, 0, len(order))
	for _, k := range order {
		out = append(out, *rows[k])
	}
	col := collate.New(language.Hebrew, collate.IgnoreCase)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		return col.CompareString(out[i].ProfileName, out[j].ProfileName) < 0
	})
	return out
}

// GenreViews counts one view per event for each genre of the watched title.
// Events for unknown titles are skipped. Higher counts come first, ties keep
// first-seen order.
func GenreViews(events []models.WatchEvent, titles []models.Title) []models.GenreViews {
	genres := make(map[string][]string, len(titles))
	for _, t := range titles {
		genres[t.ID] = t.Genres
	}

	var (
		order  []string
		counts = make(map[string]int)
	)
	for _, ev := range events {
		for _, g := range genres[ev.TitleID] {
			g = strings.TrimSpace(g)
			if g == "" {
				continue
			}
			if _, ok := counts[g]; !ok {
				order = append(order, g)
			}
			counts[g]++
		}
	}

	out := make([]models.GenreViews, 0, len(order))
	for _, g := range order {
		out = append(out, models.GenreViews{Genre: g, Views: counts[g]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Views > out[j].Views
	})
	return out
}
