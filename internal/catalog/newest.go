package catalog

import (
	"time"

	"streamhub/pkg/models"
)

// NewWindow is how long after creation a title counts as new.
const NewWindow = time.Hour

const (
	NewestShelfLimit = 20
	NewestGridLimit  = 50
)

// IsNew reports whether t was created no more than NewWindow before now.
func IsNew(t models.Title, now time.Time) bool {
	return now.Sub(t.CreatedAt) <= NewWindow
}

// BuildNewest returns the grouped new titles, newest first, capped before
// grouping.
func BuildNewest(titles []models.Title, now time.Time, limit int) []DisplayEntity {
	if limit <= 0 {
		limit = NewestShelfLimit
	}
	var fresh []models.Title
	for _, t := range titles {
		if IsNew(t, now) {
			fresh = append(fresh, t)
		}
	}
	return Group(capTitles(newestFirst(fresh), limit))
}
