package catalog

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"streamhub/pkg/models"
)

// MissingEpisodeIndex is where an episode without an index sorts.
const MissingEpisodeIndex = 999

// DisplayEntity is one renderable movie or series. For a series it is a copy
// of its lowest-index episode with the episode marker stripped from the name.
type DisplayEntity struct {
	models.Title
}

// EpisodeNamePatterns are removed from a title name by NormalizeSeriesName.
var EpisodeNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)episode\s*\d+`),
	regexp.MustCompile(`פרק\s*\d+`),
}

var spaceRun = regexp.MustCompile(`\s+`)

const slugMaxRunes = 40

// NormalizeSeriesName strips every EpisodeNamePatterns match and collapses
// whitespace. It may return "".
func NormalizeSeriesName(name string) string {
	for _, re := range EpisodeNamePatterns {
		name = re.ReplaceAllString(name, "")
	}
	return strings.TrimSpace(spaceRun.ReplaceAllString(name, " "))
}

// seriesDisplayName keeps the original name when normalizing empties it.
func seriesDisplayName(name string) string {
	if n := NormalizeSeriesName(name); n != "" {
		return n
	}
	return name
}

// fold is the case-insensitive comparison key used for names and genres.
// A Caser is stateful, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func nameKey(name string) string {
	return fold(NormalizeSeriesName(name))
}

// Slugify lowercases s, turns whitespace runs into dashes and keeps only
// [a-z0-9-] and Hebrew letters, truncated to 40 runes.
func Slugify(s string) string {
	s = spaceRun.ReplaceAllString(strings.ToLower(s), "-")
	var b strings.Builder
	n := 0
	for _, r := range s {
		if n == slugMaxRunes {
			break
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || (r >= 0x0590 && r <= 0x05FF) {
			b.WriteRune(r)
			n++
		}
	}
	return b.String()
}

// IsSeriesCandidate reports whether t is an episode: kind "series" or a
// non-blank SeriesID.
func IsSeriesCandidate(t models.Title) bool {
	return strings.EqualFold(strings.TrimSpace(string(t.Kind)), string(models.KindSeries)) ||
		strings.TrimSpace(t.SeriesID) != ""
}

// SeriesKey is the grouping identity of an episode: its trimmed SeriesID, or
// else the slug of its normalized name. Names that slug to nothing fall back
// to their case-folded form.
func SeriesKey(t models.Title) string {
	if id := strings.TrimSpace(t.SeriesID); id != "" {
		return id
	}
	name := seriesDisplayName(t.Name)
	if slug := Slugify(strings.TrimSpace(name)); slug != "" {
		return slug
	}
	return fold(name)
}

func episodeIndex(t models.Title) int {
	if t.EpisodeIndex == nil {
		return MissingEpisodeIndex
	}
	return *t.EpisodeIndex
}

func sortEpisodes(list []models.Title) []models.Title {
	sorted := append([]models.Title(nil), list...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return episodeIndex(sorted[i]) < episodeIndex(sorted[j])
	})
	return sorted
}

// representative builds the display entity for one series bucket.
func representative(episodes []models.Title) DisplayEntity {
	first := sortEpisodes(episodes)[0].Clone()
	first.Name = seriesDisplayName(first.Name)
	return DisplayEntity{Title: first}
}

// firstEpisode finds the lowest-index episode in all sharing key.
func firstEpisode(all []models.Title, key string) (models.Title, bool) {
	var (
		best  models.Title
		found bool
	)
	for _, t := range all {
		if !IsSeriesCandidate(t) || SeriesKey(t) != key {
			continue
		}
		if !found || episodeIndex(t) < episodeIndex(best) {
			best, found = t, true
		}
	}
	return best, found
}

// Group collapses episodes into one entity per SeriesKey and drops movies
// whose normalized name shadows one of those series. Movies come first, then
// series, each in first-seen input order. A movie id seen twice is emitted
// once.
func Group(titles []models.Title) []DisplayEntity {
	var (
		movies  []models.Title
		order   []string
		buckets = make(map[string][]models.Title)
	)
	for _, t := range titles {
		if !IsSeriesCandidate(t) {
			movies = append(movies, t)
			continue
		}
		k := SeriesKey(t)
		if _, ok := buckets[k]; !ok {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], t)
	}

	reps := make([]DisplayEntity, 0, len(order))
	seriesNames := make(map[string]struct{}, len(order))
	for _, k := range order {
		rep := representative(buckets[k])
		reps = append(reps, rep)
		if nk := nameKey(rep.Name); nk != "" {
			seriesNames[nk] = struct{}{}
		}
	}

	out := make([]DisplayEntity, 0, len(movies)+len(reps))
	seenIDs := make(map[string]struct{}, len(movies))
	for _, m := range movies {
		if _, shadow := seriesNames[nameKey(m.Name)]; shadow {
			continue
		}
		if m.ID != "" {
			if _, dup := seenIDs[m.ID]; dup {
				continue
			}
			seenIDs[m.ID] = struct{}{}
		}
		out = append(out, DisplayEntity{Title: m.Clone()})
	}
	return append(out, reps...)
}

// Titles unwraps entities back into titles.
func Titles(entities []DisplayEntity) []models.Title {
	out := make([]models.Title, len(entities))
	for i, e := range entities {
		out[i] = e.Title
	}
	return out
}

// NextEpisode returns the episode of the same series with the smallest index
// greater than current's, ties broken by id.
func NextEpisode(current models.Title, all []models.Title) (models.Title, bool) {
	seriesID := strings.TrimSpace(current.SeriesID)
	if seriesID == "" || current.EpisodeIndex == nil {
		return models.Title{}, false
	}
	var (
		next  models.Title
		found bool
	)
	for _, t := range all {
		if strings.TrimSpace(t.SeriesID) != seriesID || t.EpisodeIndex == nil || *t.EpisodeIndex <= *current.EpisodeIndex {
			continue
		}
		if !found || *t.EpisodeIndex < *next.EpisodeIndex ||
			(*t.EpisodeIndex == *next.EpisodeIndex && t.ID < next.ID) {
			next, found = t, true
		}
	}
	return next, found
}
