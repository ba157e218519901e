package catalog

import (
	"sort"

	"streamhub/pkg/models"
)

const (
	DefaultShelfLimit = 20
	TopGenreCount     = 3
)

type Recommendations struct {
	Titles  []DisplayEntity `json:"titles"`
	BasedOn []string        `json:"basedOn"`
}

// BuildRecommendations ranks unliked titles that share one of the profile's
// top liked genres, newest first. With no likes it returns the newest titles.
//
// Liked ids are excluded individually. Other episodes of a liked series stay
// eligible.
func BuildRecommendations(likedIDs []string, titles []models.Title, limit int) Recommendations {
	if limit <= 0 {
		limit = DefaultShelfLimit
	}
	liked := NewIDSet(likedIDs...)
	if len(liked) == 0 {
		return Recommendations{
			Titles:  Group(capTitles(newestFirst(titles), limit)),
			BasedOn: []string{},
		}
	}

	top := topGenres(liked, titles)
	topSet := make(map[string]struct{}, len(top))
	for _, g := range top {
		topSet[g] = struct{}{}
	}

	var candidates []models.Title
	for _, t := range titles {
		if liked.Has(t.ID) {
			continue
		}
		if len(topSet) > 0 && !hasAnyGenre(t, topSet) {
			continue
		}
		candidates = append(candidates, t)
	}
	return Recommendations{
		Titles:  Group(capTitles(newestFirst(candidates), limit)),
		BasedOn: top,
	}
}

// topGenres counts genre occurrences across liked titles in catalog order and
// returns the TopGenreCount most frequent folded keys, first seen on ties.
func topGenres(liked IDSet, titles []models.Title) []string {
	counts := make(map[string]int)
	order := []string{}
	for _, t := range titles {
		if !liked.Has(t.ID) {
			continue
		}
		for _, g := range t.Genres {
			k := fold(g)
			if k == "" {
				continue
			}
			if _, ok := counts[k]; !ok {
				order = append(order, k)
			}
			counts[k]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > TopGenreCount {
		order = order[:TopGenreCount]
	}
	return order
}

func hasAnyGenre(t models.Title, set map[string]struct{}) bool {
	for _, g := range t.Genres {
		if _, ok := set[fold(g)]; ok {
			return true
		}
	}
	return false
}
