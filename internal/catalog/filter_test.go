package catalog

import (
	"testing"
	"time"

	"streamhub/pkg/models"
)

func filterFixture() []DisplayEntity {
	return []DisplayEntity{
		{Title: models.Title{ID: "1", Name: "Ocean Vibes", Genres: []string{"Nature"}}},
		{Title: models.Title{ID: "2", Name: "City Walk", Description: "A stroll by the ocean", Genres: []string{"Drama"}}},
		{Title: models.Title{ID: "3", Name: "Night Drive", Genres: []string{"Dramatic"}}},
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name    string
		opts    FilterOptions
		watched IDSet
		want    []string
	}{
		{"no filter", FilterOptions{}, nil, []string{"1", "2", "3"}},
		{"query name or description", FilterOptions{Query: "OCEAN"}, nil, []string{"1", "2"}},
		{"genre exact", FilterOptions{Genre: "drama"}, nil, []string{"2"}},
		{"watched yes empty set", FilterOptions{Watched: WatchedYes}, NewIDSet(), []string{}},
		{"watched yes", FilterOptions{Watched: WatchedYes}, NewIDSet("3"), []string{"3"}},
		{"watched no", FilterOptions{Watched: WatchedNo}, NewIDSet("3"), []string{"1", "2"}},
		{"and", FilterOptions{Query: "ocean", Genre: "nature", Watched: WatchedNo}, NewIDSet("2"), []string{"1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(filterFixture(), tt.opts, tt.watched))
			if !equalStrings(got, tt.want) {
				t.Errorf("Filter = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterQueryOnName(t *testing.T) {
	entities := filterFixture()[:2]
	entities[1].Description = ""
	if got := ids(Filter(entities, FilterOptions{Query: "ocean"}, nil)); !equalStrings(got, []string{"1"}) {
		t.Errorf("query ocean = %v", got)
	}
}

func TestParseWatchedState(t *testing.T) {
	tests := []struct {
		in   string
		want WatchedState
		ok   bool
	}{
		{"", WatchedAll, true},
		{"all", WatchedAll, true},
		{"YES", WatchedYes, true},
		{" no ", WatchedNo, true},
		{"maybe", WatchedAll, false},
	}
	for _, tt := range tests {
		got, ok := ParseWatchedState(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseWatchedState(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestVisibilityFor(t *testing.T) {
	tests := []struct {
		opts FilterOptions
		grid bool
	}{
		{FilterOptions{}, false},
		{FilterOptions{Watched: WatchedAll}, false},
		{FilterOptions{Query: "  "}, false},
		{FilterOptions{Query: "x"}, true},
		{FilterOptions{Genre: "Drama"}, true},
		{FilterOptions{Watched: WatchedNo}, true},
	}
	for _, tt := range tests {
		v := VisibilityFor(tt.opts)
		if v.ShowGrid != tt.grid || v.ShowShelves == v.ShowGrid {
			t.Errorf("VisibilityFor(%+v) = %+v", tt.opts, v)
		}
	}
}

func TestBrowse(t *testing.T) {
	titles := []models.Title{
		episode("e1", "S1", "S1 Episode 1", 1, 2*time.Hour, "Drama"),
		episode("e2", "S1", "S1 Episode 2", 2, time.Hour, "Drama"),
		movie("m1", "Heat", 3*time.Hour, "Crime"),
	}
	vis, grid := Browse(titles, FilterOptions{}, nil)
	if vis.ShowGrid || len(grid) != 0 {
		t.Fatalf("inactive browse = %+v %v", vis, ids(grid))
	}
	vis, grid = Browse(titles, FilterOptions{Genre: "drama"}, nil)
	if !vis.ShowGrid || !equalStrings(ids(grid), []string{"e1"}) {
		t.Fatalf("active browse = %+v %v", vis, ids(grid))
	}
}
