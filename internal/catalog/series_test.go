package catalog

import (
	"testing"
	"time"

	"streamhub/pkg/models"
)

func TestNormalizeSeriesName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Dark Episode 3", "Dark"},
		{"dark EPISODE12  finale", "dark finale"},
		{"שטיסל פרק 4", "שטיסל"},
		{"פרק 1", ""},
		{"  Plain   Name ", "Plain Name"},
	}
	for _, tt := range tests {
		if got := NormalizeSeriesName(tt.in); got != tt.want {
			t.Errorf("NormalizeSeriesName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"The Office", "the-office"},
		{"Dr. Who?!", "dr-who"},
		{"שטיסל עונה", "שטיסל-עונה"},
		{"a b\tc", "a-b-c"},
		{"abcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyz", "abcdefghijklmnopqrstuvwxyzabcdefghijklmn"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsSeriesCandidate(t *testing.T) {
	tests := []struct {
		name  string
		title models.Title
		want  bool
	}{
		{"movie", models.Title{Kind: models.KindMovie}, false},
		{"series kind", models.Title{Kind: models.KindSeries}, true},
		{"kind case", models.Title{Kind: "Series"}, true},
		{"movie with series id", models.Title{Kind: models.KindMovie, SeriesID: "S1"}, true},
		{"blank series id", models.Title{Kind: models.KindMovie, SeriesID: "  "}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSeriesCandidate(tt.title); got != tt.want {
				t.Errorf("IsSeriesCandidate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSeriesKey(t *testing.T) {
	if got := SeriesKey(models.Title{SeriesID: " S1 ", Name: "x"}); got != "S1" {
		t.Errorf("SeriesKey with id = %q, want S1", got)
	}
	a := SeriesKey(models.Title{Kind: models.KindSeries, Name: "Dark Episode 1"})
	b := SeriesKey(models.Title{Kind: models.KindSeries, Name: "Dark episode 2"})
	if a != b || a != "dark" {
		t.Errorf("name keys = %q, %q, want both dark", a, b)
	}
}

func TestGroupCollapsesSeries(t *testing.T) {
	titles := []models.Title{
		episode("e2", "S1", "S1 Episode 2", 2, 3*time.Hour),
		movie("m1", "Heat", 5*time.Hour),
		episode("e1", "S1", "S1 Episode 1", 1, 4*time.Hour),
		movie("m2", "S1", 2*time.Hour),
	}
	got := Group(titles)
	if want := []string{"m1", "e1"}; !equalStrings(ids(got), want) {
		t.Fatalf("Group ids = %v, want %v", ids(got), want)
	}
	if got[1].Name != "S1" {
		t.Errorf("series display name = %q, want S1", got[1].Name)
	}
}

func TestGroupKeepsOrphanMovie(t *testing.T) {
	titles := []models.Title{
		episode("e1", "S1", "S1 Episode 1", 1, time.Hour),
		movie("m1", "Other", time.Hour),
	}
	if got := ids(Group(titles)); !equalStrings(got, []string{"m1", "e1"}) {
		t.Fatalf("Group ids = %v", got)
	}
}

func TestGroupMissingEpisodeIndexSortsLast(t *testing.T) {
	noIdx := episode("e0", "S1", "S1", 0, time.Hour)
	noIdx.EpisodeIndex = nil
	titles := []models.Title{noIdx, episode("e5", "S1", "S1 Episode 5", 5, time.Hour)}
	got := Group(titles)
	if len(got) != 1 || got[0].ID != "e5" {
		t.Fatalf("Group = %v, want single e5", ids(got))
	}
}

func TestGroupNameOnlySeriesMergesAcrossCase(t *testing.T) {
	titles := []models.Title{
		{ID: "a", Kind: models.KindSeries, Name: "Dark Episode 2", EpisodeIndex: intp(2)},
		{ID: "b", Kind: models.KindSeries, Name: "DARK episode 1", EpisodeIndex: intp(1)},
	}
	got := Group(titles)
	if len(got) != 1 || got[0].ID != "b" || got[0].Name != "DARK" {
		t.Fatalf("Group = %+v", got)
	}
}

func TestGroupEmptyNormalizedNameKeepsOriginal(t *testing.T) {
	titles := []models.Title{episode("e1", "S9", "Episode 1", 1, time.Hour)}
	got := Group(titles)
	if len(got) != 1 || got[0].Name != "Episode 1" {
		t.Fatalf("Group = %+v", got)
	}
}

func TestGroupIdempotent(t *testing.T) {
	titles := []models.Title{
		episode("e2", "S1", "S1 Episode 2", 2, time.Hour),
		episode("e1", "S1", "S1 Episode 1", 1, time.Hour),
		{ID: "x2", Kind: models.KindSeries, Name: "Dark Episode 2", EpisodeIndex: intp(2)},
		{ID: "x1", Kind: models.KindSeries, Name: "Dark Episode 1", EpisodeIndex: intp(1)},
		movie("m1", "Heat", time.Hour),
		movie("m1", "Heat", time.Hour),
	}
	once := Group(titles)
	twice := Group(Titles(once))
	if !equalStrings(ids(once), ids(twice)) {
		t.Fatalf("Group not idempotent: %v then %v", ids(once), ids(twice))
	}
	if want := []string{"m1", "e1", "x1"}; !equalStrings(ids(once), want) {
		t.Fatalf("Group ids = %v, want %v", ids(once), want)
	}
}

func TestGroupDoesNotMutateInput(t *testing.T) {
	titles := []models.Title{episode("e1", "S1", "S1 Episode 1", 1, time.Hour)}
	_ = Group(titles)
	if titles[0].Name != "S1 Episode 1" {
		t.Fatalf("input mutated: %q", titles[0].Name)
	}
}

func TestNextEpisode(t *testing.T) {
	all := []models.Title{
		episode("e3", "S1", "S1 Episode 3", 3, time.Hour),
		episode("e1", "S1", "S1 Episode 1", 1, time.Hour),
		episode("e2b", "S1", "S1 Episode 2", 2, time.Hour),
		episode("e2a", "S1", "S1 Episode 2", 2, time.Hour),
		episode("o2", "S2", "S2 Episode 2", 2, time.Hour),
	}
	next, ok := NextEpisode(all[1], all)
	if !ok || next.ID != "e2a" {
		t.Fatalf("NextEpisode(e1) = %q, %v; want e2a", next.ID, ok)
	}
	if _, ok := NextEpisode(all[0], all); ok {
		t.Fatal("NextEpisode(last) should report none")
	}
	if _, ok := NextEpisode(movie("m", "M", time.Hour), all); ok {
		t.Fatal("NextEpisode(movie) should report none")
	}
}
