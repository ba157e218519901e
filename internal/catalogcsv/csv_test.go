package catalogcsv

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"streamhub/pkg/models"
)

func TestReadTitles(t *testing.T) {
	in := "\ufeffID,Name,Kind,Genres,Series_ID,Episode_Index,Year,Created_At\n" +
		"m1,Harbor,,Drama| Crime ,,,2020,2025-01-02T03:04:05Z\n" +
		",Dark Episode 1,,drama,dark,1,,\n" +
		"skip,,movie,,,,,\n"

	got, err := ReadTitles(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadTitles: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d titles", len(got))
	}

	m := got[0]
	if m.Kind != models.KindMovie || m.Year == nil || *m.Year != 2020 {
		t.Errorf("movie = %+v", m)
	}
	if len(m.Genres) != 2 || m.Genres[1] != "Crime" {
		t.Errorf("genres = %q", m.Genres)
	}
	if !m.CreatedAt.Equal(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Errorf("created = %v", m.CreatedAt)
	}

	e := got[1]
	if e.Kind != models.KindSeries || e.EpisodeIndex == nil || *e.EpisodeIndex != 1 || e.ID != "" {
		t.Errorf("episode = %+v", e)
	}
}

func TestReadTitlesReportsLine(t *testing.T) {
	in := "id,name,year\nm1,Harbor,twenty\n"
	_, err := ReadTitles(strings.NewReader(in))
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("err = %v", err)
	}
}

func TestWatchRoundTrip(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	events := []models.WatchEvent{
		{ProfileID: "p1", TitleID: "m1", PositionSec: 42, Completed: true, UpdatedAt: at},
		{ProfileID: "p2", TitleID: "e1", UpdatedAt: at.Add(time.Hour)},
	}

	var buf bytes.Buffer
	if err := WriteWatch(&buf, events); err != nil {
		t.Fatal(err)
	}
	got, err := ReadWatch(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(events) {
		t.Fatalf("got %d events", len(got))
	}
	for i, want := range events {
		g := got[i]
		if g.ProfileID != want.ProfileID || g.TitleID != want.TitleID || g.PositionSec != want.PositionSec ||
			g.Completed != want.Completed || !g.UpdatedAt.Equal(want.UpdatedAt) {
			t.Errorf("event %d = %+v, want %+v", i, g, want)
		}
	}
}

func TestReadWatchAcceptsFractionalPosition(t *testing.T) {
	in := "profile_id,title_id,position_sec,completed\np1,m1,12.9,false\n,m2,1,true\n"
	got, err := ReadWatch(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].PositionSec != 12 {
		t.Errorf("got %+v", got)
	}
}

func TestWriteTitlesJoinsLists(t *testing.T) {
	var buf bytes.Buffer
	titles := []models.Title{{ID: "m1", Kind: models.KindMovie, Name: "Harbor", Genres: []string{"Drama", "Crime"}}}
	if err := WriteTitles(&buf, titles); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.Contains(lines[1], "Drama|Crime") {
		t.Errorf("csv = %q", buf.String())
	}

	back, err := ReadTitles(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(back) != 1 || len(back[0].Genres) != 2 || !back[0].CreatedAt.IsZero() {
		t.Errorf("back = %+v", back)
	}
}
