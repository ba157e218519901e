package titles

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"streamhub/internal/auth"
	"streamhub/internal/catalog"
	"streamhub/pkg/database"
	"streamhub/pkg/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func intp(i int) *int { return &i }

var base = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func seed(t *testing.T, repo *Repo) {
	t.Helper()
	rows := []models.Title{
		{ID: "m1", Kind: models.KindMovie, Name: "Ocean Vibes", Genres: []string{"Nature"}},
		{ID: "m2", Kind: models.KindMovie, Name: "City Walk", Description: "by the ocean", Genres: []string{"Drama", "Crime"}},
		{ID: "e1", Kind: models.KindSeries, Name: "Dark Episode 1", SeriesID: "dark", EpisodeIndex: intp(1), Genres: []string{"drama"}},
		{ID: "e2", Kind: models.KindSeries, Name: "Dark Episode 2", SeriesID: "dark", EpisodeIndex: intp(2), Genres: []string{"drama"}},
		{ID: "m3", Kind: models.KindMovie, Name: "Dramatic", Genres: []string{"Dramatic"}},
	}
	for i, r := range rows {
		r.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		r.UpdatedAt = r.CreatedAt
		r.PosterPath = PosterPath(r.PosterPath, r.PosterFileID)
		if err := repo.Create(context.Background(), r); err != nil {
			t.Fatalf("create %s: %v", r.ID, err)
		}
	}
}

func listIDs(titles []models.Title) []string {
	out := make([]string, len(titles))
	for i, t := range titles {
		out[i] = t.ID
	}
	return out
}

func sameIDs(a, b []string) bool {
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

func TestRepoList(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	seed(t, repo)
	ctx := context.Background()

	tests := []struct {
		name string
		q    ListQuery
		want []string
	}{
		{"all newest first", ListQuery{}, []string{"m3", "e2", "e1", "m2", "m1"}},
		{"query name or description", ListQuery{Q: "OCEAN"}, []string{"m2", "m1"}},
		{"genre exact case-insensitive", ListQuery{Genre: "DRAMA"}, []string{"e2", "e1", "m2"}},
		{"watched yes", ListQuery{Watched: catalog.WatchedYes, WatchedIDs: []string{"m1", "e1"}}, []string{"e1", "m1"}},
		{"watched yes none", ListQuery{Watched: catalog.WatchedYes}, []string{}},
		{"watched no", ListQuery{Watched: catalog.WatchedNo, WatchedIDs: []string{"m1", "e1"}}, []string{"m3", "e2", "m2"}},
		{"limit", ListQuery{Limit: 2}, []string{"m3", "e2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.q)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if !sameIDs(listIDs(got), tt.want) {
				t.Errorf("List = %v, want %v", listIDs(got), tt.want)
			}
		})
	}
}

func TestRepoRoundTrip(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	seed(t, repo)
	ctx := context.Background()

	got, err := repo.GetByID(ctx, "e2")
	if err != nil || got == nil {
		t.Fatalf("GetByID: %v %v", got, err)
	}
	if got.SeriesID != "dark" || got.EpisodeIndex == nil || *got.EpisodeIndex != 2 || got.Year != nil {
		t.Errorf("episode = %+v", got)
	}
	if !got.CreatedAt.Equal(base.Add(3 * time.Hour)) {
		t.Errorf("createdAt = %v", got.CreatedAt)
	}

	missing, err := repo.GetByID(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("missing = %v, %v", missing, err)
	}

	got.Name = "Renamed"
	if ok, err := repo.Update(ctx, *got); err != nil || !ok {
		t.Fatalf("Update: %v %v", ok, err)
	}
	if ok, err := repo.Delete(ctx, "m1"); err != nil || !ok {
		t.Fatalf("Delete: %v %v", ok, err)
	}
	if ok, _ := repo.Delete(ctx, "m1"); ok {
		t.Fatal("second delete should report not found")
	}
}

func TestDecodeFlexibleFields(t *testing.T) {
	var req titleReq
	body := `{"kind":"series","name":"X","genres":"Drama","episodeIndex":"3","year":""}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(req.Genres) != 1 || req.Genres[0] != "Drama" {
		t.Errorf("genres = %v", req.Genres)
	}
	if req.EpisodeIndex.Value == nil || *req.EpisodeIndex.Value != 3 {
		t.Errorf("episodeIndex = %v", req.EpisodeIndex.Value)
	}
	if req.Year.Value != nil {
		t.Errorf("year = %v, want nil", *req.Year.Value)
	}
	if err := json.Unmarshal([]byte(`{"episodeIndex":"x"}`), &req); err == nil {
		t.Error("expected error for non-numeric episodeIndex")
	}
}

func TestMediaPathFallbacks(t *testing.T) {
	if got := PosterPath("", ""); got != PlaceholderPoster {
		t.Errorf("PosterPath empty = %q", got)
	}
	if got := PosterPath("", "f1"); got != "/img/f1" {
		t.Errorf("PosterPath file = %q", got)
	}
	if got := PosterPath("/p.jpg", "f1"); got != "/p.jpg" {
		t.Errorf("PosterPath explicit = %q", got)
	}
	if got := VideoPath("", "v1"); got != "/media/v1" {
		t.Errorf("VideoPath file = %q", got)
	}
}

type fakeWatched []string

func (f fakeWatched) WatchedIDs(context.Context, string) ([]string, error) { return f, nil }

type harness struct {
	router *gin.Engine
	tokens auth.TokenService
}

func newHarness(t *testing.T, watched fakeWatched) harness {
	gin.SetMode(gin.TestMode)
	repo := NewRepo(newTestDB(t))
	seed(t, repo)
	tokens := auth.TokenService{Secret: []byte("s"), Issuer: "streamhub", Duration: time.Hour}
	r := gin.New()
	NewHandler(repo, watched).RegisterRoutes(r.Group("/api", auth.AuthMiddleware(tokens, nil)))
	return harness{router: r, tokens: tokens}
}

func (h harness) do(t *testing.T, method, path string, u *auth.User, profileID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	tok, _, err := h.tokens.Sign(u, profileID)
	if err != nil {
		t.Fatal(err)
	}
	var rd *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

var (
	viewer = &auth.User{ID: "u1", Role: auth.RoleUser}
	admin  = &auth.User{ID: "u2", Role: auth.RoleAdmin}
)

type listResp struct {
	Titles []models.Title `json:"titles"`
}

func TestHandlerListGroupsAndFilters(t *testing.T) {
	h := newHarness(t, fakeWatched{"e2"})

	w := h.do(t, http.MethodGet, "/api/titles?genre=drama", viewer, "", nil)
	var resp listResp
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("%d %s", w.Code, w.Body.String())
	}
	if want := []string{"m2", "e1"}; !sameIDs(listIDs(resp.Titles), want) {
		t.Errorf("genre list = %v, want %v", listIDs(resp.Titles), want)
	}
	if resp.Titles[1].Name != "Dark" {
		t.Errorf("series name = %q", resp.Titles[1].Name)
	}

	if w := h.do(t, http.MethodGet, "/api/titles?watched=yes", viewer, "", nil); w.Code != http.StatusBadRequest {
		t.Errorf("watched without profile = %d", w.Code)
	}
	if w := h.do(t, http.MethodGet, "/api/titles?watched=bogus", viewer, "p1", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad watched = %d", w.Code)
	}

	w = h.do(t, http.MethodGet, "/api/titles?watched=yes", viewer, "p1", nil)
	resp = listResp{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if want := []string{"e2"}; !sameIDs(listIDs(resp.Titles), want) {
		t.Errorf("watched=yes = %v, want %v", listIDs(resp.Titles), want)
	}
}

func TestHandlerDetail(t *testing.T) {
	h := newHarness(t, nil)

	w := h.do(t, http.MethodGet, "/api/titles/e1", viewer, "", nil)
	var resp struct {
		Title struct {
			PosterPath    string  `json:"posterPath"`
			NextEpisodeID *string `json:"nextEpisodeId"`
		} `json:"title"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Title.NextEpisodeID == nil || *resp.Title.NextEpisodeID != "e2" {
		t.Errorf("nextEpisodeId = %v", resp.Title.NextEpisodeID)
	}
	if resp.Title.PosterPath != PlaceholderPoster {
		t.Errorf("posterPath = %q", resp.Title.PosterPath)
	}

	if w := h.do(t, http.MethodGet, "/api/titles/missing", viewer, "", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing = %d", w.Code)
	}
}

func TestHandlerAdminCRUD(t *testing.T) {
	h := newHarness(t, nil)

	body := map[string]any{"kind": "movie", "name": "New One", "genres": "Action", "posterFileId": "f1"}
	if w := h.do(t, http.MethodPost, "/api/titles", viewer, "", body); w.Code != http.StatusForbidden {
		t.Fatalf("non-admin create = %d", w.Code)
	}
	if w := h.do(t, http.MethodPost, "/api/titles", admin, "", map[string]any{"name": "x"}); w.Code != http.StatusBadRequest {
		t.Fatalf("missing kind = %d", w.Code)
	}

	w := h.do(t, http.MethodPost, "/api/titles", admin, "", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", w.Code, w.Body.String())
	}
	var created struct {
		ID    string       `json:"id"`
		Title models.Title `json:"title"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	if created.Title.PosterPath != "/img/f1" || len(created.Title.Genres) != 1 {
		t.Fatalf("created = %+v", created.Title)
	}

	w = h.do(t, http.MethodPut, "/api/titles/"+created.ID, admin, "", map[string]any{"description": "updated"})
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d %s", w.Code, w.Body.String())
	}
	var updated struct {
		Title models.Title `json:"title"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &updated)
	if updated.Title.Name != "New One" || updated.Title.Description != "updated" || updated.Title.PosterPath != "/img/f1" {
		t.Fatalf("updated = %+v", updated.Title)
	}

	if w := h.do(t, http.MethodDelete, "/api/titles/"+created.ID, admin, "", nil); w.Code != http.StatusOK {
		t.Fatalf("delete = %d", w.Code)
	}
	if w := h.do(t, http.MethodDelete, "/api/titles/"+created.ID, admin, "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("second delete = %d", w.Code)
	}
}

func TestHandlerGenres(t *testing.T) {
	h := newHarness(t, nil)
	w := h.do(t, http.MethodGet, "/api/genres", viewer, "", nil)
	var resp struct {
		Genres []string `json:"genres"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if want := []string{"Crime", "Drama", "Dramatic", "Nature"}; !sameIDs(resp.Genres, want) {
		t.Fatalf("genres = %v, want %v", resp.Genres, want)
	}
}
