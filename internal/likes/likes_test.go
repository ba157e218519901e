package likes

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
	"streamhub/pkg/database"
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

func TestRepo(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "a"} {
		if err := repo.Like(ctx, "p1", id, base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatal(err)
		}
	}
	ids, err := repo.ListLiked(ctx, "p1")
	if err != nil || len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("ListLiked = %v, %v", ids, err)
	}

	removed, err := repo.Unlike(ctx, "p1", "a")
	if err != nil || !removed {
		t.Fatalf("Unlike = %v, %v", removed, err)
	}
	if removed, _ := repo.Unlike(ctx, "p1", "a"); removed {
		t.Fatal("second unlike should report nothing removed")
	}
	if ids, _ := repo.ListLiked(ctx, "p2"); ids == nil || len(ids) != 0 {
		t.Fatalf("other profile = %#v, want empty", ids)
	}
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := NewRepo(newTestDB(t))
	tokens := auth.TokenService{Secret: []byte("s"), Issuer: "streamhub", Duration: time.Hour}
	r := gin.New()
	NewHandler(repo, nil).RegisterRoutes(r.Group("/api", auth.AuthMiddleware(tokens, nil)))
	tok, _, _ := tokens.Sign(&auth.User{ID: "u1"}, "p1")

	send := func(method string, body any) *httptest.ResponseRecorder {
		b, _ := json.Marshal(body)
		req := httptest.NewRequest(method, "/api/likes", bytes.NewReader(b))
		req.Header.Set("Authorization", "Bearer "+tok)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	if w := send(http.MethodPost, gin.H{"titleId": "t1"}); w.Code != http.StatusOK {
		t.Fatalf("like = %d", w.Code)
	}
	var list struct {
		Likes []string `json:"likes"`
	}
	_ = json.Unmarshal(send(http.MethodGet, nil).Body.Bytes(), &list)
	if len(list.Likes) != 1 || list.Likes[0] != "t1" {
		t.Fatalf("likes = %v", list.Likes)
	}

	w := send(http.MethodPost, gin.H{"titleId": "t1", "like": false})
	var resp struct {
		Liked bool `json:"liked"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if w.Code != http.StatusOK || resp.Liked {
		t.Fatalf("unlike = %d %s", w.Code, w.Body.String())
	}
	list.Likes = nil
	_ = json.Unmarshal(send(http.MethodGet, nil).Body.Bytes(), &list)
	if len(list.Likes) != 0 {
		t.Fatalf("likes after unlike = %v", list.Likes)
	}
}
