package profiles

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"streamhub/internal/auth"
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

func seedUser(t *testing.T, db *sql.DB) (*auth.User, models.Profile) {
	t.Helper()
	u := auth.User{ID: "u1", FullName: "Dana Levi", Email: "dana@example.com", PasswordHash: "x", Role: auth.RoleUser}
	p := models.Profile{ID: "p1", UserID: "u1", Name: "Dana", AvatarColor: "#777777", CreatedAt: time.Now()}
	if err := auth.NewRepo(db).CreateUser(context.Background(), u, p); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return &u, p
}

func TestCreateEnforcesLimit(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db)
	repo := NewRepo(db)
	ctx := context.Background()

	for i := 2; i <= MaxPerUser; i++ {
		p := models.Profile{ID: fmt.Sprintf("p%d", i), UserID: "u1", Name: "kid", CreatedAt: time.Now()}
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	err := repo.Create(ctx, models.Profile{ID: "p6", UserID: "u1", Name: "extra", CreatedAt: time.Now()})
	if !errors.Is(err, ErrLimitReached) {
		t.Fatalf("sixth profile err = %v, want ErrLimitReached", err)
	}
	list, err := repo.List(ctx, "u1")
	if err != nil || len(list) != MaxPerUser {
		t.Fatalf("List = %d profiles, err %v", len(list), err)
	}
}

func TestDeleteCascadesAndKeepsLast(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db)
	repo := NewRepo(db)
	ctx := context.Background()

	if err := repo.Delete(ctx, "u1", "p1"); !errors.Is(err, ErrLastProfile) {
		t.Fatalf("delete last err = %v", err)
	}
	if err := repo.Create(ctx, models.Profile{ID: "p2", UserID: "u1", Name: "Kid", CreatedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	now := time.Now().UTC()
	if _, err := db.Exec(`INSERT INTO watch_history (profile_id, title_id, position_sec, completed, updated_at) VALUES ('p2', 't1', 5, 0, ?)`, now); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO likes (profile_id, title_id, created_at) VALUES ('p2', 't1', ?)`, now); err != nil {
		t.Fatal(err)
	}

	if err := repo.Delete(ctx, "other-user", "p2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete foreign err = %v", err)
	}
	if err := repo.Delete(ctx, "u1", "p2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var n int
	_ = db.QueryRow(`SELECT (SELECT COUNT(*) FROM watch_history) + (SELECT COUNT(*) FROM likes)`).Scan(&n)
	if n != 0 {
		t.Fatalf("remaining watch+likes rows = %d", n)
	}
}

func TestSelectIssuesProfileToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	u, p := seedUser(t, db)
	tokens := auth.TokenService{Secret: []byte("s"), Issuer: "streamhub", Duration: time.Hour}
	users := auth.NewRepo(db)

	r := gin.New()
	api := r.Group("/api", auth.AuthMiddleware(tokens, users))
	NewHandler(NewRepo(db), users, tokens).RegisterRoutes(api)

	tok, _, _ := tokens.Sign(u, "")
	send := func(method, path, token string, body any) *httptest.ResponseRecorder {
		b, _ := json.Marshal(body)
		req := httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	if w := send(http.MethodPost, "/api/profiles/select", tok, gin.H{"profileId": "nope"}); w.Code != http.StatusNotFound {
		t.Fatalf("select unknown: %d", w.Code)
	}
	w := send(http.MethodPost, "/api/profiles/select", tok, gin.H{"profileId": p.ID})
	if w.Code != http.StatusOK {
		t.Fatalf("select: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	claims, err := tokens.Parse(resp.Token)
	if err != nil || claims.ProfileID != p.ID {
		t.Fatalf("claims = %+v, err %v", claims, err)
	}

	w = send(http.MethodGet, "/api/me", resp.Token, nil)
	var me struct {
		SelectedProfile *models.Profile `json:"selectedProfile"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &me); err != nil || me.SelectedProfile == nil || me.SelectedProfile.ID != p.ID {
		t.Fatalf("me = %s", w.Body.String())
	}

	if w := send(http.MethodPost, "/api/profiles", tok, gin.H{"name": ""}); w.Code != http.StatusBadRequest {
		t.Fatalf("create without name: %d", w.Code)
	}
	if w := send(http.MethodPost, "/api/profiles", tok, gin.H{"name": "Kid"}); w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
}

func TestRandomColor(t *testing.T) {
	for i := 0; i < 50; i++ {
		if c := randomColor(); len(c) != 7 || c[0] != '#' {
			t.Fatalf("randomColor = %q", c)
		}
	}
}
