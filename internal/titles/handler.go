package titles

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"streamhub/internal/auth"
	"streamhub/internal/catalog"
	"streamhub/internal/logging"
	"streamhub/pkg/models"
)

// WatchedSource lists the title ids a profile has watched.
type WatchedSource interface {
	WatchedIDs(ctx context.Context, profileID string) ([]string, error)
}

type Handler struct {
	Repo    *Repo
	Watched WatchedSource
}

func NewHandler(repo *Repo, watched WatchedSource) *Handler {
	return &Handler{Repo: repo, Watched: watched}
}

// RegisterRoutes expects rg to be behind auth.AuthMiddleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/titles", h.list)
	rg.GET("/titles/:id", h.getByID)
	rg.GET("/genres", h.genres)

	admin := rg.Group("", auth.RequireAdmin())
	admin.POST("/titles", h.create)
	admin.PUT("/titles/:id", h.update)
	admin.DELETE("/titles/:id", h.delete)
}

// list answers GET /titles?q=&genre=&watched=all|yes|no. Results are grouped
// into display entities unless raw=1.
func (h *Handler) list(c *gin.Context) {
	watched, ok := catalog.ParseWatchedState(c.Query("watched"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "watched must be all, yes or no"})
		return
	}
	opts := catalog.FilterOptions{Query: c.Query("q"), Genre: c.Query("genre"), Watched: watched}
	q := ListQuery{
		Q:       opts.Query,
		Genre:   opts.Genre,
		Watched: watched,
		Limit:   parseInt(c.Query("limit"), MaxListLimit),
	}

	var watchedSet catalog.IDSet
	if watched != catalog.WatchedAll {
		profileID, err := auth.ProfileID(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ids, err := h.Watched.WatchedIDs(c.Request.Context(), profileID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "watch history failed"})
			return
		}
		q.WatchedIDs = ids
		watchedSet = catalog.NewIDSet(ids...)
	}

	items, err := h.Repo.List(c.Request.Context(), q)
	if err != nil {
		logging.Ctx(c.Request.Context()).Error().Err(err).Msg("list titles failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	if c.Query("raw") == "1" {
		c.JSON(http.StatusOK, gin.H{"titles": items})
		return
	}
	c.JSON(http.StatusOK, gin.H{"titles": catalog.Filter(catalog.Group(items), opts, watchedSet)})
}

type titleDetail struct {
	models.Title
	NextEpisodeID *string `json:"nextEpisodeId"`
}

func (h *Handler) getByID(c *gin.Context) {
	t, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if t == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	detail := titleDetail{Title: *t}
	detail.PosterPath = PosterPath(t.PosterPath, t.PosterFileID)
	detail.VideoPath = VideoPath(t.VideoPath, t.VideoFileID)
	if t.SeriesID != "" && t.EpisodeIndex != nil {
		episodes, err := h.Repo.ListSeries(c.Request.Context(), t.SeriesID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
			return
		}
		if next, ok := catalog.NextEpisode(*t, episodes); ok {
			detail.NextEpisodeID = &next.ID
		}
	}
	c.JSON(http.StatusOK, gin.H{"title": detail})
}

func (h *Handler) genres(c *gin.Context) {
	all, err := h.Repo.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	genres := catalog.DistinctGenres(all)
	if genres == nil {
		genres = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"genres": genres})
}

func (h *Handler) create(c *gin.Context) {
	var req titleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	req.normalize()
	if err := validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
		return
	}

	now := time.Now().UTC()
	t := models.Title{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	req.apply(&t)
	if err := h.Repo.Create(c.Request.Context(), t); err != nil {
		logging.Ctx(c.Request.Context()).Error().Err(err).Msg("create title failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "id": t.ID, "title": t})
}

// update merges the body over the stored title; absent fields keep their
// current values.
func (h *Handler) update(c *gin.Context) {
	existing, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	req := requestFromTitle(*existing)
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	req.normalize()
	if err := validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
		return
	}

	t := *existing
	req.apply(&t)
	t.UpdatedAt = time.Now().UTC()
	if _, err := h.Repo.Update(c.Request.Context(), t); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "title": t})
}

func (h *Handler) delete(c *gin.Context) {
	found, err := h.Repo.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
