package likes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"streamhub/internal/auth"
	"streamhub/internal/sync"
)

type Handler struct {
	Repo *Repo
	Hub  *sync.Hub
}

func NewHandler(repo *Repo, hub *sync.Hub) *Handler {
	return &Handler{Repo: repo, Hub: hub}
}

// RegisterRoutes expects rg to be behind auth.AuthMiddleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/likes", auth.RequireProfile())
	g.GET("", h.list)
	g.POST("", h.set)
}

func (h *Handler) list(c *gin.Context) {
	profileID, _ := auth.ProfileID(c)
	ids, err := h.Repo.ListLiked(c.Request.Context(), profileID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"likes": ids})
}

type setReq struct {
	TitleID string `json:"titleId"`
	// Like defaults to true; only an explicit false removes the like.
	Like *bool `json:"like"`
}

func (h *Handler) set(c *gin.Context) {
	profileID, _ := auth.ProfileID(c)

	var req setReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	titleID := strings.TrimSpace(req.TitleID)
	if titleID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "titleId required"})
		return
	}

	liked := req.Like == nil || *req.Like
	now := time.Now().UTC()
	var err error
	if liked {
		err = h.Repo.Like(c.Request.Context(), profileID, titleID, now)
	} else {
		_, err = h.Repo.Unlike(c.Request.Context(), profileID, titleID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	if h.Hub != nil {
		go h.Hub.Publish(sync.LikeUpdate(profileID, titleID, liked, now))
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "liked": liked})
}
