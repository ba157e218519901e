package watch

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"streamhub/internal/auth"
	"streamhub/internal/logging"
	"streamhub/internal/sync"
	"streamhub/pkg/models"
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
	g := rg.Group("/watch", auth.RequireProfile())
	g.GET("", h.list)
	g.POST("", h.save)
}

type saveReq struct {
	TitleID     string  `json:"titleId"`
	PositionSec float64 `json:"positionSec"`
	Completed   bool    `json:"completed"`
}

func (h *Handler) save(c *gin.Context) {
	profileID, _ := auth.ProfileID(c)

	var req saveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	req.TitleID = strings.TrimSpace(req.TitleID)
	if req.TitleID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "titleId required"})
		return
	}

	ev := models.WatchEvent{
		ProfileID:   profileID,
		TitleID:     req.TitleID,
		PositionSec: max(int(req.PositionSec), 0),
		Completed:   req.Completed,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := h.Repo.Upsert(c.Request.Context(), ev); err != nil {
		logging.Ctx(c.Request.Context()).Error().Err(err).Msg("save watch failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	if h.Hub != nil {
		go h.Hub.Publish(sync.WatchUpdate(ev))
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) list(c *gin.Context) {
	profileID, _ := auth.ProfileID(c)
	items, err := h.Repo.ListByProfile(c.Request.Context(), profileID, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
