package stats

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"streamhub/internal/logging"
	"streamhub/pkg/models"
)

type EventSource interface {
	ListAll(ctx context.Context) ([]models.WatchEvent, error)
}

type ProfileSource interface {
	ListAll(ctx context.Context) ([]models.Profile, error)
}

type TitleSource interface {
	ListAll(ctx context.Context) ([]models.Title, error)
}

type Handler struct {
	Events   EventSource
	Profiles ProfileSource
	Titles   TitleSource
}

func NewHandler(events EventSource, profiles ProfileSource, titles TitleSource) *Handler {
	return &Handler{Events: events, Profiles: profiles, Titles: titles}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stats/daily-views", h.dailyViews)
	rg.GET("/stats/genres", h.genres)
}

func (h *Handler) dailyViews(c *gin.Context) {
	ctx := c.Request.Context()
	events, err := h.Events.ListAll(ctx)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("daily-views stats failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	profiles, err := h.Profiles.ListAll(ctx)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("daily-views stats failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": DailyViews(events, profiles)})
}

func (h *Handler) genres(c *gin.Context) {
	ctx := c.Request.Context()
	events, err := h.Events.ListAll(ctx)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("genre stats failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	titles, err := h.Titles.ListAll(ctx)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("genre stats failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": GenreViews(events, titles)})
}
