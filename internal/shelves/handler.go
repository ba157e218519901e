package shelves

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"streamhub/internal/auth"
	"streamhub/internal/catalog"
)

const maxGenreRowLimit = 50

type Handler struct {
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Service: svc}
}

// RegisterRoutes expects rg to be behind auth.AuthMiddleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/recent", h.recent)
	rg.GET("/recommendations", h.recommendations)
	rg.GET("/popular", h.popular)
	rg.GET("/newest", h.newest)
	rg.GET("/genres/rows", h.genreRows)
	rg.GET("/home", h.home)
	rg.GET("/browse", h.browse)
}

// profileOf returns the selected profile or "" when none is selected.
func profileOf(c *gin.Context) string {
	id, _ := auth.ProfileID(c)
	return id
}

func writeErr(c *gin.Context, err error) {
	if errors.Is(err, auth.ErrNoProfile) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "shelves failed"})
}

func (h *Handler) recent(c *gin.Context) {
	shelf, err := h.Service.Recent(c.Request.Context(), profileOf(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, shelf)
}

func (h *Handler) recommendations(c *gin.Context) {
	shelf, err := h.Service.Recommendations(c.Request.Context(), profileOf(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, shelf)
}

func (h *Handler) popular(c *gin.Context) {
	c.JSON(http.StatusOK, h.Service.Popular(c.Request.Context()))
}

// newest answers GET /newest?limit=, capped at the grid size.
func (h *Handler) newest(c *gin.Context) {
	limit := parseInt(c.Query("limit"), h.Service.Cfg.NewestLimit)
	if limit > catalog.NewestGridLimit {
		limit = catalog.NewestGridLimit
	}
	c.JSON(http.StatusOK, h.Service.Newest(c.Request.Context(), limit))
}

func (h *Handler) genreRows(c *gin.Context) {
	limit := parseInt(c.Query("limit"), h.Service.Cfg.GenreLimit)
	if limit > maxGenreRowLimit {
		limit = maxGenreRowLimit
	}
	c.JSON(http.StatusOK, h.Service.GenreRows(c.Request.Context(), limit))
}

func (h *Handler) home(c *gin.Context) {
	home, err := h.Service.Home(c.Request.Context(), profileOf(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, home)
}

// browse answers GET /browse?q=&genre=&watched=all|yes|no.
func (h *Handler) browse(c *gin.Context) {
	watched, ok := catalog.ParseWatchedState(c.Query("watched"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "watched must be all, yes or no"})
		return
	}
	opts := catalog.FilterOptions{Query: c.Query("q"), Genre: c.Query("genre"), Watched: watched}
	out, err := h.Service.Browse(c.Request.Context(), profileOf(c), opts)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
