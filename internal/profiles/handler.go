package profiles

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"streamhub/internal/auth"
	"streamhub/internal/logging"
	"streamhub/pkg/models"
)

type Handler struct {
	Repo   *Repo
	Users  *auth.Repo
	Tokens auth.TokenService
}

func NewHandler(repo *Repo, users *auth.Repo, tokens auth.TokenService) *Handler {
	return &Handler{Repo: repo, Users: users, Tokens: tokens}
}

// RegisterRoutes expects rg to be behind auth.AuthMiddleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
	rg.GET("/profiles", h.list)
	rg.POST("/profiles", h.create)
	rg.POST("/profiles/select", h.selectProfile)
	rg.DELETE("/profiles/:id", h.delete)
}

func (h *Handler) me(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	u, err := h.Users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get user failed"})
		return
	}
	if u == nil {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}

	var selected *models.Profile
	if claims.ProfileID != "" {
		selected, err = h.Repo.Get(c.Request.Context(), u.ID, claims.ProfileID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "get profile failed"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"_id":      u.ID,
			"fullName": u.FullName,
			"email":    u.Email,
			"role":     u.Role,
		},
		"selectedProfile": selected,
	})
}

func (h *Handler) list(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	items, err := h.Repo.List(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	var selected any
	if claims.ProfileID != "" {
		selected = claims.ProfileID
	}
	c.JSON(http.StatusOK, gin.H{"profiles": items, "selectedProfileId": selected})
}

type createReq struct {
	Name        string `json:"name"`
	AvatarColor string `json:"avatarColor"`
}

func randomColor() string {
	return fmt.Sprintf("#%06x", rand.IntN(0x1000000))
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}
	if req.AvatarColor == "" {
		req.AvatarColor = randomColor()
	}

	p := models.Profile{
		ID:          uuid.NewString(),
		UserID:      auth.MustGetClaims(c).UserID,
		Name:        req.Name,
		AvatarColor: req.AvatarColor,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.Repo.Create(c.Request.Context(), p); err != nil {
		if errors.Is(err, ErrLimitReached) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "profile": p})
}

type selectReq struct {
	ProfileID string `json:"profileId"`
}

// selectProfile answers with a token scoped to the chosen profile. Clients
// replace their current token with it.
func (h *Handler) selectProfile(c *gin.Context) {
	var req selectReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ProfileID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profileId required"})
		return
	}

	claims := auth.MustGetClaims(c)
	p, err := h.Repo.Get(c.Request.Context(), claims.UserID, req.ProfileID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get profile failed"})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrNotFound.Error()})
		return
	}

	u, err := h.Users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil || u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	token, exp, err := h.Tokens.Sign(u, p.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token failed"})
		return
	}

	logging.Ctx(c.Request.Context()).Debug().Str("profile_id", p.ID).Msg("profile selected")
	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"profile":    p,
		"token":      token,
		"expires_at": exp.UTC().Format(time.RFC3339),
	})
}

func (h *Handler) delete(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	err := h.Repo.Delete(c.Request.Context(), claims.UserID, c.Param("id"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrLastProfile):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logging.Ctx(c.Request.Context()).Error().Err(err).Msg("delete profile failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
	}
}
