package media

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"streamhub/internal/auth"
	"streamhub/internal/logging"
	"streamhub/pkg/models"
)

const (
	MaxImageBytes = 500 << 20
	MaxVideoBytes = 2000 << 20

	placeholderName = "placeholder.jpg"
)

type uploadKind struct {
	kind        models.MediaKind
	filename    string
	contentType string
	maxBytes    int64
}

var (
	imageUpload = uploadKind{models.MediaImage, "image", "image/jpeg", MaxImageBytes}
	videoUpload = uploadKind{models.MediaVideo, "video", "video/mp4", MaxVideoBytes}
)

type Handler struct {
	Repo  *Repo
	Store *FilesystemStore
}

func NewHandler(repo *Repo, store *FilesystemStore) *Handler {
	return &Handler{Repo: repo, Store: store}
}

// RegisterUploadRoutes expects rg to be behind auth.AuthMiddleware.
func (h *Handler) RegisterUploadRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/upload", auth.RequireAdmin())
	admin.POST("/image", h.upload(imageUpload))
	admin.POST("/video", h.upload(videoUpload))
}

// RegisterServeRoutes mounts the public blob routes.
func (h *Handler) RegisterServeRoutes(r gin.IRoutes) {
	r.GET("/img/:id", h.serve(models.MediaImage))
	r.GET("/media/:id", h.serve(models.MediaVideo))
}

// upload stores the raw request body. filename and contentType come from the
// query string.
func (h *Handler) upload(k uploadKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		filename := strings.TrimSpace(c.DefaultQuery("filename", k.filename))
		if filename == "" {
			filename = k.filename
		}
		contentType := strings.TrimSpace(c.DefaultQuery("contentType", k.contentType))
		if !strings.HasPrefix(contentType, string(k.kind)+"/") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "contentType must be " + string(k.kind) + "/*"})
			return
		}

		id := uuid.NewString()
		body := http.MaxBytesReader(c.Writer, c.Request.Body, k.maxBytes)
		size, err := h.Store.Save(ctx, id, body)
		if err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
				return
			}
			logging.Ctx(ctx).Error().Err(err).Str("kind", string(k.kind)).Msg("upload failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
			return
		}
		if size == 0 {
			_ = h.Store.Remove(id)
			c.JSON(http.StatusBadRequest, gin.H{"error": "empty upload"})
			return
		}

		f := models.MediaFile{
			ID:          id,
			Kind:        k.kind,
			Filename:    filename,
			ContentType: contentType,
			Size:        size,
			CreatedAt:   time.Now().UTC(),
		}
		if err := h.Repo.Create(ctx, f); err != nil {
			_ = h.Store.Remove(id)
			logging.Ctx(ctx).Error().Err(err).Msg("record upload failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
			return
		}
		logging.Ctx(ctx).Info().Str("file_id", id).Str("kind", string(k.kind)).Int64("size", size).Msg("media uploaded")
		c.JSON(http.StatusCreated, gin.H{"fileId": id})
	}
}

// serve streams a stored blob. Range requests are handled by
// http.ServeContent.
func (h *Handler) serve(kind models.MediaKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := c.Param("id")

		name, contentType := id, ""
		if kind == models.MediaImage && id == placeholderName {
			contentType = "image/jpeg"
		} else {
			meta, err := h.Repo.Get(ctx, kind, id)
			if err != nil {
				logging.Ctx(ctx).Error().Err(err).Str("file_id", id).Msg("media lookup failed")
				c.Status(http.StatusInternalServerError)
				return
			}
			if meta == nil {
				c.Status(http.StatusNotFound)
				return
			}
			name, contentType = meta.ID, meta.ContentType
		}

		f, err := h.Store.Open(name)
		if errors.Is(err, ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		if err != nil {
			logging.Ctx(ctx).Error().Err(err).Str("file_id", id).Msg("media open failed")
			c.Status(http.StatusInternalServerError)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Header("Content-Type", contentType)
		c.Header("Accept-Ranges", "bytes")
		http.ServeContent(c.Writer, c.Request, name, info.ModTime(), f)
	}
}
