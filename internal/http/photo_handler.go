package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ydzz18/photo-web-sub000/internal/service"
)

// PhotoHandler mantiene dependencias para fotos, likes, comentarios,
// follows y notificaciones.
type PhotoHandler struct {
	logger   *zap.Logger
	photoSvc *service.PhotoService
}

func NewPhotoHandler(logger *zap.Logger, photoSvc *service.PhotoService) *PhotoHandler {
	return &PhotoHandler{
		logger:   logger,
		photoSvc: photoSvc,
	}
}

// CreatePhoto maneja POST /photos. El archivo ya debe existir en el
// almacenamiento de objetos; acá solo se registra su metadata.
func (h *PhotoHandler) CreatePhoto(c *gin.Context) {
	var req struct {
		ObjectKey string `json:"object_key" binding:"required"`
		Caption   string `json:"caption"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	session, _ := GetSession(c)
	photo, err := h.photoSvc.CreatePhoto(c.Request.Context(), session.AccountID, req.ObjectKey, req.Caption)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"photo": photo})
}

// GetPhoto maneja GET /photos/:id.
func (h *PhotoHandler) GetPhoto(c *gin.Context) {
	photo, err := h.photoSvc.GetPhoto(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"photo": photo})
}

// DeletePhoto maneja DELETE /photos/:id.
func (h *PhotoHandler) DeletePhoto(c *gin.Context) {
	session, _ := GetSession(c)
	if err := h.photoSvc.DeletePhoto(c.Request.Context(), c.Param("id"), session.AccountID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListUserPhotos maneja GET /users/:username/photos.
func (h *PhotoHandler) ListUserPhotos(c *gin.Context) {
	photos, err := h.photoSvc.ListUserPhotos(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"photos": photos})
}

// Like maneja POST /photos/:id/like.
func (h *PhotoHandler) Like(c *gin.Context) {
	session, _ := GetSession(c)
	if err := h.photoSvc.Like(c.Request.Context(), c.Param("id"), session.AccountID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Unlike maneja DELETE /photos/:id/like.
func (h *PhotoHandler) Unlike(c *gin.Context) {
	session, _ := GetSession(c)
	if err := h.photoSvc.Unlike(c.Request.Context(), c.Param("id"), session.AccountID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddComment maneja POST /photos/:id/comments.
func (h *PhotoHandler) AddComment(c *gin.Context) {
	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	session, _ := GetSession(c)
	comment, err := h.photoSvc.AddComment(c.Request.Context(), c.Param("id"), session.AccountID, req.Body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// DeleteComment maneja DELETE /comments/:id.
func (h *PhotoHandler) DeleteComment(c *gin.Context) {
	session, _ := GetSession(c)
	if err := h.photoSvc.DeleteComment(c.Request.Context(), c.Param("id"), session.AccountID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Follow maneja POST /users/:username/follow.
func (h *PhotoHandler) Follow(c *gin.Context) {
	session, _ := GetSession(c)
	if err := h.photoSvc.Follow(c.Request.Context(), session.AccountID, c.Param("username")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Unfollow maneja DELETE /users/:username/follow.
func (h *PhotoHandler) Unfollow(c *gin.Context) {
	session, _ := GetSession(c)
	if err := h.photoSvc.Unfollow(c.Request.Context(), session.AccountID, c.Param("username")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Notifications maneja GET /notifications.
func (h *PhotoHandler) Notifications(c *gin.Context) {
	session, _ := GetSession(c)
	notifications, err := h.photoSvc.Notifications(c.Request.Context(), session.AccountID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// MarkNotificationsRead maneja POST /notifications/read.
func (h *PhotoHandler) MarkNotificationsRead(c *gin.Context) {
	session, _ := GetSession(c)
	if err := h.photoSvc.MarkNotificationsRead(c.Request.Context(), session.AccountID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PhotoHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
	case errors.Is(err, service.ErrSelfAction):
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot target own account"})
	default:
		h.logger.Error("photo request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "try again later"})
	}
}
