package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ydzz18/photo-web-sub000/internal/domain"
	"github.com/Ydzz18/photo-web-sub000/internal/service"
)

// ProfileHandler mantiene dependencias para los endpoints de perfil.
type ProfileHandler struct {
	logger  *zap.Logger
	creds   *service.CredentialService
	authSvc *service.AuthService
}

func NewProfileHandler(logger *zap.Logger, creds *service.CredentialService, authSvc *service.AuthService) *ProfileHandler {
	return &ProfileHandler{
		logger:  logger,
		creds:   creds,
		authSvc: authSvc,
	}
}

// GetProfile maneja GET /profile.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	session, _ := GetSession(c)
	account, err := h.creds.GetAccount(c.Request.Context(), session.AccountID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": account})
}

// UpdateProfile maneja PATCH /profile.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		DisplayName string `json:"display_name"`
		Bio         string `json:"bio"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	session, _ := GetSession(c)
	if err := h.creds.UpdateProfile(c.Request.Context(), session.AccountID, req.DisplayName, req.Bio); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "profile_updated"})
}

// ChangePassword maneja POST /profile/password.
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=7"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	session, _ := GetSession(c)
	if err := h.creds.ChangePassword(c.Request.Context(), session.AccountID, req.CurrentPassword, req.NewPassword); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "password_changed"})
}

// ChangeEmail maneja POST /profile/email; el correo nuevo vuelve a estado
// no verificado y recibe un enlace de confirmación.
func (h *ProfileHandler) ChangeEmail(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	session, _ := GetSession(c)
	if err := h.authSvc.ChangeEmail(c.Request.Context(), session.AccountID, req.Password, req.Email); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "email_changed"})
}

// SetTwoFactor maneja POST /profile/2fa.
func (h *ProfileHandler) SetTwoFactor(c *gin.Context) {
	var req struct {
		Enabled *bool `json:"enabled" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	mode := domain.TwoFactorDisabled
	if *req.Enabled {
		mode = domain.TwoFactorEnabled
	}
	session, _ := GetSession(c)
	if err := h.creds.SetTwoFactor(c.Request.Context(), session.AccountID, mode); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"two_factor": mode})
}

func (h *ProfileHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, service.ErrAccountExists):
		c.JSON(http.StatusConflict, gin.H{"error": "account already exists"})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		h.logger.Error("profile request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "try again later"})
	}
}
