package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ydzz18/photo-web-sub000/internal/service"
)

// AuthHandler mantiene dependencias para los endpoints de autenticación.
type AuthHandler struct {
	logger  *zap.Logger
	authSvc *service.AuthService
	codec   *service.SessionTokenCodec
}

// NewAuthHandler crea una instancia de AuthHandler con dependencias necesarias.
func NewAuthHandler(logger *zap.Logger, authSvc *service.AuthService, codec *service.SessionTokenCodec) *AuthHandler {
	return &AuthHandler{
		logger:  logger,
		authSvc: authSvc,
		codec:   codec,
	}
}

// RegisterStep1 maneja POST /auth/register/step1.
func (h *AuthHandler) RegisterStep1(c *gin.Context) {
	var req struct {
		FirstName string `json:"first_name" binding:"required"`
		LastName  string `json:"last_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	session, _ := GetSession(c)
	session, err := h.authSvc.RegisterStep1(c.Request.Context(), session, service.RegistrationStep1{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		h.logger.Error("register step1 failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "try again later"})
		return
	}
	if err := setSessionCookie(c, h.codec, session); err != nil {
		h.logger.Error("session cookie failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "try again later"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "step1_complete"})
}

// RegisterStep2 maneja POST /auth/register/step2. El registro deja al
// usuario autenticado de inmediato; la confirmación de correo no bloquea.
func (h *AuthHandler) RegisterStep2(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required,min=3"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=7"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	session, _ := GetSession(c)
	account, session, err := h.authSvc.RegisterStep2(c.Request.Context(), session, service.RegisterStep2Input{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStepIncomplete):
			c.JSON(http.StatusBadRequest, gin.H{"error": "complete the first step"})
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		case errors.Is(err, service.ErrAccountExists):
			c.JSON(http.StatusConflict, gin.H{"error": "account already exists"})
		default:
			h.logger.Error("register step2 failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "try again later"})
		}
		return
	}
	if err := setSessionCookie(c, h.codec, session); err != nil {
		h.logger.Error("session cookie failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "try again later"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"account": account})
}

// Login maneja POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Identifier string `json:"identifier" binding:"required"`
		Password   string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	session, _ := GetSession(c)
	result, err := h.authSvc.Login(c.Request.Context(), session, req.Identifier, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		case errors.Is(err, service.ErrDeliveryFailed):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "delivery failed, try again"})
		default:
			h.logger.Error("login failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "try again later"})
		}
		return
	}
	if err := setSessionCookie(c, h.codec, result.Session); err != nil {
		h.logger.Error("session cookie failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "try again later"})
		return
	}
	if result.TwoFactorPending {
		c.JSON(http.StatusOK, gin.H{"status": "two_factor_pending"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": result.Account})
}

// VerifyTwoFactor maneja POST /auth/2fa/verify.
func (h *AuthHandler) VerifyTwoFactor(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	session, _ := GetSession(c)
	account, session, err := h.authSvc.VerifyTwoFactor(c.Request.Context(), session, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoPendingLogin):
			c.JSON(http.StatusBadRequest, gin.H{"error": "no pending login"})
		case errors.Is(err, service.ErrCodeInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": "code invalid or expired"})
		case errors.Is(err, service.ErrRateLimited):
			clearSessionCookie(c)
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts"})
		default:
			h.logger.Error("two factor verify failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "try again later"})
		}
		return
	}
	if err := setSessionCookie(c, h.codec, session); err != nil {
		h.logger.Error("session cookie failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "try again later"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": account})
}

// RequestPasswordReset maneja POST /auth/password-reset/request.
// La respuesta es la misma exista o no la cuenta.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.authSvc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.logger.Error("password reset request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "try again later"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset_requested", "message": "if an account exists, a link was sent"})
}

// ResetPassword maneja POST /auth/password-reset/confirm.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=7"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.authSvc.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrTokenInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": "token invalid or expired"})
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		default:
			h.logger.Error("password reset failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "try again later"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "password_reset"})
}

// ConfirmEmail maneja GET /auth/confirm-email?token=...
func (h *AuthHandler) ConfirmEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.authSvc.ConfirmEmail(c.Request.Context(), token); err != nil {
		if errors.Is(err, service.ErrTokenInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token invalid or expired"})
			return
		}
		h.logger.Error("confirm email failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "try again later"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "email_confirmed"})
}

// ResendConfirmation maneja POST /auth/confirmation/resend.
func (h *AuthHandler) ResendConfirmation(c *gin.Context) {
	session, _ := GetSession(c)
	if err := h.authSvc.ResendConfirmation(c.Request.Context(), session.AccountID); err != nil {
		switch {
		case errors.Is(err, service.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
		case errors.Is(err, service.ErrDeliveryFailed):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "delivery failed, try again"})
		default:
			h.logger.Error("resend confirmation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "try again later"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "confirmation_sent"})
}

// Logout maneja POST /auth/logout; también destruye sesiones a medio
// formar (2FA pendiente).
func (h *AuthHandler) Logout(c *gin.Context) {
	session, ok := GetSession(c)
	if ok {
		if err := h.authSvc.Logout(c.Request.Context(), session); err != nil {
			h.logger.Error("logout failed", zap.Error(err))
		}
	}
	clearSessionCookie(c)
	c.Status(http.StatusNoContent)
}
