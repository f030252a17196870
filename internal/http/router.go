package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ydzz18/photo-web-sub000/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	sessions *service.SessionService,
	codec *service.SessionTokenCodec,
	authH *AuthHandler,
	profileH *ProfileHandler,
	photoH *PhotoHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery, JSON content-type y sesión.
	r.Use(
		zapLoggerMiddleware(logger),
		gin.Recovery(),
		jsonContentTypeMiddleware(),
		SessionMiddleware(sessions, codec),
	)

	auth := r.Group("/auth")
	auth.POST("/register/step1", authH.RegisterStep1)
	auth.POST("/register/step2", authH.RegisterStep2)
	auth.POST("/login", authH.Login)
	auth.POST("/2fa/verify", authH.VerifyTwoFactor)
	auth.POST("/password-reset/request", authH.RequestPasswordReset)
	auth.POST("/password-reset/confirm", authH.ResetPassword)
	auth.GET("/confirm-email", authH.ConfirmEmail)
	auth.POST("/confirmation/resend", RequireAuth(), authH.ResendConfirmation)
	auth.POST("/logout", authH.Logout)

	profile := r.Group("/profile", RequireAuth())
	profile.GET("", profileH.GetProfile)
	profile.PATCH("", profileH.UpdateProfile)
	profile.POST("/password", profileH.ChangePassword)
	profile.POST("/email", profileH.ChangeEmail)
	profile.POST("/2fa", profileH.SetTwoFactor)

	photos := r.Group("/photos")
	photos.POST("", RequireAuth(), photoH.CreatePhoto)
	photos.GET("/:id", photoH.GetPhoto)
	photos.DELETE("/:id", RequireAuth(), photoH.DeletePhoto)
	photos.POST("/:id/like", RequireAuth(), photoH.Like)
	photos.DELETE("/:id/like", RequireAuth(), photoH.Unlike)
	photos.POST("/:id/comments", RequireAuth(), photoH.AddComment)

	r.DELETE("/comments/:id", RequireAuth(), photoH.DeleteComment)

	users := r.Group("/users")
	users.GET("/:username/photos", photoH.ListUserPhotos)
	users.POST("/:username/follow", RequireAuth(), photoH.Follow)
	users.DELETE("/:username/follow", RequireAuth(), photoH.Unfollow)

	notifications := r.Group("/notifications", RequireAuth())
	notifications.GET("", photoH.Notifications)
	notifications.POST("/read", photoH.MarkNotificationsRead)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
