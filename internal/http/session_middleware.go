package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Ydzz18/photo-web-sub000/internal/service"
)

const (
	sessionContextKey = "session_context"
	sessionCookieName = "pw_session"
)

// SessionMiddleware resuelve cookie firmada -> id de sesión -> contexto
// de sesión y lo deja disponible en el contexto del request. No aborta:
// las rutas deciden con RequireAuth.
func SessionMiddleware(sessions *service.SessionService, codec *service.SessionTokenCodec) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(sessionCookieName)
		if err == nil && cookie != "" {
			if sid, err := codec.Decode(cookie); err == nil {
				if session, err := sessions.Get(c.Request.Context(), sid); err == nil {
					c.Set(sessionContextKey, session)
				}
			}
		}
		c.Next()
	}
}

// RequireAuth corta con 401 si la sesión no completó todos los factores.
// Una sesión con segundo factor pendiente no pasa.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := GetSession(c)
		if !ok || !session.Authenticated() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetSession obtiene el contexto de sesión desde el contexto del request.
func GetSession(c *gin.Context) (service.SessionContext, bool) {
	val, ok := c.Get(sessionContextKey)
	if !ok {
		return service.SessionContext{}, false
	}
	session, ok := val.(service.SessionContext)
	return session, ok
}

func setSessionCookie(c *gin.Context, codec *service.SessionTokenCodec, session service.SessionContext) error {
	token, err := codec.Encode(session.ID, session.ExpiresAt)
	if err != nil {
		return err
	}
	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	c.SetCookie(sessionCookieName, token, maxAge, "/", "", false, true)
	return nil
}

func clearSessionCookie(c *gin.Context) {
	c.SetCookie(sessionCookieName, "", -1, "/", "", false, true)
}
