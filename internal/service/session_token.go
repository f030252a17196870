package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrSessionTokenInvalid cubre firma inválida, expiración y claims rotos.
var ErrSessionTokenInvalid = errors.New("session token invalid")

// SessionTokenCodec firma el id de sesión que viaja en la cookie.
// El token no lleva identidad: solo apunta a la sesión del lado servidor.
type SessionTokenCodec struct {
	secret []byte
	issuer string
}

type sessionClaims struct {
	jwt.RegisteredClaims
}

func NewSessionTokenCodec(secret string) *SessionTokenCodec {
	return &SessionTokenCodec{
		secret: []byte(secret),
		issuer: "photo-web",
	}
}

func (c *SessionTokenCodec) Encode(sessionID string, expiresAt time.Time) (string, error) {
	if len(c.secret) == 0 || strings.TrimSpace(sessionID) == "" {
		return "", ErrSessionTokenInvalid
	}
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

func (c *SessionTokenCodec) Decode(tokenString string) (string, error) {
	if len(c.secret) == 0 || strings.TrimSpace(tokenString) == "" {
		return "", ErrSessionTokenInvalid
	}
	var claims sessionClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return "", ErrSessionTokenInvalid
	}
	if claims.Issuer != c.issuer || strings.TrimSpace(claims.Subject) == "" {
		return "", ErrSessionTokenInvalid
	}
	return claims.Subject, nil
}
