package service

import "errors"

// Resultados terminales del flujo; los handlers los traducen a mensajes
// genéricos sin filtrar detalle interno.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountExists      = errors.New("account already exists")
	ErrTokenInvalid       = errors.New("token invalid or expired")
	ErrCodeInvalid        = errors.New("code invalid or expired")
	ErrDeliveryFailed     = errors.New("delivery failed")
	ErrStorage            = errors.New("storage unavailable")
	ErrRateLimited        = errors.New("rate limited")
	ErrSessionNotFound    = errors.New("session not found")
	ErrNoPendingLogin     = errors.New("no pending login")
	ErrStepIncomplete     = errors.New("registration step incomplete")
	ErrNotFound           = errors.New("not found")
	ErrSelfAction         = errors.New("cannot target own account")
	ErrInvalidInput       = errors.New("invalid input")
)
