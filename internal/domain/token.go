package domain

import "time"

// TokenPurpose separa los tokens de confirmación de los de reseteo;
// un token emitido para un propósito nunca valida el otro.
type TokenPurpose string

const (
	PurposeConfirmEmail  TokenPurpose = "confirm_email"
	PurposeResetPassword TokenPurpose = "reset_password"
)

// SecurityToken guarda solo el hash del token; el texto plano viaja
// una única vez en el enlace enviado por correo.
type SecurityToken struct {
	ID         string       `json:"id"`
	AccountID  string       `json:"account_id"`
	TokenHash  string       `json:"-"`
	Purpose    TokenPurpose `json:"purpose"`
	CreatedAt  time.Time    `json:"created_at"`
	ExpiresAt  time.Time    `json:"expires_at"`
	ConsumedAt *time.Time   `json:"consumed_at,omitempty"`
}
