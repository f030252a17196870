package domain

import "time"

// EmailStatus indica si la dirección de correo fue confirmada.
type EmailStatus string

const (
	EmailUnverified EmailStatus = "unverified"
	EmailVerified   EmailStatus = "verified"
)

// TwoFactorMode indica si la cuenta exige un segundo factor al iniciar sesión.
type TwoFactorMode string

const (
	TwoFactorDisabled TwoFactorMode = "disabled"
	TwoFactorEnabled  TwoFactorMode = "enabled"
)

type Account struct {
	ID           string        `json:"id"`
	Username     string        `json:"username"`
	Email        string        `json:"email"`
	PasswordHash string        `json:"-"`
	DisplayName  string        `json:"display_name,omitempty"`
	Bio          string        `json:"bio,omitempty"`
	EmailStatus  EmailStatus   `json:"email_status"`
	TwoFactor    TwoFactorMode `json:"two_factor"`
	CreatedAt    time.Time     `json:"created_at"`
}
