package domain

import "time"

// TwoFactorCode es un desafío pendiente; su vigencia se evalúa contra
// created_at al momento de verificar, no contra una columna de expiración.
type TwoFactorCode struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	CodeHash  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
