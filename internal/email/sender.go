package email

import (
	"context"
	"errors"
	"time"
)

// Kind identifica la plantilla del mensaje a entregar.
type Kind string

const (
	KindConfirmation  Kind = "confirmation"
	KindTwoFactor     Kind = "two_factor"
	KindPasswordReset Kind = "password_reset"
)

// Vars son los datos variables de cada plantilla.
type Vars struct {
	DisplayName string
	Code        string
	Link        string
	ExpiresAt   time.Time
}

// Sender define la interfaz para entrega de correos del flujo de autenticación.
type Sender interface {
	Send(ctx context.Context, toEmail string, kind Kind, vars Vars) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) Send(_ context.Context, _ string, _ Kind, _ Vars) error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}
