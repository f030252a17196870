package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionService es la autoridad de sesiones: crea, promueve y destruye
// contextos de sesión sobre el store configurado.
type SessionService struct {
	store SessionStore
	ttl   time.Duration
	now   func() time.Time
}

func NewSessionService(store SessionStore, ttl time.Duration) *SessionService {
	if store == nil {
		store = NewMemorySessionStore()
	}
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &SessionService{
		store: store,
		ttl:   ttl,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *SessionService) Get(ctx context.Context, id string) (SessionContext, error) {
	return s.store.Get(ctx, id)
}

// Anonymous crea una sesión sin cuenta asociada (registro en curso).
func (s *SessionService) Anonymous(ctx context.Context) (SessionContext, error) {
	return s.create(ctx, "", "")
}

// Establish crea la sesión autenticada; solo debe llamarse cuando todos
// los factores requeridos fueron verificados.
func (s *SessionService) Establish(ctx context.Context, accountID string) (SessionContext, error) {
	return s.create(ctx, accountID, "")
}

// BeginTwoFactor deja la cuenta en el casillero provisional hasta que el
// código sea verificado.
func (s *SessionService) BeginTwoFactor(ctx context.Context, accountID string) (SessionContext, error) {
	return s.create(ctx, "", accountID)
}

// Promote convierte una sesión provisional en autenticada, rotando el id.
func (s *SessionService) Promote(ctx context.Context, session SessionContext) (SessionContext, error) {
	if session.PendingAccountID == "" {
		return SessionContext{}, ErrNoPendingLogin
	}
	if err := s.store.Delete(ctx, session.ID); err != nil {
		return SessionContext{}, err
	}
	return s.create(ctx, session.PendingAccountID, "")
}

// Update persiste cambios de una sesión existente (ej. datos del paso 1).
func (s *SessionService) Update(ctx context.Context, session SessionContext) error {
	return s.store.Save(ctx, session)
}

// Destroy invalida la sesión; funciona también sobre sesiones a medio
// formar (2FA pendiente) para soportar logout/cancelación.
func (s *SessionService) Destroy(ctx context.Context, session SessionContext) error {
	if session.ID == "" {
		return nil
	}
	return s.store.Delete(ctx, session.ID)
}

func (s *SessionService) create(ctx context.Context, accountID, pendingID string) (SessionContext, error) {
	now := s.now()
	session := SessionContext{
		ID:               uuid.NewString(),
		AccountID:        accountID,
		PendingAccountID: pendingID,
		CreatedAt:        now,
		ExpiresAt:        now.Add(s.ttl),
	}
	if err := s.store.Save(ctx, session); err != nil {
		return SessionContext{}, err
	}
	return session, nil
}
