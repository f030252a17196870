package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RegistrationStep1 son los datos personales del primer paso de registro,
// retenidos en la sesión hasta completar el segundo paso.
type RegistrationStep1 struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// SessionContext es el estado de sesión explícito del lado servidor.
// Mientras un segundo factor está pendiente la cuenta vive en
// PendingAccountID; una sesión provisional nunca cuenta como autenticada.
type SessionContext struct {
	ID               string             `json:"id"`
	AccountID        string             `json:"account_id,omitempty"`
	PendingAccountID string             `json:"pending_account_id,omitempty"`
	Step1            *RegistrationStep1 `json:"step1,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	ExpiresAt        time.Time          `json:"expires_at"`
}

// Authenticated reporta si la sesión completó todos los factores.
func (s SessionContext) Authenticated() bool {
	return s.AccountID != ""
}

// SessionStore persiste sesiones entre requests.
type SessionStore interface {
	Save(ctx context.Context, session SessionContext) error
	Get(ctx context.Context, id string) (SessionContext, error)
	Delete(ctx context.Context, id string) error
}

type memorySessionStore struct {
	mu    sync.Mutex
	items map[string]SessionContext
}

func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{
		items: make(map[string]SessionContext),
	}
}

func (s *memorySessionStore) Save(_ context.Context, session SessionContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[session.ID] = session
	return nil
}

func (s *memorySessionStore) Get(_ context.Context, id string) (SessionContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.items[id]
	if !ok {
		return SessionContext{}, ErrSessionNotFound
	}
	if time.Now().UTC().After(session.ExpiresAt) {
		delete(s.items, id)
		return SessionContext{}, ErrSessionNotFound
	}
	return session, nil
}

func (s *memorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

type redisSessionStore struct {
	client *redis.Client
	prefix string
}

func NewRedisSessionStore(client *redis.Client) SessionStore {
	if client == nil {
		return nil
	}
	return &redisSessionStore{
		client: client,
		prefix: "session:",
	}
}

func (s *redisSessionStore) Save(ctx context.Context, session SessionContext) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return ErrSessionNotFound
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+session.ID, payload, ttl).Err()
}

func (s *redisSessionStore) Get(ctx context.Context, id string) (SessionContext, error) {
	payload, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return SessionContext{}, ErrSessionNotFound
	}
	if err != nil {
		return SessionContext{}, err
	}
	var session SessionContext
	if err := json.Unmarshal(payload, &session); err != nil {
		return SessionContext{}, ErrSessionNotFound
	}
	return session, nil
}

func (s *redisSessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.prefix+id).Err()
}
