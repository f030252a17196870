package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/Ydzz18/photo-web-sub000/internal/domain"
	"github.com/Ydzz18/photo-web-sub000/internal/repository"
)

const tokenTTL = 24 * time.Hour

// TokenService emite y verifica tokens de un solo uso para confirmación
// de correo y reseteo de contraseña. Solo persiste el hash.
type TokenService struct {
	logger *zap.Logger
	tokens repository.TokenRepository
	now    func() time.Time
}

func NewTokenService(logger *zap.Logger, tokens repository.TokenRepository) *TokenService {
	return &TokenService{
		logger: logger,
		tokens: tokens,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Issue genera 256 bits de entropía, guarda el hash con vencimiento fijo
// y consume cualquier token pendiente del mismo propósito.
func (s *TokenService) Issue(ctx context.Context, accountID string, purpose domain.TokenPurpose) (string, domain.SecurityToken, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", domain.SecurityToken{}, err
	}
	plaintext := base64.RawURLEncoding.EncodeToString(raw)

	now := s.now()
	token := domain.SecurityToken{
		ID:        uuid.NewString(),
		AccountID: accountID,
		TokenHash: hashSecret(plaintext),
		Purpose:   purpose,
		CreatedAt: now,
		ExpiresAt: now.Add(tokenTTL),
	}
	if err := s.tokens.CreateExclusive(ctx, token); err != nil {
		s.logger.Error("store token failed", zap.Error(err), zap.String("purpose", string(purpose)))
		return "", domain.SecurityToken{}, ErrStorage
	}
	return plaintext, token, nil
}

// Verify no consume; existe para chequeos previos (ej. mostrar el
// formulario de reseteo) sin invalidar el token.
func (s *TokenService) Verify(ctx context.Context, plaintext string, purpose domain.TokenPurpose) (string, error) {
	token, err := s.tokens.GetActiveByHash(ctx, hashSecret(plaintext), purpose, s.now())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrTokenInvalid
		}
		s.logger.Error("token lookup failed", zap.Error(err))
		return "", ErrStorage
	}
	return token.AccountID, nil
}

// ConsumeValid marca el token como usado en una sola sentencia condicional
// y devuelve la cuenta dueña; es la vía que usa el flujo.
func (s *TokenService) ConsumeValid(ctx context.Context, plaintext string, purpose domain.TokenPurpose) (string, error) {
	accountID, err := s.tokens.ConsumeByHash(ctx, hashSecret(plaintext), purpose, s.now())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrTokenInvalid
		}
		s.logger.Error("token consume failed", zap.Error(err))
		return "", ErrStorage
	}
	return accountID, nil
}

// Consume es idempotente: un token ya consumido o inexistente no es error.
func (s *TokenService) Consume(ctx context.Context, plaintext string, purpose domain.TokenPurpose) error {
	if err := s.tokens.MarkConsumed(ctx, hashSecret(plaintext), purpose, s.now()); err != nil {
		s.logger.Error("token consume failed", zap.Error(err))
		return ErrStorage
	}
	return nil
}

func hashSecret(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
