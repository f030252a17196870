package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ydzz18/photo-web-sub000/internal/domain"
	"github.com/Ydzz18/photo-web-sub000/internal/repository"
)

const codeTTL = 10 * time.Minute

// CodeService emite y consume códigos numéricos de segundo factor.
// La vigencia es relativa: se compara created_at contra la hora de
// verificación, no contra una columna de expiración.
type CodeService struct {
	logger *zap.Logger
	codes  repository.CodeRepository
	now    func() time.Time
}

func NewCodeService(logger *zap.Logger, codes repository.CodeRepository) *CodeService {
	return &CodeService{
		logger: logger,
		codes:  codes,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Generate produce un código de 6 dígitos uniforme y guarda su hash.
// Antes de insertar barre los códigos vencidos de la cuenta.
func (s *CodeService) Generate(ctx context.Context, accountID string) (string, error) {
	now := s.now()
	if err := s.codes.DeleteOlderThan(ctx, accountID, now.Add(-codeTTL)); err != nil {
		// Limpieza oportunista; no bloquea la emisión.
		s.logger.Warn("stale code sweep failed", zap.Error(err))
	}

	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%06d", n.Int64())

	if err := s.codes.Create(ctx, domain.TwoFactorCode{
		ID:        uuid.NewString(),
		AccountID: accountID,
		CodeHash:  hashSecret(code),
		CreatedAt: now,
	}); err != nil {
		s.logger.Error("store code failed", zap.Error(err))
		return "", ErrStorage
	}
	return code, nil
}

// Consume borra el código en la misma sentencia que lo valida:
// la primera entrega correcta gana y la segunda ya no encuentra fila.
func (s *CodeService) Consume(ctx context.Context, accountID, code string) error {
	if !isSixDigits(code) {
		return ErrCodeInvalid
	}
	ok, err := s.codes.ConsumeMatching(ctx, accountID, hashSecret(code), s.now().Add(-codeTTL))
	if err != nil {
		s.logger.Error("code consume failed", zap.Error(err))
		return ErrStorage
	}
	if !ok {
		return ErrCodeInvalid
	}
	return nil
}

// VoidChallenge descarta todos los códigos pendientes de la cuenta.
func (s *CodeService) VoidChallenge(ctx context.Context, accountID string) error {
	if err := s.codes.DeleteForAccount(ctx, accountID); err != nil {
		s.logger.Error("void challenge failed", zap.Error(err))
		return ErrStorage
	}
	return nil
}

func isSixDigits(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
