package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Ydzz18/photo-web-sub000/internal/domain"
	"github.com/Ydzz18/photo-web-sub000/internal/repository"
)

// dummyHash se compara cuando el identificador no existe, para que el
// costo de la respuesta no delate si la cuenta está registrada.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// CredentialService es el dueño de las cuentas y de sus banderas de seguridad.
type CredentialService struct {
	logger   *zap.Logger
	accounts repository.AccountRepository
}

func NewCredentialService(logger *zap.Logger, accounts repository.AccountRepository) *CredentialService {
	return &CredentialService{
		logger:   logger,
		accounts: accounts,
	}
}

// VerifyPassword busca por username o email y compara con bcrypt.
// No-encontrado y contraseña incorrecta devuelven el mismo error.
func (s *CredentialService) VerifyPassword(ctx context.Context, identifier, password string) (domain.Account, error) {
	identifier = normalizeIdentifier(identifier)
	password = strings.TrimSpace(password)
	if identifier == "" || password == "" {
		return domain.Account{}, ErrInvalidCredentials
	}

	account, err := s.accounts.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return domain.Account{}, ErrInvalidCredentials
		}
		s.logger.Error("account lookup failed", zap.Error(err))
		return domain.Account{}, ErrStorage
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return domain.Account{}, ErrInvalidCredentials
	}
	return account, nil
}

func (s *CredentialService) GetAccount(ctx context.Context, id string) (domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, ErrNotFound
		}
		s.logger.Error("account lookup failed", zap.Error(err))
		return domain.Account{}, ErrStorage
	}
	return account, nil
}

func (s *CredentialService) SetEmailVerified(ctx context.Context, id string) error {
	if err := s.accounts.SetEmailStatus(ctx, id, domain.EmailVerified); err != nil {
		s.logger.Error("set email status failed", zap.Error(err))
		return ErrStorage
	}
	return nil
}

func (s *CredentialService) SetTwoFactor(ctx context.Context, id string, mode domain.TwoFactorMode) error {
	if err := s.accounts.SetTwoFactor(ctx, id, mode); err != nil {
		s.logger.Error("set two factor failed", zap.Error(err))
		return ErrStorage
	}
	return nil
}

func (s *CredentialService) UpdateProfile(ctx context.Context, id, displayName, bio string) error {
	if err := s.accounts.UpdateProfile(ctx, id, strings.TrimSpace(displayName), strings.TrimSpace(bio)); err != nil {
		s.logger.Error("update profile failed", zap.Error(err))
		return ErrStorage
	}
	return nil
}

// ChangePassword exige la contraseña vigente antes de reemplazar el hash.
func (s *CredentialService) ChangePassword(ctx context.Context, id, current, newPassword string) error {
	account, err := s.GetAccount(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(strings.TrimSpace(current))); err != nil {
		return ErrInvalidCredentials
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.accounts.UpdatePasswordHash(ctx, id, hash); err != nil {
		s.logger.Error("update password failed", zap.Error(err))
		return ErrStorage
	}
	return nil
}

// HashPassword genera un hash bcrypt con el costo por defecto.
func HashPassword(password string) (string, error) {
	password = strings.TrimSpace(password)
	if password == "" {
		return "", ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func normalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
