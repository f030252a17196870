package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Ydzz18/photo-web-sub000/internal/domain"
	"github.com/Ydzz18/photo-web-sub000/internal/email"
	"github.com/Ydzz18/photo-web-sub000/internal/repository"
)

const (
	twoFactorMaxAttempts = 5
	resendMaxPerHour     = 3
)

// AuthService orquesta el flujo completo: registro en dos pasos, login,
// segundo factor, confirmación de correo y reseteo de contraseña.
type AuthService struct {
	logger           *zap.Logger
	accounts         repository.AccountRepository
	creds            *CredentialService
	tokens           *TokenService
	codes            *CodeService
	sessions         *SessionService
	sender           email.Sender
	twoFactorLimiter AttemptLimiter
	resendLimiter    AttemptLimiter
	baseURL          string
}

func NewAuthService(
	logger *zap.Logger,
	accounts repository.AccountRepository,
	creds *CredentialService,
	tokens *TokenService,
	codes *CodeService,
	sessions *SessionService,
	sender email.Sender,
	twoFactorLimiter AttemptLimiter,
	resendLimiter AttemptLimiter,
	baseURL string,
) *AuthService {
	if twoFactorLimiter == nil {
		twoFactorLimiter = NewAttemptLimiter(codeTTL, twoFactorMaxAttempts)
	}
	if resendLimiter == nil {
		resendLimiter = NewAttemptLimiter(time.Hour, resendMaxPerHour)
	}
	return &AuthService{
		logger:           logger,
		accounts:         accounts,
		creds:            creds,
		tokens:           tokens,
		codes:            codes,
		sessions:         sessions,
		sender:           sender,
		twoFactorLimiter: twoFactorLimiter,
		resendLimiter:    resendLimiter,
		baseURL:          strings.TrimRight(baseURL, "/"),
	}
}

// RegisterStep1 guarda los datos personales en la sesión; crea una
// sesión anónima si el request llegó sin una.
func (s *AuthService) RegisterStep1(ctx context.Context, session SessionContext, info RegistrationStep1) (SessionContext, error) {
	info.FirstName = strings.TrimSpace(info.FirstName)
	info.LastName = strings.TrimSpace(info.LastName)
	if info.FirstName == "" || info.LastName == "" {
		return SessionContext{}, ErrInvalidInput
	}

	if session.ID == "" {
		var err error
		session, err = s.sessions.Anonymous(ctx)
		if err != nil {
			s.logger.Error("create session failed", zap.Error(err))
			return SessionContext{}, ErrStorage
		}
	}
	session.Step1 = &info
	if err := s.sessions.Update(ctx, session); err != nil {
		s.logger.Error("save session failed", zap.Error(err))
		return SessionContext{}, ErrStorage
	}
	return session, nil
}

type RegisterStep2Input struct {
	Username string
	Email    string
	Password string
}

// RegisterStep2 crea la cuenta y la deja autenticada de inmediato.
// La confirmación de correo es un flujo lateral: un fallo al emitir o
// entregar el enlace no bloquea el registro.
func (s *AuthService) RegisterStep2(ctx context.Context, session SessionContext, input RegisterStep2Input) (domain.Account, SessionContext, error) {
	if session.Step1 == nil {
		return domain.Account{}, SessionContext{}, ErrStepIncomplete
	}

	username := strings.ToLower(strings.TrimSpace(input.Username))
	emailAddr := normalizeEmail(input.Email)
	if username == "" || emailAddr == "" {
		return domain.Account{}, SessionContext{}, ErrInvalidInput
	}
	passwordHash, err := HashPassword(input.Password)
	if err != nil {
		return domain.Account{}, SessionContext{}, err
	}

	account := domain.Account{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        emailAddr,
		PasswordHash: passwordHash,
		DisplayName:  session.Step1.FirstName + " " + session.Step1.LastName,
		EmailStatus:  domain.EmailUnverified,
		TwoFactor:    domain.TwoFactorDisabled,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if repository.IsUniqueViolation(err) {
			return domain.Account{}, SessionContext{}, ErrAccountExists
		}
		s.logger.Error("create account failed", zap.Error(err))
		return domain.Account{}, SessionContext{}, ErrStorage
	}

	if err := s.sendConfirmation(ctx, account); err != nil {
		s.logger.Warn("confirmation email not sent", zap.Error(err), zap.String("account_id", account.ID))
	}

	if err := s.sessions.Destroy(ctx, session); err != nil {
		s.logger.Warn("drop registration session failed", zap.Error(err))
	}
	authed, err := s.sessions.Establish(ctx, account.ID)
	if err != nil {
		s.logger.Error("establish session failed", zap.Error(err))
		return domain.Account{}, SessionContext{}, ErrStorage
	}
	return account, authed, nil
}

type LoginResult struct {
	Account          domain.Account
	Session          SessionContext
	TwoFactorPending bool
}

// Login valida credenciales y, según la cuenta, establece sesión completa
// o deja el login pendiente de segundo factor. Si la entrega del código
// falla, la transición se aborta: el código emitido queda vigente pero el
// usuario vuelve a estado anónimo.
func (s *AuthService) Login(ctx context.Context, session SessionContext, identifier, password string) (LoginResult, error) {
	account, err := s.creds.VerifyPassword(ctx, identifier, password)
	if err != nil {
		return LoginResult{}, err
	}

	if session.ID != "" {
		if err := s.sessions.Destroy(ctx, session); err != nil {
			s.logger.Warn("drop previous session failed", zap.Error(err))
		}
	}

	if account.TwoFactor == domain.TwoFactorEnabled {
		code, err := s.codes.Generate(ctx, account.ID)
		if err != nil {
			return LoginResult{}, err
		}
		if err := s.sender.Send(ctx, account.Email, email.KindTwoFactor, email.Vars{
			DisplayName: account.DisplayName,
			Code:        code,
		}); err != nil {
			s.logger.Warn("two factor delivery failed", zap.Error(err), zap.String("account_id", account.ID))
			return LoginResult{}, ErrDeliveryFailed
		}
		pending, err := s.sessions.BeginTwoFactor(ctx, account.ID)
		if err != nil {
			s.logger.Error("begin two factor session failed", zap.Error(err))
			return LoginResult{}, ErrStorage
		}
		return LoginResult{Account: account, Session: pending, TwoFactorPending: true}, nil
	}

	authed, err := s.sessions.Establish(ctx, account.ID)
	if err != nil {
		s.logger.Error("establish session failed", zap.Error(err))
		return LoginResult{}, ErrStorage
	}
	return LoginResult{Account: account, Session: authed}, nil
}

// VerifyTwoFactor consume el código y promueve la sesión provisional.
// Un código inválido deja la sesión pendiente; agotar los intentos
// descarta el desafío completo.
func (s *AuthService) VerifyTwoFactor(ctx context.Context, session SessionContext, code string) (domain.Account, SessionContext, error) {
	if session.PendingAccountID == "" {
		return domain.Account{}, SessionContext{}, ErrNoPendingLogin
	}
	accountID := session.PendingAccountID

	if !s.twoFactorLimiter.Allow("2fa:" + accountID) {
		if err := s.codes.VoidChallenge(ctx, accountID); err != nil {
			s.logger.Warn("void challenge failed", zap.Error(err))
		}
		if err := s.sessions.Destroy(ctx, session); err != nil {
			s.logger.Warn("drop pending session failed", zap.Error(err))
		}
		return domain.Account{}, SessionContext{}, ErrRateLimited
	}

	if err := s.codes.Consume(ctx, accountID, strings.TrimSpace(code)); err != nil {
		return domain.Account{}, SessionContext{}, err
	}

	promoted, err := s.sessions.Promote(ctx, session)
	if err != nil {
		s.logger.Error("promote session failed", zap.Error(err))
		return domain.Account{}, SessionContext{}, ErrStorage
	}
	account, err := s.creds.GetAccount(ctx, accountID)
	if err != nil {
		return domain.Account{}, SessionContext{}, err
	}
	return account, promoted, nil
}

// ConfirmEmail consume el token de confirmación y marca el correo
// como verificado.
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) error {
	accountID, err := s.tokens.ConsumeValid(ctx, strings.TrimSpace(token), domain.PurposeConfirmEmail)
	if err != nil {
		return err
	}
	return s.creds.SetEmailVerified(ctx, accountID)
}

// ResendConfirmation emite un nuevo enlace de confirmación; los anteriores
// quedan consumidos al emitir. Reenviar sobre un correo ya verificado es
// un no-op exitoso.
func (s *AuthService) ResendConfirmation(ctx context.Context, accountID string) error {
	if !s.resendLimiter.Allow("resend:" + accountID) {
		return ErrRateLimited
	}
	account, err := s.creds.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if account.EmailStatus == domain.EmailVerified {
		return nil
	}
	if err := s.sendConfirmation(ctx, account); err != nil {
		if errors.Is(err, ErrStorage) {
			return err
		}
		return ErrDeliveryFailed
	}
	return nil
}

// RequestPasswordReset responde de forma neutra exista o no la cuenta.
// Si la entrega falla el token emitido sigue vigente y el usuario puede
// pedir el reenvío; la respuesta no cambia para no delatar la cuenta.
func (s *AuthService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return nil
	}
	account, err := s.accounts.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		s.logger.Error("account lookup failed", zap.Error(err))
		return ErrStorage
	}

	plaintext, token, err := s.tokens.Issue(ctx, account.ID, domain.PurposeResetPassword)
	if err != nil {
		return err
	}
	if err := s.sender.Send(ctx, account.Email, email.KindPasswordReset, email.Vars{
		DisplayName: account.DisplayName,
		Link:        s.baseURL + "/reset-password?token=" + plaintext,
		ExpiresAt:   token.ExpiresAt,
	}); err != nil {
		s.logger.Warn("password reset delivery failed", zap.Error(err), zap.String("account_id", account.ID))
	}
	return nil
}

// ResetPassword reescribe el hash de la cuenta dueña del token; el
// consumo condicional garantiza que el enlace sirva una sola vez.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	passwordHash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	accountID, err := s.tokens.ConsumeValid(ctx, strings.TrimSpace(token), domain.PurposeResetPassword)
	if err != nil {
		return err
	}
	if err := s.accounts.UpdatePasswordHash(ctx, accountID, passwordHash); err != nil {
		s.logger.Error("update password failed", zap.Error(err))
		return ErrStorage
	}
	return nil
}

// ChangeEmail exige la contraseña vigente, vuelve el correo a estado no
// verificado y dispara una nueva confirmación.
func (s *AuthService) ChangeEmail(ctx context.Context, accountID, password, newEmail string) error {
	account, err := s.creds.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(strings.TrimSpace(password))); err != nil {
		return ErrInvalidCredentials
	}
	newEmail = normalizeEmail(newEmail)
	if newEmail == "" {
		return ErrInvalidInput
	}
	if err := s.accounts.UpdateEmail(ctx, accountID, newEmail, domain.EmailUnverified); err != nil {
		if repository.IsUniqueViolation(err) {
			return ErrAccountExists
		}
		s.logger.Error("update email failed", zap.Error(err))
		return ErrStorage
	}
	account.Email = newEmail
	if err := s.sendConfirmation(ctx, account); err != nil {
		s.logger.Warn("confirmation email not sent", zap.Error(err), zap.String("account_id", accountID))
	}
	return nil
}

// Logout destruye la sesión, esté o no completamente formada.
func (s *AuthService) Logout(ctx context.Context, session SessionContext) error {
	if err := s.sessions.Destroy(ctx, session); err != nil {
		s.logger.Error("destroy session failed", zap.Error(err))
		return ErrStorage
	}
	return nil
}

func (s *AuthService) sendConfirmation(ctx context.Context, account domain.Account) error {
	plaintext, token, err := s.tokens.Issue(ctx, account.ID, domain.PurposeConfirmEmail)
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, account.Email, email.KindConfirmation, email.Vars{
		DisplayName: account.DisplayName,
		Link:        s.baseURL + "/confirm-email?token=" + plaintext,
		ExpiresAt:   token.ExpiresAt,
	})
}
