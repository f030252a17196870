package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Ydzz18/photo-web-sub000/internal/domain"
	"github.com/Ydzz18/photo-web-sub000/internal/email"
)

type mockAccountRepo struct {
	byID map[string]domain.Account
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{byID: make(map[string]domain.Account)}
}

func (m *mockAccountRepo) Create(_ context.Context, account domain.Account) error {
	for _, existing := range m.byID {
		if existing.Username == account.Username || existing.Email == account.Email {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	m.byID[account.ID] = account
	return nil
}

func (m *mockAccountRepo) GetByID(_ context.Context, id string) (domain.Account, error) {
	account, ok := m.byID[id]
	if !ok {
		return domain.Account{}, pgx.ErrNoRows
	}
	return account, nil
}

func (m *mockAccountRepo) GetByUsername(ctx context.Context, username string) (domain.Account, error) {
	for _, account := range m.byID {
		if account.Username == username {
			return account, nil
		}
	}
	return domain.Account{}, pgx.ErrNoRows
}

func (m *mockAccountRepo) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	for _, account := range m.byID {
		if account.Email == email {
			return account, nil
		}
	}
	return domain.Account{}, pgx.ErrNoRows
}

func (m *mockAccountRepo) GetByIdentifier(ctx context.Context, identifier string) (domain.Account, error) {
	for _, account := range m.byID {
		if account.Username == identifier || account.Email == identifier {
			return account, nil
		}
	}
	return domain.Account{}, pgx.ErrNoRows
}

func (m *mockAccountRepo) UpdatePasswordHash(_ context.Context, id, passwordHash string) error {
	account, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	account.PasswordHash = passwordHash
	m.byID[id] = account
	return nil
}

func (m *mockAccountRepo) UpdateEmail(_ context.Context, id, emailAddr string, status domain.EmailStatus) error {
	for otherID, other := range m.byID {
		if otherID != id && other.Email == emailAddr {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	account, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	account.Email = emailAddr
	account.EmailStatus = status
	m.byID[id] = account
	return nil
}

func (m *mockAccountRepo) SetEmailStatus(_ context.Context, id string, status domain.EmailStatus) error {
	account, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	account.EmailStatus = status
	m.byID[id] = account
	return nil
}

func (m *mockAccountRepo) SetTwoFactor(_ context.Context, id string, mode domain.TwoFactorMode) error {
	account, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	account.TwoFactor = mode
	m.byID[id] = account
	return nil
}

func (m *mockAccountRepo) UpdateProfile(_ context.Context, id, displayName, bio string) error {
	account, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	account.DisplayName = displayName
	account.Bio = bio
	m.byID[id] = account
	return nil
}

type mockTokenRepo struct {
	tokens []domain.SecurityToken
}

func newMockTokenRepo() *mockTokenRepo {
	return &mockTokenRepo{}
}

func (m *mockTokenRepo) CreateExclusive(_ context.Context, token domain.SecurityToken) error {
	for i := range m.tokens {
		if m.tokens[i].AccountID == token.AccountID && m.tokens[i].Purpose == token.Purpose && m.tokens[i].ConsumedAt == nil {
			consumedAt := token.CreatedAt
			m.tokens[i].ConsumedAt = &consumedAt
		}
	}
	m.tokens = append(m.tokens, token)
	return nil
}

func (m *mockTokenRepo) GetActiveByHash(_ context.Context, tokenHash string, purpose domain.TokenPurpose, now time.Time) (domain.SecurityToken, error) {
	for _, token := range m.tokens {
		if token.TokenHash == tokenHash && token.Purpose == purpose && token.ConsumedAt == nil && token.ExpiresAt.After(now) {
			return token, nil
		}
	}
	return domain.SecurityToken{}, pgx.ErrNoRows
}

func (m *mockTokenRepo) ConsumeByHash(_ context.Context, tokenHash string, purpose domain.TokenPurpose, now time.Time) (string, error) {
	for i := range m.tokens {
		token := m.tokens[i]
		if token.TokenHash == tokenHash && token.Purpose == purpose && token.ConsumedAt == nil && token.ExpiresAt.After(now) {
			m.tokens[i].ConsumedAt = &now
			return token.AccountID, nil
		}
	}
	return "", pgx.ErrNoRows
}

func (m *mockTokenRepo) MarkConsumed(_ context.Context, tokenHash string, purpose domain.TokenPurpose, now time.Time) error {
	for i := range m.tokens {
		if m.tokens[i].TokenHash == tokenHash && m.tokens[i].Purpose == purpose && m.tokens[i].ConsumedAt == nil {
			m.tokens[i].ConsumedAt = &now
		}
	}
	return nil
}

type mockCodeRepo struct {
	codes []domain.TwoFactorCode
}

func newMockCodeRepo() *mockCodeRepo {
	return &mockCodeRepo{}
}

func (m *mockCodeRepo) Create(_ context.Context, code domain.TwoFactorCode) error {
	m.codes = append(m.codes, code)
	return nil
}

func (m *mockCodeRepo) DeleteOlderThan(_ context.Context, accountID string, cutoff time.Time) error {
	kept := m.codes[:0]
	for _, code := range m.codes {
		if code.AccountID == accountID && !code.CreatedAt.After(cutoff) {
			continue
		}
		kept = append(kept, code)
	}
	m.codes = kept
	return nil
}

func (m *mockCodeRepo) ConsumeMatching(_ context.Context, accountID, codeHash string, cutoff time.Time) (bool, error) {
	for i, code := range m.codes {
		if code.AccountID == accountID && code.CodeHash == codeHash && code.CreatedAt.After(cutoff) {
			m.codes = append(m.codes[:i], m.codes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCodeRepo) DeleteForAccount(_ context.Context, accountID string) error {
	kept := m.codes[:0]
	for _, code := range m.codes {
		if code.AccountID != accountID {
			kept = append(kept, code)
		}
	}
	m.codes = kept
	return nil
}

type sentEmail struct {
	to   string
	kind email.Kind
	vars email.Vars
}

type mockSender struct {
	sent []sentEmail
	err  error
}

func (m *mockSender) Send(_ context.Context, toEmail string, kind email.Kind, vars email.Vars) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentEmail{to: toEmail, kind: kind, vars: vars})
	return nil
}

func (m *mockSender) last() sentEmail {
	if len(m.sent) == 0 {
		return sentEmail{}
	}
	return m.sent[len(m.sent)-1]
}
