package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ydzz18/photo-web-sub000/internal/domain"
)

// AccountRepository define el contrato de persistencia para cuentas.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) error
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByUsername(ctx context.Context, username string) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	GetByIdentifier(ctx context.Context, identifier string) (domain.Account, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
	UpdateEmail(ctx context.Context, id, email string, status domain.EmailStatus) error
	SetEmailStatus(ctx context.Context, id string, status domain.EmailStatus) error
	SetTwoFactor(ctx context.Context, id string, mode domain.TwoFactorMode) error
	UpdateProfile(ctx context.Context, id, displayName, bio string) error
}

// IsUniqueViolation reporta si el error corresponde a una restricción UNIQUE.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// PgAccountRepository implementa AccountRepository usando pgxpool.
type PgAccountRepository struct {
	pool *pgxpool.Pool
}

func NewPgAccountRepository(pool *pgxpool.Pool) *PgAccountRepository {
	return &PgAccountRepository{pool: pool}
}

const accountColumns = `id, username, email, password_hash, display_name, bio, email_status, two_factor, created_at`

func (r *PgAccountRepository) Create(ctx context.Context, account domain.Account) error {
	const query = `
		INSERT INTO accounts (id, username, email, password_hash, display_name, bio, email_status, two_factor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		account.ID,
		account.Username,
		account.Email,
		account.PasswordHash,
		account.DisplayName,
		account.Bio,
		account.EmailStatus,
		account.TwoFactor,
		account.CreatedAt,
	)
	return err
}

func (r *PgAccountRepository) GetByID(ctx context.Context, id string) (domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *PgAccountRepository) GetByUsername(ctx context.Context, username string) (domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, username))
}

func (r *PgAccountRepository) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

func (r *PgAccountRepository) GetByIdentifier(ctx context.Context, identifier string) (domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1 OR email = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, identifier))
}

func (r *PgAccountRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE accounts SET password_hash = $2 WHERE id = $1`
	return r.execOne(ctx, query, id, passwordHash)
}

func (r *PgAccountRepository) UpdateEmail(ctx context.Context, id, email string, status domain.EmailStatus) error {
	const query = `UPDATE accounts SET email = $2, email_status = $3 WHERE id = $1`
	return r.execOne(ctx, query, id, email, status)
}

func (r *PgAccountRepository) SetEmailStatus(ctx context.Context, id string, status domain.EmailStatus) error {
	const query = `UPDATE accounts SET email_status = $2 WHERE id = $1`
	return r.execOne(ctx, query, id, status)
}

func (r *PgAccountRepository) SetTwoFactor(ctx context.Context, id string, mode domain.TwoFactorMode) error {
	const query = `UPDATE accounts SET two_factor = $2 WHERE id = $1`
	return r.execOne(ctx, query, id, mode)
}

func (r *PgAccountRepository) UpdateProfile(ctx context.Context, id, displayName, bio string) error {
	const query = `UPDATE accounts SET display_name = $2, bio = $3 WHERE id = $1`
	return r.execOne(ctx, query, id, displayName, bio)
}

func (r *PgAccountRepository) execOne(ctx context.Context, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgAccountRepository) scanOne(row pgx.Row) (domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.ID,
		&a.Username,
		&a.Email,
		&a.PasswordHash,
		&a.DisplayName,
		&a.Bio,
		&a.EmailStatus,
		&a.TwoFactor,
		&a.CreatedAt,
	)
	if err != nil {
		return domain.Account{}, err
	}
	return a, nil
}
