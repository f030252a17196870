package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ydzz18/photo-web-sub000/internal/domain"
)

// TokenRepository define el contrato de persistencia para tokens de seguridad.
type TokenRepository interface {
	// CreateExclusive inserta el token y consume los pendientes del mismo
	// propósito en una sola transacción.
	CreateExclusive(ctx context.Context, token domain.SecurityToken) error
	GetActiveByHash(ctx context.Context, tokenHash string, purpose domain.TokenPurpose, now time.Time) (domain.SecurityToken, error)
	// ConsumeByHash marca el token como consumido solo si sigue vigente y
	// devuelve la cuenta dueña; pgx.ErrNoRows si no hay token válido.
	ConsumeByHash(ctx context.Context, tokenHash string, purpose domain.TokenPurpose, now time.Time) (string, error)
	MarkConsumed(ctx context.Context, tokenHash string, purpose domain.TokenPurpose, now time.Time) error
}

// PgTokenRepository implementa TokenRepository usando pgxpool.
type PgTokenRepository struct {
	pool *pgxpool.Pool
}

func NewPgTokenRepository(pool *pgxpool.Pool) *PgTokenRepository {
	return &PgTokenRepository{pool: pool}
}

func (r *PgTokenRepository) CreateExclusive(ctx context.Context, token domain.SecurityToken) error {
	const supersede = `
		UPDATE security_tokens
		SET consumed_at = $3
		WHERE account_id = $1 AND purpose = $2 AND consumed_at IS NULL
	`
	const insert = `
		INSERT INTO security_tokens (id, account_id, token_hash, purpose, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, supersede, token.AccountID, token.Purpose, token.CreatedAt); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, insert,
		token.ID,
		token.AccountID,
		token.TokenHash,
		token.Purpose,
		token.CreatedAt,
		token.ExpiresAt,
	); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PgTokenRepository) GetActiveByHash(ctx context.Context, tokenHash string, purpose domain.TokenPurpose, now time.Time) (domain.SecurityToken, error) {
	const query = `
		SELECT id, account_id, token_hash, purpose, created_at, expires_at, consumed_at
		FROM security_tokens
		WHERE token_hash = $1 AND purpose = $2 AND consumed_at IS NULL AND expires_at > $3
	`
	var t domain.SecurityToken
	err := r.pool.QueryRow(ctx, query, tokenHash, purpose, now).Scan(
		&t.ID,
		&t.AccountID,
		&t.TokenHash,
		&t.Purpose,
		&t.CreatedAt,
		&t.ExpiresAt,
		&t.ConsumedAt,
	)
	if err != nil {
		return domain.SecurityToken{}, err
	}
	return t, nil
}

func (r *PgTokenRepository) ConsumeByHash(ctx context.Context, tokenHash string, purpose domain.TokenPurpose, now time.Time) (string, error) {
	// Consumo condicional en una sola sentencia; dos verificaciones
	// concurrentes del mismo token no pueden ganar ambas.
	const query = `
		UPDATE security_tokens
		SET consumed_at = $3
		WHERE token_hash = $1 AND purpose = $2 AND consumed_at IS NULL AND expires_at > $3
		RETURNING account_id
	`
	var accountID string
	if err := r.pool.QueryRow(ctx, query, tokenHash, purpose, now).Scan(&accountID); err != nil {
		return "", err
	}
	return accountID, nil
}

func (r *PgTokenRepository) MarkConsumed(ctx context.Context, tokenHash string, purpose domain.TokenPurpose, now time.Time) error {
	// Idempotente: consumir un token ya consumido o inexistente no es error.
	const query = `
		UPDATE security_tokens
		SET consumed_at = $3
		WHERE token_hash = $1 AND purpose = $2 AND consumed_at IS NULL
	`
	_, err := r.pool.Exec(ctx, query, tokenHash, purpose, now)
	return err
}
