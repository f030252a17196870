package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ydzz18/photo-web-sub000/internal/domain"
)

// CodeRepository define el contrato de persistencia para códigos 2FA.
type CodeRepository interface {
	Create(ctx context.Context, code domain.TwoFactorCode) error
	DeleteOlderThan(ctx context.Context, accountID string, cutoff time.Time) error
	// ConsumeMatching borra el primer código vigente que coincida y reporta
	// si existía; el borrado condicional es lo que garantiza un solo uso.
	ConsumeMatching(ctx context.Context, accountID, codeHash string, cutoff time.Time) (bool, error)
	DeleteForAccount(ctx context.Context, accountID string) error
}

// PgCodeRepository implementa CodeRepository usando pgxpool.
type PgCodeRepository struct {
	pool *pgxpool.Pool
}

func NewPgCodeRepository(pool *pgxpool.Pool) *PgCodeRepository {
	return &PgCodeRepository{pool: pool}
}

func (r *PgCodeRepository) Create(ctx context.Context, code domain.TwoFactorCode) error {
	const query = `
		INSERT INTO two_factor_codes (id, account_id, code_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query,
		code.ID,
		code.AccountID,
		code.CodeHash,
		code.CreatedAt,
	)
	return err
}

func (r *PgCodeRepository) DeleteOlderThan(ctx context.Context, accountID string, cutoff time.Time) error {
	const query = `DELETE FROM two_factor_codes WHERE account_id = $1 AND created_at <= $2`
	_, err := r.pool.Exec(ctx, query, accountID, cutoff)
	return err
}

func (r *PgCodeRepository) ConsumeMatching(ctx context.Context, accountID, codeHash string, cutoff time.Time) (bool, error) {
	const query = `
		DELETE FROM two_factor_codes
		WHERE account_id = $1 AND code_hash = $2 AND created_at > $3
	`
	tag, err := r.pool.Exec(ctx, query, accountID, codeHash, cutoff)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgCodeRepository) DeleteForAccount(ctx context.Context, accountID string) error {
	const query = `DELETE FROM two_factor_codes WHERE account_id = $1`
	_, err := r.pool.Exec(ctx, query, accountID)
	return err
}
