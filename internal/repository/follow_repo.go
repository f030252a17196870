package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ydzz18/photo-web-sub000/internal/domain"
)

// FollowRepository define el contrato de persistencia para seguimientos.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followeeID string, now time.Time) (bool, error)
	Unfollow(ctx context.Context, followerID, followeeID string) (bool, error)
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
}

// PgFollowRepository implementa FollowRepository usando pgxpool.
type PgFollowRepository struct {
	pool *pgxpool.Pool
}

func NewPgFollowRepository(pool *pgxpool.Pool) *PgFollowRepository {
	return &PgFollowRepository{pool: pool}
}

func (r *PgFollowRepository) Follow(ctx context.Context, followerID, followeeID string, now time.Time) (bool, error) {
	const insertFollow = `
		INSERT INTO follows (follower_id, followee_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, insertFollow, followerID, followeeID, now)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, tx.Commit(ctx)
	}
	if err := insertNotification(ctx, tx, domain.Notification{
		ID:          uuid.NewString(),
		RecipientID: followeeID,
		ActorID:     followerID,
		Kind:        domain.NotifyFollow,
		CreatedAt:   now,
	}); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

func (r *PgFollowRepository) Unfollow(ctx context.Context, followerID, followeeID string) (bool, error) {
	const query = `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`
	tag, err := r.pool.Exec(ctx, query, followerID, followeeID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgFollowRepository) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, followerID, followeeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
