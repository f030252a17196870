package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ydzz18/photo-web-sub000/internal/domain"
)

// PhotoRepository define el contrato de persistencia para fotos,
// likes y comentarios. Los fan-out (fila + contador + notificación)
// corren dentro de una misma transacción.
type PhotoRepository interface {
	Create(ctx context.Context, photo domain.Photo) error
	GetByID(ctx context.Context, id string) (domain.Photo, error)
	DeleteOwned(ctx context.Context, id, ownerID string) (bool, error)
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]domain.Photo, error)
	Like(ctx context.Context, photoID, accountID string, now time.Time) (bool, error)
	Unlike(ctx context.Context, photoID, accountID string) (bool, error)
	AddComment(ctx context.Context, comment domain.Comment) error
	DeleteComment(ctx context.Context, commentID, authorID string) (bool, error)
}

// PgPhotoRepository implementa PhotoRepository usando pgxpool.
type PgPhotoRepository struct {
	pool *pgxpool.Pool
}

func NewPgPhotoRepository(pool *pgxpool.Pool) *PgPhotoRepository {
	return &PgPhotoRepository{pool: pool}
}

const photoColumns = `id, owner_id, object_key, caption, like_count, comment_count, created_at`

func (r *PgPhotoRepository) Create(ctx context.Context, photo domain.Photo) error {
	const query = `
		INSERT INTO photos (id, owner_id, object_key, caption, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		photo.ID,
		photo.OwnerID,
		photo.ObjectKey,
		photo.Caption,
		photo.CreatedAt,
	)
	return err
}

func (r *PgPhotoRepository) GetByID(ctx context.Context, id string) (domain.Photo, error) {
	const query = `SELECT ` + photoColumns + ` FROM photos WHERE id = $1`
	var p domain.Photo
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.OwnerID,
		&p.ObjectKey,
		&p.Caption,
		&p.LikeCount,
		&p.CommentCount,
		&p.CreatedAt,
	)
	if err != nil {
		return domain.Photo{}, err
	}
	return p, nil
}

func (r *PgPhotoRepository) DeleteOwned(ctx context.Context, id, ownerID string) (bool, error) {
	const query = `DELETE FROM photos WHERE id = $1 AND owner_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgPhotoRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]domain.Photo, error) {
	const query = `
		SELECT ` + photoColumns + `
		FROM photos
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []domain.Photo
	for rows.Next() {
		var p domain.Photo
		if err := rows.Scan(
			&p.ID,
			&p.OwnerID,
			&p.ObjectKey,
			&p.Caption,
			&p.LikeCount,
			&p.CommentCount,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func (r *PgPhotoRepository) Like(ctx context.Context, photoID, accountID string, now time.Time) (bool, error) {
	const insertLike = `
		INSERT INTO photo_likes (photo_id, account_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`
	const bumpCounter = `UPDATE photos SET like_count = like_count + 1 WHERE id = $1`
	const ownerOf = `SELECT owner_id FROM photos WHERE id = $1`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	var ownerID string
	if err := tx.QueryRow(ctx, ownerOf, photoID).Scan(&ownerID); err != nil {
		return false, err
	}
	tag, err := tx.Exec(ctx, insertLike, photoID, accountID, now)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		// Ya existía el like; no hay nada que contar ni notificar.
		return false, tx.Commit(ctx)
	}
	if _, err := tx.Exec(ctx, bumpCounter, photoID); err != nil {
		return false, err
	}
	if ownerID != accountID {
		if err := insertNotification(ctx, tx, domain.Notification{
			ID:          uuid.NewString(),
			RecipientID: ownerID,
			ActorID:     accountID,
			Kind:        domain.NotifyLike,
			PhotoID:     &photoID,
			CreatedAt:   now,
		}); err != nil {
			return false, err
		}
	}
	return true, tx.Commit(ctx)
}

func (r *PgPhotoRepository) Unlike(ctx context.Context, photoID, accountID string) (bool, error) {
	const deleteLike = `DELETE FROM photo_likes WHERE photo_id = $1 AND account_id = $2`
	const dropCounter = `UPDATE photos SET like_count = like_count - 1 WHERE id = $1 AND like_count > 0`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, deleteLike, photoID, accountID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, tx.Commit(ctx)
	}
	if _, err := tx.Exec(ctx, dropCounter, photoID); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

func (r *PgPhotoRepository) AddComment(ctx context.Context, comment domain.Comment) error {
	const insertComment = `
		INSERT INTO comments (id, photo_id, author_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	const bumpCounter = `UPDATE photos SET comment_count = comment_count + 1 WHERE id = $1`
	const ownerOf = `SELECT owner_id FROM photos WHERE id = $1`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var ownerID string
	if err := tx.QueryRow(ctx, ownerOf, comment.PhotoID).Scan(&ownerID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, insertComment,
		comment.ID,
		comment.PhotoID,
		comment.AuthorID,
		comment.Body,
		comment.CreatedAt,
	); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, bumpCounter, comment.PhotoID); err != nil {
		return err
	}
	if ownerID != comment.AuthorID {
		if err := insertNotification(ctx, tx, domain.Notification{
			ID:          uuid.NewString(),
			RecipientID: ownerID,
			ActorID:     comment.AuthorID,
			Kind:        domain.NotifyComment,
			PhotoID:     &comment.PhotoID,
			CommentID:   &comment.ID,
			CreatedAt:   comment.CreatedAt,
		}); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *PgPhotoRepository) DeleteComment(ctx context.Context, commentID, authorID string) (bool, error) {
	const deleteComment = `
		DELETE FROM comments WHERE id = $1 AND author_id = $2
		RETURNING photo_id
	`
	const dropCounter = `UPDATE photos SET comment_count = comment_count - 1 WHERE id = $1 AND comment_count > 0`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	var photoID string
	err = tx.QueryRow(ctx, deleteComment, commentID, authorID).Scan(&photoID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if _, err := tx.Exec(ctx, dropCounter, photoID); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}
