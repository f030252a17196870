package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ydzz18/photo-web-sub000/internal/domain"
)

// NotificationRepository define el contrato de lectura de notificaciones;
// las escrituras suceden dentro de los fan-out de likes/comentarios/follows.
type NotificationRepository interface {
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]domain.Notification, error)
	MarkAllRead(ctx context.Context, recipientID string, now time.Time) error
}

// PgNotificationRepository implementa NotificationRepository usando pgxpool.
type PgNotificationRepository struct {
	pool *pgxpool.Pool
}

func NewPgNotificationRepository(pool *pgxpool.Pool) *PgNotificationRepository {
	return &PgNotificationRepository{pool: pool}
}

func (r *PgNotificationRepository) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]domain.Notification, error) {
	const query = `
		SELECT id, recipient_id, actor_id, kind, photo_id, comment_id, read_at, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.RecipientID,
			&n.ActorID,
			&n.Kind,
			&n.PhotoID,
			&n.CommentID,
			&n.ReadAt,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *PgNotificationRepository) MarkAllRead(ctx context.Context, recipientID string, now time.Time) error {
	const query = `
		UPDATE notifications SET read_at = $2
		WHERE recipient_id = $1 AND read_at IS NULL
	`
	_, err := r.pool.Exec(ctx, query, recipientID, now)
	return err
}

func insertNotification(ctx context.Context, tx pgx.Tx, n domain.Notification) error {
	const query = `
		INSERT INTO notifications (id, recipient_id, actor_id, kind, photo_id, comment_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := tx.Exec(ctx, query,
		n.ID,
		n.RecipientID,
		n.ActorID,
		n.Kind,
		n.PhotoID,
		n.CommentID,
		n.CreatedAt,
	)
	return err
}
