package domain

import "time"

type NotificationKind string

const (
	NotifyLike    NotificationKind = "like"
	NotifyComment NotificationKind = "comment"
	NotifyFollow  NotificationKind = "follow"
)

type Notification struct {
	ID          string           `json:"id"`
	RecipientID string           `json:"recipient_id"`
	ActorID     string           `json:"actor_id"`
	Kind        NotificationKind `json:"kind"`
	PhotoID     *string          `json:"photo_id,omitempty"`
	CommentID   *string          `json:"comment_id,omitempty"`
	ReadAt      *time.Time       `json:"read_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}
