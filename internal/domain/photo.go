package domain

import "time"

type Photo struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	ObjectKey    string    `json:"object_key"`
	Caption      string    `json:"caption,omitempty"`
	LikeCount    int       `json:"like_count"`
	CommentCount int       `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
}

type Comment struct {
	ID        string    `json:"id"`
	PhotoID   string    `json:"photo_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
