package domain

import "time"

// Comment is a free-text reply on a tip. Comments are never edited or
// deleted once created.
type Comment struct {
	ID        string    `json:"id"`
	TipID     string    `json:"tip_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentView is a Comment with the author display snapshot joined in.
type CommentView struct {
	Comment
	UserName   string `json:"user_name"`
	UserAvatar string `json:"user_avatar,omitempty"`
}
