package models

import "time"

// Comment is an immutable entry in a post's comment log. UserName is a
// snapshot of the author's display name when the comment was written and is
// not updated on rename.
type Comment struct {
	UserID   string    `json:"userId" bson:"user_id"`
	UserName string    `json:"userName" bson:"user_name"`
	Date     time.Time `json:"date" bson:"date"`
	Content  string    `json:"content" bson:"content"`
}

// CreateCommentRequest defines the request body for commenting on a post
type CreateCommentRequest struct {
	CommentContent string `json:"commentContent" validate:"max=500"`
}
