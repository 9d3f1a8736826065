package models

import "time"

// Post is a piece of content owned by one account. Likes and comments are
// embedded in the document.
type Post struct {
	ID          string    `json:"id" bson:"_id"`
	UserID      string    `json:"userId" bson:"user_id"`
	Description string    `json:"description" bson:"description"`
	Image       string    `json:"image,omitempty" bson:"image,omitempty"`
	Date        time.Time `json:"date" bson:"date"`
	Likes       []string  `json:"likes" bson:"likes"`
	Comments    []Comment `json:"comments" bson:"comments"`
	// Version guards read-modify-write cycles on Likes and Comments.
	Version int64 `json:"-" bson:"version"`
}

// HasLiked reports whether userID is in the post's likes.
func (p *Post) HasLiked(userID string) bool {
	for _, l := range p.Likes {
		if l == userID {
			return true
		}
	}
	return false
}

// CreatePostRequest is the multipart form accepted by POST /posts.
type CreatePostRequest struct {
	Description string `form:"description" validate:"max=2200"`
}
