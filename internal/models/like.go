package models

// LikeState is the caller's like on a post after a toggle.
type LikeState string

const (
	Liked   LikeState = "liked"
	Unliked LikeState = "unliked"
)
