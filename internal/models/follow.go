package models

// FollowState is the relation between caller and target after a toggle.
type FollowState string

const (
	Followed   FollowState = "followed"
	Unfollowed FollowState = "unfollowed"
)
