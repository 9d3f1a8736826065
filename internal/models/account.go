package models

import (
	"time"

	"github.com/lib/pq"
)

// Account is a registered user's profile record. ID is the identity provider UID.
type Account struct {
	ID            string         `json:"id" gorm:"primaryKey;size:128"`
	Name          string         `json:"name" gorm:"size:100;index"`
	Email         string         `json:"email" gorm:"uniqueIndex"`
	Avatar        string         `json:"avatar,omitempty"`
	FollowerCount int            `json:"followers" gorm:"not null;default:0"`
	FollowingIDs  pq.StringArray `json:"following" gorm:"type:text[];not null;default:'{}'"`
	PostCount     int            `json:"posts" gorm:"not null;default:0"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// IsFollowing reports whether the account follows id.
func (a *Account) IsFollowing(id string) bool {
	for _, f := range a.FollowingIDs {
		if f == id {
			return true
		}
	}
	return false
}

// Follow adds id to the following set. It is a no-op when already present.
func (a *Account) Follow(id string) {
	if a.IsFollowing(id) {
		return
	}
	a.FollowingIDs = append(a.FollowingIDs, id)
}

// Unfollow removes every occurrence of id from the following set.
func (a *Account) Unfollow(id string) {
	kept := make(pq.StringArray, 0, len(a.FollowingIDs))
	for _, f := range a.FollowingIDs {
		if f != id {
			kept = append(kept, f)
		}
	}
	a.FollowingIDs = kept
}

// RegisterRequest is the multipart form accepted by the register endpoint.
type RegisterRequest struct {
	Name     string `form:"name" validate:"required,min=2,max=100"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,password"`
}

// UpdateProfileRequest is the multipart form accepted by PUT /me.
type UpdateProfileRequest struct {
	Name string `form:"name" validate:"omitempty,min=2,max=100"`
}
