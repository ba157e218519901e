package models

import "time"

// Profile is a sub-account of a user. Watch and like state is scoped per profile.
type Profile struct {
	ID          string    `json:"_id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	AvatarColor string    `json:"avatarColor"`
	CreatedAt   time.Time `json:"createdAt"`
}
