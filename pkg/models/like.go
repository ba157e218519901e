package models

import "time"

type LikeEvent struct {
	ProfileID string    `json:"profileId"`
	TitleID   string    `json:"titleId"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}
