package models

import "time"

// WatchEvent is the latest progress a profile made on a title.
// The store keeps at most one row per (ProfileID, TitleID).
type WatchEvent struct {
	ProfileID   string    `json:"profileId"`
	TitleID     string    `json:"titleId"`
	PositionSec int       `json:"positionSec"`
	Completed   bool      `json:"completed"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
