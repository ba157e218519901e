package sync

import (
	"time"

	"streamhub/pkg/models"
)

const (
	TypeWatchUpdate = "watch.update"
	TypeLikeUpdate  = "like.update"
)

// Event is one line on the sync stream.
type Event struct {
	Type        string    `json:"type"`
	ProfileID   string    `json:"profileId"`
	TitleID     string    `json:"titleId"`
	PositionSec int       `json:"positionSec,omitempty"`
	Completed   bool      `json:"completed,omitempty"`
	Liked       *bool     `json:"liked,omitempty"`
	At          time.Time `json:"at"`
}

func WatchUpdate(ev models.WatchEvent) Event {
	return Event{
		Type:        TypeWatchUpdate,
		ProfileID:   ev.ProfileID,
		TitleID:     ev.TitleID,
		PositionSec: ev.PositionSec,
		Completed:   ev.Completed,
		At:          ev.UpdatedAt,
	}
}

func LikeUpdate(profileID, titleID string, liked bool, at time.Time) Event {
	return Event{
		Type:      TypeLikeUpdate,
		ProfileID: profileID,
		TitleID:   titleID,
		Liked:     &liked,
		At:        at,
	}
}
