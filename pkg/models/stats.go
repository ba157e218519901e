package models

type DailyViews struct {
	Day         string `json:"day"` // YYYY-MM-DD, UTC
	ProfileID   string `json:"profileId"`
	ProfileName string `json:"profileName"`
	Views       int    `json:"views"`
}

type GenreViews struct {
	Genre string `json:"genre"`
	Views int    `json:"views"`
}
