package model

import "time"

type Statistics struct {
	Total              int         `json:"total"`
	AverageRating      float64     `json:"averageRating"`
	RatingDistribution map[int]int `json:"ratingDistribution"`
	Verified           int         `json:"verified"`
	Featured           int         `json:"featured"`
	WithImages         int         `json:"withImages"`
	WithReplies        int         `json:"withReplies"`
	WithFollowUp       int         `json:"withFollowUp"`
}

// Fixture is the static document the comment collection is loaded from.
type Fixture struct {
	Comments    []Comment  `json:"comments"`
	Statistics  Statistics `json:"statistics"`
	LastUpdated time.Time  `json:"lastUpdated"`
}
