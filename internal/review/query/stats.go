package query

import (
	"math"

	"github.com/MyNameIsWhaaat/reviewtree/internal/review/model"
)

// Stats aggregates over the whole collection, independent of any query.
func Stats(source []model.Comment) model.Statistics {
	s := model.Statistics{
		Total:              len(source),
		RatingDistribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}
	if len(source) == 0 {
		return s
	}

	sum := 0
	for _, c := range source {
		sum += c.Rating
		if c.Rating >= 1 && c.Rating <= 5 {
			s.RatingDistribution[c.Rating]++
		}
		if c.VerifiedPurchase {
			s.Verified++
		}
		if c.Featured {
			s.Featured++
		}
		if len(c.Images) > 0 {
			s.WithImages++
		}
		if len(c.Replies) > 0 {
			s.WithReplies++
		}
		if c.HasFollowUp {
			s.WithFollowUp++
		}
	}
	s.AverageRating = math.Round(float64(sum)/float64(len(source))*10) / 10
	return s
}
