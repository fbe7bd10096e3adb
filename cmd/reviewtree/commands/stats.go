package commands

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/MyNameIsWhaaat/reviewtree/internal/review/query"
)

// StatsCommand returns the stats command
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:   "stats",
		Usage:  "Print collection statistics",
		Action: runStats,
	}
}

func runStats(c *cli.Context) error {
	cfg, err := settings(c)
	if err != nil {
		return err
	}

	comments, err := loadComments(c.Context, cfg)
	if err != nil {
		return err
	}

	st := query.Stats(comments)
	w := c.App.Writer
	fmt.Fprintf(w, "total:          %d\n", st.Total)
	fmt.Fprintf(w, "average rating: %.1f\n", st.AverageRating)
	for r := 5; r >= 1; r-- {
		fmt.Fprintf(w, "  %d stars:      %d\n", r, st.RatingDistribution[r])
	}
	fmt.Fprintf(w, "verified:       %d\n", st.Verified)
	fmt.Fprintf(w, "featured:       %d\n", st.Featured)
	fmt.Fprintf(w, "with images:    %d\n", st.WithImages)
	fmt.Fprintf(w, "with replies:   %d\n", st.WithReplies)
	fmt.Fprintf(w, "with follow-up: %d\n", st.WithFollowUp)
	return nil
}
