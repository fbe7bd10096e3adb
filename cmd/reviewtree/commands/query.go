package commands

import (
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/MyNameIsWhaaat/reviewtree/internal/review/model"
	"github.com/MyNameIsWhaaat/reviewtree/internal/review/notify"
	"github.com/MyNameIsWhaaat/reviewtree/internal/review/query"
)

// QueryCommand returns the query command
func QueryCommand() *cli.Command {
	return &cli.Command{
		Name:  "query",
		Usage: "Search, filter and sort the review collection",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "text",
				Aliases: []string{"q"},
				Usage:   "Case-insensitive text to match in title, body or reviewer",
			},
			&cli.StringFlag{
				Name:  "filter",
				Usage: "all, featured, verified or high_rating",
				Value: string(query.FilterAll),
			},
			&cli.StringFlag{
				Name:  "sort",
				Usage: "featured, helpful, recent or rating",
				Value: string(query.SortFeatured),
			},
			&cli.IntFlag{
				Name:  "pages",
				Usage: "Number of pages to reveal",
				Value: 1,
			},
		},
		Action: runQuery,
	}
}

func runQuery(c *cli.Context) error {
	cfg, err := settings(c)
	if err != nil {
		return err
	}

	filter, err := query.ParseFilter(c.String("filter"))
	if err != nil {
		return err
	}
	sort, err := query.ParseSort(c.String("sort"))
	if err != nil {
		return err
	}

	svc, err := newService(c.Context, cfg, notify.Nop{})
	if err != nil {
		return err
	}

	view, err := svc.SetQuery(c.Context, query.Query{Text: c.String("text"), Filter: filter, Sort: sort})
	if err != nil {
		return err
	}
	for i := 1; i < c.Int("pages") && view.HasMore; i++ {
		if view, err = svc.LoadMore(c.Context); err != nil {
			return err
		}
	}

	printComments(c.App.Writer, view.Items)
	fmt.Fprintf(c.App.Writer, "showing %d of %d\n", view.Visible, view.Total)
	return nil
}

func printComments(w io.Writer, comments []model.Comment) {
	for _, cm := range comments {
		marks := ""
		if cm.Featured {
			marks += " [featured]"
		}
		if cm.VerifiedPurchase {
			marks += " [verified]"
		}
		fmt.Fprintf(w, "#%d %s %s by %s, %d helpful%s\n",
			cm.ID, stars(cm.Rating), cm.Title, cm.ReviewerName, cm.HelpfulCount, marks)
	}
}

func stars(rating int) string {
	s := make([]rune, 0, 5)
	for i := 1; i <= 5; i++ {
		if i <= rating {
			s = append(s, '*')
		} else {
			s = append(s, '.')
		}
	}
	return string(s)
}
