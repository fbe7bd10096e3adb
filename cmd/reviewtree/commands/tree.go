package commands

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/MyNameIsWhaaat/reviewtree/internal/review/model"
	"github.com/MyNameIsWhaaat/reviewtree/internal/review/replytree"
)

// TreeCommand returns the tree command
func TreeCommand() *cli.Command {
	return &cli.Command{
		Name:      "tree",
		Usage:     "Render the reply thread of one review",
		ArgsUsage: "COMMENT_ID",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "viewport",
				Usage: "desktop or mobile, overrides viewport.default",
			},
		},
		Action: runTree,
	}
}

func runTree(c *cli.Context) error {
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("a positive comment id is required")
	}

	cfg, err := settings(c)
	if err != nil {
		return err
	}

	vpName := c.String("viewport")
	if vpName == "" {
		vpName = cfg.Viewport.Default
	}
	vp, err := model.ParseViewport(vpName)
	if err != nil {
		return err
	}
	policy, err := replytree.ParseOrphanPolicy(cfg.Replies.OrphanPolicy)
	if err != nil {
		return err
	}

	comments, err := loadComments(c.Context, cfg)
	if err != nil {
		return err
	}

	for _, cm := range comments {
		if cm.ID != id {
			continue
		}
		fmt.Fprintf(c.App.Writer, "#%d %s\n", cm.ID, cm.Title)
		forest := replytree.Build(cm.Replies, replytree.WithOrphanPolicy(policy))
		if n := len(forest.Orphans()); n > 0 && policy == replytree.OrphanDrop {
			fmt.Fprintf(c.App.Writer, "(%d orphaned replies hidden)\n", n)
		}
		return replytree.Render(c.App.Writer, forest, replytree.IndentFor(vp))
	}
	return fmt.Errorf("comment %d not found", id)
}
