package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/MyNameIsWhaaat/reviewtree/internal/review/fixture"
	"github.com/MyNameIsWhaaat/reviewtree/internal/review/model"
)

// ImportCommand returns the import command
func ImportCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Build a review fixture from a CSV export",
		ArgsUsage: "CSV_FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Fixture path, - for stdout",
				Value:   "data/comments.json",
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Usage: "Seed for the synthesized fields; 0 picks one from the clock",
			},
		},
		Action: runImport,
	}
}

func runImport(c *cli.Context) error {
	in := c.Args().First()
	if in == "" {
		return fmt.Errorf("a CSV file is required")
	}

	f, err := os.Open(in)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", in, err)
	}
	defer f.Close()

	rows, err := fixture.ReadCSV(f)
	if err != nil {
		return err
	}

	now := time.Now()
	seed := c.Uint64("seed")
	if seed == 0 {
		seed = uint64(now.UnixNano())
	}
	fx := fixture.NewGenerator(seed, now).Generate(rows)

	out := c.String("output")
	if err := writeFixture(c.App.Writer, out, fx); err != nil {
		return err
	}
	log.Info().Str("output", out).Int("comments", len(fx.Comments)).Uint64("seed", seed).Msg("fixture written")
	return nil
}

func writeFixture(stdout io.Writer, path string, fx model.Fixture) error {
	if path == "-" {
		return fixture.Encode(stdout, fx)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := fixture.Encode(f, fx); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
