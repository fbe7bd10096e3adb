package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/MyNameIsWhaaat/reviewtree/cmd/reviewtree/commands"
)

const (
	version = "0.1.0"
)

func main() {
	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	app := &cli.App{
		Name:    "reviewtree",
		Usage:   "Product review browser with threaded replies",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
				Value:   "reviewtree.toml",
				EnvVars: []string{"REVIEWTREE_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			commands.ServeCommand(),
			commands.QueryCommand(),
			commands.StatsCommand(),
			commands.TreeCommand(),
			commands.ImportCommand(),
			commands.ConfigCommand(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
