package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:   "continuum",
		Usage:  "render the consumer-privacy literature review charts",
		Flags:  runFlags(),
		Action: RunAction,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "load the review tables and write every chart (default)",
				Flags:  runFlags(),
				Action: RunAction,
			},
			{
				Name:  "history",
				Usage: "list the runs recorded in the ledger",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file"},
					&cli.StringFlag{Name: "db", Usage: "SQLite run ledger"},
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "maximum number of runs to list"},
				},
				Action: HistoryAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file"},
		&cli.StringFlag{Name: "base-dir", Usage: "directory holding src/ and graphs/"},
		&cli.StringFlag{Name: "src-dir", Usage: "input directory, relative to the base dir"},
		&cli.StringFlag{Name: "graphs-dir", Usage: "chart directory, relative to the base dir"},
		&cli.StringFlag{Name: "db", Usage: "SQLite run ledger (disabled when empty)"},
		&cli.BoolFlag{Name: "show", Usage: "open each chart in the system image viewer"},
		&cli.StringSliceFlag{Name: "export", Usage: "also write summaries: csv, xlsx"},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only log errors"},
	}
}
