package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	dbactions "github.com/perfkit/csslim/internal/db"
	"github.com/perfkit/csslim/internal/optimize"
)

func main() {
	app := &cli.App{
		Name:  "csslim",
		Usage: "rewrite render-blocking stylesheet links using page-load telemetry",
		Commands: []*cli.Command{
			optimize.Command(),
			dbactions.Command(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
