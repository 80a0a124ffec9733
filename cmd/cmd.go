// Package cmd wires the command-line interface: run a script file under
// a host loop, or inspect the build.
package cmd

import (
	"fmt"

	"github.com/urfave/cli"
)

// BuildArgs carries the build metadata stamped in by the linker.
type BuildArgs struct {
	Version string
	Commit  string
	Date    string
}

// Execute runs the CLI with the given arguments.
func Execute(args []string, bArgs BuildArgs) error {
	app := cli.App{
		Name:      "vibewindow",
		HelpName:  "vibewindow",
		Usage:     "A window scheduling and messaging sandbox.",
		Version:   bArgs.Version,
		UsageText: "vibewindow <command> [arguments...]",
		Commands: []cli.Command{
			{
				Name:      "run",
				Aliases:   []string{"r"},
				Usage:     "run a JavaScript file under a host loop",
				UsageText: "vibewindow run [options] <script.js>",
				Action:    run,
				Flags:     runFlags,
			},
			{
				Name:    "version",
				Aliases: []string{"v"},
				Usage:   "prints the installed version",
				Action: func(ctx *cli.Context) error {
					fmt.Printf("vibewindow %s (%s, %s)\n", bArgs.Version, bArgs.Commit, bArgs.Date)
					return nil
				},
			},
		},
	}
	return app.Run(args)
}
