// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// convertCommand converts files and directories into JPEGs
func convertCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Aliases:   []string{"c"},
		Usage:     "Convert images and save the results",
		ArgsUsage: "<file|dir>...",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output directory (default: convert.output_dir)",
			},
			&cli.BoolFlag{
				Name:    "archive",
				Aliases: []string{"a"},
				Usage:   "Save one zip archive instead of individual files",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Maximum concurrent conversions, 0 for unbounded (default: convert.workers)",
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Conversions started per second, 0 for unthrottled (default: convert.dispatch_rate)",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Write a conversion report (csv, markdown, txt)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the archive or output directory when done",
			},
		},
		Action: r.Convert,
	}
}

// setupCommand handles configuration setup.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write the default configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "path",
						Aliases: []string{"p"},
						Usage:   "Where to write the configuration file",
						Value:   "config.toml",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file with defaults",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive conversion.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tui",
		Aliases:   []string{"interactive", "ui"},
		Usage:     "Convert images and browse the results interactively",
		ArgsUsage: "[file|dir]...",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Directory exports are saved to (default: convert.output_dir)",
			},
		},
		Action: r.TUI,
	}
}
