// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/desertthunder/lmx/internal/formatter"
	"github.com/desertthunder/lmx/internal/models"
	"github.com/urfave/cli/v3"
)

func formatFlag(value string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format (" + strings.Join(formatter.Formats, ", ") + ")",
		Value:   value,
	}
}

// tuiCommand launches the interactive dashboard
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Interactive terminal dashboard",
		Action: r.TUI,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Write logs here while the dashboard is running",
				Value: "./tmp/lmx-tui.log",
			},
		},
	}
}

// statusCommand prints one dashboard snapshot
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Fetch the migration status once and print the dashboard",
		Flags: []cli.Flag{
			formatFlag(formatter.FormatText),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the report to a file instead of stdout",
			},
		},
		Action: r.Status,
	}
}

// watchCommand prints a line per dashboard change
func watchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Poll every 2s and print a line whenever the dashboard changes",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "Stop after this many updates (0 runs until interrupted)",
			},
		},
		Action: r.Watch,
	}
}

func controlCommand(r *Runner, c models.Control, usage string) *cli.Command {
	return &cli.Command{
		Name:  c.String(),
		Usage: usage,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Send the request even if the current state does not offer this control",
			},
		},
		Action: r.Control(c),
	}
}

func startCommand(r *Runner) *cli.Command {
	return controlCommand(r, models.ControlStart, "Start the migration")
}

func pauseCommand(r *Runner) *cli.Command {
	return controlCommand(r, models.ControlPause, "Pause a running migration")
}

func resumeCommand(r *Runner) *cli.Command {
	return controlCommand(r, models.ControlResume, "Resume a paused migration")
}

// webCommand serves the HTML dashboard
func webCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Serve the dashboard as a web page",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (defaults to server.host:server.port)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the dashboard in the default browser",
			},
		},
		Action: r.Web,
	}
}

// simulateCommand runs and inspects the development backend
func simulateCommand(r *Runner) *cli.Command {
	storeFlag := &cli.StringFlag{
		Name:  "store",
		Usage: "State store (memory, sqlite); defaults to simulator.store",
	}

	return &cli.Command{
		Name:    "simulate",
		Aliases: []string{"sim"},
		Usage:   "Development LiveMigrate backend",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Serve the migration API backed by a simulated migration",
				Flags: []cli.Flag{
					storeFlag,
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (defaults to simulator.host:simulator.port)",
					},
					&cli.BoolFlag{
						Name:  "reset",
						Usage: "Discard stored progress before serving",
					},
				},
				Action: r.SimulateServe,
			},
			{
				Name:  "history",
				Usage: "Show recorded state transitions from the sqlite store",
				Flags: []cli.Flag{
					formatFlag(formatter.FormatText),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of transitions to show",
						Value: 20,
					},
				},
				Action: r.SimulateHistory,
			},
			{
				Name:   "reset",
				Usage:  "Reset the sqlite store to INITIALIZED",
				Action: r.SimulateReset,
			},
		},
	}
}

// apiCommand handles direct backend API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the LiveMigrate API",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET to the backend, prints the raw body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST to the backend, prints the raw body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "data",
						Usage: "JSON request body (controls send none)",
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// setupCommand creates the config file and database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create configuration and initialize the simulator database",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write an example config.toml",
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}
