// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// serveCommand runs the broadcast API server
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the announcement API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

// authCommand handles platform connections
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Connect and inspect platform accounts",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Open the browser to authorize a platform",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "platform",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the authorization URL instead of opening a browser",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "status",
				Usage: "Show connection status for every platform",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.AuthStatus,
			},
			{
				Name:  "disconnect",
				Usage: "Forget stored credentials for a platform",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "platform",
					},
				},
				Action: r.AuthDisconnect,
			},
			{
				Name:  "test-webhook",
				Usage: "Send a test message to a Discord webhook",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "url",
						Usage:    "Discord webhook URL",
						Required: true,
					},
				},
				Action: r.AuthTestWebhook,
			},
		},
	}
}

// blastCommand posts an announcement to the selected platforms
func blastCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "blast",
		Usage: "Broadcast an announcement to connected platforms",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "message",
				Aliases:  []string{"m"},
				Usage:    "Announcement message",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "title",
				Usage: "Optional title",
			},
			&cli.StringFlag{
				Name:  "url",
				Usage: "Optional link URL",
			},
			&cli.StringFlag{
				Name:  "image",
				Usage: "Optional image URL (required for Instagram)",
			},
			&cli.StringSliceFlag{
				Name:    "platforms",
				Aliases: []string{"t"},
				Usage:   "Target platforms (defaults to all)",
			},
			&cli.StringFlag{
				Name:  "webhook",
				Usage: "Discord webhook URL, used instead of a connected account",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "report",
				Usage: "Write a markdown report of the broadcast",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Report file path",
			},
		},
		Action: r.Blast,
	}
}

// composeCommand launches the interactive TUI
func composeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "compose",
		Aliases: []string{"tui"},
		Usage:   "Compose and broadcast an announcement interactively",
		Action:  r.Compose,
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create a starter configuration file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}
