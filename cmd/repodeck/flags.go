package main

import (
	"github.com/urfave/cli/v3"

	"github.com/johanforsgren/repodeck/internal/config"
)

// globalFlags returns the flags shared by the TUI and every subcommand.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config-file",
			Usage: "Path to configuration file",
		},
		&cli.StringFlag{
			Name:    "api-base",
			Usage:   "Base URL of the repodeck API",
			Sources: cli.EnvVars("REPODECK_API_BASE"),
		},
		&cli.StringFlag{
			Name:  "session-file",
			Usage: "Where the session tokens are stored",
		},
		&cli.StringFlag{
			Name:  "debug-log",
			Usage: "Path to debug log file",
		},
		&cli.BoolFlag{
			Name:  "ephemeral",
			Usage: "Keep the session in memory only",
		},
		&cli.StringFlag{
			Name:    "github-token",
			Usage:   "GitHub token for repository details",
			Sources: cli.EnvVars("GITHUB_TOKEN"),
		},
		&cli.BoolFlag{
			Name:  "no-github",
			Usage: "Disable GitHub repository details",
		},
	}
}

// applyFlagOverrides lets explicitly passed flags win over the config file.
func applyFlagOverrides(cfg *config.AppConfig, cmd *cli.Command) {
	if v := cmd.String("api-base"); v != "" {
		cfg.APIBase = v
	}
	if v := cmd.String("session-file"); v != "" {
		cfg.SessionFile = v
	}
	if v := cmd.String("debug-log"); v != "" {
		cfg.DebugLog = v
	}
	if v := cmd.String("github-token"); v != "" {
		cfg.GitHub.Token = v
	}
	if cmd.Bool("no-github") {
		cfg.GitHub.Enabled = false
	}
}
