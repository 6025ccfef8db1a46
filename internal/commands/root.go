package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/vbisect/internal/vbisect"
)

// NewRoot builds the vbisect root command with its global flags bound to
// flags and every subcommand registered against app. app may be an empty
// struct that is populated later, typically in the Before hook.
func NewRoot(flags *Flags, app *vbisect.App, version string) *cli.Command {
	root := &cli.Command{
		Name:      "vbisect",
		Usage:     "Find the release that introduced a regression",
		UsageText: "vbisect [global options] command [command options]",
		Description: `vbisect bisects a release catalog between a known-good and a known-bad
version, activating one version at a time until the first bad release is
isolated.

Run 'vbisect' with no arguments to open the interactive bisect dialog.
Run 'vbisect run --good X --bad Y -- <test>' to bisect with a test command.`,
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("VBISECT_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/vbisect.log, '-' for stderr)",
				Sources:     cli.EnvVars("VBISECT_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("VBISECT_CONFIG"),
				Value:       DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("VBISECT_DATA_DIR"),
				Value:       DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
	}

	tuiCmd := NewTuiCmd(flags, app)

	root = NewVersionsCmd(flags, app).Register(root)
	root = NewRunCmd(flags, app).Register(root)
	root = NewHistoryCmd(flags, app).Register(root)
	root = NewDoctorCmd(flags, app).Register(root)
	root = NewConfigValidateCmd(flags).Register(root)

	// TUI is the default action when no subcommand is provided
	root.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'vbisect --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	return root
}
