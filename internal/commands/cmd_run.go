package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/vbisect/internal/core/bisect"
	"github.com/colonyops/vbisect/internal/core/styles"
	"github.com/colonyops/vbisect/internal/core/version"
	"github.com/colonyops/vbisect/internal/vbisect"
)

type RunCmd struct {
	flags *Flags
	app   *vbisect.App

	// flags
	good  string
	bad   string
	dir   string
	quiet bool
}

// NewRunCmd creates a new run command
func NewRunCmd(flags *Flags, app *vbisect.App) *RunCmd {
	return &RunCmd{flags: flags, app: app}
}

// Register adds the run command to the application
func (cmd *RunCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "run",
		Usage:     "Bisect automatically with a test command",
		UsageText: "vbisect run [--good X] [--bad Y] [--dir DIR] [-- test command]",
		Description: `Bisects the catalog between a known-good and a known-bad version. Each
pivot is activated with commands.activate, then the test command runs:
exit 0 marks the version good, any other exit status marks it bad.

The test command is a template; {{ .Version }}, {{ .Channel }}, {{ .Source }}
and {{ .DataDir }} are available. Without arguments commands.test is used.
Missing --good or --bad are prompted for when running in a terminal.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "good",
				Aliases:     []string{"g"},
				Usage:       "known-good (earliest) version",
				Destination: &cmd.good,
			},
			&cli.StringFlag{
				Name:        "bad",
				Aliases:     []string{"b"},
				Usage:       "known-bad (latest) version",
				Destination: &cmd.bad,
			},
			&cli.StringFlag{
				Name:        "dir",
				Usage:       "working directory for the test command",
				Destination: &cmd.dir,
			},
			&cli.BoolFlag{
				Name:        "quiet",
				Aliases:     []string{"q"},
				Usage:       "hide test output unless the command cannot run",
				Destination: &cmd.quiet,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RunCmd) run(ctx context.Context, c *cli.Command) error {
	versions, err := cmd.app.Catalog.VersionsToShow(ctx)
	if err != nil {
		return fmt.Errorf("load versions: %w", err)
	}
	if len(versions) < 2 {
		return fmt.Errorf("need at least 2 versions to bisect, have %d", len(versions))
	}

	if cmd.good == "" || cmd.bad == "" {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return errors.New("--good and --bad are required when not running in a terminal")
		}
		if err := cmd.prompt(versions); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("form: %w", err)
		}
	}

	good, err := resolveVersion(versions, cmd.good)
	if err != nil {
		return fmt.Errorf("--good: %w", err)
	}
	bad, err := resolveVersion(versions, cmd.bad)
	if err != nil {
		return fmt.Errorf("--bad: %w", err)
	}

	out := c.Root().Writer
	runner := cmd.app.Runner(vbisect.RunnerOptions{
		Dir:    cmd.dir,
		Stdout: out,
		Stderr: c.Root().ErrWriter,
		Quiet:  cmd.quiet,
	})

	res, err := runner.Run(ctx, versions, good, bad, strings.Join(c.Args().Slice(), " "))
	if err != nil {
		return err
	}

	cmd.printResult(out, res)
	return nil
}

// prompt asks for the missing boundaries. The bad choices are limited to
// versions newer than the chosen good one.
func (cmd *RunCmd) prompt(versions []version.Version) error {
	if cmd.good == "" {
		err := huh.NewSelect[string]().
			Title("Known-good version").
			Description("The newest version where the problem does not occur").
			Options(versionOptions(versions[1:])...).
			Height(12).
			Value(&cmd.good).
			WithTheme(huh.ThemeBase16()).
			Run()
		if err != nil {
			return err
		}
	}

	if cmd.bad == "" {
		newer := versions
		if good, err := resolveVersion(versions, cmd.good); err == nil {
			for i, v := range versions {
				if v == good {
					newer = versions[:i]
					break
				}
			}
		}
		if len(newer) == 0 {
			return fmt.Errorf("no versions newer than %s", cmd.good)
		}

		err := huh.NewSelect[string]().
			Title("Known-bad version").
			Description("The oldest version known to show the problem").
			Options(versionOptions(newer)...).
			Height(12).
			Value(&cmd.bad).
			WithTheme(huh.ThemeBase16()).
			Run()
		if err != nil {
			return err
		}
	}

	return nil
}

func versionOptions(vs []version.Version) []huh.Option[string] {
	opts := make([]huh.Option[string], len(vs))
	for i, v := range vs {
		label := v.Version
		if v.Source == version.SourceLocal {
			label += " (local)"
		}
		opts[i] = huh.NewOption(label, v.Version)
	}
	return opts
}

// resolveVersion finds raw in versions. A leading "v" is accepted.
func resolveVersion(versions []version.Version, raw string) (version.Version, error) {
	want := strings.TrimPrefix(strings.TrimSpace(raw), "v")
	if want == "" {
		return version.Version{}, errors.New("version is required")
	}
	for _, v := range versions {
		if v.Version == want {
			return v, nil
		}
	}
	return version.Version{}, fmt.Errorf("%s: %w", raw, vbisect.ErrUnknownVersion)
}

func (cmd *RunCmd) printResult(w io.Writer, res bisect.Result) {
	_, _ = fmt.Fprintln(w)

	if res.Inconclusive {
		_, _ = fmt.Fprintf(w, "%s %s is already bad; the regression predates the selected range\n",
			styles.PivotStyle.Render(styles.IconWarning), styles.BadStyle.Render(res.Bad.Version))
		return
	}

	_, _ = fmt.Fprintf(w, "%s last good  %s\n", styles.IconGood, styles.GoodStyle.Render(res.Good.Version))
	_, _ = fmt.Fprintf(w, "%s first bad  %s\n", styles.IconBad, styles.BadStyle.Render(res.Bad.Version))

	if u, err := res.CompareURL(cmd.app.Config.Bisect.CompareURL); err == nil {
		_, _ = fmt.Fprintf(w, "\n%s\n", u)
	}
}
