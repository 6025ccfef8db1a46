package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/vbisect/internal/core/doctor"
	"github.com/colonyops/vbisect/internal/core/styles"
	"github.com/colonyops/vbisect/internal/vbisect"
	"github.com/colonyops/vbisect/pkg/iojson"
)

type DoctorCmd struct {
	flags   *Flags
	app     *vbisect.App
	format  string
	autofix bool
}

func NewDoctorCmd(flags *Flags, app *vbisect.App) *DoctorCmd {
	return &DoctorCmd{flags: flags, app: app}
}

func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "doctor",
		Usage:       "Run health checks on your vbisect setup",
		UsageText:   "vbisect doctor [options]",
		Description: "Runs diagnostic checks on configuration, hook commands, the release catalog, the database schema, and stored sessions.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
			&cli.BoolFlag{
				Name:        "autofix",
				Usage:       "automatically fix issues (e.g., cancel abandoned sessions)",
				Destination: &cmd.autofix,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DoctorCmd) checks() []doctor.Check {
	cfg := cmd.app.Config
	return []doctor.Check{
		doctor.NewConfigCheck(cfg, cmd.flags.ConfigPath),
		doctor.NewToolsCheck(cfg),
		doctor.NewCatalogCheck(cmd.app.Catalog, cfg.Catalog.ReleasesURL),
		doctor.NewDatabaseCheck(cmd.app.DB),
		doctor.NewSessionsCheck(cmd.app.History, doctor.DefaultStaleAfter),
	}
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	report := doctor.RunAll(ctx, cmd.checks(), cmd.autofix)

	if cmd.format == "json" {
		if err := iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, report); err != nil {
			return err
		}
	} else {
		cmd.printReport(c.Root().ErrWriter, report)
	}

	if !report.Healthy {
		return cli.Exit("", 1)
	}
	return nil
}

func statusIcon(s doctor.Status) string {
	switch s {
	case doctor.StatusFail:
		return styles.BadStyle.Render(styles.IconBad)
	case doctor.StatusWarn:
		return styles.PivotStyle.Render(styles.IconWarning)
	default:
		return styles.GoodStyle.Render(styles.IconGood)
	}
}

func (cmd *DoctorCmd) printReport(w io.Writer, report doctor.Report) {
	var b strings.Builder

	b.WriteString("\n" + styles.CommandHeaderStyle.Render("vbisect doctor") + "\n")
	b.WriteString(styles.DividerStyle.Render(strings.Repeat("─", 40)) + "\n\n")

	for _, result := range report.Checks {
		b.WriteString(styles.CommandStyle.Bold(true).Render(result.Name) + "\n")
		for _, item := range result.Items {
			line := "  " + statusIcon(item.Status) + " " + item.Label
			if item.Detail != "" {
				line += " " + styles.DividerStyle.Render(item.Detail)
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	sum := report.Summary
	fmt.Fprintf(&b, "%s  %s  %s\n",
		styles.GoodStyle.Render(fmt.Sprintf("%d passed", sum.Passed)),
		styles.PivotStyle.Render(fmt.Sprintf("%d warnings", sum.Warned)),
		styles.BadStyle.Render(fmt.Sprintf("%d failed", sum.Failed)),
	)
	if !cmd.autofix && sum.Fixable > 0 {
		b.WriteString("\n" + styles.DividerStyle.Render(fmt.Sprintf("Run 'vbisect doctor --autofix' to fix %d issue(s)", sum.Fixable)) + "\n")
	}

	_, _ = io.WriteString(w, b.String())
}
