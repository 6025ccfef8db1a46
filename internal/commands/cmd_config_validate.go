package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/vbisect/internal/core/config"
	"github.com/colonyops/vbisect/internal/core/styles"
	"github.com/colonyops/vbisect/pkg/iojson"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "vbisect config validate [options]",
				Description: "Validates the configuration file, checking templates, glob patterns, local versions, and file paths.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

// validationError is one failed field in the validation output.
type validationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type validationReport struct {
	Valid    bool                       `json:"valid"`
	Errors   []validationError          `json:"errors,omitempty"`
	Warnings []config.ValidationWarning `json:"warnings,omitempty"`
}

func (cmd *ConfigValidateCmd) run(ctx context.Context, c *cli.Command) error {
	report := buildReport(cmd.flags.Config, cmd.flags.ConfigPath)
	out := c.Root().Writer

	if cmd.format == "json" {
		if err := iojson.WriteWith(out, c.Root().ErrWriter, report); err != nil {
			return err
		}
	} else {
		writeReport(out, report)
	}

	if !report.Valid {
		return cli.Exit("", 1)
	}
	return nil
}

func buildReport(cfg *config.Config, configPath string) validationReport {
	report := validationReport{Valid: true, Warnings: cfg.Warnings()}

	err := cfg.ValidateDeep(configPath)
	if err == nil {
		return report
	}

	report.Valid = false
	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			report.Errors = append(report.Errors, validationError{Field: fe.Field, Message: fe.Err.Error()})
		}
		return report
	}

	report.Errors = append(report.Errors, validationError{Message: err.Error()})
	return report
}

func writeReport(w io.Writer, report validationReport) {
	for _, warn := range report.Warnings {
		_, _ = fmt.Fprintf(w, "%s %s: %s\n", styles.PivotStyle.Render(styles.IconWarning), warn.Category, warn.Message)
		if warn.Item != "" {
			_, _ = fmt.Fprintf(w, "  Item: %s\n", warn.Item)
		}
	}

	for _, e := range report.Errors {
		if e.Field != "" {
			_, _ = fmt.Fprintf(w, "%s %s: %s\n", styles.BadStyle.Render(styles.IconBad), e.Field, e.Message)
		} else {
			_, _ = fmt.Fprintf(w, "%s %s\n", styles.BadStyle.Render(styles.IconBad), e.Message)
		}
	}

	_, _ = fmt.Fprintln(w)
	if report.Valid {
		_, _ = fmt.Fprintf(w, "%s Configuration is valid\n", styles.GoodStyle.Render(styles.IconGood))
		return
	}
	_, _ = fmt.Fprintf(w, "%s %d error(s) found\n", styles.BadStyle.Render(styles.IconBad), len(report.Errors))
}
