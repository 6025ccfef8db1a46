package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/vbisect/internal/vbisect"
	"github.com/colonyops/vbisect/pkg/iojson"
)

type VersionsCmd struct {
	flags *Flags
	app   *vbisect.App

	// flags
	jsonOutput bool
	refresh    bool
	limit      int
}

// NewVersionsCmd creates a new versions command
func NewVersionsCmd(flags *Flags, app *vbisect.App) *VersionsCmd {
	return &VersionsCmd{flags: flags, app: app}
}

// Register adds the versions command to the application
func (cmd *VersionsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "versions",
		Aliases:   []string{"ls"},
		Usage:     "List versions available for bisecting",
		UsageText: "vbisect versions [--json] [--refresh] [--limit N]",
		Description: `Lists the catalog newest first: remote releases filtered by the configured
channels and globs, plus configured local versions.

Remote releases are cached for catalog.cache_ttl. Use --refresh to bypass the cache.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
			&cli.BoolFlag{
				Name:        "refresh",
				Aliases:     []string{"r"},
				Usage:       "fetch the release list even if the cache is fresh",
				Destination: &cmd.refresh,
			},
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "show at most N versions (0 for all)",
				Destination: &cmd.limit,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *VersionsCmd) run(ctx context.Context, c *cli.Command) error {
	load := cmd.app.Catalog.Load
	if cmd.refresh {
		load = cmd.app.Catalog.Refresh
	}

	listing, err := load(ctx)
	if err != nil {
		return fmt.Errorf("load versions: %w", err)
	}

	versions := listing.Versions
	if cmd.limit > 0 && len(versions) > cmd.limit {
		versions = versions[:cmd.limit]
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		if err := iojson.WriteLines(out, versions); err != nil {
			return fmt.Errorf("encode versions: %w", err)
		}
		return nil
	}

	if len(versions) == 0 {
		_, _ = fmt.Fprintln(c.Root().ErrWriter, "No versions match the catalog filters")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "VERSION\tCHANNEL\tSOURCE")
	for _, v := range versions {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", v.Version, v.Channel, v.Source)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(c.Root().ErrWriter, "\n%d versions (%s)\n", len(listing.Versions), listing.Origin)
	return nil
}
