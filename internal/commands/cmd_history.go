package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/vbisect/internal/core/history"
	"github.com/colonyops/vbisect/internal/core/styles"
	"github.com/colonyops/vbisect/internal/vbisect"
	"github.com/colonyops/vbisect/pkg/iojson"
)

type HistoryCmd struct {
	flags *Flags
	app   *vbisect.App

	// flags
	jsonOutput bool
	limit      int
	olderThan  time.Duration
}

// NewHistoryCmd creates a new history command
func NewHistoryCmd(flags *Flags, app *vbisect.App) *HistoryCmd {
	return &HistoryCmd{flags: flags, app: app}
}

// Register adds the history command to the application
func (cmd *HistoryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "history",
		Usage:     "Show past bisect sessions",
		UsageText: "vbisect history [--json] [--limit N]",
		Description: `Lists bisect sessions newest first with their boundaries, status and
result. Use 'history show <id>' for the verdict of every step.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "show at most N sessions (0 for all)",
				Value:       20,
				Destination: &cmd.limit,
			},
		},
		Action: cmd.runList,
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Show one session with its steps",
				UsageText: "vbisect history show [--json] <id>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.runShow,
			},
			{
				Name:      "prune",
				Usage:     "Delete finished sessions",
				UsageText: "vbisect history prune [--older-than DURATION]",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:        "older-than",
						Usage:       "only delete sessions last updated before this long ago",
						Destination: &cmd.olderThan,
					},
				},
				Action: cmd.runPrune,
			},
		},
	})

	return app
}

func (cmd *HistoryCmd) runList(ctx context.Context, c *cli.Command) error {
	sessions, err := cmd.app.History.List(ctx, cmd.limit)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		if err := iojson.WriteLines(out, sessions); err != nil {
			return fmt.Errorf("encode sessions: %w", err)
		}
		return nil
	}

	if len(sessions) == 0 {
		_, _ = fmt.Fprintln(c.Root().ErrWriter, "No bisect sessions yet")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTARTED\tRANGE\tSTATUS\tRESULT")
	for _, s := range sessions {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s..%s (%d)\t%s\t%s\n",
			shortID(s.ID),
			s.CreatedAt.Local().Format(time.DateTime),
			s.Good, s.Bad, s.RangeSize,
			statusLabel(s.Status),
			resultLabel(s),
		)
	}
	return w.Flush()
}

func (cmd *HistoryCmd) runShow(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return errors.New("expected exactly one session id")
	}

	sess, err := cmd.find(ctx, c.Args().First())
	if err != nil {
		return err
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteWith(out, c.Root().ErrWriter, sess)
	}

	printSession(out, sess)
	return nil
}

func (cmd *HistoryCmd) runPrune(ctx context.Context, c *cli.Command) error {
	n, err := cmd.app.History.DeleteOlderThan(ctx, time.Now().Add(-cmd.olderThan))
	if err != nil {
		return fmt.Errorf("prune sessions: %w", err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "%s deleted %d sessions\n", styles.IconGood, n)
	return nil
}

// find resolves a full session id or a unique prefix of one.
func (cmd *HistoryCmd) find(ctx context.Context, id string) (history.Session, error) {
	sess, err := cmd.app.History.Get(ctx, id)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, history.ErrNotFound) {
		return history.Session{}, fmt.Errorf("get session: %w", err)
	}

	all, err := cmd.app.History.List(ctx, 0)
	if err != nil {
		return history.Session{}, fmt.Errorf("list sessions: %w", err)
	}

	var matches []history.Session
	for _, s := range all {
		if strings.HasPrefix(s.ID, id) {
			matches = append(matches, s)
		}
	}

	switch len(matches) {
	case 0:
		return history.Session{}, fmt.Errorf("%s: %w", id, history.ErrNotFound)
	case 1:
		// List omits steps
		return cmd.app.History.Get(ctx, matches[0].ID)
	default:
		return history.Session{}, fmt.Errorf("%s matches %d sessions", id, len(matches))
	}
}

func printSession(w io.Writer, s history.Session) {
	_, _ = fmt.Fprintf(w, "Session  %s\n", s.ID)
	_, _ = fmt.Fprintf(w, "Started  %s\n", s.CreatedAt.Local().Format(time.DateTime))
	_, _ = fmt.Fprintf(w, "Range    %s .. %s (%d versions)\n", s.Good, s.Bad, s.RangeSize)
	_, _ = fmt.Fprintf(w, "Status   %s\n", statusLabel(s.Status))
	if s.Status.Finished() {
		_, _ = fmt.Fprintf(w, "Took     %s\n", s.Duration().Round(time.Second))
	}
	if r := resultLabel(s); r != "-" {
		_, _ = fmt.Fprintf(w, "Result   %s\n", r)
	}

	if len(s.Steps) == 0 {
		return
	}

	_, _ = fmt.Fprintln(w)
	for i, step := range s.Steps {
		icon, style := styles.IconGood, styles.GoodStyle
		verdict := "good"
		if !step.Good {
			icon, style, verdict = styles.IconBad, styles.BadStyle, "bad"
		}
		_, _ = fmt.Fprintf(w, "%3d. %s %s %s\n", i+1, icon, step.Version, style.Render(verdict))
	}
}

func statusLabel(s history.Status) string {
	switch s {
	case history.StatusCompleted:
		return styles.GoodStyle.Render(string(s))
	case history.StatusInconclusive:
		return styles.PivotStyle.Render(string(s))
	case history.StatusCancelled:
		return styles.DividerStyle.Render(string(s))
	default:
		return string(s)
	}
}

func resultLabel(s history.Session) string {
	switch {
	case s.ResultGood != "" && s.ResultBad != "":
		return s.ResultGood + " -> " + s.ResultBad
	case s.ResultBad != "":
		return "bad at " + s.ResultBad
	default:
		return "-"
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
