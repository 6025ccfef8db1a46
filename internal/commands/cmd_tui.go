package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/vbisect/internal/tui"
	"github.com/colonyops/vbisect/internal/vbisect"
)

// ErrNotTerminal is returned when the TUI is started without a terminal.
var ErrNotTerminal = errors.New("the interactive interface requires a terminal; use 'vbisect run' for scripted bisects")

type TuiCmd struct {
	flags *Flags
	app   *vbisect.App
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags, app *vbisect.App) *TuiCmd {
	return &TuiCmd{
		flags: flags,
		app:   app,
	}
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return ErrNotTerminal
	}

	m := tui.New(cmd.app.Config, cmd.app.State, cmd.app.Catalog, cmd.app.Bus, tui.Options{
		Warnings: cmd.app.Config.Warnings(),
	})

	p := tea.NewProgram(m, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	// a session left running in the TUI is abandoned on exit
	cmd.app.State.CancelBisect(ctx)
	return nil
}
