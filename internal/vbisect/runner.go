package vbisect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/rs/zerolog"

	"github.com/colonyops/vbisect/internal/core/appstate"
	"github.com/colonyops/vbisect/internal/core/bisect"
	"github.com/colonyops/vbisect/internal/core/config"
	"github.com/colonyops/vbisect/internal/core/logging"
	"github.com/colonyops/vbisect/internal/core/rangesel"
	"github.com/colonyops/vbisect/internal/core/styles"
	"github.com/colonyops/vbisect/internal/core/version"
	"github.com/colonyops/vbisect/pkg/executil"
	"github.com/colonyops/vbisect/pkg/tmpl"
	"github.com/colonyops/vbisect/pkg/utils"
)

var (
	// ErrUnknownVersion is returned when a requested boundary is not in the catalog.
	ErrUnknownVersion = errors.New("version not in catalog")
	// ErrInvalidRange is returned when the good version is not older than the bad one.
	ErrInvalidRange = errors.New("good version must be older than bad version")
	// ErrNoTestCommand is returned when neither a command nor commands.test is set.
	ErrNoTestCommand = errors.New("no test command")
)

// quietOutputLimit is how much test output quiet mode keeps per step.
const quietOutputLimit = 64 << 10

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	Dir    string    // working directory for the test command
	Stdout io.Writer // test command stdout and progress lines
	Stderr io.Writer // test command stderr
	Quiet  bool      // buffer test output, shown only when the command cannot run
}

// Runner drives a bisect session with a test command: exit 0 marks the
// version good, any other exit status marks it bad, and a command that cannot
// run at all aborts the session.
type Runner struct {
	cfg   *config.Config
	state *appstate.State
	exec  executil.Executor
	opts  RunnerOptions
	log   zerolog.Logger
}

// NewRunner creates a runner.
func NewRunner(cfg *config.Config, state *appstate.State, exec executil.Executor, opts RunnerOptions) *Runner {
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	return &Runner{
		cfg:   cfg,
		state: state,
		exec:  exec,
		opts:  opts,
		log:   logging.Component("runner"),
	}
}

// Select builds a range selector over versions with good and bad chosen
// through the same guarded handlers the dialog uses.
func (r *Runner) Select(versions []version.Version, good, bad version.Version) (*rangesel.Selector, error) {
	sel := rangesel.New(versions, rangesel.WithStartOffset(r.cfg.Bisect.DefaultStartOffset))

	if !slices.Contains(versions, good) {
		return nil, fmt.Errorf("good %s: %w", good.Version, ErrUnknownVersion)
	}
	if !slices.Contains(versions, bad) {
		return nil, fmt.Errorf("bad %s: %w", bad.Version, ErrUnknownVersion)
	}

	// Pick latest first against the default earliest only if it fits;
	// otherwise widen earliest first. Either order ends in the same pair
	// when good is older than bad.
	if sel.IsLatestItemDisabled(bad) {
		if sel.IsEarliestItemDisabled(good) {
			return nil, ErrInvalidRange
		}
		sel.SelectEarliest(good)
		if sel.IsLatestItemDisabled(bad) {
			return nil, ErrInvalidRange
		}
		sel.SelectLatest(bad)
	} else {
		sel.SelectLatest(bad)
		if sel.IsEarliestItemDisabled(good) {
			return nil, ErrInvalidRange
		}
		sel.SelectEarliest(good)
	}

	if !sel.CanSubmit() {
		return nil, ErrInvalidRange
	}
	return sel, nil
}

// Run bisects between good and bad using testCmd (a template rendered with
// config.CommandData). An empty testCmd falls back to commands.test.
func (r *Runner) Run(ctx context.Context, versions []version.Version, good, bad version.Version, testCmd string) (bisect.Result, error) {
	if testCmd == "" {
		testCmd = r.cfg.Commands.Test
	}
	if testCmd == "" {
		return bisect.Result{}, ErrNoTestCommand
	}

	sel, err := r.Select(versions, good, bad)
	if err != nil {
		return bisect.Result{}, err
	}

	// Closing the session must survive an interrupted ctx.
	finish := func() { r.state.CancelBisect(context.WithoutCancel(ctx)) }

	b, err := sel.Submit(ctx, r.state)
	if err != nil {
		finish()
		return bisect.Result{}, err
	}
	if b == nil {
		return bisect.Result{}, ErrInvalidRange
	}

	lo, hi := b.Range()
	r.printf("%s bisecting %d versions between %s and %s\n",
		styles.IconBisect, b.Len(), styles.GoodStyle.Render(lo.Version), styles.BadStyle.Render(hi.Version))

	for {
		current, _ := r.state.ActiveVersion()
		r.printf("%s testing %s (~%d steps left)\n",
			styles.IconPivot, styles.PivotStyle.Render(current.Version), b.StepsRemaining())

		good, err := r.test(ctx, testCmd, current)
		if err != nil {
			finish()
			return bisect.Result{}, err
		}

		if good {
			r.printf("  %s %s is good\n", styles.IconGood, current.Version)
		} else {
			r.printf("  %s %s is bad\n", styles.IconBad, current.Version)
		}

		step, err := r.state.ContinueBisect(ctx, good)
		if err != nil {
			finish()
			return bisect.Result{}, err
		}
		if step.Done {
			finish()
			return step.Result, nil
		}
	}
}

// test runs the command for v and classifies the outcome.
func (r *Runner) test(ctx context.Context, testCmd string, v version.Version) (bool, error) {
	data := r.cfg.CommandDataFor(v)
	script, err := tmpl.Render(testCmd, data)
	if err != nil {
		return false, fmt.Errorf("render test command: %w", err)
	}

	stdout, stderr := r.opts.Stdout, r.opts.Stderr
	buffered := utils.DeferredWriter{Limit: quietOutputLimit}
	if r.opts.Quiet {
		stdout, stderr = &buffered, &buffered
	}

	err = r.exec.Stream(ctx, executil.Script{Source: script, Dir: r.opts.Dir, Env: data.Env()}, stdout, stderr)
	if err == nil {
		return true, nil
	}

	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	code, ok := executil.ExitCode(err)
	if !ok {
		_ = buffered.Flush(r.opts.Stderr)
		return false, fmt.Errorf("run test command for %s: %w", v.Version, err)
	}

	r.log.Debug().Str("version", v.Version).Int("exit_code", code).Msg("test failed")
	return false, nil
}

func (r *Runner) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.opts.Stdout, format, args...)
}
