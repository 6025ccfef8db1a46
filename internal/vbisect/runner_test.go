package vbisect

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/mod/semver"

	"github.com/colonyops/vbisect/internal/core/appstate"
	"github.com/colonyops/vbisect/internal/core/config"
	"github.com/colonyops/vbisect/internal/core/history"
	"github.com/colonyops/vbisect/internal/core/version"
	"github.com/colonyops/vbisect/internal/data/db"
	"github.com/colonyops/vbisect/internal/data/stores"
	"github.com/colonyops/vbisect/pkg/executil"
)

// newestFirst returns n versions 1.0.(n-1) .. 1.0.0.
func newestFirst(n int) []version.Version {
	out := make([]version.Version, n)
	for i := range n {
		out[i] = version.MustParse(fmt.Sprintf("1.0.%d", n-1-i), version.SourceRemote)
	}
	return out
}

func v(s string) version.Version { return version.MustParse(s, version.SourceRemote) }

// failsFrom returns a handler where "check <version>" exits 1 for every
// version at or above firstBad.
func failsFrom(firstBad string) func(executil.Script) ([]byte, error) {
	return func(s executil.Script) ([]byte, error) {
		tested := strings.TrimPrefix(s.Source, "check ")
		if semver.Compare("v"+tested, "v"+firstBad) >= 0 {
			return []byte("FAIL\n"), &executil.ExitError{Code: 1}
		}
		return []byte("ok\n"), nil
	}
}

type runnerFixture struct {
	runner  *Runner
	state   *appstate.State
	exec    *executil.RecordingExecutor
	history *stores.BisectStore
	out     *bytes.Buffer
}

func newRunnerFixture(t *testing.T) *runnerFixture {
	t.Helper()

	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	cfg := config.DefaultConfig()
	cfg.DataDir = "/data"

	f := &runnerFixture{
		exec:    &executil.RecordingExecutor{},
		history: stores.NewBisectStore(database),
		out:     &bytes.Buffer{},
	}
	f.state = appstate.New(&cfg, appstate.WithExecutor(f.exec), appstate.WithHistory(f.history))
	f.runner = NewRunner(&cfg, f.state, f.exec, RunnerOptions{Dir: "/work", Stdout: f.out})
	return f
}

func TestRunner_FindsFirstBadVersion(t *testing.T) {
	tests := []struct {
		name     string
		firstBad string
		wantGood string
	}{
		{name: "middle", firstBad: "1.0.6", wantGood: "1.0.5"},
		{name: "newest", firstBad: "1.0.9", wantGood: "1.0.8"},
		{name: "right after boundary", firstBad: "1.0.1", wantGood: "1.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRunnerFixture(t)
			f.exec.Handler = failsFrom(tt.firstBad)

			res, err := f.runner.Run(context.Background(), newestFirst(10), v("1.0.0"), v("1.0.9"), "check {{ .Version }}")
			require.NoError(t, err)

			assert.False(t, res.Inconclusive)
			assert.Equal(t, tt.wantGood, res.Good.Version)
			assert.Equal(t, tt.firstBad, res.Bad.Version)

			scripts := f.exec.Scripts()
			require.NotEmpty(t, scripts)
			assert.Equal(t, "check 1.0.0", scripts[0], "boundary is verified first")
			assert.LessOrEqual(t, len(scripts), 5)
			for _, s := range f.exec.Recorded() {
				assert.Equal(t, "/work", s.Dir)
				assert.Contains(t, s.Env, "VBISECT_VERSION="+strings.TrimPrefix(s.Source, "check "))
			}

			assert.Nil(t, f.state.Bisector(), "finished session is dismissed")

			sessions, err := f.history.List(context.Background(), 0)
			require.NoError(t, err)
			require.Len(t, sessions, 1)
			assert.Equal(t, history.StatusCompleted, sessions[0].Status)
			assert.Equal(t, tt.firstBad, sessions[0].ResultBad)
			assert.Contains(t, f.out.String(), "FAIL")
		})
	}
}

func TestRunner_Inconclusive(t *testing.T) {
	f := newRunnerFixture(t)
	f.exec.Handler = failsFrom("0.0.1")

	res, err := f.runner.Run(context.Background(), newestFirst(6), v("1.0.0"), v("1.0.5"), "check {{ .Version }}")
	require.NoError(t, err)
	assert.True(t, res.Inconclusive)
	assert.Equal(t, []string{"check 1.0.0"}, f.exec.Scripts())
}

func TestRunner_FallsBackToConfiguredTest(t *testing.T) {
	f := newRunnerFixture(t)
	f.runner.cfg.Commands.Test = "check {{ .Version }}"
	f.exec.Handler = failsFrom("1.0.2")

	res, err := f.runner.Run(context.Background(), newestFirst(4), v("1.0.0"), v("1.0.3"), "")
	require.NoError(t, err)
	assert.Equal(t, "1.0.2", res.Bad.Version)
}

func TestRunner_Errors(t *testing.T) {
	vs := newestFirst(12)

	tests := []struct {
		name      string
		good, bad version.Version
		cmd       string
		wantErr   error
	}{
		{name: "no command", good: v("1.0.0"), bad: v("1.0.5"), wantErr: ErrNoTestCommand},
		{name: "unknown good", good: v("2.0.0"), bad: v("1.0.5"), cmd: "true", wantErr: ErrUnknownVersion},
		{name: "unknown bad", good: v("1.0.0"), bad: v("9.9.9"), cmd: "true", wantErr: ErrUnknownVersion},
		{name: "reversed", good: v("1.0.7"), bad: v("1.0.2"), cmd: "true", wantErr: ErrInvalidRange},
		{name: "same version", good: v("1.0.3"), bad: v("1.0.3"), cmd: "true", wantErr: ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRunnerFixture(t)
			_, err := f.runner.Run(context.Background(), vs, tt.good, tt.bad, tt.cmd)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.exec.Recorded())
		})
	}
}

func TestRunner_SelectBeyondDefaultOffset(t *testing.T) {
	f := newRunnerFixture(t)
	vs := newestFirst(30)

	// both picks are older than the default earliest index
	sel, err := f.runner.Select(vs, v("1.0.0"), v("1.0.15"))
	require.NoError(t, err)

	earliest, _ := sel.Earliest()
	latest, _ := sel.Latest()
	assert.Equal(t, "1.0.0", earliest.Version)
	assert.Equal(t, "1.0.15", latest.Version)
	assert.Len(t, sel.BisectRange(), 16)
}

func TestRunner_AbortsWhenCommandCannotRun(t *testing.T) {
	f := newRunnerFixture(t)
	f.exec.Handler = func(executil.Script) ([]byte, error) {
		return nil, errors.New("exec: \"sh\": executable file not found")
	}

	_, err := f.runner.Run(context.Background(), newestFirst(5), v("1.0.0"), v("1.0.4"), "check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1.0.0")
	assert.Nil(t, f.state.Bisector())

	sessions, err := f.history.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, history.StatusCancelled, sessions[0].Status)
}

func TestRunner_ContextCancelled(t *testing.T) {
	f := newRunnerFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	f.exec.Handler = func(executil.Script) ([]byte, error) {
		cancel()
		return nil, &executil.ExitError{Code: -1}
	}

	_, err := f.runner.Run(ctx, newestFirst(5), v("1.0.0"), v("1.0.4"), "check")
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunner_QuietBuffersOutput(t *testing.T) {
	t.Run("hides output of passing and failing tests", func(t *testing.T) {
		f := newRunnerFixture(t)
		f.runner.opts.Quiet = true
		f.exec.Handler = failsFrom("1.0.3")

		res, err := f.runner.Run(context.Background(), newestFirst(6), v("1.0.0"), v("1.0.5"), "check {{ .Version }}")
		require.NoError(t, err)
		assert.Equal(t, "1.0.3", res.Bad.Version)
		assert.NotContains(t, f.out.String(), "FAIL")
		assert.NotContains(t, f.out.String(), "ok\n")
	})

	t.Run("flushes output when the command cannot run", func(t *testing.T) {
		f := newRunnerFixture(t)
		var stderr bytes.Buffer
		f.runner.opts.Quiet = true
		f.runner.opts.Stderr = &stderr
		f.exec.Handler = func(executil.Script) ([]byte, error) {
			return []byte("sh: check: not found\n"), errors.New("boom")
		}

		_, err := f.runner.Run(context.Background(), newestFirst(5), v("1.0.0"), v("1.0.4"), "check")
		require.Error(t, err)
		assert.Contains(t, stderr.String(), "check: not found")
	})
}
