// Package appstate holds the application-wide state the range selector and
// bisect handler write to: dialog visibility, the active version and the
// running bisect session.
package appstate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/colonyops/vbisect/internal/core/bisect"
	"github.com/colonyops/vbisect/internal/core/config"
	"github.com/colonyops/vbisect/internal/core/eventbus"
	"github.com/colonyops/vbisect/internal/core/history"
	"github.com/colonyops/vbisect/internal/core/logging"
	"github.com/colonyops/vbisect/internal/core/rangesel"
	"github.com/colonyops/vbisect/internal/core/version"
	"github.com/colonyops/vbisect/pkg/executil"
	"github.com/colonyops/vbisect/pkg/tmpl"
)

// ErrNoSession is returned when a bisect operation needs a session and none is stored.
var ErrNoSession = errors.New("no bisect session")

const persistTimeout = 5 * time.Second

// Option configures a State.
type Option func(*State)

// WithExecutor sets the executor used for the activate hook.
func WithExecutor(e executil.Executor) Option {
	return func(s *State) { s.exec = e }
}

// WithHistory persists sessions to store.
func WithHistory(store history.Store) Option {
	return func(s *State) { s.history = store }
}

// WithBus publishes state changes on bus.
func WithBus(bus *eventbus.EventBus) Option {
	return func(s *State) { s.bus = bus }
}

// WithIDFunc overrides session ID generation.
func WithIDFunc(fn func() string) Option {
	return func(s *State) { s.newID = fn }
}

// State is safe for concurrent use. Event bus subscribers read it from the
// dispatch goroutine while the TUI writes from the update loop.
type State struct {
	cfg     *config.Config
	exec    executil.Executor
	history history.Store
	bus     *eventbus.EventBus
	newID   func() string
	log     zerolog.Logger

	mu            sync.RWMutex
	dialogVisible bool
	active        *version.Version
	bisector      *bisect.Bisector
	sessionID     string
}

var _ rangesel.Sink = (*State)(nil)

// New creates the state. cfg supplies the activate hook template.
func New(cfg *config.Config, opts ...Option) *State {
	s := &State{
		cfg:   cfg,
		exec:  &executil.RealExecutor{},
		newID: func() string { return uuid.NewString() },
		log:   logging.Component("appstate"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BisectDialogVisible reports whether the range dialog is open.
func (s *State) BisectDialogVisible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dialogVisible
}

// ShowBisectDialog opens the range dialog.
func (s *State) ShowBisectDialog() {
	s.SetBisectDialogVisible(true)
}

// SetBisectDialogVisible flips the dialog visibility flag.
func (s *State) SetBisectDialogVisible(visible bool) {
	s.mu.Lock()
	changed := s.dialogVisible != visible
	s.dialogVisible = visible
	s.mu.Unlock()

	if changed && s.bus != nil {
		s.bus.PublishDialogToggled(eventbus.DialogToggledPayload{Visible: visible})
	}
}

// ActiveVersion returns the most recently activated version.
func (s *State) ActiveVersion() (version.Version, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return version.Version{}, false
	}
	return *s.active, true
}

// Bisector returns the stored session, or nil.
func (s *State) Bisector() *bisect.Bisector {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bisector
}

// SessionID returns the ID of the stored session, or "".
func (s *State) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// SetVersion activates v: the commands.activate hook runs first and v only
// becomes active if it succeeds.
func (s *State) SetVersion(ctx context.Context, v version.Version) error {
	ctx = logging.WithPivot(ctx, v.Version)
	if id := s.SessionID(); id != "" {
		ctx = logging.WithSessionID(ctx, id)
	}

	if err := s.runActivateHook(ctx, v); err != nil {
		s.log.Error().Ctx(ctx).Err(err).Msg("activate version")
		if s.bus != nil {
			s.bus.PublishVersionActivationError(eventbus.VersionActivationErrorPayload{Version: v, Err: err})
		}
		return err
	}

	s.mu.Lock()
	s.active = &v
	s.mu.Unlock()

	s.log.Info().Ctx(ctx).Str("source", string(v.Source)).Msg("version activated")
	if s.bus != nil {
		s.bus.PublishVersionActivated(eventbus.VersionActivatedPayload{Version: v})
	}
	return nil
}

func (s *State) runActivateHook(ctx context.Context, v version.Version) error {
	if s.cfg == nil || s.cfg.Commands.Activate == "" {
		return nil
	}

	data := s.cfg.CommandDataFor(v)
	script, err := tmpl.Render(s.cfg.Commands.Activate, data)
	if err != nil {
		return fmt.Errorf("render activate command: %w", err)
	}

	if out, err := s.exec.Output(ctx, executil.Script{Source: script, Env: data.Env()}); err != nil {
		s.log.Debug().Ctx(ctx).Bytes("output", out).Msg("activate hook failed")
		return fmt.Errorf("activate %s: %w", v.Version, err)
	}
	return nil
}

// SetBisector stores a new session, replacing (and cancelling) any running one.
func (s *State) SetBisector(b *bisect.Bisector) {
	id := s.newID()

	s.mu.Lock()
	prevID, prev := s.sessionID, s.bisector
	s.bisector = b
	s.sessionID = id
	s.mu.Unlock()

	if prev != nil && !prev.Done() {
		s.finish(prevID, history.StatusCancelled, bisect.Result{})
		s.publishCancelled(prevID)
	}

	good, bad := b.Range()
	s.persist(func(ctx context.Context) error {
		return s.history.Create(ctx, history.Session{
			ID:        id,
			Good:      good.Version,
			Bad:       bad.Version,
			RangeSize: b.Len(),
			Status:    history.StatusRunning,
		})
	})

	s.log.Info().Str("session_id", id).Str("good", good.Version).Str("bad", bad.Version).Msg("bisect session stored")
	if s.bus != nil {
		s.bus.PublishBisectStarted(eventbus.BisectStartedPayload{
			SessionID: id,
			Good:      good,
			Bad:       bad,
			Size:      b.Len(),
		})
	}
}

// ContinueBisect records a verdict for the version under test. When the
// session is not finished the next pivot is activated; activation errors are
// returned together with the step.
func (s *State) ContinueBisect(ctx context.Context, good bool) (bisect.Step, error) {
	s.mu.Lock()
	b, id := s.bisector, s.sessionID
	if b == nil {
		s.mu.Unlock()
		return bisect.Step{}, ErrNoSession
	}
	tested := b.Current()
	step, err := b.Continue(good)
	remaining := b.StepsRemaining()
	s.mu.Unlock()
	if err != nil {
		return bisect.Step{}, err
	}

	ctx = logging.WithSessionID(ctx, id)
	s.log.Info().Ctx(ctx).Str("version", tested.Version).Bool("good", good).Msg("verdict recorded")

	s.persist(func(ctx context.Context) error {
		return s.history.AddStep(ctx, id, history.Step{Version: tested.Version, Good: good})
	})

	if step.Done {
		status := history.StatusCompleted
		if step.Result.Inconclusive {
			status = history.StatusInconclusive
		}
		s.finish(id, status, step.Result)
		if s.bus != nil {
			s.bus.PublishBisectCompleted(eventbus.BisectCompletedPayload{SessionID: id, Result: step.Result})
		}
		return step, nil
	}

	if s.bus != nil {
		s.bus.PublishBisectStepped(eventbus.BisectSteppedPayload{
			SessionID: id,
			Verdict:   bisect.Verdict{Version: tested, Good: good},
			Next:      step.Next,
			Remaining: remaining,
		})
	}

	if err := s.SetVersion(ctx, step.Next); err != nil {
		return step, err
	}
	return step, nil
}

// CancelBisect drops the stored session. A running session is recorded as
// cancelled; a finished one is simply dismissed.
func (s *State) CancelBisect(ctx context.Context) {
	s.mu.Lock()
	b, id := s.bisector, s.sessionID
	s.bisector = nil
	s.sessionID = ""
	s.mu.Unlock()

	if b == nil || b.Done() {
		return
	}

	s.log.Info().Ctx(logging.WithSessionID(ctx, id)).Msg("bisect cancelled")
	s.finish(id, history.StatusCancelled, bisect.Result{})
	s.publishCancelled(id)
}

func (s *State) publishCancelled(id string) {
	if s.bus != nil {
		s.bus.PublishBisectCancelled(eventbus.BisectCancelledPayload{SessionID: id})
	}
}

func (s *State) finish(id string, status history.Status, r bisect.Result) {
	s.persist(func(ctx context.Context) error {
		var good, bad string
		if status != history.StatusCancelled {
			good, bad = r.Good.Version, r.Bad.Version
		}
		return s.history.Finish(ctx, id, status, good, bad)
	})
}

// persist runs fn against the history store. Failures are only logged.
func (s *State) persist(fn func(ctx context.Context) error) {
	if s.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		s.log.Warn().Err(err).Msg("persist bisect history")
	}
}
