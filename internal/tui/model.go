// Package tui implements the interactive bisect interface.
package tui

import (
	"context"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"

	"github.com/colonyops/vbisect/internal/core/appstate"
	"github.com/colonyops/vbisect/internal/core/bisect"
	"github.com/colonyops/vbisect/internal/core/catalog"
	"github.com/colonyops/vbisect/internal/core/config"
	"github.com/colonyops/vbisect/internal/core/eventbus"
	"github.com/colonyops/vbisect/internal/core/logging"
	"github.com/colonyops/vbisect/internal/core/styles"
	"github.com/colonyops/vbisect/internal/core/version"
)

// activateTimeout bounds a single activate hook run started from the TUI.
const activateTimeout = 10 * time.Minute

type screen int

const (
	screenIdle screen = iota
	screenBisect
	screenResult
)

// Options configures the TUI model.
type Options struct {
	Warnings []config.ValidationWarning // shown as toasts at startup
}

// Model is the root bubbletea model.
type Model struct {
	cfg     *config.Config
	state   *appstate.State
	catalog *catalog.Catalog
	bus     *eventbus.EventBus
	log     zerolog.Logger

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	versions []version.Version
	origin   catalog.Origin
	loading  bool

	screen  screen
	dialog  *BisectDialog
	session sessionView
	result  bisect.Result
	busy    bool // a submit or verdict is in flight

	// orphan is a session whose submit stored it but failed to activate
	// its pivot; closing the dialog cancels it.
	orphan *bisect.Bisector

	toastController *ToastController
	toastView       *ToastView
	events          <-chan tea.Msg
	startupWarnings []config.ValidationWarning

	width    int
	height   int
	quitting bool
}

// Messages
type (
	catalogLoadedMsg struct {
		listing catalog.Listing
		err     error
	}
	submitDoneMsg struct {
		view     sessionView
		bisector *bisect.Bisector
		err      error
	}
	stepDoneMsg struct {
		step bisect.Step
		view sessionView
		err  error
	}
)

// New creates the root model.
func New(cfg *config.Config, state *appstate.State, cat *catalog.Catalog, bus *eventbus.EventBus, opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.PivotStyle

	toastCtrl := NewToastController()

	return Model{
		cfg:             cfg,
		state:           state,
		catalog:         cat,
		bus:             bus,
		log:             logging.Component("tui"),
		keys:            defaultKeyMap(),
		help:            help.New(),
		spinner:         s,
		loading:         true,
		toastController: toastCtrl,
		toastView:       NewToastView(toastCtrl),
		events:          subscribeBus(bus),
		startupWarnings: opts.Warnings,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	if m.bus != nil {
		m.bus.PublishTuiStarted(eventbus.TUIStartedPayload{})
	}

	cmds := []tea.Cmd{m.loadCatalog(false), m.spinner.Tick, waitForEvent(m.events)}
	for _, w := range m.startupWarnings {
		m.toastController.Push(eventbus.NotificationPublishedPayload{
			Level:   eventbus.LevelWarning,
			Message: w.Category + ": " + w.Message,
		})
	}
	if m.toastController.HasToasts() {
		m.toastController.SetTicking(true)
		cmds = append(cmds, scheduleToastTick())
	}
	return tea.Batch(cmds...)
}

func (m Model) loadCatalog(force bool) tea.Cmd {
	cat := m.catalog
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		var (
			listing catalog.Listing
			err     error
		)
		if force {
			listing, err = cat.Refresh(ctx)
		} else {
			listing, err = cat.Load(ctx)
		}
		return catalogLoadedMsg{listing: listing, err: err}
	}
}

// submit hands the dialog's selection to the state sink.
func (m Model) submit() tea.Cmd {
	sel, state := m.dialog.Selector(), m.state
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), activateTimeout)
		defer cancel()

		b, err := sel.Submit(ctx, state)
		return submitDoneMsg{view: viewOf(b), bisector: b, err: err}
	}
}

// verdict records good or bad for the version under test.
func (m Model) verdict(good bool) tea.Cmd {
	state := m.state
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), activateTimeout)
		defer cancel()

		step, err := state.ContinueBisect(ctx, good)
		return stepDoneMsg{step: step, view: viewOf(state.Bisector()), err: err}
	}
}

// quit sets the quitting flag and emits tui.stopped.
func (m Model) quit() (Model, tea.Cmd) {
	m.quitting = true
	if m.bus != nil {
		m.bus.PublishTuiStopped(eventbus.TUIStoppedPayload{})
	}
	return m, tea.Quit
}

func (m Model) pushToast(level eventbus.Level, message string) (Model, tea.Cmd) {
	m.toastController.Push(eventbus.NotificationPublishedPayload{Level: level, Message: message})
	if m.toastController.Ticking() {
		return m, nil
	}
	m.toastController.SetTicking(true)
	return m, scheduleToastTick()
}
