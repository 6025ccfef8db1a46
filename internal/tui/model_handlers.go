package tui

import (
	"context"
	"fmt"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/colonyops/vbisect/internal/core/eventbus"
)

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.dialog != nil {
			m.dialog.SetWidth(msg.Width)
		}
		return m, nil

	// Data
	case catalogLoadedMsg:
		return m.handleCatalogLoaded(msg)
	case submitDoneMsg:
		return m.handleSubmitDone(msg)
	case stepDoneMsg:
		return m.handleStepDone(msg)

	// Notifications
	case notificationMsg:
		m, cmd := m.pushToast(msg.Level, msg.Message)
		return m, tea.Batch(cmd, waitForEvent(m.events))
	case catalogRefreshedMsg:
		m.log.Debug().Int("count", msg.Count).Str("origin", msg.Origin).Msg("catalog refreshed")
		return m, waitForEvent(m.events)
	case toastTickMsg:
		m.toastController.Tick(toastTickInterval)
		if m.toastController.HasToasts() {
			return m, scheduleToastTick()
		}
		m.toastController.SetTicking(false)
		return m, nil

	// Input
	case tea.KeyPressMsg:
		return m.handleKey(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.dialog != nil {
		var cmd tea.Cmd
		m.dialog, cmd = m.dialog.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleCatalogLoaded(msg catalogLoadedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		m.log.Error().Err(msg.err).Msg("load catalog")
		return m.pushToast(eventbus.LevelError, "failed to load versions: "+msg.err.Error())
	}
	m.versions = msg.listing.Versions
	m.origin = msg.listing.Origin
	return m, nil
}

func (m Model) handleSubmitDone(msg submitDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = false

	if msg.err != nil {
		// the dialog stays open so the user can retry or pick another range
		m.orphan = msg.bisector
		if m.dialog != nil {
			m.dialog.ResetSubmit()
		}
		return m.pushToast(eventbus.LevelError, msg.err.Error())
	}
	if msg.bisector == nil {
		if m.dialog != nil {
			m.dialog.ResetSubmit()
		}
		return m, nil
	}

	m.orphan = nil
	m.closeDialog()
	m.session = msg.view
	m.screen = screenBisect
	return m, nil
}

func (m Model) handleStepDone(msg stepDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = false

	if msg.step.Done {
		m.result = msg.step.Result
		m.screen = screenResult
		return m, nil
	}
	if msg.view.Size > 0 {
		m.session = msg.view
	}
	if msg.err != nil {
		m.log.Error().Err(msg.err).Msg("record verdict")
		return m.pushToast(eventbus.LevelError, msg.err.Error())
	}
	return m, nil
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	if m.dialog != nil {
		return m.handleDialogKey(msg)
	}

	if key.Matches(msg, m.keys.Toast) && m.screen != screenResult && m.toastController.HasToasts() {
		m.toastController.Dismiss()
		return m, nil
	}

	switch m.screen {
	case screenBisect:
		return m.handleBisectKey(msg)
	case screenResult:
		return m.handleResultKey(msg)
	default:
		return m.handleIdleKey(msg)
	}
}

func (m Model) handleDialogKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}

	var cmd tea.Cmd
	m.dialog, cmd = m.dialog.Update(msg)

	switch {
	case m.dialog.Cancelled():
		m.dropOrphan()
		m.state.SetBisectDialogVisible(false)
		m.closeDialog()
		return m, nil
	case m.dialog.Submitted():
		m.busy = true
		return m, tea.Batch(cmd, m.submit())
	}
	return m, cmd
}

func (m Model) handleIdleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.NewBisect):
		return m.openDialog()
	case key.Matches(msg, m.keys.Refresh):
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(m.loadCatalog(true), m.spinner.Tick)
	}
	return m, nil
}

func (m Model) handleBisectKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Good), key.Matches(msg, m.keys.Bad):
		if m.busy {
			return m, nil
		}
		m.busy = true
		return m, tea.Batch(m.verdict(key.Matches(msg, m.keys.Good)), m.spinner.Tick)
	case key.Matches(msg, m.keys.Cancel):
		if m.busy {
			return m, nil
		}
		m.state.CancelBisect(context.Background())
		m.session = sessionView{}
		m.screen = screenIdle
	}
	return m, nil
}

func (m Model) handleResultKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Dismiss):
		m.dismissResult()
	case key.Matches(msg, m.keys.NewBisect):
		m.dismissResult()
		return m.openDialog()
	}
	return m, nil
}

// dropOrphan cancels a session left behind by a failed submit, unless the
// state has since moved on to another one.
func (m *Model) dropOrphan() {
	if m.orphan != nil && m.state.Bisector() == m.orphan {
		m.state.CancelBisect(context.Background())
	}
	m.orphan = nil
}

func (m *Model) dismissResult() {
	m.state.CancelBisect(context.Background())
	m.session = sessionView{}
	m.screen = screenIdle
}

func (m Model) openDialog() (tea.Model, tea.Cmd) {
	if m.loading {
		return m.pushToast(eventbus.LevelInfo, "versions are still loading")
	}
	if len(m.versions) < 2 {
		return m.pushToast(eventbus.LevelWarning, fmt.Sprintf("need at least 2 versions to bisect, have %d", len(m.versions)))
	}

	m.state.ShowBisectDialog()
	m.dialog = NewBisectDialog(m.versions, m.cfg.Bisect.DefaultStartOffset, m.width)
	return m, nil
}

func (m *Model) closeDialog() {
	if m.dialog != nil {
		m.dialog.Close()
		m.dialog = nil
	}
}
