package tui

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/vbisect/internal/core/styles"
)

// View renders the model.
func (m Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}

	mainView := m.renderMain()

	w, h := m.width, m.height
	if w == 0 {
		w = 80
	}
	if h == 0 {
		h = 24
	}

	content := mainView
	if m.dialog != nil {
		overlay := m.dialog.View()

		bgLayer := lipgloss.NewLayer(mainView)
		dialogLayer := lipgloss.NewLayer(overlay)
		dialogW := lipgloss.Width(overlay)
		dialogH := lipgloss.Height(overlay)
		dialogLayer.X(max((w-dialogW)/2, 0)).Y(max((h-dialogH)/2, 0)).Z(1)

		content = lipgloss.NewCompositor(bgLayer, dialogLayer).Render()
	}

	if m.toastController.HasToasts() {
		content = m.toastView.Overlay(content, w, h)
	}

	v := tea.NewView(content)
	v.AltScreen = true
	return v
}

func (m Model) renderMain() string {
	var body string
	switch m.screen {
	case screenBisect:
		body = renderBisect(m.session, m.busy)
		if m.busy {
			body = lipgloss.JoinVertical(lipgloss.Left, body, "", m.spinner.View()+" working")
		}
	case screenResult:
		body = renderResult(m.result, m.compareURL())
	default:
		body = m.renderIdle()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		"",
		body,
		"",
		m.help.ShortHelpView(m.keys.bindingsFor(m.screen)),
	)
}

func (m Model) renderHeader() string {
	title := styles.CommandHeaderStyle.Render(styles.IconBisect + " vbisect")

	active := styles.ItemMetaStyle.Render("no active version")
	if v, ok := m.state.ActiveVersion(); ok {
		active = "active " + styles.PivotStyle.Render(v.Version)
	}

	status := fmt.Sprintf("%d versions", len(m.versions))
	if m.origin != "" {
		status += " (" + string(m.origin) + ")"
	}
	if m.loading {
		status = m.spinner.View() + " loading versions"
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		title, "  ", active, "  ", styles.StatusBarStyle.Render(status),
	)
}

func (m Model) renderIdle() string {
	if m.loading {
		return styles.ItemMetaStyle.Render("fetching release catalog...")
	}
	if len(m.versions) < 2 {
		return styles.FormErrorStyle.Render("not enough versions to bisect")
	}

	newest, oldest := m.versions[0], m.versions[len(m.versions)-1]
	return lipgloss.JoinVertical(lipgloss.Left,
		fmt.Sprintf("Versions %s .. %s", oldest.Version, newest.Version),
		"",
		styles.FormHelpStyle.Render("Press n to pick a known-good and a known-bad version."),
	)
}

func (m Model) compareURL() string {
	if m.result.Inconclusive {
		return ""
	}
	u, err := m.result.CompareURL(m.cfg.Bisect.CompareURL)
	if err != nil {
		m.log.Debug().Err(err).Msg("render compare url")
		return ""
	}
	return u
}
