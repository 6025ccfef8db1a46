package tui

import (
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/vbisect/internal/core/eventbus"
	"github.com/colonyops/vbisect/internal/core/styles"
)

type toastTickMsg time.Time

func scheduleToastTick() tea.Cmd {
	return tea.Tick(toastTickInterval, func(t time.Time) tea.Msg { return toastTickMsg(t) })
}

// ToastView draws the controller's stack in the bottom-right corner of the
// screen.
type ToastView struct {
	controller *ToastController
}

func NewToastView(controller *ToastController) *ToastView {
	return &ToastView{controller: controller}
}

// View stacks toasts vertically with the newest at the bottom.
func (v *ToastView) View() string {
	toasts := v.controller.Toasts()
	if len(toasts) == 0 {
		return ""
	}

	blocks := make([]string, len(toasts))
	for i, t := range toasts {
		blocks[i] = t.render()
	}
	return lipgloss.JoinVertical(lipgloss.Right, blocks...)
}

func (t toast) render() string {
	icon, style := styles.IconInfo, styles.ToastInfoStyle
	switch t.notification.Level {
	case eventbus.LevelWarning:
		icon, style = styles.IconWarning, styles.ToastWarningStyle
	case eventbus.LevelError:
		icon, style = styles.IconError, styles.ToastErrorStyle
	}

	text := icon + " " + t.notification.Message
	if t.count > 1 {
		text += fmt.Sprintf(" (x%d)", t.count)
	}
	return style.Width(toastWidth).Render(text)
}

// Overlay layers the stack above background. With no toasts background is
// returned unchanged.
func (v *ToastView) Overlay(background string, width, height int) string {
	stack := v.View()
	if stack == "" {
		return background
	}

	x := max(width-lipgloss.Width(stack)-1, 0)
	y := max(height-lipgloss.Height(stack), 0)

	return lipgloss.NewCompositor(
		lipgloss.NewLayer(background),
		lipgloss.NewLayer(stack).X(x).Y(y).Z(2),
	).Render()
}
