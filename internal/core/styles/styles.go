// Package styles provides shared lipgloss v2 styles for CLI and TUI components.
package styles

import (
	"image/color"

	lipgloss "charm.land/lipgloss/v2"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Style exports.
var (
	// CLI styles.
	CommandHeaderStyle lipgloss.Style
	CommandStyle       lipgloss.Style
	DividerStyle       lipgloss.Style
	GoodStyle          lipgloss.Style
	BadStyle           lipgloss.Style
	PivotStyle         lipgloss.Style

	// Dialog styles.
	ModalStyle               lipgloss.Style
	ModalTitleStyle          lipgloss.Style
	ModalHelpStyle           lipgloss.Style
	ModalButtonStyle         lipgloss.Style
	ModalButtonSelectedStyle lipgloss.Style
	ModalButtonDisabledStyle lipgloss.Style

	// Form field styles.
	FormTitleStyle        lipgloss.Style
	FormTitleBlurredStyle lipgloss.Style
	FormFieldStyle        lipgloss.Style
	FormFieldFocusedStyle lipgloss.Style
	FormErrorStyle        lipgloss.Style
	FormHelpStyle         lipgloss.Style

	// Version picker items.
	ItemNormalStyle   lipgloss.Style
	ItemCursorStyle   lipgloss.Style
	ItemSelectedStyle lipgloss.Style
	ItemDisabledStyle lipgloss.Style
	ItemMetaStyle     lipgloss.Style

	// Toasts.
	ToastInfoStyle    lipgloss.Style
	ToastWarningStyle lipgloss.Style
	ToastErrorStyle   lipgloss.Style

	StatusBarStyle lipgloss.Style
)

// SetTheme makes p the active palette and rebuilds every exported style from it.
func SetTheme(p Palette) {
	CurrentPalette = p

	fg := func(c color.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	button := func(bg, text color.Color) lipgloss.Style {
		return lipgloss.NewStyle().Padding(0, 1).Background(bg).Foreground(text)
	}
	leftBar := func(c color.Color) lipgloss.Style {
		return lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(c).
			PaddingLeft(1)
	}

	CommandHeaderStyle = fg(p.Primary).Bold(true)
	CommandStyle = fg(p.Foreground)
	DividerStyle = fg(p.Muted)
	GoodStyle = fg(p.Success).Bold(true)
	BadStyle = fg(p.Error).Bold(true)
	PivotStyle = fg(p.Warning).Bold(true)

	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Padding(1, 2)
	ModalTitleStyle = fg(p.Foreground).Bold(true)
	ModalHelpStyle = fg(p.Muted).MarginTop(1)
	ModalButtonStyle = button(p.Surface, p.Muted)
	ModalButtonSelectedStyle = button(p.Primary, p.Background).Bold(true)
	ModalButtonDisabledStyle = button(p.Surface, p.Muted).Strikethrough(true)

	FormTitleStyle = fg(p.Primary).Bold(true)
	FormTitleBlurredStyle = fg(p.Muted)
	FormFieldStyle = leftBar(p.Muted)
	FormFieldFocusedStyle = leftBar(p.Primary)
	FormErrorStyle = fg(p.Error)
	FormHelpStyle = fg(p.Muted)

	ItemNormalStyle = fg(p.Foreground)
	ItemCursorStyle = fg(p.Primary).Bold(true)
	ItemSelectedStyle = fg(p.Success)
	ItemDisabledStyle = fg(p.Muted).Faint(true)
	ItemMetaStyle = fg(p.Muted).Italic(true)

	toast := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	ToastInfoStyle = toast.BorderForeground(p.Primary).Foreground(p.Foreground)
	ToastWarningStyle = toast.BorderForeground(p.Warning).Foreground(p.Warning)
	ToastErrorStyle = toast.BorderForeground(p.Error).Foreground(p.Error)

	StatusBarStyle = button(p.Surface, p.Muted)
}

// ApplyTheme switches to the named theme with optional per-role overrides.
// On error the current theme is kept.
func ApplyTheme(name string, overrides map[string]string) error {
	p, err := ResolvePalette(name, overrides)
	if err != nil {
		return err
	}
	SetTheme(p)
	return nil
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	p, _ := GetPalette(DefaultTheme)
	SetTheme(p)
}
