// Package form provides focusable form fields and a dialog container for
// the bisect dialog.
package form

import tea "charm.land/bubbletea/v2"

// Field is one focusable row of a Dialog. Update returns the field so value
// types can be used; the dialog stores whatever comes back.
type Field interface {
	Update(msg tea.Msg) (Field, tea.Cmd)
	View() string
	Focus() tea.Cmd
	Blur()
	Focused() bool
	Label() string
}

// filterer is implemented by fields with an inline filter. While it
// reports true the dialog leaves focus and cancel keys to the field.
type filterer interface {
	IsFiltering() bool
}
