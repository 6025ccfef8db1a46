package form

import (
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/vbisect/internal/core/styles"
)

// Dialog is a form container that manages focus cycling across a set of
// fields followed by a submit button. The button only submits while
// CanSubmit reports true.
type Dialog struct {
	fields       []Field
	focusedField int // len(fields) when the submit button is focused
	submitted    bool
	cancelled    bool

	Title       string
	SubmitLabel string
	CanSubmit   func() bool
}

// NewDialog creates a form dialog with the given fields. The first field is
// focused automatically.
func NewDialog(title string, fields []Field) *Dialog {
	d := &Dialog{
		fields:      fields,
		Title:       title,
		SubmitLabel: "Submit",
	}
	if len(fields) > 0 {
		fields[0].Focus()
	}
	return d
}

// Update handles key input for the dialog, managing focus cycling and submit/cancel.
func (d *Dialog) Update(msg tea.Msg) (*Dialog, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return d.updateFocusedField(msg)
	}

	switch keyMsg.String() {
	case "tab":
		if d.isFocusedFieldFiltering() {
			return d.updateFocusedField(msg)
		}
		return d.advanceFocus()
	case "shift+tab":
		if d.isFocusedFieldFiltering() {
			return d.updateFocusedField(msg)
		}
		return d.retreatFocus()
	case "enter":
		if d.ButtonFocused() {
			if d.canSubmit() {
				d.submitted = true
			}
			return d, nil
		}
		return d.updateFocusedField(msg)
	case "esc":
		if d.isFocusedFieldFiltering() {
			// Let the field handle esc to exit filter mode
			return d.updateFocusedField(msg)
		}
		d.cancelled = true
		return d, nil
	}

	return d.updateFocusedField(msg)
}

// View renders all fields vertically followed by the submit button.
func (d *Dialog) View() string {
	var parts []string
	for i, field := range d.fields {
		if i > 0 {
			parts = append(parts, "")
		}
		parts = append(parts, field.View())
	}

	parts = append(parts, "", d.buttonView())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (d *Dialog) buttonView() string {
	label := "[ " + d.SubmitLabel + " ]"
	switch {
	case !d.canSubmit():
		return styles.ModalButtonDisabledStyle.Render(label)
	case d.ButtonFocused():
		return styles.ModalButtonSelectedStyle.Render(label)
	default:
		return styles.ModalButtonStyle.Render(label)
	}
}

// Submitted returns whether the form was submitted.
func (d *Dialog) Submitted() bool { return d.submitted }

// Cancelled returns whether the form was cancelled.
func (d *Dialog) Cancelled() bool { return d.cancelled }

// Reset clears the submitted and cancelled flags.
func (d *Dialog) Reset() {
	d.submitted = false
	d.cancelled = false
}

// ButtonFocused reports whether the submit button has focus.
func (d *Dialog) ButtonFocused() bool { return d.focusedField == len(d.fields) }

// FocusedField returns the focused field, or nil when the button is focused.
func (d *Dialog) FocusedField() Field {
	if d.ButtonFocused() {
		return nil
	}
	return d.fields[d.focusedField]
}

// IsFiltering reports whether the focused field is in filter mode.
func (d *Dialog) IsFiltering() bool { return d.isFocusedFieldFiltering() }

func (d *Dialog) canSubmit() bool {
	return d.CanSubmit == nil || d.CanSubmit()
}

func (d *Dialog) advanceFocus() (*Dialog, tea.Cmd) {
	next := (d.focusedField + 1) % (len(d.fields) + 1)
	return d.focus(next)
}

func (d *Dialog) retreatFocus() (*Dialog, tea.Cmd) {
	prev := d.focusedField - 1
	if prev < 0 {
		prev = len(d.fields)
	}
	return d.focus(prev)
}

func (d *Dialog) focus(i int) (*Dialog, tea.Cmd) {
	if f := d.FocusedField(); f != nil {
		f.Blur()
	}
	d.focusedField = i
	if f := d.FocusedField(); f != nil {
		return d, f.Focus()
	}
	return d, nil
}

func (d *Dialog) updateFocusedField(msg tea.Msg) (*Dialog, tea.Cmd) {
	f := d.FocusedField()
	if f == nil {
		return d, nil
	}

	var cmd tea.Cmd
	d.fields[d.focusedField], cmd = f.Update(msg)
	return d, cmd
}

func (d *Dialog) isFocusedFieldFiltering() bool {
	if f, ok := d.FocusedField().(filterer); ok {
		return f.IsFiltering()
	}
	return false
}
