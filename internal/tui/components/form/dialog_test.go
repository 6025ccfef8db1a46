package form

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/colonyops/vbisect/pkg/tuitest"
)

func newTestDialog(canSubmit bool) (*Dialog, *VersionSelectField, *VersionSelectField) {
	vs := versions(3)
	f1 := NewVersionSelectField("Earliest", vs, 2)
	f2 := NewVersionSelectField("Latest", vs, 0)
	d := NewDialog("Bisect", []Field{f1, f2})
	d.CanSubmit = func() bool { return canSubmit }
	return d, f1, f2
}

func TestDialog(t *testing.T) {
	t.Run("creation focuses first field", func(t *testing.T) {
		d, f1, f2 := newTestDialog(true)
		assert.True(t, f1.Focused())
		assert.False(t, f2.Focused())
		assert.False(t, d.Submitted())
		assert.False(t, d.Cancelled())
		assert.False(t, d.ButtonFocused())
	})

	t.Run("tab cycles fields then button", func(t *testing.T) {
		d, f1, f2 := newTestDialog(true)

		d.Update(tuitest.KeyTab())
		assert.False(t, f1.Focused())
		assert.True(t, f2.Focused())

		d.Update(tuitest.KeyTab())
		assert.False(t, f2.Focused())
		assert.True(t, d.ButtonFocused())
		assert.Nil(t, d.FocusedField())

		d.Update(tuitest.KeyTab())
		assert.True(t, f1.Focused())
		assert.False(t, d.Submitted(), "tab never submits")
	})

	t.Run("shift+tab wraps to button", func(t *testing.T) {
		d, f1, _ := newTestDialog(true)
		d.Update(tuitest.KeyShiftTab())
		assert.False(t, f1.Focused())
		assert.True(t, d.ButtonFocused())
	})

	t.Run("enter on button submits when allowed", func(t *testing.T) {
		d, _, _ := newTestDialog(true)
		d.Update(tuitest.KeyShiftTab())
		d.Update(tuitest.KeyEnter())
		assert.True(t, d.Submitted())

		d.Reset()
		assert.False(t, d.Submitted())
	})

	t.Run("enter on button is ignored when not allowed", func(t *testing.T) {
		d, _, _ := newTestDialog(false)
		d.Update(tuitest.KeyShiftTab())
		d.Update(tuitest.KeyEnter())
		assert.False(t, d.Submitted())
	})

	t.Run("enter on a field does not submit", func(t *testing.T) {
		d, _, _ := newTestDialog(true)
		d.Update(tuitest.KeyEnter())
		assert.False(t, d.Submitted())
	})

	t.Run("esc cancels", func(t *testing.T) {
		d, _, _ := newTestDialog(true)
		d.Update(tuitest.KeyEsc())
		assert.True(t, d.Cancelled())
	})

	t.Run("view shows fields and button", func(t *testing.T) {
		d, _, _ := newTestDialog(false)
		d.SubmitLabel = "Start"
		view := tuitest.StripANSI(d.View())
		assert.Contains(t, view, "Earliest")
		assert.Contains(t, view, "Latest")
		assert.Contains(t, view, "[ Start ]")
	})
}
