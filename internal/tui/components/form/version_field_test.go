package form

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/vbisect/internal/core/version"
	"github.com/colonyops/vbisect/pkg/tuitest"
)

func versions(n int) []version.Version {
	out := make([]version.Version, n)
	for i := range n {
		out[i] = version.MustParse(fmt.Sprintf("1.0.%d", n-1-i), version.SourceRemote)
	}
	return out
}

func TestVersionSelectField(t *testing.T) {
	vs := versions(4) // 1.0.3 1.0.2 1.0.1 1.0.0

	t.Run("creation with selection", func(t *testing.T) {
		f := NewVersionSelectField("Earliest", vs, 3)
		assert.Equal(t, "Earliest", f.Label())
		assert.False(t, f.Focused())

		v, ok := f.Value()
		require.True(t, ok)
		assert.Equal(t, "1.0.0", v.Version)

		cur, ok := f.Cursor()
		require.True(t, ok)
		assert.Equal(t, "1.0.0", cur.Version)
	})

	t.Run("no selection", func(t *testing.T) {
		f := NewVersionSelectField("Latest", vs, -1)
		_, ok := f.Value()
		assert.False(t, ok)
	})

	t.Run("update ignored when not focused", func(t *testing.T) {
		f := NewVersionSelectField("Pick", vs, 0)
		f.Update(tuitest.KeyPress('j'))
		cur, _ := f.Cursor()
		assert.Equal(t, "1.0.3", cur.Version)
	})

	t.Run("enter chooses the cursor item", func(t *testing.T) {
		var got []string
		f := NewVersionSelectField("Pick", vs, 0)
		f.OnSelect = func(v version.Version) { got = append(got, v.Version) }
		f.Focus()

		f.Update(tuitest.KeyPress('j'))
		f.Update(tuitest.KeyEnter())

		assert.Equal(t, []string{"1.0.2"}, got)
		v, _ := f.Value()
		assert.Equal(t, "1.0.2", v.Version)
	})

	t.Run("disabled item cannot be chosen", func(t *testing.T) {
		called := false
		f := NewVersionSelectField("Pick", vs, 3)
		f.Disabled = func(v version.Version) bool { return v.Version == "1.0.3" }
		f.OnSelect = func(version.Version) { called = true }
		f.Focus()

		f.Update(tuitest.KeyHome())
		cur, _ := f.Cursor()
		require.Equal(t, "1.0.3", cur.Version)

		f.Update(tuitest.KeyEnter())
		assert.False(t, called)
		v, _ := f.Value()
		assert.Equal(t, "1.0.0", v.Version, "selection is unchanged")
	})

	t.Run("view renders label and versions", func(t *testing.T) {
		f := NewVersionSelectField("Earliest", vs, 3)
		f.Disabled = func(v version.Version) bool { return v.Version == "1.0.3" }
		view := tuitest.StripANSI(f.View())
		assert.Contains(t, view, "Earliest: 1.0.0")
		assert.Contains(t, view, "1.0.2")
		assert.Contains(t, view, "stable")
	})

	t.Run("view renders empty list", func(t *testing.T) {
		f := NewVersionSelectField("Empty", nil, -1)
		assert.Contains(t, f.View(), "Empty")
	})

	t.Run("slash starts filtering and esc leaves it", func(t *testing.T) {
		f := NewVersionSelectField("Pick", vs, 0)
		assert.False(t, f.IsFiltering())
		f.Focus()

		f.Update(tuitest.KeyPress('/'))
		require.True(t, f.IsFiltering())
		for _, msg := range tuitest.Type("1.0.1") {
			f.Update(msg)
		}
		assert.Contains(t, tuitest.StripANSI(f.View()), "/ 1.0.1")

		f.Update(tuitest.KeyEsc())
		assert.False(t, f.IsFiltering())
	})
}

func TestFuzzyFilter(t *testing.T) {
	targets := []string{"30.0.1", "29.1.0", "30.0.0-beta.2", "28.3.3"}

	ranks := fuzzyFilter("300", targets)
	idx := make([]int, len(ranks))
	for i, r := range ranks {
		idx[i] = r.Index
	}
	assert.Equal(t, []int{0, 2}, idx)

	assert.Empty(t, fuzzyFilter("nightly", targets))
}
