package tui

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/vbisect/internal/core/rangesel"
	"github.com/colonyops/vbisect/internal/core/styles"
	"github.com/colonyops/vbisect/internal/core/version"
	"github.com/colonyops/vbisect/internal/tui/components"
	"github.com/colonyops/vbisect/internal/tui/components/form"
)

const dialogHelp = `## Bisect versions

Pick the **earliest** version that still works and the **latest**
version that is broken. Each picker only offers versions that keep the
earliest strictly older than the latest.

- **tab** / **shift+tab** move between pickers and the button
- **enter** choose the highlighted version
- **/** filter versions
- **?** toggle this help
- **esc** close the dialog
`

// BisectDialog is the version range picker. It owns a fresh Range Selector
// so reopening always starts from the defaults.
type BisectDialog struct {
	sel      *rangesel.Selector
	form     *form.Dialog
	earliest *form.VersionSelectField
	latest   *form.VersionSelectField

	snapshot    rangesel.Snapshot
	unsubscribe func()
	width       int
	help        string
}

// NewBisectDialog creates a dialog over versions (newest first).
func NewBisectDialog(versions []version.Version, startOffset, width int) *BisectDialog {
	sel := rangesel.New(versions, rangesel.WithStartOffset(startOffset))

	earliest := form.NewVersionSelectField("Earliest (good)", versions, sel.StartIndex())
	earliest.Disabled = sel.IsEarliestItemDisabled
	earliest.OnSelect = sel.SelectEarliest

	latest := form.NewVersionSelectField("Latest (bad)", versions, sel.EndIndex())
	latest.Disabled = sel.IsLatestItemDisabled
	latest.OnSelect = sel.SelectLatest

	f := form.NewDialog("Bisect versions", []form.Field{earliest, latest})
	f.SubmitLabel = "Start bisect"
	f.CanSubmit = sel.CanSubmit

	d := &BisectDialog{
		sel:      sel,
		form:     f,
		earliest: earliest,
		latest:   latest,
		snapshot: sel.Snapshot(),
		width:    width,
	}
	d.unsubscribe = sel.Subscribe(func(s rangesel.Snapshot) {
		d.snapshot = s
	})
	return d
}

// Selector returns the dialog's Range Selector.
func (d *BisectDialog) Selector() *rangesel.Selector { return d.sel }

// Submitted reports whether the submit button was pressed.
func (d *BisectDialog) Submitted() bool { return d.form.Submitted() }

// Cancelled reports whether the dialog was dismissed.
func (d *BisectDialog) Cancelled() bool { return d.form.Cancelled() }

// ResetSubmit clears the submitted flag so a failed submit can be retried.
func (d *BisectDialog) ResetSubmit() { d.form.Reset() }

// Close detaches the dialog from its selector.
func (d *BisectDialog) Close() {
	if d.unsubscribe != nil {
		d.unsubscribe()
		d.unsubscribe = nil
	}
}

// SetWidth updates the render width.
func (d *BisectDialog) SetWidth(w int) {
	if w != d.width {
		d.width = w
		d.help = ""
	}
}

// Update routes input to the form; `?` toggles help unless a picker is
// filtering.
func (d *BisectDialog) Update(msg tea.Msg) (*BisectDialog, tea.Cmd) {
	if key, ok := msg.(tea.KeyPressMsg); ok && key.String() == "?" && !d.form.IsFiltering() {
		d.sel.ToggleHelp()
		return d, nil
	}

	var cmd tea.Cmd
	d.form, cmd = d.form.Update(msg)
	return d, cmd
}

func (d *BisectDialog) View() string {
	parts := []string{
		styles.ModalTitleStyle.Render(styles.IconBisect + " " + d.form.Title),
		"",
		d.form.View(),
		"",
		d.summary(),
	}

	if d.snapshot.ShowHelp {
		if d.help == "" {
			d.help = components.RenderMarkdown(dialogHelp, d.contentWidth())
		}
		parts = append(parts, "", d.help)
	}

	parts = append(parts, styles.ModalHelpStyle.Render("tab: next  enter: choose  /: filter  ?: help  esc: close"))
	return styles.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (d *BisectDialog) summary() string {
	if !d.snapshot.CanSubmit {
		return styles.FormErrorStyle.Render("earliest must be older than latest")
	}
	size := d.snapshot.StartIndex - d.snapshot.EndIndex + 1
	good, _ := d.sel.Earliest()
	bad, _ := d.sel.Latest()
	return fmt.Sprintf("%d versions  %s %s  %s %s",
		size,
		styles.IconGood, styles.GoodStyle.Render(good.Version),
		styles.IconBad, styles.BadStyle.Render(bad.Version),
	)
}

func (d *BisectDialog) contentWidth() int {
	if d.width <= 0 {
		return 60
	}
	return min(d.width-8, 80)
}
