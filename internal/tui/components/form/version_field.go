package form

import (
	"io"
	"sort"

	"charm.land/bubbles/v2/list"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/colonyops/vbisect/internal/core/styles"
	"github.com/colonyops/vbisect/internal/core/version"
)

const maxVisibleVersions = 8

// VersionSelectField is a single-select picker over a newest-first version
// list. Items for which Disabled reports true render muted and cannot be
// chosen; enter on an enabled item calls OnSelect.
type VersionSelectField struct {
	list     list.Model
	label_   string
	focused  bool
	selected int // index into the version list, -1 when nothing chosen

	// Disabled is consulted on every render and selection.
	Disabled func(version.Version) bool
	// OnSelect is called with the chosen version.
	OnSelect func(version.Version)
}

// versionDelegate renders items of a VersionSelectField.
type versionDelegate struct {
	field *VersionSelectField
}

func (d versionDelegate) Height() int                             { return 1 }
func (d versionDelegate) Spacing() int                            { return 0 }
func (d versionDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d versionDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(versionItem)
	if !ok {
		return
	}

	isCursor := index == m.Index() && d.field.focused
	disabled := d.field.isDisabled(item.v)

	style := styles.ItemNormalStyle
	switch {
	case disabled:
		style = styles.ItemDisabledStyle
	case item.index == d.field.selected:
		style = styles.ItemSelectedStyle
	}

	cursor := "  "
	if isCursor {
		cursor = "> "
		if !disabled {
			style = styles.ItemCursorStyle
		}
	}

	marker := " "
	if item.index == d.field.selected {
		marker = styles.IconGood
	}

	icon := styles.IconRemote
	if item.v.Source == version.SourceLocal {
		icon = styles.IconLocal
	}

	meta := string(item.v.Channel)
	if disabled {
		meta = styles.IconDisabled
	}

	_, _ = io.WriteString(w, cursor)
	_, _ = io.WriteString(w, marker+" ")
	_, _ = io.WriteString(w, style.Render(icon+" "+item.v.Version))
	_, _ = io.WriteString(w, " "+styles.ItemMetaStyle.Render(meta))
}

// NewVersionSelectField creates a picker over versions with selected
// pre-chosen (pass -1 for none).
func NewVersionSelectField(label string, versions []version.Version, selected int) *VersionSelectField {
	f := &VersionSelectField{
		label_:   label,
		selected: selected,
	}

	items := make([]list.Item, len(versions))
	for i, v := range versions {
		items[i] = versionItem{v: v, index: i}
	}

	height := max(min(len(versions), maxVisibleVersions), 1)

	l := list.New(items, versionDelegate{field: f}, 40, height)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowFilter(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	l.SetShowPagination(len(versions) > maxVisibleVersions)
	l.Styles.TitleBar = lipgloss.NewStyle()
	l.Filter = fuzzyFilter

	l.FilterInput.Prompt = "/ "
	filterStyles := textinput.DefaultStyles(true)
	filterStyles.Focused.Prompt = lipgloss.NewStyle().Foreground(styles.CurrentPalette.Primary)
	filterStyles.Cursor.Color = styles.CurrentPalette.Primary
	l.FilterInput.SetStyles(filterStyles)

	if selected >= 0 && selected < len(versions) {
		l.Select(selected)
	}

	f.list = l
	return f
}

// fuzzyFilter matches version strings with fuzzysearch and keeps the
// newest-first order of the matches.
func fuzzyFilter(term string, targets []string) []list.Rank {
	ranks := fuzzy.RankFindNormalizedFold(term, targets)
	out := make([]list.Rank, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, list.Rank{Index: r.OriginalIndex})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

func (f *VersionSelectField) isDisabled(v version.Version) bool {
	return f.Disabled != nil && f.Disabled(v)
}

func (f *VersionSelectField) Update(msg tea.Msg) (Field, tea.Cmd) {
	if !f.focused {
		return f, nil
	}

	if key, ok := msg.(tea.KeyPressMsg); ok && key.String() == "enter" && !f.list.SettingFilter() {
		f.choose()
		return f, nil
	}

	var cmd tea.Cmd
	f.list, cmd = f.list.Update(msg)
	return f, cmd
}

// choose selects the item under the cursor unless it is disabled.
func (f *VersionSelectField) choose() {
	item, ok := f.list.SelectedItem().(versionItem)
	if !ok || f.isDisabled(item.v) {
		return
	}
	f.selected = item.index
	if f.OnSelect != nil {
		f.OnSelect(item.v)
	}
}

func (f *VersionSelectField) View() string {
	titleStyle := styles.FormTitleBlurredStyle
	if f.focused {
		titleStyle = styles.FormTitleStyle
	}

	title := f.label_
	if v, ok := f.Value(); ok {
		title += ": " + v.Version
	}

	var content string
	if f.list.SettingFilter() {
		content = lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render(title),
			f.list.FilterInput.View(),
			f.list.View(),
		)
	} else {
		content = lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), f.list.View())
	}

	borderStyle := styles.FormFieldStyle
	if f.focused {
		borderStyle = styles.FormFieldFocusedStyle
	}

	return borderStyle.Render(content)
}

func (f *VersionSelectField) Focus() tea.Cmd {
	f.focused = true
	return nil
}

func (f *VersionSelectField) Blur() {
	f.focused = false
}

func (f *VersionSelectField) Focused() bool { return f.focused }

func (f *VersionSelectField) Label() string { return f.label_ }

// Value returns the chosen version.
func (f *VersionSelectField) Value() (version.Version, bool) {
	items := f.list.Items()
	if f.selected < 0 || f.selected >= len(items) {
		return version.Version{}, false
	}
	item, ok := items[f.selected].(versionItem)
	return item.v, ok
}

// Cursor returns the version under the cursor.
func (f *VersionSelectField) Cursor() (version.Version, bool) {
	item, ok := f.list.SelectedItem().(versionItem)
	return item.v, ok
}

// IsFiltering returns whether the list is currently filtering.
func (f *VersionSelectField) IsFiltering() bool {
	return f.list.SettingFilter()
}
