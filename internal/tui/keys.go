package tui

import "charm.land/bubbles/v2/key"

// keyMap holds the root model bindings.
type keyMap struct {
	NewBisect key.Binding
	Good      key.Binding
	Bad       key.Binding
	Cancel    key.Binding
	Dismiss   key.Binding
	Toast     key.Binding
	Refresh   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NewBisect: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new bisect")),
		Good:      key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "good")),
		Bad:       key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "bad")),
		Cancel:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "cancel bisect")),
		Dismiss:   key.NewBinding(key.WithKeys("enter", "esc"), key.WithHelp("enter", "dismiss")),
		Toast:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss toast")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh catalog")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// bindingsFor returns the bindings that apply to the given screen.
func (k keyMap) bindingsFor(s screen) []key.Binding {
	switch s {
	case screenBisect:
		return []key.Binding{k.Good, k.Bad, k.Cancel, k.Quit}
	case screenResult:
		return []key.Binding{k.Dismiss, k.NewBisect, k.Quit}
	default:
		return []key.Binding{k.NewBisect, k.Refresh, k.Quit}
	}
}
