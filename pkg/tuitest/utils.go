// Package tuitest builds bubbletea messages and normalizes rendered views
// for model tests.
package tuitest

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
)

// StripANSI removes ANSI escape codes and trailing whitespace so assertions
// match on text rather than styling.
func StripANSI(s string) string {
	s = ansi.Strip(s)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// KeyPress creates a key press message for a single printable rune.
func KeyPress(key rune) tea.Msg {
	return tea.KeyPressMsg(tea.Key{Code: key, Text: string(key)})
}

// Type returns one key press per rune of s, for typing into filters.
func Type(s string) []tea.Msg {
	msgs := make([]tea.Msg, 0, len(s))
	for _, r := range s {
		msgs = append(msgs, KeyPress(r))
	}
	return msgs
}

// KeyDown creates a down arrow key press message.
func KeyDown() tea.Msg { return tea.KeyPressMsg(tea.Key{Code: tea.KeyDown}) }

// KeyUp creates an up arrow key press message.
func KeyUp() tea.Msg { return tea.KeyPressMsg(tea.Key{Code: tea.KeyUp}) }

// KeyHome creates a home key press message.
func KeyHome() tea.Msg { return tea.KeyPressMsg(tea.Key{Code: tea.KeyHome}) }

// KeyEnter creates an enter key press message.
func KeyEnter() tea.Msg { return tea.KeyPressMsg(tea.Key{Code: tea.KeyEnter}) }

// KeyEsc creates an escape key press message.
func KeyEsc() tea.Msg { return tea.KeyPressMsg(tea.Key{Code: tea.KeyEscape}) }

// KeyTab creates a tab key press message.
func KeyTab() tea.Msg { return tea.KeyPressMsg(tea.Key{Code: tea.KeyTab}) }

// KeyShiftTab creates a shift+tab key press message.
func KeyShiftTab() tea.Msg { return tea.KeyPressMsg(tea.Key{Code: tea.KeyTab, Mod: tea.ModShift}) }

// WindowSize creates a window size message.
func WindowSize(w, h int) tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: w, Height: h}
}
