package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	ScrollLeft  key.Binding
	ScrollRight key.Binding
	ScrollUp    key.Binding
	ScrollDown  key.Binding
	PageLeft    key.Binding
	PageRight   key.Binding
	Home        key.Binding

	AddEvent    key.Binding
	DeleteEvent key.Binding
	ShiftEvent  key.Binding
	FilterDay   key.Binding
	BatchShift  key.Binding
	Reload      key.Binding

	Help key.Binding
	Quit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		ScrollLeft:  key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "scroll left")),
		ScrollRight: key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "scroll right")),
		ScrollUp:    key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "scroll up")),
		ScrollDown:  key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "scroll down")),
		PageLeft:    key.NewBinding(key.WithKeys("H", "pgup"), key.WithHelp("H", "page left")),
		PageRight:   key.NewBinding(key.WithKeys("L", "pgdown"), key.WithHelp("L", "page right")),
		Home:        key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "jump to origin")),

		AddEvent:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add event")),
		DeleteEvent: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete last added")),
		ShiftEvent:  key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "shift last added +1h")),
		FilterDay:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "toggle day filter")),
		BatchShift:  key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "batch shift row")),
		Reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload dataset")),

		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}
