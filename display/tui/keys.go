package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the key bindings for the dashboard.
type keyMap struct {
	Quit    key.Binding
	Refresh key.Binding
}

// keys holds the default key bindings.
var keys = keyMap{
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Refresh: key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh")),
}
