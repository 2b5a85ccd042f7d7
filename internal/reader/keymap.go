// Package reader provides the Bubble Tea RSVP reading interface.
package reader

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the reader key bindings.
type keyMap struct {
	Toggle   key.Binding
	Back     key.Binding
	Forward  key.Binding
	Faster   key.Binding
	Slower   key.Binding
	Bookmark key.Binding
	Jump     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		Back:     key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "back one word")),
		Forward:  key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "forward one word")),
		Faster:   key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "faster")),
		Slower:   key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "slower")),
		Bookmark: key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "set bookmark")),
		Jump:     key.NewBinding(key.WithKeys("j"), key.WithHelp("j", "jump to bookmark")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Back, k.Forward, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Back, k.Forward},
		{k.Faster, k.Slower},
		{k.Bookmark, k.Jump},
		{k.Help, k.Quit},
	}
}
