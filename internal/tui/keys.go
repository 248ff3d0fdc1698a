package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Decrease key.Binding
	Increase key.Binding
	FineDown key.Binding
	FineUp   key.Binding
	Toggle   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "previous"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "next"),
	),
	Decrease: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "-5%"),
	),
	Increase: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "+5%"),
	),
	FineDown: key.NewBinding(
		key.WithKeys("shift+left", "H"),
		key.WithHelp("H", "-1%"),
	),
	FineUp: key.NewBinding(
		key.WithKeys("shift+right", "L"),
		key.WithHelp("L", "+1%"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" ", "enter"),
		key.WithHelp("space", "toggle tint"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Decrease, k.Increase, k.Toggle, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Decrease, k.Increase, k.FineDown, k.FineUp},
		{k.Toggle, k.Help, k.Quit},
	}
}
