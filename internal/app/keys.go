package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keyboard bindings. Screen-level bindings live
// with each view.
type KeyMap struct {
	Dashboard key.Binding
	Events    key.Binding
	Debug     key.Binding
	Logout    key.Binding
	Up        key.Binding
	Down      key.Binding
	Escape    key.Binding
	Quit      key.Binding
	ForceQuit key.Binding

	// ErrorsOnly filters the debug overlay.
	ErrorsOnly key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Dashboard: key.NewBinding(
			key.WithKeys("1", "d"),
			key.WithHelp("1/d", "dashboard"),
		),
		Events: key.NewBinding(
			key.WithKeys("2", "v"),
			key.WithHelp("2/v", "events"),
		),
		Debug: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "debug log"),
		),
		Logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "log out"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "scroll down"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close overlay"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		ErrorsOnly: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "errors only"),
		),
	}
}
