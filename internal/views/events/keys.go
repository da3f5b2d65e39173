package events

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the event browser bindings.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	NextPage   key.Binding
	PrevPage   key.Binding
	Toggle     key.Binding
	Export     key.Binding
	Copy       key.Binding
	Reload     key.Binding
	TypeFilter key.Binding
	HostFilter key.Binding
	Severity   key.Binding
	Clear      key.Binding
	NextField  key.Binding
	Submit     key.Binding
	Escape     key.Binding
}

// DefaultKeyMap returns the default event browser bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "prev event"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "next event"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("n", "right"),
			key.WithHelp("n/→", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("p", "left"),
			key.WithHelp("p/←", "prev page"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export json"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy id"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		TypeFilter: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "type filter"),
		),
		HostFilter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "host filter"),
		),
		Severity: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "cycle severity"),
		),
		Clear: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear filters"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next filter"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back to list"),
		),
	}
}

// ShortHelp lists the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.NextPage, k.Toggle, k.Export, k.Copy, k.TypeFilter, k.Severity, k.HostFilter, k.Clear, k.Reload}
}
