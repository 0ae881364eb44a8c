package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit    key.Binding
	Help    key.Binding
	Rate    key.Binding
	Direct  key.Binding
	Compose key.Binding
	Edit    key.Binding
	Copy    key.Binding
	Publish key.Binding
	Reset   key.Binding
	Done    key.Binding
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Quit, k.Help, k.Reset},
		{k.Rate, k.Direct, k.Compose, k.Edit, k.Copy, k.Publish},
	}
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Rate: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5"),
			key.WithHelp("1-5", "rate"),
		),
		Direct: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "post directly"),
		),
		Compose: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "compose with AI"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit draft"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy"),
		),
		Publish: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "publish"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r", "esc"),
			key.WithHelp("r/esc", "start over"),
		),
		Done: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "done editing"),
		),
	}
}
