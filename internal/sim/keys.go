package sim

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the simulator's keyboard bindings. Each touch key presses
// the center of a screen region.
type keyMap struct {
	Touch key.Binding
	Logs  key.Binding
	Clear key.Binding
	Quit  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Touch: key.NewBinding(
			key.WithKeys(" ", "enter", "t"),
			key.WithHelp("space", "touch timer"),
		),
		Logs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "LOGS"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "CLEAR"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Touch, k.Logs, k.Clear, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
