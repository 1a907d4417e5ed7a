package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings
type keyMap struct {
	PrevPage  key.Binding
	NextPage  key.Binding
	PrevItem  key.Binding
	NextItem  key.Binding
	Up        key.Binding
	Down      key.Binding
	Tab       key.Binding
	ShiftTab  key.Binding
	Enter     key.Binding
	Escape    key.Binding
	Search    key.Binding
	More      key.Binding
	Less      key.Binding
	NextGenre key.Binding
	PrevGenre key.Binding
	Account   key.Binding
	Reload    key.Binding
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

var keys = keyMap{
	PrevPage:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "previous page")),
	NextPage:  key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next page")),
	PrevItem:  key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "previous card")),
	NextItem:  key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "next card")),
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Tab:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next row")),
	ShiftTab:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous row")),
	Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details/search")),
	Escape:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	More:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "more results")),
	Less:      key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "fewer results")),
	NextGenre: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "next genre")),
	PrevGenre: key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "previous genre")),
	Account:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "login/logout")),
	Reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload row")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
}

// helpBindings is the order keys appear on the help screen
func (k keyMap) helpBindings() []key.Binding {
	return []key.Binding{
		k.PrevPage, k.NextPage, k.PrevItem, k.NextItem, k.Up, k.Down, k.Tab,
		k.Enter, k.Escape, k.Search, k.More, k.Less, k.NextGenre, k.PrevGenre,
		k.Account, k.Reload, k.Help, k.Quit,
	}
}
