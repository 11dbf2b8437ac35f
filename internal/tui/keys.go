package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap binds keys to gallery intents
type KeyMap struct {
	Up           key.Binding
	Down         key.Binding
	Open         key.Binding
	Filter       key.Binding
	NextFilter   key.Binding
	PrevFilter   key.Binding
	DropTerm     key.Binding
	Import       key.Binding
	Source       key.Binding
	Output       key.Binding
	Load         key.Binding
	NextView     key.Binding
	Larger       key.Binding
	Smaller      key.Binding
	Magic        key.Binding
	WordList     key.Binding
	Settings     key.Binding
	TopBar       key.Binding
	Menu         key.Binding
	Maximize     key.Binding
	Minimize     key.Binding
	Command      key.Binding
	Help         key.Binding
	Quit         key.Binding
	Submit       key.Binding
	Cancel       key.Binding
	Backspace    key.Binding
	WordShortcut key.Binding
}

// DefaultKeyMap returns the stock bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:           key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:         key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		Open:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Filter:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		NextFilter:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next filter")),
		PrevFilter:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous filter")),
		DropTerm:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "drop last term")),
		Import:       key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "import")),
		Source:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "source folder")),
		Output:       key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "output folder")),
		Load:         key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "load hub")),
		NextView:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "next layout")),
		Larger:       key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "larger")),
		Smaller:      key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "smaller")),
		Magic:        key.NewBinding(key.WithKeys("M"), key.WithHelp("M", "magic search")),
		WordList:     key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "word list")),
		Settings:     key.NewBinding(key.WithKeys(","), key.WithHelp(",", "settings")),
		TopBar:       key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "top bar")),
		Menu:         key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "menu")),
		Maximize:     key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "maximize")),
		Minimize:     key.NewBinding(key.WithKeys("_"), key.WithHelp("_", "minimize")),
		Command:      key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command")),
		Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Submit:       key.NewBinding(key.WithKeys("enter")),
		Cancel:       key.NewBinding(key.WithKeys("esc")),
		Backspace:    key.NewBinding(key.WithKeys("backspace")),
		WordShortcut: key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9")),
	}
}
