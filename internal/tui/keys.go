package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Enter    key.Binding
	Back     key.Binding
	Help     key.Binding
	Quit     key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	JumpPage key.Binding
	Edit     key.Binding
	Copy     key.Binding
	Refresh  key.Binding

	NextField key.Binding
	PrevField key.Binding
	Cycle     key.Binding
	NextStep  key.Binding
	PrevStep  key.Binding
	Check     key.Binding
	Submit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next page"),
		),
		JumpPage: key.NewBinding(
			key.WithKeys("0", "1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("0-9", "go to page"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy id"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "prev field"),
		),
		Cycle: key.NewBinding(
			key.WithKeys("left", "right"),
			key.WithHelp("←/→", "change option"),
		),
		NextStep: key.NewBinding(
			key.WithKeys("enter", "ctrl+n"),
			key.WithHelp("enter", "next"),
		),
		PrevStep: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("ctrl+b", "previous step"),
		),
		Check: key.NewBinding(
			key.WithKeys("ctrl+k"),
			key.WithHelp("ctrl+k", "check context"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "submit"),
		),
	}
}

// screenKeys narrows the bindings shown in help to the ones that apply.
type screenKeys struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k screenKeys) ShortHelp() []key.Binding  { return k.short }
func (k screenKeys) FullHelp() [][]key.Binding { return k.full }

var _ help.KeyMap = screenKeys{}

func (k keyMap) menu() screenKeys {
	return screenKeys{
		short: []key.Binding{k.Up, k.Down, k.Enter, k.Back, k.Help, k.Quit},
		full:  [][]key.Binding{{k.Up, k.Down, k.Enter}, {k.Back, k.Help, k.Quit}},
	}
}

func (k keyMap) listing(editable bool) screenKeys {
	nav := []key.Binding{k.Up, k.Down, k.PrevPage, k.NextPage, k.JumpPage}
	actions := []key.Binding{k.Refresh, k.Copy}
	if editable {
		actions = []key.Binding{k.Edit, k.Refresh, k.Copy}
	}
	return screenKeys{
		short: append(append([]key.Binding{}, nav[2:]...), append(actions, k.Back, k.Help)...),
		full:  [][]key.Binding{nav, actions, {k.Back, k.Help, k.Quit}},
	}
}

func (k keyMap) wizard(review bool) screenKeys {
	if review {
		submit := k.Submit
		submit.SetHelp("enter/ctrl+s", "submit")
		return screenKeys{
			short: []key.Binding{submit, k.PrevStep, k.Back, k.Help},
			full:  [][]key.Binding{{submit, k.PrevStep}, {k.Back, k.Help}},
		}
	}
	return screenKeys{
		short: []key.Binding{k.NextField, k.Cycle, k.NextStep, k.PrevStep, k.Back, k.Help},
		full: [][]key.Binding{
			{k.NextField, k.PrevField, k.Cycle},
			{k.NextStep, k.PrevStep, k.Check},
			{k.Back, k.Help},
		},
	}
}
