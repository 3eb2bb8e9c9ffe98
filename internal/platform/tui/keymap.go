package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/liminal/internal/core"
)

// KeyMap defines the key bindings used while playing a level.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Move       key.Binding
	Witness    key.Binding
	NextPlayer key.Binding
	Join       key.Binding
	Back       key.Binding
	Screenshot key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default play bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "prev path"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "next path"),
		),
		Move: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "travel"),
		),
		Witness: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "witness"),
		),
		NextPlayer: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next player"),
		),
		Join: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add player"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "leave"),
		),
		Screenshot: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "screenshot"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Move, k.Witness, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Move, k.Witness},
		{k.NextPlayer, k.Join, k.Back, k.Screenshot, k.Quit},
	}
}

// Action translates a key message to a player action.
func (k KeyMap) Action(msg tea.KeyMsg) core.Action {
	switch {
	case key.Matches(msg, k.Quit):
		return core.ActionQuit
	case key.Matches(msg, k.Up):
		return core.ActionUp
	case key.Matches(msg, k.Down):
		return core.ActionDown
	case key.Matches(msg, k.Move):
		return core.ActionMove
	case key.Matches(msg, k.Witness):
		return core.ActionWitness
	case key.Matches(msg, k.NextPlayer):
		return core.ActionNextPlayer
	case key.Matches(msg, k.Join):
		return core.ActionJoin
	case key.Matches(msg, k.Back):
		return core.ActionBack
	}
	return core.ActionNone
}

// LobbyKeyMap defines the key bindings of the SSH lobby screens.
type LobbyKeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Fewer key.Binding
	More  key.Binding
	Host  key.Binding
	Code  key.Binding
	Start key.Binding
	Back  key.Binding
	Quit  key.Binding
}

// DefaultLobbyKeyMap returns the default lobby bindings.
func DefaultLobbyKeyMap() LobbyKeyMap {
	return LobbyKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "down"),
		),
		Fewer: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("left", "fewer players"),
		),
		More: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("right", "more players"),
		),
		Host: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "host"),
		),
		Code: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "join by code"),
		),
		Start: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k LobbyKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Fewer, k.More, k.Host, k.Code, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k LobbyKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Fewer, k.More},
		{k.Host, k.Code, k.Start, k.Back, k.Quit},
	}
}
