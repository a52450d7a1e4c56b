package shell

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/framehost/input"
)

type keyMap struct {
	Quit     key.Binding
	Help     key.Binding
	Pause    key.Binding
	Snapshot key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "help"),
		),
		Pause: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("f2", "pause"),
		),
		Snapshot: key.NewBinding(
			key.WithKeys("f3"),
			key.WithHelp("f3", "snapshot"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Quit, k.Help, k.Pause, k.Snapshot}}
}

var specialKeys = map[tea.KeyType]input.Code{
	tea.KeyUp:        input.KeyUp,
	tea.KeyDown:      input.KeyDown,
	tea.KeyLeft:      input.KeyLeft,
	tea.KeyRight:     input.KeyRight,
	tea.KeyHome:      input.KeyHome,
	tea.KeyEnd:       input.KeyEnd,
	tea.KeyPgUp:      input.KeyPageUp,
	tea.KeyPgDown:    input.KeyPageDown,
	tea.KeyDelete:    input.KeyDelete,
	tea.KeyEnter:     input.KeyEnter,
	tea.KeyTab:       input.KeyTab,
	tea.KeyBackspace: input.KeyBackspace,
	tea.KeyEsc:       input.KeyEsc,
	tea.KeySpace:     input.KeySpace,
}

// keyCodes translates a terminal key event into the codes it holds down.
// Shifted characters also hold left shift.
func keyCodes(msg tea.KeyMsg) []input.Code {
	if code, ok := specialKeys[msg.Type]; ok {
		return []input.Code{code}
	}
	if msg.Type != tea.KeyRunes {
		return nil
	}

	var codes []input.Code
	for _, r := range msg.Runes {
		code, shift, ok := input.RuneCode(r)
		if !ok {
			continue
		}
		if shift {
			codes = append(codes, input.KeyLeftShift)
		}
		codes = append(codes, code)
	}
	return codes
}
