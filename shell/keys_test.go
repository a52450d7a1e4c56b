package shell

import (
	"slices"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/framehost/input"
)

func TestKeyCodes(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want []input.Code
	}{
		{"arrow", tea.KeyMsg{Type: tea.KeyUp}, []input.Code{input.KeyUp}},
		{"space", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, []input.Code{input.KeySpace}},
		{"escape", tea.KeyMsg{Type: tea.KeyEsc}, []input.Code{input.KeyEsc}},
		{"letter", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}}, []input.Code{input.KeyA}},
		{"shifted letter", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'A'}}, []input.Code{input.KeyLeftShift, input.KeyA}},
		{"unmapped rune", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'é'}}, nil},
		{"function key", tea.KeyMsg{Type: tea.KeyF5}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := keyCodes(tt.msg); !slices.Equal(got, tt.want) {
				t.Errorf("keyCodes = %v, want %v", got, tt.want)
			}
		})
	}
}
