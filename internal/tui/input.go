package tui

import (
	"errors"
	"strconv"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mabhi256/objexplorer/internal/memory"
)

// MaxAddressDigits is the longest accepted address: 16 hex digits, 64 bits.
const MaxAddressDigits = 16

func newAddressInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = "Object Address: "
	ti.Placeholder = "hex, e.g. 1a2b3c4d"
	ti.CharLimit = MaxAddressDigits
	ti.Validate = validateHex
	return ti
}

var errNotHex = errors.New("address must be hexadecimal")

func validateHex(s string) error {
	for _, r := range s {
		if !isHexRune(r) {
			return errNotHex
		}
	}
	return nil
}

func isHexRune(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// FilterHexRunes drops every rune that is not a hexadecimal digit.
func FilterHexRunes(runes []rune) []rune {
	out := runes[:0:0]
	for _, r := range runes {
		if isHexRune(r) {
			out = append(out, r)
		}
	}
	return out
}

// filterAddressKey removes non-hex characters from typed or pasted input before
// it reaches the text field. It reports false when nothing is left to insert.
func filterAddressKey(msg tea.KeyMsg) (tea.KeyMsg, bool) {
	if msg.Type != tea.KeyRunes {
		return msg, true
	}
	msg.Runes = FilterHexRunes(msg.Runes)
	return msg, len(msg.Runes) > 0
}

// ParseAddressInput parses the contents of the address field. An empty field
// means no traversal.
func ParseAddressInput(s string) (memory.Address, bool) {
	if s == "" || len(s) > MaxAddressDigits {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, false
	}
	return memory.Address(v), true
}

// updateAddressInput forwards msg to the address field and strips anything that
// is not a hex digit from the result. Clipboard pastes arrive as their own
// message and skip filterAddressKey.
func (m *Model) updateAddressInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	if v := m.input.Value(); m.input.Err != nil {
		m.input.SetValue(string(FilterHexRunes([]rune(v))))
	}
	return cmd
}
