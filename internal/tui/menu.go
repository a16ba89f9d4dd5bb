package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mabhi256/objexplorer/internal/explorer"
	"github.com/mabhi256/objexplorer/internal/memory"
)

// contextMenu is the per-node action popup.
type contextMenu struct {
	addr    memory.Address
	actions []explorer.Action
	cursor  int
}

func (m *Model) openMenu() {
	r, ok := m.selected()
	if !ok || !r.hasAddr || m.session == nil {
		return
	}

	m.menu = &contextMenu{
		addr:    r.addr,
		actions: m.session.Explorer.Actions(r.addr),
	}
}

func (m *Model) handleMenuKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	menu := m.menu
	if len(menu.actions) == 0 {
		m.menu = nil
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Up):
		menu.cursor = max(menu.cursor-1, 0)
	case key.Matches(msg, keys.Down):
		menu.cursor = min(menu.cursor+1, len(menu.actions)-1)
	case key.Matches(msg, keys.Toggle):
		m.menu = nil
		m.runAction(menu.actions[menu.cursor], menu.addr)
		m.rebuild()
	case key.Matches(msg, keys.Escape), key.Matches(msg, keys.Quit), key.Matches(msg, keys.Menu):
		m.menu = nil
	}

	return m, nil
}

func (m *Model) renderMenu() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("0x%s", m.menu.addr.Hex())))
	b.WriteString("\n\n")

	for i, action := range m.menu.actions {
		line := "  " + action.String()
		if i == m.menu.cursor {
			line = SelectedStyle.Render("> " + action.String())
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(MutedStyle.Render("enter: run • esc: close"))

	box := BoxStyle.Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
