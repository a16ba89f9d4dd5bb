package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func separator(width int) string {
	return strings.Repeat("─", max(width, 0))
}

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.processMode {
		return m.renderProcessSelectionView()
	}

	if m.menu != nil {
		return m.renderMenu()
	}

	return m.renderExplorerView()
}

func (m *Model) renderExplorerView() string {
	header := m.renderHeader()
	status := m.renderStatus()
	helpView := m.help.View(keys)

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(status) - lipgloss.Height(helpView)
	contentHeight = max(contentHeight, 1)

	content := lipgloss.NewStyle().Height(contentHeight).Render(m.renderTree(contentHeight))

	return lipgloss.JoinVertical(lipgloss.Left, header, content, status, helpView)
}

func (m *Model) renderHeader() string {
	title := HeaderStyle.Width(m.width).Render("🔍 Object Explorer - " + m.session.Title)

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.input.View(),
		MutedStyle.Render(separator(m.width)),
	)
}

func (m *Model) renderStatus() string {
	text := fmt.Sprintf("%d rows", len(m.rows))
	if m.status != "" {
		text = m.status
	}

	style := StatusBarStyle.Width(m.width)
	if m.statusIsErr {
		style = style.Foreground(CriticalColor)
	}
	return style.Render(text)
}

// renderTree shows the slice of rows that keeps the cursor visible.
func (m *Model) renderTree(height int) string {
	if len(m.rows) == 0 {
		return MutedStyle.Render("Nothing to show")
	}

	if m.cursor < m.scroll {
		m.scroll = m.cursor
	}
	if m.cursor >= m.scroll+height {
		m.scroll = m.cursor - height + 1
	}
	m.scroll = min(max(m.scroll, 0), max(len(m.rows)-height, 0))

	end := min(m.scroll+height, len(m.rows))
	lines := make([]string, 0, end-m.scroll)

	for i := m.scroll; i < end; i++ {
		lines = append(lines, m.renderRow(m.rows[i], i == m.cursor))
	}

	if m.scroll > 0 || end < len(m.rows) {
		// Replace last line with scroll indicator
		lines[len(lines)-1] = fmt.Sprintf("%s (Line %d-%d of %d) %s",
			MutedStyle.Render("▲"), m.scroll+1, end, len(m.rows), MutedStyle.Render("▼"))
	}

	return strings.Join(lines, "\n")
}

func (m *Model) renderRow(r row, selected bool) string {
	indent := strings.Repeat("  ", r.depth)

	var text string
	switch r.kind {
	case rowNode:
		arrow := "▸ "
		if r.open {
			arrow = "▾ "
		}
		text = indent + arrow + r.label
	default:
		text = indent + "  " + r.label
	}

	if r.hasAddr {
		text += " " + AddressMarkerStyle.Render("●")
	}

	text = TruncateString(text, max(m.width-1, 4))

	switch {
	case selected:
		return SelectedStyle.Render(text)
	case r.kind == rowNode:
		return NodeStyle.Render(text)
	default:
		return TextStyle.Render(text)
	}
}
