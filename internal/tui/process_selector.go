package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mabhi256/objexplorer/internal/memory"
	"github.com/mabhi256/objexplorer/utils"
)

// processItem represents a process in the selection list
type processItem struct {
	process memory.ProcessInfo
}

func (i processItem) FilterValue() string {
	return fmt.Sprintf("%d %s %s", i.process.PID, i.process.Name, i.process.User)
}

func (i processItem) Title() string {
	title := fmt.Sprintf("PID %d: %s", i.process.PID, i.process.Name)
	if len(title) > 50 {
		title = title[:47] + "..."
	}
	return title
}

func (i processItem) Description() string {
	parts := make([]string, 0, 3)
	if i.process.User != "" {
		parts = append(parts, "User: "+i.process.User)
	}
	if i.process.RSS > 0 {
		parts = append(parts, "RSS: "+utils.MemorySize(i.process.RSS).String())
	}
	if i.process.Exe != "" {
		parts = append(parts, i.process.Exe)
	}
	return strings.Join(parts, " | ")
}

// refreshProcessList discovers and populates the process list
func (m *Model) refreshProcessList() {
	if m.discover == nil {
		return
	}

	// Don't replace items while the user is typing a filter
	if m.processList.FilterState() == list.Filtering {
		return
	}

	processes, err := m.discover()
	if err != nil {
		m.setError(fmt.Sprintf("Failed to discover processes: %v", err))
		return
	}

	items := make([]list.Item, len(processes))
	for i, proc := range processes {
		items[i] = processItem{process: proc}
	}

	m.processList.SetItems(items)
}

func (m *Model) handleProcessKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	filtering := m.processList.FilterState() == list.Filtering

	if !filtering {
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case msg.Type == tea.KeyEnter:
			if item, ok := m.processList.SelectedItem().(processItem); ok {
				return m.selectProcess(item.process)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.processList, cmd = m.processList.Update(msg)
	return m, cmd
}

// Selects a process and switches to explorer mode
func (m *Model) selectProcess(info memory.ProcessInfo) (tea.Model, tea.Cmd) {
	if m.attach == nil {
		m.setError("attaching to processes is not supported")
		return m, nil
	}

	session, err := m.attach(info)
	if err != nil {
		m.logger.Warn().Err(err).Int("pid", info.PID).Msg("attach failed")
		m.setError(fmt.Sprintf("Failed to attach to PID %d: %v", info.PID, err))
		return m, nil
	}

	m.logger.Info().Int("pid", info.PID).Str("name", info.Name).Msg("attached")

	m.session = session
	m.processMode = false
	m.tree = newTreeState()
	m.cursor = 0
	m.clearStatus()
	m.rebuild()

	return m, nil
}

// Renders the process selection UI
func (m *Model) renderProcessSelectionView() string {
	header := HeaderStyle.Width(m.width).Render("🔍 Select Process to Explore")

	listView := m.processList.View()

	statusText := fmt.Sprintf("Found %d processes", len(m.processList.Items()))
	if m.statusIsErr {
		statusText = m.status
	}
	statusView := StatusBarStyle.Width(m.width).Render(statusText)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		MutedStyle.Render(separator(m.width)),
		listView,
		statusView,
	)
}
