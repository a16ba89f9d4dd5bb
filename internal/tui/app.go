package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

func StartTUI(opts Options) error {
	model := NewModel(opts)

	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Enable mouse support
	)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
