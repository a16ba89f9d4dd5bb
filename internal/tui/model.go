package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/mabhi256/objexplorer/internal/explorer"
	"github.com/mabhi256/objexplorer/internal/memory"
	"github.com/mabhi256/objexplorer/internal/registry"
)

const PageSize = 10 // Number of lines to move per page

// Session is everything needed to explore one target.
type Session struct {
	Title      string
	Explorer   *explorer.Explorer
	Singletons *registry.Singletons
}

// AttachFunc opens a session on a process picked in the selector.
type AttachFunc func(info memory.ProcessInfo) (*Session, error)

type Options struct {
	Session  *Session // nil starts in process selection
	Attach   AttachFunc
	Discover func() ([]memory.ProcessInfo, error)
	Sinks    explorer.Sinks
	Logger   zerolog.Logger
	Now      func() time.Time
}

// The main TUI model
type Model struct {
	session *Session
	attach  AttachFunc
	sinks   explorer.Sinks
	logger  zerolog.Logger
	now     func() time.Time
	help    help.Model

	// UI state
	width  int
	height int

	// Tree state
	tree   *treeState
	rows   []row
	cursor int
	scroll int

	// Address field
	input textinput.Model

	// Context menu, nil when closed
	menu *contextMenu

	// Process selection state
	processMode bool
	processList list.Model
	discover    func() ([]memory.ProcessInfo, error)

	// Status line
	status      string
	statusIsErr bool
}

func NewModel(opts Options) *Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	processList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	processList.Title = "Processes"
	processList.SetShowStatusBar(false)
	processList.SetFilteringEnabled(true)

	m := &Model{
		session:     opts.Session,
		attach:      opts.Attach,
		sinks:       opts.Sinks,
		logger:      opts.Logger.With().Str("component", "tui").Logger(),
		now:         opts.Now,
		help:        help.New(),
		tree:        newTreeState(),
		input:       newAddressInput(),
		processList: processList,
		processMode: opts.Session == nil,
		discover:    opts.Discover,
	}

	if m.processMode {
		m.refreshProcessList()
	} else {
		m.rebuild()
	}

	return m
}

type TickMsg time.Time

func (m *Model) scheduleTick() tea.Cmd {
	interval := registry.MinRefreshInterval
	if m.processMode {
		interval = 5 * time.Second // Process refresh interval
	}

	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m *Model) Init() tea.Cmd {
	return m.scheduleTick()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(msg.Width-len(m.input.Prompt)-2, 8)
		m.processList.SetSize(msg.Width, max(msg.Height-4, 1))
		return m, nil

	case TickMsg:
		if m.processMode {
			m.refreshProcessList()
		} else {
			m.rebuild()
		}
		return m, m.scheduleTick()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.processMode {
			return m.handleProcessKeys(msg)
		}

		if m.menu != nil {
			return m.handleMenuKeys(msg)
		}

		if m.input.Focused() {
			return m.handleInputKeys(msg)
		}

		return m.handleTreeKeys(msg)
	}

	// Paste results and cursor blinks belong to the address field.
	if m.input.Focused() {
		cmd := m.updateAddressInput(msg)
		m.rebuild()
		return m, cmd
	}

	return m, nil
}

func (m *Model) handleTreeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, keys.PageUp):
		m.moveCursor(-PageSize)
	case key.Matches(msg, keys.PageDown):
		m.moveCursor(PageSize)

	case key.Matches(msg, keys.Toggle):
		if r, ok := m.selected(); ok && r.kind == rowNode {
			m.tree.toggle(r.path)
		}
	case key.Matches(msg, keys.Right):
		if r, ok := m.selected(); ok && r.kind == rowNode {
			m.tree.setOpen(r.path, true)
		}
	case key.Matches(msg, keys.Left):
		m.collapseOrParent()

	case key.Matches(msg, keys.Menu):
		m.openMenu()
	case key.Matches(msg, keys.Copy):
		m.runOnSelected(explorer.ActionCopyAddress)
	case key.Matches(msg, keys.Log):
		m.runOnSelected(explorer.ActionLogHierarchy)

	case key.Matches(msg, keys.Address):
		return m, m.input.Focus()
	case key.Matches(msg, keys.Escape):
		m.clearStatus()

	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	m.rebuild()
	return m, nil
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc, tea.KeyTab:
		m.input.Blur()
		m.rebuild()
		return m, nil
	}

	msg, ok := filterAddressKey(msg)
	if !ok {
		return m, nil
	}

	cmd := m.updateAddressInput(msg)
	m.rebuild()
	return m, cmd
}

func (m *Model) moveCursor(delta int) {
	if len(m.rows) == 0 {
		m.cursor = 0
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.rows)-1)
}

func (m *Model) selected() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.cursor], true
}

// collapseOrParent closes an open node, or moves to the enclosing node.
func (m *Model) collapseOrParent() {
	r, ok := m.selected()
	if !ok {
		return
	}

	if r.kind == rowNode && r.open {
		m.tree.setOpen(r.path, false)
		return
	}

	for i := m.cursor - 1; i >= 0; i-- {
		if m.rows[i].kind == rowNode && m.rows[i].depth < r.depth {
			m.cursor = i
			return
		}
	}
}

func (m *Model) runOnSelected(action explorer.Action) {
	r, ok := m.selected()
	if !ok || !r.hasAddr || m.session == nil {
		return
	}
	m.runAction(action, r.addr)
}

func (m *Model) runAction(action explorer.Action, addr memory.Address) {
	if action == explorer.ActionLogHierarchy {
		log := &countingSink{LogSink: m.sinks.Log}
		err := m.session.Explorer.Run(action, addr, explorer.Sinks{Clipboard: m.sinks.Clipboard, Log: log})
		if err != nil {
			m.setError(err.Error())
			return
		}
		m.setStatus(fmt.Sprintf("Logged %d components from %s", log.lines, addr))
		return
	}

	if err := m.session.Explorer.Run(action, addr, m.sinks); err != nil {
		m.logger.Warn().Err(err).Str("action", action.String()).Msg("context action failed")
		m.setError(err.Error())
		return
	}
	m.setStatus(fmt.Sprintf("Copied %s", addr.Hex()))
}

type countingSink struct {
	explorer.LogSink
	lines int
}

func (c *countingSink) LogLine(line string) {
	c.lines++
	if c.LogSink != nil {
		c.LogSink.LogLine(line)
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusIsErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusIsErr = true
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusIsErr = false
}

// rebuild runs one traversal pass and keeps the cursor on the same node when it
// is still visible.
func (m *Model) rebuild() {
	if m.session == nil {
		return
	}

	var current string
	if r, ok := m.selected(); ok {
		current = r.path
	}

	f := newFrame(m.tree)
	m.renderRoots(f)

	if !f.balanced() {
		m.logger.Warn().Int("depth", f.depth).Msg("unbalanced tree frame")
	}

	m.rows = f.rows
	for i, r := range m.rows {
		if r.path == current {
			m.cursor = i
			return
		}
	}
	m.moveCursor(0)
}

// renderRoots lays out the singleton section and the free-form address section.
func (m *Model) renderRoots(f *frame) {
	if f.TreeNode("singletons", "Singletons") {
		for _, root := range m.session.Singletons.Snapshot(m.now()) {
			if !root.Resolved {
				f.Text("? " + root.Addr.String())
				f.ContextMenu(root.Addr)
				continue
			}

			open := f.TreeNode(root.Addr.Hex(), root.TypeName)
			f.ContextMenu(root.Addr)
			if open {
				m.session.Explorer.Explore(f, root.Addr)
				f.TreePop()
			}
		}
		f.TreePop()
	}

	addr, ok := ParseAddressInput(m.input.Value())
	if !ok {
		return
	}

	f.Text("Object " + addr.String())
	f.ContextMenu(addr)

	f.PushID("addr:" + addr.Hex())
	m.session.Explorer.Explore(f, addr)
	f.PopID()
}
