package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabhi256/objexplorer/internal/explorer"
	"github.com/mabhi256/objexplorer/internal/memory"
	"github.com/mabhi256/objexplorer/internal/memory/memtest"
	"github.com/mabhi256/objexplorer/internal/registry"
	"github.com/mabhi256/objexplorer/internal/rtti"
)

type fakeClipboard struct {
	text string
}

func (c *fakeClipboard) WriteAll(text string) error {
	c.text = text
	return nil
}

type fakeLog struct {
	lines []string
}

func (l *fakeLog) LogLine(line string) {
	l.lines = append(l.lines, line)
}

type fixture struct {
	heap  *memtest.Heap
	model *Model
	clip  *fakeClipboard
	log   *fakeLog
}

func newSession(h *memtest.Heap, roots ...memory.Address) *Session {
	in := rtti.NewInspector(h.Image, h.Layout)
	return &Session{
		Title:      "test",
		Explorer:   explorer.New(in),
		Singletons: registry.NewSingletons(registry.NewStaticSource(roots...), in, time.Second, zerolog.Nop()),
	}
}

func newFixture(t *testing.T, h *memtest.Heap, roots ...memory.Address) *fixture {
	t.Helper()

	fx := &fixture{heap: h, clip: &fakeClipboard{}, log: &fakeLog{}}
	now := time.Unix(1000, 0)
	fx.model = NewModel(Options{
		Session: newSession(h, roots...),
		Sinks:   explorer.Sinks{Clipboard: fx.clip, Log: fx.log},
		Logger:  zerolog.Nop(),
		Now:     func() time.Time { return now },
	})
	fx.model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return fx
}

func (fx *fixture) press(keys ...tea.KeyMsg) {
	for _, k := range keys {
		fx.model.Update(k)
	}
}

func (fx *fixture) typeText(s string) {
	for _, r := range s {
		fx.press(runeKey(r))
	}
}

func (fx *fixture) labels() []string {
	out := make([]string, len(fx.model.rows))
	for i, r := range fx.model.rows {
		out[i] = r.label
	}
	return out
}

// cursorTo moves the cursor onto the first row with label.
func (fx *fixture) cursorTo(t *testing.T, label string) {
	t.Helper()
	for i, r := range fx.model.rows {
		if r.label == label {
			fx.model.cursor = i
			return
		}
	}
	t.Fatalf("no row %q in %v", label, fx.labels())
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

var (
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	escKey   = tea.KeyMsg{Type: tea.KeyEsc}
	downKey  = tea.KeyMsg{Type: tea.KeyDown}
	leftKey  = tea.KeyMsg{Type: tea.KeyLeft}
)

func settingsObject(h *memtest.Heap) memory.Address {
	root := h.Type("System.Object", 0x10, 0)
	typ := h.Type("app.Settings", 0x20, root)
	return h.Object(typ, 0x20)
}

func TestSingletonsClosedByDefault(t *testing.T) {
	h := memtest.New(t)
	fx := newFixture(t, h, settingsObject(h))

	assert.Equal(t, []string{"Singletons"}, fx.labels())
}

func TestOpeningSingletonsListsRootsUnresolvedFirst(t *testing.T) {
	h := memtest.New(t)
	obj := settingsObject(h)
	fx := newFixture(t, h, obj, 0x42)

	fx.press(enterKey)

	assert.Equal(t, []string{"Singletons", "? 0x42", "app.Settings"}, fx.labels())
	assert.True(t, fx.model.rows[1].hasAddr)
	assert.Equal(t, memory.Address(0x42), fx.model.rows[1].addr)
	assert.Equal(t, obj, fx.model.rows[2].addr)
	assert.Equal(t, 1, fx.model.rows[2].depth)
}

func TestExpandingRootShowsTypeHierarchy(t *testing.T) {
	h := memtest.New(t)
	fx := newFixture(t, h, settingsObject(h))

	fx.press(enterKey)
	fx.cursorTo(t, "app.Settings")
	fx.press(enterKey)

	assert.Equal(t, []string{
		"Singletons",
		"app.Settings",
		"app.Settings",
		"AutoGenerated Types",
	}, fx.labels())

	// Cursor stays on the node that was toggled.
	assert.Equal(t, 1, fx.model.cursor)

	fx.press(leftKey)
	assert.Len(t, fx.model.rows, 2)
}

func TestLeftMovesToParentNode(t *testing.T) {
	h := memtest.New(t)
	fx := newFixture(t, h, settingsObject(h))

	fx.press(enterKey, downKey)
	require.Equal(t, 1, fx.model.cursor)

	fx.press(leftKey)
	assert.Equal(t, 0, fx.model.cursor)
}

func TestEmptyAddressFieldTraversesNothing(t *testing.T) {
	h := memtest.New(t)
	fx := newFixture(t, h)

	fx.press(runeKey('/'))
	require.True(t, fx.model.input.Focused())
	fx.press(enterKey)

	assert.Equal(t, []string{"Singletons"}, fx.labels())
}

func TestAddressFieldExploresObject(t *testing.T) {
	h := memtest.New(t)
	obj := settingsObject(h)
	fx := newFixture(t, h)

	fx.press(runeKey('/'))
	fx.typeText("zz" + obj.Hex() + "!")
	fx.press(enterKey)

	assert.False(t, fx.model.input.Focused())
	assert.Equal(t, obj.Hex(), fx.model.input.Value())
	assert.Equal(t, []string{
		"Singletons",
		"Object " + obj.String(),
		"app.Settings",
		"AutoGenerated Types",
	}, fx.labels())
	assert.Equal(t, obj, fx.model.rows[1].addr)
}

func TestAddressFieldInvalidObjectShowsOnlyHeader(t *testing.T) {
	h := memtest.New(t)
	fx := newFixture(t, h)

	fx.press(runeKey('a'))
	fx.typeText("1A2B")
	fx.press(escKey)

	assert.Equal(t, []string{"Singletons", "Object 0x1a2b"}, fx.labels())
}

func TestCopyAddress(t *testing.T) {
	h := memtest.New(t)
	obj := settingsObject(h)
	fx := newFixture(t, h, obj)

	fx.press(enterKey)
	fx.cursorTo(t, "app.Settings")
	fx.press(runeKey('y'))

	assert.Equal(t, obj.Hex(), fx.clip.text)
	assert.Equal(t, "Copied "+obj.Hex(), fx.model.status)
	assert.False(t, fx.model.statusIsErr)
}

func TestCopyOnRowWithoutAddressDoesNothing(t *testing.T) {
	h := memtest.New(t)
	fx := newFixture(t, h, settingsObject(h))

	fx.press(runeKey('y'))

	assert.Empty(t, fx.clip.text)
	assert.Empty(t, fx.model.status)
}

func TestContextMenuOnPlainObjectOffersCopyOnly(t *testing.T) {
	h := memtest.New(t)
	obj := settingsObject(h)
	fx := newFixture(t, h, obj)

	fx.press(enterKey)
	fx.cursorTo(t, "app.Settings")
	fx.press(runeKey('m'))

	require.NotNil(t, fx.model.menu)
	assert.Equal(t, []explorer.Action{explorer.ActionCopyAddress}, fx.model.menu.actions)
	assert.Contains(t, fx.model.View(), "Copy")

	fx.press(enterKey)
	assert.Nil(t, fx.model.menu)
	assert.Equal(t, obj.Hex(), fx.clip.text)
}

func TestContextMenuEscapeCloses(t *testing.T) {
	h := memtest.New(t)
	fx := newFixture(t, h, settingsObject(h))

	fx.press(enterKey)
	fx.cursorTo(t, "app.Settings")
	fx.press(runeKey('m'), escKey)

	assert.Nil(t, fx.model.menu)
	assert.Empty(t, fx.clip.text)
}

func TestContextMenuLogHierarchy(t *testing.T) {
	h := memtest.New(t)

	base := h.Type(h.Layout.Component.Class, 0x30, 0)
	typ := h.Type("app.Rigidbody", 0x30, base)
	a, b, c := h.Component(typ), h.Component(typ), h.Component(typ)
	h.Ring(a, b, c)

	fx := newFixture(t, h, a)
	fx.press(enterKey)
	fx.cursorTo(t, "app.Rigidbody")
	fx.press(runeKey('m'))

	require.NotNil(t, fx.model.menu)
	require.Equal(t, []explorer.Action{explorer.ActionCopyAddress, explorer.ActionLogHierarchy}, fx.model.menu.actions)

	fx.press(downKey, enterKey)

	assert.Len(t, fx.log.lines, 3)
	assert.Equal(t, "Logged 3 components from "+a.String(), fx.model.status)
}

func TestViewRendersTree(t *testing.T) {
	h := memtest.New(t)
	fx := newFixture(t, h, settingsObject(h))

	fx.press(enterKey)
	out := fx.model.View()

	assert.Contains(t, out, "Object Address:")
	assert.Contains(t, out, "▾ Singletons")
	assert.Contains(t, out, "▸ app.Settings")
}

func TestProcessSelectionAttaches(t *testing.T) {
	h := memtest.New(t)
	obj := settingsObject(h)

	var attached memory.ProcessInfo
	m := NewModel(Options{
		Discover: func() ([]memory.ProcessInfo, error) {
			return []memory.ProcessInfo{{PID: 4242, Name: "game"}}, nil
		},
		Attach: func(info memory.ProcessInfo) (*Session, error) {
			attached = info
			return newSession(h, obj), nil
		},
		Logger: zerolog.Nop(),
	})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	require.True(t, m.processMode)
	assert.Len(t, m.processList.Items(), 1)
	assert.Contains(t, m.View(), "Select Process")

	m.Update(enterKey)

	assert.False(t, m.processMode)
	assert.Equal(t, 4242, attached.PID)
	require.NotEmpty(t, m.rows)
	assert.Equal(t, "Singletons", m.rows[0].label)
}

type unrelatedMsg struct{}

func TestAddressFieldStripsNonHexFromPastedValue(t *testing.T) {
	h := memtest.New(t)
	obj := settingsObject(h)
	fx := newFixture(t, h)

	fx.press(runeKey('/'))
	require.True(t, fx.model.input.Focused())

	// A clipboard paste lands in the field without passing the key filter.
	fx.model.input.SetValue("0x" + obj.Hex() + " ")
	require.Error(t, fx.model.input.Err)

	fx.model.Update(unrelatedMsg{})

	assert.Equal(t, "0"+obj.Hex(), fx.model.input.Value())
	assert.NoError(t, fx.model.input.Err)
}

func TestNonKeyMessagesIgnoredWhenFieldBlurred(t *testing.T) {
	h := memtest.New(t)
	fx := newFixture(t, h)

	fx.model.input.SetValue("zz")
	fx.model.Update(unrelatedMsg{})

	assert.Equal(t, "zz", fx.model.input.Value())
}
