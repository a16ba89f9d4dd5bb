package explorer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabhi256/objexplorer/internal/memory"
	"github.com/mabhi256/objexplorer/internal/memory/memtest"
)

type componentFixture struct {
	h        *memtest.Heap
	e        *Explorer
	compBase memory.Address
	owner    memory.Address
}

func newComponentFixture(t *testing.T) *componentFixture {
	h := memtest.New(t)
	return &componentFixture{
		h:        h,
		e:        newExplorer(h),
		compBase: h.Type("via.Component", 0x30, 0),
		owner:    h.Container(h.Type("via.GameObject", 0x50, 0), "Enemy"),
	}
}

func (f *componentFixture) component(name string) memory.Address {
	return f.h.Component(f.h.Type(name, 0x30, f.compBase))
}

func TestCopyAddressIsLowercaseHexWithoutPrefix(t *testing.T) {
	cb := &fakeClipboard{}
	require.NoError(t, CopyAddress(cb, 0xDEADBEEF))
	assert.Equal(t, "deadbeef", cb.text)

	cb.err = errors.New("no display")
	assert.Error(t, CopyAddress(cb, 0x1))
	assert.Error(t, CopyAddress(nil, 0x1))
}

func TestActions(t *testing.T) {
	f := newComponentFixture(t)
	comp := f.component("app.Mesh")
	plain := f.h.Object(f.h.Type("app.Settings", 0x20, 0), 0x20)

	assert.Equal(t, []Action{ActionCopyAddress, ActionLogHierarchy}, f.e.Actions(comp))
	assert.Equal(t, []Action{ActionCopyAddress}, f.e.Actions(plain))
	assert.Equal(t, []Action{ActionCopyAddress}, f.e.Actions(0))
	assert.Equal(t, "Log Hierarchy", ActionLogHierarchy.String())
}

func TestLogHierarchyRingOfThree(t *testing.T) {
	f := newComponentFixture(t)
	a := f.component("app.Mesh")
	b := f.component("app.Collider")
	c := f.component("app.Health")
	f.h.Ring(a, b, c)
	f.h.PutWord(b, f.h.Layout.Component.Owner, f.owner)

	log := &fakeLog{}
	n := f.e.LogHierarchy(log, a)

	assert.Equal(t, 3, n)
	assert.Equal(t, []string{
		"app.Mesh (" + a.Hex() + ")",
		"[Enemy] app.Collider (" + b.Hex() + ")",
		"app.Health (" + c.Hex() + ")",
	}, log.lines)

	// Starting mid-ring visits the same three components.
	log = &fakeLog{}
	assert.Equal(t, 3, f.e.LogHierarchy(log, b))
	assert.Equal(t, "[Enemy] app.Collider ("+b.Hex()+")", log.lines[0])
}

func TestLogHierarchyOwnerLabelFallbacks(t *testing.T) {
	f := newComponentFixture(t)
	owner := f.h.Layout.Component.Owner

	nameless := f.h.Container(f.h.Type("via.GameObject", 0x50, 0), "")
	raw := f.h.Alloc(0x40)

	a := f.component("app.Mesh")
	b := f.component("app.Collider")
	f.h.Ring(a, b)
	f.h.PutWord(a, owner, nameless)
	f.h.PutWord(b, owner, raw)

	log := &fakeLog{}
	require.Equal(t, 2, f.e.LogHierarchy(log, a))
	assert.Equal(t, []string{
		"[via.GameObject] app.Mesh (" + a.Hex() + ")",
		"[" + raw.Hex() + "] app.Collider (" + b.Hex() + ")",
	}, log.lines)
}

func TestLogHierarchySingleSelfLoop(t *testing.T) {
	f := newComponentFixture(t)
	a := f.component("app.Mesh")
	f.h.Ring(a)

	log := &fakeLog{}
	assert.Equal(t, 1, f.e.LogHierarchy(log, a))
}

func TestLogHierarchyNullTerminatedChain(t *testing.T) {
	f := newComponentFixture(t)
	a := f.component("app.Mesh")
	b := f.component("app.Collider")
	f.h.PutWord(a, f.h.Layout.Component.Child, b)

	log := &fakeLog{}
	assert.Equal(t, 2, f.e.LogHierarchy(log, a))
}

func TestLogHierarchySkipsUnresolvableEntries(t *testing.T) {
	f := newComponentFixture(t)
	child := f.h.Layout.Component.Child

	a := f.component("app.Mesh")
	b := f.component("app.Collider")
	raw := f.h.Alloc(0x40) // not a managed object, but still linked
	f.h.PutWord(a, child, raw)
	f.h.PutWord(raw, child, b)
	f.h.PutWord(b, child, a)

	log := &fakeLog{}
	assert.Equal(t, 2, f.e.LogHierarchy(log, a))
}

func TestLogHierarchyRingNotReturningToStartIsBounded(t *testing.T) {
	f := newComponentFixture(t)
	f.h.Layout.Limits.MaxComponentChain = 10
	child := f.h.Layout.Component.Child

	a := f.component("app.Mesh")
	b := f.component("app.Collider")
	c := f.component("app.Health")
	f.h.PutWord(a, child, b)
	f.h.Ring(b, c)

	log := &fakeLog{}
	assert.Equal(t, 10, f.e.LogHierarchy(log, a))
}

func TestRun(t *testing.T) {
	f := newComponentFixture(t)
	a := f.component("app.Mesh")
	f.h.Ring(a)
	plain := f.h.Object(f.h.Type("app.Settings", 0x20, 0), 0x20)

	cb := &fakeClipboard{}
	log := &fakeLog{}
	sinks := Sinks{Clipboard: cb, Log: log}

	require.NoError(t, f.e.Run(ActionCopyAddress, a, sinks))
	assert.Equal(t, a.Hex(), cb.text)

	require.NoError(t, f.e.Run(ActionLogHierarchy, a, sinks))
	assert.Len(t, log.lines, 1)

	assert.Error(t, f.e.Run(ActionLogHierarchy, plain, sinks))
	assert.Error(t, f.e.Run(Action(42), a, sinks))
}
