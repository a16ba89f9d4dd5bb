// Package rtti decides whether raw addresses are managed objects and decodes the
// runtime type metadata behind them. Every pointer hop is probed for readability
// before it is followed, so arbitrary input never faults.
package rtti

import (
	"github.com/mabhi256/objexplorer/internal/layout"
	"github.com/mabhi256/objexplorer/internal/memory"
)

// Inspector validates objects and reads type metadata from a Space. It caches
// nothing: every call re-reads the foreign memory.
type Inspector struct {
	space  memory.Space
	layout *layout.Layout
}

// NewInspector reads from space using l, or the default layout when l is nil.
func NewInspector(space memory.Space, l *layout.Layout) *Inspector {
	if l == nil {
		l = layout.Default()
	}
	return &Inspector{space: space, layout: l}
}

// Layout returns the structure offsets in use.
func (in *Inspector) Layout() *layout.Layout {
	return in.layout
}

// View returns a typed view of addr in the inspected space.
func (in *Inspector) View(addr memory.Address) memory.View {
	return memory.NewView(in.space, addr)
}

// Pointer reads the word at base+off. Unreadable memory reads as null.
func (in *Inspector) Pointer(base memory.Address, off int64) memory.Address {
	ptr, _ := in.hop(base, off)
	return ptr
}

// hop follows the pointer stored at base+off. It fails closed on a null base,
// unreadable memory and a null result.
func (in *Inspector) hop(base memory.Address, off int64) (memory.Address, bool) {
	if base.IsNull() {
		return 0, false
	}

	at := base.Offset(off)
	if !in.space.IsReadable(at, memory.WordSize) {
		return 0, false
	}

	ptr, err := in.View(at).Word()
	if err != nil || ptr.IsNull() {
		return 0, false
	}
	return ptr, true
}

// typeAddress walks object -> object info -> class info -> type descriptor.
func (in *Inspector) typeAddress(obj memory.Address) (memory.Address, bool) {
	info, ok := in.hop(obj, in.layout.Object.Info)
	if !ok {
		return 0, false
	}

	class, ok := in.hop(info, in.layout.ObjectInfo.ClassInfo)
	if !ok {
		return 0, false
	}

	typ, ok := in.hop(class, in.layout.ClassInfo.Type)
	if !ok {
		return 0, false
	}

	if !in.space.IsReadable(typ, in.layout.TypeHeaderSize()) {
		return 0, false
	}
	return typ, true
}

// IsManagedObject reports whether addr carries a complete, readable header chain.
func (in *Inspector) IsManagedObject(addr memory.Address) bool {
	_, ok := in.typeAddress(addr)
	return ok
}

// SafeGetType returns the concrete type of obj, or false if any hop is broken.
func (in *Inspector) SafeGetType(obj memory.Address) (*Type, bool) {
	typ, ok := in.typeAddress(obj)
	if !ok {
		return nil, false
	}
	return in.ReadType(typ)
}

// TypeName returns the name of obj's concrete type.
func (in *Inspector) TypeName(obj memory.Address) (string, bool) {
	t, ok := in.SafeGetType(obj)
	if !ok || !t.Named {
		return "", false
	}
	return t.Name, true
}

// IsA reports whether obj's type or any of its ancestors is named className.
// Unnamed levels are passed over; the walk is bounded by the layout's depth limit.
func (in *Inspector) IsA(obj memory.Address, className string) bool {
	t, ok := in.SafeGetType(obj)
	if !ok {
		return false
	}

	for depth := 0; depth < in.layout.Limits.MaxHierarchyDepth; depth++ {
		if t.Named && t.Name == className {
			return true
		}

		t, ok = in.Super(t)
		if !ok {
			return false
		}
	}
	return false
}

// ShapeOf classifies obj once so callers need not repeat name comparisons.
func (in *Inspector) ShapeOf(obj memory.Address) Shape {
	switch {
	case in.IsA(obj, in.layout.Container.Class):
		return ShapeContainer
	case in.IsA(obj, in.layout.Component.Class):
		return ShapeComponent
	default:
		return ShapeUnknown
	}
}
