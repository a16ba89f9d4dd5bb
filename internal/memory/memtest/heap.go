// Package memtest lays out synthetic managed heaps inside a memory.Image.
package memtest

import (
	"encoding/binary"
	"testing"
	"unicode/utf16"

	"github.com/mabhi256/objexplorer/internal/layout"
	"github.com/mabhi256/objexplorer/internal/memory"
)

const (
	Base      memory.Address = 0x10000
	arenaSize                = 1 << 20
)

// Field describes one entry of a synthetic field table. A Null field produces a
// null descriptor pointer in the table.
type Field struct {
	Name     string
	TypeName string
	Null     bool
}

// Heap is a bump allocator over a single mapped arena. Writes after mapping are
// visible through the image.
type Heap struct {
	t      testing.TB
	Image  *memory.Image
	Layout *layout.Layout

	arena []byte
	next  uint64
}

func New(t testing.TB) *Heap {
	t.Helper()

	h := &Heap{
		t:      t,
		Image:  memory.NewImage(),
		Layout: layout.Default(),
		arena:  make([]byte, arenaSize),
		next:   0x100,
	}
	if err := h.Image.Map(Base, h.arena); err != nil {
		t.Fatalf("map arena: %v", err)
	}
	return h
}

func (h *Heap) Alloc(size int) memory.Address {
	h.t.Helper()

	size = (size + 7) &^ 7
	if size == 0 {
		size = 8
	}
	if h.next+uint64(size) > arenaSize {
		h.t.Fatalf("memtest arena exhausted")
	}
	addr := Base.Offset(int64(h.next))
	h.next += uint64(size)
	return addr
}

func (h *Heap) index(addr memory.Address, n int) int {
	h.t.Helper()

	if addr < Base || uint64(addr-Base)+uint64(n) > arenaSize {
		h.t.Fatalf("write at %s outside arena", addr)
	}
	return int(addr - Base)
}

// PutWord stores val at addr+off.
func (h *Heap) PutWord(addr memory.Address, off int64, val memory.Address) {
	h.t.Helper()
	i := h.index(addr.Offset(off), 8)
	binary.LittleEndian.PutUint64(h.arena[i:], uint64(val))
}

func (h *Heap) PutUint32(addr memory.Address, off int64, val uint32) {
	h.t.Helper()
	i := h.index(addr.Offset(off), 4)
	binary.LittleEndian.PutUint32(h.arena[i:], val)
}

func (h *Heap) CString(s string) memory.Address {
	h.t.Helper()
	addr := h.Alloc(len(s) + 1)
	copy(h.arena[h.index(addr, len(s)+1):], s)
	return addr
}

// String allocates a managed string object holding s.
func (h *Heap) String(s string) memory.Address {
	h.t.Helper()

	units := utf16.Encode([]rune(s))
	l := h.Layout.String
	addr := h.Alloc(int(l.Chars) + 2*len(units) + 2)
	h.PutUint32(addr, l.Length, uint32(len(units)))
	for i, u := range units {
		j := h.index(addr.Offset(l.Chars+int64(2*i)), 2)
		binary.LittleEndian.PutUint16(h.arena[j:], u)
	}
	return addr
}

// Type allocates a type descriptor. An empty name leaves the name pointer null.
func (h *Heap) Type(name string, size uint32, super memory.Address, fields ...Field) memory.Address {
	h.t.Helper()

	l := h.Layout
	typ := h.Alloc(int(l.TypeHeaderSize()))
	if name != "" {
		h.PutWord(typ, l.Type.Name, h.CString(name))
	}
	h.PutUint32(typ, l.Type.Size, size)
	h.PutWord(typ, l.Type.Super, super)
	if fields != nil {
		h.PutWord(typ, l.Type.Fields, h.FieldTable(fields...))
	}
	return typ
}

// FieldTable builds fields -> variables -> data -> descriptors[] and returns the
// table address.
func (h *Heap) FieldTable(fields ...Field) memory.Address {
	h.t.Helper()

	ft := h.Layout.FieldTable
	fd := h.Layout.FieldDescriptor

	data := h.Alloc(int(ft.Descriptors) + 8*max(len(fields), 1))
	for i, f := range fields {
		if f.Null {
			continue
		}
		desc := h.Alloc(int(max(fd.Name, fd.TypeName)) + 8)
		h.PutWord(desc, fd.Name, h.CString(f.Name))
		h.PutWord(desc, fd.TypeName, h.CString(f.TypeName))
		h.PutWord(data, ft.Descriptors+int64(8*i), desc)
	}

	vars := h.Alloc(int(max(ft.Data, ft.Num)) + 8)
	h.PutWord(vars, ft.Data, data)
	h.PutUint32(vars, ft.Num, uint32(len(fields)))

	table := h.Alloc(int(ft.Variables) + 8)
	h.PutWord(table, ft.Variables, vars)
	return table
}

// Object allocates an instance of typ with a full object-info -> class-info -> type
// header chain. size is the allocation size; the declared size comes from typ.
func (h *Heap) Object(typ memory.Address, size int) memory.Address {
	h.t.Helper()

	l := h.Layout
	class := h.Alloc(int(l.ClassInfo.Type) + 8)
	h.PutWord(class, l.ClassInfo.Type, typ)

	info := h.Alloc(int(l.ObjectInfo.ClassInfo) + 8)
	h.PutWord(info, l.ObjectInfo.ClassInfo, class)

	obj := h.Alloc(max(size, int(l.Object.Info)+8))
	h.PutWord(obj, l.Object.Info, info)
	return obj
}

// Container allocates a container entity of typ named name.
func (h *Heap) Container(typ memory.Address, name string) memory.Address {
	h.t.Helper()

	l := h.Layout.Container
	obj := h.Object(typ, int(max(l.Name, l.Transform, l.Folder))+8)
	if name != "" {
		h.PutWord(obj, l.Name, h.String(name))
	}
	return obj
}

// Component allocates an attached component of typ.
func (h *Heap) Component(typ memory.Address) memory.Address {
	h.t.Helper()

	l := h.Layout.Component
	return h.Object(typ, int(max(l.Owner, l.Child, l.Prev, l.Next))+8)
}

// Ring links comps through their child slot and closes the loop back to the first.
func (h *Heap) Ring(comps ...memory.Address) {
	h.t.Helper()

	child := h.Layout.Component.Child
	for i, c := range comps {
		h.PutWord(c, child, comps[(i+1)%len(comps)])
	}
}
