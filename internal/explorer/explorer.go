// Package explorer turns a managed object into an expandable tree. It decides
// what to show; a Renderer decides how. Traversal is driven by the renderer's
// open/closed state, so cyclic graphs only unfold as far as the user opens them.
package explorer

import (
	"fmt"

	"github.com/mabhi256/objexplorer/internal/layout"
	"github.com/mabhi256/objexplorer/internal/memory"
	"github.com/mabhi256/objexplorer/internal/rtti"
)

// RootOffset marks a traversal that is not reached through a slot. Root
// traversals expand inline instead of emitting their own node.
const RootOffset int64 = -1

// Renderer receives one frame of the tree. TreeNode reports whether the node is
// open; every TreeNode that returns true is closed by exactly one TreePop.
// ContextMenu attaches actions for addr to the most recently emitted item.
type Renderer interface {
	TreeNode(id, label string) bool
	TreePop()
	Text(line string)
	ContextMenu(addr memory.Address)
}

// Explorer builds the object tree for addresses read through an Inspector.
type Explorer struct {
	in     *rtti.Inspector
	layout *layout.Layout
}

// New returns an Explorer that reads metadata through in and its layout.
func New(in *rtti.Inspector) *Explorer {
	return &Explorer{in: in, layout: in.Layout()}
}

// Explore expands addr inline as a root. Invalid addresses render nothing.
func (e *Explorer) Explore(r Renderer, addr memory.Address) {
	e.handleAddress(r, addr, RootOffset)
}

func (e *Explorer) handleAddress(r Renderer, addr memory.Address, offset int64) {
	typ, ok := e.in.SafeGetType(addr)
	if !ok {
		return
	}

	shape := e.in.ShapeOf(addr)

	if offset != RootOffset {
		label, ok := e.label(addr, shape, typ)
		if !ok {
			return
		}

		open := r.TreeNode(nodeID(addr, offset), fmt.Sprintf("0x%X: %s", offset, label))
		r.ContextMenu(addr)
		if !open {
			return
		}
		defer r.TreePop()
	}

	switch shape {
	case rtti.ShapeContainer:
		e.handleContainer(r, addr)
	case rtti.ShapeComponent:
		e.handleComponent(r, addr)
	}

	e.handleType(r, typ)

	if r.TreeNode("autogen", "AutoGenerated Types") {
		e.scanSlots(r, addr, typ.Size)
		r.TreePop()
	}
}

// label picks a container's display name, falling back to the type name.
func (e *Explorer) label(addr memory.Address, shape rtti.Shape, typ *rtti.Type) (string, bool) {
	if shape == rtti.ShapeContainer {
		if name, ok := e.in.ContainerName(addr); ok {
			return name, true
		}
	}
	if typ.Named {
		return typ.Name, true
	}
	return "", false
}

func nodeID(addr memory.Address, offset int64) string {
	return fmt.Sprintf("%x@%x", uint64(addr), offset)
}

// handleType emits one nested node per named level of the inheritance chain.
func (e *Explorer) handleType(r Renderer, typ *rtti.Type) {
	opened := 0

	e.in.Hierarchy(typ, func(level *rtti.Type) bool {
		if !r.TreeNode("type:"+level.Name, level.Name) {
			return false
		}
		opened++

		r.Text(fmt.Sprintf("Size: 0x%X", level.Size))

		fields, ok := e.in.Fields(level)
		if !ok {
			return true
		}

		if r.TreeNode("fields", fmt.Sprintf("Fields: %d", fields.Count)) {
			for _, f := range fields.Fields {
				r.Text(fmt.Sprintf("%s %s", f.TypeName, f.Name))
			}
			r.TreePop()
		}
		return true
	})

	for i := 0; i < opened; i++ {
		r.TreePop()
	}
}

// SlotOffsets returns the word-aligned offsets probed by the generic slot scan:
// [WordSize, size-WordSize). The header word and the final word are skipped.
func SlotOffsets(size uint32) []int64 {
	var offsets []int64
	forEachSlot(size, func(o int64) bool {
		offsets = append(offsets, o)
		return true
	})
	return offsets
}

func forEachSlot(size uint32, fn func(o int64) bool) {
	for o := int64(memory.WordSize); o < int64(size)-memory.WordSize; o += memory.WordSize {
		if !fn(o) {
			return
		}
	}
}

// scanSlots treats every word of the object as a candidate reference. Any word
// that passes the header check is shown, including coincidental bit patterns.
// The scan ends at the first unreadable word: the rest of the declared size lies
// outside the object's mapping.
func (e *Explorer) scanSlots(r Renderer, addr memory.Address, size uint32) {
	forEachSlot(size, func(o int64) bool {
		ptr, err := e.in.View(addr.Offset(o)).Word()
		if err != nil {
			return false
		}
		e.handleAddress(r, ptr, o)
		return true
	})
}

func (e *Explorer) handleContainer(r Renderer, obj memory.Address) {
	l := e.layout.Container

	name, ok := e.in.ContainerName(obj)
	if !ok {
		name = "<unknown>"
	}
	r.Text("Name: " + name)

	e.treeOffset(r, obj, l.Transform, "Transform")
	e.treeOffset(r, obj, l.Folder, "Folder")
}

func (e *Explorer) handleComponent(r Renderer, obj memory.Address) {
	l := e.layout.Component

	e.treeOffset(r, obj, l.Owner, "Owner")
	e.treeOffset(r, obj, l.Child, "ChildComponent")
	e.treeOffset(r, obj, l.Prev, "PrevComponent")
	e.treeOffset(r, obj, l.Next, "NextComponent")
}

// treeOffset emits a labelled node for the relationship stored at obj+offset.
func (e *Explorer) treeOffset(r Renderer, obj memory.Address, offset int64, name string) {
	ptr := e.in.Pointer(obj, offset)
	if ptr.IsNull() {
		return
	}

	open := r.TreeNode(nodeID(ptr, offset), fmt.Sprintf("0x%X: %s", offset, name))
	r.ContextMenu(ptr)

	if open {
		e.handleAddress(r, ptr, RootOffset)
		r.TreePop()
	}
}
