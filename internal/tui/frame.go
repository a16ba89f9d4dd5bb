package tui

import (
	"strings"

	"github.com/mabhi256/objexplorer/internal/memory"
)

type rowKind int

const (
	rowNode rowKind = iota
	rowText
)

// row is one visible line of the tree.
type row struct {
	path    string
	depth   int
	kind    rowKind
	label   string
	open    bool
	addr    memory.Address
	hasAddr bool
}

// treeState remembers which nodes are open across frames. Nodes are closed
// until the user opens them.
type treeState struct {
	open map[string]bool
}

func newTreeState() *treeState {
	return &treeState{open: make(map[string]bool)}
}

func (s *treeState) isOpen(path string) bool {
	return s.open[path]
}

func (s *treeState) setOpen(path string, open bool) {
	if open {
		s.open[path] = true
		return
	}
	delete(s.open, path)
}

func (s *treeState) toggle(path string) {
	s.setOpen(path, !s.open[path])
}

// frame records one immediate-mode pass over the tree. Node identity is the
// path of ids from the root, so the same object reached twice gets two
// independent nodes.
type frame struct {
	state *treeState
	stack []string
	depth int
	rows  []row
}

func newFrame(state *treeState) *frame {
	return &frame{state: state}
}

func (f *frame) path(id string) string {
	if len(f.stack) == 0 {
		return id
	}
	return strings.Join(f.stack, "/") + "/" + id
}

func (f *frame) TreeNode(id, label string) bool {
	p := f.path(id)
	open := f.state.isOpen(p)

	f.rows = append(f.rows, row{
		path:  p,
		depth: f.depth,
		kind:  rowNode,
		label: label,
		open:  open,
	})

	if open {
		f.stack = append(f.stack, id)
		f.depth++
	}
	return open
}

func (f *frame) TreePop() {
	if f.depth == 0 {
		return
	}
	f.stack = f.stack[:len(f.stack)-1]
	f.depth--
}

func (f *frame) Text(line string) {
	f.rows = append(f.rows, row{
		path:  f.path("#" + line),
		depth: f.depth,
		kind:  rowText,
		label: line,
	})
}

func (f *frame) ContextMenu(addr memory.Address) {
	if len(f.rows) == 0 {
		return
	}
	last := &f.rows[len(f.rows)-1]
	last.addr = addr
	last.hasAddr = true
}

// PushID scopes following ids without emitting a row or changing the depth.
func (f *frame) PushID(id string) {
	f.stack = append(f.stack, id)
}

func (f *frame) PopID() {
	if len(f.stack) > 0 {
		f.stack = f.stack[:len(f.stack)-1]
	}
}

// balanced reports whether every opened node was popped.
func (f *frame) balanced() bool {
	return f.depth == 0 && len(f.stack) == 0
}
