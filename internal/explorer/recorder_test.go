package explorer

import (
	"strings"
	"testing"

	"github.com/mabhi256/objexplorer/internal/memory"
)

// recorder is an in-memory Renderer. Nodes are open when their path is listed in
// open, or when openAll is set and the nesting is below maxDepth.
type recorder struct {
	open     map[string]bool
	openAll  bool
	maxDepth int

	stack  []string
	lines  []string
	labels []string
	menus  []memory.Address
	opened int
	popped int
}

func newRecorder(open ...string) *recorder {
	r := &recorder{open: map[string]bool{}, maxDepth: 8}
	for _, p := range open {
		r.open[p] = true
	}
	return r
}

func (r *recorder) path(id string) string {
	return strings.Join(append(append([]string{}, r.stack...), id), "/")
}

func (r *recorder) TreeNode(id, label string) bool {
	p := r.path(id)
	r.lines = append(r.lines, strings.Repeat("  ", len(r.stack))+"+ "+label)
	r.labels = append(r.labels, label)

	isOpen := r.open[p] || (r.openAll && len(r.stack) < r.maxDepth)
	if isOpen {
		r.stack = append(r.stack, id)
		r.opened++
	}
	return isOpen
}

func (r *recorder) TreePop() {
	r.popped++
	if len(r.stack) > 0 {
		r.stack = r.stack[:len(r.stack)-1]
	}
}

func (r *recorder) Text(line string) {
	r.lines = append(r.lines, strings.Repeat("  ", len(r.stack))+line)
}

func (r *recorder) ContextMenu(addr memory.Address) {
	r.menus = append(r.menus, addr)
}

func (r *recorder) assertBalanced(t *testing.T) {
	t.Helper()
	if r.opened != r.popped || len(r.stack) != 0 {
		t.Fatalf("unbalanced tree: %d opened, %d popped, stack %v", r.opened, r.popped, r.stack)
	}
}

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) WriteAll(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

type fakeLog struct {
	lines []string
}

func (l *fakeLog) LogLine(line string) {
	l.lines = append(l.lines, line)
}
