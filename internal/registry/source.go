package registry

import (
	"fmt"

	"github.com/mabhi256/objexplorer/internal/memory"
)

// Source provides the addresses of globally rooted objects.
type Source interface {
	Refresh() error
	Objects() []memory.Address
}

// StaticSource is a fixed list of roots, typically given on the command line.
type StaticSource struct {
	addrs []memory.Address
}

func NewStaticSource(addrs ...memory.Address) *StaticSource {
	return &StaticSource{addrs: addrs}
}

func (s *StaticSource) Refresh() error {
	return nil
}

func (s *StaticSource) Objects() []memory.Address {
	return append([]memory.Address(nil), s.addrs...)
}

// TableSource reads count pointer slots starting at table in the target. Null
// slots are skipped. A failed refresh keeps the previous list.
type TableSource struct {
	space   memory.Space
	table   memory.Address
	count   int
	objects []memory.Address
}

func NewTableSource(space memory.Space, table memory.Address, count int) *TableSource {
	return &TableSource{space: space, table: table, count: count}
}

func (s *TableSource) Refresh() error {
	if s.table.IsNull() || s.count <= 0 {
		s.objects = nil
		return nil
	}

	view := memory.NewView(s.space, s.table)
	objects := make([]memory.Address, 0, s.count)

	for i := 0; i < s.count; i++ {
		ptr, err := view.Offset(int64(i) * memory.WordSize).Word()
		if err != nil {
			return fmt.Errorf("failed to read singleton slot %d: %w", i, err)
		}
		if !ptr.IsNull() {
			objects = append(objects, ptr)
		}
	}

	s.objects = objects
	return nil
}

func (s *TableSource) Objects() []memory.Address {
	return append([]memory.Address(nil), s.objects...)
}

// MultiSource concatenates several sources in order.
type MultiSource []Source

func (m MultiSource) Refresh() error {
	var firstErr error
	for _, s := range m {
		if err := s.Refresh(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m MultiSource) Objects() []memory.Address {
	var out []memory.Address
	for _, s := range m {
		out = append(out, s.Objects()...)
	}
	return out
}
