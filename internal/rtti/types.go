package rtti

import (
	"fmt"

	"github.com/mabhi256/objexplorer/internal/memory"
)

// Type is a decoded snapshot of a type descriptor.
type Type struct {
	Addr   memory.Address
	Name   string
	Named  bool // false when the name pointer is null or unreadable
	Size   uint32
	Super  memory.Address
	Fields memory.Address
}

func (t *Type) String() string {
	if !t.Named {
		return fmt.Sprintf("<unnamed %s>", t.Addr)
	}
	return t.Name
}

// Field is one declared field. Only name and type name are known; no storage
// offset can be derived from the table.
type Field struct {
	Name     string
	TypeName string
}

// FieldTable is the declared field list of one hierarchy level. Count is the
// count the runtime declares, which may exceed len(Fields) when descriptors are
// null or the table is truncated.
type FieldTable struct {
	Count  int
	Fields []Field
}

// Level is one step of an inheritance chain.
type Level struct {
	Type      *Type
	Fields    FieldTable
	HasFields bool
}

// Shape is the closed set of object kinds with known relationship slots.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeContainer
	ShapeComponent
)

func (s Shape) String() string {
	switch s {
	case ShapeContainer:
		return "container"
	case ShapeComponent:
		return "component"
	default:
		return "unknown"
	}
}
