package rtti

import (
	"github.com/mabhi256/objexplorer/internal/memory"
)

// ReadType decodes the type descriptor at addr.
func (in *Inspector) ReadType(addr memory.Address) (*Type, bool) {
	l := in.layout.Type
	if addr.IsNull() || !in.space.IsReadable(addr, in.layout.TypeHeaderSize()) {
		return nil, false
	}

	v := in.View(addr)
	size, err := v.Offset(l.Size).Uint32()
	if err != nil {
		return nil, false
	}

	t := &Type{
		Addr:   addr,
		Size:   size,
		Super:  in.Pointer(addr, l.Super),
		Fields: in.Pointer(addr, l.Fields),
	}

	if namePtr, ok := in.hop(addr, l.Name); ok {
		name, err := v.At(namePtr).CString(in.layout.Limits.MaxNameLength)
		if err == nil {
			t.Name = name
			t.Named = true
		}
	}

	return t, true
}

// Super decodes t's parent type.
func (in *Inspector) Super(t *Type) (*Type, bool) {
	if t == nil || t.Super.IsNull() {
		return nil, false
	}
	return in.ReadType(t.Super)
}

// Hierarchy calls visit for t and then each super type. An unnamed level is
// terminal and is not visited. The walk also stops at a null or unreadable super
// link, after the layout's depth limit, or when visit returns false.
func (in *Inspector) Hierarchy(t *Type, visit func(*Type) bool) {
	for depth := 0; t != nil && depth < in.layout.Limits.MaxHierarchyDepth; depth++ {
		if !t.Named {
			return
		}
		if !visit(t) {
			return
		}

		next, ok := in.Super(t)
		if !ok {
			return
		}
		t = next
	}
}

// ListHierarchy collects every named level of t's inheritance chain with its fields.
func (in *Inspector) ListHierarchy(t *Type) []Level {
	var levels []Level
	in.Hierarchy(t, func(level *Type) bool {
		fields, ok := in.Fields(level)
		levels = append(levels, Level{Type: level, Fields: fields, HasFields: ok})
		return true
	})
	return levels
}

// Fields reads t's declared field table. A missing table is not an error: it
// reports false and an empty table.
func (in *Inspector) Fields(t *Type) (FieldTable, bool) {
	if t == nil {
		return FieldTable{}, false
	}

	ft := in.layout.FieldTable
	fd := in.layout.FieldDescriptor

	table, ok := in.hop(t.Addr, in.layout.Type.Fields)
	if !ok {
		return FieldTable{}, false
	}
	vars, ok := in.hop(table, ft.Variables)
	if !ok {
		return FieldTable{}, false
	}
	data, ok := in.hop(vars, ft.Data)
	if !ok {
		return FieldTable{}, false
	}

	num, err := in.View(vars).Offset(ft.Num).Int32()
	if err != nil || num < 0 {
		return FieldTable{}, false
	}

	result := FieldTable{Count: int(num)}
	limit := min(int(num), in.layout.Limits.MaxFields)
	maxName := in.layout.Limits.MaxNameLength

	for i := 0; i < limit; i++ {
		slot := data.Offset(ft.Descriptors + int64(i)*memory.WordSize)
		if !in.space.IsReadable(slot, memory.WordSize) {
			break
		}

		desc, ok := in.hop(slot, 0)
		if !ok {
			continue
		}

		var f Field
		if p, ok := in.hop(desc, fd.Name); ok {
			f.Name, _ = in.View(p).CString(maxName)
		}
		if p, ok := in.hop(desc, fd.TypeName); ok {
			f.TypeName, _ = in.View(p).CString(maxName)
		}
		result.Fields = append(result.Fields, f)
	}

	return result, true
}
