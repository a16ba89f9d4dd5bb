// Package layout describes where the inspected runtime keeps things: the header
// chain of a managed object, the type descriptor, the field table and the two
// entity shapes with known relationship slots.
package layout

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Object is the managed object header.
type Object struct {
	Info int64 `yaml:"info"` // -> ObjectInfo
}

type ObjectInfo struct {
	ClassInfo int64 `yaml:"class_info"` // -> ClassInfo
}

type ClassInfo struct {
	Type int64 `yaml:"type"` // -> TypeDescriptor
}

type TypeDescriptor struct {
	Name   int64 `yaml:"name"`   // char*
	Size   int64 `yaml:"size"`   // uint32
	Super  int64 `yaml:"super"`  // -> TypeDescriptor
	Fields int64 `yaml:"fields"` // -> FieldTable
}

// FieldTable is reached as fields -> variables -> data -> descriptors[num].
type FieldTable struct {
	Variables   int64 `yaml:"variables"`
	Data        int64 `yaml:"data"`
	Num         int64 `yaml:"num"` // int32, relative to variables
	Descriptors int64 `yaml:"descriptors"`
}

type FieldDescriptor struct {
	Name     int64 `yaml:"name"`      // char*
	TypeName int64 `yaml:"type_name"` // char*
}

// ManagedString is a runtime string object holding UTF-16LE code units inline.
type ManagedString struct {
	Length int64 `yaml:"length"` // int32, in code units
	Chars  int64 `yaml:"chars"`
}

// Container is the entity shape with a display name and two relationships.
type Container struct {
	Class     string `yaml:"class"`
	Name      int64  `yaml:"name"` // -> ManagedString
	Transform int64  `yaml:"transform"`
	Folder    int64  `yaml:"folder"`
}

// Component is the entity shape attached to a container. Child links form a
// possibly circular list.
type Component struct {
	Class string `yaml:"class"`
	Owner int64  `yaml:"owner"`
	Child int64  `yaml:"child"`
	Prev  int64  `yaml:"prev"`
	Next  int64  `yaml:"next"`
}

type Limits struct {
	MaxHierarchyDepth int `yaml:"max_hierarchy_depth"`
	MaxFields         int `yaml:"max_fields"`
	MaxNameLength     int `yaml:"max_name_length"`
	MaxStringLength   int `yaml:"max_string_length"`
	MaxComponentChain int `yaml:"max_component_chain"`
}

type Layout struct {
	Object          Object          `yaml:"object"`
	ObjectInfo      ObjectInfo      `yaml:"object_info"`
	ClassInfo       ClassInfo       `yaml:"class_info"`
	Type            TypeDescriptor  `yaml:"type"`
	FieldTable      FieldTable      `yaml:"field_table"`
	FieldDescriptor FieldDescriptor `yaml:"field_descriptor"`
	String          ManagedString   `yaml:"string"`
	Container       Container       `yaml:"container"`
	Component       Component       `yaml:"component"`
	Limits          Limits          `yaml:"limits"`
}

func Default() *Layout {
	return &Layout{
		Object:     Object{Info: 0x0},
		ObjectInfo: ObjectInfo{ClassInfo: 0x0},
		ClassInfo:  ClassInfo{Type: 0x28},
		Type: TypeDescriptor{
			Size:   0x10,
			Name:   0x18,
			Super:  0x28,
			Fields: 0x38,
		},
		FieldTable: FieldTable{
			Variables:   0x18,
			Data:        0x8,
			Num:         0x10,
			Descriptors: 0x0,
		},
		FieldDescriptor: FieldDescriptor{Name: 0x0, TypeName: 0x8},
		String:          ManagedString{Length: 0x10, Chars: 0x14},
		Container: Container{
			Class:     "via.GameObject",
			Transform: 0x18,
			Folder:    0x20,
			Name:      0x48,
		},
		Component: Component{
			Class: "via.Component",
			Owner: 0x10,
			Child: 0x18,
			Prev:  0x20,
			Next:  0x28,
		},
		Limits: Limits{
			MaxHierarchyDepth: 64,
			MaxFields:         4096,
			MaxNameLength:     256,
			MaxStringLength:   1024,
			MaxComponentChain: 4096,
		},
	}
}

// TypeHeaderSize is the number of bytes of a type descriptor that must be
// readable before it is decoded.
func (l *Layout) TypeHeaderSize() uint64 {
	end := max(l.Type.Name, l.Type.Super, l.Type.Fields) + 8
	return uint64(max(end, l.Type.Size+4))
}

func (l *Layout) Validate() error {
	offsets := map[string]int64{
		"object.info":            l.Object.Info,
		"object_info.class_info": l.ObjectInfo.ClassInfo,
		"class_info.type":        l.ClassInfo.Type,
		"type.name":              l.Type.Name,
		"type.size":              l.Type.Size,
		"type.super":             l.Type.Super,
		"type.fields":            l.Type.Fields,
		"container.name":         l.Container.Name,
		"container.transform":    l.Container.Transform,
		"container.folder":       l.Container.Folder,
		"component.owner":        l.Component.Owner,
		"component.child":        l.Component.Child,
		"component.prev":         l.Component.Prev,
		"component.next":         l.Component.Next,
	}
	for name, off := range offsets {
		if off < 0 {
			return fmt.Errorf("offset %s must not be negative (got %d)", name, off)
		}
	}

	if l.Container.Class == "" || l.Component.Class == "" {
		return fmt.Errorf("container and component class names are required")
	}

	if l.Limits.MaxHierarchyDepth <= 0 || l.Limits.MaxFields <= 0 ||
		l.Limits.MaxNameLength <= 0 || l.Limits.MaxStringLength <= 0 ||
		l.Limits.MaxComponentChain <= 0 {
		return fmt.Errorf("all limits must be positive")
	}

	return nil
}

// Load reads a layout file. Keys missing from the file keep their default values.
func Load(path string) (*Layout, error) {
	l := Default()
	if path == "" {
		return l, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(l); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse layout %s: %w", path, err)
	}

	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout %s: %w", path, err)
	}

	return l, nil
}

func (l *Layout) Marshal() ([]byte, error) {
	return yaml.Marshal(l)
}
