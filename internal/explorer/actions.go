package explorer

import (
	"fmt"

	"github.com/mabhi256/objexplorer/internal/memory"
)

type Action int

const (
	ActionCopyAddress Action = iota
	ActionLogHierarchy
)

func (a Action) String() string {
	switch a {
	case ActionCopyAddress:
		return "Copy"
	case ActionLogHierarchy:
		return "Log Hierarchy"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Clipboard is the system clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

// LogSink accepts formatted log lines.
type LogSink interface {
	LogLine(line string)
}

// Sinks are the outputs context actions write to.
type Sinks struct {
	Clipboard Clipboard
	Log       LogSink
}

// Actions lists the context actions available for addr. Copy is always offered;
// Log Hierarchy only for validated components.
func (e *Explorer) Actions(addr memory.Address) []Action {
	actions := []Action{ActionCopyAddress}
	if e.isComponent(addr) {
		actions = append(actions, ActionLogHierarchy)
	}
	return actions
}

func (e *Explorer) isComponent(addr memory.Address) bool {
	return e.in.IsManagedObject(addr) && e.in.IsA(addr, e.layout.Component.Class)
}

func (e *Explorer) Run(action Action, addr memory.Address, sinks Sinks) error {
	switch action {
	case ActionCopyAddress:
		return CopyAddress(sinks.Clipboard, addr)
	case ActionLogHierarchy:
		if !e.isComponent(addr) {
			return fmt.Errorf("%s is not a component", addr)
		}
		e.LogHierarchy(sinks.Log, addr)
		return nil
	default:
		return fmt.Errorf("unknown action %s", action)
	}
}

// CopyAddress writes addr to the clipboard as lowercase hex without a prefix.
func CopyAddress(cb Clipboard, addr memory.Address) error {
	if cb == nil {
		return fmt.Errorf("no clipboard available")
	}
	if err := cb.WriteAll(addr.Hex()); err != nil {
		return fmt.Errorf("failed to copy address: %w", err)
	}
	return nil
}

// LogHierarchy walks the child-component list starting at comp and logs one line
// per component with a resolvable type. The list may be circular: the walk ends
// when the next child is comp itself. It also ends on a null or unreadable link,
// and after the layout's chain limit for rings that never return to comp.
// It returns the number of lines written.
func (e *Explorer) LogHierarchy(sink LogSink, comp memory.Address) int {
	l := e.layout.Component
	lines := 0

	obj := comp
	for visited := 0; !obj.IsNull() && visited < e.layout.Limits.MaxComponentChain; visited++ {
		if t, ok := e.in.SafeGetType(obj); ok && t.Named {
			if owner := e.in.Pointer(obj, l.Owner); owner.IsNull() {
				sink.LogLine(fmt.Sprintf("%s (%s)", t.Name, obj.Hex()))
			} else {
				sink.LogLine(fmt.Sprintf("[%s] %s (%s)", e.ownerLabel(owner), t.Name, obj.Hex()))
			}
			lines++
		}

		child := e.in.Pointer(obj, l.Child)
		if child == comp {
			break
		}
		obj = child
	}

	return lines
}

// ownerLabel names a component's owner: its display name, else its type name,
// else its address.
func (e *Explorer) ownerLabel(owner memory.Address) string {
	if name, ok := e.in.ContainerName(owner); ok && name != "" {
		return name
	}
	if name, ok := e.in.TypeName(owner); ok {
		return name
	}
	return owner.Hex()
}
