package rtti

import (
	"golang.org/x/text/encoding/unicode"

	"github.com/mabhi256/objexplorer/internal/memory"
)

var utf16Decoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// ManagedString decodes the runtime string object at addr. Strings longer than
// the layout's limit are truncated.
func (in *Inspector) ManagedString(addr memory.Address) (string, bool) {
	if addr.IsNull() {
		return "", false
	}

	l := in.layout.String
	n, err := in.View(addr).Offset(l.Length).Int32()
	if err != nil || n < 0 {
		return "", false
	}

	n = min(n, int32(in.layout.Limits.MaxStringLength))
	if n == 0 {
		return "", true
	}

	raw, err := in.View(addr).Offset(l.Chars).Bytes(int(n) * 2)
	if err != nil {
		return "", false
	}

	decoded, err := utf16Decoder.NewDecoder().Bytes(raw)
	if err != nil {
		return "", false
	}
	return string(decoded), true
}

// ContainerName resolves the display name of a container entity.
func (in *Inspector) ContainerName(obj memory.Address) (string, bool) {
	ptr, ok := in.hop(obj, in.layout.Container.Name)
	if !ok {
		return "", false
	}
	return in.ManagedString(ptr)
}
