package memory

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrUnmapped is returned when an address is not backed by readable memory.
	ErrUnmapped = errors.New("address not mapped")

	// ErrNull is returned when a read is attempted through a null address.
	ErrNull = errors.New("null address")

	// ErrShortRead is returned when fewer bytes than requested could be read.
	ErrShortRead = errors.New("short read")
)

// Space is a readable view of a foreign address space.
type Space interface {
	// ReadMemory copies len(buf) bytes starting at addr into buf and reports how
	// many bytes were copied. A partial read returns a non-nil error.
	ReadMemory(addr Address, buf []byte) (int, error)

	// IsReadable reports whether [addr, addr+size) can be read in full.
	IsReadable(addr Address, size uint64) bool
}

// View is a typed window onto a single address. Every accessor is a fallible
// probe: nothing is dereferenced without going through the Space.
type View struct {
	space Space
	addr  Address
}

func NewView(space Space, addr Address) View {
	return View{space: space, addr: addr}
}

func (v View) Addr() Address {
	return v.addr
}

// Offset moves the view by n bytes. Pure arithmetic.
func (v View) Offset(n int64) View {
	return View{space: v.space, addr: v.addr.Offset(n)}
}

// At repositions the view to an absolute address in the same space.
func (v View) At(addr Address) View {
	return View{space: v.space, addr: addr}
}

func (v View) Bytes(n int) ([]byte, error) {
	if v.space == nil {
		return nil, ErrUnmapped
	}
	if v.addr.IsNull() {
		return nil, ErrNull
	}

	buf := make([]byte, n)
	read, err := v.space.ReadMemory(v.addr, buf)
	if err != nil {
		return nil, fmt.Errorf("read %d bytes at %s: %w", n, v.addr, err)
	}
	if read != n {
		return nil, fmt.Errorf("read %d of %d bytes at %s: %w", read, n, v.addr, ErrShortRead)
	}
	return buf, nil
}

// Word reads a pointer-sized little-endian value.
func (v View) Word() (Address, error) {
	b, err := v.Bytes(WordSize)
	if err != nil {
		return 0, err
	}
	return Address(binary.LittleEndian.Uint64(b)), nil
}

func (v View) Uint32() (uint32, error) {
	b, err := v.Bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (v View) Int32() (int32, error) {
	u, err := v.Uint32()
	return int32(u), err
}

// CString reads a NUL-terminated string of at most max bytes. Reads stop at the
// first unreadable byte, so a string running off the end of a mapping is truncated
// rather than failing.
func (v View) CString(max int) (string, error) {
	if v.addr.IsNull() {
		return "", ErrNull
	}

	var out []byte
	const chunk = 64
	for len(out) < max {
		n := min(chunk, max-len(out))
		b, err := v.Offset(int64(len(out))).Bytes(n)
		if err != nil {
			// fall back to byte-wise reads near a mapping boundary
			b, err = v.Offset(int64(len(out))).Bytes(1)
			if err != nil {
				if len(out) == 0 {
					return "", err
				}
				return string(out), nil
			}
		}
		if i := bytes.IndexByte(b, 0); i >= 0 {
			return string(append(out, b[:i]...)), nil
		}
		out = append(out, b...)
	}
	return string(out), nil
}
