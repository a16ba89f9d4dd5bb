package memory

import (
	"fmt"
	"strconv"
	"strings"
)

// WordSize is the pointer width of the inspected process. Only 64-bit targets are supported.
const WordSize = 8

// Address is a location in the inspected process. It is borrowed: nothing here owns
// or pins the memory behind it.
type Address uint64

func (a Address) IsNull() bool {
	return a == 0
}

// Offset returns a+n. It does not validate anything.
func (a Address) Offset(n int64) Address {
	return Address(uint64(a) + uint64(n))
}

// Hex formats the address as lowercase hexadecimal without a prefix, e.g. "deadbeef".
func (a Address) Hex() string {
	return strconv.FormatUint(uint64(a), 16)
}

func (a Address) String() string {
	return fmt.Sprintf("0x%x", uint64(a))
}

// ParseAddress parses a hexadecimal address with or without a 0x prefix.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return 0, fmt.Errorf("empty address")
	}

	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address '%s': %w", s, err)
	}
	return Address(v), nil
}
