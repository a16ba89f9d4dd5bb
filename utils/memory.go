package utils

import "fmt"

// MemorySize represents a memory size in bytes
type MemorySize int64

const (
	Byte MemorySize = 1
	KB   MemorySize = 1024 * Byte
	MB   MemorySize = 1024 * KB
	GB   MemorySize = 1024 * MB
	TB   MemorySize = 1024 * GB
)

// String returns a human-readable representation of the memory size
func (m MemorySize) String() string {
	if m <= 0 {
		return "0B"
	}

	units := []struct {
		size MemorySize
		unit string
	}{
		{TB, "T"}, {GB, "G"}, {MB, "M"}, {KB, "K"},
	}

	for _, u := range units {
		if m < u.size {
			continue
		}
		val := float64(m) / float64(u.size)
		if m%u.size == 0 {
			return fmt.Sprintf("%.0f%s", val, u.unit)
		}
		return fmt.Sprintf("%.2f%s", val, u.unit)
	}
	return fmt.Sprintf("%dB", m)
}
