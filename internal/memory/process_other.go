//go:build !linux

package memory

import (
	"fmt"
	"runtime"
)

// Process is only implemented on Linux.
type Process struct {
	pid int
}

func OpenProcess(pid int) (*Process, error) {
	return nil, fmt.Errorf("live process inspection is not supported on %s", runtime.GOOS)
}

func (p *Process) PID() int {
	return p.pid
}

func (p *Process) ReadMemory(addr Address, buf []byte) (int, error) {
	return 0, ErrUnmapped
}

func (p *Process) IsReadable(addr Address, size uint64) bool {
	return false
}
