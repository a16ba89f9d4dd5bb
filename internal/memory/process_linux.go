//go:build linux

package memory

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Process reads the memory of a live process with process_vm_readv. The target is
// never stopped; reads race with the target and callers must tolerate torn values.
type Process struct {
	pid int
}

func OpenProcess(pid int) (*Process, error) {
	if pid <= 0 {
		return nil, fmt.Errorf("invalid pid %d", pid)
	}

	p := &Process{pid: pid}

	if err := unix.Kill(pid, 0); err != nil {
		return nil, fmt.Errorf("cannot attach to pid %d: %w", pid, err)
	}
	return p, nil
}

func (p *Process) PID() int {
	return p.pid
}

func (p *Process) ReadMemory(addr Address, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}

	local := []unix.Iovec{{Base: &buf[0]}}
	local[0].SetLen(len(buf))
	remote := []unix.RemoteIovec{{Base: uintptr(addr), Len: len(buf)}}

	n, err := unix.ProcessVMReadv(p.pid, local, remote, 0)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", addr, ErrUnmapped)
	}
	if n != len(buf) {
		return n, ErrShortRead
	}
	return n, nil
}

func (p *Process) IsReadable(addr Address, size uint64) bool {
	if addr.IsNull() || size == 0 {
		return false
	}

	last := addr.Offset(int64(size - 1))
	if last < addr {
		return false
	}

	// Probe the first and last byte of the range; pages in between are checked by
	// the read that follows.
	var probe [1]byte
	local := []unix.Iovec{{Base: &probe[0]}}
	local[0].SetLen(1)
	for _, at := range []Address{addr, last} {
		remote := []unix.RemoteIovec{{Base: uintptr(at), Len: 1}}
		n, err := unix.ProcessVMReadv(p.pid, local, remote, 0)
		if err != nil || n != 1 {
			return false
		}
	}
	return true
}
