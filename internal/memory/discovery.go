package memory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// ProcessInfo describes a candidate target process.
type ProcessInfo struct {
	PID  int
	Name string
	User string
	Exe  string
	RSS  uint64 // resident set size in bytes, 0 if unknown
}

// DiscoverProcesses lists running processes whose name contains filter
// (case-insensitive). An empty filter matches everything.
func DiscoverProcesses(filter string) ([]ProcessInfo, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	filter = strings.ToLower(strings.TrimSpace(filter))

	var infos []ProcessInfo
	for _, p := range procs {
		name, err := p.Name()
		if err != nil || name == "" {
			// Process exited or is not accessible
			continue
		}

		if filter != "" && !strings.Contains(strings.ToLower(name), filter) {
			continue
		}

		info := ProcessInfo{PID: int(p.Pid), Name: name}
		if user, err := p.Username(); err == nil {
			info.User = user
		}
		if exe, err := p.Exe(); err == nil {
			info.Exe = exe
		}
		if mem, err := p.MemoryInfo(); err == nil && mem != nil {
			info.RSS = mem.RSS
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].PID < infos[j].PID
	})

	return infos, nil
}

// FindProcess resolves a process name to exactly one PID.
func FindProcess(name string) (ProcessInfo, error) {
	infos, err := DiscoverProcesses(name)
	if err != nil {
		return ProcessInfo{}, err
	}

	switch len(infos) {
	case 0:
		return ProcessInfo{}, fmt.Errorf("no process matching '%s'", name)
	case 1:
		return infos[0], nil
	default:
		pids := make([]string, len(infos))
		for i, info := range infos {
			pids[i] = fmt.Sprintf("%d (%s)", info.PID, info.Name)
		}
		return ProcessInfo{}, fmt.Errorf("'%s' matches %d processes: %s", name, len(infos), strings.Join(pids, ", "))
	}
}
