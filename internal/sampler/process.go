package sampler

import (
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// UnknownProcess is reported when a pid cannot be resolved to a name.
const UnknownProcess = "Unknown"

// nameCacheTTL bounds how long a resolved name may outlive its process, so a
// recycled pid is not reported with the previous owner's name for long.
const nameCacheTTL = time.Minute

// ProcessNames resolves a process identifier to a human-readable name.
// Implementations never fail the caller; unresolvable pids yield
// UnknownProcess.
type ProcessNames interface {
	Name(pid int32) string
}

type nameCacheEntry struct {
	name    string
	expires time.Time
}

// SystemProcessNames resolves names through gopsutil with a short-lived cache
// so a pid owning many connections is only inspected once per sweep.
type SystemProcessNames struct {
	cache map[int32]nameCacheEntry
	now   func() time.Time
}

func NewSystemProcessNames() *SystemProcessNames {
	return &SystemProcessNames{
		cache: make(map[int32]nameCacheEntry),
		now:   time.Now,
	}
}

// Name returns the executable name for pid, or UnknownProcess when the
// process has exited or cannot be inspected.
func (p *SystemProcessNames) Name(pid int32) string {
	if pid <= 0 {
		return UnknownProcess
	}

	now := p.now()
	if entry, ok := p.cache[pid]; ok && now.Before(entry.expires) {
		return entry.name
	}

	name := UnknownProcess
	if proc, err := process.NewProcess(pid); err == nil {
		if n, err := proc.Name(); err == nil && n != "" {
			name = n
		}
	}

	p.cache[pid] = nameCacheEntry{name: name, expires: now.Add(nameCacheTTL)}
	return name
}
