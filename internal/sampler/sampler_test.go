package sampler

import (
	"testing"
	"time"
)

func TestConnectionEndpoint(t *testing.T) {
	c := Connection{LocalPort: 50000, RemoteIP: "192.168.1.5", RemotePort: 22, Pid: 99}
	if got := c.Endpoint(); got != "192.168.1.5:22" {
		t.Fatalf("Endpoint returned %s, want 192.168.1.5:22", got)
	}
}

func TestProcessNamesUnknownPid(t *testing.T) {
	names := NewSystemProcessNames()

	if got := names.Name(0); got != UnknownProcess {
		t.Fatalf("Name(0) returned %s, want %s", got, UnknownProcess)
	}
	if got := names.Name(-1); got != UnknownProcess {
		t.Fatalf("Name(-1) returned %s, want %s", got, UnknownProcess)
	}
}

func TestProcessNamesCachesLookups(t *testing.T) {
	names := NewSystemProcessNames()
	base := time.Now()
	names.now = func() time.Time { return base }

	// A pid that certainly does not exist resolves to the sentinel and the
	// result is cached until the entry expires.
	const ghost = int32(1 << 30)
	if got := names.Name(ghost); got != UnknownProcess {
		t.Fatalf("Name returned %s, want %s", got, UnknownProcess)
	}
	entry, ok := names.cache[ghost]
	if !ok {
		t.Fatal("lookup result was not cached")
	}
	if !entry.expires.After(base) {
		t.Fatal("cache entry expired immediately")
	}

	// An expired entry is looked up again rather than served stale.
	names.now = func() time.Time { return base.Add(2 * nameCacheTTL) }
	if got := names.Name(ghost); got != UnknownProcess {
		t.Fatalf("Name returned %s after expiry, want %s", got, UnknownProcess)
	}
	if got := names.cache[ghost].expires; !got.After(base.Add(nameCacheTTL)) {
		t.Fatal("expired entry was not refreshed")
	}
}
