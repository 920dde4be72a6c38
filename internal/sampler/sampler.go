// Package sampler enumerates the host's established TCP connections and
// resolves owning process names.
package sampler

import (
	"fmt"

	gnet "github.com/shirou/gopsutil/v3/net"
)

const statusEstablished = "ESTABLISHED"

// Connection is one established connection observed in a sample. Produced
// fresh each polling cycle and never mutated.
type Connection struct {
	LocalPort  uint32
	RemoteIP   string
	RemotePort uint32
	// Pid is 0 when the owning process could not be determined.
	Pid int32
}

// Endpoint returns the remote ip:port identity used for alert deduplication.
// Two connections with the same endpoint are the same alertable entity even
// when local port or owning process differ.
func (c Connection) Endpoint() string {
	return fmt.Sprintf("%s:%d", c.RemoteIP, c.RemotePort)
}

// Sampler produces the current set of established connections.
type Sampler interface {
	Sample() ([]Connection, error)
}

// SystemSampler reads the live connection table through gopsutil.
type SystemSampler struct{}

func NewSystemSampler() *SystemSampler {
	return &SystemSampler{}
}

// Sample returns the TCP connections currently in the ESTABLISHED state.
func (s *SystemSampler) Sample() ([]Connection, error) {
	stats, err := gnet.Connections("tcp")
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate connections: %w", err)
	}

	conns := make([]Connection, 0, len(stats))
	for _, st := range stats {
		if st.Status != statusEstablished {
			continue
		}
		if st.Raddr.IP == "" || st.Laddr.IP == "" {
			continue
		}
		conns = append(conns, Connection{
			LocalPort:  st.Laddr.Port,
			RemoteIP:   st.Raddr.IP,
			RemotePort: st.Raddr.Port,
			Pid:        st.Pid,
		})
	}
	return conns, nil
}
