// Package tracker implements the per-endpoint alert lifecycle: an endpoint
// alerts once when it first appears inside a target range and stays silent
// until it has disappeared from a sample and come back.
package tracker

import (
	"strconv"
	"time"

	"bepa/internal/netrange"
	"bepa/internal/sampler"
)

// Alert is the event emitted when an endpoint transitions to alerted.
type Alert struct {
	Timestamp    time.Time
	RemoteIP     string
	RemotePort   uint32
	LocalPort    uint32
	MatchedRange string
	Pid          int32
}

// Endpoint returns the remote ip:port identity of the alert.
func (a Alert) Endpoint() string {
	return a.RemoteIP + ":" + strconv.FormatUint(uint64(a.RemotePort), 10)
}

// Tracker owns the alert memory. It is the only long-lived mutable state in
// the core and must only be touched from the monitoring loop.
type Tracker struct {
	alerted map[string]struct{}
}

func New() *Tracker {
	return &Tracker{alerted: make(map[string]struct{})}
}

// Observe runs the unseen-to-alerted transition for one targeted connection.
// It returns an Alert and true exactly when the endpoint was not already in
// memory; the endpoint is then remembered until it drops out of a sample.
func (t *Tracker) Observe(conn sampler.Connection, matched netrange.Range, now time.Time) (Alert, bool) {
	key := conn.Endpoint()
	if _, seen := t.alerted[key]; seen {
		return Alert{}, false
	}
	t.alerted[key] = struct{}{}

	return Alert{
		Timestamp:    now,
		RemoteIP:     conn.RemoteIP,
		RemotePort:   conn.RemotePort,
		LocalPort:    conn.LocalPort,
		MatchedRange: matched.String(),
		Pid:          conn.Pid,
	}, true
}

// Reconcile intersects the alert memory with the endpoints present in the
// latest sample. present must cover every established connection, not only
// targeted ones, so a key is dropped the moment its connection closes even if
// it would no longer classify as targeted. Idempotent for a fixed present set.
func (t *Tracker) Reconcile(present map[string]struct{}) {
	for key := range t.alerted {
		if _, ok := present[key]; !ok {
			delete(t.alerted, key)
		}
	}
}

// PresentSet builds the endpoint set of a sample for Reconcile.
func PresentSet(conns []sampler.Connection) map[string]struct{} {
	present := make(map[string]struct{}, len(conns))
	for _, c := range conns {
		present[c.Endpoint()] = struct{}{}
	}
	return present
}

// Alerted reports whether an endpoint is currently in the alert memory.
func (t *Tracker) Alerted(endpoint string) bool {
	_, ok := t.alerted[endpoint]
	return ok
}

// Len returns the number of remembered endpoints.
func (t *Tracker) Len() int {
	return len(t.alerted)
}
