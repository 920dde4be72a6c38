// Package monitor drives the sample, classify, alert, reconcile cycle.
package monitor

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"bepa/internal/netrange"
	"bepa/internal/sampler"
	"bepa/internal/tracker"
)

// AlertDispatcher receives every newly-armed alert event.
type AlertDispatcher interface {
	Dispatch(alert tracker.Alert)
}

// Monitor is the single actor of the system. It owns the tracker and is the
// sole driver of time; the matcher and tracker stay passive.
type Monitor struct {
	sampler    sampler.Sampler
	matcher    *netrange.Matcher
	tracker    *tracker.Tracker
	dispatcher AlertDispatcher
	interval   time.Duration
	now        func() time.Time

	// onCycle, when set, is invoked after each completed cycle. Test hook.
	onCycle func()
}

func New(s sampler.Sampler, m *netrange.Matcher, d AlertDispatcher, interval time.Duration) *Monitor {
	return &Monitor{
		sampler:    s,
		matcher:    m,
		tracker:    tracker.New(),
		dispatcher: d,
		interval:   interval,
		now:        time.Now,
	}
}

// Run polls until ctx is cancelled. A sampling failure costs one cycle and is
// logged; cancellation returns nil after the current cycle completes.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.cycle()

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping network monitor")
			return nil
		case <-ticker.C:
			m.cycle()
		}
	}
}

// cycle performs one sample pass. Alert-memory mutations happen only here,
// inside Observe and Reconcile, so cancellation between cycles can never
// leave partial state.
func (m *Monitor) cycle() {
	defer func() {
		if m.onCycle != nil {
			m.onCycle()
		}
	}()

	conns, err := m.sampler.Sample()
	if err != nil {
		log.Error("Failed to sample connections, skipping cycle", "error", err)
		return
	}

	now := m.now()
	for _, conn := range conns {
		c := m.matcher.ClassifyAddr(conn.RemoteIP)
		if c.Verdict != netrange.Targeted {
			continue
		}
		if alert, fired := m.tracker.Observe(conn, c.Range, now); fired {
			m.dispatcher.Dispatch(alert)
		}
	}

	// Reconcile against every established connection, not only targeted
	// ones, so a closed connection re-arms its endpoint even if it would
	// now classify differently.
	m.tracker.Reconcile(tracker.PresentSet(conns))
}

// Tracker exposes the alert memory for the scan command and tests.
func (m *Monitor) Tracker() *tracker.Tracker {
	return m.tracker
}
