package notify

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"bepa/internal/geolite"
	"bepa/internal/sampler"
	"bepa/internal/tracker"
)

const alertTitle = "Bepa Alert"

// Dispatcher renders alert events: one structured log line per alert plus a
// fan-out to every configured sink.
type Dispatcher struct {
	names    sampler.ProcessNames
	enricher *geolite.Enricher
	sinks    []Sink
	// resolveNames toggles reverse-DNS enrichment of the log line.
	resolveNames bool
}

func NewDispatcher(names sampler.ProcessNames, enricher *geolite.Enricher, resolveNames bool, sinks ...Sink) *Dispatcher {
	return &Dispatcher{
		names:        names,
		enricher:     enricher,
		sinks:        sinks,
		resolveNames: resolveNames,
	}
}

// Dispatch logs the alert and forwards it to every sink. Sink failures are
// logged and swallowed; the alert counts as fired either way.
func (d *Dispatcher) Dispatch(alert tracker.Alert) {
	processName := sampler.UnknownProcess
	if d.names != nil {
		processName = d.names.Name(alert.Pid)
	}

	fields := []interface{}{
		"remote", alert.Endpoint(),
		"range", alert.MatchedRange,
		"process", processName,
		"pid", alert.Pid,
		"local_port", alert.LocalPort,
	}
	if country := d.enricher.Country(alert.RemoteIP); country != "" {
		fields = append(fields, "country", country)
	}
	if d.resolveNames {
		if rdns := geolite.ReverseName(alert.RemoteIP); rdns != "" {
			fields = append(fields, "rdns", rdns)
		}
	}
	log.Info("Connection to monitored range", fields...)

	message := d.formatMessage(alert, processName)
	for _, sink := range d.sinks {
		if err := sink.Notify(alertTitle, message); err != nil {
			log.Warn("Failed to deliver notification", "error", err)
		}
	}
}

func (d *Dispatcher) formatMessage(alert tracker.Alert, processName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Connection detected to monitored range!\n")
	fmt.Fprintf(&b, "Target: %s\n", alert.Endpoint())
	fmt.Fprintf(&b, "Process: %s\n", processName)
	fmt.Fprintf(&b, "Range: %s", alert.MatchedRange)
	if country := d.enricher.Country(alert.RemoteIP); country != "" {
		fmt.Fprintf(&b, "\nCountry: %s", country)
	}
	return b.String()
}
