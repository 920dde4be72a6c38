package notify

import (
	"errors"
	"strings"
	"testing"
	"time"

	"bepa/internal/tracker"
)

type captureSink struct {
	titles   []string
	messages []string
	err      error
}

func (c *captureSink) Notify(title, message string) error {
	c.titles = append(c.titles, title)
	c.messages = append(c.messages, message)
	return c.err
}

type staticNames map[int32]string

func (s staticNames) Name(pid int32) string {
	if name, ok := s[pid]; ok {
		return name
	}
	return "Unknown"
}

func testAlert() tracker.Alert {
	return tracker.Alert{
		Timestamp:    time.Now(),
		RemoteIP:     "10.0.0.2",
		RemotePort:   443,
		LocalPort:    50000,
		MatchedRange: "10.0.0.0/8",
		Pid:          1234,
	}
}

func TestDispatchFormatsMessage(t *testing.T) {
	sink := &captureSink{}
	d := NewDispatcher(staticNames{1234: "curl"}, nil, false, sink)

	d.Dispatch(testAlert())

	if len(sink.messages) != 1 {
		t.Fatalf("sink received %d notifications, want 1", len(sink.messages))
	}
	if sink.titles[0] != "Bepa Alert" {
		t.Fatalf("title = %q, want \"Bepa Alert\"", sink.titles[0])
	}

	msg := sink.messages[0]
	for _, want := range []string{"10.0.0.2:443", "curl", "10.0.0.0/8"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message %q does not contain %q", msg, want)
		}
	}
}

func TestDispatchUnknownProcess(t *testing.T) {
	sink := &captureSink{}
	d := NewDispatcher(staticNames{}, nil, false, sink)

	alert := testAlert()
	alert.Pid = 0
	d.Dispatch(alert)

	if !strings.Contains(sink.messages[0], "Unknown") {
		t.Fatalf("message %q does not report Unknown process", sink.messages[0])
	}
}

func TestDispatchSinkFailureIsSwallowed(t *testing.T) {
	failing := &captureSink{err: errors.New("no display")}
	second := &captureSink{}
	d := NewDispatcher(staticNames{}, nil, false, failing, second)

	d.Dispatch(testAlert())

	// The failure is logged; every other sink still receives the alert.
	if len(second.messages) != 1 {
		t.Fatalf("second sink received %d notifications, want 1", len(second.messages))
	}
}

func TestDispatchNoSinks(t *testing.T) {
	d := NewDispatcher(staticNames{}, nil, false)
	// Log-only dispatch must not panic.
	d.Dispatch(testAlert())
}
