// Package notify delivers alert events to the desktop and to optional
// fan-out sinks, and emits the per-alert log line.
package notify

import (
	"fmt"
	"os"
	"os/exec"
)

// Sink renders an alert through one notification channel. A failing sink is
// logged and otherwise ignored; it must never abort the monitoring loop.
type Sink interface {
	Notify(title, message string) error
}

// NotifySendSink delivers desktop notifications through notify-send.
type NotifySendSink struct{}

func NewNotifySendSink() *NotifySendSink {
	return &NotifySendSink{}
}

// Available reports whether notify-send is on PATH.
func (s *NotifySendSink) Available() bool {
	_, err := exec.LookPath("notify-send")
	return err == nil
}

// Notify runs notify-send with critical urgency. When the monitor runs as
// root under sudo, the notification is sent as the invoking desktop user so
// it reaches the active session.
func (s *NotifySendSink) Notify(title, message string) error {
	args := []string{"--urgency=critical", "--icon=dialog-warning", title, message}

	var cmd *exec.Cmd
	if user := os.Getenv("SUDO_USER"); user != "" && user != "root" && os.Geteuid() == 0 {
		sudoArgs := append([]string{"-u", user, "DISPLAY=:0", "notify-send"}, args...)
		cmd = exec.Command("sudo", sudoArgs...)
	} else {
		cmd = exec.Command("notify-send", args...)
	}

	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("notify-send failed: %w (%s)", err, string(out))
	}
	return nil
}
