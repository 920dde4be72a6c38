// Package config loads the monitor configuration from the environment.
package config

import (
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"bepa/internal/netrange"
	"bepa/internal/support"
)

const (
	// DefaultTargetRanges covers the private address space.
	DefaultTargetRanges = "10.0.0.0/8,172.16.0.0/12,192.168.0.0/16"
	// DefaultExcludeRanges skips the usual router management address.
	DefaultExcludeRanges = "192.168.1.1/32"

	defaultIntervalSeconds = 2
	defaultRedisChannel    = "bepa:alerts"
)

// ErrNoTargetRanges is returned when no valid target range survives parsing.
// Monitoring nothing is a configuration error, not a default.
var ErrNoTargetRanges = errors.New("no valid target IP ranges configured")

// Config is built once at startup and immutable afterwards.
type Config struct {
	Targets  *netrange.Set
	Excludes *netrange.Set
	Interval time.Duration

	NotifyDisabled bool
	RedisURL       string
	RedisChannel   string
	GeoLitePath    string
}

// Load reads the recognized environment options. Overrides, when non-empty,
// replace the corresponding environment lists (used by CLI flags).
func Load(targetOverride, excludeOverride string, intervalOverride time.Duration) (*Config, error) {
	targetSpec := support.GetEnv("TARGET_IP_RANGES", DefaultTargetRanges)
	if targetOverride != "" {
		targetSpec = targetOverride
	}
	excludeSpec := support.GetEnv("EXCLUDE_IP_RANGES", DefaultExcludeRanges)
	if excludeOverride != "" {
		excludeSpec = excludeOverride
	}

	targets := netrange.ParseList(targetSpec)
	if targets.Len() == 0 {
		return nil, ErrNoTargetRanges
	}
	excludes := netrange.ParseList(excludeSpec)

	interval := intervalOverride
	if interval <= 0 {
		seconds := support.GetEnvInt("MONITOR_INTERVAL", defaultIntervalSeconds)
		if seconds <= 0 {
			log.Warn("Invalid MONITOR_INTERVAL, using default", "seconds", seconds, "default", defaultIntervalSeconds)
			seconds = defaultIntervalSeconds
		}
		interval = time.Duration(seconds) * time.Second
	}

	return &Config{
		Targets:        targets,
		Excludes:       excludes,
		Interval:       interval,
		NotifyDisabled: support.GetEnvBool("NOTIFY_DISABLED", false),
		RedisURL:       support.GetEnv("ALERT_REDIS_URL", ""),
		RedisChannel:   support.GetEnv("ALERT_REDIS_CHANNEL", defaultRedisChannel),
		GeoLitePath:    support.GetEnv("GEOLITE_DB_PATH", ""),
	}, nil
}
