package config

import (
	"errors"
	"net"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TARGET_IP_RANGES", "")
	t.Setenv("EXCLUDE_IP_RANGES", "")
	t.Setenv("MONITOR_INTERVAL", "")

	// Empty env values are still "set"; clear them via overrides instead.
	cfg, err := Load(DefaultTargetRanges, DefaultExcludeRanges, 0)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if got := cfg.Targets.Len(); got != 3 {
		t.Fatalf("target set has %d ranges, want 3", got)
	}
	if !cfg.Targets.Contains(net.ParseIP("172.20.1.1")) {
		t.Fatal("default targets do not cover 172.16.0.0/12")
	}
	if !cfg.Excludes.Contains(net.ParseIP("192.168.1.1")) {
		t.Fatal("default excludes do not cover 192.168.1.1")
	}
	if cfg.Interval != 2*time.Second {
		t.Fatalf("interval = %s, want 2s", cfg.Interval)
	}
}

func TestLoadFailsWhenTargetSetEmpty(t *testing.T) {
	t.Run("only invalid entries", func(t *testing.T) {
		_, err := Load("999.1.1.1/33,bogus", "", 0)
		if !errors.Is(err, ErrNoTargetRanges) {
			t.Fatalf("Load returned %v, want ErrNoTargetRanges", err)
		}
	})

	t.Run("env list of invalid entries", func(t *testing.T) {
		t.Setenv("TARGET_IP_RANGES", "999.1.1.1/33")
		_, err := Load("", "", 0)
		if !errors.Is(err, ErrNoTargetRanges) {
			t.Fatalf("Load returned %v, want ErrNoTargetRanges", err)
		}
	})
}

func TestLoadSkipsInvalidButKeepsValid(t *testing.T) {
	cfg, err := Load("10.0.0.0/8,999.1.1.1/33", "", 0)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := cfg.Targets.Len(); got != 1 {
		t.Fatalf("target set has %d ranges, want 1", got)
	}
}

func TestLoadInterval(t *testing.T) {
	t.Run("from environment", func(t *testing.T) {
		t.Setenv("MONITOR_INTERVAL", "7")
		cfg, err := Load("10.0.0.0/8", "", 0)
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.Interval != 7*time.Second {
			t.Fatalf("interval = %s, want 7s", cfg.Interval)
		}
	})

	t.Run("override wins", func(t *testing.T) {
		t.Setenv("MONITOR_INTERVAL", "7")
		cfg, err := Load("10.0.0.0/8", "", 500*time.Millisecond)
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.Interval != 500*time.Millisecond {
			t.Fatalf("interval = %s, want 500ms", cfg.Interval)
		}
	})

	t.Run("non-positive environment value falls back", func(t *testing.T) {
		t.Setenv("MONITOR_INTERVAL", "-3")
		cfg, err := Load("10.0.0.0/8", "", 0)
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.Interval != 2*time.Second {
			t.Fatalf("interval = %s, want default 2s", cfg.Interval)
		}
	})
}

func TestLoadEmptyExcludeListIsLegal(t *testing.T) {
	t.Setenv("EXCLUDE_IP_RANGES", " ")
	cfg, err := Load("10.0.0.0/8", "", 0)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Excludes.Len() != 0 {
		t.Fatalf("exclude set has %d ranges, want 0", cfg.Excludes.Len())
	}
}
