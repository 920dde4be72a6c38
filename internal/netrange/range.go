// Package netrange holds the CIDR range sets and the in-scope decision used to
// classify remote endpoints.
package netrange

import (
	"fmt"
	"net"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/yl2chen/cidranger"
)

// Range is a single parsed CIDR block. Immutable once parsed.
type Range struct {
	label string
	ipNet *net.IPNet
}

// Parse parses a network/prefix specification such as "10.0.0.0/8".
// A bare address is accepted as a single-host range. Invalid text is
// rejected rather than widened into a match-everything range.
func Parse(text string) (Range, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Range{}, fmt.Errorf("empty range specification")
	}

	if !strings.Contains(text, "/") {
		ip := net.ParseIP(text)
		if ip == nil {
			return Range{}, fmt.Errorf("invalid address %q", text)
		}
		bits := 32
		if ip.To4() == nil {
			bits = 128
		}
		text = fmt.Sprintf("%s/%d", ip.String(), bits)
	}

	_, ipNet, err := net.ParseCIDR(text)
	if err != nil {
		return Range{}, fmt.Errorf("invalid range %q: %w", text, err)
	}

	return Range{label: ipNet.String(), ipNet: ipNet}, nil
}

// Contains reports whether ip is a member of the range.
func (r Range) Contains(ip net.IP) bool {
	return r.ipNet != nil && r.ipNet.Contains(ip)
}

func (r Range) String() string {
	return r.label
}

// Set is an ordered collection of ranges. Membership is the union across all
// ranges; insertion order only determines which range is reported on a match.
type Set struct {
	ranges []Range
	index  cidranger.Ranger
}

// NewSet builds a set from already-parsed ranges, preserving their order.
func NewSet(ranges []Range) *Set {
	index := cidranger.NewPCTrieRanger()
	for _, r := range ranges {
		_ = index.Insert(cidranger.NewBasicRangerEntry(*r.ipNet))
	}
	return &Set{ranges: ranges, index: index}
}

// ParseList parses a comma-separated list of range specifications. Each entry
// is parsed independently; malformed entries are skipped with a warning so one
// bad range cannot widen or drop its neighbours.
func ParseList(csv string) *Set {
	var ranges []Range
	for _, entry := range strings.Split(csv, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		r, err := Parse(entry)
		if err != nil {
			log.Warn("Skipping invalid IP range", "range", entry, "error", err)
			continue
		}
		ranges = append(ranges, r)
	}
	return NewSet(ranges)
}

// Contains reports whether ip is a member of any range in the set.
func (s *Set) Contains(ip net.IP) bool {
	if s == nil || len(s.ranges) == 0 || ip == nil {
		return false
	}
	ok, err := s.index.Contains(ip)
	if err != nil {
		return false
	}
	return ok
}

// Match returns the first range in configuration order that contains ip.
func (s *Set) Match(ip net.IP) (Range, bool) {
	if !s.Contains(ip) {
		return Range{}, false
	}
	for _, r := range s.ranges {
		if r.Contains(ip) {
			return r, true
		}
	}
	return Range{}, false
}

// Len returns the number of ranges in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ranges)
}

// Ranges returns the set's ranges in configuration order.
func (s *Set) Ranges() []Range {
	if s == nil {
		return nil
	}
	out := make([]Range, len(s.ranges))
	copy(out, s.ranges)
	return out
}

func (s *Set) String() string {
	labels := make([]string, 0, s.Len())
	for _, r := range s.Ranges() {
		labels = append(labels, r.String())
	}
	return strings.Join(labels, ",")
}
