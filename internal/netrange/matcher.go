package netrange

import "net"

// Verdict is the outcome of classifying a remote address.
type Verdict int

const (
	// Ignored means the address is outside every configured range.
	Ignored Verdict = iota
	// Excluded means an exclude range contains the address. Exclusion takes
	// strict precedence over targeting; an excluded address never alerts.
	Excluded
	// Targeted means a target range contains the address and no exclude
	// range does.
	Targeted
)

func (v Verdict) String() string {
	switch v {
	case Excluded:
		return "EXCLUDED"
	case Targeted:
		return "TARGETED"
	default:
		return "IGNORED"
	}
}

// Classification carries the verdict plus, for Targeted addresses, the first
// matching target range in configuration order. The reported range is
// diagnostic only; membership is a union.
type Classification struct {
	Verdict Verdict
	Range   Range
}

// Matcher composes a target set and an exclude set into one decision.
type Matcher struct {
	targets  *Set
	excludes *Set
}

func NewMatcher(targets, excludes *Set) *Matcher {
	return &Matcher{targets: targets, excludes: excludes}
}

// Classify decides whether ip is in scope for alerting.
func (m *Matcher) Classify(ip net.IP) Classification {
	if ip == nil {
		return Classification{Verdict: Ignored}
	}
	if m.excludes.Contains(ip) {
		return Classification{Verdict: Excluded}
	}
	if r, ok := m.targets.Match(ip); ok {
		return Classification{Verdict: Targeted, Range: r}
	}
	return Classification{Verdict: Ignored}
}

// ClassifyAddr classifies a textual address. Unparseable text is Ignored.
func (m *Matcher) ClassifyAddr(addr string) Classification {
	return m.Classify(net.ParseIP(addr))
}
