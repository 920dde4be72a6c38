// Package geolite enriches alert events with GeoIP and reverse-DNS context.
// Enrichment is best effort; every lookup degrades to an empty value rather
// than failing the caller.
package geolite

import (
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/oschwald/geoip2-golang"
	"golang.org/x/sync/singleflight"
)

type dnsCacheEntry struct {
	name    string
	expires time.Time
}

var (
	dnsCache       sync.Map
	dnsLookupGroup singleflight.Group
	dnsCacheTTL    = 12 * time.Hour
)

// Enricher wraps an optional GeoLite2 database. The zero value (or a nil
// pointer) performs no GeoIP lookups but still resolves reverse DNS.
type Enricher struct {
	db *geoip2.Reader
}

// Open loads a GeoLite2 Country or City database from path. An empty path
// yields an enricher without GeoIP data.
func Open(path string) (*Enricher, error) {
	if path == "" {
		return &Enricher{}, nil
	}
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open GeoLite database %q: %w", path, err)
	}
	return &Enricher{db: db}, nil
}

// Close releases the underlying database, if any.
func (e *Enricher) Close() error {
	if e == nil || e.db == nil {
		return nil
	}
	return e.db.Close()
}

// Country returns the ISO country code for ipAddress, or "" when unknown.
func (e *Enricher) Country(ipAddress string) string {
	if e == nil || e.db == nil {
		return ""
	}
	ip := net.ParseIP(ipAddress)
	if ip == nil {
		return ""
	}
	record, err := e.db.Country(ip)
	if err != nil {
		return ""
	}
	return record.Country.IsoCode
}

// ReverseName returns a cached reverse-DNS name for ip, or "" when none
// resolves. Failures are cached as empty results so a dead resolver does not
// slow down every cycle.
func ReverseName(ip string) string {
	now := time.Now()
	if entry, ok := dnsCache.Load(ip); ok {
		cached := entry.(dnsCacheEntry)
		if now.Before(cached.expires) {
			return cached.name
		}
	}

	result, _, _ := dnsLookupGroup.Do(ip, func() (interface{}, error) {
		names, err := net.LookupAddr(ip)
		if err != nil || len(names) == 0 {
			return "", nil
		}
		return strings.TrimSuffix(names[0], "."), nil
	})

	name, _ := result.(string)
	dnsCache.Store(ip, dnsCacheEntry{
		name:    name,
		expires: now.Add(dnsCacheTTL),
	})
	return name
}
