// Package classify decides whether an edit came from internal cloud address
// space and tallies edits per wiki.
package classify

import (
	"net/netip"

	"github.com/wikimedia/wmcs-edits/internal/domain"
)

// Table is an ordered, immutable list of IPv4 networks.
type Table struct {
	prefixes []netip.Prefix
}

// CloudVPS returns the Cloud VPS instance ranges in eqiad and codfw.
func CloudVPS() *Table {
	return mustTable(
		// eqiad
		"10.68.0.0/24",
		"10.68.16.0/21",
		"172.16.0.0/21",
		"10.68.32.0/24",
		"10.68.48.0/24",
		// codfw
		"10.196.0.0/24",
		"10.196.16.0/21",
		"172.16.128.0/21",
		"10.196.32.0/24",
		"10.196.48.0/24",
	)
}

func mustTable(cidrs ...string) *Table {
	t := &Table{prefixes: make([]netip.Prefix, 0, len(cidrs))}
	for _, c := range cidrs {
		t.prefixes = append(t.prefixes, netip.MustParsePrefix(c))
	}
	return t
}

// Prefixes returns a copy of the table's networks in order.
func (t *Table) Prefixes() []netip.Prefix {
	out := make([]netip.Prefix, len(t.prefixes))
	copy(out, t.prefixes)
	return out
}

// Match returns the first network containing addr.
func (t *Table) Match(addr netip.Addr) (netip.Prefix, bool) {
	for _, p := range t.prefixes {
		if p.Contains(addr) {
			return p, true
		}
	}
	return netip.Prefix{}, false
}

// ParseIPv4 parses a dotted-quad IPv4 address. IPv6 addresses, including
// IPv4-mapped ones, are rejected.
func ParseIPv4(raw string) (netip.Addr, bool) {
	addr, err := netip.ParseAddr(raw)
	if err != nil || !addr.Is4() {
		return netip.Addr{}, false
	}
	return addr, true
}

// Counter accumulates edit counts for one wiki.
type Counter struct {
	table *Table
	stats domain.WikiEditStats
}

// NewCounter creates a counter for dbname classifying against table.
func NewCounter(dbname string, table *Table) *Counter {
	return &Counter{
		table: table,
		stats: domain.WikiEditStats{DBName: dbname},
	}
}

// Observe counts one edit made from the raw recorded address.
// Every edit counts toward the total; an edit counts as internal at most once,
// and only when its address is IPv4 inside the table.
func (c *Counter) Observe(raw []byte) {
	c.stats.Total++
	addr, ok := ParseIPv4(string(raw))
	if !ok {
		return
	}
	if _, ok := c.table.Match(addr); ok {
		c.stats.Internal++
	}
}

// Stats returns a snapshot of the counters.
func (c *Counter) Stats() *domain.WikiEditStats {
	s := c.stats
	return &s
}
