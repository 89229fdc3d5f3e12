package routing

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/wikimedia/wmcs-edits/internal/domain"
)

// StaticLocator is a fixed section to endpoint table, used for local runs
// against fixture databases where no SRV records exist.
type StaticLocator struct {
	endpoints map[string]Endpoint
}

// Ensure StaticLocator implements Locator.
var _ Locator = (*StaticLocator)(nil)

// NewStaticLocator parses a section => host:port map.
func NewStaticLocator(addrs map[string]string) (*StaticLocator, error) {
	endpoints := make(map[string]Endpoint, len(addrs))
	for partition, addr := range addrs {
		host, portStr, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, fmt.Errorf("endpoint for %s: %w", partition, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("endpoint for %s: invalid port %q", partition, portStr)
		}
		endpoints[partition] = Endpoint{Host: host, Port: port}
	}
	return &StaticLocator{endpoints: endpoints}, nil
}

// Locate returns the configured endpoint for the section.
func (l *StaticLocator) Locate(ctx context.Context, partition string) (Endpoint, error) {
	ep, ok := l.endpoints[partition]
	if !ok {
		return Endpoint{}, fmt.Errorf("%w: no static endpoint for %s", domain.ErrRouting, partition)
	}
	return ep, nil
}
