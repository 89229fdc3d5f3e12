// Package routing maps a wiki database to its database section ("partition")
// and the section to a network endpoint.
package routing

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/wikimedia/wmcs-edits/internal/dblist"
)

// Layout describes how wikis are spread over sections.
type Layout struct {
	// Probe lists the sections tested in order. Each section has a dblist
	// of the same name.
	Probe []string
	// Fallback is the section for wikis no probed list contains.
	Fallback string
}

// WMFLayout returns the production section layout. s3 holds the long tail
// of small wikis and is never listed explicitly.
func WMFLayout() Layout {
	return Layout{
		Probe:    []string{"s1", "s2", "s4", "s5", "s6", "s7", "s8"},
		Fallback: "s3",
	}
}

// Endpoint is a database host and port.
type Endpoint struct {
	Host string
	Port int
}

// Addr returns the endpoint in host:port format.
func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// Locator resolves a section to an endpoint.
type Locator interface {
	Locate(ctx context.Context, partition string) (Endpoint, error)
}

// Router assigns wikis to sections and sections to endpoints.
type Router struct {
	sets    dblist.SetResolver
	layout  Layout
	locator Locator
}

// NewRouter creates a Router. The layout is copied.
func NewRouter(sets dblist.SetResolver, layout Layout, locator Locator) *Router {
	probe := make([]string, len(layout.Probe))
	copy(probe, layout.Probe)
	return &Router{
		sets:    sets,
		layout:  Layout{Probe: probe, Fallback: layout.Fallback},
		locator: locator,
	}
}

// PartitionFor returns the section holding dbname.
// Failing to read a section list is a configuration error and is returned
// unchanged.
func (r *Router) PartitionFor(dbname string) (string, error) {
	for _, p := range r.layout.Probe {
		members, err := r.sets.Resolve(p)
		if err != nil {
			return "", fmt.Errorf("section %s: %w", p, err)
		}
		if members.Contains(dbname) {
			return p, nil
		}
	}
	return r.layout.Fallback, nil
}

// Route returns the section and endpoint serving dbname.
func (r *Router) Route(ctx context.Context, dbname string) (string, Endpoint, error) {
	partition, err := r.PartitionFor(dbname)
	if err != nil {
		return "", Endpoint{}, err
	}
	ep, err := r.locator.Locate(ctx, partition)
	if err != nil {
		return partition, Endpoint{}, err
	}
	return partition, ep, nil
}
