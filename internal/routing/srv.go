package routing

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/wikimedia/wmcs-edits/internal/domain"
)

// SRVLocator finds section endpoints through DNS SRV records named
// _{section}-{service}._tcp.{domain}.
type SRVLocator struct {
	client      *dns.Client
	service     string
	zone        string
	nameservers []string
}

// Ensure SRVLocator implements Locator.
var _ Locator = (*SRVLocator)(nil)

// NewSRVLocator creates an SRV locator. When nameserver is empty the
// servers listed in resolvConf are used.
func NewSRVLocator(service, zone, nameserver, resolvConf string, timeout time.Duration) (*SRVLocator, error) {
	var servers []string
	if nameserver != "" {
		servers = []string{withDefaultPort(nameserver)}
	} else {
		cc, err := dns.ClientConfigFromFile(resolvConf)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", resolvConf, err)
		}
		for _, s := range cc.Servers {
			servers = append(servers, net.JoinHostPort(s, cc.Port))
		}
		if len(servers) == 0 {
			return nil, fmt.Errorf("no nameservers in %s", resolvConf)
		}
	}

	return &SRVLocator{
		client:      &dns.Client{Net: "udp", Timeout: timeout},
		service:     service,
		zone:        zone,
		nameservers: servers,
	}, nil
}

// RecordName returns the SRV owner name queried for a section.
func (l *SRVLocator) RecordName(partition string) string {
	return dns.Fqdn(fmt.Sprintf("_%s-%s._tcp.%s", partition, l.service, l.zone))
}

// Locate returns the target and port of the first SRV answer.
func (l *SRVLocator) Locate(ctx context.Context, partition string) (Endpoint, error) {
	name := l.RecordName(partition)

	msg := new(dns.Msg)
	msg.SetQuestion(name, dns.TypeSRV)
	msg.RecursionDesired = true

	var lastErr error
	for _, server := range l.nameservers {
		in, _, err := l.client.ExchangeContext(ctx, msg, server)
		if err != nil {
			lastErr = err
			continue
		}
		if in.Rcode != dns.RcodeSuccess {
			return Endpoint{}, fmt.Errorf("%w: %s: %s", domain.ErrRouting, name, dns.RcodeToString[in.Rcode])
		}
		for _, rr := range in.Answer {
			if srv, ok := rr.(*dns.SRV); ok {
				return Endpoint{Host: strings.TrimSuffix(srv.Target, "."), Port: int(srv.Port)}, nil
			}
		}
		return Endpoint{}, fmt.Errorf("%w: %s: no SRV records", domain.ErrRouting, name)
	}
	return Endpoint{}, fmt.Errorf("%w: %s: %v", domain.ErrRouting, name, lastErr)
}

func withDefaultPort(server string) string {
	if _, _, err := net.SplitHostPort(server); err == nil {
		return server
	}
	return net.JoinHostPort(server, "53")
}
