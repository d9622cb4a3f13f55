// Package dns checks that an email domain can plausibly receive mail.
package dns

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/mahalaxmi-group/site-api/shared/logger"
)

// Resolver is the subset of *net.Resolver used here.
type Resolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
	LookupHost(ctx context.Context, host string) ([]string, error)
}

type Checker struct {
	resolver Resolver
	timeout  time.Duration
}

func New(resolver Resolver, timeout time.Duration) *Checker {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	return &Checker{resolver: resolver, timeout: timeout}
}

// HasMailDomain reports whether the domain has an MX record or, failing that, an address record.
// Lookup errors count as "no record".
func (c *Checker) HasMailDomain(ctx context.Context, domain string) bool {
	domain = strings.TrimSuffix(strings.TrimSpace(domain), ".")
	if domain == "" {
		return false
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	mx, err := c.resolver.LookupMX(ctx, domain)
	if err == nil && len(mx) > 0 {
		return true
	}
	hosts, hostErr := c.resolver.LookupHost(ctx, domain)
	if hostErr == nil && len(hosts) > 0 {
		return true
	}
	logger.Log.Debug("email domain does not resolve", "domain", domain, "mx_error", err, "host_error", hostErr)
	return false
}
