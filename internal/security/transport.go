// Package security hardens outbound HTTP for alert delivery. Webhook URLs
// are operator-supplied, so the dialer enforces an IP blocklist to keep
// alert traffic away from internal infrastructure such as the cloud
// metadata service, localhost, and private network ranges.
package security

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// dnsTimeout is the maximum time allowed for DNS resolution.
const dnsTimeout = 500 * time.Millisecond

// blockedCIDRs are the network ranges outbound webhook traffic must never
// reach.
var blockedCIDRs = []string{
	"127.0.0.0/8",    // loopback
	"10.0.0.0/8",     // RFC1918
	"172.16.0.0/12",  // RFC1918
	"192.168.0.0/16", // RFC1918
	"169.254.0.0/16", // link-local, incl. cloud metadata
	"::1/128",        // IPv6 loopback
	"fc00::/7",       // IPv6 unique local
	"fe80::/10",      // IPv6 link-local
}

// ErrBlockedAddress is returned when a request targets a blocked IP range.
var ErrBlockedAddress = errors.New("outbound: request to blocked IP range")

// ErrDNSTimeout is returned when DNS resolution exceeds the timeout.
var ErrDNSTimeout = errors.New("outbound: DNS resolution timeout")

// ErrTooManyRedirects is returned when the redirect limit is exceeded.
var ErrTooManyRedirects = errors.New("outbound: too many redirects")

// ErrDNSFailed is returned when DNS resolution fails entirely.
var ErrDNSFailed = errors.New("outbound: DNS resolution failed")

var (
	blockedNets []*net.IPNet
	initOnce    sync.Once
	initErr     error
)

func initBlockedNets() {
	initOnce.Do(func() {
		blockedNets = make([]*net.IPNet, 0, len(blockedCIDRs))
		for _, cidr := range blockedCIDRs {
			_, ipNet, err := net.ParseCIDR(cidr)
			if err != nil {
				initErr = fmt.Errorf("outbound: failed to parse CIDR %q: %w", cidr, err)
				return
			}
			blockedNets = append(blockedNets, ipNet)
		}
	})
}

func isBlockedIP(ip net.IP) bool {
	for _, ipNet := range blockedNets {
		if ipNet.Contains(ip) {
			return true
		}
	}
	return false
}

// Resolver abstracts DNS resolution for testability.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

type netResolver struct {
	r *net.Resolver
}

func (nr *netResolver) LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error) {
	return nr.r.LookupIPAddr(ctx, host)
}

// SafeTransport wraps http.Transport with a dialer that validates every
// resolved IP before connecting.
type SafeTransport struct {
	// Base is the underlying http.Transport used for actual connections.
	Base *http.Transport

	// Resolver is used for DNS lookups. If nil, net.DefaultResolver is
	// used. Exposed for testing.
	Resolver Resolver
}

// NewSafeTransport creates a SafeTransport wrapping the provided base
// transport. If base is nil, a default http.Transport is used.
func NewSafeTransport(base *http.Transport) (*SafeTransport, error) {
	initBlockedNets()
	if initErr != nil {
		return nil, initErr
	}

	if base == nil {
		base = &http.Transport{}
	}

	st := &SafeTransport{Base: base}
	base.DialContext = st.safeDialContext
	return st, nil
}

// RoundTrip implements http.RoundTripper.
func (st *SafeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return st.Base.RoundTrip(req)
}

// safeDialContext resolves the host, validates each resolved IP against
// the blocklist, and only dials when all of them are safe. Validating ALL
// addresses before connecting blocks DNS rebinding tricks that mix one
// safe IP with a private one.
func (st *SafeTransport) safeDialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("outbound: invalid address %q: %w", addr, err)
	}

	if ip := net.ParseIP(host); ip != nil {
		if isBlockedIP(ip) {
			return nil, fmt.Errorf("%w: %s", ErrBlockedAddress, ip.String())
		}
		dialer := &net.Dialer{}
		return dialer.DialContext(ctx, network, addr)
	}

	resolver := st.getResolver()
	dnsCtx, cancel := context.WithTimeout(ctx, dnsTimeout)
	defer cancel()

	ips, err := resolver.LookupIPAddr(dnsCtx, host)
	if err != nil {
		if dnsCtx.Err() != nil {
			return nil, fmt.Errorf("%w: host %q", ErrDNSTimeout, host)
		}
		return nil, fmt.Errorf("%w: host %q: %v", ErrDNSFailed, host, err)
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("%w: host %q resolved to no addresses", ErrDNSFailed, host)
	}

	for _, ipAddr := range ips {
		if isBlockedIP(ipAddr.IP) {
			return nil, fmt.Errorf("%w: %s (resolved from %s)", ErrBlockedAddress, ipAddr.IP.String(), host)
		}
	}

	target := net.JoinHostPort(ips[0].IP.String(), port)
	dialer := &net.Dialer{}
	return dialer.DialContext(ctx, network, target)
}

func (st *SafeTransport) getResolver() Resolver {
	if st.Resolver != nil {
		return st.Resolver
	}
	return &netResolver{r: net.DefaultResolver}
}

// CheckRedirect returns an http.Client CheckRedirect function that
// validates redirect targets against the blocklist and enforces a maximum
// redirect count. resolver is optional; nil uses net.DefaultResolver.
func CheckRedirect(maxRedirects int, resolver Resolver) func(req *http.Request, via []*http.Request) error {
	initBlockedNets()

	if resolver == nil {
		resolver = &netResolver{r: net.DefaultResolver}
	}

	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("%w: limit is %d", ErrTooManyRedirects, maxRedirects)
		}

		host := req.URL.Hostname()
		if host == "" {
			return fmt.Errorf("%w: redirect URL has no host", ErrBlockedAddress)
		}

		if ip := net.ParseIP(host); ip != nil {
			if isBlockedIP(ip) {
				return fmt.Errorf("%w: redirect to %s", ErrBlockedAddress, ip.String())
			}
			return nil
		}

		dnsCtx, cancel := context.WithTimeout(req.Context(), dnsTimeout)
		defer cancel()

		ips, err := resolver.LookupIPAddr(dnsCtx, host)
		if err != nil {
			if dnsCtx.Err() != nil {
				return fmt.Errorf("%w: redirect host %q", ErrDNSTimeout, host)
			}
			return fmt.Errorf("%w: redirect host %q: %v", ErrDNSFailed, host, err)
		}
		for _, ipAddr := range ips {
			if isBlockedIP(ipAddr.IP) {
				return fmt.Errorf("%w: redirect to %s (resolved from %s)", ErrBlockedAddress, ipAddr.IP.String(), host)
			}
		}
		return nil
	}
}

// ValidateWebhookURL checks an operator-supplied webhook URL against the
// blocklist at configuration time, before any delivery is attempted.
// Hostnames are resolved so that names pointing at private ranges are
// rejected early.
func ValidateWebhookURL(rawURL string) error {
	initBlockedNets()
	if initErr != nil {
		return initErr
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return fmt.Errorf("%w: unable to extract host from URL", ErrBlockedAddress)
	}
	host := parsed.Hostname()

	if ip := net.ParseIP(host); ip != nil {
		if isBlockedIP(ip) {
			return fmt.Errorf("%w: %s", ErrBlockedAddress, ip.String())
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), dnsTimeout)
	defer cancel()

	resolver := &netResolver{r: net.DefaultResolver}
	ips, err := resolver.LookupIPAddr(ctx, host)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: host %q", ErrDNSTimeout, host)
		}
		return fmt.Errorf("%w: host %q: %v", ErrDNSFailed, host, err)
	}
	for _, ipAddr := range ips {
		if isBlockedIP(ipAddr.IP) {
			return fmt.Errorf("%w: %s (resolved from %s)", ErrBlockedAddress, ipAddr.IP.String(), host)
		}
	}
	return nil
}

// NewSafeHTTPClient creates an http.Client with the SSRF-guarded transport
// and redirect checking. This is the client the webhook sink should use.
func NewSafeHTTPClient(timeout time.Duration, maxRedirects int) (*http.Client, error) {
	transport, err := NewSafeTransport(nil)
	if err != nil {
		return nil, err
	}

	return &http.Client{
		Transport:     transport,
		Timeout:       timeout,
		CheckRedirect: CheckRedirect(maxRedirects, transport.Resolver),
	}, nil
}
