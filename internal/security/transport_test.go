package security

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"testing"
	"time"
)

// fakeResolver returns canned DNS answers.
type fakeResolver struct {
	ips   map[string][]net.IPAddr
	err   error
	delay time.Duration
}

func (f *fakeResolver) LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.ips[host], nil
}

func addr(s string) net.IPAddr {
	return net.IPAddr{IP: net.ParseIP(s)}
}

func TestIsBlockedIP(t *testing.T) {
	initBlockedNets()
	if initErr != nil {
		t.Fatalf("initBlockedNets: %v", initErr)
	}

	blocked := []string{
		"127.0.0.1", "127.255.255.255",
		"10.0.0.1", "10.255.255.255",
		"172.16.0.1", "172.31.255.255",
		"192.168.1.1",
		"169.254.169.254",
		"::1", "fc00::1", "fe80::1",
	}
	for _, s := range blocked {
		if !isBlockedIP(net.ParseIP(s)) {
			t.Errorf("%s should be blocked", s)
		}
	}

	allowed := []string{"8.8.8.8", "93.184.216.34", "172.32.0.1", "2001:4860:4860::8888"}
	for _, s := range allowed {
		if isBlockedIP(net.ParseIP(s)) {
			t.Errorf("%s should be allowed", s)
		}
	}
}

func TestSafeDial_BlocksIPLiteral(t *testing.T) {
	st, err := NewSafeTransport(nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = st.safeDialContext(context.Background(), "tcp", "169.254.169.254:80")
	if !errors.Is(err, ErrBlockedAddress) {
		t.Errorf("err = %v, want ErrBlockedAddress", err)
	}
}

func TestSafeDial_BlocksPrivateResolution(t *testing.T) {
	st, err := NewSafeTransport(nil)
	if err != nil {
		t.Fatal(err)
	}
	st.Resolver = &fakeResolver{ips: map[string][]net.IPAddr{
		"internal.example.com": {addr("192.168.1.10")},
	}}

	_, err = st.safeDialContext(context.Background(), "tcp", "internal.example.com:443")
	if !errors.Is(err, ErrBlockedAddress) {
		t.Errorf("err = %v, want ErrBlockedAddress", err)
	}
}

func TestSafeDial_BlocksMixedResolution(t *testing.T) {
	st, err := NewSafeTransport(nil)
	if err != nil {
		t.Fatal(err)
	}
	// One public IP mixed with one private: the whole host is rejected.
	st.Resolver = &fakeResolver{ips: map[string][]net.IPAddr{
		"rebind.example.com": {addr("93.184.216.34"), addr("10.0.0.5")},
	}}

	_, err = st.safeDialContext(context.Background(), "tcp", "rebind.example.com:443")
	if !errors.Is(err, ErrBlockedAddress) {
		t.Errorf("err = %v, want ErrBlockedAddress", err)
	}
}

func TestSafeDial_DNSFailure(t *testing.T) {
	st, err := NewSafeTransport(nil)
	if err != nil {
		t.Fatal(err)
	}
	st.Resolver = &fakeResolver{err: errors.New("no such host")}

	_, err = st.safeDialContext(context.Background(), "tcp", "missing.example.com:443")
	if !errors.Is(err, ErrDNSFailed) {
		t.Errorf("err = %v, want ErrDNSFailed", err)
	}
}

func TestSafeDial_DNSTimeout(t *testing.T) {
	st, err := NewSafeTransport(nil)
	if err != nil {
		t.Fatal(err)
	}
	st.Resolver = &fakeResolver{delay: time.Second}

	_, err = st.safeDialContext(context.Background(), "tcp", "slow.example.com:443")
	if !errors.Is(err, ErrDNSTimeout) {
		t.Errorf("err = %v, want ErrDNSTimeout", err)
	}
}

func redirectReq(t *testing.T, rawURL string) *http.Request {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatal(err)
	}
	return (&http.Request{URL: u}).WithContext(context.Background())
}

func TestCheckRedirect_BlocksMetadataRedirect(t *testing.T) {
	check := CheckRedirect(5, &fakeResolver{})

	err := check(redirectReq(t, "http://169.254.169.254/latest/meta-data/"), nil)
	if !errors.Is(err, ErrBlockedAddress) {
		t.Errorf("err = %v, want ErrBlockedAddress", err)
	}
}

func TestCheckRedirect_BlocksPrivateHostname(t *testing.T) {
	check := CheckRedirect(5, &fakeResolver{ips: map[string][]net.IPAddr{
		"internal.example.com": {addr("10.1.2.3")},
	}})

	err := check(redirectReq(t, "https://internal.example.com/hook"), nil)
	if !errors.Is(err, ErrBlockedAddress) {
		t.Errorf("err = %v, want ErrBlockedAddress", err)
	}
}

func TestCheckRedirect_AllowsPublicHost(t *testing.T) {
	check := CheckRedirect(5, &fakeResolver{ips: map[string][]net.IPAddr{
		"hooks.example.com": {addr("93.184.216.34")},
	}})

	if err := check(redirectReq(t, "https://hooks.example.com/hook"), nil); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCheckRedirect_EnforcesLimit(t *testing.T) {
	check := CheckRedirect(2, &fakeResolver{ips: map[string][]net.IPAddr{
		"hooks.example.com": {addr("93.184.216.34")},
	}})

	via := []*http.Request{redirectReq(t, "https://a.example.com"), redirectReq(t, "https://b.example.com")}
	err := check(redirectReq(t, "https://hooks.example.com/hook"), via)
	if !errors.Is(err, ErrTooManyRedirects) {
		t.Errorf("err = %v, want ErrTooManyRedirects", err)
	}
}

func TestValidateWebhookURL(t *testing.T) {
	if err := ValidateWebhookURL("http://127.0.0.1:8080/hook"); !errors.Is(err, ErrBlockedAddress) {
		t.Errorf("loopback err = %v, want ErrBlockedAddress", err)
	}
	if err := ValidateWebhookURL("http://169.254.169.254/"); !errors.Is(err, ErrBlockedAddress) {
		t.Errorf("metadata err = %v, want ErrBlockedAddress", err)
	}
	if err := ValidateWebhookURL("http://93.184.216.34/hook"); err != nil {
		t.Errorf("public IP err = %v, want nil", err)
	}
	if err := ValidateWebhookURL("not a url"); !errors.Is(err, ErrBlockedAddress) {
		t.Errorf("malformed err = %v, want ErrBlockedAddress", err)
	}
}

func TestNewSafeHTTPClient(t *testing.T) {
	client, err := NewSafeHTTPClient(10*time.Second, 3)
	if err != nil {
		t.Fatalf("NewSafeHTTPClient: %v", err)
	}
	if client.Timeout != 10*time.Second {
		t.Errorf("timeout = %v", client.Timeout)
	}
	if _, ok := client.Transport.(*SafeTransport); !ok {
		t.Errorf("transport type = %T, want *SafeTransport", client.Transport)
	}
	if client.CheckRedirect == nil {
		t.Error("CheckRedirect should be set")
	}
}
