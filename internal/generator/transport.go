package generator

import (
	"fmt"
	"net/http"
	"net/url"
	"runtime"
)

const (
	headerUserAgent = "User-Agent"
	headerSessionID = "X-Session-Id"
)

// newBaseTransport clones http.DefaultTransport with the configured proxy, or the
// environment's proxy settings when none is configured.
func newBaseTransport(proxy string) (http.RoundTripper, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = http.ProxyFromEnvironment

	if proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		if proxyURL.Scheme == "" || proxyURL.Host == "" {
			return nil, fmt.Errorf("invalid proxy url %q: scheme and host are required", proxy)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return transport, nil
}

// userAgent identifies the application, its version and platform.
func userAgent(version string) string {
	if version == "" {
		version = "dev"
	}
	return fmt.Sprintf("genaibridge/%s (%s; %s)", version, runtime.GOOS, runtime.GOARCH)
}

// headerTransport sets fixed headers on every outgoing request.
type headerTransport struct {
	base    http.RoundTripper
	headers http.Header
}

// RoundTrip implements http.RoundTripper. The caller's request is not modified.
func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for key, values := range t.headers {
		req.Header[key] = values
	}
	return t.base.RoundTrip(req)
}
