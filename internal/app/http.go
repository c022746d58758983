package app

import (
	"net"
	"net/http"
	"time"

	"github.com/hyperifyio/newsbrief/internal/requestid"
)

// newHTTPClient returns a pooled client for outbound article and provider
// calls. Per-request deadlines come from the callers' contexts; timeout is a
// backstop. The inbound request ID, when present on the request context, is
// forwarded so provider and origin logs can be correlated.
func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Transport: requestIDTransport{next: transport},
		Timeout:   timeout,
	}
}

type requestIDTransport struct {
	next http.RoundTripper
}

func (t requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	id := requestid.FromContext(req.Context())
	if id == "" || req.Header.Get(requestid.Header) != "" {
		return t.next.RoundTrip(req)
	}
	// RoundTrippers must not mutate the caller's request.
	r := req.Clone(req.Context())
	r.Header.Set(requestid.Header, id)
	return t.next.RoundTrip(r)
}
