package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/html/charset"
)

// DefaultMaxBodyBytes caps how much of a page body is read.
const DefaultMaxBodyBytes = 5 << 20

// Page is the raw document retrieved for one URL.
type Page struct {
	URL         string
	FinalURL    string
	StatusCode  int
	ContentType string
	// Body is the response body decoded to UTF-8.
	Body []byte
	// Truncated is set when the body was cut at the size cap.
	Truncated bool
}

// Error reports any failure retrieving a page: bad URL, network or DNS
// failure, timeout, non-2xx status, unsupported content or robots denial.
type Error struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Client wraps http.Client and performs a single bounded GET per call.
// There is no retry: one attempt either succeeds or the caller fails.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// Timeout bounds each request. Zero means no extra deadline.
	Timeout time.Duration
	// RedirectMaxHops caps redirect following to avoid loops. Zero means default (5).
	RedirectMaxHops int
	// MaxBodyBytes caps the body size. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64
	// Robots, when set, is consulted before every request.
	Robots *RobotsChecker
}

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		// Clone to attach our redirect policy without mutating caller's client
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{CheckRedirect: c.checkRedirectFunc()}
}

// Get retrieves rawURL and returns its UTF-8 decoded body. Every failure is
// returned as *Error.
func (c *Client) Get(ctx context.Context, rawURL string) (Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Page{}, &Error{URL: rawURL, Err: fmt.Errorf("parse url: %w", err)}
	}
	// Reject non-HTTP(S) schemes early
	if !isHTTPScheme(u) {
		return Page{}, &Error{URL: rawURL, Err: fmt.Errorf("unsupported URL scheme: %q", u.Scheme)}
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	if c.Robots != nil {
		if err := c.Robots.Check(ctx, u); err != nil {
			return Page{}, &Error{URL: rawURL, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Page{}, &Error{URL: rawURL, Err: fmt.Errorf("new request: %w", err)}
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return Page{}, &Error{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Page{}, &Error{URL: rawURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status: %d", resp.StatusCode)}
	}
	contentType := resp.Header.Get("Content-Type")
	if !isAllowedHTMLContentType(contentType) {
		return Page{}, &Error{URL: rawURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("unsupported content type: %s", contentType)}
	}

	limit := c.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return Page{}, &Error{URL: rawURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	truncated := int64(len(raw)) > limit
	if truncated {
		raw = raw[:limit]
		zerolog.Ctx(ctx).Warn().
			Str("url", rawURL).
			Int64("limit_bytes", limit).
			Msg("page body exceeds size cap; truncated")
	}
	// Decode to UTF-8 using the declared or sniffed charset; fall back to raw bytes.
	b := raw
	if r, err := charset.NewReader(bytes.NewReader(raw), contentType); err == nil {
		if decoded, err := io.ReadAll(r); err == nil {
			b = decoded
		}
	}
	return Page{
		URL:         rawURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        b,
		Truncated:   truncated,
	}, nil
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		// Only allow http/https during redirects
		if req.URL == nil || !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// isAllowedHTMLContentType accepts text/html variants, application/xhtml+xml
// and responses that omit the header entirely.
func isAllowedHTMLContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if ct == "" {
		return true
	}
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}
