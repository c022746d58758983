package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
	"github.com/temoto/robotstxt"
)

// ErrDisallowedByRobots is returned when robots.txt forbids the requested path.
var ErrDisallowedByRobots = errors.New("disallowed by robots.txt")

// maxRobotsBytes bounds the robots.txt body; larger files are truncated.
const maxRobotsBytes = 512 << 10

// RobotsChecker consults the target host's robots.txt before a page fetch.
// Rules are fetched per call and not retained between requests.
type RobotsChecker struct {
	HTTPClient *http.Client
	UserAgent  string
}

// Check returns ErrDisallowedByRobots when the host's robots.txt disallows
// u for the configured user agent. An unreachable robots.txt allows the fetch.
func (r *RobotsChecker) Check(ctx context.Context, u *url.URL) error {
	robotsURL := url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/robots.txt"}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		return fmt.Errorf("robots request: %w", err)
	}
	if r.UserAgent != "" {
		req.Header.Set("User-Agent", r.UserAgent)
	}
	client := r.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("host", u.Host).Msg("robots.txt unreachable; allowing")
		return nil
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("host", u.Host).Msg("robots.txt unreadable; allowing")
		return nil
	}
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("host", u.Host).Msg("robots.txt malformed; allowing")
		return nil
	}
	agent := r.UserAgent
	if agent == "" {
		agent = "*"
	}
	if !data.TestAgent(u.RequestURI(), agent) {
		return ErrDisallowedByRobots
	}
	return nil
}
