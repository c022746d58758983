package fetch

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func robotsServer(robots string, status int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(robots))
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<p>page</p>"))
	}))
}

func TestGet_RobotsDisallow(t *testing.T) {
	srv := robotsServer("User-agent: *\nDisallow: /private\n", 200)
	defer srv.Close()

	c := &Client{Timeout: 2 * time.Second, Robots: &RobotsChecker{UserAgent: "newsbrief"}}
	_, err := c.Get(context.Background(), srv.URL+"/private/story")
	if !errors.Is(err, ErrDisallowedByRobots) {
		t.Fatalf("expected ErrDisallowedByRobots, got %v", err)
	}
	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("expected robots denial wrapped in *Error")
	}
}

func TestGet_RobotsAllow(t *testing.T) {
	srv := robotsServer("User-agent: *\nDisallow: /private\n", 200)
	defer srv.Close()

	c := &Client{Timeout: 2 * time.Second, Robots: &RobotsChecker{UserAgent: "newsbrief"}}
	if _, err := c.Get(context.Background(), srv.URL+"/world/story"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGet_RobotsMissingAllows(t *testing.T) {
	srv := robotsServer("", 404)
	defer srv.Close()

	c := &Client{Timeout: 2 * time.Second, Robots: &RobotsChecker{UserAgent: "newsbrief"}}
	if _, err := c.Get(context.Background(), srv.URL+"/private/story"); err != nil {
		t.Fatalf("404 robots.txt should allow, got %v", err)
	}
}

func TestRobotsChecker_LogsThroughContextLogger(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	u, _ := url.Parse(dead.URL + "/story")
	dead.Close()

	var logs bytes.Buffer
	logger := zerolog.New(&logs).Level(zerolog.DebugLevel).With().Str("request_id", "req-7").Logger()
	ctx := logger.WithContext(context.Background())
	r := &RobotsChecker{HTTPClient: &http.Client{Timeout: time.Second}}
	if err := r.Check(ctx, u); err != nil {
		t.Fatalf("unreachable robots.txt should allow, got %v", err)
	}
	out := logs.String()
	if !strings.Contains(out, "robots.txt unreachable") || !strings.Contains(out, `"request_id":"req-7"`) {
		t.Fatalf("expected debug line from the request logger, got %q", out)
	}
}
