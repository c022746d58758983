package pipeline

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrMissingURL is returned when no article URL was supplied.
	ErrMissingURL = errors.New("missing url")
	// ErrInvalidURL is returned when the URL is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url")
)

// ValidationError rejects a request before any network call is made.
type ValidationError struct {
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("validation: %v", e.Err)
	}
	return fmt.Sprintf("validation: %v: %q", e.Err, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ParseArticleURL checks that raw is a syntactically valid absolute http or
// https URL with a host.
func ParseArticleURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, &ValidationError{Err: ErrMissingURL}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &ValidationError{Value: raw, Err: fmt.Errorf("%w: %v", ErrInvalidURL, err)}
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, &ValidationError{Value: raw, Err: fmt.Errorf("%w: not absolute", ErrInvalidURL)}
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return nil, &ValidationError{Value: raw, Err: fmt.Errorf("%w: scheme %q", ErrInvalidURL, u.Scheme)}
	}
	return u, nil
}
