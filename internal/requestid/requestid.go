package requestid

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Header carries the request ID on requests and responses.
const Header = "X-Request-ID"

// MaxLength is the longest ID kept from a client; it matches a UUID.
const MaxLength = 36

var (
	unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9-]+`)
	hyphenRuns  = regexp.MustCompile(`-{2,}`)
)

// Resolve returns a usable request ID for an incoming header value. A client
// value is kept after sanitizing to [a-zA-Z0-9-] and capping at MaxLength;
// an empty or unusable value gets a fresh UUID.
func Resolve(incoming string) string {
	s := strings.ReplaceAll(strings.TrimSpace(incoming), " ", "-")
	s = unsafeChars.ReplaceAllString(s, "")
	s = hyphenRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > MaxLength {
		s = strings.TrimRight(s[:MaxLength], "-")
	}
	if s == "" {
		return New()
	}
	return s
}

// New returns a random UUID string.
func New() string { return uuid.NewString() }

type ctxKey struct{}

// WithContext stores id on ctx.
func WithContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the ID stored by WithContext, or "".
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
