package requestid

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		incoming   string
		expectUUID bool
		want       string
	}{
		{name: "empty header gets a UUID", incoming: "", expectUUID: true},
		{name: "whitespace only gets a UUID", incoming: "   ", expectUUID: true},
		{name: "only unsafe characters gets a UUID", incoming: "@#$%^&*()", expectUUID: true},
		{name: "client UUID kept", incoming: "0b9f3a6e-8d1c-4e2a-9a55-3f2d1c0e7b11", want: "0b9f3a6e-8d1c-4e2a-9a55-3f2d1c0e7b11"},
		{name: "special characters removed", incoming: "trace@42#x", want: "trace42x"},
		{name: "spaces become hyphens", incoming: "my request 123", want: "my-request-123"},
		{name: "hyphen runs collapse and trim", incoming: "---a--b---", want: "a-b"},
		{name: "long value capped", incoming: strings.Repeat("a", 100), want: strings.Repeat("a", MaxLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.incoming)
			if tt.expectUUID {
				_, err := uuid.Parse(got)
				require.NoError(t, err, "expected UUID, got %q", got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := Resolve("")
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := WithContext(context.Background(), "abc")
	assert.Equal(t, "abc", FromContext(ctx))
	assert.Equal(t, "", FromContext(context.Background()))
}
