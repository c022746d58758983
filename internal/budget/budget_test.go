package budget

import (
    "strings"
    "testing"
    "unicode/utf8"
)

func TestEstimateTokensFromChars(t *testing.T) {
    cases := map[int]int{0: 0, -5: 0, 1: 1, 4: 1, 5: 2, 400: 100}
    for in, want := range cases {
        if got := EstimateTokensFromChars(in); got != want {
            t.Fatalf("EstimateTokensFromChars(%d)=%d, want %d", in, got, want)
        }
    }
}

func TestModelContextTokens_KnownAndFallback(t *testing.T) {
    if got := ModelContextTokens("gemini-2.0-flash-001"); got != 1_048_576 {
        t.Fatalf("gemini flash context=%d", got)
    }
    if got := ModelContextTokens("models/gemini-2.5-pro"); got != 1_048_576 {
        t.Fatalf("prefixed gemini family context=%d", got)
    }
    if got := ModelContextTokens("GPT-4o-mini"); got != 128_000 {
        t.Fatalf("case-insensitive lookup failed: %d", got)
    }
    if got := ModelContextTokens("some-unknown-model"); got != 8192 {
        t.Fatalf("unknown model should default to 8192, got %d", got)
    }
    if got := ModelContextTokens(""); got != 8192 {
        t.Fatalf("empty model should default to 8192, got %d", got)
    }
}

func TestRemainingContextWithHeadroom_NeverNegative(t *testing.T) {
    if got := RemainingContextWithHeadroom("llama-3", 8000, 8000); got != 0 {
        t.Fatalf("expected clamp to 0, got %d", got)
    }
    got := RemainingContextWithHeadroom("llama-3", 1000, 100)
    want := 8192 - 1000 - 512 - 100
    if got != want {
        t.Fatalf("remaining=%d, want %d", got, want)
    }
}

func TestClipToTokens(t *testing.T) {
    s := strings.Repeat("abcd", 10)
    out, clipped := ClipToTokens(s, 100)
    if clipped || out != s {
        t.Fatalf("short text should not be clipped")
    }
    out, clipped = ClipToTokens(s, 2)
    if !clipped || out != "abcdabcd" {
        t.Fatalf("expected 8 bytes, got %q clipped=%v", out, clipped)
    }
    out, clipped = ClipToTokens("", 0)
    if clipped || out != "" {
        t.Fatalf("empty input should stay empty")
    }
}

func TestClipToTokens_RuneBoundary(t *testing.T) {
    s := strings.Repeat("é", 20) // 2 bytes each
    out, clipped := ClipToTokens("a"+s, 2)
    if !clipped {
        t.Fatalf("expected clipping")
    }
    if !utf8.ValidString(out) {
        t.Fatalf("clipped text is not valid UTF-8: %q", out)
    }
    if len(out) > 8 {
        t.Fatalf("clipped text exceeds budget: %d bytes", len(out))
    }
}
