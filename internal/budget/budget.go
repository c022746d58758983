package budget

import (
    "math"
    "strings"
    "unicode/utf8"
)

// EstimateTokensFromChars converts a character count into an estimated token
// count using a conservative heuristic (~4 chars per token in English). The
// result is always at least 1 when chars > 0.
func EstimateTokensFromChars(charCount int) int {
    if charCount <= 0 {
        return 0
    }
    // Keep conservative to avoid overruns. Use ceiling for safety.
    return int(math.Ceil(float64(charCount) / 4.0))
}

// EstimateTokens returns the estimated token count of a string.
func EstimateTokens(s string) int {
    return EstimateTokensFromChars(len(s))
}

// ModelContextTokens returns an estimated maximum context window for a given
// model name. Unknown models fall back to a sensible default.
func ModelContextTokens(modelName string) int {
    name := strings.ToLower(strings.TrimSpace(modelName))
    if name == "" {
        return 8192
    }
    // Strip provider prefixes such as "models/" or "google/".
    if i := strings.LastIndex(name, "/"); i >= 0 {
        name = name[i+1:]
    }
    if v, ok := knownModelMax[name]; ok {
        return v
    }
    for _, p := range knownFamilies {
        if strings.HasPrefix(name, p.prefix) {
            return p.tokens
        }
    }
    if strings.HasSuffix(name, "1m") {
        return 1_000_000
    }
    if strings.HasSuffix(name, "128k") {
        return 128_000
    }
    if strings.Contains(name, "-mini") {
        // Many "mini" models expose large contexts nowadays, assume 128k.
        return 128_000
    }
    // Default conservative context if unknown.
    return 8192
}

// RemainingContext computes the remaining input token budget given a model,
// a desired reservation for output generation, and the estimated prompt tokens.
// The result is never negative.
func RemainingContext(modelName string, reservedForOutput int, promptTokens int) int {
    maxCtx := ModelContextTokens(modelName)
    if reservedForOutput < 0 {
        reservedForOutput = 0
    }
    remaining := maxCtx - reservedForOutput - promptTokens
    if remaining < 0 {
        return 0
    }
    return remaining
}

// HeadroomTokens returns a conservative safety headroom to subtract from the
// model context: the larger of 5% of the context or 512 tokens.
func HeadroomTokens(modelName string) int {
    max := ModelContextTokens(modelName)
    dyn := int(math.Ceil(float64(max) * 0.05))
    if dyn < 512 {
        return 512
    }
    return dyn
}

// RemainingContextWithHeadroom computes remaining tokens after accounting for
// output reservation and a conservative headroom for the given model.
func RemainingContextWithHeadroom(modelName string, reservedForOutput int, promptTokens int) int {
    headroom := HeadroomTokens(modelName)
    return RemainingContext(modelName, reservedForOutput+headroom, promptTokens)
}

// ClipToTokens shortens s so that its estimated token count does not exceed
// maxTokens, cutting on a rune boundary. It reports whether s was clipped.
func ClipToTokens(s string, maxTokens int) (string, bool) {
    if maxTokens <= 0 {
        return "", s != ""
    }
    maxBytes := maxTokens * 4
    if len(s) <= maxBytes {
        return s, false
    }
    cut := maxBytes
    for cut > 0 && !utf8.RuneStart(s[cut]) {
        cut--
    }
    return s[:cut], true
}

// knownModelMax contains rough context sizes for common model identifiers.
// These are best-effort and do not need to be exhaustive.
var knownModelMax = map[string]int{
    "gemini-2.0-flash-001":      1_048_576,
    "gemini-2.0-flash":          1_048_576,
    "gemini-2.0-flash-lite":     1_048_576,
    "gemini-1.5-flash":          1_048_576,
    "gemini-1.5-pro":            2_097_152,
    "gpt-4o":                    128_000,
    "gpt-4o-mini":               128_000,
    "gpt-4-turbo":               128_000,
    "gpt-3.5-turbo":             16_384,
    "llama-3":                   8_192,
    "llama-3.1":                 128_000,
    "test-model":                8_192,
}

// knownFamilies matches versioned model names by prefix.
var knownFamilies = []struct {
    prefix string
    tokens int
}{
    {"gemini-2.5", 1_048_576},
    {"gemini-2.0", 1_048_576},
    {"gemini-1.5", 1_048_576},
    {"gpt-4.1", 1_000_000},
    {"gpt-4o", 128_000},
}
