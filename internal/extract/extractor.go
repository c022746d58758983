package extract

// Extractor defines a minimal interface for content extraction strategies.
// Implementations can swap selector paths or readability tactics without
// changing callers.
type Extractor interface {
    // Extract converts raw HTML bytes into ordered paragraph text.
    // Implementations should be deterministic and avoid side effects.
    Extract(input []byte) Result
}

// ExtractorFunc adapts a plain function to the Extractor interface.
type ExtractorFunc func(input []byte) Result

func (f ExtractorFunc) Extract(input []byte) Result { return f(input) }
