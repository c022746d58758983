package summarize

import (
    "context"
    "errors"
    "fmt"

    "github.com/rs/zerolog"

    "github.com/hyperifyio/newsbrief/internal/budget"
    "github.com/hyperifyio/newsbrief/internal/llm"
)

// Stage names reported on generation errors.
const (
    StageClean     = "clean"
    StageSummarize = "summarize"
)

// Cleaner asks the provider to strip ads, tracking links, markdown symbols
// and cross-link boilerplate from article text while keeping its wording.
type Cleaner struct {
    Generator llm.Generator
    // Model is used only to size the prompt against the context window.
    Model string
}

// Clean performs one generation call. Failures are returned as
// *llm.GenerationError; there is no retry and no fallback to the input.
func (c *Cleaner) Clean(ctx context.Context, text string) (string, error) {
    if c == nil || c.Generator == nil {
        return "", &llm.GenerationError{Stage: StageClean, Model: c.model(), Err: errors.New("cleaner not configured")}
    }
    overhead := budget.EstimateTokens(buildCleanPrompt(""))
    // The cleaned text is about as long as the input, so half of what is
    // left goes to the output.
    avail := budget.RemainingContextWithHeadroom(c.Model, 0, overhead) / 2
    text = clip(ctx, StageClean, text, avail)

    out, err := c.Generator.Generate(ctx, buildCleanPrompt(text))
    if err != nil {
        return "", stageError(StageClean, c.Model, err)
    }
    return out, nil
}

func (c *Cleaner) model() string {
    if c == nil {
        return ""
    }
    return c.Model
}

// MinArticleTokens is the smallest article budget a summary prompt may leave
// once the answer and headroom are reserved.
const MinArticleTokens = 1024

// ArticleTokenBudget returns how many tokens of article text fit into a
// summary prompt for model with the given word ceiling.
func ArticleTokenBudget(model string, wordLimit int) int {
    overhead := budget.EstimateTokens(buildSummaryPrompt("", wordLimit))
    // Roughly two tokens per requested word leaves room for the answer.
    return budget.RemainingContextWithHeadroom(model, wordLimit*2, overhead)
}

// Summarizer asks the provider for a bounded-length, journalistic summary.
type Summarizer struct {
    Generator llm.Generator
    Model     string
}

// Summarize performs one generation call with wordLimit as the requested
// ceiling. The ceiling is advisory: the output is neither truncated nor
// validated.
func (s *Summarizer) Summarize(ctx context.Context, text string, wordLimit int) (string, error) {
    if s == nil || s.Generator == nil {
        return "", &llm.GenerationError{Stage: StageSummarize, Model: s.model(), Err: errors.New("summarizer not configured")}
    }
    if wordLimit <= 0 {
        wordLimit = ChainedWordLimit
    }
    text = clip(ctx, StageSummarize, text, ArticleTokenBudget(s.Model, wordLimit))

    out, err := s.Generator.Generate(ctx, buildSummaryPrompt(text, wordLimit))
    if err != nil {
        return "", stageError(StageSummarize, s.Model, err)
    }
    return out, nil
}

func (s *Summarizer) model() string {
    if s == nil {
        return ""
    }
    return s.Model
}

func clip(ctx context.Context, stage, text string, maxTokens int) string {
    clipped, didClip := budget.ClipToTokens(text, maxTokens)
    if didClip {
        zerolog.Ctx(ctx).Warn().
            Str("stage", stage).
            Int("original_chars", len(text)).
            Int("clipped_chars", len(clipped)).
            Msg("article text exceeds model context; clipped")
    }
    return clipped
}

// stageError tags err with the stage that failed, keeping an existing
// *llm.GenerationError's model and cause.
func stageError(stage, model string, err error) error {
    var ge *llm.GenerationError
    if errors.As(err, &ge) {
        tagged := *ge
        tagged.Stage = stage
        if tagged.Model == "" {
            tagged.Model = model
        }
        return &tagged
    }
    return &llm.GenerationError{Stage: stage, Model: model, Err: fmt.Errorf("provider call: %w", err)}
}
