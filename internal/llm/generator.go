package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Generator turns a free-text prompt into generated text. Implementations are
// non-deterministic: the same prompt may yield textually different output, so
// callers must treat the result as opaque.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenerateFunc adapts a plain function to the Generator interface.
type GenerateFunc func(ctx context.Context, prompt string) (string, error)

func (f GenerateFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// ErrEmptyCompletion is returned when the provider answers without any usable text.
var ErrEmptyCompletion = errors.New("empty completion")

// GenerationError reports a failed or unusable provider call.
type GenerationError struct {
	// Stage names the pipeline step that issued the call, e.g. "clean".
	Stage string
	Model string
	Err   error
}

func (e *GenerationError) Error() string {
	if e.Stage == "" {
		return fmt.Sprintf("generation (model %s): %v", e.Model, e.Err)
	}
	return fmt.Sprintf("generation %s (model %s): %v", e.Stage, e.Model, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ChatGenerator sends each prompt as a single user message to a chat model.
// It performs exactly one call per Generate; there is no retry.
type ChatGenerator struct {
	Client Client
	Model  string
	// Temperature is passed through as-is; zero lets the provider decide.
	Temperature float32
	// MaxTokens caps the completion length when positive.
	MaxTokens int
	// Timeout bounds a single call. Zero means the caller's context alone.
	Timeout time.Duration
}

func (g *ChatGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.Client == nil || strings.TrimSpace(g.Model) == "" {
		return "", &GenerationError{Err: errors.New("generator not configured")}
	}
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}
	req := openai.ChatCompletionRequest{
		Model: g.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: g.Temperature,
		MaxTokens:   g.MaxTokens,
		N:           1,
	}
	resp, err := g.Client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", &GenerationError{Model: g.Model, Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &GenerationError{Model: g.Model, Err: ErrEmptyCompletion}
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", &GenerationError{Model: g.Model, Err: ErrEmptyCompletion}
	}
	return out, nil
}
