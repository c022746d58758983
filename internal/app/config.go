package app

import (
	"time"

	"github.com/hyperifyio/newsbrief/internal/extract"
	"github.com/hyperifyio/newsbrief/internal/summarize"
)

// Defaults applied by DefaultConfig.
const (
	DefaultListenAddr     = ":3001"
	DefaultLLMBaseURL     = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultLLMModel       = "gemini-2.0-flash-001"
	DefaultUserAgent      = "newsbrief/1.0 (+https://github.com/hyperifyio/newsbrief)"
	DefaultFetchTimeout   = 20 * time.Second
	DefaultLLMTimeout     = 60 * time.Second
	DefaultShutdownPeriod = 15 * time.Second
)

// Config holds runtime configuration for the application.
type Config struct {
	// Server
	ListenAddr      string
	ShutdownTimeout time.Duration

	// LLM
	LLMBaseURL  string
	LLMModel    string
	LLMAPIKey   string
	LLMTimeout  time.Duration
	Temperature float32
	MaxTokens   int

	// Fetch
	FetchTimeout      time.Duration
	FetchUserAgent    string
	FetchMaxBodyBytes int64
	RespectRobots     bool

	// Extraction
	Selectors           []string
	ReadabilityFallback bool

	// Pipeline
	ScrapeMode       string
	ChainedWordLimit int
	DirectWordLimit  int

	// Observability
	MetricsEnable bool
	LogFile       string
	LogFormat     string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	Verbose       bool
}

// DefaultConfig returns the configuration used when nothing else is set.
func DefaultConfig() Config {
	return Config{
		ListenAddr:       DefaultListenAddr,
		ShutdownTimeout:  DefaultShutdownPeriod,
		LLMBaseURL:       DefaultLLMBaseURL,
		LLMModel:         DefaultLLMModel,
		LLMTimeout:       DefaultLLMTimeout,
		Temperature:      0.2,
		FetchTimeout:     DefaultFetchTimeout,
		FetchUserAgent:   DefaultUserAgent,
		Selectors:        []string{extract.DefaultSelector},
		ScrapeMode:       "clean",
		ChainedWordLimit: summarize.ChainedWordLimit,
		DirectWordLimit:  summarize.DirectWordLimit,
		MetricsEnable:    true,
		LogFormat:        "console",
		LogMaxSizeMB:     100,
		LogMaxBackups:    3,
		LogMaxAgeDays:    28,
	}
}

// WriteTimeout is the longest a single request may take: one fetch and two
// generation calls, plus slack for extraction and encoding.
func (c Config) WriteTimeout() time.Duration {
	return c.FetchTimeout + 2*c.LLMTimeout + 10*time.Second
}
