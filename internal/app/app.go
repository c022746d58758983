package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/hyperifyio/newsbrief/internal/extract"
	"github.com/hyperifyio/newsbrief/internal/fetch"
	"github.com/hyperifyio/newsbrief/internal/llm"
	"github.com/hyperifyio/newsbrief/internal/metrics"
	"github.com/hyperifyio/newsbrief/internal/pipeline"
	"github.com/hyperifyio/newsbrief/internal/requestid"
	"github.com/hyperifyio/newsbrief/internal/server"
	"github.com/hyperifyio/newsbrief/internal/summarize"
)

// MetricsNamespace prefixes every exported metric.
const MetricsNamespace = "newsbrief"

// App is the wired service: provider, pipeline, metrics and HTTP surface.
type App struct {
	cfg          Config
	log          zerolog.Logger
	provider     llm.Client
	orchestrator *pipeline.Orchestrator
	metrics      *metrics.PrometheusMetrics
}

// Option customizes New.
type Option func(*App)

// WithProvider replaces the OpenAI-compatible provider, e.g. with a fake.
func WithProvider(c llm.Client) Option {
	return func(a *App) { a.provider = c }
}

// New validates cfg and wires every component. The provider preflight is
// best-effort: an unreachable endpoint only logs a warning.
func New(ctx context.Context, cfg Config, logger zerolog.Logger, opts ...Option) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	mode, err := pipeline.ParseScrapeMode(cfg.ScrapeMode)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, log: logger}
	for _, opt := range opts {
		opt(a)
	}
	if a.provider == nil {
		a.provider = llm.NewOpenAIProvider(cfg.LLMAPIKey, cfg.LLMBaseURL, newHTTPClient(cfg.LLMTimeout+5*time.Second))
	}

	gen := &llm.ChatGenerator{
		Client:      a.provider,
		Model:       cfg.LLMModel,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     cfg.LLMTimeout,
	}

	fetchHTTP := newHTTPClient(cfg.FetchTimeout + 5*time.Second)
	fetcher := &fetch.Client{
		HTTPClient:   fetchHTTP,
		UserAgent:    cfg.FetchUserAgent,
		Timeout:      cfg.FetchTimeout,
		MaxBodyBytes: cfg.FetchMaxBodyBytes,
	}
	if cfg.RespectRobots {
		fetcher.Robots = &fetch.RobotsChecker{HTTPClient: fetchHTTP, UserAgent: cfg.FetchUserAgent}
	}

	extractor := extract.NewSelectorExtractor(cfg.Selectors...)
	if cfg.ReadabilityFallback {
		extractor.Fallback = extract.ReadabilityExtractor{}
	}

	a.orchestrator = &pipeline.Orchestrator{
		Fetcher:          fetcher,
		Extractor:        extractor,
		Cleaner:          &summarize.Cleaner{Generator: gen, Model: cfg.LLMModel},
		Summarizer:       &summarize.Summarizer{Generator: gen, Model: cfg.LLMModel},
		ScrapeMode:       mode,
		ChainedWordLimit: cfg.ChainedWordLimit,
		DirectWordLimit:  cfg.DirectWordLimit,
	}

	if cfg.MetricsEnable {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		a.metrics = metrics.NewPrometheusMetrics(MetricsNamespace, reg, logger)
		a.orchestrator.Observer = a.metrics
	}

	a.preflight(ctx)

	logger.Info().
		Str("model", cfg.LLMModel).
		Str("llm_base", cfg.LLMBaseURL).
		Str("scrape_mode", string(mode)).
		Strs("selectors", cfg.Selectors).
		Bool("robots", cfg.RespectRobots).
		Bool("readability", cfg.ReadabilityFallback).
		Msg("newsbrief initialized")
	return a, nil
}

// preflight lists models to surface misconfiguration early.
func (a *App) preflight(ctx context.Context) {
	lister, ok := a.provider.(llm.ModelLister)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	models, err := lister.ListModels(ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("LLM model list failed; continuing")
		return
	}
	if len(models.Models) == 0 {
		a.log.Warn().Msg("LLM returned zero models")
		return
	}
	found := false
	for _, m := range models.Models {
		if m.ID == a.cfg.LLMModel || m.ID == "models/"+a.cfg.LLMModel {
			found = true
			break
		}
	}
	ev := a.log.Info()
	if !found {
		ev = a.log.Warn()
	}
	ev.Int("count", len(models.Models)).Bool("model_listed", found).Msg("LLM models available")
}

// Orchestrator returns the wired pipeline.
func (a *App) Orchestrator() *pipeline.Orchestrator { return a.orchestrator }

// Handler returns the HTTP handler with all routes and middleware.
func (a *App) Handler() http.Handler {
	s := &server.Server{Pipeline: a.orchestrator, Logger: a.log}
	if a.metrics != nil {
		s.Metrics = a.metrics
		s.MetricsHandler = a.metrics.Handler()
	}
	return s.Handler()
}

// HTTPServer returns a server for Handler with timeouts sized from cfg.
func (a *App) HTTPServer() *http.Server {
	return server.NewHTTPServer(a.cfg.ListenAddr, a.Handler(), a.cfg.WriteTimeout())
}

// Summarize runs one article through the chained or direct path. A request
// ID is minted when ctx carries none.
func (a *App) Summarize(ctx context.Context, rawURL string, direct bool) (string, error) {
	if requestid.FromContext(ctx) == "" {
		ctx = requestid.WithContext(ctx, requestid.New())
	}
	ctx = a.log.With().Str("request_id", requestid.FromContext(ctx)).Logger().WithContext(ctx)
	run := a.orchestrator.Summarize
	if direct {
		run = a.orchestrator.SummarizeDirect
	}
	s, err := run(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("summarize %s: %w", rawURL, err)
	}
	return s, nil
}
