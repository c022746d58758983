package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/hyperifyio/newsbrief/internal/pipeline"
)

// Routes served by the handler.
const (
	RouteScrape    = "/scrape"
	RouteSummarize = "/api/summarize"
	RouteHealth    = "/healthz"
	RouteMetrics   = "/metrics"
)

// Client-facing error messages. The underlying cause is only logged.
const (
	MsgMissingURL      = "Missing 'url' in request body"
	MsgInvalidURL      = "Invalid 'url' parameter"
	MsgScrapeFailed    = "Failed to fetch content"
	MsgSummarizeFailed = "Failed to fetch or summarize article"
	MsgInternal        = "Internal server error"
)

// Pipeline is the set of orchestrator entry points the handlers call.
type Pipeline interface {
	Scrape(ctx context.Context, rawURL string) (string, error)
	Summarize(ctx context.Context, rawURL string) (string, error)
	SummarizeDirect(ctx context.Context, rawURL string) (string, error)
}

// Recorder receives per-request metrics.
type Recorder interface {
	RecordRequest(route string, statusCode int, duration time.Duration)
	IncActiveRequests()
	DecActiveRequests()
}

// Server exposes the pipeline over HTTP.
type Server struct {
	Pipeline Pipeline
	Logger   zerolog.Logger
	// Metrics and MetricsHandler are optional.
	Metrics        Recorder
	MetricsHandler http.Handler
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(RouteScrape, s.instrument(RouteScrape, getOnly(http.HandlerFunc(s.handleScrape))))
	mux.Handle(RouteSummarize, s.instrument(RouteSummarize, getOnly(http.HandlerFunc(s.handleSummarize))))
	mux.Handle(RouteHealth, s.instrument(RouteHealth, getOnly(http.HandlerFunc(handleHealth))))
	if s.MetricsHandler != nil {
		mux.Handle(RouteMetrics, getOnly(s.MetricsHandler))
	}
	return s.withRequestContext(cors(s.recoverer(mux)))
}

// NewHTTPServer wraps h with timeouts. writeTimeout must cover one fetch and
// two generation calls.
func NewHTTPServer(addr string, h http.Handler, writeTimeout time.Duration) *http.Server {
	if writeTimeout <= 0 {
		writeTimeout = 3 * time.Minute
	}
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       2 * time.Minute,
	}
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	content, err := s.Pipeline.Scrape(r.Context(), rawURL)
	if err != nil {
		s.writePipelineError(w, r, err, MsgScrapeFailed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"content": content})
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rawURL := q.Get("url")
	run := s.Pipeline.Summarize
	if q.Get("mode") == "direct" {
		run = s.Pipeline.SummarizeDirect
	}
	summary, err := run(r.Context(), rawURL)
	if err != nil {
		s.writePipelineError(w, r, err, MsgSummarizeFailed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writePipelineError maps validation failures to 400 and everything else to
// 500 with the route's generic message.
func (s *Server) writePipelineError(w http.ResponseWriter, r *http.Request, err error, failMsg string) {
	l := zerolog.Ctx(r.Context())
	var ve *pipeline.ValidationError
	if errors.As(err, &ve) {
		msg := MsgInvalidURL
		if errors.Is(err, pipeline.ErrMissingURL) {
			msg = MsgMissingURL
		}
		l.Info().Err(err).Msg("rejected request")
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	ev := l.Error().Err(err)
	var se *pipeline.StageError
	if errors.As(err, &se) {
		ev = ev.Str("state", string(se.State)).Str("path", string(se.Path))
	}
	ev.Msg("pipeline failed")
	writeError(w, http.StatusInternalServerError, failMsg)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
