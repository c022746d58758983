package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/newsbrief/internal/extract"
	"github.com/hyperifyio/newsbrief/internal/fetch"
	"github.com/hyperifyio/newsbrief/internal/pipeline"
	"github.com/hyperifyio/newsbrief/internal/requestid"
)

const articlePage = `<!doctype html><html><body>
<main id="maincontent"><div class="article-body-viewer-selector">
<p class="dcr-16w5gq9">A.</p><p class="dcr-16w5gq9">B.</p><p class="dcr-16w5gq9">C.</p>
</div></main></body></html>`

type echoCleaner struct{ err error }

func (c echoCleaner) Clean(ctx context.Context, text string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return text, nil
}

type prefixSummarizer struct{ calls *int }

func (s prefixSummarizer) Summarize(ctx context.Context, text string, wordLimit int) (string, error) {
	if s.calls != nil {
		*s.calls++
	}
	return "SUMMARY: " + text, nil
}

type fixedSummarizer string

func (s fixedSummarizer) Summarize(ctx context.Context, text string, wordLimit int) (string, error) {
	return string(s), nil
}

func articleServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, articlePage)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newTestServer(o *pipeline.Orchestrator) *httptest.Server {
	s := &Server{Pipeline: o, Logger: zerolog.Nop()}
	return httptest.NewServer(s.Handler())
}

func newOrchestrator(cleaner pipeline.Cleaner, summarizer pipeline.Summarizer) *pipeline.Orchestrator {
	return &pipeline.Orchestrator{
		Fetcher:    &fetch.Client{Timeout: 5 * time.Second},
		Extractor:  extract.NewSelectorExtractor(),
		Cleaner:    cleaner,
		Summarizer: summarizer,
	}
}

func get(t *testing.T, base, path string, query url.Values) (*http.Response, map[string]string) {
	t.Helper()
	u := base + path
	if query != nil {
		u += "?" + query.Encode()
	}
	resp, err := http.Get(u)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := map[string]string{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &body), "body: %s", raw)
	}
	return resp, body
}

func TestScrape_MatchingPageReturnsContent(t *testing.T) {
	page := articleServer(t)
	srv := newTestServer(newOrchestrator(echoCleaner{}, prefixSummarizer{}))
	defer srv.Close()

	resp, body := get(t, srv.URL, RouteScrape, url.Values{"url": {page.URL + "/story"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "A.\n\nB.\n\nC.", body["content"])
	assert.NotContains(t, body, "error")
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
}

func TestSummarize_ChainedEndToEnd(t *testing.T) {
	page := articleServer(t)
	srv := newTestServer(newOrchestrator(echoCleaner{}, prefixSummarizer{}))
	defer srv.Close()

	resp, body := get(t, srv.URL, RouteSummarize, url.Values{"url": {page.URL}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "SUMMARY: A.\n\nB.\n\nC.", body["summary"])
}

func TestSummarize_ProviderOutputReturnedAsIs(t *testing.T) {
	page := articleServer(t)
	known := strings.TrimSpace(strings.Repeat("word ", 250))
	srv := newTestServer(newOrchestrator(echoCleaner{}, fixedSummarizer(known)))
	defer srv.Close()

	resp, body := get(t, srv.URL, RouteSummarize, url.Values{"url": {page.URL}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, known, body["summary"])
	assert.Len(t, strings.Fields(body["summary"]), 250)
}

func TestSummarize_DirectMode(t *testing.T) {
	page := articleServer(t)
	srv := newTestServer(newOrchestrator(echoCleaner{err: errors.New("must not be called")}, prefixSummarizer{}))
	defer srv.Close()

	resp, body := get(t, srv.URL, RouteSummarize, url.Values{"url": {page.URL}, "mode": {"direct"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "SUMMARY: A. B. C.", body["summary"])
}

func TestUnreachableHost(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	srv := newTestServer(newOrchestrator(echoCleaner{}, prefixSummarizer{}))
	defer srv.Close()

	resp, body := get(t, srv.URL, RouteScrape, url.Values{"url": {deadURL + "/a"}})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, MsgScrapeFailed, body["error"])
	assert.NotContains(t, body, "content")

	resp, body = get(t, srv.URL, RouteSummarize, url.Values{"url": {deadURL + "/a"}})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, MsgSummarizeFailed, body["error"])
	assert.NotContains(t, body, "summary")
}

func TestSummarize_CleanerFailureIs500AndSkipsSummarizer(t *testing.T) {
	page := articleServer(t)
	calls := 0
	srv := newTestServer(newOrchestrator(echoCleaner{err: errors.New("quota exceeded")}, prefixSummarizer{calls: &calls}))
	defer srv.Close()

	resp, body := get(t, srv.URL, RouteSummarize, url.Values{"url": {page.URL}})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, map[string]string{"error": MsgSummarizeFailed}, body)
	assert.Equal(t, 0, calls)
}

func TestMissingURL_ExactBody(t *testing.T) {
	srv := newTestServer(newOrchestrator(echoCleaner{}, prefixSummarizer{}))
	defer srv.Close()

	for _, route := range []string{RouteSummarize, RouteScrape} {
		resp, err := http.Get(srv.URL + route)
		require.NoError(t, err)
		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, route)
		assert.JSONEq(t, `{"error":"Missing 'url' in request body"}`, string(raw), route)
	}
}

func TestInvalidURL(t *testing.T) {
	srv := newTestServer(newOrchestrator(echoCleaner{}, prefixSummarizer{}))
	defer srv.Close()

	for _, bad := range []string{"not a url", "ftp://example.com/a", "/relative"} {
		resp, body := get(t, srv.URL, RouteSummarize, url.Values{"url": {bad}})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, bad)
		assert.Equal(t, MsgInvalidURL, body["error"], bad)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(newOrchestrator(echoCleaner{}, prefixSummarizer{}))
	defer srv.Close()

	resp, err := http.Post(srv.URL+RouteSummarize, "application/json", strings.NewReader(`{"url":"https://x.example"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestPreflight(t *testing.T) {
	srv := newTestServer(newOrchestrator(echoCleaner{}, prefixSummarizer{}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodOptions, srv.URL+RouteScrape, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestHealthAndRequestID(t *testing.T) {
	srv := newTestServer(newOrchestrator(echoCleaner{}, prefixSummarizer{}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+RouteHealth, nil)
	require.NoError(t, err)
	req.Header.Set(requestid.Header, "client-trace-1")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "client-trace-1", resp.Header.Get(requestid.Header))

	resp2, _ := get(t, srv.URL, RouteHealth, nil)
	assert.NotEmpty(t, resp2.Header.Get(requestid.Header))
}

type panicPipeline struct{}

func (panicPipeline) Scrape(ctx context.Context, u string) (string, error) { panic("boom") }
func (panicPipeline) Summarize(ctx context.Context, u string) (string, error) {
	return "", nil
}
func (panicPipeline) SummarizeDirect(ctx context.Context, u string) (string, error) {
	return "", nil
}

func TestPanicRecovered(t *testing.T) {
	s := &Server{Pipeline: panicPipeline{}, Logger: zerolog.Nop()}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, RouteScrape+"?url=https://x.example", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}

type countingRecorder struct {
	routes []string
	codes  []int
	active int
}

func (c *countingRecorder) RecordRequest(route string, code int, d time.Duration) {
	c.routes = append(c.routes, route)
	c.codes = append(c.codes, code)
}
func (c *countingRecorder) IncActiveRequests() { c.active++ }
func (c *countingRecorder) DecActiveRequests() { c.active-- }

func TestMetricsRecorded(t *testing.T) {
	rec := &countingRecorder{}
	s := &Server{Pipeline: newOrchestrator(echoCleaner{}, prefixSummarizer{}), Logger: zerolog.Nop(), Metrics: rec,
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { _, _ = io.WriteString(w, "ok") })}
	h := s.Handler()

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, RouteSummarize, nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, RouteHealth, nil))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, RouteMetrics, nil))

	assert.Equal(t, []string{RouteSummarize, RouteHealth}, rec.routes)
	assert.Equal(t, []int{http.StatusBadRequest, http.StatusOK}, rec.codes)
	assert.Equal(t, 0, rec.active)
	assert.Equal(t, "ok", w.Body.String())
}
