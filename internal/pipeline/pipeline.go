package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/hyperifyio/newsbrief/internal/extract"
	"github.com/hyperifyio/newsbrief/internal/fetch"
	"github.com/hyperifyio/newsbrief/internal/summarize"
)

// Fetcher retrieves the HTML body of a page.
type Fetcher interface {
	Get(ctx context.Context, rawURL string) (fetch.Page, error)
}

// Cleaner removes boilerplate from article text without rewriting it.
type Cleaner interface {
	Clean(ctx context.Context, text string) (string, error)
}

// Summarizer produces a summary bounded by a requested word ceiling.
type Summarizer interface {
	Summarize(ctx context.Context, text string, wordLimit int) (string, error)
}

// Orchestrator sequences fetch, extract, clean and summarize for a single
// request. It holds no per-request state and may serve requests concurrently.
type Orchestrator struct {
	Fetcher    Fetcher
	Extractor  extract.Extractor
	Cleaner    Cleaner
	Summarizer Summarizer
	// Observer is optional.
	Observer Observer

	ScrapeMode       ScrapeMode
	ChainedWordLimit int
	DirectWordLimit  int
}

// Scrape fetches the article and returns its text according to ScrapeMode.
func (o *Orchestrator) Scrape(ctx context.Context, rawURL string) (string, error) {
	r, err := o.start(ctx, PathScrape, rawURL)
	if err != nil {
		return "", err
	}
	text, err := r.fetchAndExtract()
	if err != nil {
		return "", err
	}
	switch o.ScrapeMode {
	case ScrapeRaw:
		return r.done(text), nil
	case ScrapeSummary:
		cleaned, err := r.clean(text)
		if err != nil {
			return "", err
		}
		summary, err := r.summarize(cleaned, o.chainedLimit())
		if err != nil {
			return "", err
		}
		return r.done(summary), nil
	default:
		cleaned, err := r.clean(text)
		if err != nil {
			return "", err
		}
		return r.done(cleaned), nil
	}
}

// Summarize runs the chained path: the cleaned article is summarized with the
// chained word ceiling. A cleaning failure stops the run before the
// summarizer is called.
func (o *Orchestrator) Summarize(ctx context.Context, rawURL string) (string, error) {
	r, err := o.start(ctx, PathSummarize, rawURL)
	if err != nil {
		return "", err
	}
	text, err := r.fetchAndExtract()
	if err != nil {
		return "", err
	}
	cleaned, err := r.clean(text)
	if err != nil {
		return "", err
	}
	summary, err := r.summarize(cleaned, o.chainedLimit())
	if err != nil {
		return "", err
	}
	return r.done(summary), nil
}

// SummarizeDirect skips the cleaning call. Markup left in the extracted text
// is stripped locally and the result is summarized with the direct word
// ceiling.
func (o *Orchestrator) SummarizeDirect(ctx context.Context, rawURL string) (string, error) {
	r, err := o.start(ctx, PathSummarizeDirect, rawURL)
	if err != nil {
		return "", err
	}
	text, err := r.fetchAndExtract()
	if err != nil {
		return "", err
	}
	summary, err := r.summarize(extract.StripTags(text), o.directLimit())
	if err != nil {
		return "", err
	}
	return r.done(summary), nil
}

func (o *Orchestrator) chainedLimit() int {
	if o.ChainedWordLimit > 0 {
		return o.ChainedWordLimit
	}
	return summarize.ChainedWordLimit
}

func (o *Orchestrator) directLimit() int {
	if o.DirectWordLimit > 0 {
		return o.DirectWordLimit
	}
	return summarize.DirectWordLimit
}

func (o *Orchestrator) start(ctx context.Context, path Path, rawURL string) (*run, error) {
	u, err := ParseArticleURL(rawURL)
	if err != nil {
		return nil, err
	}
	if o.Fetcher == nil || o.Extractor == nil {
		return nil, &StageError{Path: path, State: StateIdle, Err: errors.New("pipeline not configured")}
	}
	l := zerolog.Ctx(ctx).With().Str("path", string(path)).Str("url", u.String()).Logger()
	return &run{o: o, ctx: l.WithContext(ctx), log: l, path: path, url: u.String(), state: StateIdle}, nil
}

// run carries the state of one request through the pipeline.
type run struct {
	o     *Orchestrator
	ctx   context.Context
	log   zerolog.Logger
	path  Path
	url   string
	state State
}

func (r *run) enter(next State) {
	r.log.Debug().Str("from", string(r.state)).Str("to", string(next)).Msg("pipeline transition")
	r.state = next
}

// step runs fn in state s, reporting its duration and outcome.
func (r *run) step(s State, fn func() error) error {
	r.enter(s)
	began := time.Now()
	err := fn()
	elapsed := time.Since(began)
	if r.o.Observer != nil {
		r.o.Observer.ObserveStage(r.path, s, elapsed, err)
	}
	if err != nil {
		r.log.Error().Err(err).Str("state", string(s)).Dur("elapsed", elapsed).Msg("pipeline stage failed")
		r.enter(StateFailed)
		return &StageError{Path: r.path, State: s, Err: err}
	}
	return nil
}

func (r *run) fetchAndExtract() (string, error) {
	var page fetch.Page
	if err := r.step(StateFetching, func() error {
		var err error
		page, err = r.o.Fetcher.Get(r.ctx, r.url)
		return err
	}); err != nil {
		return "", err
	}
	var res extract.Result
	if err := r.step(StateExtracting, func() error {
		res = r.o.Extractor.Extract(page.Body)
		return nil
	}); err != nil {
		return "", err
	}
	if res.Empty() {
		// An unmatched page is not an error; the empty text goes downstream.
		r.log.Warn().Int("status", page.StatusCode).Msg("no article paragraphs matched")
	} else {
		r.log.Debug().Int("paragraphs", len(res.Paragraphs)).Str("selector", res.Selector).Msg("article extracted")
	}
	return res.Text(), nil
}

func (r *run) clean(text string) (string, error) {
	if r.o.Cleaner == nil {
		return "", r.missing(StateCleaning, "cleaner")
	}
	var out string
	err := r.step(StateCleaning, func() error {
		var err error
		out, err = r.o.Cleaner.Clean(r.ctx, text)
		return err
	})
	return out, err
}

func (r *run) summarize(text string, wordLimit int) (string, error) {
	if r.o.Summarizer == nil {
		return "", r.missing(StateSummarizing, "summarizer")
	}
	var out string
	err := r.step(StateSummarizing, func() error {
		var err error
		out, err = r.o.Summarizer.Summarize(r.ctx, text, wordLimit)
		return err
	})
	return out, err
}

func (r *run) missing(s State, what string) error {
	return r.step(s, func() error { return errors.New(what + " not configured") })
}

func (r *run) done(text string) string {
	r.enter(StateDone)
	r.log.Info().Int("chars", len(text)).Msg("pipeline done")
	return text
}
