package pipeline

import (
	"fmt"
	"time"
)

// State is a step of the per-request pipeline state machine:
// Idle → Fetching → Extracting → Cleaning → Summarizing → Done, with Failed
// reachable from every non-terminal state.
type State string

const (
	StateIdle        State = "idle"
	StateFetching    State = "fetching"
	StateExtracting  State = "extracting"
	StateCleaning    State = "cleaning"
	StateSummarizing State = "summarizing"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// Terminal reports whether no further transition is possible from s.
func (s State) Terminal() bool { return s == StateDone || s == StateFailed }

// Path names an entry point into the pipeline.
type Path string

const (
	PathScrape          Path = "scrape"
	PathSummarize       Path = "summarize"
	PathSummarizeDirect Path = "summarize_direct"
)

// ScrapeMode selects what the scrape path returns.
type ScrapeMode string

const (
	// ScrapeClean returns the article text after the cleaning call.
	ScrapeClean ScrapeMode = "clean"
	// ScrapeRaw returns the extracted paragraphs without any provider call.
	ScrapeRaw ScrapeMode = "raw"
	// ScrapeSummary runs clean and summarize, returning a summary.
	ScrapeSummary ScrapeMode = "summary"
)

// ParseScrapeMode maps a configuration string to a ScrapeMode. Empty selects
// ScrapeClean.
func ParseScrapeMode(s string) (ScrapeMode, error) {
	switch ScrapeMode(s) {
	case "":
		return ScrapeClean, nil
	case ScrapeClean, ScrapeRaw, ScrapeSummary:
		return ScrapeMode(s), nil
	}
	return "", fmt.Errorf("unknown scrape mode %q (want clean, raw or summary)", s)
}

// StageError reports the state in which a pipeline run failed. All work done
// before the failure is discarded.
type StageError struct {
	Path  Path
	State State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Path, e.State, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Observer is notified after every stage completes or fails. Implementations
// must be safe for concurrent use.
type Observer interface {
	ObserveStage(path Path, stage State, elapsed time.Duration, err error)
}
