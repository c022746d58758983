package extract

import (
    "bytes"
    "strings"

    "github.com/PuerkitoBio/goquery"
)

// DefaultSelector is the structural path to article body paragraphs on the
// target news site: main-content region, article-body region, paragraph class.
const DefaultSelector = "#maincontent .article-body-viewer-selector .dcr-16w5gq9"

// ParagraphSeparator joins paragraphs into a single article text.
const ParagraphSeparator = "\n\n"

// Result is the ordered sequence of paragraph texts pulled from a page.
type Result struct {
    Paragraphs []string
    // Selector is the path that matched, or "" when nothing matched.
    Selector string
}

// Text joins paragraphs with a blank line between them. An unmatched page
// yields the empty string.
func (r Result) Text() string {
    return strings.Join(r.Paragraphs, ParagraphSeparator)
}

// Empty reports whether no paragraph text was extracted.
func (r Result) Empty() bool { return len(r.Paragraphs) == 0 }

// SelectorExtractor collects the text of nodes matching a structural CSS
// selector path. Selectors are tried in order; the first path matching at
// least one non-blank node wins. Zero matches is not an error.
type SelectorExtractor struct {
    Selectors []string
    // Fallback, when set, is consulted only if no selector matched.
    Fallback Extractor
}

// NewSelectorExtractor returns an extractor for the given paths, defaulting to
// DefaultSelector when none are supplied.
func NewSelectorExtractor(selectors ...string) *SelectorExtractor {
    cleaned := make([]string, 0, len(selectors))
    for _, s := range selectors {
        if s = strings.TrimSpace(s); s != "" {
            cleaned = append(cleaned, s)
        }
    }
    if len(cleaned) == 0 {
        cleaned = []string{DefaultSelector}
    }
    return &SelectorExtractor{Selectors: cleaned}
}

func (e *SelectorExtractor) Extract(input []byte) Result {
    // goquery builds a best-effort tree for malformed markup; a read error
    // from a bytes.Reader cannot happen in practice.
    doc, err := goquery.NewDocumentFromReader(bytes.NewReader(input))
    if err != nil {
        return Result{}
    }
    for _, sel := range e.Selectors {
        if paras := collectParagraphs(doc.Selection, sel); len(paras) > 0 {
            return Result{Paragraphs: paras, Selector: sel}
        }
    }
    if e.Fallback != nil {
        return e.Fallback.Extract(input)
    }
    return Result{}
}

// collectParagraphs returns the trimmed text of each node matched by sel in
// document order, skipping blank nodes.
func collectParagraphs(root *goquery.Selection, sel string) []string {
    var out []string
    root.Find(sel).Each(func(_ int, s *goquery.Selection) {
        if text := strings.TrimSpace(s.Text()); text != "" {
            out = append(out, text)
        }
    })
    return out
}
