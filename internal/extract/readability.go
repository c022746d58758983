package extract

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// placeholderBase resolves relative links when no page URL is known; only
// text is kept, so the value never leaks into results.
var placeholderBase = &url.URL{Scheme: "https", Host: "article.invalid", Path: "/"}

// ReadabilityExtractor isolates the main content with go-readability and
// returns its paragraphs. It is meant as a last-resort fallback for pages that
// do not match any configured selector path.
type ReadabilityExtractor struct {
	BaseURL *url.URL
}

func (r ReadabilityExtractor) Extract(input []byte) Result {
	base := r.BaseURL
	if base == nil {
		base = placeholderBase
	}
	article, err := readability.FromReader(bytes.NewReader(input), base)
	if err != nil || strings.TrimSpace(article.Content) == "" {
		return Result{}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return Result{}
	}
	paras := collectParagraphs(doc.Selection, "p")
	if len(paras) == 0 {
		if text := strings.TrimSpace(doc.Text()); text != "" {
			paras = []string{text}
		}
	}
	if len(paras) == 0 {
		return Result{}
	}
	return Result{Paragraphs: paras, Selector: "readability"}
}
