package extract

import (
    "regexp"
    "strings"

    "golang.org/x/text/unicode/norm"
)

// tagRe matches a tag and, for an unterminated '<', everything after it.
var tagRe = regexp.MustCompile(`<[^>]*>?`)

// StripTags removes all markup from s, normalizes it to NFC and collapses
// every whitespace run (newlines included) into a single space. The result
// never contains '<', and StripTags(StripTags(s)) == StripTags(s).
func StripTags(s string) string {
    if s == "" {
        return ""
    }
    s = tagRe.ReplaceAllString(s, "")
    s = norm.NFC.String(s)
    return strings.Join(strings.Fields(s), " ")
}
