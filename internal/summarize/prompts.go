package summarize

import (
    "fmt"
    "strings"
)

// Word ceilings requested from the provider. They are advisory only.
const (
    ChainedWordLimit = 400
    DirectWordLimit  = 600
)

// CleanerInstruction opens every cleaning prompt.
const CleanerInstruction = "You are a text cleaner. Do not summarize, rewrite, rephrase, or shorten the article in any way."

// SummaryInstruction opens every summary prompt; %d is the word ceiling.
const SummaryInstruction = "Summarize the following article in less than %d words"

// Markers that precede the article text inside each prompt.
const (
    CleanArticleMarker   = "Article to clean:\n\"\"\"\n"
    SummaryArticleMarker = "Article content:\n"
)

func buildCleanPrompt(article string) string {
    var sb strings.Builder
    sb.WriteString(CleanerInstruction)
    sb.WriteString("\n\nRemove only:")
    sb.WriteString("\n- Ads and promotional content")
    sb.WriteString("\n- Tracking or affiliate links")
    sb.WriteString("\n- Stray symbols such as *, #, ~ and any other markdown syntax")
    sb.WriteString("\n- Boilerplate cross-link headers like \"More on this topic\" or \"You might also like\"")
    sb.WriteString("\n\nKeep every sentence of the actual article exactly as written. Do not change grammar, spelling, wording, or paragraph structure.")
    sb.WriteString("\nReturn only the cleaned full article text, without markdown.")
    sb.WriteString("\n\n")
    sb.WriteString(CleanArticleMarker)
    sb.WriteString(article)
    sb.WriteString("\n\"\"\"")
    return sb.String()
}

// buildSummaryPrompt asks for a news-report style summary. The chained path
// (cleaned input) and the direct path (stripped input) share the structure
// and differ only by word ceiling.
func buildSummaryPrompt(article string, wordLimit int) string {
    var sb strings.Builder
    sb.WriteString(fmt.Sprintf(SummaryInstruction, wordLimit))
    sb.WriteString(", in the tone and structure of a professional news report.")
    sb.WriteString("\n\nFocus on:")
    sb.WriteString("\n- What happened")
    sb.WriteString("\n- Who is involved")
    sb.WriteString("\n- When and where it happened")
    sb.WriteString("\n- Why it matters")
    sb.WriteString("\n- How it unfolded")
    sb.WriteString("\n\nBe clear, concise and objective, like a journalist writing for a major publication.")
    sb.WriteString("\n\n")
    sb.WriteString(SummaryArticleMarker)
    sb.WriteString(article)
    return sb.String()
}

// ArticleFromPrompt recovers the article text from a prompt built by this
// package. clean reports whether it was a cleaning prompt; ok is false for
// prompts that carry neither instruction.
func ArticleFromPrompt(prompt string) (article string, clean bool, ok bool) {
    switch {
    case strings.HasPrefix(prompt, CleanerInstruction):
        i := strings.Index(prompt, CleanArticleMarker)
        if i < 0 {
            return "", true, false
        }
        return strings.TrimSuffix(prompt[i+len(CleanArticleMarker):], "\n\"\"\""), true, true
    case strings.HasPrefix(prompt, "Summarize the following article"):
        i := strings.Index(prompt, SummaryArticleMarker)
        if i < 0 {
            return "", false, false
        }
        return prompt[i+len(SummaryArticleMarker):], false, true
    }
    return "", false, false
}
