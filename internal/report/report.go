package report

import (
    "bufio"
    "fmt"
    "io"
    "regexp"
    "strings"
    "time"

    "github.com/jung-kurt/gofpdf"
)

// Brief is one summarized article ready to be rendered.
type Brief struct {
    URL         string
    Summary     string
    Model       string
    // Direct is true when the summary skipped the cleaning call.
    Direct      bool
    GeneratedAt time.Time
}

// Markdown renders the brief as a small Markdown document: title, date,
// source link, summary body and a generation footer.
func Markdown(b Brief) string {
    var sb strings.Builder
    sb.WriteString("# News brief\n")
    if !b.GeneratedAt.IsZero() {
        sb.WriteString(b.GeneratedAt.UTC().Format("2006-01-02"))
        sb.WriteString("\n")
    }
    sb.WriteString("\n")
    if b.URL != "" {
        fmt.Fprintf(&sb, "Source: [%s](%s)\n\n", b.URL, b.URL)
    }
    sb.WriteString("## Summary\n\n")
    sb.WriteString(strings.TrimSpace(b.Summary))
    sb.WriteString("\n\n---\n")
    path := "chained"
    if b.Direct {
        path = "direct"
    }
    if b.Model != "" {
        fmt.Fprintf(&sb, "Generated by newsbrief (%s path, model %s).\n", path, b.Model)
    } else {
        fmt.Fprintf(&sb, "Generated by newsbrief (%s path).\n", path)
    }
    return sb.String()
}

// WriteMarkdown writes Markdown(b) to w.
func WriteMarkdown(w io.Writer, b Brief) error {
    _, err := io.WriteString(w, Markdown(b))
    return err
}

var linkRe = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

// WritePDF renders markdown into a minimal A4 PDF at outPath. Headings get a
// bold font, links stay clickable, everything else is wrapped paragraphs.
func WritePDF(markdown string, outPath string) error {
    pdf := gofpdf.New("P", "mm", "A4", "")
    // Core fonts are cp1252; translate so accented text survives.
    tr := pdf.UnicodeTranslatorFromDescriptor("")
    pdf.SetFont("Helvetica", "", 11)
    pdf.AddPage()

    scanner := bufio.NewScanner(strings.NewReader(markdown))
    scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
    for scanner.Scan() {
        s := strings.TrimSpace(scanner.Text())
        switch {
        case s == "":
            pdf.Ln(5)
        case s == "---":
            y := pdf.GetY() + 2
            pdf.Line(10, y, 200, y)
            pdf.Ln(5)
        case strings.HasPrefix(s, "#"):
            level := len(s) - len(strings.TrimLeft(s, "#"))
            text := strings.TrimSpace(s[level:])
            if text == "" {
                continue
            }
            size := 16.0
            if level >= 2 {
                size = 13.0
            }
            pdf.SetFont("Helvetica", "B", size)
            pdf.CellFormat(0, 8, tr(text), "", 1, "L", false, 0, "")
            pdf.SetFont("Helvetica", "", 11)
        default:
            writeLine(pdf, tr, s)
        }
    }
    if err := scanner.Err(); err != nil {
        return fmt.Errorf("scan markdown: %w", err)
    }
    return pdf.OutputFileAndClose(outPath)
}

func writeLine(pdf *gofpdf.Fpdf, tr func(string) string, s string) {
    parts := linkRe.FindAllStringSubmatchIndex(s, -1)
    if len(parts) == 0 {
        pdf.MultiCell(0, 5, tr(s), "", "L", false)
        return
    }
    pos := 0
    for _, m := range parts {
        if m[0] > pos {
            pdf.Write(5, tr(s[pos:m[0]]))
        }
        pdf.WriteLinkString(5, tr(s[m[2]:m[3]]), s[m[4]:m[5]])
        pos = m[1]
    }
    if pos < len(s) {
        pdf.Write(5, tr(s[pos:]))
    }
    pdf.Ln(6)
}
