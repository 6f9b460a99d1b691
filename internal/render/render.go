package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/drive-summarizer/internal/drive"
)

const (
	colorReset   = "\033[0m"
	colorFolder  = "\033[1;34m" // bold blue
	colorDim     = "\033[2m"
	colorBoldRed = "\033[1;31m" // filter match
)

// MatchSpans returns the byte ranges of text that case-insensitively match
// query, in order and without overlap. When lowercasing changes the byte
// length of text the offsets would not map back, so no spans are returned.
func MatchSpans(text, query string) [][2]int {
	if query == "" {
		return nil
	}
	lowerText := strings.ToLower(text)
	lowerQuery := strings.ToLower(query)
	if len(lowerText) != len(text) || lowerQuery == "" {
		return nil
	}

	var spans [][2]int
	i := 0
	for {
		idx := strings.Index(lowerText[i:], lowerQuery)
		if idx < 0 {
			break
		}
		pos := i + idx
		end := pos + len(lowerQuery)
		spans = append(spans, [2]int{pos, end})
		i = end
	}
	return spans
}

// HighlightMatch wraps every case-insensitive occurrence of query in bold
// red ANSI codes.
func HighlightMatch(text, query string) string {
	return Highlight(text, query, func(s string) string { return s },
		func(s string) string { return colorBoldRed + s + colorReset })
}

// Highlight renders the parts of text matching query with match and the
// rest with plain.
func Highlight(text, query string, plain, match func(string) string) string {
	spans := MatchSpans(text, query)
	if len(spans) == 0 {
		return plain(text)
	}

	var b strings.Builder
	i := 0
	for _, sp := range spans {
		if sp[0] > i {
			b.WriteString(plain(text[i:sp[0]]))
		}
		b.WriteString(match(text[sp[0]:sp[1]]))
		i = sp[1]
	}
	if i < len(text) {
		b.WriteString(plain(text[i:]))
	}
	return b.String()
}

// Truncate cuts s to at most width terminal columns.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// Wrap breaks every line of text to width visible columns.
func Wrap(text string, width int) string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		out = append(out, wrapLine(l, width)...)
	}
	return strings.Join(out, "\n")
}

// wrapLine breaks a single line into multiple lines that fit within maxWidth
// visible columns, correctly skipping ANSI escape sequences when measuring width.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		// check for ANSI escape sequence: ESC[ ... m
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++ // include 'm'
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}

	if len(result) == 0 {
		return []string{""}
	}
	return result
}

// Markdown renders summary text for the terminal. Rendering failures fall
// back to the wrapped plain text.
func Markdown(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return Wrap(content, width)
	}

	rendered, err := r.Render(content)
	if err != nil {
		return Wrap(content, width)
	}
	return strings.TrimRight(rendered, "\n")
}

// Listing formats entries as TSV lines: id, mime type, name. With color
// set, folders are blue and filter matches in names are highlighted.
func Listing(files []drive.FileEntry, query string, color bool) string {
	var b strings.Builder
	for _, f := range files {
		name := strings.ReplaceAll(f.Name, "\t", " ")
		mime := f.MimeType
		if color {
			name = HighlightMatch(name, query)
			if f.IsFolder() {
				name = colorFolder + name + colorReset
			}
			mime = colorDim + mime + colorReset
		}
		fmt.Fprintf(&b, "%s\t%s\t%s\n", f.ID, mime, name)
	}
	return b.String()
}
