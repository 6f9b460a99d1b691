package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Zuo-Peng/drive-summarizer/internal/drive"
	"github.com/Zuo-Peng/drive-summarizer/internal/render"
)

// linesPerItem is the number of terminal lines each entry occupies.
const linesPerItem = 2

// renderList renders the left panel: the filtered folder listing with scrolling.
func (m model) renderList(width, height int) string {
	files := m.state.Visible()
	if len(files) == 0 {
		msg := "Empty folder"
		switch {
		case m.state.Loading():
			msg = "Loading…"
		case m.state.Notice() != nil:
			msg = "Could not load this folder.\nC-r to retry."
		case m.state.Filter() != "":
			msg = "No matches"
		}
		return lipgloss.NewStyle().
			Foreground(colorDim).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render(msg)
	}

	selected := m.state.SelectedIndex()
	query := m.state.Filter()

	var lines []string
	for i, f := range files {
		if i < m.listOffset {
			continue
		}
		if len(lines)+linesPerItem > height {
			break
		}
		_, cached := m.deps.Summaries.Cached(f.ID)
		lines = append(lines, formatEntryLines(f, width, i == selected, query, cached)...)
	}

	// Pad remaining lines
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}

	return strings.Join(lines, "\n")
}

// formatEntryLines formats a single entry as two lines:
//
//	line 1: [>] name
//	line 2:    kind  [summary cached]
func formatEntryLines(f drive.FileEntry, width int, selected bool, query string, cached bool) []string {
	base := styleDocument
	name := f.Name
	switch {
	case f.IsFolder():
		base = styleFolder
		name += "/"
	case !f.Summarizable():
		base = styleUnsupported
	}
	if selected {
		base = styleListSelected
	}

	name = render.Truncate(strings.ReplaceAll(name, "\n", " "), width-2)
	line1 := highlight(name, query, base)
	if selected {
		line1 = styleListSelected.Render("> ") + line1
	} else {
		line1 = "  " + line1
	}

	line2 := "    " + lipgloss.NewStyle().Foreground(colorDim).Render(kindLabel(f))
	if cached {
		line2 += "  " + styleCached.Render("summary cached")
	}

	return []string{line1, line2}
}

// highlight renders text in base with case-insensitive matches of query in
// the match style.
func highlight(text, query string, base lipgloss.Style) string {
	return render.Highlight(text, query,
		func(s string) string { return base.Render(s) },
		func(s string) string { return styleMatch.Render(s) })
}

func kindLabel(f drive.FileEntry) string {
	switch f.MimeType {
	case drive.MimeFolder:
		return "folder"
	case drive.MimeGoogleDoc:
		return "Google Doc"
	case drive.MimePDF:
		return "PDF"
	case drive.MimeText:
		return "text"
	case drive.MimeDocx:
		return "Word document"
	}
	return f.MimeType
}

// adjustListScroll keeps the selection visible within the list viewport.
func (m *model) adjustListScroll(listHeight int) {
	visibleItems := listHeight / linesPerItem
	if visibleItems < 1 {
		visibleItems = 1
	}
	cursor := m.state.SelectedIndex()
	if cursor < 0 {
		if m.listOffset > len(m.state.Visible()) {
			m.listOffset = 0
		}
		return
	}
	if cursor < m.listOffset {
		m.listOffset = cursor
	}
	if cursor >= m.listOffset+visibleItems {
		m.listOffset = cursor - visibleItems + 1
	}
}
