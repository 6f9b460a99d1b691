package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/Zuo-Peng/drive-summarizer/internal/render"
)

// syncPreview re-renders the preview when what it should show has changed.
func (m *model) syncPreview() {
	content, key := m.previewContent(m.previewWidth())
	if key == m.previewKey {
		return
	}
	m.preview.SetContent(content)
	m.preview.GotoTop()
	m.previewKey = key
}

// previewContent returns the preview for the current selection together
// with a key identifying it.
func (m model) previewContent(width int) (string, string) {
	dim := lipgloss.NewStyle().Foreground(colorDim)

	f, ok := m.state.Selected()
	if !ok {
		return dim.Render("Select a file with up/down, then enter to summarize it."), "none"
	}

	title := styleTitle.Render(render.Truncate(f.Name, width))
	s := m.state.Summary()

	switch {
	case f.IsFolder():
		return title + "\n\n" + dim.Render("Folder. Press enter to open it."), "folder:" + f.ID

	case m.state.Pending() == f.ID:
		return title + "\n\n" + dim.Render("Summarizing…"), "pending:" + f.ID

	case s.FileID == f.ID && s.Err != nil:
		body := styleNotice.Render("Summary failed") + "\n\n" + render.Wrap(s.Err.Error(), width)
		return title + "\n\n" + body, "error:" + f.ID + ":" + s.Err.Error()

	case s.FileID == f.ID:
		header := title
		if s.Cached {
			header += "  " + styleCached.Render("(cached)")
		}
		key := fmt.Sprintf("summary:%s:%d:%t", f.ID, len(s.Text), s.Cached)
		return header + "\n\n" + render.Markdown(s.Text, width), key

	case !f.Summarizable():
		return title + "\n\n" + dim.Render(kindLabel(f)+" files cannot be summarized."), "unsupported:" + f.ID
	}

	return title + "\n\n" + dim.Render("Press enter or C-s to summarize."), "ready:" + f.ID
}

// newViewport creates a new viewport model with the given dimensions.
func newViewport(width, height int) viewport.Model {
	return viewport.New(width, height)
}
