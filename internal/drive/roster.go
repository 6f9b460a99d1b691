// Package drive models the Drive folder being browsed: the navigation stack
// and the listing of the current folder with filtering and selection.
package drive

import (
	"context"
	"strings"

	"github.com/Zuo-Peng/drive-summarizer/internal/apperr"
)

// NoSelection is the selection index when nothing is selected.
const NoSelection = -1

// Lister fetches the entries of one folder. An empty folderID lists the root.
type Lister interface {
	ListFiles(ctx context.Context, sessionID, folderID string) ([]FileEntry, error)
}

// Roster holds the listing of the current folder, the active filter and the
// selection over the filtered entries.
type Roster struct {
	files    []FileEntry
	query    string
	visible  []FileEntry
	selected int
}

// NewRoster returns an empty roster with nothing selected.
func NewRoster() *Roster {
	return &Roster{selected: NoSelection}
}

// Refresh fetches folderID and replaces the listing. On failure the roster
// is left untouched and a FetchError is returned.
func (r *Roster) Refresh(ctx context.Context, l Lister, sessionID, folderID string) error {
	files, err := l.ListFiles(ctx, sessionID, folderID)
	if err != nil {
		if apperr.IsFetch(err) {
			return err
		}
		return &apperr.FetchError{FolderID: folderID, Err: err}
	}
	r.Replace(files)
	return nil
}

// Replace installs a new listing, keeps the active filter and clears the
// selection.
func (r *Roster) Replace(files []FileEntry) {
	r.files = files
	r.visible = FilterEntries(files, r.query)
	r.selected = NoSelection
}

// Files returns the unfiltered listing.
func (r *Roster) Files() []FileEntry {
	return r.files
}

// Filter sets the query and returns the matching entries. A changed query
// clears the selection.
func (r *Roster) Filter(query string) []FileEntry {
	if query != r.query {
		r.selected = NoSelection
	}
	r.query = query
	r.visible = FilterEntries(r.files, query)
	return r.visible
}

// Query returns the active filter text.
func (r *Roster) Query() string {
	return r.query
}

// Visible returns the filtered entries.
func (r *Roster) Visible() []FileEntry {
	if r.query == "" {
		return r.files
	}
	return r.visible
}

// Index returns the selection index into Visible, or NoSelection.
func (r *Roster) Index() int {
	return r.selected
}

// Selected returns the selected entry.
func (r *Roster) Selected() (FileEntry, bool) {
	v := r.Visible()
	if r.selected < 0 || r.selected >= len(v) {
		return FileEntry{}, false
	}
	return v[r.selected], true
}

// SelectByIndex selects index i clamped to the filtered range.
func (r *Roster) SelectByIndex(i int) {
	n := len(r.Visible())
	if n == 0 {
		return
	}
	if i < 0 {
		i = 0
	}
	if i > n-1 {
		i = n - 1
	}
	r.selected = i
}

// SelectNext moves the selection down one entry.
func (r *Roster) SelectNext() {
	r.SelectByIndex(r.selected + 1)
}

// SelectPrevious moves the selection up one entry.
func (r *Roster) SelectPrevious() {
	r.SelectByIndex(r.selected - 1)
}

// ClearSelection selects nothing.
func (r *Roster) ClearSelection() {
	r.selected = NoSelection
}

// Reset drops the listing, filter and selection.
func (r *Roster) Reset() {
	r.files = nil
	r.visible = nil
	r.query = ""
	r.selected = NoSelection
}

// FilterEntries returns the entries whose name contains query, ignoring
// case, in their original order. An empty query returns files unchanged.
func FilterEntries(files []FileEntry, query string) []FileEntry {
	if query == "" {
		return files
	}
	q := strings.ToLower(query)
	var out []FileEntry
	for _, f := range files {
		if strings.Contains(strings.ToLower(f.Name), q) {
			out = append(out, f)
		}
	}
	return out
}
