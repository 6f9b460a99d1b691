// Package browser holds the client state of a Drive browsing session: the
// folder stack, the current listing with its filter and selection, and the
// summary on display. It owns no I/O; callers fetch and feed results back.
package browser

import (
	"errors"

	"github.com/Zuo-Peng/drive-summarizer/internal/drive"
	"github.com/Zuo-Peng/drive-summarizer/internal/summary"
)

// Refresh identifies one folder listing request. Results are applied only
// if Generation is still current when they arrive.
type Refresh struct {
	Generation uint64
	FolderID   string
}

// Summary is what the preview shows for the selected file.
type Summary struct {
	FileID string
	Text   string
	Err    error
	Cached bool
}

// ActionKind tells the caller what Open decided.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionRefresh
	ActionSummarize
)

// Action is the follow-up work Open asks the caller to perform.
type Action struct {
	Kind    ActionKind
	Refresh Refresh
	File    drive.FileEntry
}

// State is the single owner of mutable browsing state.
type State struct {
	nav        *drive.Navigator
	roster     *drive.Roster
	generation uint64
	loading    bool
	notice     error
	summary    Summary
	pending    string
}

// New returns a state positioned at the drive root with an empty listing.
func New() *State {
	return &State{
		nav:    drive.NewNavigator(),
		roster: drive.NewRoster(),
	}
}

// Folder returns the folder being viewed.
func (s *State) Folder() drive.FolderStackEntry {
	return s.nav.Current()
}

// Path returns the breadcrumb of the folder stack.
func (s *State) Path() string {
	return s.nav.Path()
}

// Stack returns a copy of the folder stack.
func (s *State) Stack() []drive.FolderStackEntry {
	return s.nav.Stack()
}

// Refresh starts a listing of the current folder. Any listing still in
// flight becomes stale.
func (s *State) Refresh() Refresh {
	s.generation++
	s.loading = true
	return Refresh{Generation: s.generation, FolderID: s.nav.Current().ID}
}

// EnterFolder pushes e and starts its listing.
func (s *State) EnterFolder(e drive.FolderStackEntry) Refresh {
	s.nav.Enter(e)
	s.folderChanged()
	return s.Refresh()
}

// GoBack pops the current folder. At the root it does nothing and returns
// false.
func (s *State) GoBack() (Refresh, bool) {
	if !s.nav.Back() {
		return Refresh{}, false
	}
	s.folderChanged()
	return s.Refresh(), true
}

// folderChanged drops the previous folder's entries so nothing from it can
// be opened or summarized while the new listing loads.
func (s *State) folderChanged() {
	s.roster.Reset()
	s.summary = Summary{}
	s.notice = nil
}

// ApplyListing installs the result of r. Results of superseded requests are
// dropped and ApplyListing returns false. A failed listing leaves the
// current entries in place and records the error as the notice.
func (s *State) ApplyListing(r Refresh, files []drive.FileEntry, err error) bool {
	if r.Generation != s.generation {
		return false
	}
	s.loading = false
	if err != nil {
		s.notice = err
		return true
	}
	s.notice = nil
	prev, hadSel := s.roster.Selected()
	s.roster.Replace(files)
	if hadSel {
		s.reselect(prev.ID)
	}
	return true
}

// reselect keeps the selection on the same file across a reload.
func (s *State) reselect(fileID string) {
	for i, f := range s.roster.Visible() {
		if f.ID == fileID {
			s.roster.SelectByIndex(i)
			return
		}
	}
	s.summary = Summary{}
}

// Loading reports whether the current folder's listing is outstanding.
func (s *State) Loading() bool {
	return s.loading
}

// Notice returns the last listing failure, if any.
func (s *State) Notice() error {
	return s.notice
}

// DismissNotice clears the notice.
func (s *State) DismissNotice() {
	s.notice = nil
}

// Files returns the unfiltered listing.
func (s *State) Files() []drive.FileEntry {
	return s.roster.Files()
}

// Visible returns the filtered listing.
func (s *State) Visible() []drive.FileEntry {
	return s.roster.Visible()
}

// Filter returns the active filter text.
func (s *State) Filter() string {
	return s.roster.Query()
}

// SetFilter changes the filter. A different query resets the selection.
func (s *State) SetFilter(q string) {
	if q == s.roster.Query() {
		return
	}
	s.withSelectionChange(func() { s.roster.Filter(q) })
}

// SelectedIndex returns the selection index into Visible, or -1.
func (s *State) SelectedIndex() int {
	return s.roster.Index()
}

// Selected returns the selected entry.
func (s *State) Selected() (drive.FileEntry, bool) {
	return s.roster.Selected()
}

// SelectIndex selects the i-th visible entry.
func (s *State) SelectIndex(i int) {
	s.withSelectionChange(func() { s.roster.SelectByIndex(i) })
}

// SelectNext moves the selection down.
func (s *State) SelectNext() {
	s.withSelectionChange(s.roster.SelectNext)
}

// SelectPrevious moves the selection up.
func (s *State) SelectPrevious() {
	s.withSelectionChange(s.roster.SelectPrevious)
}

// withSelectionChange runs fn and clears the displayed summary if it
// belongs to a file other than the new selection.
func (s *State) withSelectionChange(fn func()) {
	fn()
	if s.summary.FileID == "" {
		return
	}
	if f, ok := s.roster.Selected(); !ok || f.ID != s.summary.FileID {
		s.summary = Summary{}
	}
}

// Open acts on the selected entry: folders are entered, documents are
// summarized. Anything else, or a summarize while one is outstanding, is a
// no-op.
func (s *State) Open() Action {
	f, ok := s.roster.Selected()
	if !ok {
		return Action{}
	}
	if f.IsFolder() {
		return Action{Kind: ActionRefresh, Refresh: s.EnterFolder(f.AsFolder())}
	}
	if f, ok := s.BeginSummarize(); ok {
		return Action{Kind: ActionSummarize, File: f}
	}
	return Action{}
}

// CanSummarize reports whether the summarize action is enabled.
func (s *State) CanSummarize() bool {
	if s.pending != "" {
		return false
	}
	f, ok := s.roster.Selected()
	return ok && !f.IsFolder() && f.Summarizable()
}

// BeginSummarize marks the selected file as pending and returns it. It
// returns false while another summary is outstanding or when the selection
// cannot be summarized.
func (s *State) BeginSummarize() (drive.FileEntry, bool) {
	if !s.CanSummarize() {
		return drive.FileEntry{}, false
	}
	f, _ := s.roster.Selected()
	s.pending = f.ID
	s.summary = Summary{}
	return f, true
}

// Pending returns the id of the file being summarized, or "".
func (s *State) Pending() string {
	return s.pending
}

// ApplySummary records the outcome of a summarize request. The result is
// shown only if its file is still selected.
func (s *State) ApplySummary(res summary.Result, err error) {
	if s.pending == res.FileID {
		s.pending = ""
	}
	if errors.Is(err, summary.ErrNotSummarizable) {
		return
	}
	f, ok := s.roster.Selected()
	if !ok || f.ID != res.FileID {
		return
	}
	s.summary = Summary{FileID: res.FileID, Text: res.Text, Err: err, Cached: res.Cached}
}

// Summary returns the summary on display.
func (s *State) Summary() Summary {
	return s.summary
}

// Reset returns to a fresh state at the root, as after logout. Listings
// still in flight become stale.
func (s *State) Reset() {
	s.nav.Reset()
	s.roster.Reset()
	s.generation++
	s.loading = false
	s.notice = nil
	s.summary = Summary{}
	s.pending = ""
}
