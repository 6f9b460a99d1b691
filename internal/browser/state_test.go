package browser

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/drive-summarizer/internal/apperr"
	"github.com/Zuo-Peng/drive-summarizer/internal/drive"
	"github.com/Zuo-Peng/drive-summarizer/internal/summary"
)

type countingSummarizer struct {
	calls atomic.Int32
	text  string
	err   error
}

func (c *countingSummarizer) Summarize(context.Context, string, string, string, string) (string, error) {
	c.calls.Add(1)
	return c.text, c.err
}

var (
	report  = drive.FileEntry{ID: "1", Name: "Report.pdf", MimeType: drive.MimePDF}
	folder  = drive.FileEntry{ID: "f", Name: "Projects", MimeType: drive.MimeFolder}
	notes   = drive.FileEntry{ID: "3", Name: "notes.txt", MimeType: drive.MimeText}
	picture = drive.FileEntry{ID: "4", Name: "photo.png", MimeType: "image/png"}
)

func loaded(t *testing.T, files ...drive.FileEntry) *State {
	t.Helper()
	s := New()
	r := s.Refresh()
	require.True(t, s.ApplyListing(r, files, nil))
	return s
}

func summarize(t *testing.T, s *State, c *summary.Coordinator) {
	t.Helper()
	f, ok := s.BeginSummarize()
	require.True(t, ok)
	res, err := c.Summarize(context.Background(), "s1", &f)
	s.ApplySummary(res, err)
}

func TestScenario_LoginListSummarizeCacheHit(t *testing.T) {
	backend := &countingSummarizer{text: "X"}
	coord := summary.NewCoordinator(summary.NewCache(summary.DefaultCapacity), backend)

	s := loaded(t, report)
	s.SelectIndex(0)
	summarize(t, s, coord)
	assert.Equal(t, "X", s.Summary().Text)
	assert.False(t, s.Summary().Cached)

	s.SelectIndex(0)
	assert.Equal(t, "X", s.Summary().Text, "same file keeps its summary")
	summarize(t, s, coord)
	assert.Equal(t, "X", s.Summary().Text)
	assert.True(t, s.Summary().Cached)
	assert.Equal(t, int32(1), backend.calls.Load())
}

func TestListingFailureKeepsRosterAndSetsNotice(t *testing.T) {
	s := New()
	r := s.Refresh()
	require.True(t, s.Loading())

	s.ApplyListing(r, nil, &apperr.FetchError{Err: errors.New("network error")})
	assert.Empty(t, s.Files())
	require.Error(t, s.Notice())
	assert.True(t, apperr.IsFetch(s.Notice()))
	assert.False(t, s.Loading())

	r = s.Refresh()
	s.ApplyListing(r, []drive.FileEntry{report, notes}, nil)
	assert.NoError(t, s.Notice())

	r = s.Refresh()
	s.ApplyListing(r, nil, &apperr.FetchError{Err: errors.New("network error")})
	assert.Equal(t, []drive.FileEntry{report, notes}, s.Files())
}

func TestStaleListingIsDiscarded(t *testing.T) {
	s := loaded(t, folder, report)

	s.SelectIndex(0)
	slow := s.Open().Refresh
	require.Equal(t, "f", slow.FolderID)

	back, ok := s.GoBack()
	require.True(t, ok)

	assert.False(t, s.ApplyListing(slow, []drive.FileEntry{notes}, nil), "listing for a folder we left")
	assert.True(t, s.ApplyListing(back, []drive.FileEntry{folder, report}, nil))
	assert.Equal(t, []drive.FileEntry{folder, report}, s.Files())
	assert.True(t, s.Folder().IsRoot())
}

func TestEntriesOfPreviousFolderAreNotActionableWhileLoading(t *testing.T) {
	a := drive.FileEntry{ID: "a", Name: "A", MimeType: drive.MimeFolder}
	b := drive.FileEntry{ID: "b", Name: "B", MimeType: drive.MimeFolder}

	s := loaded(t, a, b, report)
	s.SelectIndex(0)
	enterA := s.Open()
	require.Equal(t, ActionRefresh, enterA.Kind)

	assert.Empty(t, s.Visible(), "parent entries are gone while A loads")
	s.SelectIndex(1)
	assert.Equal(t, ActionNone, s.Open().Kind)
	assert.False(t, s.CanSummarize())
	assert.Equal(t, "My Drive / A", s.Path())

	// a failed listing of A leaves nothing from the parent behind either
	s.ApplyListing(enterA.Refresh, nil, &apperr.FetchError{FolderID: "a", Err: errors.New("timeout")})
	require.Error(t, s.Notice())
	assert.Empty(t, s.Files())
	s.SelectIndex(1)
	assert.Equal(t, ActionNone, s.Open().Kind)

	back, ok := s.GoBack()
	require.True(t, ok)
	assert.True(t, s.Folder().IsRoot())
	assert.Empty(t, s.Files())
	require.True(t, s.ApplyListing(back, []drive.FileEntry{a, b, report}, nil))
	assert.Len(t, s.Stack(), 1)
}

func TestFolderChangeResetsSelectionSummaryAndFilter(t *testing.T) {
	backend := &countingSummarizer{text: "X"}
	coord := summary.NewCoordinator(summary.NewCache(summary.DefaultCapacity), backend)

	s := loaded(t, folder, report)
	s.SetFilter("r")
	s.SelectIndex(1)
	summarize(t, s, coord)
	require.Equal(t, "X", s.Summary().Text)

	s.SelectIndex(0)
	assert.Empty(t, s.Summary().Text, "summary of another file is cleared")

	r := s.Open()
	require.Equal(t, ActionRefresh, r.Kind)
	assert.Equal(t, -1, s.SelectedIndex())
	assert.Empty(t, s.Filter())
	assert.Equal(t, Summary{}, s.Summary())
	assert.Equal(t, "My Drive / Projects", s.Path())
}

func TestFolderChangeClearsSummaryError(t *testing.T) {
	backend := &countingSummarizer{err: &apperr.SummarizationError{Detail: "too large"}}
	coord := summary.NewCoordinator(summary.NewCache(summary.DefaultCapacity), backend)

	s := loaded(t, report, folder)
	s.SelectIndex(0)
	summarize(t, s, coord)
	require.Error(t, s.Summary().Err)
	assert.Equal(t, "too large", s.Summary().Err.Error())
	assert.Equal(t, 0, s.SelectedIndex(), "selection unaffected by failure")

	s.SelectIndex(1)
	s.Open()
	assert.NoError(t, s.Summary().Err)
}

func TestOpenFolderDoesNotSummarize(t *testing.T) {
	s := loaded(t, folder)
	s.SelectIndex(0)

	assert.False(t, s.CanSummarize())
	_, ok := s.BeginSummarize()
	assert.False(t, ok)

	a := s.Open()
	assert.Equal(t, ActionRefresh, a.Kind)
	assert.Equal(t, "f", s.Folder().ID)
}

func TestUnsupportedAndEmptySelectionAreNoops(t *testing.T) {
	s := loaded(t, picture)
	assert.Equal(t, ActionNone, s.Open().Kind, "nothing selected")

	s.SelectIndex(0)
	assert.Equal(t, ActionNone, s.Open().Kind)
	assert.Empty(t, s.Pending())
}

func TestSummarizeDisabledWhileOutstanding(t *testing.T) {
	s := loaded(t, report, notes)
	s.SelectIndex(0)

	a := s.Open()
	require.Equal(t, ActionSummarize, a.Kind)
	assert.Equal(t, "1", s.Pending())
	assert.False(t, s.CanSummarize())
	assert.Equal(t, ActionNone, s.Open().Kind)

	s.SelectIndex(1)
	assert.False(t, s.CanSummarize())

	s.ApplySummary(summary.Result{FileID: "1", Text: "late"}, nil)
	assert.Empty(t, s.Pending())
	assert.Empty(t, s.Summary().Text, "result for a file no longer selected is not shown")
	assert.True(t, s.CanSummarize())
}

func TestGoBackAtRoot(t *testing.T) {
	s := New()
	_, ok := s.GoBack()
	assert.False(t, ok)
	assert.Len(t, s.Stack(), 1)
}

func TestReloadKeepsSelection(t *testing.T) {
	s := loaded(t, report, notes)
	s.SelectIndex(1)

	r := s.Refresh()
	s.ApplyListing(r, []drive.FileEntry{folder, report, notes}, nil)
	f, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, "3", f.ID)
}

func TestReset(t *testing.T) {
	s := loaded(t, folder, report)
	s.SelectIndex(0)
	inFlight := s.Open().Refresh

	s.Reset()
	assert.True(t, s.Folder().IsRoot())
	assert.Empty(t, s.Files())
	assert.False(t, s.ApplyListing(inFlight, []drive.FileEntry{notes}, nil))
}
