package summary

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/drive-summarizer/internal/apperr"
	"github.com/Zuo-Peng/drive-summarizer/internal/drive"
)

type fakeSummarizer struct {
	calls    atomic.Int32
	text     string
	err      error
	started  chan struct{}
	release  chan struct{}
	waitDone bool  // block until the request context ends
	ctxErr   error // request context error seen after release
}

func (f *fakeSummarizer) Summarize(ctx context.Context, sessionID, fileID, filename, mimeType string) (string, error) {
	f.calls.Add(1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.waitDone {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.release != nil {
		<-f.release
	}
	f.ctxErr = ctx.Err()
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func pdf(id string) *drive.FileEntry {
	return &drive.FileEntry{ID: id, Name: id + ".pdf", MimeType: drive.MimePDF}
}

func TestCache_NeverExceedsCapacity(t *testing.T) {
	c := NewCache(DefaultCapacity)
	for i := 0; i < 50; i++ {
		c.Put(fmt.Sprintf("f%d", i%17), "text")
		require.LessOrEqual(t, c.Len(), DefaultCapacity)

		seen := map[string]bool{}
		for _, id := range c.FileIDs() {
			require.False(t, seen[id], "duplicate entry for %s", id)
			seen[id] = true
		}
	}
}

func TestCache_PutReplaces(t *testing.T) {
	c := NewCache(DefaultCapacity)
	c.Put("id", "A")
	c.Put("id", "B")

	e, ok := c.Get("id")
	require.True(t, ok)
	assert.Equal(t, "B", e.Text)
	assert.Equal(t, 1, c.Len())
}

func TestCache_EvictsOldestInsertion(t *testing.T) {
	c := NewCache(DefaultCapacity)
	for i := 1; i <= 11; i++ {
		c.Put(fmt.Sprintf("f%d", i), fmt.Sprintf("summary %d", i))
	}

	_, ok := c.Get("f1")
	assert.False(t, ok)
	for i := 2; i <= 11; i++ {
		e, ok := c.Get(fmt.Sprintf("f%d", i))
		require.True(t, ok, "f%d", i)
		assert.Equal(t, fmt.Sprintf("summary %d", i), e.Text)
	}
}

func TestCache_ReinsertRefreshesRecency(t *testing.T) {
	c := NewCache(3)
	c.Put("a", "1")
	c.Put("b", "2")
	c.Put("c", "3")
	c.Put("a", "1b")
	c.Put("d", "4")

	_, ok := c.Get("b")
	assert.False(t, ok, "b is now the oldest insertion")
	_, ok = c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, []string{"c", "a", "d"}, c.FileIDs())
}

func TestCache_GetDoesNotRefreshRecency(t *testing.T) {
	c := NewCache(2)
	c.Put("a", "1")
	c.Put("b", "2")
	c.Get("a")
	c.Put("c", "3")

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestCache_InsertedAt(t *testing.T) {
	c := NewCache(2)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c.now = func() time.Time { return fixed }
	c.Put("a", "1")

	e, _ := c.Get("a")
	assert.Equal(t, fixed, e.InsertedAt)
	assert.Equal(t, "a", e.FileID)
}

func TestCache_Purge(t *testing.T) {
	c := NewCache(2)
	c.Put("a", "1")
	c.Purge()
	assert.Zero(t, c.Len())
}

func TestCoordinator_RejectsNonDocuments(t *testing.T) {
	s := &fakeSummarizer{text: "X"}
	c := NewCoordinator(NewCache(DefaultCapacity), s)
	ctx := context.Background()

	_, err := c.Summarize(ctx, "s1", nil)
	assert.ErrorIs(t, err, ErrNotSummarizable)

	_, err = c.Summarize(ctx, "s1", &drive.FileEntry{ID: "d", Name: "Dir", MimeType: drive.MimeFolder})
	assert.ErrorIs(t, err, ErrNotSummarizable)

	_, err = c.Summarize(ctx, "s1", &drive.FileEntry{ID: "i", Name: "pic.png", MimeType: "image/png"})
	assert.ErrorIs(t, err, ErrNotSummarizable)

	assert.Zero(t, s.calls.Load())
}

func TestCoordinator_MissThenHit(t *testing.T) {
	s := &fakeSummarizer{text: "X"}
	c := NewCoordinator(NewCache(DefaultCapacity), s)
	ctx := context.Background()

	res, err := c.Summarize(ctx, "s1", pdf("1"))
	require.NoError(t, err)
	assert.Equal(t, "X", res.Text)
	assert.False(t, res.Cached)

	res, err = c.Summarize(ctx, "s1", pdf("1"))
	require.NoError(t, err)
	assert.Equal(t, "X", res.Text)
	assert.True(t, res.Cached)

	assert.Equal(t, int32(1), s.calls.Load())
}

func TestCoordinator_FailureIsSummarizationError(t *testing.T) {
	s := &fakeSummarizer{err: errors.New("connection refused")}
	c := NewCoordinator(NewCache(DefaultCapacity), s)

	_, err := c.Summarize(context.Background(), "s1", pdf("1"))
	require.Error(t, err)
	se, ok := apperr.AsSummarization(err)
	require.True(t, ok)
	assert.Equal(t, "1", se.FileID)
	assert.Equal(t, apperr.GenericSummarizationMessage, se.Error())

	_, cached := c.Cached("1")
	assert.False(t, cached)
}

func TestCoordinator_KeepsServerDetail(t *testing.T) {
	s := &fakeSummarizer{err: &apperr.SummarizationError{Detail: "file too large"}}
	c := NewCoordinator(NewCache(DefaultCapacity), s)

	_, err := c.Summarize(context.Background(), "s1", pdf("1"))
	require.Error(t, err)
	assert.Equal(t, "file too large", err.Error())
}

func TestCoordinator_SingleFlightPerFile(t *testing.T) {
	s := &fakeSummarizer{
		text:    "X",
		started: make(chan struct{}, 4),
		release: make(chan struct{}),
	}
	c := NewCoordinator(NewCache(DefaultCapacity), s)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]Result, 3)
	errs := make([]error, 3)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = c.Summarize(ctx, "s1", pdf("1"))
	}()
	<-s.started
	assert.True(t, c.InFlight("1"))

	for i := 1; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.Summarize(ctx, "s1", pdf("1"))
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(s.release)
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, "X", results[i].Text)
	}
	assert.Equal(t, int32(1), s.calls.Load())
	assert.False(t, c.InFlight("1"))
}

func TestCoordinator_CallerCancelDoesNotFailJoinedCaller(t *testing.T) {
	s := &fakeSummarizer{
		text:    "X",
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	c := NewCoordinator(NewCache(DefaultCapacity), s)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Summarize(firstCtx, "s1", pdf("1"))
		firstErr <- err
	}()
	<-s.started

	joined := make(chan Result, 1)
	joinedErr := make(chan error, 1)
	go func() {
		res, err := c.Summarize(context.Background(), "s1", pdf("1"))
		joined <- res
		joinedErr <- err
	}()

	cancelFirst()
	err := <-firstErr
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	_, ok := apperr.AsSummarization(err)
	assert.True(t, ok)

	close(s.release)
	res := <-joined
	require.NoError(t, <-joinedErr)
	assert.Equal(t, "X", res.Text)
	assert.NoError(t, s.ctxErr, "shared request must not inherit the first caller's cancellation")
	assert.Equal(t, int32(1), s.calls.Load())

	_, cached := c.Cached("1")
	assert.True(t, cached)
}

func TestCoordinator_SharedRequestTimeout(t *testing.T) {
	s := &fakeSummarizer{waitDone: true}
	c := NewCoordinator(NewCache(DefaultCapacity), s, WithTimeout(20*time.Millisecond))

	_, err := c.Summarize(context.Background(), "s1", pdf("1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	_, ok := apperr.AsSummarization(err)
	assert.True(t, ok)
	assert.False(t, c.InFlight("1"))
}
