// Package summary caches document summaries and coordinates requests to the
// summarization backend so each file is summarized at most once per cache
// lifetime.
package summary

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Zuo-Peng/drive-summarizer/internal/apperr"
	"github.com/Zuo-Peng/drive-summarizer/internal/drive"
	"github.com/Zuo-Peng/drive-summarizer/internal/logging"
)

// ErrNotSummarizable is returned for a missing selection, a folder or an
// unsupported mime type. Callers treat it as a no-op.
var ErrNotSummarizable = errors.New("file cannot be summarized")

// Summarizer is the external summarization service.
type Summarizer interface {
	Summarize(ctx context.Context, sessionID, fileID, filename, mimeType string) (string, error)
}

// Result is a summary and where it came from.
type Result struct {
	FileID string
	Text   string
	Cached bool
}

// DefaultTimeout bounds one backend summarization request.
const DefaultTimeout = 2 * time.Minute

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithTimeout sets the deadline of each shared backend request.
func WithTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// Coordinator serves summaries from the cache or, on a miss, from exactly
// one outstanding backend request per file.
type Coordinator struct {
	cache   *Cache
	backend Summarizer
	group   singleflight.Group
	timeout time.Duration

	mu       sync.Mutex
	inFlight map[string]int
}

// NewCoordinator returns a coordinator backed by cache and s.
func NewCoordinator(cache *Cache, s Summarizer, opts ...Option) *Coordinator {
	c := &Coordinator{
		cache:    cache,
		backend:  s,
		timeout:  DefaultTimeout,
		inFlight: make(map[string]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cache returns the underlying cache.
func (c *Coordinator) Cache() *Cache {
	return c.cache
}

// Cached returns the cached summary for a file without issuing a request.
func (c *Coordinator) Cached(fileID string) (Entry, bool) {
	return c.cache.Get(fileID)
}

// InFlight reports whether a request for fileID is outstanding.
func (c *Coordinator) InFlight(fileID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight[fileID] > 0
}

// Summarize returns the summary of file. Failures from the backend are
// returned as *apperr.SummarizationError.
//
// Concurrent calls for the same file share one backend request. That request
// runs under its own timeout, detached from every caller's context, so one
// caller giving up does not fail the others. A caller whose ctx ends first
// gets ctx's error while the shared request carries on and fills the cache.
func (c *Coordinator) Summarize(ctx context.Context, sessionID string, file *drive.FileEntry) (Result, error) {
	if file == nil || file.IsFolder() || !file.Summarizable() {
		return Result{}, ErrNotSummarizable
	}

	if e, ok := c.cache.Get(file.ID); ok {
		logging.Debug("summary cache hit", zap.String("file_id", file.ID))
		return Result{FileID: file.ID, Text: e.Text, Cached: true}, nil
	}

	f := *file
	ch := c.group.DoChan(f.ID, func() (interface{}, error) {
		// a request that completed after our cache check has already filled it
		if e, ok := c.cache.Get(f.ID); ok {
			return e.Text, nil
		}

		c.track(f.ID, 1)
		defer c.track(f.ID, -1)

		reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		logging.Info("requesting summary",
			zap.String("file_id", f.ID),
			zap.String("mime_type", f.MimeType))
		text, err := c.backend.Summarize(reqCtx, sessionID, f.ID, f.Name, f.MimeType)
		if err != nil {
			return "", asSummarizationError(f.ID, err)
		}
		c.cache.Put(f.ID, text)
		return text, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		logging.Debug("summary caller gave up", zap.String("file_id", f.ID), zap.Error(ctx.Err()))
		return Result{FileID: f.ID}, asSummarizationError(f.ID, ctx.Err())
	}

	if res.Err != nil {
		logging.Warn("summarize failed", zap.String("file_id", f.ID), zap.Error(res.Err))
		return Result{FileID: f.ID}, res.Err
	}
	if res.Shared {
		logging.Debug("summary request shared", zap.String("file_id", f.ID))
	}
	return Result{FileID: f.ID, Text: res.Val.(string)}, nil
}

func (c *Coordinator) track(fileID string, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight[fileID] += delta
	if c.inFlight[fileID] <= 0 {
		delete(c.inFlight, fileID)
	}
}

func asSummarizationError(fileID string, err error) error {
	if se, ok := apperr.AsSummarization(err); ok {
		if se.FileID == "" {
			se.FileID = fileID
		}
		return se
	}
	return &apperr.SummarizationError{FileID: fileID, Err: err}
}
