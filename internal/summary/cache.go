package summary

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCapacity is the number of summaries kept in memory.
const DefaultCapacity = 10

// Entry is a cached summary.
type Entry struct {
	FileID     string
	Text       string
	InsertedAt time.Time
}

// Cache is a bounded most-recently-inserted summary cache. Putting an
// existing file id replaces its entry and makes it the newest; when the
// cache is full the oldest insertion is evicted. Reads never change recency.
type Cache struct {
	entries *lru.Cache[string, Entry]
	now     func() time.Time
}

// NewCache returns a cache holding at most capacity entries.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	// lru.New only fails for a non-positive size.
	entries, _ := lru.New[string, Entry](capacity)
	return &Cache{entries: entries, now: time.Now}
}

// Get returns the summary cached for fileID.
func (c *Cache) Get(fileID string) (Entry, bool) {
	return c.entries.Peek(fileID)
}

// Put stores text for fileID.
func (c *Cache) Put(fileID, text string) {
	c.entries.Add(fileID, Entry{FileID: fileID, Text: text, InsertedAt: c.now()})
}

// Len returns the number of cached summaries.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// FileIDs returns the cached ids from oldest to newest insertion.
func (c *Cache) FileIDs() []string {
	return c.entries.Keys()
}

// Purge empties the cache.
func (c *Cache) Purge() {
	c.entries.Purge()
}
