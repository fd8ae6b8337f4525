package dashboard

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"layoffs-engine/internal/domain"
	"layoffs-engine/internal/errs"
	"layoffs-engine/internal/store"

	"golang.org/x/sync/singleflight"
)

type cacheEntry struct {
	modTime time.Time
	size    int64
	gen     uint64
	table   domain.Table
}

// Cache memoizes parsed tables by path. An entry is reused while the file's
// modification time and size are unchanged. Concurrent misses for one path
// share a single load. Invalidate bumps the path's generation, so a load
// already in flight when it runs is returned to its callers but not kept.
//
// Tables returned by Cache are shared; callers must not modify them.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	gens    map[string]uint64
	group   singleflight.Group
	loads   atomic.Int64

	load func(path string) (domain.Table, error)
}

func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		gens:    make(map[string]uint64),
		load:    store.LoadTable,
	}
}

// Table returns the table at path, loading it when the file changed.
func (c *Cache) Table(path string) (domain.Table, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return domain.Table{}, &errs.StorageError{Op: "load", Path: path, Err: err}
	}

	c.mu.Lock()
	e, ok := c.entries[path]
	gen := c.gens[path]
	c.mu.Unlock()
	if ok && e.gen == gen && e.modTime.Equal(fi.ModTime()) && e.size == fi.Size() {
		return e.table, nil
	}

	// Callers only share a load of the same file version and generation.
	key := fmt.Sprintf("%s\x00%d\x00%d\x00%d", path, fi.ModTime().UnixNano(), fi.Size(), gen)
	v, err, _ := c.group.Do(key, func() (any, error) {
		t, err := c.load(path)
		if err != nil {
			return domain.Table{}, err
		}
		c.loads.Add(1)

		c.mu.Lock()
		defer c.mu.Unlock()
		cur, ok := c.entries[path]
		if c.gens[path] == gen && (!ok || cur.gen != gen || !cur.modTime.After(fi.ModTime())) {
			c.entries[path] = cacheEntry{modTime: fi.ModTime(), size: fi.Size(), gen: gen, table: t}
		}
		return t, nil
	})
	if err != nil {
		return domain.Table{}, err
	}
	return v.(domain.Table), nil
}

// Invalidate drops the entry for path so the next read reloads it.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.gens[path]++
	c.mu.Unlock()
}

// Loads reports how many times a table was read from disk.
func (c *Cache) Loads() int64 { return c.loads.Load() }
