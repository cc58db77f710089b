package repo

import (
	"context"
	"sync"
	"time"

	"github.com/pkordes/cyclelog/internal/domain"
)

type cachedList struct {
	entries []domain.LogEntry
	fetched time.Time
}

// CachedLogRepo decorates a LogRepo with a short-lived cache of List results,
// keyed by range. Any successful mutation drops the whole cache: the client
// re-fetches on change rather than patching cached entries.
type CachedLogRepo struct {
	next LogRepo
	ttl  time.Duration
	now  func() time.Time

	mu    sync.RWMutex
	lists map[domain.Range]cachedList
	// gen counts invalidations. A fetch that straddles one is not stored.
	gen uint64
}

// NewCachedLogRepo wraps next. A ttl of zero or less disables caching.
func NewCachedLogRepo(next LogRepo, ttl time.Duration) *CachedLogRepo {
	return &CachedLogRepo{
		next:  next,
		ttl:   ttl,
		now:   time.Now,
		lists: make(map[domain.Range]cachedList),
	}
}

// List serves a fresh cached result or fetches and stores one.
// The returned slice is always a copy the caller may modify.
func (c *CachedLogRepo) List(ctx context.Context, r domain.Range) ([]domain.LogEntry, error) {
	var gen uint64
	if c.ttl > 0 {
		c.mu.RLock()
		hit, ok := c.lists[r]
		gen = c.gen
		c.mu.RUnlock()
		if ok && c.now().Sub(hit.fetched) < c.ttl {
			return append([]domain.LogEntry(nil), hit.entries...), nil
		}
	}

	entries, err := c.next.List(ctx, r)
	if err != nil {
		return nil, err
	}

	if c.ttl > 0 {
		c.mu.Lock()
		if c.gen == gen {
			c.lists[r] = cachedList{entries: append([]domain.LogEntry(nil), entries...), fetched: c.now()}
		}
		c.mu.Unlock()
	}
	return entries, nil
}

func (c *CachedLogRepo) Create(ctx context.Context, e domain.LogEntry) (domain.LogEntry, error) {
	got, err := c.next.Create(ctx, e)
	if err == nil {
		c.Invalidate()
	}
	return got, err
}

func (c *CachedLogRepo) Update(ctx context.Context, e domain.LogEntry) (domain.LogEntry, error) {
	got, err := c.next.Update(ctx, e)
	if err == nil {
		c.Invalidate()
	}
	return got, err
}

func (c *CachedLogRepo) Delete(ctx context.Context, id string) error {
	err := c.next.Delete(ctx, id)
	if err == nil {
		c.Invalidate()
	}
	return err
}

// CycleLengths is not cached.
func (c *CachedLogRepo) CycleLengths(ctx context.Context) ([]domain.CycleLength, error) {
	return c.next.CycleLengths(ctx)
}

// Invalidate drops every cached list.
func (c *CachedLogRepo) Invalidate() {
	c.mu.Lock()
	clear(c.lists)
	c.gen++
	c.mu.Unlock()
}

// SetClock replaces the time source. Intended for tests.
func (c *CachedLogRepo) SetClock(now func() time.Time) {
	c.now = now
}
