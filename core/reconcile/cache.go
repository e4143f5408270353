package reconcile

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// AccessorialLoader fetches the accessorial table of an agreement from
// its source workbook. A nil table with a nil error means the agreement
// has no accessorial costs.
type AccessorialLoader func(agreement string) (*AccessorialTable, error)

// AccessorialCache lazily loads accessorial tables per agreement and
// caches the result, including negative ones, so each workbook is read
// at most once per batch run. Concurrent loads of the same agreement are
// collapsed.
type AccessorialCache struct {
	mu     sync.RWMutex
	sf     singleflight.Group
	tables map[string]*AccessorialTable
	load   AccessorialLoader
}

// NewAccessorialCache creates a cache backed by the given loader.
func NewAccessorialCache(load AccessorialLoader) *AccessorialCache {
	return &AccessorialCache{
		tables: make(map[string]*AccessorialTable),
		load:   load,
	}
}

// Get returns the accessorial table for an agreement, loading it on the
// first request. Load failures are cached as absent.
func (c *AccessorialCache) Get(agreement string) *AccessorialTable {
	c.mu.RLock()
	tbl, ok := c.tables[agreement]
	c.mu.RUnlock()
	if ok {
		return tbl
	}

	if c.load == nil {
		return nil
	}

	v, _, _ := c.sf.Do(agreement, func() (any, error) {
		tbl, err := c.load(agreement)
		if err != nil {
			tbl = nil
		}

		c.mu.Lock()
		c.tables[agreement] = tbl
		c.mu.Unlock()

		return tbl, nil
	})

	tbl, _ = v.(*AccessorialTable)
	return tbl
}

// Put stores a table directly, bypassing the loader.
func (c *AccessorialCache) Put(agreement string, tbl *AccessorialTable) {
	c.mu.Lock()
	c.tables[agreement] = tbl
	c.mu.Unlock()
}

// Clear drops all cached tables.
func (c *AccessorialCache) Clear() {
	c.mu.Lock()
	c.tables = make(map[string]*AccessorialTable)
	c.mu.Unlock()
}
