package geojson

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache memoizes parsed areas per event id. Parsing the same document
// on every scheduler tick would dominate CPU time, so results are kept
// until the underlying GeoJSON source is explicitly invalidated (for
// example after a re-download).
type Cache struct {
	areas *lru.Cache[string, *Area]
}

// NewCache creates a cache holding up to size parsed areas.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = 64
	}
	areas, err := lru.New[string, *Area](size)
	if err != nil {
		return nil, fmt.Errorf("creating area cache: %w", err)
	}
	return &Cache{areas: areas}, nil
}

// Get returns the cached area for the event id, if present.
func (c *Cache) Get(eventID string) (*Area, bool) {
	return c.areas.Get(eventID)
}

// GetOrParse returns the cached area for the event id, fetching and
// parsing the raw document on a miss.
func (c *Cache) GetOrParse(eventID string, opts ParseOptions, fetch func() ([]byte, error)) (*Area, error) {
	if area, ok := c.areas.Get(eventID); ok {
		return area, nil
	}
	raw, err := fetch()
	if err != nil {
		return nil, err
	}
	area, err := ParseWithOptions(raw, opts)
	if err != nil {
		return nil, err
	}
	c.areas.Add(eventID, area)
	return area, nil
}

// Invalidate drops the cached area for the event id.
func (c *Cache) Invalidate(eventID string) {
	c.areas.Remove(eventID)
}

// Purge drops every cached area.
func (c *Cache) Purge() {
	c.areas.Purge()
}
