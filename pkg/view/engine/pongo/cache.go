package pongo

import (
	"sync"

	"github.com/flosch/pongo2/v6"
)

// templateCache memoizes parsed templates by path. Loads for different paths
// run in parallel; concurrent loads of one path share a single parse.
type templateCache struct {
	load func(path string) (*pongo2.Template, error)

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	once sync.Once
	tmpl *pongo2.Template
	err  error
}

func newTemplateCache(load func(path string) (*pongo2.Template, error)) *templateCache {
	return &templateCache{
		load:    load,
		entries: make(map[string]*cacheEntry),
	}
}

// get returns the template for path. Failed loads are evicted so a template
// added later can still be picked up.
func (c *templateCache) get(path string) (*pongo2.Template, error) {
	c.mu.Lock()
	entry, ok := c.entries[path]
	if !ok {
		entry = &cacheEntry{}
		c.entries[path] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		entry.tmpl, entry.err = c.load(path)
	})
	if entry.err != nil {
		c.mu.Lock()
		if c.entries[path] == entry {
			delete(c.entries, path)
		}
		c.mu.Unlock()
		return nil, entry.err
	}
	return entry.tmpl, nil
}
