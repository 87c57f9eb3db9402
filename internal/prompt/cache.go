package prompt

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// Cache holds the set of accepted definitions for one directory. Reload is
// full and atomic: a complete snapshot is built from a fresh scan and swapped
// in one step, so readers always observe an internally consistent set.
// Reloads are serialized; readers never block.
type Cache struct {
	dir  string
	mu   sync.Mutex // serializes Reload and Clear
	snap atomic.Pointer[snapshot]
}

type snapshot struct {
	byName map[string]*Definition
	names  []string // sorted
	stats  Stats
}

func emptySnapshot() *snapshot {
	return &snapshot{byName: make(map[string]*Definition)}
}

// NewCache creates an empty cache for dir. Call Reload to populate it.
func NewCache(dir string) *Cache {
	c := &Cache{dir: dir}
	c.snap.Store(emptySnapshot())
	return c
}

// Reload rebuilds the cache from a fresh directory scan. On a scan failure the
// previous snapshot stays live and in use.
func (c *Cache) Reload() (Stats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	defs, stats, err := Load(c.dir)
	if err != nil {
		return Stats{}, err
	}

	next := &snapshot{
		byName: make(map[string]*Definition, len(defs)),
		names:  make([]string, 0, len(defs)),
		stats:  stats,
	}
	for _, def := range defs {
		next.byName[def.Name] = def
		next.names = append(next.names, def.Name)
	}
	sort.Strings(next.names)

	c.snap.Store(next)
	return stats, nil
}

// Clear drops every cached definition and the load statistics.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.Store(emptySnapshot())
}

// Get returns the definition with the exact given name.
func (c *Cache) Get(name string) (*Definition, bool) {
	def, ok := c.snap.Load().byName[name]
	return def, ok
}

// List returns all cached definitions sorted by name.
func (c *Cache) List() []*Definition {
	snap := c.snap.Load()
	out := make([]*Definition, 0, len(snap.names))
	for _, name := range snap.names {
		out = append(out, snap.byName[name])
	}
	return out
}

// FilterByCategory returns definitions whose category matches exactly.
func (c *Cache) FilterByCategory(category string) []*Definition {
	return c.filter(func(def *Definition) bool {
		return def.Category == category
	})
}

// FilterByTag returns definitions carrying the given tag.
func (c *Cache) FilterByTag(tag string) []*Definition {
	return c.filter(func(def *Definition) bool {
		for _, t := range def.Tags {
			if t == tag {
				return true
			}
		}
		return false
	})
}

// Search returns definitions matching the keyword as a case-insensitive
// substring of name, title, description or any tag.
func (c *Cache) Search(keyword string) []*Definition {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return c.List()
	}
	return c.filter(func(def *Definition) bool {
		if strings.Contains(strings.ToLower(def.Name), kw) ||
			strings.Contains(strings.ToLower(def.Title), kw) ||
			strings.Contains(strings.ToLower(def.Description), kw) {
			return true
		}
		for _, t := range def.Tags {
			if strings.Contains(strings.ToLower(t), kw) {
				return true
			}
		}
		return false
	})
}

// Stats returns the statistics of the last completed reload.
func (c *Cache) Stats() Stats {
	return c.snap.Load().stats
}

// Len returns the number of cached definitions.
func (c *Cache) Len() int {
	return len(c.snap.Load().names)
}

// Dir returns the directory this cache loads from.
func (c *Cache) Dir() string {
	return c.dir
}

func (c *Cache) filter(keep func(*Definition) bool) []*Definition {
	snap := c.snap.Load()
	var out []*Definition
	for _, name := range snap.names {
		if def := snap.byName[name]; keep(def) {
			out = append(out, def)
		}
	}
	return out
}
