/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package compile holds the compiler front-end and the compilation
// cache with its dependency graph.
package compile

import (
	"sort"
	"strings"
	"sync"

	"bennypowers.dev/pikelsp/internal/logging"
	"bennypowers.dev/pikelsp/pike"
	"bennypowers.dev/pikelsp/types"
)

// Result is one compilation outcome. Program is the opaque handle owned
// by the cache entry; Dependencies holds the absolute paths discovered
// during compilation that fall under the project root.
type Result struct {
	Program      *pike.Program
	Diagnostics  []types.Diagnostic
	Dependencies []string
}

// DefaultCacheCapacity bounds the number of distinct paths the
// compilation cache tracks at once.
const DefaultCacheCapacity = 100

// Cache maps path → versionKey → Result. The outer level is keyed by
// path so "this file changed" invalidation is O(1) no matter how many
// version keys an open document has accumulated; a flat cache could not
// purge them cheaply.
type Cache struct {
	mu          sync.Mutex
	entries     map[string]map[string]*Result
	stamps      map[string]uint64
	counter     uint64
	capacity    int
	projectRoot string
	graph       *DependencyGraph
}

// NewCache creates a compilation cache. Dependencies outside projectRoot
// are not tracked as edges: external and stdlib files do not change
// during a session, so edges for them would be pure overhead.
func NewCache(capacity int, projectRoot string) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		entries:     make(map[string]map[string]*Result),
		stamps:      make(map[string]uint64),
		capacity:    capacity,
		projectRoot: projectRoot,
		graph:       NewDependencyGraph(),
	}
}

// Graph exposes the dependency graph for read access in tests and the
// circular-dependency handler.
func (c *Cache) Graph() *DependencyGraph {
	return c.graph
}

// Get returns the cached result for (path, versionKey). A Get hit stamps
// the path's access counter, same as Put; reads and writes share one
// recency discipline.
func (c *Cache) Get(path, versionKey string) (*Result, bool) {
	if versionKey == MissingKey {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	versions, ok := c.entries[path]
	if !ok {
		return nil, false
	}
	result, ok := versions[versionKey]
	if !ok {
		return nil, false
	}
	c.counter++
	c.stamps[path] = c.counter
	return result, true
}

// Put stores a result and updates the dependency graph from the result's
// dependencies. When the cache is full and path is new, the coldest ten
// percent of paths (at least one) are evicted first.
func (c *Cache) Put(path, versionKey string, result *Result) {
	if versionKey == MissingKey || result == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, present := c.entries[path]; !present && len(c.entries) >= c.capacity {
		c.evictBatch()
	}

	c.updateEdges(path, result.Dependencies)

	if c.entries[path] == nil {
		c.entries[path] = make(map[string]*Result)
	}
	c.entries[path][versionKey] = result
	c.counter++
	c.stamps[path] = c.counter
}

// evictBatch removes max(1, capacity/10) paths in ascending stamp order,
// ties broken lexicographically, releasing their dependency edges.
// Called with the lock held.
func (c *Cache) evictBatch() {
	n := c.capacity / 10
	if n < 1 {
		n = 1
	}
	paths := make([]string, 0, len(c.entries))
	for path := range c.entries {
		paths = append(paths, path)
	}
	sort.Slice(paths, func(i, j int) bool {
		si, sj := c.stamps[paths[i]], c.stamps[paths[j]]
		if si != sj {
			return si < sj
		}
		return paths[i] < paths[j]
	})
	if n > len(paths) {
		n = len(paths)
	}
	for _, path := range paths[:n] {
		c.dropLocked(path)
	}
	logging.Debug("[COMPILE_CACHE] batch evicted %d of %d paths", n, len(paths))
}

func (c *Cache) dropLocked(path string) {
	delete(c.entries, path)
	delete(c.stamps, path)
	c.graph.ClearDependencies(path)
}

// updateEdges replaces path's forward edges with the in-root subset of
// newDeps. Called with the lock held.
func (c *Cache) updateEdges(path string, newDeps []string) {
	var filtered []string
	for _, dep := range newDeps {
		if c.underRoot(dep) {
			filtered = append(filtered, dep)
		}
	}
	c.graph.SetDependencies(path, filtered)
}

func (c *Cache) underRoot(path string) bool {
	if c.projectRoot == "" {
		return true
	}
	return path == c.projectRoot ||
		strings.HasPrefix(path, c.projectRoot+"/") ||
		strings.HasPrefix(path, c.projectRoot+"\\")
}

// Invalidate drops every version entry for path. With transitive set it
// also walks the reverse graph breadth-first, dropping each dependent
// and its forward edges, and returns every path invalidated (including
// path itself) so the outer layer can re-run diagnostics.
func (c *Cache) Invalidate(path string, transitive bool) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !transitive {
		c.dropLocked(path)
		return []string{path}
	}

	invalidated := []string{path}
	for _, dependent := range c.graph.TransitiveDependents(path) {
		invalidated = append(invalidated, dependent)
	}
	for _, p := range invalidated {
		c.dropLocked(p)
	}
	sort.Strings(invalidated)
	logging.Debug("[COMPILE_CACHE] transitive invalidation of %s evicted %d paths", path, len(invalidated))
	return invalidated
}

// InvalidateAll wipes the cache but preserves the dependency graph, so
// re-discovery cost is not paid after a full refresh.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]map[string]*Result)
	c.stamps = make(map[string]uint64)
}

// Size returns the number of distinct paths cached
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Has reports whether any version of path is cached
func (c *Cache) Has(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[path]
	return ok
}
