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
package compile

import "sort"

// pathID is an index into the graph's interning table. Edges are held
// by id, never by reference, so nothing in the graph keeps another node
// alive.
type pathID int

// DependencyGraph is the bidirectional edge store behind the compilation
// cache. forward[p] holds what p imports/inherits/includes; reverse[d]
// holds who depends on d. The two maps are kept mutual inverses by
// construction: every mutation updates both before returning.
type DependencyGraph struct {
	ids     map[string]pathID
	names   []string
	forward map[pathID]map[pathID]struct{}
	reverse map[pathID]map[pathID]struct{}
}

// NewDependencyGraph creates an empty graph
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		ids:     make(map[string]pathID),
		forward: make(map[pathID]map[pathID]struct{}),
		reverse: make(map[pathID]map[pathID]struct{}),
	}
}

func (g *DependencyGraph) intern(path string) pathID {
	if id, ok := g.ids[path]; ok {
		return id
	}
	id := pathID(len(g.names))
	g.ids[path] = id
	g.names = append(g.names, path)
	return id
}

// SetDependencies replaces path's forward edges with deps. Old reverse
// bits are cleared first so stale edges never accumulate across re-puts.
func (g *DependencyGraph) SetDependencies(path string, deps []string) {
	id := g.intern(path)
	for old := range g.forward[id] {
		delete(g.reverse[old], id)
		if len(g.reverse[old]) == 0 {
			delete(g.reverse, old)
		}
	}
	delete(g.forward, id)

	if len(deps) == 0 {
		return
	}
	fwd := make(map[pathID]struct{}, len(deps))
	for _, dep := range deps {
		if dep == path {
			continue
		}
		depID := g.intern(dep)
		fwd[depID] = struct{}{}
		if g.reverse[depID] == nil {
			g.reverse[depID] = make(map[pathID]struct{})
		}
		g.reverse[depID][id] = struct{}{}
	}
	g.forward[id] = fwd
}

// ClearDependencies removes path's forward edges (and their reverse bits)
func (g *DependencyGraph) ClearDependencies(path string) {
	g.SetDependencies(path, nil)
}

// Dependencies returns what path depends on, sorted
func (g *DependencyGraph) Dependencies(path string) []string {
	id, ok := g.ids[path]
	if !ok {
		return nil
	}
	return g.resolve(g.forward[id])
}

// Dependents returns who depends on path, sorted
func (g *DependencyGraph) Dependents(path string) []string {
	id, ok := g.ids[path]
	if !ok {
		return nil
	}
	return g.resolve(g.reverse[id])
}

// TransitiveDependents walks the reverse edges breadth-first from path
// and returns every path that transitively depends on it, excluding path
// itself. Each node is visited at most once.
func (g *DependencyGraph) TransitiveDependents(path string) []string {
	start, ok := g.ids[path]
	if !ok {
		return nil
	}
	visited := map[pathID]struct{}{start: {}}
	queue := []pathID{start}
	var out []string
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for dep := range g.reverse[id] {
			if _, seen := visited[dep]; seen {
				continue
			}
			visited[dep] = struct{}{}
			out = append(out, g.names[dep])
			queue = append(queue, dep)
		}
	}
	sort.Strings(out)
	return out
}

func (g *DependencyGraph) resolve(set map[pathID]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, g.names[id])
	}
	sort.Strings(out)
	return out
}
