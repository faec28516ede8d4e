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
package resolver

import (
	"bennypowers.dev/pikelsp/internal/logging"
	"bennypowers.dev/pikelsp/types"
)

// SymbolLoader extracts a file's top-level symbols. The analyzer backs
// it with the introspector; waterfall loading stays decoupled from how
// symbols are produced.
type SymbolLoader interface {
	LoadSymbols(code, filename string) []types.Symbol
}

// DefaultWaterfallDepth bounds recursion when the caller does not
const DefaultWaterfallDepth = 3

// WaterfallResult aggregates symbols across an import graph with
// per-symbol provenance. Provenance maps each visited file to the depth
// at which the depth-first walk first reached it (0 for the requesting
// file itself); a file reached again later, even by a shorter path,
// keeps that first depth. Depth −1 is reserved for externally injected
// symbols, which always win merges.
type WaterfallResult struct {
	Symbols    []types.Symbol      `json:"symbols"`
	Imports    []types.ImportEntry `json:"imports"`
	Transitive []string            `json:"transitive"`
	Provenance map[string]int      `json:"provenance"`
}

// Waterfall visits filename at depth 0, extracts its directives,
// recurses into each resolved dependency up to maxDepth, and merges
// symbols shallower-depth-first. Revisiting a file marks every symbol
// already attributed to it as circular.
func (r *Resolver) Waterfall(code, filename string, maxDepth int, loader SymbolLoader) *WaterfallResult {
	if maxDepth <= 0 {
		maxDepth = DefaultWaterfallDepth
	}
	w := &waterfall{
		resolver: r,
		loader:   loader,
		maxDepth: maxDepth,
		visited:  map[string]bool{},
		byName:   map[string]int{},
		result: &WaterfallResult{
			Provenance: map[string]int{},
		},
	}
	w.visit(code, filename, 0)
	return w.result
}

type waterfall struct {
	resolver *Resolver
	loader   SymbolLoader
	maxDepth int
	visited  map[string]bool
	byName   map[string]int // symbol name → index into result.Symbols
	result   *WaterfallResult
}

func (w *waterfall) visit(code, filename string, depth int) {
	if depth > w.maxDepth {
		return
	}
	if w.visited[filename] {
		w.markCircular(filename)
		return
	}
	w.visited[filename] = true
	w.result.Provenance[filename] = depth
	if depth > 0 {
		w.result.Transitive = append(w.result.Transitive, filename)
	}

	if w.loader != nil {
		for _, symbol := range w.loader.LoadSymbols(code, filename) {
			symbol.ProvenanceDepth = depth
			symbol.ProvenanceFile = filename
			w.merge(symbol)
		}
	}

	entries := ExtractImports(code)
	if depth == 0 {
		w.result.Imports = entries
	}

	for _, entry := range entries {
		if entry.Skip {
			continue
		}
		res := w.resolver.Resolve(entry, filename)
		if !res.Exists || !w.resolver.fs.IsFile(res.Path) {
			continue
		}
		content, err := w.resolver.fs.ReadFile(res.Path)
		if err != nil {
			logging.Debug("[WATERFALL] unreadable dependency %s: %v", res.Path, err)
			continue
		}
		w.visit(string(content), res.Path, depth+1)
	}
}

// merge applies the shallower-depth-wins policy. Injected symbols at
// depth −1 always beat loaded ones.
func (w *waterfall) merge(symbol types.Symbol) {
	if idx, ok := w.byName[symbol.Name]; ok {
		if symbol.ProvenanceDepth < w.result.Symbols[idx].ProvenanceDepth {
			w.result.Symbols[idx] = symbol
		}
		return
	}
	w.byName[symbol.Name] = len(w.result.Symbols)
	w.result.Symbols = append(w.result.Symbols, symbol)
}

// Inject adds the requesting file's own externally supplied symbols at
// depth −1; each replaces any loaded symbol of the same name.
func (w *WaterfallResult) Inject(symbols []types.Symbol, filename string) {
	byName := map[string]int{}
	for i, s := range w.Symbols {
		byName[s.Name] = i
	}
	for _, symbol := range symbols {
		symbol.ProvenanceDepth = -1
		symbol.ProvenanceFile = filename
		if idx, ok := byName[symbol.Name]; ok {
			w.Symbols[idx] = symbol
			continue
		}
		byName[symbol.Name] = len(w.Symbols)
		w.Symbols = append(w.Symbols, symbol)
	}
}

// markCircular flags every symbol already attributed to file
func (w *waterfall) markCircular(file string) {
	for i := range w.result.Symbols {
		if w.result.Symbols[i].ProvenanceFile == file {
			w.result.Symbols[i].IsCircular = true
		}
	}
}
