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

// Package analyzer owns the analysis core's state: the LRU cache bank,
// the compilation cache and dependency graph, the module resolver, the
// introspector and the reentrancy guard. One Analyzer value serves one
// workspace; the outer bridge dispatches requests into it.
package analyzer

import (
	"fmt"
	"path/filepath"
	"sync"

	"bennypowers.dev/pikelsp/autodoc"
	"bennypowers.dev/pikelsp/cache"
	"bennypowers.dev/pikelsp/compile"
	"bennypowers.dev/pikelsp/internal/logging"
	"bennypowers.dev/pikelsp/internal/platform"
	"bennypowers.dev/pikelsp/introspect"
	"bennypowers.dev/pikelsp/pike"
	"bennypowers.dev/pikelsp/resolver"
	"bennypowers.dev/pikelsp/types"
)

// Config is the analyzer's startup configuration: cache capacities and
// the search roots. Zero capacities take the package defaults.
type Config struct {
	ProjectRoot           string
	IncludePaths          []string
	ModulePaths           []string
	BootstrapModules      []string
	QualificationPrefixes []string
	ProgramCacheSize      int
	StdlibCacheSize       int
	ImportCacheSize       int
	CompilationCacheSize  int
	MaxWaterfallDepth     int
}

// Analyzer is the single owner of all mutable analysis state
type Analyzer struct {
	mu           sync.Mutex
	cfg          Config
	fs           platform.FileSystem
	bank         *cache.Bank
	compilation  *compile.Cache
	compiler     *compile.Compiler
	moduleSystem *pike.ModuleSystem
	resolver     *resolver.Resolver
	introspector *introspect.Introspector

	// currentlyResolving guards against resolve_stdlib re-entering
	// itself through introspection; entries are removed on every exit
	// path, including error paths
	currentlyResolving map[string]struct{}

	// classIndex records where each introspected class was defined,
	// feeding the inherit resolver's first strategy
	classIndex map[string]string
}

// New creates an analyzer over the given filesystem
func New(fs platform.FileSystem, cfg Config) *Analyzer {
	if fs == nil {
		fs = platform.NewOSFileSystem()
	}
	bootstrap := cfg.BootstrapModules
	if bootstrap == nil {
		bootstrap = pike.DefaultBootstrapModules
	}

	ms := pike.NewModuleSystem(fs, cfg.ModulePaths)
	ms.RegisterDefaultBootstrap(bootstrap)

	a := &Analyzer{
		cfg:                cfg,
		fs:                 fs,
		bank:               cache.NewBank(cfg.ProgramCacheSize, cfg.StdlibCacheSize, cfg.ImportCacheSize),
		compilation:        compile.NewCache(cfg.CompilationCacheSize, cfg.ProjectRoot),
		compiler:           compile.NewCompiler(),
		moduleSystem:       ms,
		currentlyResolving: make(map[string]struct{}),
		classIndex:         make(map[string]string),
	}
	a.resolver = resolver.New(fs, ms, cfg.IncludePaths, a)
	if len(cfg.QualificationPrefixes) > 0 {
		a.resolver.SetQualificationPrefixes(cfg.QualificationPrefixes)
	}
	a.introspector = introspect.New(fs, a.compiler, a)
	return a
}

// LookupClass implements resolver.ClassIndex from the introspection
// records.
func (a *Analyzer) LookupClass(name string) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	path, ok := a.classIndex[name]
	return path, ok
}

// LocateInherit implements introspect.InheritLocator via the resolver
func (a *Analyzer) LocateInherit(name, currentFile string) (string, bool) {
	res := a.resolver.Resolve(types.ImportEntry{
		Kind:   types.ImportInherit,
		Target: name,
	}, currentFile)
	return res.Path, res.Exists
}

// LoadSymbols implements resolver.SymbolLoader for waterfall loading:
// parser-level symbols only, no instantiation, so recursion into an
// import graph stays cheap.
func (a *Analyzer) LoadSymbols(code, filename string) []types.Symbol {
	prog, _ := a.compileCached(code, filename, nil)
	if prog == nil {
		return nil
	}
	return symbolsFromProgram(prog)
}

// compileCached compiles through the compilation cache. code may be
// empty to read the file from disk; lspVersion carries an open
// document's editor version when known.
func (a *Analyzer) compileCached(code, filename string, lspVersion *int) (*pike.Program, []types.Diagnostic) {
	filename = platform.NormalizeCompilerPath(filename)
	key := compile.MakeCacheKey(a.fs, filename, lspVersion)

	if key != compile.MissingKey {
		if cached, ok := a.compilation.Get(filename, key); ok {
			return cached.Program, cached.Diagnostics
		}
	}

	if code == "" {
		content, err := a.fs.ReadFile(filename)
		if err != nil {
			return nil, []types.Diagnostic{{
				Severity: "error",
				Message:  fmt.Sprintf("cannot read %s: %v", filename, err),
				Position: types.Position{File: filename, Line: 1},
			}}
		}
		code = string(content)
	}

	prog, diagnostics := a.compiler.Compile(code, filename)
	a.recordClasses(prog)

	dependencies := a.resolveDependencies(code, filename)
	if key != compile.MissingKey {
		a.compilation.Put(filename, key, &compile.Result{
			Program:      prog,
			Diagnostics:  diagnostics,
			Dependencies: dependencies,
		})
	}
	return prog, diagnostics
}

// resolveDependencies resolves every directive in code to the absolute
// paths that feed the dependency graph
func (a *Analyzer) resolveDependencies(code, filename string) []string {
	var deps []string
	seen := map[string]bool{}
	for _, entry := range resolver.ExtractImports(code) {
		if entry.Skip {
			continue
		}
		res := a.resolver.Resolve(entry, filename)
		if res.Exists && !seen[res.Path] {
			seen[res.Path] = true
			deps = append(deps, res.Path)
		}
	}
	return deps
}

func (a *Analyzer) recordClasses(prog *pike.Program) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, decl := range prog.Decls {
		if decl.Kind == types.KindClass {
			a.classIndex[decl.Name] = prog.Path
		}
	}
}

// symbolsFromProgram lists a program's declarations without
// instantiation: the parser-level view used by parse and waterfall.
func symbolsFromProgram(prog *pike.Program) []types.Symbol {
	symbols := make([]types.Symbol, 0, len(prog.Decls))
	for i := range prog.Decls {
		decl := &prog.Decls[i]
		symbol := types.Symbol{
			Name:     decl.Name,
			Kind:     decl.Kind,
			Position: types.Position{File: prog.Path, Line: decl.Line},
			Type:     decl.Type,
		}
		if decl.Kind == types.KindFunction {
			symbol.Type = decl.Signature()
			if argTypes, returnType, ok := introspect.ParseSignature(symbol.Type); ok {
				symbol.ArgTypes = argTypes
				symbol.ReturnType = returnType
				names := make([]string, len(argTypes))
				for j := range argTypes {
					if j < len(decl.Params) && decl.Params[j].Name != "" {
						names[j] = decl.Params[j].Name
					} else {
						names[j] = fmt.Sprintf("arg%d", j+1)
					}
				}
				symbol.ArgNames = names
			}
		}
		if decl.Doc != "" {
			symbol.Documentation = autodoc.Parse(decl.Doc).Markdown()
		}
		symbols = append(symbols, symbol)
	}
	return symbols
}

// Introspect compiles source and extracts its full symbol surface
func (a *Analyzer) Introspect(code, filename string) *introspect.Result {
	result := a.introspector.HandleIntrospect(code, filename)
	if result.Success && !result.ParserOnly {
		// keep the class index warm for inherit resolution
		for _, class := range result.Classes {
			a.mu.Lock()
			a.classIndex[class.Name] = class.Position.File
			a.mu.Unlock()
		}
	}
	return result
}

// StdlibResult is the resolve_stdlib response shape
type StdlibResult struct {
	Found    bool           `json:"found"`
	Circular bool           `json:"circular,omitempty"`
	Module   string         `json:"module,omitempty"`
	Path     string         `json:"path,omitempty"`
	Symbols  []types.Symbol `json:"symbols,omitempty"`
	Message  string         `json:"message,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// ResolveStdlib resolves a stdlib module name, introspects it, and
// caches the outcome. Re-entry for a module already being resolved
// returns a circular marker instead of recursing; the guard entry is
// removed on every exit path.
func (a *Analyzer) ResolveStdlib(module string) *StdlibResult {
	a.mu.Lock()
	if _, resolving := a.currentlyResolving[module]; resolving {
		a.mu.Unlock()
		logging.Debug("[RESOLVER] circular stdlib resolution of %s", module)
		return &StdlibResult{
			Found:    true,
			Circular: true,
			Module:   module,
			Message:  fmt.Sprintf("module %s is already being resolved", module),
		}
	}
	a.currentlyResolving[module] = struct{}{}
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		delete(a.currentlyResolving, module)
		a.mu.Unlock()
	}()

	if cached, ok := a.bank.Get(cache.StoreStdlib, module); ok {
		if result, valid := cached.(*StdlibResult); valid {
			return result
		}
	}

	result := a.resolveStdlibUncached(module)
	a.bank.Put(cache.StoreStdlib, module, result)
	return result
}

func (a *Analyzer) resolveStdlibUncached(module string) *StdlibResult {
	// bootstrap singletons must never be re-instantiated; walk the
	// resident object instead
	if obj, ok := a.moduleSystem.Bootstrap(module); ok {
		intro := a.introspector.IntrospectObject(obj)
		return &StdlibResult{
			Found:   true,
			Module:  module,
			Symbols: intro.Symbols,
		}
	}

	path, err := a.moduleSystem.SourcePathFor(module)
	if err != nil {
		return &StdlibResult{Error: err.Error()}
	}

	result := &StdlibResult{Found: true, Module: module, Path: path}
	if a.fs.IsFile(path) {
		content, readErr := a.fs.ReadFile(path)
		if readErr != nil {
			result.Error = readErr.Error()
			return result
		}
		intro := a.introspector.HandleIntrospect(string(content), path)
		result.Symbols = intro.Symbols
	}
	return result
}

// InheritedResult is the get_inherited response shape
type InheritedResult struct {
	Found        bool           `json:"found"`
	Members      []types.Symbol `json:"members"`
	InheritCount int            `json:"inherit_count"`
}

// GetInherited reports the members a class gains through its inherits
func (a *Analyzer) GetInherited(class string) *InheritedResult {
	path, ok := a.LookupClass(class)
	if !ok {
		if resolved, err := a.moduleSystem.SourcePathFor(class); err == nil {
			path = resolved
		} else {
			return &InheritedResult{}
		}
	}
	if !a.fs.IsFile(path) {
		return &InheritedResult{}
	}
	content, err := a.fs.ReadFile(path)
	if err != nil {
		return &InheritedResult{}
	}

	prog, _ := a.compiler.Compile(string(content), path)
	if decl := prog.Lookup(class); decl != nil && decl.Class != nil {
		prog = decl.Class
	}

	intro := a.introspector.IntrospectProgram(prog)
	result := &InheritedResult{
		Found:        true,
		InheritCount: len(prog.Inherits),
		Members:      []types.Symbol{},
	}
	for _, symbol := range intro.Symbols {
		if symbol.Inherited {
			result.Members = append(result.Members, symbol)
		}
	}
	return result
}

// ExtractResult is the extract_imports response shape
type ExtractResult struct {
	Imports      []types.ImportEntry `json:"imports"`
	Dependencies []string            `json:"dependencies"`
}

// ExtractImports lists a source's directives and their resolved paths
func (a *Analyzer) ExtractImports(code, currentFile string) *ExtractResult {
	result := &ExtractResult{
		Imports:      resolver.ExtractImports(code),
		Dependencies: []string{},
	}
	seen := map[string]bool{}
	for _, entry := range result.Imports {
		if entry.Skip {
			continue
		}
		if res := a.resolveImportCached(entry, currentFile); res.Exists && !seen[res.Path] {
			seen[res.Path] = true
			result.Dependencies = append(result.Dependencies, res.Path)
		}
	}
	return result
}

// ResolveImport resolves a single directive through the import cache
func (a *Analyzer) ResolveImport(importType, target, currentFile string) types.Resolution {
	entry := types.ImportEntry{
		Kind:   types.ImportKind(importType),
		Target: target,
	}
	return a.resolveImportCached(entry, currentFile)
}

// resolveImportCached wraps resolver.Resolve with the imports store.
// The cache key carries the origin file because quote-include and
// inherit resolution are relative to it; the origin's mtime guards
// staleness.
func (a *Analyzer) resolveImportCached(entry types.ImportEntry, currentFile string) types.Resolution {
	key := fmt.Sprintf("%s\x00%s\x00%s", entry.Kind, entry.Target, currentFile)
	if entry.AngleBracket {
		key += "\x00<>"
	}

	var currentMtime int64
	if currentFile != "" {
		if info, err := a.fs.Stat(currentFile); err == nil {
			currentMtime = info.ModTime().Unix()
		}
	}
	if cached, ok := a.bank.GetImport(key, currentMtime); ok {
		if res, valid := cached.(types.Resolution); valid {
			return res
		}
	}

	res := a.resolver.Resolve(entry, currentFile)
	a.bank.PutImport(key, res, currentMtime)
	return res
}

// CircularResult is the check_circular response shape
type CircularResult struct {
	HasCircular  bool     `json:"has_circular"`
	Cycle        []string `json:"cycle"`
	Dependencies []string `json:"dependencies"`
}

// CheckCircularGraph runs cycle detection over a supplied graph
func (a *Analyzer) CheckCircularGraph(graph map[string][]string) *CircularResult {
	has, cycle := resolver.CheckCircular(graph)
	result := &CircularResult{HasCircular: has, Cycle: cycle}
	if result.Cycle == nil {
		result.Cycle = []string{}
	}
	result.Dependencies = []string{}
	return result
}

// CheckCircularSource builds the import graph reachable from a source
// file and runs cycle detection over it
func (a *Analyzer) CheckCircularSource(code, filename string) *CircularResult {
	graph := map[string][]string{}
	visited := map[string]bool{}

	var build func(code, file string, depth int)
	build = func(code, file string, depth int) {
		if visited[file] || depth > resolver.DefaultWaterfallDepth*2 {
			return
		}
		visited[file] = true
		for _, entry := range resolver.ExtractImports(code) {
			if entry.Skip {
				continue
			}
			res := a.resolver.Resolve(entry, file)
			if !res.Exists {
				continue
			}
			graph[file] = append(graph[file], res.Path)
			if a.fs.IsFile(res.Path) {
				if content, err := a.fs.ReadFile(res.Path); err == nil {
					build(string(content), res.Path, depth+1)
				}
			}
		}
	}
	build(code, filename, 0)

	result := a.CheckCircularGraph(graph)
	result.Dependencies = graph[filename]
	if result.Dependencies == nil {
		result.Dependencies = []string{}
	}
	return result
}

// WaterfallSymbols aggregates symbols across the import graph with
// provenance annotations
func (a *Analyzer) WaterfallSymbols(code, filename string, maxDepth int) *resolver.WaterfallResult {
	if maxDepth <= 0 {
		maxDepth = a.cfg.MaxWaterfallDepth
	}
	return a.resolver.Waterfall(code, filename, maxDepth, a)
}

// ParseResult is the parse response shape
type ParseResult struct {
	Symbols     []types.Symbol     `json:"symbols"`
	Diagnostics []types.Diagnostic `json:"diagnostics"`
}

// Parse returns the parser-level symbols of one source text. line
// restricts the output to symbols declared on that line when positive.
func (a *Analyzer) Parse(code, filename string, line int) *ParseResult {
	prog, diagnostics := a.compileCached(code, filename, nil)
	result := &ParseResult{
		Symbols:     []types.Symbol{},
		Diagnostics: diagnostics,
	}
	if result.Diagnostics == nil {
		result.Diagnostics = []types.Diagnostic{}
	}
	if prog == nil {
		return result
	}
	for _, symbol := range symbolsFromProgram(prog) {
		if line > 0 && symbol.Position.Line != line {
			continue
		}
		result.Symbols = append(result.Symbols, symbol)
	}
	return result
}

// TokenInfo is one tokenize response element
type TokenInfo struct {
	Text      string `json:"text"`
	Line      int    `json:"line"`
	Character int    `json:"character"`
	File      string `json:"file"`
}

// InvalidateFile drops a changed path from the compilation cache. With
// transitive set, every dependent is dropped too, and the full set is
// returned so diagnostics can be re-run for each.
func (a *Analyzer) InvalidateFile(path string, transitive bool) []string {
	a.bank.Invalidate(cache.StorePrograms, path)
	return a.compilation.Invalidate(path, transitive)
}

// ClearCaches wipes the cache bank and the compilation cache. The
// dependency graph survives; re-discovering it would cost a full
// recompile of the workspace.
func (a *Analyzer) ClearCaches() {
	a.bank.ClearAll()
	a.compilation.InvalidateAll()
}

// CacheStats reports per-store accounting plus compilation cache size
func (a *Analyzer) CacheStats() map[string]any {
	stats := map[string]any{}
	for name, s := range a.bank.AllStats() {
		stats[name] = s
	}
	stats["compilation"] = map[string]any{
		"size": a.compilation.Size(),
	}
	return stats
}

// Bank exposes the cache bank for tests
func (a *Analyzer) Bank() *cache.Bank { return a.bank }

// CompilationCache exposes the compilation cache for tests
func (a *Analyzer) CompilationCache() *compile.Cache { return a.compilation }

// ModuleSystem exposes the module system for tests
func (a *Analyzer) ModuleSystem() *pike.ModuleSystem { return a.moduleSystem }

// ProjectRelative is a convenience for display paths
func (a *Analyzer) ProjectRelative(path string) string {
	if a.cfg.ProjectRoot == "" {
		return path
	}
	if rel, err := filepath.Rel(a.cfg.ProjectRoot, path); err == nil {
		return rel
	}
	return path
}
