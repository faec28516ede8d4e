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

// Package introspect extracts symbols, type signatures and inheritance
// chains from compiled programs and from bootstrap singleton objects.
package introspect

import (
	"fmt"
	"path/filepath"
	"strings"

	"bennypowers.dev/pikelsp/autodoc"
	"bennypowers.dev/pikelsp/compile"
	"bennypowers.dev/pikelsp/internal/logging"
	"bennypowers.dev/pikelsp/internal/platform"
	"bennypowers.dev/pikelsp/pike"
	"bennypowers.dev/pikelsp/resolver"
	"bennypowers.dev/pikelsp/types"
)

// Result is one introspection outcome. Compilation failure is a normal
// result with Success unset and Diagnostics populated, never an error.
type Result struct {
	Success                 bool                `json:"success"`
	ParserOnly              bool                `json:"parser_only,omitempty"`
	RequireDirectiveSkipped bool                `json:"require_directive_skipped,omitempty"`
	Diagnostics             []types.Diagnostic  `json:"diagnostics"`
	Symbols                 []types.Symbol      `json:"symbols"`
	Functions               []types.Symbol      `json:"functions"`
	Variables               []types.Symbol      `json:"variables"`
	Classes                 []types.Symbol      `json:"classes"`
	Inherits                []types.Symbol      `json:"inherits"`
}

// InheritLocator resolves an inherit target to a source path. The
// analyzer wires the module resolver in; a nil locator disables
// inheritance chasing.
type InheritLocator interface {
	LocateInherit(name, currentFile string) (path string, ok bool)
}

// Introspector compiles source and walks programs/objects for symbols
type Introspector struct {
	fs       platform.FileSystem
	compiler *compile.Compiler
	locator  InheritLocator
}

// New creates an introspector. locator may be nil.
func New(fs platform.FileSystem, compiler *compile.Compiler, locator InheritLocator) *Introspector {
	return &Introspector{fs: fs, compiler: compiler, locator: locator}
}

// SetInheritLocator installs the inherit resolution callback
func (in *Introspector) SetInheritLocator(locator InheritLocator) {
	in.locator = locator
}

// HandleIntrospect compiles source text and introspects the program.
//
// Two policies apply before compilation. Source carrying a #require
// directive outside a .pmod directory is not compiled at all: compiling
// it would trigger module loading that can blow the latency budget and
// deadlock against the analyzer's own resolution, so the result is
// empty but success-flagged. Source inside a .pmod directory gets its
// leading-dot relative references rewritten to absolute ones first.
func (in *Introspector) HandleIntrospect(code, filename string) *Result {
	filename = platform.NormalizeCompilerPath(filename)
	parentModule := pike.ParentModuleName(filename)

	if parentModule == "" && resolver.HasRequireDirective(code) {
		logging.Debug("[INTROSPECT] skipping compilation of %s: #require directive", filename)
		return &Result{
			Success:                 true,
			ParserOnly:              true,
			RequireDirectiveSkipped: true,
		}
	}

	if parentModule != "" {
		code = resolver.RewriteRelative(code, parentModule)
	}

	prog, diagnostics := in.compiler.Compile(code, filename)
	if prog.Incomplete {
		return &Result{Diagnostics: diagnostics}
	}

	result := in.IntrospectProgram(prog)
	result.Diagnostics = diagnostics
	return result
}

// IntrospectProgram safely instantiates a program and extracts its
// symbols. Instantiation fails for bootstrap singletons and for programs
// compiled with errors; the result then degrades to inheritance-only
// output and the failure never propagates.
func (in *Introspector) IntrospectProgram(prog *pike.Program) *Result {
	obj, err := prog.Instantiate()
	if err != nil {
		logging.Debug("[INTROSPECT] instantiation failed for %s: %v", prog.Path, err)
		result := &Result{Success: true}
		in.addInheritSymbols(result, prog)
		in.finish(result)
		return result
	}
	return in.introspect(obj)
}

// IntrospectObject walks an already-instantiated singleton. This is the
// entry point for bootstrap modules, whose programs refuse instantiation.
func (in *Introspector) IntrospectObject(obj *pike.Object) *Result {
	return in.introspect(obj)
}

func (in *Introspector) introspect(obj *pike.Object) *Result {
	result := &Result{Success: true}
	prog := obj.Program()

	for _, name := range obj.Indices() {
		decl := obj.Index(name)
		if decl.Kind == types.KindInherit {
			continue
		}
		result.Symbols = append(result.Symbols, in.symbolFromDecl(decl, prog.Path))
	}

	in.addInheritSymbols(result, prog)
	in.markInherited(result, prog)
	in.finish(result)
	return result
}

// symbolFromDecl classifies one declaration
func (in *Introspector) symbolFromDecl(decl *pike.Decl, file string) types.Symbol {
	symbol := types.Symbol{
		Name:     decl.Name,
		Kind:     decl.Kind,
		Position: types.Position{File: file, Line: decl.Line},
		Type:     decl.Type,
	}
	if len(decl.Modifiers) > 0 {
		symbol.Modifiers = make(map[string]bool, len(decl.Modifiers))
		for _, m := range decl.Modifiers {
			symbol.Modifiers[m] = true
		}
	}
	if decl.Doc != "" {
		symbol.Documentation = autodoc.Parse(decl.Doc).Markdown()
	}
	if decl.Kind == types.KindFunction {
		in.fillFunction(&symbol, decl)
	}
	return symbol
}

// fillFunction derives the canonical signature and parameter lists.
// Parameter names missing from the declaration are synthesized as
// arg1…argN.
func (in *Introspector) fillFunction(symbol *types.Symbol, decl *pike.Decl) {
	signature := decl.Signature()
	symbol.Type = signature

	argTypes, returnType, ok := ParseSignature(signature)
	if !ok {
		return
	}
	symbol.ArgTypes = argTypes
	symbol.ReturnType = returnType

	names := make([]string, len(argTypes))
	for i := range argTypes {
		if i < len(decl.Params) && decl.Params[i].Name != "" {
			names[i] = decl.Params[i].Name
		} else {
			names[i] = fmt.Sprintf("arg%d", i+1)
		}
	}
	symbol.ArgNames = names
}

func (in *Introspector) addInheritSymbols(result *Result, prog *pike.Program) {
	for _, inh := range prog.Inherits {
		symbol := types.Symbol{
			Name:     inh.Name,
			Kind:     types.KindInherit,
			Position: types.Position{File: prog.Path, Line: inh.Line},
		}
		if inh.Alias != "" {
			symbol.Name = inh.Alias
			symbol.Type = inh.Name
		}
		result.Inherits = append(result.Inherits, symbol)
	}
}

// markInherited merges parent members into the symbol list. For each
// parent program, its indices are read through a safe instantiation;
// members not shadowed locally join the result flagged inherited, with
// the parent file's basename recorded.
func (in *Introspector) markInherited(result *Result, prog *pike.Program) {
	if len(prog.Inherits) == 0 {
		return
	}
	own := make(map[string]bool, len(result.Symbols))
	for _, s := range result.Symbols {
		own[s.Name] = true
	}

	for _, inh := range prog.Inherits {
		parent := in.loadParent(inh, prog.Path)
		if parent == nil {
			continue
		}
		parentObj, err := parent.Instantiate()
		if err != nil {
			logging.Debug("[INTROSPECT] parent %s not instantiable: %v", inh.Name, err)
			continue
		}
		from := filepath.Base(parent.Path)
		for _, name := range parentObj.Indices() {
			if own[name] {
				continue
			}
			decl := parentObj.Index(name)
			if decl.Kind == types.KindInherit {
				continue
			}
			symbol := in.symbolFromDecl(decl, parent.Path)
			symbol.Inherited = true
			symbol.InheritedFrom = from
			result.Symbols = append(result.Symbols, symbol)
			own[name] = true
		}
	}
}

// loadParent resolves and compiles an inherited program
func (in *Introspector) loadParent(inh pike.Inherit, currentFile string) *pike.Program {
	path := inh.Path
	if path == "" && in.locator != nil {
		if located, ok := in.locator.LocateInherit(inh.Name, currentFile); ok {
			path = located
		}
	}
	if path == "" || !in.fs.IsFile(path) {
		return nil
	}
	content, err := in.fs.ReadFile(path)
	if err != nil {
		return nil
	}
	code := string(content)
	if parent := pike.ParentModuleName(path); parent != "" {
		code = resolver.RewriteRelative(code, parent)
	}
	prog, _ := in.compiler.Compile(code, path)

	// an inherit of a file that declares one class means the class body
	if decl := prog.Lookup(lastSegment(inh.Name)); decl != nil && decl.Class != nil {
		return decl.Class
	}
	return prog
}

func lastSegment(name string) string {
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

// finish buckets symbols by kind
func (in *Introspector) finish(result *Result) {
	for _, s := range result.Symbols {
		switch s.Kind {
		case types.KindFunction:
			result.Functions = append(result.Functions, s)
		case types.KindClass:
			result.Classes = append(result.Classes, s)
		case types.KindVariable, types.KindConstant:
			result.Variables = append(result.Variables, s)
		}
	}
}
