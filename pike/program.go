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

// Package pike models compiled Pike programs, instantiated objects, and
// the module system the analyzer resolves dotted names against.
package pike

import (
	"errors"
	"fmt"
	"strings"

	"bennypowers.dev/pikelsp/types"
)

// ErrNotInstantiable is returned when a program cannot be safely
// instantiated; callers fall back to inheritance-only introspection.
var ErrNotInstantiable = errors.New("program cannot be instantiated")

// Param is one function parameter
type Param struct {
	Name string
	Type string
}

// Decl is one top-level declaration in a program
type Decl struct {
	Name       string
	Kind       types.SymbolKind
	Type       string  // declared type for variables, constants, typedefs
	ReturnType string  // functions only
	Params     []Param // functions only
	Modifiers  []string
	Line       int
	Doc        string   // attached autodoc text, //! prefixes stripped
	Value      string   // constants: the literal text
	Class      *Program // nested class bodies
}

// Inherit is one inherit directive recorded during compilation.
// Path is resolved lazily; it stays empty until resolution succeeds.
type Inherit struct {
	Name  string
	Alias string
	Line  int
	Path  string
}

// Program is a compiled Pike program: the opaque handle the compilation
// cache owns.
type Program struct {
	Path     string
	Name     string // module name for .pmod members, else ""
	Decls    []Decl
	Inherits []Inherit
	Imports  []string

	// NonInstantiable marks bootstrap programs whose singleton already
	// lives in the runtime; re-instantiation must fail, not be attempted.
	NonInstantiable bool
	// Incomplete marks programs compiled with errors; instantiation of a
	// partial program would dereference unresolved declarations.
	Incomplete bool
}

// Lookup returns the declaration with the given name, or nil
func (p *Program) Lookup(name string) *Decl {
	for i := range p.Decls {
		if p.Decls[i].Name == name {
			return &p.Decls[i]
		}
	}
	return nil
}

// Signature renders a function declaration in the canonical
// "function(t1, t2 : ret)" form the type-of operator reports.
func (d *Decl) Signature() string {
	if d.Kind != types.KindFunction {
		return d.Type
	}
	args := make([]string, 0, len(d.Params))
	for _, p := range d.Params {
		t := p.Type
		if t == "" {
			t = "mixed"
		}
		args = append(args, t)
	}
	ret := d.ReturnType
	if ret == "" {
		ret = "mixed"
	}
	if len(args) == 0 {
		return fmt.Sprintf("function(void : %s)", ret)
	}
	return fmt.Sprintf("function(%s : %s)", strings.Join(args, ", "), ret)
}

// Object is an instantiated program: the symbol table a running instance
// would expose.
type Object struct {
	program *Program
	indices map[string]*Decl
	order   []string
}

// Instantiate safely creates an instance of the program. It returns an
// error, never panics, for bootstrap programs and for programs compiled
// with errors.
func (p *Program) Instantiate() (*Object, error) {
	if p.NonInstantiable {
		return nil, fmt.Errorf("%w: %s is a bootstrap singleton", ErrNotInstantiable, p.describe())
	}
	if p.Incomplete {
		return nil, fmt.Errorf("%w: %s has compilation errors", ErrNotInstantiable, p.describe())
	}
	return newObject(p), nil
}

// Singleton wraps an already-resident program as its singleton object,
// bypassing instantiation. Used for bootstrap modules only.
func Singleton(p *Program) *Object {
	return newObject(p)
}

func newObject(p *Program) *Object {
	o := &Object{
		program: p,
		indices: make(map[string]*Decl, len(p.Decls)),
		order:   make([]string, 0, len(p.Decls)),
	}
	for i := range p.Decls {
		d := &p.Decls[i]
		if _, seen := o.indices[d.Name]; !seen {
			o.order = append(o.order, d.Name)
		}
		o.indices[d.Name] = d
	}
	return o
}

// Program returns the program this object instantiates
func (o *Object) Program() *Program {
	return o.program
}

// Indices returns the instance's top-level names in declaration order
func (o *Object) Indices() []string {
	out := make([]string, len(o.order))
	copy(out, o.order)
	return out
}

// Index returns the declaration behind a name, or nil
func (o *Object) Index(name string) *Decl {
	return o.indices[name]
}

func (p *Program) describe() string {
	if p.Name != "" {
		return p.Name
	}
	if p.Path != "" {
		return p.Path
	}
	return "anonymous program"
}
