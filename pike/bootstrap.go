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
package pike

import "bennypowers.dev/pikelsp/types"

// DefaultBootstrapModules names the runtime modules that exist as
// singletons before the analyzer starts. Which modules are bootstrap is
// configuration; this is the stock set.
var DefaultBootstrapModules = []string{"Stdio", "String", "Array", "Mapping"}

// bootstrapDecls describes the best-known surface of each stock
// bootstrap module. The runtime populates these at startup; the table
// exists so introspection of e.g. Stdio returns real members without an
// instantiation attempt.
var bootstrapDecls = map[string][]Decl{
	"Stdio": {
		{Name: "stdin", Kind: types.KindVariable, Type: "object"},
		{Name: "stdout", Kind: types.KindVariable, Type: "object"},
		{Name: "stderr", Kind: types.KindVariable, Type: "object"},
		{Name: "read_file", Kind: types.KindFunction, ReturnType: "string",
			Params: []Param{{Name: "filename", Type: "string"}}},
		{Name: "write_file", Kind: types.KindFunction, ReturnType: "int",
			Params: []Param{{Name: "filename", Type: "string"}, {Name: "str", Type: "string"}}},
		{Name: "exist", Kind: types.KindFunction, ReturnType: "int",
			Params: []Param{{Name: "path", Type: "string"}}},
		{Name: "File", Kind: types.KindClass},
		{Name: "FILE", Kind: types.KindClass},
		{Name: "Port", Kind: types.KindClass},
	},
	"String": {
		{Name: "trim", Kind: types.KindFunction, ReturnType: "string",
			Params: []Param{{Name: "s", Type: "string"}}},
		{Name: "capitalize", Kind: types.KindFunction, ReturnType: "string",
			Params: []Param{{Name: "str", Type: "string"}}},
		{Name: "count", Kind: types.KindFunction, ReturnType: "int",
			Params: []Param{{Name: "haystack", Type: "string"}, {Name: "needle", Type: "string"}}},
		{Name: "Buffer", Kind: types.KindClass},
	},
	"Array": {
		{Name: "map", Kind: types.KindFunction, ReturnType: "array",
			Params: []Param{{Name: "arr", Type: "array"}, {Name: "fun", Type: "function"}}},
		{Name: "filter", Kind: types.KindFunction, ReturnType: "array",
			Params: []Param{{Name: "arr", Type: "array"}, {Name: "fun", Type: "function"}}},
		{Name: "uniq", Kind: types.KindFunction, ReturnType: "array",
			Params: []Param{{Name: "a", Type: "array"}}},
		{Name: "sum", Kind: types.KindFunction, ReturnType: "mixed",
			Params: []Param{{Name: "a", Type: "array"}}},
	},
	"Mapping": {
		{Name: "Iterator", Kind: types.KindClass},
	},
}

// RegisterDefaultBootstrap installs singleton objects for the given
// bootstrap module names. Unknown names get an empty singleton so the
// non-instantiable policy still applies to them.
func (ms *ModuleSystem) RegisterDefaultBootstrap(names []string) {
	for _, name := range names {
		prog := &Program{
			Name:  name,
			Decls: bootstrapDecls[name],
		}
		ms.RegisterBootstrap(name, Singleton(prog))
	}
}
