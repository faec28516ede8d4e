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
package types

// SymbolKind classifies a top-level Pike declaration
type SymbolKind string

const (
	KindVariable     SymbolKind = "variable"
	KindFunction     SymbolKind = "function"
	KindClass        SymbolKind = "class"
	KindConstant     SymbolKind = "constant"
	KindTypedef      SymbolKind = "typedef"
	KindEnum         SymbolKind = "enum"
	KindEnumConstant SymbolKind = "enum_constant"
	KindInherit      SymbolKind = "inherit"
	KindImport       SymbolKind = "import"
	KindInclude      SymbolKind = "include"
	KindRequire      SymbolKind = "require"
	KindModule       SymbolKind = "module"
	KindNamespace    SymbolKind = "namespace"
)

// Position locates a symbol or diagnostic in a source file. Lines are
// 1-based, matching the Pike compiler's own reporting.
type Position struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// Symbol is one top-level declaration extracted from a program.
// Provenance fields are populated by waterfall loading only.
type Symbol struct {
	Name          string          `json:"name"`
	Kind          SymbolKind      `json:"kind"`
	Modifiers     map[string]bool `json:"modifiers,omitempty"`
	Position      Position        `json:"position"`
	Type          string          `json:"type,omitempty"`
	ReturnType    string          `json:"return_type,omitempty"`
	ArgNames      []string        `json:"arg_names,omitempty"`
	ArgTypes      []string        `json:"arg_types,omitempty"`
	Inherited     bool            `json:"inherited,omitempty"`
	InheritedFrom string          `json:"inherited_from,omitempty"`
	Documentation string          `json:"documentation,omitempty"`

	ProvenanceDepth int    `json:"provenance_depth,omitempty"`
	ProvenanceFile  string `json:"provenance_file,omitempty"`
	IsCircular      bool   `json:"is_circular,omitempty"`
}
