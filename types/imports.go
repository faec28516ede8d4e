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

// ImportKind distinguishes the four directive kinds the resolver handles
type ImportKind string

const (
	ImportInclude ImportKind = "include"
	ImportImport  ImportKind = "import"
	ImportInherit ImportKind = "inherit"
	ImportRequire ImportKind = "require"
)

// ImportEntry is one directive found in a source file. Target holds the
// directive's target text with quoting stripped; Line is 1-based.
//
// For #require, ResolutionType records which of the supported subsets
// matched ("string_literal" or "constant_identifier"); any other form is
// recorded with Skip set and never resolved.
type ImportEntry struct {
	Kind           ImportKind `json:"kind"`
	Target         string     `json:"target"`
	Line           int        `json:"line"`
	ResolutionType string     `json:"resolution_type,omitempty"`
	Skip           bool       `json:"skip,omitempty"`

	// AngleBracket is set for #include <...> so resolution searches the
	// system include roots instead of the including file's directory.
	AngleBracket bool `json:"-"`
}

// Resolution is the outcome of resolving a single directive.
type Resolution struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
	Type   string `json:"type,omitempty"`
	Mtime  int64  `json:"mtime,omitempty"`
	Error  string `json:"error,omitempty"`
}
