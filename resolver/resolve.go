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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"bennypowers.dev/pikelsp/internal/logging"
	"bennypowers.dev/pikelsp/internal/platform"
	"bennypowers.dev/pikelsp/lexer"
	"bennypowers.dev/pikelsp/pike"
	"bennypowers.dev/pikelsp/types"
)

// DefaultQualificationPrefixes are the module prefixes the inherit
// resolver sweeps when a bare class name fails to resolve directly.
var DefaultQualificationPrefixes = []string{
	"Protocols", "Tools", "Stdio", "Parser", "Sql", "Web", "Thread", "Gz", "Crypto",
}

// maxWorkspaceAscent bounds how many parent directories the inherit
// workspace walk climbs from the current file.
const maxWorkspaceAscent = 5

// sourcePattern matches Pike source files during the workspace walk
const sourcePattern = "**/*.{pike,pmod}"

// ClassIndex answers "where was this class introspected before". The
// analyzer backs it with its introspection records; the zero value of a
// nil index simply never matches.
type ClassIndex interface {
	LookupClass(name string) (path string, ok bool)
}

// Resolver resolves directive entries to filesystem paths
type Resolver struct {
	fs           platform.FileSystem
	ms           *pike.ModuleSystem
	includePaths []string
	prefixes     []string
	classIndex   ClassIndex
}

// New creates a resolver. includePaths are the system include roots for
// angle-bracket includes; classIndex may be nil.
func New(fs platform.FileSystem, ms *pike.ModuleSystem, includePaths []string, classIndex ClassIndex) *Resolver {
	return &Resolver{
		fs:           fs,
		ms:           ms,
		includePaths: includePaths,
		prefixes:     DefaultQualificationPrefixes,
		classIndex:   classIndex,
	}
}

// SetQualificationPrefixes overrides the inherit sweep prefix list
func (r *Resolver) SetQualificationPrefixes(prefixes []string) {
	r.prefixes = prefixes
}

// Resolve resolves one directive. currentFile may be empty when the
// origin is unknown; relative strategies are skipped in that case.
func (r *Resolver) Resolve(entry types.ImportEntry, currentFile string) types.Resolution {
	if entry.Skip {
		return failure(fmt.Sprintf("unsupported #require form: %s", entry.Target))
	}
	switch entry.Kind {
	case types.ImportInclude:
		return r.resolveInclude(entry, currentFile)
	case types.ImportImport:
		return r.resolveModule(entry.Target)
	case types.ImportInherit:
		return r.resolveInherit(entry.Target, currentFile)
	case types.ImportRequire:
		return r.resolveRequire(entry.Target, currentFile)
	default:
		return failure(fmt.Sprintf("unknown directive kind %q", entry.Kind))
	}
}

// resolveInclude searches quote includes relative to the including
// file's directory and angle includes through the system include roots.
func (r *Resolver) resolveInclude(entry types.ImportEntry, currentFile string) types.Resolution {
	target := entry.Target
	angle := entry.AngleBracket
	if strings.HasPrefix(target, "<") && strings.HasSuffix(target, ">") {
		target = target[1 : len(target)-1]
		angle = true
	}

	var candidates []string
	if angle {
		for _, root := range r.includePaths {
			candidates = append(candidates, filepath.Join(root, target))
		}
	} else {
		if currentFile != "" {
			candidates = append(candidates, filepath.Join(filepath.Dir(currentFile), target))
		}
		candidates = append(candidates, target)
	}

	for _, candidate := range candidates {
		if r.fs.IsFile(candidate) {
			return r.success(candidate, "include")
		}
	}
	return failure(fmt.Sprintf("include %q not found", entry.Target))
}

// resolveModule asks the module system for a dotted name and takes the
// source path off the resulting node, handling joinnode and dirnode
// wrappers inside the module system itself.
func (r *Resolver) resolveModule(dotted string) types.Resolution {
	path, err := r.ms.SourcePathFor(dotted)
	if err != nil {
		return failure(err.Error())
	}
	return r.success(path, "import")
}

// resolveInherit tries, in order: the introspection record for the
// class name, a qualification sweep over common module prefixes, a
// workspace walk for a textual class declaration, and finally host
// module resolution of the bare name.
func (r *Resolver) resolveInherit(name, currentFile string) types.Resolution {
	if r.classIndex != nil {
		if path, ok := r.classIndex.LookupClass(name); ok && r.fs.Exists(path) {
			return r.success(path, "inherit")
		}
	}

	if !strings.Contains(name, ".") {
		for _, prefix := range r.prefixes {
			if res := r.resolveModule(prefix + "." + name); res.Exists {
				res.Type = "inherit"
				return res
			}
		}
	}

	if currentFile != "" {
		if path, ok := r.workspaceClassSearch(name, filepath.Dir(currentFile)); ok {
			return r.success(path, "inherit")
		}
	}

	if res := r.resolveModule(name); res.Exists {
		res.Type = "inherit"
		return res
	}
	return failure(fmt.Sprintf("inherit %q not found", name))
}

// resolveRequire resolves a #require target: module resolution first,
// then a path join relative to the current file. Whether the constant
// form names a program or a value is not validated upstream; this is
// best effort, and unresolved cases are flagged in the result.
func (r *Resolver) resolveRequire(target, currentFile string) types.Resolution {
	if res := r.resolveModule(target); res.Exists {
		res.Type = "require"
		return res
	}
	if currentFile != "" {
		candidate := filepath.Join(filepath.Dir(currentFile), target)
		if r.fs.IsFile(candidate) {
			return r.success(candidate, "require")
		}
	}
	return failure(fmt.Sprintf("require %q not resolved", target))
}

// workspaceClassSearch ascends from startDir up to five parents, and in
// each scope scans Pike sources for a textual `class <name>` declaration.
func (r *Resolver) workspaceClassSearch(name, startDir string) (string, bool) {
	dir := startDir
	for level := 0; level <= maxWorkspaceAscent; level++ {
		var found string
		err := r.fs.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() || found != "" {
				return nil
			}
			rel, relErr := filepath.Rel(dir, path)
			if relErr != nil {
				rel = path
			}
			if ok, _ := doublestar.Match(sourcePattern, filepath.ToSlash(rel)); !ok {
				return nil
			}
			content, readErr := r.fs.ReadFile(path)
			if readErr != nil {
				return nil
			}
			if declaresClass(string(content), name) {
				found = path
				return filepath.SkipAll
			}
			return nil
		})
		if err == nil && found != "" {
			logging.Debug("[RESOLVER] workspace walk found class %s in %s", name, found)
			return found, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

// declaresClass reports whether source declares `class name` at any
// nesting level, using the lexer so strings and comments never match.
func declaresClass(code, name string) bool {
	tokens := lexer.Code(lexer.Tokenize(code))
	for i := 0; i+1 < len(tokens); i++ {
		if tokens[i].Kind == lexer.Keyword && tokens[i].Text == "class" &&
			tokens[i+1].Kind == lexer.Identifier && tokens[i+1].Text == name {
			return true
		}
	}
	return false
}

func (r *Resolver) success(path, kind string) types.Resolution {
	res := types.Resolution{Path: path, Exists: true, Type: kind}
	if info, err := r.fs.Stat(path); err == nil {
		res.Mtime = info.ModTime().Unix()
	}
	return res
}

func failure(message string) types.Resolution {
	return types.Resolution{Exists: false, Error: message}
}
