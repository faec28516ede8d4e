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

import (
	"fmt"
	"path/filepath"
	"strings"

	"bennypowers.dev/pikelsp/internal/logging"
	"bennypowers.dev/pikelsp/internal/platform"
)

// Node is a module-system resolution result. The three concrete shapes
// mirror what the runtime hands back for a dotted name: a plain program,
// a directory-backed module (dirnode), or a module merged from several
// source locations (joinnode).
type Node interface {
	// SourcePath returns the filesystem path backing this node, or ""
	// when no constituent has one.
	SourcePath() string
}

// ProgramNode is a module backed by a single file
type ProgramNode struct {
	Path string
}

// SourcePath strips a trailing ":<line>" suffix, which the runtime
// appends for programs defined mid-file.
func (n *ProgramNode) SourcePath() string {
	return platform.StripLineSuffix(n.Path)
}

// DirNode is a directory treated as a module (a .pmod directory)
type DirNode struct {
	Dir string
	fs  platform.FileSystem
}

// SourcePath returns the directory's own module.pmod when present, else
// the directory itself.
func (n *DirNode) SourcePath() string {
	own := filepath.Join(n.Dir, "module.pmod")
	if n.fs.IsFile(own) {
		return own
	}
	return n.Dir
}

// JoinNode merges the same module name found under several module roots.
// Constituents keep root order; the first with a path wins.
type JoinNode struct {
	Constituents []Node
}

// SourcePath recurses into each constituent until a path is found
func (n *JoinNode) SourcePath() string {
	for _, c := range n.Constituents {
		if p := c.SourcePath(); p != "" {
			return p
		}
	}
	return ""
}

// ModuleSystem resolves dotted module names over the configured module
// roots, the way the runtime's master object would.
type ModuleSystem struct {
	fs          platform.FileSystem
	modulePaths []string
	bootstrap   map[string]*Object
}

// NewModuleSystem creates a module system searching the given roots
func NewModuleSystem(fs platform.FileSystem, modulePaths []string) *ModuleSystem {
	return &ModuleSystem{
		fs:          fs,
		modulePaths: modulePaths,
		bootstrap:   make(map[string]*Object),
	}
}

// ModulePaths returns the configured search roots
func (ms *ModuleSystem) ModulePaths() []string {
	return ms.modulePaths
}

// RegisterBootstrap records a singleton object for a module that is
// already resident in the runtime. Its program is marked so that
// instantiation attempts fail instead of re-running bootstrap.
func (ms *ModuleSystem) RegisterBootstrap(name string, obj *Object) {
	if obj != nil && obj.program != nil {
		obj.program.NonInstantiable = true
	}
	ms.bootstrap[name] = obj
}

// Bootstrap returns the singleton for a bootstrap module, if registered
func (ms *ModuleSystem) Bootstrap(name string) (*Object, bool) {
	obj, ok := ms.bootstrap[name]
	return obj, ok
}

// IsBootstrap reports whether the dotted name's head is a bootstrap module
func (ms *ModuleSystem) IsBootstrap(dotted string) bool {
	head, _, _ := strings.Cut(dotted, ".")
	_, ok := ms.bootstrap[head]
	return ok
}

// Resolve walks a dotted module name ("Crypto.RSA") through the module
// roots. Each segment maps to "<Seg>.pmod" (file or directory) or
// "<Seg>.pike"; a directory found under several roots merges into a
// joinnode searched in root order.
func (ms *ModuleSystem) Resolve(dotted string) (Node, error) {
	segments := strings.Split(dotted, ".")
	if len(segments) == 0 || segments[0] == "" {
		return nil, fmt.Errorf("empty module name")
	}

	roots := make([]string, len(ms.modulePaths))
	copy(roots, ms.modulePaths)

	var node Node
	for i, seg := range segments {
		last := i == len(segments)-1
		node = nil

		var nextRoots []string
		var hits []Node
		for _, root := range roots {
			if hit, dirs := ms.resolveSegment(root, seg, last); hit != nil {
				hits = append(hits, hit)
				nextRoots = append(nextRoots, dirs...)
			}
		}

		switch len(hits) {
		case 0:
			return nil, fmt.Errorf("module %q not found (segment %q)", dotted, seg)
		case 1:
			node = hits[0]
		default:
			node = &JoinNode{Constituents: hits}
		}
		roots = nextRoots
	}

	logging.Debug("[MODSYS] resolved %s -> %s", dotted, node.SourcePath())
	return node, nil
}

// resolveSegment resolves one name segment under one root. It returns
// the node (nil on no match) and the directories the next segment
// searches under.
func (ms *ModuleSystem) resolveSegment(root, seg string, last bool) (Node, []string) {
	pmod := filepath.Join(root, seg+".pmod")
	if ms.fs.IsDir(pmod) {
		return &DirNode{Dir: pmod, fs: ms.fs}, []string{pmod}
	}
	if ms.fs.IsFile(pmod) {
		return &ProgramNode{Path: pmod}, nil
	}
	if last {
		pike := filepath.Join(root, seg+".pike")
		if ms.fs.IsFile(pike) {
			return &ProgramNode{Path: pike}, nil
		}
	}
	return nil, nil
}

// SourcePathFor resolves a dotted name directly to a filesystem path
func (ms *ModuleSystem) SourcePathFor(dotted string) (string, error) {
	node, err := ms.Resolve(dotted)
	if err != nil {
		return "", err
	}
	p := node.SourcePath()
	if p == "" {
		return "", fmt.Errorf("module %q resolved without a source path", dotted)
	}
	return p, nil
}

// ParentModuleName computes the module a .pmod-directory member belongs
// to, for rewriting relative references. For a file outside any .pmod
// directory it returns "".
func ParentModuleName(path string) string {
	dir := filepath.Dir(path)
	var parts []string
	for strings.HasSuffix(dir, ".pmod") {
		base := strings.TrimSuffix(filepath.Base(dir), ".pmod")
		parts = append([]string{base}, parts...)
		dir = filepath.Dir(dir)
	}
	return strings.Join(parts, ".")
}
