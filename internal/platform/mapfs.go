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
package platform

import (
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"testing/fstest"
	"time"
)

// MapFS wraps testing/fstest.MapFS to implement our FileSystem interface.
// It provides an in-memory filesystem for testing with predictable paths.
// Keys are stored without the leading slash because fstest.MapFS requires
// fs-style relative paths; lookups accept absolute paths.
type MapFS struct {
	fstest.MapFS
}

// NewMapFS creates a new in-memory filesystem from a map of file contents.
// Modification times default to the zero time; use SetModTime to adjust.
func NewMapFS(files map[string]string) *MapFS {
	mapFS := make(fstest.MapFS)
	for p, content := range files {
		mapFS[mapKey(p)] = &fstest.MapFile{
			Data: []byte(content),
			Mode: 0644,
		}
	}
	return &MapFS{MapFS: mapFS}
}

func mapKey(p string) string {
	return strings.TrimPrefix(path.Clean(filepath.ToSlash(p)), "/")
}

// SetModTime sets the modification time for a file, for version-key tests.
func (m *MapFS) SetModTime(name string, mtime time.Time) {
	if f, ok := m.MapFS[mapKey(name)]; ok {
		f.ModTime = mtime
	}
}

func (m *MapFS) ReadFile(name string) ([]byte, error) {
	return fs.ReadFile(m.MapFS, mapKey(name))
}

func (m *MapFS) Stat(name string) (fs.FileInfo, error) {
	return fs.Stat(m.MapFS, mapKey(name))
}

func (m *MapFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return fs.ReadDir(m.MapFS, mapKey(name))
}

func (m *MapFS) Exists(p string) bool {
	_, err := fs.Stat(m.MapFS, mapKey(p))
	return err == nil
}

func (m *MapFS) IsFile(p string) bool {
	info, err := fs.Stat(m.MapFS, mapKey(p))
	return err == nil && info.Mode().IsRegular()
}

func (m *MapFS) IsDir(p string) bool {
	info, err := fs.Stat(m.MapFS, mapKey(p))
	return err == nil && info.IsDir()
}

// Walk visits every file in the map under root, in sorted order. Synthetic
// directory entries are not reported; resolution only cares about files.
func (m *MapFS) Walk(root string, walkFn filepath.WalkFunc) error {
	prefix := mapKey(root)
	names := make([]string, 0, len(m.MapFS))
	for name := range m.MapFS {
		if prefix == "." || name == prefix || strings.HasPrefix(name, prefix+"/") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		info, err := fs.Stat(m.MapFS, name)
		if err != nil {
			continue
		}
		if err := walkFn("/"+name, info, nil); err != nil {
			if err == filepath.SkipDir {
				continue
			}
			if err == filepath.SkipAll {
				return nil
			}
			return err
		}
	}
	return nil
}
