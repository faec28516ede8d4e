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
	"os"
	"path/filepath"
)

// FileSystem provides an abstraction over the filesystem operations the
// analyzer performs. The analyzer never writes: it reads source, stats
// files for version keys, and walks directories during resolution.
// This interface enables:
// - Testing with in-memory filesystems
// - Sandboxed or remote-workspace environments
type FileSystem interface {
	// ReadFile reads the content of a source file
	ReadFile(name string) ([]byte, error)
	// Stat returns file metadata, used to compute version keys
	Stat(name string) (fs.FileInfo, error)
	// ReadDir lists a directory, used by module resolution
	ReadDir(name string) ([]fs.DirEntry, error)
	// Exists reports whether a path exists
	Exists(path string) bool
	// IsFile reports whether a path exists and is a regular file
	IsFile(path string) bool
	// IsDir reports whether a path exists and is a directory
	IsDir(path string) bool
	// Walk walks the file tree rooted at root
	Walk(root string, walkFn filepath.WalkFunc) error
}

// OSFileSystem implements FileSystem using the standard os package.
// This is the production implementation.
type OSFileSystem struct{}

// NewOSFileSystem creates a new filesystem that uses the standard os package.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

func (o *OSFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (o *OSFileSystem) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (o *OSFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(name)
}

func (o *OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (o *OSFileSystem) IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (o *OSFileSystem) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (o *OSFileSystem) Walk(root string, walkFn filepath.WalkFunc) error {
	return filepath.Walk(root, walkFn)
}
