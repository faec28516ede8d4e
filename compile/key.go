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
package compile

import (
	"fmt"

	"bennypowers.dev/pikelsp/internal/platform"
)

// MissingKey is the version key for a path that does not exist on disk.
// Callers treat it as an immediate miss.
const MissingKey = ""

// MakeCacheKey computes the version key discriminating two contents of
// the same path. Open documents carry an editor-assigned monotonic
// version; everything else is identified by its stat signature. The NUL
// separator keeps drive-letter paths with colons unambiguous on Windows.
func MakeCacheKey(fs platform.FileSystem, path string, lspVersion *int) string {
	if lspVersion != nil {
		return fmt.Sprintf("LSP:%d", *lspVersion)
	}
	info, err := fs.Stat(path)
	if err != nil {
		return MissingKey
	}
	return fmt.Sprintf("FS:%d\x00%d", info.ModTime().Unix(), info.Size())
}
