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

import "strings"

// hasDrivePrefix reports whether s starts with a Windows drive specifier
// like "C:/" or "c:\".
func hasDrivePrefix(s string) bool {
	if len(s) < 3 {
		return false
	}
	c := s[0]
	isLetter := (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
	return isLetter && s[1] == ':' && (s[2] == '/' || s[2] == '\\')
}

// NormalizeCompilerPath prepares a filename for the compiler front-end.
// Editor URIs on Windows arrive as "/C:/path/file.pike"; the leading slash
// must be stripped or the compiler mangles the drive letter.
func NormalizeCompilerPath(p string) string {
	if strings.HasPrefix(p, "/") && hasDrivePrefix(p[1:]) {
		return p[1:]
	}
	return p
}

// StripLineSuffix removes a trailing ":<line>" from a program path, as
// reported by the module system for programs resolved mid-file. A Windows
// drive colon at offset 1 is never treated as a line separator.
func StripLineSuffix(p string) string {
	idx := strings.LastIndexByte(p, ':')
	if idx <= 1 {
		return p
	}
	suffix := p[idx+1:]
	if suffix == "" {
		return p
	}
	for i := 0; i < len(suffix); i++ {
		if suffix[i] < '0' || suffix[i] > '9' {
			return p
		}
	}
	return p[:idx]
}
