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
package introspect

import "strings"

// ParseSignature splits a canonical "function(t1, t2, … : ret)" type
// string into argument types and return type. Splitting tracks paren
// and angle depth so nested type arguments like mapping(string:int)
// stay whole. A lone leading void argument denotes "no arguments" and
// is stripped.
func ParseSignature(signature string) (argTypes []string, returnType string, ok bool) {
	s := strings.TrimSpace(signature)
	if !strings.HasPrefix(s, "function(") || !strings.HasSuffix(s, ")") {
		return nil, "", false
	}
	inner := s[len("function(") : len(s)-1]

	depth := 0
	colon := -1
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '(', '[', '<':
			depth++
		case ')', ']', '>':
			depth--
		case ':':
			if depth == 0 {
				colon = i
			}
		}
	}

	argText := inner
	if colon >= 0 {
		argText = inner[:colon]
		returnType = strings.TrimSpace(inner[colon+1:])
	}

	args := splitDepthAware(argText)
	if len(args) == 1 && args[0] == "void" {
		args = nil
	}
	return args, returnType, true
}

// splitDepthAware splits on commas at depth zero only
func splitDepthAware(s string) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '<':
			depth++
		case ')', ']', '>':
			depth--
		case ',':
			if depth == 0 {
				if piece := strings.TrimSpace(s[start:i]); piece != "" {
					out = append(out, piece)
				}
				start = i + 1
			}
		}
	}
	if piece := strings.TrimSpace(s[start:]); piece != "" {
		out = append(out, piece)
	}
	return out
}
