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
package autodoc

import "strings"

// inline markup → Markdown wrapping
var inlineMarkers = map[string][2]string{
	"b":    {"**", "**"},
	"i":    {"*", "*"},
	"tt":   {"`", "`"},
	"ref":  {"`", "`"},
	"expr": {"`", "`"},
	"code": {"`", "`"},
	"pre":  {"`", "`"},
}

// ConvertInline transliterates autodoc inline markup to Markdown:
// @b{…@} to **…**, @i{…@} to *…*, @tt/@ref/@expr/@code/@pre{…@} to
// `…`, the @[name] shorthand to `name`, and @@ to a literal @.
// Markers nest; @} closes the innermost open marker. A dangling @} or
// an unclosed marker degrades to plain text rather than being dropped.
func ConvertInline(s string) string {
	if !strings.Contains(s, "@") {
		return s
	}

	type frame struct {
		opener string
		closer string
		buf    strings.Builder
	}
	stack := []*frame{{}}
	top := func() *frame { return stack[len(stack)-1] }

	i := 0
	for i < len(s) {
		c := s[i]
		if c != '@' {
			top().buf.WriteByte(c)
			i++
			continue
		}
		// @@ → @
		if i+1 < len(s) && s[i+1] == '@' {
			top().buf.WriteByte('@')
			i += 2
			continue
		}
		// @} closes the innermost marker
		if i+1 < len(s) && s[i+1] == '}' {
			if len(stack) > 1 {
				f := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				top().buf.WriteString(f.opener)
				top().buf.WriteString(f.buf.String())
				top().buf.WriteString(f.closer)
			} else {
				top().buf.WriteString("@}")
			}
			i += 2
			continue
		}
		// @[name] shorthand
		if i+1 < len(s) && s[i+1] == '[' {
			end := strings.IndexByte(s[i+2:], ']')
			if end >= 0 {
				top().buf.WriteString("`" + s[i+2:i+2+end] + "`")
				i += 2 + end + 1
				continue
			}
		}
		// @kw{ opens a marker
		if kw, rest, ok := inlineOpen(s[i:]); ok {
			markers := inlineMarkers[kw]
			stack = append(stack, &frame{opener: markers[0], closer: markers[1]})
			i += len(s[i:]) - len(rest)
			continue
		}
		top().buf.WriteByte('@')
		i++
	}

	// unwind unclosed markers as plain content
	for len(stack) > 1 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		top().buf.WriteString(f.buf.String())
	}
	return stack[0].buf.String()
}

// inlineOpen matches "@kw{" at the start of s for a known inline keyword
func inlineOpen(s string) (keyword, rest string, ok bool) {
	if !strings.HasPrefix(s, "@") {
		return "", "", false
	}
	body := s[1:]
	end := 0
	for end < len(body) && isKeywordChar(body[end]) {
		end++
	}
	if end == 0 || end >= len(body) || body[end] != '{' {
		return "", "", false
	}
	kw := body[:end]
	if _, known := inlineMarkers[kw]; !known {
		return "", "", false
	}
	return kw, body[end+1:], true
}
