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

// Package autodoc parses Pike's structured comment format (the
// concatenated content of //! lines) into a canonical document shape
// that renders into hover text.
package autodoc

import "strings"

// TokenKind distinguishes delimiter lines from free text
type TokenKind int

const (
	// TextToken is a line of running text within the current section
	TextToken TokenKind = iota
	// DelimiterToken is an @keyword line that switches section or
	// opens/closes a block group
	DelimiterToken
)

// DocToken is one tokenized line of an autodoc block
type DocToken struct {
	Kind    TokenKind
	Keyword string // delimiter keyword, without the @
	Args    string // remainder of a delimiter line
	Text    string // text lines verbatim
	Line    int    // 0-based within the block
}

// section keywords: an @keyword line switches the state machine here
var sectionKeywords = map[string]bool{
	"param": true, "returns": true, "throws": true, "note": true,
	"bugs": true, "deprecated": true, "example": true, "seealso": true,
	"member": true, "elem": true, "item": true, "value": true,
	"obsolete": true, "copyright": true, "thanks": true, "fixme": true,
	"constant": true, "index": true, "type": true, "text": true,
}

// group keywords open a nested block closed by @end<keyword>
var groupKeywords = map[string]bool{
	"mapping": true, "array": true, "multiset": true, "dl": true,
	"ul": true, "ol": true, "code": true, "section": true,
	"int": true, "string": true, "mixed": true,
}

// TokenizeDoc splits an autodoc block into delimiter and text tokens.
// A line is a delimiter when its first non-space rune is @ followed by
// a known keyword; @@ escapes a literal @ and stays text. Unknown
// @keywords are kept as text so malformed markup degrades gracefully.
func TokenizeDoc(content string) []DocToken {
	var tokens []DocToken
	for i, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if keyword, args, ok := splitDelimiter(trimmed); ok {
			tokens = append(tokens, DocToken{
				Kind:    DelimiterToken,
				Keyword: keyword,
				Args:    strings.TrimSpace(args),
				Line:    i,
			})
			continue
		}
		tokens = append(tokens, DocToken{Kind: TextToken, Text: line, Line: i})
	}
	return tokens
}

func splitDelimiter(line string) (keyword, args string, ok bool) {
	if !strings.HasPrefix(line, "@") || strings.HasPrefix(line, "@@") {
		return "", "", false
	}
	rest := line[1:]
	end := 0
	for end < len(rest) && isKeywordChar(rest[end]) {
		end++
	}
	// inline markup like @b{...@} opens with a brace, not a line keyword
	if end < len(rest) && rest[end] == '{' {
		return "", "", false
	}
	keyword = rest[:end]
	if keyword == "" {
		return "", "", false
	}
	if sectionKeywords[keyword] || groupKeywords[keyword] ||
		keyword == "ignore" || keyword == "endignore" ||
		strings.HasPrefix(keyword, "end") {
		return keyword, rest[end:], true
	}
	return "", "", false
}

func isKeywordChar(c byte) bool {
	return c >= 'a' && c <= 'z'
}
