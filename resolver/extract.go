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

// Package resolver turns directives found in Pike source into
// filesystem paths: extraction of include/import/inherit/require
// entries, multi-strategy resolution, relative-reference rewriting,
// cycle detection and waterfall symbol loading.
package resolver

import (
	"strings"

	"bennypowers.dev/pikelsp/lexer"
	"bennypowers.dev/pikelsp/types"
)

// ExtractImports tokenizes source and collects every directive entry.
// Strings and comments are respected because the scan runs over the
// lexer's token stream, never over raw text.
func ExtractImports(code string) []types.ImportEntry {
	var entries []types.ImportEntry
	tokens := lexer.Code(lexer.Tokenize(code))

	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		switch {
		case t.Kind == lexer.Preprocessor:
			if entry, ok := preprocessorEntry(t); ok {
				entries = append(entries, entry)
			}
		case t.Kind == lexer.Keyword && t.Text == "import":
			if target, ok := statementTarget(tokens, i+1); ok {
				entries = append(entries, types.ImportEntry{
					Kind:   types.ImportImport,
					Target: target,
					Line:   t.Line,
				})
			}
		case t.Kind == lexer.Keyword && t.Text == "inherit":
			if target, ok := statementTarget(tokens, i+1); ok {
				entries = append(entries, types.ImportEntry{
					Kind:   types.ImportInherit,
					Target: target,
					Line:   t.Line,
				})
			}
		}
	}
	return entries
}

// HasRequireDirective reports whether the source carries a #require
// line outside comments and strings. The introspector's compilation
// policy keys off this.
func HasRequireDirective(code string) bool {
	for _, t := range lexer.Tokenize(code) {
		if t.Kind == lexer.Preprocessor && directiveName(t.Text) == "require" {
			return true
		}
	}
	return false
}

// preprocessorEntry parses a #include or #require directive token
func preprocessorEntry(t lexer.Token) (types.ImportEntry, bool) {
	name := directiveName(t.Text)
	rest := directiveArgs(t.Text)
	switch name {
	case "include":
		entry := types.ImportEntry{
			Kind: types.ImportInclude,
			Line: t.Line,
		}
		switch {
		case strings.HasPrefix(rest, `"`):
			entry.Target = trimDelimiters(rest, '"', '"')
		case strings.HasPrefix(rest, "<"):
			entry.Target = trimDelimiters(rest, '<', '>')
			entry.AngleBracket = true
		default:
			return types.ImportEntry{}, false
		}
		return entry, true

	case "require":
		return requireEntry(t.Line, rest), true
	}
	return types.ImportEntry{}, false
}

// requireEntry classifies a #require expression into the three handled
// subsets: a string literal, constant(IDENT), or anything else (skipped).
func requireEntry(line int, expr string) types.ImportEntry {
	entry := types.ImportEntry{Kind: types.ImportRequire, Line: line}
	tokens := lexer.Code(lexer.Tokenize(expr))

	if len(tokens) == 1 && tokens[0].Kind == lexer.String {
		entry.Target = trimDelimiters(tokens[0].Text, '"', '"')
		entry.ResolutionType = "string_literal"
		return entry
	}
	// constant(IDENT) or constant(IDENT.IDENT…)
	if len(tokens) >= 4 &&
		tokens[0].Kind == lexer.Keyword && tokens[0].Text == "constant" &&
		tokens[1].Kind == lexer.Operator && tokens[1].Text == "(" &&
		tokens[len(tokens)-1].Kind == lexer.Operator && tokens[len(tokens)-1].Text == ")" {
		var b strings.Builder
		for _, t := range tokens[2 : len(tokens)-1] {
			if t.Kind == lexer.Identifier || (t.Kind == lexer.Operator && t.Text == ".") {
				b.WriteString(t.Text)
			} else {
				entry.Target = expr
				entry.Skip = true
				return entry
			}
		}
		entry.Target = b.String()
		entry.ResolutionType = "constant_identifier"
		return entry
	}
	entry.Target = expr
	entry.Skip = true
	return entry
}

// statementTarget reads a dotted or quoted target from tokens[i:] up to
// the terminating ";" or ":".
func statementTarget(tokens []lexer.Token, i int) (string, bool) {
	if i >= len(tokens) {
		return "", false
	}
	if tokens[i].Kind == lexer.String {
		return trimDelimiters(tokens[i].Text, '"', '"'), true
	}
	var b strings.Builder
	for ; i < len(tokens); i++ {
		t := tokens[i]
		if t.Kind == lexer.Identifier || (t.Kind == lexer.Operator && t.Text == ".") {
			b.WriteString(t.Text)
			continue
		}
		break
	}
	return b.String(), b.Len() > 0
}

func directiveName(text string) string {
	text = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), "#"))
	end := 0
	for end < len(text) && text[end] >= 'a' && text[end] <= 'z' {
		end++
	}
	return text[:end]
}

func directiveArgs(text string) string {
	name := directiveName(text)
	trimmed := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), "#"))
	return strings.TrimSpace(strings.TrimPrefix(trimmed, name))
}

func trimDelimiters(s string, open, close byte) string {
	if len(s) >= 1 && s[0] == open {
		s = s[1:]
	}
	if len(s) >= 1 && s[len(s)-1] == close {
		s = s[:len(s)-1]
	}
	return s
}
