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
	"bennypowers.dev/pikelsp/lexer"
)

// keywords after which a lone "." starts a relative module reference
var relativeContextKeywords = map[string]bool{
	"return": true, "inherit": true, "import": true, "class": true,
	"module": true, "throw": true, "case": true, "if": true,
	"while": true, "foreach": true, "switch": true, "do": true,
	"else": true, "lambda": true, "catch": true,
}

// operators after which a "." is member access, not a module reference
var memberAccessClosers = map[string]bool{
	")": true, "]": true,
}

// RewriteRelative replaces leading-dot module references with absolute
// ones before source inside a .pmod directory is handed to the
// compiler: `inherit .Random;` becomes `inherit Crypto.Random;` for a
// file whose parent module is Crypto. Member access like `obj.x` is
// left alone. The decision looks at the token before the dot: after an
// identifier, literal, or closing bracket the dot is member access;
// after anything else (statement start, operators, the keywords above)
// it roots a relative reference, provided an identifier follows.
func RewriteRelative(code, parentModule string) string {
	if parentModule == "" {
		return code
	}
	tokens := lexer.Tokenize(code)

	var prev *lexer.Token
	for i := range tokens {
		t := &tokens[i]
		switch t.Kind {
		case lexer.Whitespace, lexer.LineComment, lexer.BlockComment, lexer.Autodoc:
			continue
		}

		if t.Kind == lexer.Operator && t.Text == "." &&
			isRelativeContext(prev) && nextIsIdentifier(tokens, i+1) {
			t.Text = parentModule + "."
		}
		prev = t
	}
	return lexer.Reconstruct(tokens)
}

func isRelativeContext(prev *lexer.Token) bool {
	if prev == nil {
		return true
	}
	switch prev.Kind {
	case lexer.Identifier, lexer.Number, lexer.String, lexer.Char:
		return false
	case lexer.Keyword:
		return relativeContextKeywords[prev.Text]
	case lexer.Operator:
		return !memberAccessClosers[prev.Text]
	default:
		return true
	}
}

func nextIsIdentifier(tokens []lexer.Token, i int) bool {
	for ; i < len(tokens); i++ {
		switch tokens[i].Kind {
		case lexer.Whitespace, lexer.LineComment, lexer.BlockComment, lexer.Autodoc:
			continue
		case lexer.Identifier:
			return true
		default:
			return false
		}
	}
	return false
}
