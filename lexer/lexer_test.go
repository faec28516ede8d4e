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
package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/pikelsp/lexer"
)

func kinds(tokens []lexer.Token) []lexer.Kind {
	out := make([]lexer.Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func TestTokenize_Reconstruct(t *testing.T) {
	sources := []string{
		"int x = 5;\n",
		"// comment\nstring s = \"hi\";\n",
		"/* block\n   comment */\nvoid f(int a) { return; }\n",
		"#include \"config.h\"\nimport Stdio;\n",
		"//! doc line\nint documented;\n",
		"mapping(string:int) m = ([]);\n",
	}
	for _, src := range sources {
		tokens := lexer.Tokenize(src)
		assert.Equal(t, src, lexer.Reconstruct(tokens), "token stream must reconstruct the input")
	}
}

func TestTokenize_StringsHideDirectives(t *testing.T) {
	tokens := lexer.Code(lexer.Tokenize(`string s = "import Fake; inherit Nope;";`))
	for _, tok := range tokens {
		if tok.Kind == lexer.Keyword {
			assert.NotEqual(t, "import", tok.Text)
			assert.NotEqual(t, "inherit", tok.Text)
		}
	}
}

func TestTokenize_CommentsAreNotCode(t *testing.T) {
	src := "// inherit Hidden;\n/* import Hidden; */\ninherit Real;\n"
	tokens := lexer.Code(lexer.Tokenize(src))
	require.NotEmpty(t, tokens)
	assert.Equal(t, lexer.Keyword, tokens[0].Kind)
	assert.Equal(t, "inherit", tokens[0].Text)
	assert.Equal(t, 3, tokens[0].Line)
	assert.Equal(t, "Real", tokens[1].Text)
}

func TestTokenize_Preprocessor(t *testing.T) {
	src := "#include <stdio.h>\n#require constant(Crypto)\nint x;\n"
	tokens := lexer.Tokenize(src)

	var pre []lexer.Token
	for _, tok := range tokens {
		if tok.Kind == lexer.Preprocessor {
			pre = append(pre, tok)
		}
	}
	require.Len(t, pre, 2)
	assert.Equal(t, "#include <stdio.h>", pre[0].Text)
	assert.Equal(t, 1, pre[0].Line)
	assert.Equal(t, "#require constant(Crypto)", pre[1].Text)
	assert.Equal(t, 2, pre[1].Line)
}

func TestTokenize_PreprocessorContinuation(t *testing.T) {
	src := "#define LONG \\\n  more\nint x;\n"
	tokens := lexer.Tokenize(src)
	require.Equal(t, lexer.Preprocessor, tokens[0].Kind)
	assert.Contains(t, tokens[0].Text, "more")

	// the int declaration still lexes on its own line
	code := lexer.Code(tokens)
	var found bool
	for _, tok := range code[1:] {
		if tok.Kind == lexer.Keyword && tok.Text == "int" {
			assert.Equal(t, 3, tok.Line)
			found = true
		}
	}
	assert.True(t, found)
}

func TestTokenize_AutodocVsLineComment(t *testing.T) {
	src := "//! documented\n// not doc\nint x;\n"
	tokens := lexer.Tokenize(src)
	assert.Equal(t, lexer.Autodoc, tokens[0].Kind)
	assert.Equal(t, "//! documented", tokens[0].Text)
	require.GreaterOrEqual(t, len(tokens), 3)
	assert.Equal(t, lexer.LineComment, tokens[2].Kind)
}

func TestTokenize_Operators(t *testing.T) {
	tokens := lexer.Code(lexer.Tokenize("a->b; c == d; e .. f; x ... y;"))
	var ops []string
	for _, tok := range tokens {
		if tok.Kind == lexer.Operator && tok.Text != ";" {
			ops = append(ops, tok.Text)
		}
	}
	assert.Equal(t, []string{"->", "==", "..", "..."}, ops)
}

func TestTokenize_Positions(t *testing.T) {
	tokens := lexer.Code(lexer.Tokenize("int x;\n  string y;\n"))
	require.Len(t, tokens, 6)
	assert.Equal(t, 1, tokens[0].Line)
	assert.Equal(t, 0, tokens[0].Character)
	assert.Equal(t, 2, tokens[3].Line)
	assert.Equal(t, 2, tokens[3].Character) // "string" after two spaces
}

func TestTokenize_UnterminatedString(t *testing.T) {
	tokens := lexer.Tokenize(`string s = "never closed`)
	last := tokens[len(tokens)-1]
	assert.Equal(t, lexer.String, last.Kind)
	assert.Equal(t, `"never closed`, last.Text)
}

func TestTokenize_Numbers(t *testing.T) {
	tokens := lexer.Code(lexer.Tokenize("int a = 0x1F; float b = 3.25; int c = 1e6;"))
	var numbers []string
	for _, tok := range tokens {
		if tok.Kind == lexer.Number {
			numbers = append(numbers, tok.Text)
		}
	}
	assert.Equal(t, []string{"0x1F", "3.25", "1e6"}, numbers)
}

func TestCode_FiltersTrivia(t *testing.T) {
	src := "// c\n/* b */\n//! d\nint x;"
	code := lexer.Code(lexer.Tokenize(src))
	assert.Equal(t, []lexer.Kind{lexer.Keyword, lexer.Identifier, lexer.Operator}, kinds(code))
}
