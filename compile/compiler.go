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
	"strings"

	"bennypowers.dev/pikelsp/internal/platform"
	"bennypowers.dev/pikelsp/lexer"
	"bennypowers.dev/pikelsp/pike"
	"bennypowers.dev/pikelsp/types"
)

// Compiler is the declaration-level front-end. It parses top-level
// declarations into a pike.Program and reports structural errors as
// diagnostics. Compilation failure is a normal outcome, not an error:
// the returned program is marked Incomplete and instantiation refuses it.
type Compiler struct{}

// NewCompiler creates a compiler front-end
func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile parses source text into a program. path is normalized for
// drive-letter quirks before being recorded.
func (c *Compiler) Compile(code, path string) (*pike.Program, []types.Diagnostic) {
	path = platform.NormalizeCompilerPath(path)
	p := &parser{
		file:   path,
		tokens: lexer.Tokenize(code),
	}
	prog := &pike.Program{
		Path: path,
		Name: pike.ParentModuleName(path),
	}
	p.parseDecls(prog, false)
	prog.Incomplete = len(p.diagnostics) > 0
	return prog, p.diagnostics
}

// modifiers that may prefix a declaration
var declModifiers = map[string]bool{
	"static": true, "private": true, "protected": true, "public": true,
	"final": true, "inline": true, "optional": true, "variant": true,
	"local": true, "nomask": true,
}

// type-introducing keywords
var typeKeywords = map[string]bool{
	"int": true, "string": true, "float": true, "mixed": true,
	"void": true, "mapping": true, "array": true, "multiset": true,
	"object": true, "function": true, "program": true,
}

type parser struct {
	file        string
	tokens      []lexer.Token
	pos         int
	diagnostics []types.Diagnostic
	pendingDoc  []string
}

func (p *parser) errorf(line int, format string, args ...any) {
	p.diagnostics = append(p.diagnostics, types.Diagnostic{
		Severity: "error",
		Message:  fmt.Sprintf(format, args...),
		Position: types.Position{File: p.file, Line: line},
	})
}

// cur returns the current non-trivia token, consuming comments and
// whitespace on the way and maintaining the pending autodoc block.
func (p *parser) cur() (lexer.Token, bool) {
	for p.pos < len(p.tokens) {
		t := p.tokens[p.pos]
		switch t.Kind {
		case lexer.Autodoc:
			text := strings.TrimPrefix(t.Text, "//!")
			text = strings.TrimPrefix(text, " ")
			p.pendingDoc = append(p.pendingDoc, text)
			p.pos++
		case lexer.Whitespace:
			if strings.Count(t.Text, "\n") > 1 {
				p.pendingDoc = nil
			}
			p.pos++
		case lexer.LineComment, lexer.BlockComment:
			p.pos++
		case lexer.String:
			if unterminated(t) {
				p.errorf(t.Line, "unterminated string constant")
				p.pos++
				continue
			}
			return t, true
		default:
			return t, true
		}
	}
	return lexer.Token{}, false
}

func unterminated(t lexer.Token) bool {
	return len(t.Text) < 2 || t.Text[len(t.Text)-1] != t.Text[0] ||
		strings.ContainsRune(t.Text[1:len(t.Text)-1], '\n')
}

func (p *parser) advance() {
	p.pos++
}

func (p *parser) takeDoc() string {
	doc := strings.Join(p.pendingDoc, "\n")
	p.pendingDoc = nil
	return doc
}

// parseDecls parses declarations until end of input, or until the
// closing brace of the enclosing class body when nested is set.
func (p *parser) parseDecls(prog *pike.Program, nested bool) {
	for {
		t, ok := p.cur()
		if !ok {
			if nested {
				p.errorf(lastLine(p.tokens), "missing '}' at end of input")
			}
			return
		}
		if nested && t.Kind == lexer.Operator && t.Text == "}" {
			p.advance()
			return
		}
		p.parseDecl(prog, t)
	}
}

func (p *parser) parseDecl(prog *pike.Program, t lexer.Token) {
	switch {
	case t.Kind == lexer.Preprocessor:
		p.advance()

	case t.Kind == lexer.Operator && t.Text == ";":
		p.advance()

	case t.Kind == lexer.Keyword && t.Text == "import":
		p.parseImport(prog)

	case t.Kind == lexer.Keyword && t.Text == "inherit":
		p.parseInherit(prog)

	default:
		p.parseDeclaration(prog, t)
	}
}

// parseImport handles `import X.Y;` and `import "dir";`
func (p *parser) parseImport(prog *pike.Program) {
	line := p.tokens[p.pos].Line
	p.advance()
	target, ok := p.collectTarget()
	if !ok {
		p.errorf(line, "malformed import")
		p.resync()
		return
	}
	p.expectSemicolon(line)
	prog.Imports = append(prog.Imports, target)
	p.takeDoc()
}

// parseInherit handles `inherit X;`, `inherit X : alias;` and
// `inherit "file.pike";`
func (p *parser) parseInherit(prog *pike.Program) {
	line := p.tokens[p.pos].Line
	p.advance()
	target, ok := p.collectTarget()
	if !ok {
		p.errorf(line, "malformed inherit")
		p.resync()
		return
	}
	inh := pike.Inherit{Name: target, Line: line}
	if t, ok := p.cur(); ok && t.Kind == lexer.Operator && t.Text == ":" {
		p.advance()
		if t, ok := p.cur(); ok && t.Kind == lexer.Identifier {
			inh.Alias = t.Text
			p.advance()
		}
	}
	p.expectSemicolon(line)
	prog.Inherits = append(prog.Inherits, inh)
	prog.Decls = append(prog.Decls, pike.Decl{
		Name: inheritDisplayName(inh), Kind: types.KindInherit,
		Line: line, Doc: p.takeDoc(),
	})
}

func inheritDisplayName(inh pike.Inherit) string {
	if inh.Alias != "" {
		return inh.Alias
	}
	return inh.Name
}

// collectTarget reads a dotted or quoted directive target. The
// terminating ";" or ":" is left for the caller.
func (p *parser) collectTarget() (string, bool) {
	t, ok := p.cur()
	if !ok {
		return "", false
	}
	if t.Kind == lexer.String {
		p.advance()
		return unquote(t.Text), true
	}
	var b strings.Builder
	for {
		t, ok := p.cur()
		if !ok {
			return b.String(), b.Len() > 0
		}
		switch {
		case t.Kind == lexer.Identifier || (t.Kind == lexer.Operator && t.Text == "."):
			b.WriteString(t.Text)
			p.advance()
		case t.Kind == lexer.Operator && (t.Text == ";" || t.Text == ":"):
			return b.String(), b.Len() > 0
		default:
			return b.String(), false
		}
	}
}

func (p *parser) expectSemicolon(line int) {
	if t, ok := p.cur(); ok && t.Kind == lexer.Operator && t.Text == ";" {
		p.advance()
		return
	}
	p.errorf(line, "missing ';'")
}

// parseDeclaration handles modifiers then dispatches on the declaration
// head: class, constant, typedef, enum, or a typed variable/function.
func (p *parser) parseDeclaration(prog *pike.Program, t lexer.Token) {
	line := t.Line
	var modifiers []string
	for t.Kind == lexer.Keyword && declModifiers[t.Text] {
		modifiers = append(modifiers, t.Text)
		p.advance()
		var ok bool
		t, ok = p.cur()
		if !ok {
			return
		}
	}

	switch {
	case t.Kind == lexer.Keyword && t.Text == "class":
		p.parseClass(prog, modifiers)
	case t.Kind == lexer.Keyword && t.Text == "constant":
		p.parseConstant(prog, modifiers)
	case t.Kind == lexer.Keyword && t.Text == "typedef":
		p.parseTypedef(prog, modifiers)
	case t.Kind == lexer.Keyword && t.Text == "enum":
		p.parseEnum(prog, modifiers)
	case (t.Kind == lexer.Keyword && typeKeywords[t.Text]) || t.Kind == lexer.Identifier || (t.Kind == lexer.Operator && t.Text == "."):
		p.parseTyped(prog, modifiers, line)
	default:
		p.errorf(line, "syntax error near %q", t.Text)
		p.advance()
		p.resync()
	}
}

func (p *parser) parseClass(prog *pike.Program, modifiers []string) {
	line := p.tokens[p.pos].Line
	doc := p.takeDoc()
	p.advance()
	t, ok := p.cur()
	if !ok || t.Kind != lexer.Identifier {
		p.errorf(line, "class without a name")
		p.resync()
		return
	}
	name := t.Text
	p.advance()

	// optional create-argument list before the body
	if t, ok := p.cur(); ok && t.Kind == lexer.Operator && t.Text == "(" {
		p.skipGroup("(", ")")
	}

	t, ok = p.cur()
	if !ok || t.Kind != lexer.Operator || t.Text != "{" {
		p.errorf(line, "class %s without a body", name)
		p.resync()
		return
	}
	p.advance()

	body := &pike.Program{Path: prog.Path, Name: name}
	p.parseDecls(body, true)
	p.skipOptionalSemicolon()

	prog.Decls = append(prog.Decls, pike.Decl{
		Name: name, Kind: types.KindClass, Modifiers: modifiers,
		Line: line, Doc: doc, Class: body,
	})
}

func (p *parser) parseConstant(prog *pike.Program, modifiers []string) {
	line := p.tokens[p.pos].Line
	doc := p.takeDoc()
	p.advance()
	t, ok := p.cur()
	if !ok || t.Kind != lexer.Identifier {
		p.errorf(line, "constant without a name")
		p.resync()
		return
	}
	name := t.Text
	p.advance()

	var value strings.Builder
	if t, ok := p.cur(); ok && t.Kind == lexer.Operator && t.Text == "=" {
		p.advance()
		depth := 0
		for {
			t, ok := p.cur()
			if !ok {
				break
			}
			if t.Kind == lexer.Operator {
				switch t.Text {
				case "(", "[", "{":
					depth++
				case ")", "]", "}":
					depth--
				case ";":
					if depth <= 0 {
						goto done
					}
				}
			}
			if value.Len() > 0 {
				value.WriteByte(' ')
			}
			value.WriteString(t.Text)
			p.advance()
		}
	}
done:
	p.expectSemicolon(line)
	prog.Decls = append(prog.Decls, pike.Decl{
		Name: name, Kind: types.KindConstant, Modifiers: modifiers,
		Line: line, Doc: doc, Value: value.String(),
	})
}

func (p *parser) parseTypedef(prog *pike.Program, modifiers []string) {
	line := p.tokens[p.pos].Line
	doc := p.takeDoc()
	p.advance()
	typeText, ok := p.parseType()
	if !ok {
		p.errorf(line, "malformed typedef")
		p.resync()
		return
	}
	t, ok := p.cur()
	if !ok || t.Kind != lexer.Identifier {
		p.errorf(line, "typedef without a name")
		p.resync()
		return
	}
	name := t.Text
	p.advance()
	p.expectSemicolon(line)
	prog.Decls = append(prog.Decls, pike.Decl{
		Name: name, Kind: types.KindTypedef, Modifiers: modifiers,
		Line: line, Doc: doc, Type: typeText,
	})
}

func (p *parser) parseEnum(prog *pike.Program, modifiers []string) {
	line := p.tokens[p.pos].Line
	doc := p.takeDoc()
	p.advance()

	name := ""
	if t, ok := p.cur(); ok && t.Kind == lexer.Identifier {
		name = t.Text
		p.advance()
	}

	t, ok := p.cur()
	if !ok || t.Kind != lexer.Operator || t.Text != "{" {
		p.errorf(line, "enum without a body")
		p.resync()
		return
	}
	p.advance()

	if name != "" {
		prog.Decls = append(prog.Decls, pike.Decl{
			Name: name, Kind: types.KindEnum, Modifiers: modifiers,
			Line: line, Doc: doc,
		})
	}

	// members: IDENT [= expr] separated by commas
	expectName := true
	depth := 0
	for {
		t, ok := p.cur()
		if !ok {
			p.errorf(line, "missing '}' in enum")
			return
		}
		if t.Kind == lexer.Operator {
			switch t.Text {
			case "(", "[":
				depth++
			case ")", "]":
				depth--
			case ",":
				if depth == 0 {
					expectName = true
				}
			case "}":
				if depth == 0 {
					p.advance()
					p.skipOptionalSemicolon()
					return
				}
			}
			p.advance()
			continue
		}
		if expectName && t.Kind == lexer.Identifier {
			prog.Decls = append(prog.Decls, pike.Decl{
				Name: t.Text, Kind: types.KindEnumConstant,
				Line: t.Line, Type: "int",
			})
			expectName = false
		}
		p.advance()
	}
}

// parseTyped handles `<type> name …`: either a function definition or
// one or more variable declarators.
func (p *parser) parseTyped(prog *pike.Program, modifiers []string, line int) {
	doc := p.takeDoc()
	typeText, ok := p.parseType()
	if !ok {
		t, _ := p.cur()
		p.errorf(line, "syntax error near %q", t.Text)
		p.advance()
		p.resync()
		return
	}

	name, ok := p.parseDeclName()
	if !ok {
		p.errorf(line, "expected a name after type %q", typeText)
		p.resync()
		return
	}

	if t, ok := p.cur(); ok && t.Kind == lexer.Operator && t.Text == "(" {
		p.parseFunction(prog, modifiers, typeText, name, line, doc)
		return
	}

	// variable declarators, possibly several sharing the type
	for {
		prog.Decls = append(prog.Decls, pike.Decl{
			Name: name, Kind: types.KindVariable, Modifiers: modifiers,
			Line: line, Doc: doc, Type: typeText,
		})
		doc = ""
		p.skipInitializer()
		t, ok := p.cur()
		if !ok {
			p.errorf(line, "missing ';'")
			return
		}
		if t.Kind == lexer.Operator && t.Text == ";" {
			p.advance()
			return
		}
		if t.Kind == lexer.Operator && t.Text == "," {
			p.advance()
			name, ok = p.parseDeclName()
			if !ok {
				p.errorf(line, "expected a name after ','")
				p.resync()
				return
			}
			continue
		}
		p.errorf(t.Line, "syntax error near %q", t.Text)
		p.resync()
		return
	}
}

// parseDeclName reads a declaration name: an identifier or a backquoted
// operator name like `+ or `[].
func (p *parser) parseDeclName() (string, bool) {
	t, ok := p.cur()
	if !ok {
		return "", false
	}
	if t.Kind == lexer.Identifier {
		p.advance()
		return t.Text, true
	}
	if t.Kind == lexer.Operator && t.Text == "`" {
		p.advance()
		if t, ok := p.cur(); ok && t.Kind == lexer.Operator {
			p.advance()
			return "`" + t.Text, true
		}
		return "`", true
	}
	return "", false
}

func (p *parser) parseFunction(prog *pike.Program, modifiers []string, returnType, name string, line int, doc string) {
	p.advance() // consume "("
	params, ok := p.parseParams()
	if !ok {
		p.errorf(line, "malformed parameter list for %s", name)
		p.resync()
		return
	}

	t, okc := p.cur()
	switch {
	case okc && t.Kind == lexer.Operator && t.Text == "{":
		p.skipGroup("{", "}")
	case okc && t.Kind == lexer.Operator && t.Text == ";":
		p.advance()
	default:
		p.errorf(line, "missing body for %s", name)
		p.resync()
	}

	prog.Decls = append(prog.Decls, pike.Decl{
		Name: name, Kind: types.KindFunction, Modifiers: modifiers,
		Line: line, Doc: doc, ReturnType: returnType, Params: params,
	})
}

// parseParams parses a parameter list after the opening paren, through
// the closing paren. A lone void means no parameters.
func (p *parser) parseParams() ([]pike.Param, bool) {
	var params []pike.Param
	var tokens []lexer.Token
	depth := 0

	flush := func() {
		if param, ok := paramFromTokens(tokens); ok {
			params = append(params, param)
		}
		tokens = nil
	}

	for {
		t, ok := p.cur()
		if !ok {
			return nil, false
		}
		if t.Kind == lexer.Operator {
			switch t.Text {
			case "(", "[", "{":
				depth++
			case "]", "}":
				depth--
			case ")":
				if depth == 0 {
					p.advance()
					flush()
					if len(params) == 1 && params[0].Type == "void" && params[0].Name == "" {
						params = nil
					}
					return params, true
				}
				depth--
			case ",":
				if depth == 0 {
					p.advance()
					flush()
					continue
				}
			}
		}
		tokens = append(tokens, t)
		p.advance()
	}
}

// paramFromTokens splits one parameter's tokens into type and name. The
// trailing identifier is the name when more than one meaningful token is
// present; a default value after "=" is dropped.
func paramFromTokens(tokens []lexer.Token) (pike.Param, bool) {
	for i, t := range tokens {
		if t.Kind == lexer.Operator && t.Text == "=" {
			tokens = tokens[:i]
			break
		}
	}
	if len(tokens) == 0 {
		return pike.Param{}, false
	}
	last := tokens[len(tokens)-1]
	if last.Kind == lexer.Identifier && len(tokens) > 1 {
		return pike.Param{
			Name: last.Text,
			Type: joinTokens(tokens[:len(tokens)-1]),
		}, true
	}
	if last.Kind == lexer.Identifier && len(tokens) == 1 {
		// could be a bare type keyword or a bare name; identifiers here
		// are class types used without a parameter name
		return pike.Param{Type: last.Text}, true
	}
	return pike.Param{Type: joinTokens(tokens)}, true
}

func joinTokens(tokens []lexer.Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Text)
	}
	return b.String()
}

// parseType reads a type expression: a type keyword or dotted program
// name, an optional parenthesized argument group, and | or & unions.
func (p *parser) parseType() (string, bool) {
	var b strings.Builder
	for {
		t, ok := p.cur()
		if !ok {
			return b.String(), b.Len() > 0
		}
		switch {
		case t.Kind == lexer.Keyword && typeKeywords[t.Text]:
			b.WriteString(t.Text)
			p.advance()
			p.maybeTypeArgs(&b)
		case t.Kind == lexer.Identifier || (t.Kind == lexer.Operator && t.Text == "."):
			// dotted program name, possibly a leading-dot relative one;
			// identifiers and dots alternate, so the declared name that
			// follows is not absorbed into the type
			wantIdent := t.Kind == lexer.Identifier
			for {
				t, ok := p.cur()
				if !ok {
					break
				}
				isIdent := t.Kind == lexer.Identifier
				isDot := t.Kind == lexer.Operator && t.Text == "."
				if (wantIdent && isIdent) || (!wantIdent && isDot) {
					b.WriteString(t.Text)
					p.advance()
					wantIdent = !wantIdent
					continue
				}
				break
			}
		default:
			return b.String(), b.Len() > 0
		}
		if t, ok := p.cur(); ok && t.Kind == lexer.Operator && (t.Text == "|" || t.Text == "&") {
			b.WriteString(t.Text)
			p.advance()
			continue
		}
		return b.String(), b.Len() > 0
	}
}

// maybeTypeArgs appends a parenthesized type-argument group verbatim,
// e.g. mapping(string:int)
func (p *parser) maybeTypeArgs(b *strings.Builder) {
	t, ok := p.cur()
	if !ok || t.Kind != lexer.Operator || t.Text != "(" {
		return
	}
	depth := 0
	for {
		t, ok := p.cur()
		if !ok {
			return
		}
		if t.Kind == lexer.Operator {
			switch t.Text {
			case "(":
				depth++
			case ")":
				depth--
			}
		}
		b.WriteString(t.Text)
		p.advance()
		if depth == 0 {
			return
		}
	}
}

// skipInitializer consumes "= expr" up to a top-level "," or ";"
func (p *parser) skipInitializer() {
	t, ok := p.cur()
	if !ok || t.Kind != lexer.Operator || t.Text != "=" {
		return
	}
	p.advance()
	depth := 0
	for {
		t, ok := p.cur()
		if !ok {
			return
		}
		if t.Kind == lexer.Operator {
			switch t.Text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				depth--
			case ",", ";":
				if depth <= 0 {
					return
				}
			}
		}
		p.advance()
	}
}

// skipGroup consumes a balanced group from its opening token
func (p *parser) skipGroup(open, close string) {
	depth := 0
	startLine := p.tokens[p.pos].Line
	for {
		t, ok := p.cur()
		if !ok {
			p.errorf(startLine, "missing %q at end of input", close)
			return
		}
		if t.Kind == lexer.Operator {
			switch t.Text {
			case open:
				depth++
			case close:
				depth--
			}
		}
		p.advance()
		if depth == 0 {
			return
		}
	}
}

func (p *parser) skipOptionalSemicolon() {
	if t, ok := p.cur(); ok && t.Kind == lexer.Operator && t.Text == ";" {
		p.advance()
	}
}

// resync skips forward to the next statement boundary
func (p *parser) resync() {
	depth := 0
	for {
		t, ok := p.cur()
		if !ok {
			return
		}
		if t.Kind == lexer.Operator {
			switch t.Text {
			case "{":
				depth++
			case "}":
				if depth == 0 {
					return
				}
				depth--
			case ";":
				if depth == 0 {
					p.advance()
					return
				}
			}
		}
		p.advance()
	}
}

func lastLine(tokens []lexer.Token) int {
	if len(tokens) == 0 {
		return 1
	}
	return tokens[len(tokens)-1].Line
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '<') {
		return s[1 : len(s)-1]
	}
	return s
}
