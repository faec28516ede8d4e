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

// Doc is the canonical parse of one autodoc block. Inline markup in
// every field has already been converted to Markdown.
type Doc struct {
	Text       string            `json:"text,omitempty"`
	Params     map[string]string `json:"params,omitempty"`
	ParamOrder []string          `json:"paramOrder,omitempty"`
	Returns    string            `json:"returns,omitempty"`
	Throws     string            `json:"throws,omitempty"`
	Note       string            `json:"note,omitempty"`
	Bugs       string            `json:"bugs,omitempty"`
	Deprecated string            `json:"deprecated,omitempty"`
	Example    string            `json:"example,omitempty"`
	SeeAlso    []string          `json:"seealso,omitempty"`
	Members    map[string]string `json:"members,omitempty"`
	Elements   map[string]string `json:"elements,omitempty"`
	Values     map[string]string `json:"values,omitempty"`
	Constants  map[string]string `json:"constants,omitempty"`
	Obsolete   string            `json:"obsolete,omitempty"`
	Copyright  string            `json:"copyright,omitempty"`
	Thanks     string            `json:"thanks,omitempty"`
	FixMe      string            `json:"fixme,omitempty"`
	Index      string            `json:"index,omitempty"`
	Type       string            `json:"type,omitempty"`
}

// Parse runs the section state machine over an autodoc block: the
// concatenated content of //! lines with the prefix and one optional
// space already stripped.
func Parse(content string) *Doc {
	doc := &Doc{
		Params:    map[string]string{},
		Members:   map[string]string{},
		Elements:  map[string]string{},
		Values:    map[string]string{},
		Constants: map[string]string{},
	}
	p := &docParser{doc: doc, section: "text"}
	for _, token := range TokenizeDoc(content) {
		p.consume(token)
	}
	p.flush()
	return doc
}

type docParser struct {
	doc      *Doc
	section  string // current section keyword
	key      string // current named entry (param, member, elem, …)
	buf      []string
	ignoring bool
	groups   []string // open block groups, innermost last
}

func (p *docParser) inGroup() bool { return len(p.groups) > 0 }

func (p *docParser) inCode() bool {
	for _, g := range p.groups {
		if g == "code" {
			return true
		}
	}
	return false
}

func (p *docParser) consume(t DocToken) {
	if p.ignoring {
		if t.Kind == DelimiterToken && t.Keyword == "endignore" {
			p.ignoring = false
		}
		return
	}

	if t.Kind == TextToken {
		if p.inCode() {
			p.buf = append(p.buf, t.Text)
		} else {
			p.buf = append(p.buf, ConvertInline(t.Text))
		}
		return
	}

	switch {
	case t.Keyword == "ignore":
		p.ignoring = true

	case groupKeywords[t.Keyword]:
		p.openGroup(t)

	case strings.HasPrefix(t.Keyword, "end"):
		p.closeGroup(t.Keyword[3:])

	case p.inGroup():
		// inside a block group, item delimiters become list entries of
		// the enclosing section's text
		p.itemLine(t)

	default:
		p.startSection(t)
	}
}

func (p *docParser) openGroup(t DocToken) {
	switch t.Keyword {
	case "code":
		p.buf = append(p.buf, "```pike")
	case "section":
		p.buf = append(p.buf, "", "**"+ConvertInline(t.Args)+"**")
	case "int", "string", "mixed":
		p.buf = append(p.buf, "- (`"+t.Keyword+"`)")
	}
	p.groups = append(p.groups, t.Keyword)
}

func (p *docParser) closeGroup(keyword string) {
	for i := len(p.groups) - 1; i >= 0; i-- {
		if p.groups[i] == keyword {
			if keyword == "code" {
				p.buf = append(p.buf, "```")
			}
			p.groups = append(p.groups[:i], p.groups[i+1:]...)
			return
		}
	}
	// stray @end<kw>: ignore
}

// itemLine renders a delimiter inside a block group as a list entry
func (p *docParser) itemLine(t DocToken) {
	args := ConvertInline(t.Args)
	switch t.Keyword {
	case "member", "elem", "constant":
		name := lastField(args)
		p.buf = append(p.buf, "- `"+name+"`:")
	case "value":
		p.buf = append(p.buf, "- `"+args+"`:")
	case "item":
		if args == "" {
			p.buf = append(p.buf, "- ")
		} else {
			p.buf = append(p.buf, "- "+args)
		}
	default:
		// a section delimiter inside a group closes nothing; treat its
		// text as part of the group body
		if args != "" {
			p.buf = append(p.buf, args)
		}
	}
}

// startSection flushes the previous section and switches state
func (p *docParser) startSection(t DocToken) {
	p.flush()
	p.section = t.Keyword
	p.key = ""

	switch t.Keyword {
	case "param", "member", "elem", "constant", "value":
		name, desc := splitNameArgs(t.Keyword, t.Args)
		p.key = name
		if t.Keyword == "param" && name != "" {
			if _, seen := p.doc.Params[name]; !seen {
				p.doc.ParamOrder = append(p.doc.ParamOrder, name)
			}
		}
		if desc != "" {
			p.buf = append(p.buf, ConvertInline(desc))
		}
	case "seealso":
		for _, ref := range strings.Split(t.Args, ",") {
			if ref = strings.TrimSpace(ref); ref != "" {
				p.doc.SeeAlso = append(p.doc.SeeAlso, ConvertInline(ref))
			}
		}
		p.section = "text"
	default:
		if t.Args != "" {
			p.buf = append(p.buf, ConvertInline(t.Args))
		}
	}
}

// splitNameArgs extracts the entry name from a named delimiter's args.
// @param takes the first field as the name; @member and @elem carry a
// type first, so the name is the last field.
func splitNameArgs(keyword, args string) (name, desc string) {
	args = strings.TrimSpace(args)
	if args == "" {
		return "", ""
	}
	switch keyword {
	case "param", "constant", "value":
		if idx := strings.IndexAny(args, " \t"); idx >= 0 {
			return args[:idx], strings.TrimSpace(args[idx:])
		}
		return args, ""
	default: // member, elem: "type name"
		return lastField(args), ""
	}
}

func lastField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return s
	}
	return fields[len(fields)-1]
}

// flush commits the buffered text to the current section
func (p *docParser) flush() {
	text := strings.TrimSpace(strings.Join(p.buf, "\n"))
	p.buf = nil
	if text == "" && p.key == "" {
		return
	}

	d := p.doc
	switch p.section {
	case "text":
		appendText(&d.Text, text)
	case "param":
		if p.key != "" {
			appendMapText(d.Params, p.key, text)
		}
	case "member":
		if p.key != "" {
			appendMapText(d.Members, p.key, text)
		}
	case "elem", "item":
		if p.key != "" {
			appendMapText(d.Elements, p.key, text)
		}
	case "value":
		if p.key != "" {
			appendMapText(d.Values, p.key, text)
		}
	case "constant":
		if p.key != "" {
			appendMapText(d.Constants, p.key, text)
		}
	case "returns":
		appendText(&d.Returns, text)
	case "throws":
		appendText(&d.Throws, text)
	case "note":
		appendText(&d.Note, text)
	case "bugs":
		appendText(&d.Bugs, text)
	case "deprecated":
		appendText(&d.Deprecated, text)
	case "example":
		appendText(&d.Example, text)
	case "obsolete":
		appendText(&d.Obsolete, text)
	case "copyright":
		appendText(&d.Copyright, text)
	case "thanks":
		appendText(&d.Thanks, text)
	case "fixme":
		appendText(&d.FixMe, text)
	case "index":
		appendText(&d.Index, text)
	case "type":
		appendText(&d.Type, text)
	default:
		appendText(&d.Text, text)
	}
}

func appendText(dst *string, text string) {
	if text == "" {
		return
	}
	if *dst == "" {
		*dst = text
		return
	}
	*dst += "\n" + text
}

func appendMapText(m map[string]string, key, text string) {
	if existing, ok := m[key]; ok && existing != "" {
		if text != "" {
			m[key] = existing + "\n" + text
		}
		return
	}
	m[key] = text
}

// ToMap returns the canonical mapping shape with empty collections
// pruned. A paramOrder key is present exactly when parameters were seen.
func (d *Doc) ToMap() map[string]any {
	out := map[string]any{}
	putString := func(key, value string) {
		if value != "" {
			out[key] = value
		}
	}
	putString("text", d.Text)
	putString("returns", d.Returns)
	putString("throws", d.Throws)
	putString("note", d.Note)
	putString("bugs", d.Bugs)
	putString("deprecated", d.Deprecated)
	putString("example", d.Example)
	putString("obsolete", d.Obsolete)
	putString("copyright", d.Copyright)
	putString("thanks", d.Thanks)
	putString("fixme", d.FixMe)
	putString("index", d.Index)
	putString("type", d.Type)
	if len(d.Params) > 0 {
		out["params"] = d.Params
		out["paramOrder"] = d.ParamOrder
	}
	if len(d.SeeAlso) > 0 {
		out["seealso"] = d.SeeAlso
	}
	if len(d.Members) > 0 {
		out["members"] = d.Members
	}
	if len(d.Elements) > 0 {
		out["elements"] = d.Elements
	}
	if len(d.Values) > 0 {
		out["values"] = d.Values
	}
	if len(d.Constants) > 0 {
		out["constants"] = d.Constants
	}
	return out
}
