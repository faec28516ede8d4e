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

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/yuin/goldmark"
)

// Render serializes the document back into autodoc form. Parsing the
// rendered text reproduces the same params, paramOrder, returns,
// throws, deprecated and seealso, which is what incremental re-hover
// relies on.
func (d *Doc) Render() string {
	var b strings.Builder
	writeSection := func(keyword, text string) {
		if text == "" {
			return
		}
		b.WriteString("@" + keyword + "\n")
		b.WriteString(text + "\n")
	}

	if d.Text != "" {
		b.WriteString(d.Text + "\n")
	}
	for _, name := range d.ParamOrder {
		desc := d.Params[name]
		if desc == "" || strings.Contains(desc, "\n") {
			b.WriteString("@param " + name + "\n")
			if desc != "" {
				b.WriteString(desc + "\n")
			}
		} else {
			b.WriteString("@param " + name + " " + desc + "\n")
		}
	}
	writeSection("returns", d.Returns)
	writeSection("throws", d.Throws)
	writeSection("note", d.Note)
	writeSection("bugs", d.Bugs)
	writeSection("deprecated", d.Deprecated)
	writeSection("example", d.Example)
	for _, ref := range d.SeeAlso {
		b.WriteString("@seealso " + ref + "\n")
	}
	writeNamed(&b, "member", d.Members)
	writeNamed(&b, "elem", d.Elements)
	writeNamed(&b, "value", d.Values)
	writeNamed(&b, "constant", d.Constants)
	writeSection("obsolete", d.Obsolete)
	writeSection("copyright", d.Copyright)
	writeSection("thanks", d.Thanks)
	writeSection("fixme", d.FixMe)
	writeSection("index", d.Index)
	writeSection("type", d.Type)
	return strings.TrimRight(b.String(), "\n")
}

func writeNamed(b *strings.Builder, keyword string, m map[string]string) {
	for _, name := range sortedKeys(m) {
		b.WriteString("@" + keyword + " " + name + "\n")
		if desc := m[name]; desc != "" {
			b.WriteString(desc + "\n")
		}
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Markdown renders the hover body. Section fields become bolded
// headings; parameters keep declaration order.
func (d *Doc) Markdown() string {
	var sections []string
	if d.Text != "" {
		sections = append(sections, d.Text)
	}
	if d.Deprecated != "" {
		sections = append(sections, "**Deprecated:** "+d.Deprecated)
	}
	if len(d.ParamOrder) > 0 {
		var b strings.Builder
		b.WriteString("**Parameters:**")
		for _, name := range d.ParamOrder {
			b.WriteString(fmt.Sprintf("\n- `%s`", name))
			if desc := d.Params[name]; desc != "" {
				b.WriteString(" — " + desc)
			}
		}
		sections = append(sections, b.String())
	}
	if d.Returns != "" {
		sections = append(sections, "**Returns:** "+d.Returns)
	}
	if d.Throws != "" {
		sections = append(sections, "**Throws:** "+d.Throws)
	}
	if d.Note != "" {
		sections = append(sections, "**Note:** "+d.Note)
	}
	if d.Bugs != "" {
		sections = append(sections, "**Bugs:** "+d.Bugs)
	}
	if d.Example != "" {
		sections = append(sections, "**Example:**\n"+d.Example)
	}
	if len(d.SeeAlso) > 0 {
		refs := make([]string, len(d.SeeAlso))
		for i, ref := range d.SeeAlso {
			refs[i] = "`" + strings.Trim(ref, "`") + "`"
		}
		sections = append(sections, "**See also:** "+strings.Join(refs, ", "))
	}
	return strings.Join(sections, "\n\n")
}

// MarkupContent returns the hover document in LSP wire form
func (d *Doc) MarkupContent() protocol.MarkupContent {
	return protocol.MarkupContent{
		Kind:  protocol.MarkupKindMarkdown,
		Value: d.Markdown(),
	}
}

// RenderHTML converts the Markdown hover body to HTML, for clients that
// advertise no Markdown support.
func (d *Doc) RenderHTML() (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(d.Markdown()), &buf); err != nil {
		return "", fmt.Errorf("rendering hover documentation: %w", err)
	}
	return buf.String(), nil
}
