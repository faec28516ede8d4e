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
package autodoc_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/pikelsp/autodoc"
)

func TestParse_RealisticBlock(t *testing.T) {
	doc := autodoc.Parse(`Do a thing.
@param name Who to greet
@returns The greeting
@seealso other_fn`)

	assert.Equal(t, "Do a thing.", doc.Text)
	assert.Equal(t, map[string]string{"name": "Who to greet"}, doc.Params)
	assert.Equal(t, []string{"name"}, doc.ParamOrder)
	assert.Equal(t, "The greeting", doc.Returns)
	assert.Equal(t, []string{"other_fn"}, doc.SeeAlso)
	assert.Empty(t, doc.Deprecated)

	m := doc.ToMap()
	assert.NotContains(t, m, "deprecated")
	assert.Contains(t, m, "paramOrder")
}

func TestParse_ParamOrderPreserved(t *testing.T) {
	doc := autodoc.Parse(`@param zebra last alphabetically
@param apple first alphabetically
@param zebra described again`)

	assert.Equal(t, []string{"zebra", "apple"}, doc.ParamOrder,
		"declaration order, first sighting only")
	assert.Contains(t, doc.Params["zebra"], "last alphabetically")
}

func TestParse_MultilineParamDescription(t *testing.T) {
	doc := autodoc.Parse(`@param options
A mapping of options.
Keys are option names.`)

	assert.Equal(t, "A mapping of options.\nKeys are option names.", doc.Params["options"])
}

func TestParse_InlineMarkup(t *testing.T) {
	doc := autodoc.Parse(`Makes @b{bold@} and @i{italic@} and @tt{mono@} text.
Use @[write] or @ref{werror@} for output. a@@b stays an email.`)

	assert.Contains(t, doc.Text, "**bold**")
	assert.Contains(t, doc.Text, "*italic*")
	assert.Contains(t, doc.Text, "`mono`")
	assert.Contains(t, doc.Text, "`write`")
	assert.Contains(t, doc.Text, "`werror`")
	assert.Contains(t, doc.Text, "a@b")
}

func TestParse_NestedInlineMarkup(t *testing.T) {
	doc := autodoc.Parse(`@b{bold with @i{nested@} inside@}`)
	assert.Equal(t, "**bold with *nested* inside**", doc.Text)
}

func TestParse_IgnoreBlocks(t *testing.T) {
	doc := autodoc.Parse(`visible before
@ignore
hidden text
@param hidden should not appear
@endignore
visible after`)

	assert.Contains(t, doc.Text, "visible before")
	assert.Contains(t, doc.Text, "visible after")
	assert.NotContains(t, doc.Text, "hidden")
	assert.Empty(t, doc.Params)
}

func TestParse_CodeGroup(t *testing.T) {
	doc := autodoc.Parse(`Example of use:
@code
int x = @b{not markup@};
@endcode`)

	assert.Contains(t, doc.Text, "```pike")
	assert.Contains(t, doc.Text, "int x = @b{not markup@};")
	assert.Contains(t, doc.Text, "```")
}

func TestParse_MappingGroup(t *testing.T) {
	doc := autodoc.Parse(`@returns
A result mapping:
@mapping
@member int total
The total count.
@member string error
Set on failure.
@endmapping`)

	assert.Contains(t, doc.Returns, "- `total`:")
	assert.Contains(t, doc.Returns, "- `error`:")
	assert.Contains(t, doc.Returns, "The total count.")
	assert.Empty(t, doc.Members, "grouped members render inline, not as top-level members")
}

func TestParse_MemberSection(t *testing.T) {
	doc := autodoc.Parse(`@member int count
How many.`)
	assert.Equal(t, map[string]string{"count": "How many."}, doc.Members)
}

func TestParse_SectionsAccumulate(t *testing.T) {
	doc := autodoc.Parse(`@note first note
@note second note
@throws on bad input
@deprecated use new_fn instead`)

	assert.Equal(t, "first note\nsecond note", doc.Note)
	assert.Equal(t, "on bad input", doc.Throws)
	assert.Equal(t, "use new_fn instead", doc.Deprecated)
}

func TestParse_FixedPoint(t *testing.T) {
	blocks := []string{
		"Do a thing.\n@param name Who to greet\n@returns The greeting\n@seealso other_fn",
		"@param a first\n@param b second\n@throws when confused\n@deprecated gone in 9.0",
		"Text only, no sections at all.",
		"@returns a mapping\n@seealso fn_one\n@seealso fn_two",
	}
	for _, block := range blocks {
		first := autodoc.Parse(block)
		second := autodoc.Parse(first.Render())

		assert.Empty(t, cmp.Diff(first.Params, second.Params), "params")
		assert.Empty(t, cmp.Diff(first.ParamOrder, second.ParamOrder), "paramOrder")
		assert.Equal(t, first.Returns, second.Returns)
		assert.Equal(t, first.Throws, second.Throws)
		assert.Equal(t, first.Deprecated, second.Deprecated)
		assert.Empty(t, cmp.Diff(first.SeeAlso, second.SeeAlso), "seealso")
	}
}

func TestMarkdown_Hover(t *testing.T) {
	doc := autodoc.Parse(`Greets someone.
@param name Who to greet
@returns The greeting`)

	md := doc.Markdown()
	assert.Contains(t, md, "Greets someone.")
	assert.Contains(t, md, "**Parameters:**")
	assert.Contains(t, md, "- `name` — Who to greet")
	assert.Contains(t, md, "**Returns:** The greeting")
}

func TestRenderHTML(t *testing.T) {
	doc := autodoc.Parse("Plain with @b{bold@}.")
	html, err := doc.RenderHTML()
	require.NoError(t, err)
	assert.Contains(t, html, "<strong>bold</strong>")
}

func TestMarkupContent(t *testing.T) {
	doc := autodoc.Parse("hover body")
	content := doc.MarkupContent()
	assert.Equal(t, "hover body", content.Value)
}
