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
package types

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// symbolKinds maps analyzer kinds onto LSP symbol kinds. Directive
// pseudo-symbols (inherit, import, include, require) surface as
// namespaces so editors show them in the outline without inventing a
// bogus variable.
var symbolKinds = map[SymbolKind]protocol.SymbolKind{
	KindVariable:     protocol.SymbolKindVariable,
	KindFunction:     protocol.SymbolKindFunction,
	KindClass:        protocol.SymbolKindClass,
	KindConstant:     protocol.SymbolKindConstant,
	KindTypedef:      protocol.SymbolKindInterface,
	KindEnum:         protocol.SymbolKindEnum,
	KindEnumConstant: protocol.SymbolKindEnumMember,
	KindInherit:      protocol.SymbolKindNamespace,
	KindImport:       protocol.SymbolKindNamespace,
	KindInclude:      protocol.SymbolKindNamespace,
	KindRequire:      protocol.SymbolKindNamespace,
	KindModule:       protocol.SymbolKindModule,
	KindNamespace:    protocol.SymbolKindNamespace,
}

// completionKinds maps analyzer kinds onto LSP completion item kinds
var completionKinds = map[SymbolKind]protocol.CompletionItemKind{
	KindVariable:     protocol.CompletionItemKindVariable,
	KindFunction:     protocol.CompletionItemKindFunction,
	KindClass:        protocol.CompletionItemKindClass,
	KindConstant:     protocol.CompletionItemKindConstant,
	KindTypedef:      protocol.CompletionItemKindInterface,
	KindEnum:         protocol.CompletionItemKindEnum,
	KindEnumConstant: protocol.CompletionItemKindEnumMember,
	KindModule:       protocol.CompletionItemKindModule,
}

// ToProtocol converts a symbol to the LSP document-symbol shape. The
// analyzer tracks line-granular positions; the range spans the
// declaration line.
func (s Symbol) ToProtocol() protocol.SymbolInformation {
	kind, ok := symbolKinds[s.Kind]
	if !ok {
		kind = protocol.SymbolKindVariable
	}
	line := uint32(0)
	if s.Position.Line > 0 {
		line = uint32(s.Position.Line - 1)
	}
	info := protocol.SymbolInformation{
		Name: s.Name,
		Kind: kind,
		Location: protocol.Location{
			URI: protocol.DocumentUri("file://" + s.Position.File),
			Range: protocol.Range{
				Start: protocol.Position{Line: line, Character: 0},
				End:   protocol.Position{Line: line + 1, Character: 0},
			},
		},
	}
	if s.Inherited && s.InheritedFrom != "" {
		info.ContainerName = &s.InheritedFrom
	}
	return info
}

// ToCompletion converts a symbol to an LSP completion item. Functions
// carry their signature as detail and snippet-style parens in the
// insert text; everything else completes as plain text.
func (s Symbol) ToCompletion() protocol.CompletionItem {
	kind, ok := completionKinds[s.Kind]
	if !ok {
		kind = protocol.CompletionItemKindText
	}
	item := protocol.CompletionItem{
		Label: s.Name,
		Kind:  &kind,
	}
	if s.Type != "" {
		detail := s.Type
		item.Detail = &detail
	}
	if s.Documentation != "" {
		item.Documentation = &protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: s.Documentation,
		}
	}
	if s.Kind == KindFunction {
		insertFormat := protocol.InsertTextFormatSnippet
		insertText := s.Name + "($0)"
		if len(s.ArgNames) == 0 {
			insertText = s.Name + "()"
			insertFormat = protocol.InsertTextFormatPlainText
		}
		item.InsertText = &insertText
		item.InsertTextFormat = &insertFormat

		detail := s.signatureLabel()
		item.Detail = &detail
	}
	return item
}

// signatureLabel renders "name(type name, …) : ret" for completion
// detail and signature help
func (s Symbol) signatureLabel() string {
	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteString("(")
	for i, name := range s.ArgNames {
		if i > 0 {
			b.WriteString(", ")
		}
		if i < len(s.ArgTypes) {
			b.WriteString(s.ArgTypes[i])
			b.WriteString(" ")
		}
		b.WriteString(name)
	}
	b.WriteString(")")
	if s.ReturnType != "" {
		b.WriteString(" : ")
		b.WriteString(s.ReturnType)
	}
	return b.String()
}
