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
package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"bennypowers.dev/pikelsp/types"
)

func TestDiagnostic_ToProtocol(t *testing.T) {
	d := types.Diagnostic{
		Severity: "error",
		Message:  "missing ';'",
		Position: types.Position{File: "/p/f.pike", Line: 3},
	}
	pd := d.ToProtocol()

	require.NotNil(t, pd.Severity)
	assert.Equal(t, protocol.DiagnosticSeverityError, *pd.Severity)
	assert.Equal(t, "missing ';'", pd.Message)
	assert.EqualValues(t, 2, pd.Range.Start.Line, "LSP lines are 0-based")

	d.Severity = "warning"
	pd = d.ToProtocol()
	assert.Equal(t, protocol.DiagnosticSeverityWarning, *pd.Severity)
}

func TestSymbol_ToProtocol(t *testing.T) {
	s := types.Symbol{
		Name:     "greet",
		Kind:     types.KindFunction,
		Position: types.Position{File: "/p/f.pike", Line: 10},
	}
	info := s.ToProtocol()
	assert.Equal(t, "greet", info.Name)
	assert.Equal(t, protocol.SymbolKindFunction, info.Kind)
	assert.EqualValues(t, 9, info.Location.Range.Start.Line)
	assert.Equal(t, protocol.DocumentUri("file:///p/f.pike"), info.Location.URI)
	assert.Nil(t, info.ContainerName)
}

func TestSymbol_ToProtocolInherited(t *testing.T) {
	s := types.Symbol{
		Name:          "fd",
		Kind:          types.KindVariable,
		Position:      types.Position{File: "/p/base.pike", Line: 2},
		Inherited:     true,
		InheritedFrom: "base.pike",
	}
	info := s.ToProtocol()
	require.NotNil(t, info.ContainerName)
	assert.Equal(t, "base.pike", *info.ContainerName)
}

func TestSymbol_ToCompletionFunction(t *testing.T) {
	s := types.Symbol{
		Name:       "greet",
		Kind:       types.KindFunction,
		Type:       "function(string : string)",
		ReturnType: "string",
		ArgNames:   []string{"name"},
		ArgTypes:   []string{"string"},
	}
	item := s.ToCompletion()

	assert.Equal(t, "greet", item.Label)
	require.NotNil(t, item.Kind)
	assert.Equal(t, protocol.CompletionItemKindFunction, *item.Kind)
	require.NotNil(t, item.Detail)
	assert.Equal(t, "greet(string name) : string", *item.Detail)
	require.NotNil(t, item.InsertText)
	assert.Equal(t, "greet($0)", *item.InsertText)
}

func TestSymbol_ToCompletionNoArgFunction(t *testing.T) {
	s := types.Symbol{
		Name:       "now",
		Kind:       types.KindFunction,
		ReturnType: "int",
	}
	item := s.ToCompletion()
	require.NotNil(t, item.InsertText)
	assert.Equal(t, "now()", *item.InsertText)
	require.NotNil(t, item.InsertTextFormat)
	assert.Equal(t, protocol.InsertTextFormatPlainText, *item.InsertTextFormat)
}

func TestSymbol_ToCompletionVariable(t *testing.T) {
	s := types.Symbol{
		Name:          "counter",
		Kind:          types.KindVariable,
		Type:          "int",
		Documentation: "A **counter**.",
	}
	item := s.ToCompletion()
	require.NotNil(t, item.Kind)
	assert.Equal(t, protocol.CompletionItemKindVariable, *item.Kind)
	require.NotNil(t, item.Detail)
	assert.Equal(t, "int", *item.Detail)
	doc, ok := item.Documentation.(*protocol.MarkupContent)
	require.True(t, ok)
	assert.Equal(t, "A **counter**.", doc.Value)
}
