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
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Diagnostic is a compiler or parser message attached to a position.
// Severity is "error" or "warning".
type Diagnostic struct {
	Severity string   `json:"severity"`
	Message  string   `json:"message"`
	Position Position `json:"position"`
}

// ToProtocol converts the diagnostic to its LSP wire shape. The analyzer
// reports line-granular positions; the range covers the whole line.
func (d Diagnostic) ToProtocol() protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	if d.Severity == "warning" {
		severity = protocol.DiagnosticSeverityWarning
	}
	line := uint32(0)
	if d.Position.Line > 0 {
		line = uint32(d.Position.Line - 1)
	}
	source := "pike"
	return protocol.Diagnostic{
		Severity: &severity,
		Message:  d.Message,
		Source:   &source,
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: 0},
			End:   protocol.Position{Line: line + 1, Character: 0},
		},
	}
}
