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
package analyzer

import (
	"fmt"

	"github.com/google/uuid"

	"bennypowers.dev/pikelsp/internal/logging"
	"bennypowers.dev/pikelsp/lexer"
)

// InternalErrorCode is the error code for unforeseen faults caught at
// the handler boundary
const InternalErrorCode = -32000

// Error is the structured error half of a response
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Request is one operation call from the bridge
type Request struct {
	ID     string         `json:"id,omitempty"`
	Op     string         `json:"op"`
	Params map[string]any `json:"params,omitempty"`
}

// Response carries either a result or an error, never both. IDs absent
// from the request are stamped here so the bridge can always correlate.
type Response struct {
	ID     string `json:"id"`
	Result any    `json:"result,omitempty"`
	Error  *Error `json:"error,omitempty"`
}

// HandleRequest dispatches one request. Unforeseen faults are trapped
// at this boundary and surfaced as code −32000; state touched before
// the fault (the resolution guard in particular) unwinds via the
// operations' own defers.
func (a *Analyzer) HandleRequest(req Request) (resp Response) {
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	resp = Response{ID: id}

	defer func() {
		if r := recover(); r != nil {
			logging.Error("[ANALYZER] internal fault in %q: %v", req.Op, r)
			resp.Result = nil
			resp.Error = &Error{
				Code:    InternalErrorCode,
				Message: fmt.Sprintf("internal error in %s: %v", req.Op, r),
			}
		}
	}()

	result, err := a.Handle(req.Op, req.Params)
	resp.Result = result
	resp.Error = err
	return resp
}

// Handle runs one named operation over a parameter mapping
func (a *Analyzer) Handle(op string, params map[string]any) (any, *Error) {
	switch op {
	case "introspect":
		return a.Introspect(str(params, "code"), str(params, "filename")), nil

	case "resolve":
		res := a.ResolveImport("import", str(params, "module"), str(params, "currentFile"))
		return map[string]any{"path": res.Path, "exists": res.Exists}, nil

	case "resolve_stdlib":
		return a.ResolveStdlib(str(params, "module")), nil

	case "get_inherited":
		return a.GetInherited(str(params, "class")), nil

	case "extract_imports":
		return a.ExtractImports(str(params, "code"), str(params, "currentFile")), nil

	case "resolve_import":
		return a.ResolveImport(
			str(params, "import_type"),
			str(params, "target"),
			str(params, "current_file"),
		), nil

	case "check_circular":
		if graph, ok := graphParam(params); ok {
			return a.CheckCircularGraph(graph), nil
		}
		return a.CheckCircularSource(str(params, "code"), str(params, "filename")), nil

	case "get_waterfall_symbols":
		return a.WaterfallSymbols(
			str(params, "code"),
			str(params, "filename"),
			integer(params, "max_depth"),
		), nil

	case "parse":
		return a.Parse(str(params, "code"), str(params, "filename"), integer(params, "line")), nil

	case "tokenize":
		return map[string]any{"tokens": a.tokenize(str(params, "code"), str(params, "filename"))}, nil

	case "batch_parse":
		return a.batchParse(params), nil

	case "cache_stats":
		return a.CacheStats(), nil

	case "invalidate_file":
		invalidated := a.InvalidateFile(str(params, "path"), boolean(params, "transitive"))
		return map[string]any{"invalidated": invalidated}, nil

	case "clear_caches":
		a.ClearCaches()
		return map[string]any{"cleared": true}, nil

	default:
		return nil, &Error{
			Code:    InternalErrorCode,
			Message: fmt.Sprintf("unknown operation %q", op),
		}
	}
}

func (a *Analyzer) tokenize(code, filename string) []TokenInfo {
	tokens := lexer.Code(lexer.Tokenize(code))
	out := make([]TokenInfo, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, TokenInfo{
			Text:      t.Text,
			Line:      t.Line,
			Character: t.Character,
			File:      filename,
		})
	}
	return out
}

func (a *Analyzer) batchParse(params map[string]any) map[string]any {
	files, _ := params["files"].([]any)
	results := make([]any, 0, len(files))
	for _, f := range files {
		file, ok := f.(map[string]any)
		if !ok {
			continue
		}
		results = append(results, a.Parse(str(file, "code"), str(file, "filename"), 0))
	}
	return map[string]any{"results": results, "count": len(results)}
}

// parameter coercion helpers; bridge payloads arrive as generic JSON

func str(params map[string]any, key string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}

func integer(params map[string]any, key string) int {
	switch v := params[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

func boolean(params map[string]any, key string) bool {
	switch v := params[key].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	}
	return false
}

func graphParam(params map[string]any) (map[string][]string, bool) {
	raw, ok := params["graph"].(map[string]any)
	if !ok {
		return nil, false
	}
	graph := make(map[string][]string, len(raw))
	for node, edges := range raw {
		list, ok := edges.([]any)
		if !ok {
			continue
		}
		for _, edge := range list {
			if s, ok := edge.(string); ok {
				graph[node] = append(graph[node], s)
			}
		}
		if graph[node] == nil {
			graph[node] = []string{}
		}
	}
	return graph, true
}
