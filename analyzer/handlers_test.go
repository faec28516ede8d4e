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
package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/pikelsp/analyzer"
	"bennypowers.dev/pikelsp/internal/platform"
	"bennypowers.dev/pikelsp/introspect"
	"bennypowers.dev/pikelsp/resolver"
	"bennypowers.dev/pikelsp/types"
)

func projectAnalyzer() *analyzer.Analyzer {
	fs := platform.NewMapFS(map[string]string{
		"/p/base.pike":                 "class Base { int fd; void open() {} }",
		"/p/child.pike":                "inherit Base;\nint own;",
		"/p/child_class.pike":          "class Child { inherit Base; int own; }",
		"/p/main.pike":                 "import Crypto;\nint entry() { return 0; }",
		"/lib/Crypto.pmod/module.pmod": "constant VERSION = 1;\nint hash(string data);",
		"/lib/Crypto.pmod/RSA.pike":    "//! RSA keys.\nint sign(string msg);",
	})
	return analyzer.New(fs, analyzer.Config{
		ProjectRoot: "/p",
		ModulePaths: []string{"/lib"},
	})
}

func TestHandle_Introspect(t *testing.T) {
	a := projectAnalyzer()
	result, errResp := a.Handle("introspect", map[string]any{
		"code":     "int x;\nstring f(int n) { return \"\"; }",
		"filename": "/p/x.pike",
	})
	require.Nil(t, errResp)

	intro, ok := result.(*introspect.Result)
	require.True(t, ok)
	assert.True(t, intro.Success)
	assert.Len(t, intro.Symbols, 2)
}

func TestHandle_Resolve(t *testing.T) {
	a := projectAnalyzer()
	result, errResp := a.Handle("resolve", map[string]any{"module": "Crypto.RSA"})
	require.Nil(t, errResp)

	m, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, m["exists"])
	assert.Equal(t, "/lib/Crypto.pmod/RSA.pike", m["path"])
}

func TestHandle_ResolveStdlib(t *testing.T) {
	a := projectAnalyzer()
	result, errResp := a.Handle("resolve_stdlib", map[string]any{"module": "Crypto.RSA"})
	require.Nil(t, errResp)

	stdlib, ok := result.(*analyzer.StdlibResult)
	require.True(t, ok)
	assert.True(t, stdlib.Found)
	assert.Equal(t, "/lib/Crypto.pmod/RSA.pike", stdlib.Path)
	require.NotEmpty(t, stdlib.Symbols)
	assert.Equal(t, "sign", stdlib.Symbols[0].Name)
	assert.Contains(t, stdlib.Symbols[0].Documentation, "RSA keys.")
}

func TestHandle_ExtractImports(t *testing.T) {
	a := projectAnalyzer()
	result, errResp := a.Handle("extract_imports", map[string]any{
		"code":        "import Crypto;\ninherit Base;\n",
		"currentFile": "/p/child.pike",
	})
	require.Nil(t, errResp)

	extract, ok := result.(*analyzer.ExtractResult)
	require.True(t, ok)
	require.Len(t, extract.Imports, 2)
	assert.Contains(t, extract.Dependencies, "/lib/Crypto.pmod/module.pmod")
	assert.Contains(t, extract.Dependencies, "/p/base.pike")
}

func TestHandle_ResolveImport(t *testing.T) {
	a := projectAnalyzer()
	result, errResp := a.Handle("resolve_import", map[string]any{
		"import_type":  "inherit",
		"target":       "Base",
		"current_file": "/p/child.pike",
	})
	require.Nil(t, errResp)

	res, ok := result.(types.Resolution)
	require.True(t, ok)
	assert.True(t, res.Exists)
	assert.Equal(t, "/p/base.pike", res.Path)
	assert.Equal(t, "inherit", res.Type)
	assert.NotZero(t, res.Mtime, "mtime populated from stat")
}

func TestHandle_GetInherited(t *testing.T) {
	a := projectAnalyzer()
	// warm the class index so get_inherited can find Child's file
	_, _ = a.Handle("introspect", map[string]any{
		"code":     "class Child { inherit Base; int own; }",
		"filename": "/p/child_class.pike",
	})

	result, errResp := a.Handle("get_inherited", map[string]any{"class": "Child"})
	require.Nil(t, errResp)
	inherited, ok := result.(*analyzer.InheritedResult)
	require.True(t, ok)
	require.True(t, inherited.Found)
	assert.Equal(t, 1, inherited.InheritCount)

	names := make([]string, 0, len(inherited.Members))
	for _, m := range inherited.Members {
		names = append(names, m.Name)
		assert.True(t, m.Inherited)
		assert.Equal(t, "base.pike", m.InheritedFrom)
	}
	assert.ElementsMatch(t, []string{"fd", "open"}, names)
}

func TestHandle_CheckCircularGraph(t *testing.T) {
	a := projectAnalyzer()
	result, errResp := a.Handle("check_circular", map[string]any{
		"graph": map[string]any{
			"a.pike": []any{"b.pike"},
			"b.pike": []any{"a.pike"},
		},
	})
	require.Nil(t, errResp)

	circular, ok := result.(*analyzer.CircularResult)
	require.True(t, ok)
	assert.True(t, circular.HasCircular)
	assert.Subset(t, circular.Cycle, []string{"a.pike", "b.pike"})
}

func TestHandle_CheckCircularGraphAcyclic(t *testing.T) {
	a := projectAnalyzer()
	result, _ := a.Handle("check_circular", map[string]any{
		"graph": map[string]any{
			"a.pike": []any{"b.pike"},
			"b.pike": []any{},
		},
	})
	circular := result.(*analyzer.CircularResult)
	assert.False(t, circular.HasCircular)
	assert.Empty(t, circular.Cycle)
}

func TestHandle_WaterfallSymbols(t *testing.T) {
	a := projectAnalyzer()
	result, errResp := a.Handle("get_waterfall_symbols", map[string]any{
		"code":     "import Crypto;\nint entry() { return 0; }",
		"filename": "/p/main.pike",
		// max_depth arrives as a JSON number
		"max_depth": float64(2),
	})
	require.Nil(t, errResp)

	waterfall, ok := result.(*resolver.WaterfallResult)
	require.True(t, ok)

	byName := map[string]types.Symbol{}
	for _, s := range waterfall.Symbols {
		byName[s.Name] = s
	}
	require.Contains(t, byName, "entry")
	assert.Equal(t, 0, byName["entry"].ProvenanceDepth)
	require.Contains(t, byName, "hash")
	assert.Equal(t, 1, byName["hash"].ProvenanceDepth)
	assert.Equal(t, "/lib/Crypto.pmod/module.pmod", byName["hash"].ProvenanceFile)
}

func TestHandle_ParseAndTokenize(t *testing.T) {
	a := projectAnalyzer()
	result, errResp := a.Handle("parse", map[string]any{
		"code":     "int x;\nstring y;\n",
		"filename": "/p/parse_me.pike",
	})
	require.Nil(t, errResp)
	parsed := result.(*analyzer.ParseResult)
	assert.Len(t, parsed.Symbols, 2)
	assert.Empty(t, parsed.Diagnostics)

	result, errResp = a.Handle("parse", map[string]any{
		"code":     "int x;\nstring y;\n",
		"filename": "/p/parse_me.pike",
		"line":     float64(2),
	})
	require.Nil(t, errResp)
	parsed = result.(*analyzer.ParseResult)
	require.Len(t, parsed.Symbols, 1)
	assert.Equal(t, "y", parsed.Symbols[0].Name)

	result, errResp = a.Handle("tokenize", map[string]any{"code": "int x;"})
	require.Nil(t, errResp)
	tokens := result.(map[string]any)["tokens"].([]analyzer.TokenInfo)
	require.Len(t, tokens, 3)
	assert.Equal(t, "int", tokens[0].Text)
	assert.Equal(t, 1, tokens[0].Line)
}

func TestHandle_BatchParse(t *testing.T) {
	a := projectAnalyzer()
	result, errResp := a.Handle("batch_parse", map[string]any{
		"files": []any{
			map[string]any{"code": "int a;", "filename": "/p/one.pike"},
			map[string]any{"code": "int b;", "filename": "/p/two.pike"},
		},
	})
	require.Nil(t, errResp)

	batch := result.(map[string]any)
	assert.Equal(t, 2, batch["count"])
	results := batch["results"].([]any)
	require.Len(t, results, 2)
	first := results[0].(*analyzer.ParseResult)
	assert.Equal(t, "a", first.Symbols[0].Name)
}

func TestHandle_InvalidateFileTransitive(t *testing.T) {
	a := projectAnalyzer()

	// compile child.pike so the child→base edge lands in the graph
	_, errResp := a.Handle("parse", map[string]any{
		"code":     "inherit Base;\nint own;",
		"filename": "/p/child.pike",
	})
	require.Nil(t, errResp)
	_, errResp = a.Handle("parse", map[string]any{
		"code":     "class Base { int fd; void open() {} }",
		"filename": "/p/base.pike",
	})
	require.Nil(t, errResp)
	require.True(t, a.CompilationCache().Has("/p/child.pike"))

	result, errResp := a.Handle("invalidate_file", map[string]any{
		"path":       "/p/base.pike",
		"transitive": true,
	})
	require.Nil(t, errResp)

	invalidated := result.(map[string]any)["invalidated"].([]string)
	assert.ElementsMatch(t, []string{"/p/base.pike", "/p/child.pike"}, invalidated)
	assert.False(t, a.CompilationCache().Has("/p/child.pike"))
}

func TestHandle_CacheStatsAndClear(t *testing.T) {
	a := projectAnalyzer()
	_, _ = a.Handle("resolve_stdlib", map[string]any{"module": "Crypto"})

	result, errResp := a.Handle("cache_stats", nil)
	require.Nil(t, errResp)
	stats := result.(map[string]any)
	assert.Contains(t, stats, "stdlib")
	assert.Contains(t, stats, "programs")
	assert.Contains(t, stats, "imports")
	assert.Contains(t, stats, "compilation")

	_, errResp = a.Handle("clear_caches", nil)
	require.Nil(t, errResp)
	assert.Zero(t, a.Bank().Size(1))
}

func TestHandleRequest_UnknownOp(t *testing.T) {
	a := projectAnalyzer()
	resp := a.HandleRequest(analyzer.Request{Op: "no_such_op"})

	require.NotNil(t, resp.Error)
	assert.Equal(t, analyzer.InternalErrorCode, resp.Error.Code)
	assert.NotEmpty(t, resp.ID, "responses without a request id get one stamped")
}

func TestHandleRequest_EchoesID(t *testing.T) {
	a := projectAnalyzer()
	resp := a.HandleRequest(analyzer.Request{
		ID: "req-42",
		Op: "tokenize",
		Params: map[string]any{
			"code": "int x;",
		},
	})
	assert.Equal(t, "req-42", resp.ID)
	assert.Nil(t, resp.Error)
	assert.NotNil(t, resp.Result)
}
