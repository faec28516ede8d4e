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
package compile_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/pikelsp/compile"
	"bennypowers.dev/pikelsp/internal/platform"
	"bennypowers.dev/pikelsp/pike"
)

func result(deps ...string) *compile.Result {
	return &compile.Result{
		Program:      &pike.Program{},
		Dependencies: deps,
	}
}

func TestMakeCacheKey_LSPVersion(t *testing.T) {
	fs := platform.NewMapFS(nil)
	version := 7
	key := compile.MakeCacheKey(fs, "/f.pike", &version)
	assert.Equal(t, "LSP:7", key)
}

func TestMakeCacheKey_StatSignature(t *testing.T) {
	fs := platform.NewMapFS(map[string]string{
		"/project/f.pike": "int x;  ", // 8 bytes
	})
	fs.SetModTime("/project/f.pike", time.Unix(1700000000, 0))

	key := compile.MakeCacheKey(fs, "/project/f.pike", nil)
	assert.Equal(t, "FS:1700000000\x008", key)
}

func TestMakeCacheKey_MissingFile(t *testing.T) {
	fs := platform.NewMapFS(nil)
	key := compile.MakeCacheKey(fs, "/nope.pike", nil)
	assert.Equal(t, compile.MissingKey, key)

	// the sentinel is an immediate miss for Get and a no-op for Put
	c := compile.NewCache(10, "")
	c.Put("/nope.pike", key, result())
	_, ok := c.Get("/nope.pike", key)
	assert.False(t, ok)
	assert.Zero(t, c.Size())
}

func TestCache_GetPut(t *testing.T) {
	c := compile.NewCache(10, "")
	r := result()
	c.Put("/a.pike", "LSP:1", r)

	got, ok := c.Get("/a.pike", "LSP:1")
	require.True(t, ok)
	assert.Same(t, r, got)

	_, ok = c.Get("/a.pike", "LSP:2")
	assert.False(t, ok, "different version key must miss")
	_, ok = c.Get("/b.pike", "LSP:1")
	assert.False(t, ok)
}

func TestCache_ManyVersionsOnePath(t *testing.T) {
	c := compile.NewCache(10, "")
	for v := 1; v <= 20; v++ {
		c.Put("/open.pike", fmt.Sprintf("LSP:%d", v), result())
	}
	assert.Equal(t, 1, c.Size(), "versions nest under one path entry")

	c.Invalidate("/open.pike", false)
	for v := 1; v <= 20; v++ {
		_, ok := c.Get("/open.pike", fmt.Sprintf("LSP:%d", v))
		assert.False(t, ok)
	}
}

func TestCache_BatchEviction(t *testing.T) {
	c := compile.NewCache(10, "")
	for i := 1; i <= 10; i++ {
		c.Put(fmt.Sprintf("/p%02d.pike", i), "FS:1\x001", result())
	}
	// warm p1 and p2 so p3 holds the smallest stamp
	_, ok := c.Get("/p01.pike", "FS:1\x001")
	require.True(t, ok)
	_, ok = c.Get("/p02.pike", "FS:1\x001")
	require.True(t, ok)

	c.Put("/p11.pike", "FS:1\x001", result())

	assert.False(t, c.Has("/p03.pike"), "coldest path evicted")
	assert.True(t, c.Has("/p01.pike"))
	assert.True(t, c.Has("/p02.pike"))
	assert.True(t, c.Has("/p11.pike"))
	assert.LessOrEqual(t, c.Size(), 10)
}

func TestCache_BatchEvictionRounding(t *testing.T) {
	// capacity under ten still evicts at least one
	c := compile.NewCache(3, "")
	c.Put("/a.pike", "k", result())
	c.Put("/b.pike", "k", result())
	c.Put("/c.pike", "k", result())
	c.Put("/d.pike", "k", result())
	assert.False(t, c.Has("/a.pike"))
	assert.Equal(t, 3, c.Size())
}

func TestCache_TransitiveInvalidation(t *testing.T) {
	// A→B→C, A→D
	c := compile.NewCache(10, "")
	c.Put("/C.pike", "k", result())
	c.Put("/D.pike", "k", result())
	c.Put("/B.pike", "k", result("/C.pike"))
	c.Put("/A.pike", "k", result("/B.pike", "/D.pike"))

	invalidated := c.Invalidate("/B.pike", true)
	assert.ElementsMatch(t, []string{"/A.pike", "/B.pike"}, invalidated)

	assert.False(t, c.Has("/A.pike"))
	assert.False(t, c.Has("/B.pike"))
	assert.True(t, c.Has("/C.pike"))
	assert.True(t, c.Has("/D.pike"))

	// A's edges are gone on both sides
	assert.Empty(t, c.Graph().Dependencies("/A.pike"))
	assert.NotContains(t, c.Graph().Dependents("/B.pike"), "/A.pike")
}

func TestCache_TransitiveInvalidationDiamondTerminates(t *testing.T) {
	// D→B→A, D→C→A: invalidating A reaches D once through two routes
	c := compile.NewCache(10, "")
	c.Put("/A.pike", "k", result())
	c.Put("/B.pike", "k", result("/A.pike"))
	c.Put("/C.pike", "k", result("/A.pike"))
	c.Put("/D.pike", "k", result("/B.pike", "/C.pike"))

	invalidated := c.Invalidate("/A.pike", true)
	assert.ElementsMatch(t, []string{"/A.pike", "/B.pike", "/C.pike", "/D.pike"}, invalidated)
}

func TestCache_RePutReplacesEdges(t *testing.T) {
	c := compile.NewCache(10, "")
	c.Put("/a.pike", "k1", result("/old.pike"))
	assert.Contains(t, c.Graph().Dependents("/old.pike"), "/a.pike")

	c.Put("/a.pike", "k2", result("/new.pike"))
	assert.NotContains(t, c.Graph().Dependents("/old.pike"), "/a.pike")
	assert.Contains(t, c.Graph().Dependents("/new.pike"), "/a.pike")
	assert.Equal(t, []string{"/new.pike"}, c.Graph().Dependencies("/a.pike"))
}

func TestCache_ProjectRootFiltersEdges(t *testing.T) {
	c := compile.NewCache(10, "/project")
	c.Put("/project/a.pike", "k", result("/project/b.pike", "/usr/lib/pike/Stdio.pmod"))

	deps := c.Graph().Dependencies("/project/a.pike")
	assert.Equal(t, []string{"/project/b.pike"}, deps, "stdlib edges are overhead, not tracked")
}

func TestCache_InvalidateAllKeepsGraph(t *testing.T) {
	c := compile.NewCache(10, "")
	c.Put("/a.pike", "k", result("/b.pike"))
	c.InvalidateAll()

	assert.Zero(t, c.Size())
	assert.Equal(t, []string{"/b.pike"}, c.Graph().Dependencies("/a.pike"),
		"graph survives a cache wipe")
}
