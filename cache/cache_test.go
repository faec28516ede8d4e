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
package cache_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/pikelsp/cache"
)

func TestBank_GetMissThenHit(t *testing.T) {
	b := cache.NewBank(2, 2, 2)

	_, ok := b.Get(cache.StorePrograms, "a")
	assert.False(t, ok)

	b.Put(cache.StorePrograms, "a", 1)
	v, ok := b.Get(cache.StorePrograms, "a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	stats := b.StatsFor(cache.StorePrograms)
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestBank_SizeBound(t *testing.T) {
	const capacity = 5
	b := cache.NewBank(capacity, 1, 1)
	for i := 0; i < 50; i++ {
		b.Put(cache.StorePrograms, fmt.Sprintf("k%02d", i), i)
		assert.LessOrEqual(t, b.Size(cache.StorePrograms), capacity)
	}
}

func TestBank_LRUEviction(t *testing.T) {
	const capacity = 4
	b := cache.NewBank(capacity, 1, 1)
	for i := 1; i <= capacity+1; i++ {
		b.Put(cache.StorePrograms, fmt.Sprintf("k%d", i), i)
	}
	// k1 was the coldest; k2…k5 remain
	_, ok := b.Get(cache.StorePrograms, "k1")
	assert.False(t, ok)
	for i := 2; i <= capacity+1; i++ {
		_, ok := b.Get(cache.StorePrograms, fmt.Sprintf("k%d", i))
		assert.True(t, ok, "k%d should remain", i)
	}
}

func TestBank_ReadRefreshesRecency(t *testing.T) {
	b := cache.NewBank(3, 1, 1)
	b.Put(cache.StorePrograms, "a", 1)
	b.Put(cache.StorePrograms, "b", 2)
	b.Put(cache.StorePrograms, "c", 3)

	// touch a so b becomes the eviction victim
	_, ok := b.Get(cache.StorePrograms, "a")
	require.True(t, ok)

	b.Put(cache.StorePrograms, "d", 4)
	_, ok = b.Get(cache.StorePrograms, "a")
	assert.True(t, ok)
	_, ok = b.Get(cache.StorePrograms, "b")
	assert.False(t, ok)
}

func TestBank_RePutDoesNotEvict(t *testing.T) {
	b := cache.NewBank(2, 1, 1)
	b.Put(cache.StorePrograms, "a", 1)
	b.Put(cache.StorePrograms, "b", 2)
	b.Put(cache.StorePrograms, "a", 10)

	v, ok := b.Get(cache.StorePrograms, "a")
	require.True(t, ok)
	assert.Equal(t, 10, v)
	_, ok = b.Get(cache.StorePrograms, "b")
	assert.True(t, ok)
	assert.Equal(t, 2, b.Size(cache.StorePrograms))
}

func TestBank_StoresAreIndependent(t *testing.T) {
	b := cache.NewBank(2, 2, 2)
	b.Put(cache.StorePrograms, "x", "prog")
	b.Put(cache.StoreStdlib, "x", "std")

	v, ok := b.Get(cache.StorePrograms, "x")
	require.True(t, ok)
	assert.Equal(t, "prog", v)
	v, ok = b.Get(cache.StoreStdlib, "x")
	require.True(t, ok)
	assert.Equal(t, "std", v)

	b.Clear(cache.StorePrograms)
	_, ok = b.Get(cache.StorePrograms, "x")
	assert.False(t, ok)
	_, ok = b.Get(cache.StoreStdlib, "x")
	assert.True(t, ok)
}

func TestBank_HitMissAccounting(t *testing.T) {
	b := cache.NewBank(4, 4, 4)
	b.Put(cache.StoreStdlib, "a", 1)

	gets := 0
	for i := 0; i < 3; i++ {
		b.Get(cache.StoreStdlib, "a")
		gets++
	}
	for i := 0; i < 2; i++ {
		b.Get(cache.StoreStdlib, "nope")
		gets++
	}
	stats := b.StatsFor(cache.StoreStdlib)
	assert.Equal(t, uint64(gets), stats.Hits+stats.Misses)

	b.ClearStats()
	stats = b.StatsFor(cache.StoreStdlib)
	assert.Zero(t, stats.Hits)
	assert.Zero(t, stats.Misses)
}

func TestBank_ClearPreservesStats(t *testing.T) {
	b := cache.NewBank(2, 2, 2)
	b.Put(cache.StoreImports, "a", 1)
	b.Get(cache.StoreImports, "a")
	b.Get(cache.StoreImports, "missing")

	b.Clear(cache.StoreImports)
	stats := b.StatsFor(cache.StoreImports)
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Zero(t, stats.Size)
}

func TestBank_ImportMtimeValidation(t *testing.T) {
	b := cache.NewBank(2, 2, 4)
	b.PutImport("key", "resolution", 1000)

	// same or older origin mtime: still valid
	v, ok := b.GetImport("key", 1000)
	require.True(t, ok)
	assert.Equal(t, "resolution", v)

	// newer origin: stale, invalidated as a side effect
	_, ok = b.GetImport("key", 2000)
	assert.False(t, ok)
	_, ok = b.GetImport("key", 1000)
	assert.False(t, ok, "stale entry must have been dropped")
}

func TestBank_Invalidate(t *testing.T) {
	b := cache.NewBank(2, 2, 2)
	b.Put(cache.StorePrograms, "a", 1)
	b.Invalidate(cache.StorePrograms, "a")
	_, ok := b.Get(cache.StorePrograms, "a")
	assert.False(t, ok)

	// invalidating an absent key is a no-op
	b.Invalidate(cache.StorePrograms, "ghost")
}

func TestBank_ClearAll(t *testing.T) {
	b := cache.NewBank(2, 2, 2)
	b.Put(cache.StorePrograms, "a", 1)
	b.Put(cache.StoreStdlib, "b", 2)
	b.Put(cache.StoreImports, "c", 3)
	b.ClearAll()
	assert.Zero(t, b.Size(cache.StorePrograms))
	assert.Zero(t, b.Size(cache.StoreStdlib))
	assert.Zero(t, b.Size(cache.StoreImports))
}

func TestBank_DefaultCapacities(t *testing.T) {
	b := cache.NewBank(0, 0, 0)
	assert.Equal(t, cache.DefaultProgramCapacity, b.StatsFor(cache.StorePrograms).Capacity)
	assert.Equal(t, cache.DefaultStdlibCapacity, b.StatsFor(cache.StoreStdlib).Capacity)
	assert.Equal(t, cache.DefaultImportCapacity, b.StatsFor(cache.StoreImports).Capacity)
}

func TestStore_String(t *testing.T) {
	assert.Equal(t, "programs", cache.StorePrograms.String())
	assert.Equal(t, "stdlib", cache.StoreStdlib.String())
	assert.Equal(t, "imports", cache.StoreImports.String())
}
