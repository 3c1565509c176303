// Copyright 2022 Sogang University
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package btree

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slices"
)

func mapEntries(t *Tree[int, string]) (out []Entry[int, string]) {
	t.Ascend(func(key int, value string) bool {
		out = append(out, Entry[int, string]{key, value})
		return true
	})
	return
}

// newStringTree builds a tree on alloc, or on a free list of its own that no
// other tree can adopt nodes from if alloc is nil.
func newStringTree(alloc Allocator[int, string], entries ...Entry[int, string]) *Tree[int, string] {
	if alloc == nil {
		alloc = NewFreeList[int, string](DefaultFreeListSize)
	}
	tr := New(OrderedComparator[int](), Options[int, string]{MaxValues: 3, Allocator: alloc})
	for _, e := range entries {
		tr.InsertMulti(e.Key, e.Value)
	}
	return tr
}

func TestMergeUniqueTies(t *testing.T) {
	for name, shared := range map[string]bool{"shared": true, "separate": false} {
		t.Run(name, func(t *testing.T) {
			var alloc Allocator[int, string]
			if shared {
				alloc = NewFreeList[int, string](DefaultFreeListSize)
			}
			// b starts below a, so a shared allocator lets the merge start
			// from b's nodes.
			a := newStringTree(alloc, Entry[int, string]{3, "a3"}, Entry[int, string]{5, "a5"}, Entry[int, string]{7, "a7"})
			b := newStringTree(alloc, Entry[int, string]{1, "b1"}, Entry[int, string]{3, "b3"}, Entry[int, string]{4, "b4"}, Entry[int, string]{9, "b9"})
			require.NoError(t, a.MergeUnique(b))
			a.VerifyUnique()
			b.VerifyUnique()
			assert.Equal(t, []Entry[int, string]{{1, "b1"}, {3, "a3"}, {4, "b4"}, {5, "a5"}, {7, "a7"}, {9, "b9"}}, mapEntries(a))
			assert.Equal(t, []Entry[int, string]{{3, "b3"}}, mapEntries(b))
		})
	}
}

func TestMergeMultiOrder(t *testing.T) {
	for name, shared := range map[string]bool{"shared": true, "separate": false} {
		t.Run(name, func(t *testing.T) {
			var alloc Allocator[int, string]
			if shared {
				alloc = NewFreeList[int, string](DefaultFreeListSize)
			}
			a := newStringTree(alloc, Entry[int, string]{2, "a1"}, Entry[int, string]{2, "a2"}, Entry[int, string]{5, "a3"})
			b := newStringTree(alloc, Entry[int, string]{1, "b0"}, Entry[int, string]{2, "b1"}, Entry[int, string]{2, "b2"})
			require.NoError(t, a.MergeMulti(b))
			a.Verify()
			assert.True(t, b.Empty())
			assert.Equal(t, []Entry[int, string]{{1, "b0"}, {2, "a1"}, {2, "a2"}, {2, "b1"}, {2, "b2"}, {5, "a3"}}, mapEntries(a))

			c := newStringTree(alloc, Entry[int, string]{2, "c1"}, Entry[int, string]{9, "c2"})
			require.NoError(t, a.MergeMulti(c))
			a.Verify()
			assert.Equal(t, []Entry[int, string]{{1, "b0"}, {2, "a1"}, {2, "a2"}, {2, "b1"}, {2, "b2"}, {2, "c1"}, {5, "a3"}, {9, "c2"}}, mapEntries(a))
		})
	}
}

func TestMergeTrivial(t *testing.T) {
	fl := NewFreeList[int, string](DefaultFreeListSize)
	a := newStringTree(fl)
	b := newStringTree(fl, Entry[int, string]{1, "b1"}, Entry[int, string]{2, "b2"})
	require.NoError(t, a.MergeUnique(a))
	require.NoError(t, a.MergeUnique(newStringTree(fl)))
	assert.True(t, a.Empty())

	require.NoError(t, a.MergeUnique(b))
	assert.Equal(t, 2, a.Len())
	assert.True(t, b.Empty())
	a.VerifyUnique()
	b.VerifyUnique()
}

func TestMergeLarge(t *testing.T) {
	for _, shared := range []bool{true, false} {
		alloc := NewFreeList[int, int](DefaultFreeListSize)
		other := alloc
		if !shared {
			other = NewFreeList[int, int](DefaultFreeListSize)
		}
		a := New(OrderedComparator[int](), Options[int, int]{MaxValues: 4, Allocator: alloc})
		b := New(OrderedComparator[int](), Options[int, int]{MaxValues: 4, Allocator: other})
		for _, key := range perm(1000) {
			if key%3 != 0 {
				a.InsertUnique(key, 1)
			}
			if key%2 != 0 || 900 <= key {
				b.InsertUnique(key, 2)
			}
		}
		want := 0
		for key := 0; key < 1000; key++ {
			if key%3 != 0 || key%2 != 0 || 900 <= key {
				want++
			}
		}
		dups := b.Len() + a.Len() - want
		require.NoError(t, a.MergeUnique(b))
		a.VerifyUnique()
		b.VerifyUnique()
		assert.Equal(t, want, a.Len())
		assert.Equal(t, dups, b.Len())
		a.Ascend(func(key, value int) bool {
			if key%3 != 0 {
				assert.Equal(t, 1, value, "key %d", key)
			}
			return true
		})
		b.Ascend(func(key, value int) bool {
			assert.NotZero(t, key%3, "key %d left in donor", key)
			assert.Equal(t, 2, value)
			return true
		})
	}
}

// countingComparator orders ints and counts its calls in calls.
func countingComparator(calls *int) Comparator[int] {
	return CompareComparator(func(a, b int) int {
		*calls++
		return a - b
	})
}

func TestMergeDefaultOptions(t *testing.T) {
	const n = 10000
	var calls int
	cmp := countingComparator(&calls)
	fill := func(tr *Tree[int, int], from, to int) {
		for key := from; key < to; key++ {
			tr.InsertHintUnique(tr.End(), key, key)
		}
	}

	// An empty receiver takes over the nodes of the donor.
	a, b := New[int, int](cmp), New[int, int](cmp)
	fill(b, 0, n)
	calls = 0
	require.NoError(t, a.MergeUnique(b))
	assert.Zero(t, calls)
	assert.Equal(t, n, a.Len())
	assert.True(t, b.Empty())
	a.VerifyUnique()

	// A donor starting lower hands over its nodes and receives the
	// receiver's, which then append past its maximum.
	a, b = New[int, int](cmp), New[int, int](cmp)
	fill(a, n, 2*n)
	fill(b, 0, n)
	calls = 0
	require.NoError(t, a.MergeUnique(b))
	assert.Less(t, calls, 100)
	assert.Equal(t, rang(2*n), all(a))
	assert.True(t, b.Empty())
	a.VerifyUnique()
	b.VerifyUnique()

	// Without shared nodes an empty receiver still appends every value
	// without searching.
	a = New(cmp, Options[int, int]{MaxValues: 4})
	b = New(cmp, Options[int, int]{MaxValues: 8})
	fill(b, 0, n)
	calls = 0
	require.NoError(t, a.MergeMulti(b))
	assert.Zero(t, calls)
	assert.Equal(t, rang(n), all(a))
	assert.True(t, b.Empty())
	a.Verify()
}

func TestMergeAllocationFailure(t *testing.T) {
	resource := NewLimitedResource(1 << 30)
	alloc := NewResourceAllocator[int, int](resource, nil)
	opts := Options[int, int]{MaxValues: 3, Allocator: alloc}
	a, b := New(OrderedComparator[int](), opts), New(OrderedComparator[int](), opts)
	for _, key := range perm(200) {
		a.InsertUnique(2*key, 0)
		b.InsertUnique(2*key+1, 1)
	}
	resource.SetLimit(resource.InUse())

	err := a.MergeUnique(b)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrResourceExhausted))
	a.VerifyUnique()
	b.VerifyUnique()

	// Every value is in exactly one of the trees.
	got := append(all(a), all(b)...)
	slices.Sort(got)
	assert.Equal(t, rang(400), got)
	assert.LessOrEqual(t, resource.InUse(), 1<<30)
}
