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
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type intItem int

func (a intItem) Less(b intItem) bool { return a < b }

func TestSearchers(t *testing.T) {
	keys := []int{1, 3, 3, 3, 5, 8, 8, 13}
	for name, cmp := range comparators() {
		for _, strategy := range []SearchStrategy{SearchBinary, SearchLinear} {
			s := cmp.searcher(strategy, len(keys))
			for n := 0; n <= len(keys); n++ {
				prefix := keys[:n]
				for key := 0; key <= 14; key++ {
					lower := sort.SearchInts(prefix, key)
					upper := sort.SearchInts(prefix, key+1)
					assert.Equal(t, lower, s.lower(prefix, key), "%s/%d lower(%v, %d)", name, strategy, prefix, key)
					assert.Equal(t, upper, s.upper(prefix, key), "%s/%d upper(%v, %d)", name, strategy, prefix, key)
					i, exact := s.lowerExact(prefix, key)
					assert.Equal(t, lower, i)
					assert.Equal(t, lower < upper, exact, "%s/%d lowerExact(%v, %d)", name, strategy, prefix, key)
				}
			}
		}
	}
}

func TestSearchAuto(t *testing.T) {
	ordered := OrderedComparator[int]()
	assert.True(t, ordered.integral)
	assert.False(t, OrderedComparator[string]().integral)
	assert.False(t, OrderedComparator[float64]().integral)
	assert.False(t, comparators()["less"].integral)

	keys := []int{2, 4, 6}
	// Picking a routine never changes the answer, only its cost.
	for _, maxValues := range []int{3, linearSearchMaxValues, linearSearchMaxValues + 1} {
		s := ordered.searcher(SearchAuto, maxValues)
		assert.Equal(t, 1, s.lower(keys, 3))
		assert.Equal(t, 2, s.upper(keys, 4))
	}
}

func TestComparators(t *testing.T) {
	for name, cmp := range comparators() {
		assert.True(t, cmp.Less(1, 2), name)
		assert.False(t, cmp.Less(2, 2), name)
		assert.Negative(t, cmp.Compare(1, 2), name)
		assert.Zero(t, cmp.Compare(2, 2), name)
		assert.Positive(t, cmp.Compare(3, 2), name)
	}
	assert.False(t, comparators()["less"].ThreeWay())
	assert.True(t, comparators()["compare"].ThreeWay())
	assert.Panics(t, func() { LessComparator[int](nil) })
	assert.Panics(t, func() { CompareComparator[int](nil) })
	assert.Panics(t, func() { New[int, int](Comparator[int]{}) })
}

func TestItemComparator(t *testing.T) {
	s := NewSet(ItemComparator[intItem](), Options[intItem, struct{}]{MaxValues: 3})
	for _, key := range perm(50) {
		_, inserted, err := s.Insert(intItem(key))
		require.NoError(t, err)
		require.True(t, inserted)
	}
	s.Verify()
	min, ok := s.Min()
	assert.True(t, ok)
	assert.Equal(t, intItem(0), min)
	assert.True(t, s.Contains(intItem(49)))
	assert.False(t, s.Contains(intItem(50)))
}

// The three-way search must settle on the leftmost of several equal keys.
func TestLowerExactLeftmost(t *testing.T) {
	var calls int
	cmp := CompareComparator(func(a, b int) int {
		calls++
		return a - b
	})
	keys := []int{7, 7, 7, 7, 7, 7, 7}
	i, exact := cmp.binary.lowerExact(keys, 7)
	assert.Equal(t, 0, i)
	assert.True(t, exact)
	assert.LessOrEqual(t, calls, 3)
}
