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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	s := NewOrderedSet[string](Options[string, struct{}]{MaxValues: 4})
	n, err := s.InsertAll("pear", "apple", "fig", "apple", "kiwi")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []string{"apple", "fig", "kiwi", "pear"}, s.Keys())
	assert.Equal(t, 1, s.Count("fig"))
	assert.Zero(t, s.Count("plum"))

	min, ok := s.Min()
	assert.True(t, ok)
	assert.Equal(t, "apple", min)
	max, ok := s.Max()
	assert.True(t, ok)
	assert.Equal(t, "pear", max)

	c, inserted, err := s.InsertHint(s.End(), "zucchini")
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, "zucchini", c.Key())
	_, inserted, _ = s.Insert("fig")
	assert.False(t, inserted)

	var desc []string
	s.Descend(func(key string) bool {
		desc = append(desc, key)
		return len(desc) < 2
	})
	assert.Equal(t, []string{"zucchini", "pear"}, desc)

	assert.Equal(t, 1, s.Delete("kiwi"))
	assert.Zero(t, s.Delete("kiwi"))
	s.Verify()

	clone, err := s.Clone()
	require.NoError(t, err)
	clone.Insert("lime")
	assert.Equal(t, 5, clone.Len())
	assert.Equal(t, 4, s.Len())
	assert.False(t, s.Contains("lime"))
}

func TestSetCaseInsensitive(t *testing.T) {
	s := NewSet(LessComparator(func(a, b string) bool {
		return strings.ToLower(a) < strings.ToLower(b)
	}), Options[string, struct{}]{MaxValues: 3})
	s.InsertAll("Go", "go", "GO", "rust")
	assert.Equal(t, []string{"Go", "rust"}, s.Keys())
	assert.True(t, s.Contains("gO"))
}

func TestSetMergeSwap(t *testing.T) {
	a, b := NewOrderedSet[int](), NewOrderedSet[int]()
	a.InsertAll(1, 3, 5)
	b.InsertAll(2, 3, 4)
	require.NoError(t, a.Merge(b))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, a.Keys())
	assert.Equal(t, []int{3}, b.Keys())

	a.Swap(b)
	assert.Equal(t, []int{3}, a.Keys())
	assert.Equal(t, 5, b.Len())
	a.Verify()
	b.Verify()
}

func TestMultiSet(t *testing.T) {
	s := NewMultiSet(OrderedComparator[int](), Options[int, struct{}]{MaxValues: 3})
	n, err := s.InsertAll(3, 1, 3, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []int{1, 2, 3, 3, 3}, s.Keys())
	assert.Equal(t, 3, s.Count(3))

	first, last := s.EqualRange(3)
	assert.Equal(t, 3, first.Key())
	assert.Equal(t, s.End(), last)

	_, err = s.InsertHint(s.Begin(), 0)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Delete(3))
	assert.Equal(t, []int{0, 1, 2}, s.Keys())

	other := NewMultiSet(OrderedComparator[int](), Options[int, struct{}]{MaxValues: 3})
	other.InsertAll(1, 1, 7)
	require.NoError(t, s.Merge(other))
	assert.True(t, other.Empty())
	assert.Equal(t, []int{0, 1, 1, 1, 2, 7}, s.Keys())
	s.Verify()

	clone, err := s.Clone()
	require.NoError(t, err)
	clone.Clear()
	assert.Equal(t, 6, s.Len())
}

func TestMap(t *testing.T) {
	m := NewMap[string, int](OrderedComparator[string](), Options[string, int]{MaxValues: 3})
	n, err := m.InsertAll(Entry[string, int]{"b", 2}, Entry[string, int]{"a", 1}, Entry[string, int]{"b", 20})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	value, ok := m.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, value)

	require.NoError(t, m.Set("b", 22))
	require.NoError(t, m.Set("c", 3))
	assert.Equal(t, []Entry[string, int]{{"a", 1}, {"b", 22}, {"c", 3}}, m.Entries())
	_, ok = m.Get("d")
	assert.False(t, ok)

	m.Find("a").SetValue(11)
	var sum int
	m.Ascend(func(_ string, value int) bool {
		sum += value
		return true
	})
	assert.Equal(t, 36, sum)

	var desc []string
	m.Descend(func(key string, _ int) bool {
		desc = append(desc, key)
		return true
	})
	assert.Equal(t, []string{"c", "b", "a"}, desc)

	other := NewMap[string, int](OrderedComparator[string](), Options[string, int]{MaxValues: 3})
	other.Set("a", -1)
	other.Set("z", 26)
	require.NoError(t, m.Merge(other))
	assert.Equal(t, 4, m.Len())
	assert.Equal(t, []Entry[string, int]{{"a", -1}}, other.Entries())
	assert.Equal(t, 1, m.Delete("z"))
	assert.Equal(t, 1, m.Count("a"))
	m.Verify()
}

func TestMultiMap(t *testing.T) {
	m := NewMultiMap[int, string](OrderedComparator[int](), Options[int, string]{MaxValues: 3})
	for i, word := range []string{"one", "uno", "two", "eins", "dos"} {
		key := 1
		if word == "two" || word == "dos" {
			key = 2
		}
		_, err := m.Insert(key, word)
		require.NoError(t, err, "insert %d", i)
	}
	assert.Equal(t, 3, m.Count(1))
	assert.Equal(t, []Entry[int, string]{{1, "one"}, {1, "uno"}, {1, "eins"}, {2, "two"}, {2, "dos"}}, m.Entries())

	// A hint at the first equivalent entry places the new entry before it.
	c, err := m.InsertHint(m.LowerBound(2), 2, "zwei")
	require.NoError(t, err)
	assert.Equal(t, "zwei", c.Value())
	assert.Equal(t, []string{"zwei", "two", "dos"}, mapValues(m, 2))

	n, err := m.InsertAll(Entry[int, string]{3, "three"}, Entry[int, string]{3, "tres"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	other := NewMultiMap[int, string](OrderedComparator[int](), Options[int, string]{MaxValues: 3})
	other.Insert(3, "drei")
	require.NoError(t, m.Merge(other))
	assert.Equal(t, []string{"three", "tres", "drei"}, mapValues(m, 3))

	assert.Equal(t, 3, m.Delete(1))
	assert.Equal(t, 6, m.Len())
	m.Verify()
}

func mapValues[K, V any](m *MultiMap[K, V], key K) (out []V) {
	first, last := m.EqualRange(key)
	for c := first; c != last; c = c.Next() {
		out = append(out, c.Value())
	}
	return
}
