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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStableSet(keys ...int) *StableSet[int] {
	s := NewStableSet(OrderedComparator[int](), Options[int, struct{}]{MaxValues: 3})
	for _, key := range keys {
		s.Insert(key)
	}
	return s
}

func stableKeys(s *StableSet[int]) (out []int) {
	for c := s.Begin(); c.Valid(); c = c.Next() {
		out = append(out, c.Key())
	}
	return
}

func TestStableScenario(t *testing.T) {
	s := newStableSet(5, 1, 3, 2, 4)
	c := s.Find(4)
	require.True(t, c.Valid())

	assert.Equal(t, 1, s.Delete(3))
	s.Verify()
	assert.Equal(t, []int{1, 2, 4, 5}, stableKeys(s))
	assert.True(t, c.Valid())
	assert.Equal(t, 4, c.Key())
	assert.Equal(t, 5, c.Next().Key())
	assert.Equal(t, 2, c.Prev().Key())
}

func TestStableErasedKey(t *testing.T) {
	s := newStableSet(rang(50)...)
	c := s.Find(20)
	s.Delete(20)
	assert.False(t, c.Valid())
	assert.True(t, c.Equal(s.End()))

	// The key coming back makes the cursor usable again.
	s.Insert(20)
	assert.True(t, c.Valid())
	assert.Equal(t, 20, c.Key())
}

func TestStableEnd(t *testing.T) {
	s := newStableSet(1, 2, 3)
	end := s.End()
	for key := 4; key < 40; key++ {
		s.Insert(key)
	}
	assert.False(t, end.Valid())
	assert.True(t, end.Equal(s.End()))
	assert.Equal(t, 39, end.Prev().Key())
}

func TestStableGeneration(t *testing.T) {
	s := newStableSet()
	assert.Equal(t, uint64(0), s.Generation())
	s.Insert(1)
	s.Insert(2)
	s.Insert(2)
	assert.Equal(t, uint64(2), s.Generation())
	assert.Equal(t, 0, s.Delete(7))
	assert.Equal(t, uint64(2), s.Generation())

	next := s.Erase(s.Begin())
	assert.Equal(t, uint64(3), s.Generation())
	assert.Equal(t, 2, next.Key())

	s.Clear()
	assert.Equal(t, uint64(4), s.Generation())
	assert.Equal(t, 0, s.Len())
}

func TestStableRefresh(t *testing.T) {
	s := newStableSet(rang(30)...)
	c := s.Find(10)
	for key := 30; key < 100; key++ {
		s.Insert(key)
	}
	r := c.Refresh()
	assert.Equal(t, s.Generation(), r.generation)
	assert.Equal(t, c.resolve(), r.cursor)
	assert.Equal(t, 10, r.Key())

	first, last := s.LowerBound(5), s.UpperBound(14)
	n, next := s.EraseRange(first, last)
	assert.Equal(t, 10, n)
	assert.Equal(t, 15, next.Key())
	assert.False(t, c.Valid())
	s.Verify()
}

func TestStableMerge(t *testing.T) {
	a, b := newStableSet(1, 3, 5), newStableSet(2, 3, 4)
	c := a.Find(5)
	d := b.Find(3)
	ga, gb := a.Generation(), b.Generation()
	require.NoError(t, a.Merge(b))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, stableKeys(a))
	assert.Equal(t, []int{3}, stableKeys(b))
	assert.Greater(t, a.Generation(), ga)
	assert.Greater(t, b.Generation(), gb)
	assert.Equal(t, 5, c.Key())
	assert.Equal(t, 3, d.Key())
	a.Verify()
	b.Verify()
}

func TestStableMap(t *testing.T) {
	m := NewStableMap[int, string](OrderedComparator[int](), Options[int, string]{MaxValues: 3})
	for key := 0; key < 20; key++ {
		_, inserted, err := m.Insert(key, "v")
		require.NoError(t, err)
		require.True(t, inserted)
	}
	c := m.Find(7)
	m.Delete(3)
	c.SetValue("seven")
	value, ok := m.Get(7)
	assert.True(t, ok)
	assert.Equal(t, "seven", value)
	assert.Equal(t, "seven", c.Value())

	other := NewStableMap[int, string](OrderedComparator[int](), Options[int, string]{MaxValues: 3})
	other.Insert(3, "three")
	other.Insert(7, "dup")
	require.NoError(t, m.Merge(other))
	assert.Equal(t, 20, m.Len())
	assert.Equal(t, 1, other.Len())
	value, _ = m.Get(7)
	assert.Equal(t, "seven", value)
	m.Verify()
}
