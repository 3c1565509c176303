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
	"golang.org/x/exp/constraints"
)

// base holds the operations every container shares.
type base[K, V any] struct {
	tree *Tree[K, V]
}

// Tree returns the underlying tree.
func (b base[K, V]) Tree() *Tree[K, V] { return b.tree }

// Len returns the number of values in the container.
func (b base[K, V]) Len() int { return b.tree.Len() }

// Empty reports whether the container holds no values.
func (b base[K, V]) Empty() bool { return b.tree.Empty() }

// Height returns the number of levels of the underlying tree.
func (b base[K, V]) Height() int { return b.tree.Height() }

// Begin returns a cursor to the first value.
func (b base[K, V]) Begin() Cursor[K, V] { return b.tree.Begin() }

// End returns the cursor one past the last value.
func (b base[K, V]) End() Cursor[K, V] { return b.tree.End() }

// RBegin returns a reverse cursor to the last value.
func (b base[K, V]) RBegin() ReverseCursor[K, V] { return b.tree.RBegin() }

// REnd returns the reverse cursor one before the first value.
func (b base[K, V]) REnd() ReverseCursor[K, V] { return b.tree.REnd() }

// LowerBound returns a cursor to the first key not less than key.
func (b base[K, V]) LowerBound(key K) Cursor[K, V] { return b.tree.LowerBound(key) }

// UpperBound returns a cursor to the first key greater than key.
func (b base[K, V]) UpperBound(key K) Cursor[K, V] { return b.tree.UpperBound(key) }

// EqualRange returns the range of keys equivalent to key.
func (b base[K, V]) EqualRange(key K) (Cursor[K, V], Cursor[K, V]) { return b.tree.EqualRange(key) }

// Find returns a cursor to the first key equivalent to key, or End.
func (b base[K, V]) Find(key K) Cursor[K, V] { return b.tree.Find(key) }

// Contains reports whether a key equivalent to key is present.
func (b base[K, V]) Contains(key K) bool { return b.tree.Contains(key) }

// Erase removes the value at c and returns the cursor following it.
func (b base[K, V]) Erase(c Cursor[K, V]) Cursor[K, V] { return b.tree.Erase(c) }

// EraseRange removes the values in [first, last).
func (b base[K, V]) EraseRange(first, last Cursor[K, V]) (int, Cursor[K, V]) {
	return b.tree.EraseRange(first, last)
}

// Clear removes every value.
func (b base[K, V]) Clear() { b.tree.Clear() }

// Stats reports the shape and memory use of the underlying tree.
func (b base[K, V]) Stats() Stats { return b.tree.Stats() }

// String dumps the underlying tree for debugging.
func (b base[K, V]) String() string { return b.tree.String() }

// keys collects the keys of a tree in order.
func keys[K, V any](t *Tree[K, V]) []K {
	out := make([]K, 0, t.Len())
	t.Ascend(func(key K, _ V) bool {
		out = append(out, key)
		return true
	})
	return out
}

// entries collects the entries of a tree in order.
func entries[K, V any](t *Tree[K, V]) []Entry[K, V] {
	out := make([]Entry[K, V], 0, t.Len())
	t.Ascend(func(key K, value V) bool {
		out = append(out, Entry[K, V]{Key: key, Value: value})
		return true
	})
	return out
}

func keyEntries[K any](ks []K) []Entry[K, struct{}] {
	out := make([]Entry[K, struct{}], len(ks))
	for i, k := range ks {
		out[i].Key = k
	}
	return out
}

// Set is an ordered collection of unique keys.
type Set[K any] struct {
	base[K, struct{}]
}

// NewSet creates an empty set ordered by cmp.
func NewSet[K any](cmp Comparator[K], opts ...Options[K, struct{}]) *Set[K] {
	return &Set[K]{base[K, struct{}]{New[K, struct{}](cmp, opts...)}}
}

// NewOrderedSet creates an empty set of keys ordered by <.
func NewOrderedSet[K constraints.Ordered](opts ...Options[K, struct{}]) *Set[K] {
	return NewSet(OrderedComparator[K](), opts...)
}

// Insert adds key unless it is already present.
func (s *Set[K]) Insert(key K) (Cursor[K, struct{}], bool, error) {
	return s.tree.InsertUnique(key, struct{}{})
}

// InsertHint adds key using hint as the expected position.
func (s *Set[K]) InsertHint(hint Cursor[K, struct{}], key K) (Cursor[K, struct{}], bool, error) {
	return s.tree.InsertHintUnique(hint, key, struct{}{})
}

// InsertAll adds every key not yet present and returns the number added.
func (s *Set[K]) InsertAll(ks ...K) (int, error) {
	return s.tree.InsertUniqueEntries(keyEntries(ks))
}

// Delete removes key and returns the number of keys removed.
func (s *Set[K]) Delete(key K) int { return s.tree.EraseUnique(key) }

// Count returns 1 if key is present and 0 otherwise.
func (s *Set[K]) Count(key K) int { return s.tree.CountUnique(key) }

// Min returns the smallest key.
func (s *Set[K]) Min() (K, bool) {
	k, _, ok := s.tree.Min()
	return k, ok
}

// Max returns the largest key.
func (s *Set[K]) Max() (K, bool) {
	k, _, ok := s.tree.Max()
	return k, ok
}

// Keys returns every key in order.
func (s *Set[K]) Keys() []K { return keys(s.tree) }

// Ascend calls iterator for every key in order until it returns false.
func (s *Set[K]) Ascend(iterator func(key K) bool) {
	s.tree.Ascend(func(key K, _ struct{}) bool { return iterator(key) })
}

// Descend calls iterator for every key in reverse order until it returns
// false.
func (s *Set[K]) Descend(iterator func(key K) bool) {
	s.tree.Descend(func(key K, _ struct{}) bool { return iterator(key) })
}

// Merge moves the keys of other that s lacks into s.
func (s *Set[K]) Merge(other *Set[K]) error { return s.tree.MergeUnique(other.tree) }

// Clone returns an independent copy of s.
func (s *Set[K]) Clone() (*Set[K], error) {
	t, err := s.tree.Clone()
	if err != nil {
		return nil, err
	}
	return &Set[K]{base[K, struct{}]{t}}, nil
}

// Swap exchanges the contents of s and other.
func (s *Set[K]) Swap(other *Set[K]) { s.tree.Swap(other.tree) }

// Verify panics if the set breaks a structural invariant.
func (s *Set[K]) Verify() { s.tree.VerifyUnique() }

// MultiSet is an ordered collection of keys that may repeat.
type MultiSet[K any] struct {
	base[K, struct{}]
}

// NewMultiSet creates an empty multiset ordered by cmp.
func NewMultiSet[K any](cmp Comparator[K], opts ...Options[K, struct{}]) *MultiSet[K] {
	return &MultiSet[K]{base[K, struct{}]{New[K, struct{}](cmp, opts...)}}
}

// Insert adds key after every equivalent key.
func (s *MultiSet[K]) Insert(key K) (Cursor[K, struct{}], error) {
	return s.tree.InsertMulti(key, struct{}{})
}

// InsertHint adds key using hint as the expected position.
func (s *MultiSet[K]) InsertHint(hint Cursor[K, struct{}], key K) (Cursor[K, struct{}], error) {
	return s.tree.InsertHintMulti(hint, key, struct{}{})
}

// InsertAll adds every key and returns the number added.
func (s *MultiSet[K]) InsertAll(ks ...K) (int, error) {
	return s.tree.InsertMultiEntries(keyEntries(ks))
}

// Delete removes every key equivalent to key and returns how many there
// were.
func (s *MultiSet[K]) Delete(key K) int { return s.tree.EraseMulti(key) }

// Count returns the number of keys equivalent to key.
func (s *MultiSet[K]) Count(key K) int { return s.tree.CountMulti(key) }

// Keys returns every key in order.
func (s *MultiSet[K]) Keys() []K { return keys(s.tree) }

// Merge moves every key of other into s.
func (s *MultiSet[K]) Merge(other *MultiSet[K]) error { return s.tree.MergeMulti(other.tree) }

// Clone returns an independent copy of s.
func (s *MultiSet[K]) Clone() (*MultiSet[K], error) {
	t, err := s.tree.Clone()
	if err != nil {
		return nil, err
	}
	return &MultiSet[K]{base[K, struct{}]{t}}, nil
}

// Swap exchanges the contents of s and other.
func (s *MultiSet[K]) Swap(other *MultiSet[K]) { s.tree.Swap(other.tree) }

// Verify panics if the multiset breaks a structural invariant.
func (s *MultiSet[K]) Verify() { s.tree.Verify() }

// Map is an ordered collection of values indexed by unique keys.
type Map[K, V any] struct {
	base[K, V]
}

// NewMap creates an empty map ordered by cmp.
func NewMap[K, V any](cmp Comparator[K], opts ...Options[K, V]) *Map[K, V] {
	return &Map[K, V]{base[K, V]{New[K, V](cmp, opts...)}}
}

// Insert adds key and value unless key is already present.
func (m *Map[K, V]) Insert(key K, value V) (Cursor[K, V], bool, error) {
	return m.tree.InsertUnique(key, value)
}

// InsertHint adds key and value using hint as the expected position.
func (m *Map[K, V]) InsertHint(hint Cursor[K, V], key K, value V) (Cursor[K, V], bool, error) {
	return m.tree.InsertHintUnique(hint, key, value)
}

// InsertAll adds every entry whose key is not yet present and returns the
// number added.
func (m *Map[K, V]) InsertAll(es ...Entry[K, V]) (int, error) {
	return m.tree.InsertUniqueEntries(es)
}

// Set maps key to value, replacing any value key had.
func (m *Map[K, V]) Set(key K, value V) error {
	c, inserted, err := m.tree.InsertUnique(key, value)
	if err == nil && !inserted {
		c.SetValue(value)
	}
	return err
}

// Get returns the value of key.
func (m *Map[K, V]) Get(key K) (V, bool) { return m.tree.Get(key) }

// Delete removes key and returns the number of entries removed.
func (m *Map[K, V]) Delete(key K) int { return m.tree.EraseUnique(key) }

// Count returns 1 if key is present and 0 otherwise.
func (m *Map[K, V]) Count(key K) int { return m.tree.CountUnique(key) }

// Entries returns every entry in key order.
func (m *Map[K, V]) Entries() []Entry[K, V] { return entries(m.tree) }

// Ascend calls iterator for every entry in order until it returns false.
func (m *Map[K, V]) Ascend(iterator Iterator[K, V]) { m.tree.Ascend(iterator) }

// Descend calls iterator for every entry in reverse order until it returns
// false.
func (m *Map[K, V]) Descend(iterator Iterator[K, V]) { m.tree.Descend(iterator) }

// Merge moves the entries of other whose keys m lacks into m.
func (m *Map[K, V]) Merge(other *Map[K, V]) error { return m.tree.MergeUnique(other.tree) }

// Clone returns an independent copy of m.
func (m *Map[K, V]) Clone() (*Map[K, V], error) {
	t, err := m.tree.Clone()
	if err != nil {
		return nil, err
	}
	return &Map[K, V]{base[K, V]{t}}, nil
}

// Swap exchanges the contents of m and other.
func (m *Map[K, V]) Swap(other *Map[K, V]) { m.tree.Swap(other.tree) }

// Verify panics if the map breaks a structural invariant.
func (m *Map[K, V]) Verify() { m.tree.VerifyUnique() }

// MultiMap is an ordered collection of values indexed by keys that may
// repeat.
type MultiMap[K, V any] struct {
	base[K, V]
}

// NewMultiMap creates an empty multimap ordered by cmp.
func NewMultiMap[K, V any](cmp Comparator[K], opts ...Options[K, V]) *MultiMap[K, V] {
	return &MultiMap[K, V]{base[K, V]{New[K, V](cmp, opts...)}}
}

// Insert adds key and value after every entry with an equivalent key.
func (m *MultiMap[K, V]) Insert(key K, value V) (Cursor[K, V], error) {
	return m.tree.InsertMulti(key, value)
}

// InsertHint adds key and value using hint as the expected position.
func (m *MultiMap[K, V]) InsertHint(hint Cursor[K, V], key K, value V) (Cursor[K, V], error) {
	return m.tree.InsertHintMulti(hint, key, value)
}

// InsertAll adds every entry and returns the number added.
func (m *MultiMap[K, V]) InsertAll(es ...Entry[K, V]) (int, error) {
	return m.tree.InsertMultiEntries(es)
}

// Delete removes every entry with a key equivalent to key and returns how
// many there were.
func (m *MultiMap[K, V]) Delete(key K) int { return m.tree.EraseMulti(key) }

// Count returns the number of entries with a key equivalent to key.
func (m *MultiMap[K, V]) Count(key K) int { return m.tree.CountMulti(key) }

// Entries returns every entry in key order.
func (m *MultiMap[K, V]) Entries() []Entry[K, V] { return entries(m.tree) }

// Ascend calls iterator for every entry in order until it returns false.
func (m *MultiMap[K, V]) Ascend(iterator Iterator[K, V]) { m.tree.Ascend(iterator) }

// Merge moves every entry of other into m.
func (m *MultiMap[K, V]) Merge(other *MultiMap[K, V]) error { return m.tree.MergeMulti(other.tree) }

// Clone returns an independent copy of m.
func (m *MultiMap[K, V]) Clone() (*MultiMap[K, V], error) {
	t, err := m.tree.Clone()
	if err != nil {
		return nil, err
	}
	return &MultiMap[K, V]{base[K, V]{t}}, nil
}

// Swap exchanges the contents of m and other.
func (m *MultiMap[K, V]) Swap(other *MultiMap[K, V]) { m.tree.Swap(other.tree) }

// Verify panics if the multimap breaks a structural invariant.
func (m *MultiMap[K, V]) Verify() { m.tree.Verify() }
