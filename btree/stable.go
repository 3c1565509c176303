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

// stable wraps a tree holding unique keys with a generation counter that
// advances with every change routed through it.
type stable[K, V any] struct {
	tree       *Tree[K, V]
	generation uint64
}

// Generation returns the number of changes made through the wrapper.
func (s *stable[K, V]) Generation() uint64 { return s.generation }

// Len returns the number of values.
func (s *stable[K, V]) Len() int { return s.tree.Len() }

// Tree returns the underlying tree.  Changes made to it directly are not
// seen by the cursors of the wrapper.
func (s *stable[K, V]) Tree() *Tree[K, V] { return s.tree }

// stamp bookmarks the position c at the current generation.
func (s *stable[K, V]) stamp(c Cursor[K, V]) StableCursor[K, V] {
	sc := StableCursor[K, V]{owner: s, generation: s.generation, cursor: c}
	if c.Valid() {
		sc.key = c.node.keys[c.pos]
	} else {
		sc.end = true
	}
	return sc
}

// Begin returns a cursor to the first value.
func (s *stable[K, V]) Begin() StableCursor[K, V] { return s.stamp(s.tree.Begin()) }

// End returns the cursor one past the last value.
func (s *stable[K, V]) End() StableCursor[K, V] { return s.stamp(s.tree.End()) }

// Find returns a cursor to key, or End.
func (s *stable[K, V]) Find(key K) StableCursor[K, V] { return s.stamp(s.tree.Find(key)) }

// LowerBound returns a cursor to the first key not less than key.
func (s *stable[K, V]) LowerBound(key K) StableCursor[K, V] {
	return s.stamp(s.tree.LowerBound(key))
}

// UpperBound returns a cursor to the first key greater than key.
func (s *stable[K, V]) UpperBound(key K) StableCursor[K, V] {
	return s.stamp(s.tree.UpperBound(key))
}

// Contains reports whether key is present.
func (s *stable[K, V]) Contains(key K) bool { return s.tree.Contains(key) }

func (s *stable[K, V]) insert(key K, value V) (StableCursor[K, V], bool, error) {
	c, inserted, err := s.tree.InsertUnique(key, value)
	if err != nil {
		return s.End(), false, err
	}
	if inserted {
		s.generation++
	}
	return s.stamp(c), inserted, nil
}

// Erase removes the value at c and returns a cursor to the value that
// followed it.  It panics if c resolves to End.
func (s *stable[K, V]) Erase(c StableCursor[K, V]) StableCursor[K, V] {
	next := s.tree.Erase(c.resolve())
	s.generation++
	return s.stamp(next)
}

// Delete removes key and returns the number of values removed.
func (s *stable[K, V]) Delete(key K) int {
	n := s.tree.EraseUnique(key)
	s.generation += uint64(n)
	return n
}

// EraseRange removes the values in [first, last) and returns their number.
func (s *stable[K, V]) EraseRange(first, last StableCursor[K, V]) (int, StableCursor[K, V]) {
	n, next := s.tree.EraseRange(first.resolve(), last.resolve())
	s.generation += uint64(n)
	return n, s.stamp(next)
}

// Clear removes every value.
func (s *stable[K, V]) Clear() {
	s.generation += uint64(s.tree.Len())
	s.tree.Clear()
}

func (s *stable[K, V]) merge(other *stable[K, V]) error {
	if other.tree.Empty() {
		return nil
	}
	before := s.tree.Len()
	err := s.tree.MergeUnique(other.tree)
	// Merging may exchange the nodes of both trees even when no key moves.
	moved := uint64(s.tree.Len() - before)
	if moved == 0 {
		moved = 1
	}
	s.generation += moved
	other.generation += moved
	return err
}

// Verify panics if the underlying tree breaks a structural invariant.
func (s *stable[K, V]) Verify() { s.tree.VerifyUnique() }

// StableCursor is a cursor that survives changes to its container.  It
// bookmarks the key it points at; once the container has changed, it finds
// that key again, resolving to End if the key is gone.
type StableCursor[K, V any] struct {
	owner      *stable[K, V]
	generation uint64
	cursor     Cursor[K, V]
	key        K
	end        bool
}

// resolve returns the raw cursor for the bookmarked position in the current
// generation of the container.
func (c StableCursor[K, V]) resolve() Cursor[K, V] {
	s := c.owner
	if s == nil {
		return Cursor[K, V]{}
	}
	if c.generation == s.generation {
		return c.cursor
	}
	if c.end {
		return s.tree.End()
	}
	if at := s.tree.LowerBound(c.key); at.Valid() && !s.tree.cmp.less(c.key, at.node.keys[at.pos]) {
		return at
	}
	return s.tree.End()
}

// Refresh returns the cursor revalidated against the current generation.
func (c StableCursor[K, V]) Refresh() StableCursor[K, V] {
	if c.owner == nil || c.generation == c.owner.generation {
		return c
	}
	return c.owner.stamp(c.resolve())
}

// Valid reports whether the cursor resolves to a value.
func (c StableCursor[K, V]) Valid() bool { return c.resolve().Valid() }

// Key returns the key at the cursor.  It panics if the cursor resolves to
// End.
func (c StableCursor[K, V]) Key() K { return c.resolve().Key() }

// Value returns the value at the cursor.  It panics if the cursor resolves to
// End.
func (c StableCursor[K, V]) Value() V { return c.resolve().Value() }

// SetValue replaces the value at the cursor.
func (c StableCursor[K, V]) SetValue(value V) { c.resolve().SetValue(value) }

// Next returns the cursor to the following value.
func (c StableCursor[K, V]) Next() StableCursor[K, V] {
	return c.owner.stamp(c.resolve().Next())
}

// Prev returns the cursor to the preceding value.
func (c StableCursor[K, V]) Prev() StableCursor[K, V] {
	return c.owner.stamp(c.resolve().Prev())
}

// Equal reports whether both cursors resolve to the same position.
func (c StableCursor[K, V]) Equal(other StableCursor[K, V]) bool {
	return c.resolve() == other.resolve()
}

// StableSet is a Set whose cursors survive changes made through it.
// Equivalent keys are not supported: a bookmarked key could not tell them
// apart.
type StableSet[K any] struct {
	stable[K, struct{}]
}

// NewStableSet creates an empty stable set ordered by cmp.
func NewStableSet[K any](cmp Comparator[K], opts ...Options[K, struct{}]) *StableSet[K] {
	return &StableSet[K]{stable[K, struct{}]{tree: New[K, struct{}](cmp, opts...)}}
}

// Insert adds key unless it is already present.
func (s *StableSet[K]) Insert(key K) (StableCursor[K, struct{}], bool, error) {
	return s.insert(key, struct{}{})
}

// Merge moves the keys of other that s lacks into s.
func (s *StableSet[K]) Merge(other *StableSet[K]) error { return s.merge(&other.stable) }

// StableMap is a Map whose cursors survive changes made through it.
type StableMap[K, V any] struct {
	stable[K, V]
}

// NewStableMap creates an empty stable map ordered by cmp.
func NewStableMap[K, V any](cmp Comparator[K], opts ...Options[K, V]) *StableMap[K, V] {
	return &StableMap[K, V]{stable[K, V]{tree: New[K, V](cmp, opts...)}}
}

// Insert adds key and value unless key is already present.
func (m *StableMap[K, V]) Insert(key K, value V) (StableCursor[K, V], bool, error) {
	return m.insert(key, value)
}

// Get returns the value of key.
func (m *StableMap[K, V]) Get(key K) (V, bool) { return m.tree.Get(key) }

// Merge moves the entries of other whose keys m lacks into m.
func (m *StableMap[K, V]) Merge(other *StableMap[K, V]) error { return m.merge(&other.stable) }
