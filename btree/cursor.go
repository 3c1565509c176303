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

// Cursor is a position in a tree: either a value or the position one past
// the last value (End).  Cursors are plain values; copying one is cheap.
//
// A cursor is invalidated by any insertion into or erasure from its tree,
// except for the cursor returned by that operation.
type Cursor[K, V any] struct {
	node *node[K, V]
	pos  int
}

// Valid reports whether the cursor points at a value, i.e. is not End.
func (c Cursor[K, V]) Valid() bool {
	return c.node != nil && c.pos < c.node.count()
}

// Key returns the key at the cursor.  It panics if the cursor is End.
func (c Cursor[K, V]) Key() K {
	if !c.Valid() {
		precondition("dereference of end cursor")
	}
	return c.node.keys[c.pos]
}

// Value returns the value at the cursor.  It panics if the cursor is End.
func (c Cursor[K, V]) Value() V {
	if !c.Valid() {
		precondition("dereference of end cursor")
	}
	return c.node.values[c.pos]
}

// Entry returns the key and value at the cursor.
func (c Cursor[K, V]) Entry() Entry[K, V] {
	return Entry[K, V]{Key: c.Key(), Value: c.Value()}
}

// SetValue replaces the value at the cursor.  Keys cannot be changed in
// place since that could break the ordering.
func (c Cursor[K, V]) SetValue(value V) {
	if !c.Valid() {
		precondition("assignment through end cursor")
	}
	c.node.values[c.pos] = value
}

// Equal reports whether both cursors are at the same position.
func (c Cursor[K, V]) Equal(other Cursor[K, V]) bool {
	return c == other
}

// Next returns the cursor to the following value, or End.  It panics if c
// is End.
func (c Cursor[K, V]) Next() Cursor[K, V] {
	if !c.Valid() {
		precondition("advance past end")
	}
	c.increment()
	return c
}

// Prev returns the cursor to the preceding value.  It panics if c is the
// first position of its tree.
func (c Cursor[K, V]) Prev() Cursor[K, V] {
	if c.node == nil || !c.decrement() {
		precondition("retreat before begin")
	}
	return c
}

// increment moves the cursor forward by one value.
func (c *Cursor[K, V]) increment() {
	if !c.node.leaf {
		c.node = c.node.children[c.pos+1].leftmostLeaf()
		c.pos = 0
		return
	}
	if c.pos++; c.pos < c.node.count() {
		return
	}
	save := *c
	for c.pos == c.node.count() && !c.node.isRoot() {
		c.pos = c.node.position
		c.node = c.node.parent
	}
	if c.pos == c.node.count() {
		*c = save
	}
}

// decrement moves the cursor back by one value, reporting false if there is
// no preceding value.
func (c *Cursor[K, V]) decrement() bool {
	if !c.node.leaf {
		c.node = c.node.children[c.pos].rightmostLeaf()
		c.pos = c.node.count() - 1
		return true
	}
	if c.pos--; 0 <= c.pos {
		return true
	}
	for c.pos < 0 && !c.node.isRoot() {
		c.pos = c.node.position - 1
		c.node = c.node.parent
	}
	return 0 <= c.pos
}

// atBegin reports whether no value precedes the cursor.
func (c Cursor[K, V]) atBegin() bool {
	if c.node == nil {
		return true
	}
	if !c.node.leaf || 0 < c.pos {
		return false
	}
	for n := c.node; !n.isRoot(); n = n.parent {
		if 0 < n.position {
			return false
		}
	}
	return true
}

// ReverseCursor walks a tree from its last value to its first.  It wraps the
// cursor one past the value it yields, so RBegin wraps End and REnd wraps
// Begin.
type ReverseCursor[K, V any] struct {
	base Cursor[K, V]
}

// Base returns the wrapped forward cursor, which points one past the value
// the reverse cursor yields.
func (r ReverseCursor[K, V]) Base() Cursor[K, V] {
	return r.base
}

// Valid reports whether the cursor points at a value, i.e. is not REnd.
func (r ReverseCursor[K, V]) Valid() bool {
	return !r.base.atBegin()
}

// Key returns the key at the cursor.  It panics if the cursor is REnd.
func (r ReverseCursor[K, V]) Key() K {
	return r.base.Prev().Key()
}

// Value returns the value at the cursor.  It panics if the cursor is REnd.
func (r ReverseCursor[K, V]) Value() V {
	return r.base.Prev().Value()
}

// Next returns the reverse cursor to the preceding value.  It panics if r is
// REnd.
func (r ReverseCursor[K, V]) Next() ReverseCursor[K, V] {
	return ReverseCursor[K, V]{base: r.base.Prev()}
}

// Prev returns the reverse cursor to the following value.  It panics if r is
// RBegin.
func (r ReverseCursor[K, V]) Prev() ReverseCursor[K, V] {
	return ReverseCursor[K, V]{base: r.base.Next()}
}

// Equal reports whether both cursors are at the same position.
func (r ReverseCursor[K, V]) Equal(other ReverseCursor[K, V]) bool {
	return r.base == other.base
}
