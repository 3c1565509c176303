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

// Package btree implements in-memory B-trees with configurable node capacity.
//
// btree implements an in-memory B-tree for use as an ordered data structure.
// It is not meant for persistent storage solutions.
//
// It has a flatter structure than an equivalent red-black or other binary tree,
// which in some cases yields better memory usage and/or performance.
// Each node stores up to a fixed number of keys and values in contiguous
// slices, so values of basic numeric types are laid out without boxing.
//
// A Tree holds either unique or equivalent keys depending on the operations
// used on it: InsertUnique/EraseUnique and friends keep keys unique, while
// InsertMulti/EraseMulti allow equivalent keys, kept in insertion order.
// The Set, MultiSet, Map and MultiMap types fix that choice for the caller.
//
// Positions are exposed as Cursors.  Any insertion or erasure invalidates
// every cursor into the tree except the one it returns; StableSet and
// StableMap detect and recover from such invalidation.
//
// A Tree is not safe for concurrent mutation.  Concurrent readers are fine as
// long as nothing writes; see package guard for a single-writer guard.
package btree

import (
	"github.com/golang/glog"
)

// Entry is a key together with its mapped value.
type Entry[K, V any] struct {
	Key   K
	Value V
}

// Options configures a Tree.  The zero value is usable.
type Options[K, V any] struct {
	// MaxValues is the number of values a node holds at most.  It must be at
	// least 3.  If zero, it is derived from TargetNodeSize.
	MaxValues int

	// TargetNodeSize is the node size in bytes used to derive MaxValues.  If
	// zero, DefaultTargetNodeSize is used.
	TargetNodeSize int

	// Search selects the per-node search routine.
	Search SearchStrategy

	// Allocator supplies the nodes of the tree.  If nil, the tree creates its
	// own FreeList of DefaultFreeListSize nodes; trees built that way can
	// still exchange nodes when merged.
	Allocator Allocator[K, V]
}

// Tree is an implementation of a B-tree.
//
// Tree stores keys and values in an ordered structure, allowing easy
// insertion, removal, and iteration.
//
// Write operations are not safe for concurrent mutation by multiple
// goroutines, but Read operations are.
type Tree[K, V any] struct {
	root      *node[K, V]
	leftmost  *node[K, V]
	rightmost *node[K, V]
	size      int

	cmp       Comparator[K]
	search    searcher[K]
	maxValues int
	minFill   int
	alloc     Allocator[K, V]
	// private is set when alloc is the FreeList the tree created itself.
	private bool
}

// New creates a new B-tree ordered by cmp.
func New[K, V any](cmp Comparator[K], opts ...Options[K, V]) *Tree[K, V] {
	if !cmp.valid() {
		panic("bad comparator")
	}
	var opt Options[K, V]
	if 0 < len(opts) {
		opt = opts[0]
	}
	maxValues := opt.MaxValues
	if maxValues == 0 {
		target := opt.TargetNodeSize
		if target <= 0 {
			target = DefaultTargetNodeSize
		}
		maxValues = MaxValuesForNodeSize[K, V](target)
	}
	if maxValues < minMaxValues {
		panic("bad max values")
	}
	alloc, private := opt.Allocator, false
	if alloc == nil {
		alloc, private = NewFreeList[K, V](DefaultFreeListSize), true
	}
	return &Tree[K, V]{
		cmp:       cmp,
		search:    cmp.searcher(opt.Search, maxValues),
		maxValues: maxValues,
		minFill:   maxValues / 2,
		alloc:     alloc,
		private:   private,
	}
}

// Len returns the number of values currently in the tree.
func (t *Tree[K, V]) Len() int {
	return t.size
}

// Empty reports whether the tree holds no values.
func (t *Tree[K, V]) Empty() bool {
	return t.size == 0
}

// Height returns the number of levels of the tree, 0 for an empty tree.
func (t *Tree[K, V]) Height() (h int) {
	for n := t.root; n != nil; h++ {
		if n.leaf {
			return h + 1
		}
		n = n.children[0]
	}
	return
}

// MaxValues returns the node capacity of the tree.
func (t *Tree[K, V]) MaxValues() int {
	return t.maxValues
}

// Begin returns a cursor to the first value, or End if the tree is empty.
func (t *Tree[K, V]) Begin() Cursor[K, V] {
	return Cursor[K, V]{node: t.leftmost}
}

// End returns the cursor one past the last value.
func (t *Tree[K, V]) End() Cursor[K, V] {
	if t.rightmost == nil {
		return Cursor[K, V]{}
	}
	return Cursor[K, V]{node: t.rightmost, pos: t.rightmost.count()}
}

// RBegin returns a reverse cursor to the last value.
func (t *Tree[K, V]) RBegin() ReverseCursor[K, V] {
	return ReverseCursor[K, V]{base: t.End()}
}

// REnd returns the reverse cursor one before the first value.
func (t *Tree[K, V]) REnd() ReverseCursor[K, V] {
	return ReverseCursor[K, V]{base: t.Begin()}
}

// last converts a leaf position that may sit one past the end of its leaf
// into the position of the value that follows it, climbing to the ancestor
// holding that value.  Positions past the last value become End.
func (t *Tree[K, V]) last(c Cursor[K, V]) Cursor[K, V] {
	for c.node != nil && c.pos == c.node.count() {
		if c.node.isRoot() {
			return t.End()
		}
		c.pos = c.node.position
		c.node = c.node.parent
	}
	return c
}

// searchUnique descends towards key and stops at the first node holding an
// equal key.  Otherwise it returns the leaf position where key belongs.
func (t *Tree[K, V]) searchUnique(key K) (Cursor[K, V], bool) {
	n := t.root
	for {
		i, exact := n.lowerBound(key, &t.search)
		if exact || n.leaf {
			return Cursor[K, V]{node: n, pos: i}, exact
		}
		n = n.children[i]
	}
}

// searchLower returns the leaf position of the first key not less than key.
func (t *Tree[K, V]) searchLower(key K) Cursor[K, V] {
	n := t.root
	for {
		i := t.search.lower(n.keys, key)
		if n.leaf {
			return Cursor[K, V]{node: n, pos: i}
		}
		n = n.children[i]
	}
}

// searchUpper returns the leaf position of the first key greater than key.
func (t *Tree[K, V]) searchUpper(key K) Cursor[K, V] {
	n := t.root
	for {
		i := n.upperBound(key, &t.search)
		if n.leaf {
			return Cursor[K, V]{node: n, pos: i}
		}
		n = n.children[i]
	}
}

// LowerBound returns a cursor to the first value whose key is not less than
// key, or End.
func (t *Tree[K, V]) LowerBound(key K) Cursor[K, V] {
	if t.root == nil {
		return t.End()
	}
	return t.last(t.searchLower(key))
}

// UpperBound returns a cursor to the first value whose key is greater than
// key, or End.
func (t *Tree[K, V]) UpperBound(key K) Cursor[K, V] {
	if t.root == nil {
		return t.End()
	}
	return t.last(t.searchUpper(key))
}

// EqualRange returns the range [LowerBound(key), UpperBound(key)) of values
// whose key is equivalent to key.
func (t *Tree[K, V]) EqualRange(key K) (Cursor[K, V], Cursor[K, V]) {
	return t.LowerBound(key), t.UpperBound(key)
}

// Find returns a cursor to the first value whose key is equivalent to key,
// or End if there is none.
func (t *Tree[K, V]) Find(key K) Cursor[K, V] {
	c := t.LowerBound(key)
	if c.Valid() && !t.cmp.less(key, c.node.keys[c.pos]) {
		return c
	}
	return t.End()
}

// Get looks for the key in the tree, returning its value and true if found.
func (t *Tree[K, V]) Get(key K) (_ V, _ bool) {
	if c := t.Find(key); c.Valid() {
		return c.node.values[c.pos], true
	}
	return
}

// Contains returns true if the given key is in the tree.
func (t *Tree[K, V]) Contains(key K) bool {
	return t.Find(key).Valid()
}

// CountUnique returns 1 if key is in the tree and 0 otherwise.
func (t *Tree[K, V]) CountUnique(key K) int {
	if t.Contains(key) {
		return 1
	}
	return 0
}

// CountMulti returns the number of values whose key is equivalent to key.
func (t *Tree[K, V]) CountMulti(key K) int {
	return t.distance(t.EqualRange(key))
}

// distance returns the number of steps from first to last.
func (t *Tree[K, V]) distance(first, last Cursor[K, V]) (n int) {
	for ; first != last; n++ {
		first.increment()
	}
	return
}

// Clear removes all values from the tree and returns its nodes to the
// allocator.
func (t *Tree[K, V]) Clear() {
	if t.root == nil {
		return
	}
	glog.V(2).Infof("btree: clearing %d values in %d levels", t.size, t.Height())
	t.releaseSubtree(t.root)
	t.root, t.leftmost, t.rightmost, t.size = nil, nil, nil, 0
}

// releaseSubtree returns n and all of its descendants to the allocator.
func (t *Tree[K, V]) releaseSubtree(n *node[K, V]) {
	if !n.leaf {
		for _, c := range n.children {
			t.releaseSubtree(c)
		}
	}
	t.alloc.release(n)
}

// Swap exchanges the contents, ordering and configuration of t and other in
// constant time.  Cursors keep pointing at the same values, now owned by the
// other tree.
func (t *Tree[K, V]) Swap(other *Tree[K, V]) {
	*t, *other = *other, *t
}

// Clone returns a copy of the tree sharing its ordering and allocator.  The
// copy owns its own nodes, so the two trees can be modified independently.
// If the allocator fails, no copy is made and the error wraps
// ErrResourceExhausted.
func (t *Tree[K, V]) Clone() (*Tree[K, V], error) {
	out := *t
	out.root, out.leftmost, out.rightmost, out.size = nil, nil, nil, 0
	if t.root == nil {
		return &out, nil
	}
	root, err := out.copyNode(t.root)
	if err != nil {
		return nil, err
	}
	out.root = root
	out.leftmost = root.leftmostLeaf()
	out.rightmost = root.rightmostLeaf()
	out.size = t.size
	return &out, nil
}

func (t *Tree[K, V]) copyNode(src *node[K, V]) (*node[K, V], error) {
	n, err := t.alloc.allocate(src.leaf, t.maxValues)
	if err != nil {
		return nil, err
	}
	n.keys = append(n.keys, src.keys...)
	n.values = append(n.values, src.values...)
	if !src.leaf {
		for _, c := range src.children {
			child, err := t.copyNode(c)
			if err != nil {
				t.releaseSubtree(n)
				return nil, err
			}
			n.children = append(n.children, child)
		}
		n.reindex(0)
	}
	return n, nil
}
