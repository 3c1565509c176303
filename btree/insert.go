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
	"golang.org/x/exp/slices"
)

// reservation holds the nodes an insertion may consume, obtained before the
// tree is modified so that a refused allocation cannot leave it half split.
type reservation[K, V any] struct {
	nodes []*node[K, V]
}

// take removes a reserved node of the given kind.
func (r *reservation[K, V]) take(leaf bool) *node[K, V] {
	for i, n := range r.nodes {
		if n.leaf == leaf {
			r.nodes = append(r.nodes[:i], r.nodes[i+1:]...)
			return n
		}
	}
	panic("btree: insertion consumed an unreserved node")
}

// reserve obtains every node an insertion into the leaf n may consume.  It
// follows the same decisions as rebalanceOrSplit: a full node whose sibling
// has room is relieved by rebalancing, otherwise it splits into a new node of
// its own kind, and a full root also needs a new internal root.
func (t *Tree[K, V]) reserve(n *node[K, V]) (r reservation[K, V], err error) {
	var kinds []bool
	for n.count() == t.maxValues {
		if n.isRoot() {
			kinds = append(kinds, n.leaf, false)
			break
		}
		parent := n.parent
		if 0 < n.position && parent.children[n.position-1].count() < t.maxValues {
			break
		}
		if n.position < parent.count() && parent.children[n.position+1].count() < t.maxValues {
			break
		}
		kinds = append(kinds, n.leaf)
		n = parent
	}
	for _, leaf := range kinds {
		var m *node[K, V]
		if m, err = t.alloc.allocate(leaf, t.maxValues); err != nil {
			t.cancel(&r)
			return
		}
		r.nodes = append(r.nodes, m)
	}
	return
}

// cancel returns the unused reserved nodes to the allocator.
func (t *Tree[K, V]) cancel(r *reservation[K, V]) {
	for _, n := range r.nodes {
		t.alloc.release(n)
	}
	r.nodes = nil
}

// InsertUnique adds key and value to the tree unless an equivalent key is
// already present.  It returns a cursor to the value with that key and
// whether the insertion took place.  If the allocator fails, the tree is
// unchanged and the error wraps ErrResourceExhausted.
func (t *Tree[K, V]) InsertUnique(key K, value V) (Cursor[K, V], bool, error) {
	if t.root == nil {
		c, err := t.insertAt(Cursor[K, V]{}, key, value)
		return c, err == nil, err
	}
	c, exact := t.searchUnique(key)
	if exact {
		return c, false, nil
	}
	c, err := t.insertAt(c, key, value)
	return c, err == nil, err
}

// InsertMulti adds key and value to the tree after every value with an
// equivalent key, and returns a cursor to the new value.
func (t *Tree[K, V]) InsertMulti(key K, value V) (Cursor[K, V], error) {
	if t.root == nil {
		return t.insertAt(Cursor[K, V]{}, key, value)
	}
	return t.insertAt(t.searchUpper(key), key, value)
}

// InsertHintUnique is InsertUnique with a hint: if key belongs immediately
// before hint (or at hint, when it is already there), no search is needed.
// A wrong hint costs nothing but the full search.
func (t *Tree[K, V]) InsertHintUnique(hint Cursor[K, V], key K, value V) (Cursor[K, V], bool, error) {
	if !t.Empty() {
		less := t.cmp.less
		if end := t.End(); hint == end || less(key, hint.Key()) {
			if hint == t.Begin() || less(hint.Prev().Key(), key) {
				c, err := t.insertAt(hint, key, value)
				return c, err == nil, err
			}
		} else if less(hint.Key(), key) {
			if next := hint.Next(); next == end || less(key, next.Key()) {
				c, err := t.insertAt(next, key, value)
				return c, err == nil, err
			}
		} else {
			return hint, false, nil
		}
	}
	return t.InsertUnique(key, value)
}

// InsertHintMulti is InsertMulti with a hint: if key belongs immediately
// before hint, it is inserted there without a search.
func (t *Tree[K, V]) InsertHintMulti(hint Cursor[K, V], key K, value V) (Cursor[K, V], error) {
	if !t.Empty() {
		less := t.cmp.less
		if end := t.End(); hint == end || !less(hint.Key(), key) {
			if hint == t.Begin() || !less(key, hint.Prev().Key()) {
				return t.insertAt(hint, key, value)
			}
		} else if next := hint.Next(); next == end || !less(next.Key(), key) {
			return t.insertAt(next, key, value)
		}
	}
	return t.InsertMulti(key, value)
}

// InsertUniqueEntries inserts every entry whose key is not yet present and
// returns the number inserted.  Sorted input is appended through End hints.
// It stops at the first allocation failure.
func (t *Tree[K, V]) InsertUniqueEntries(entries []Entry[K, V]) (n int, err error) {
	sorted := t.sorted(entries)
	for _, e := range entries {
		var inserted bool
		if sorted {
			_, inserted, err = t.InsertHintUnique(t.End(), e.Key, e.Value)
		} else {
			_, inserted, err = t.InsertUnique(e.Key, e.Value)
		}
		if err != nil {
			return
		}
		if inserted {
			n++
		}
	}
	return
}

// InsertMultiEntries inserts every entry and returns the number inserted.
// It stops at the first allocation failure.
func (t *Tree[K, V]) InsertMultiEntries(entries []Entry[K, V]) (n int, err error) {
	sorted := t.sorted(entries)
	for _, e := range entries {
		if sorted {
			_, err = t.InsertHintMulti(t.End(), e.Key, e.Value)
		} else {
			_, err = t.InsertMulti(e.Key, e.Value)
		}
		if err != nil {
			return
		}
		n++
	}
	return
}

func (t *Tree[K, V]) sorted(entries []Entry[K, V]) bool {
	return slices.IsSortedFunc(entries, func(a, b Entry[K, V]) int {
		return t.cmp.compare(a.Key, b.Key)
	})
}

// insertAt inserts key and value immediately before the position c, which
// may be any position of the tree including End, and returns a cursor to the
// new value.
func (t *Tree[K, V]) insertAt(c Cursor[K, V], key K, value V) (Cursor[K, V], error) {
	if t.root == nil {
		leaf, err := t.alloc.allocate(true, t.maxValues)
		if err != nil {
			return t.End(), err
		}
		t.root, t.leftmost, t.rightmost = leaf, leaf, leaf
		c = Cursor[K, V]{node: leaf}
	} else if !c.node.leaf {
		// Values are inserted into leaves: the position before an internal
		// value is the end of its left subtree.
		c.node = c.node.children[c.pos].rightmostLeaf()
		c.pos = c.node.count()
	}
	r, err := t.reserve(c.node)
	if err != nil {
		return t.End(), err
	}
	c.node.insertValue(c.pos, key, value)
	t.size++
	if c.node.count() > t.maxValues {
		c = t.rebalanceOrSplit(c, &r)
	}
	t.cancel(&r)
	return c, nil
}

// rebalanceOrSplit restores the capacity of c.node, which holds one value
// too many, by shifting values into a sibling with room or by splitting it,
// repeating on the parent as long as a split overflows it.  It returns the
// cursor to the value c pointed at.
func (t *Tree[K, V]) rebalanceOrSplit(c Cursor[K, V], r *reservation[K, V]) Cursor[K, V] {
	n, pos := c.node, c.pos
	for n.count() > t.maxValues {
		parent := n.parent
		if parent != nil {
			// Shift values to the left sibling, keeping the insertion point
			// on this node unless it was at the end.
			if 0 < n.position {
				left := parent.children[n.position-1]
				if free := t.maxValues - left.count(); 0 < free {
					toMove := free
					if pos < n.count()-1 {
						toMove = free / 2
					}
					if toMove < 1 {
						toMove = 1
					}
					count := left.count()
					left.rebalanceRightToLeft(toMove, n)
					if c.node == n {
						switch {
						case c.pos < toMove-1:
							c = Cursor[K, V]{node: left, pos: count + 1 + c.pos}
						case c.pos == toMove-1:
							c = Cursor[K, V]{node: parent, pos: n.position - 1}
						default:
							c.pos -= toMove
						}
					}
					return c
				}
			}
			// Shift values to the right sibling, keeping the insertion point
			// on this node unless it was at the front.
			if n.position < parent.count() {
				right := parent.children[n.position+1]
				if free := t.maxValues - right.count(); 0 < free {
					toMove := free
					if 0 < pos {
						toMove = free / 2
					}
					if toMove < 1 {
						toMove = 1
					}
					keep := n.count() - toMove
					n.rebalanceLeftToRight(toMove, right)
					if c.node == n {
						switch {
						case c.pos == keep:
							c = Cursor[K, V]{node: parent, pos: n.position}
						case keep < c.pos:
							c = Cursor[K, V]{node: right, pos: c.pos - keep - 1}
						}
					}
					return c
				}
			}
		} else {
			parent = r.take(false)
			parent.insertChild(0, n)
			t.root = parent
		}

		// Split, leaving the smaller half on the side the insertion came
		// from so that sequential insertions fill nodes.
		at := t.maxValues - t.minFill
		if pos == 0 {
			at = t.minFill
		}
		dest := r.take(n.leaf)
		n.split(at, dest)
		if n == t.rightmost {
			t.rightmost = dest
		}
		if c.node == n {
			switch {
			case c.pos == at:
				c = Cursor[K, V]{node: parent, pos: n.position}
			case at < c.pos:
				c = Cursor[K, V]{node: dest, pos: c.pos - at - 1}
			}
		}
		pos, n = n.position, parent
	}
	return c
}
