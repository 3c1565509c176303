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

// Erase removes the value at c and returns a cursor to the value that
// followed it.  It panics if c is End.  Erasure never allocates.
func (t *Tree[K, V]) Erase(c Cursor[K, V]) Cursor[K, V] {
	if !c.Valid() {
		precondition("erase at end")
	}
	internal := !c.node.leaf
	if internal {
		// Replace the value with its predecessor, which lives on a leaf, and
		// erase the predecessor from there instead.
		at := c
		c.decrement()
		at.node.keys[at.pos] = c.node.keys[c.pos]
		at.node.values[at.pos] = c.node.values[c.pos]
	}
	c.node.removeValue(c.pos)
	t.size--

	res := t.rebalanceAfterDelete(c)
	if internal && res.Valid() {
		res.increment()
	}
	return res
}

// EraseRange removes the values in [first, last) and returns the number
// removed and a cursor to the value that followed them.
func (t *Tree[K, V]) EraseRange(first, last Cursor[K, V]) (int, Cursor[K, V]) {
	count := t.distance(first, last)
	if count == t.size {
		t.Clear()
		return count, t.End()
	}
	for i := 0; i < count; i++ {
		first = t.Erase(first)
	}
	return count, first
}

// EraseUnique removes the value with a key equivalent to key, if any, and
// returns the number of values removed.
func (t *Tree[K, V]) EraseUnique(key K) int {
	c := t.Find(key)
	if !c.Valid() {
		return 0
	}
	t.Erase(c)
	return 1
}

// EraseMulti removes every value with a key equivalent to key and returns
// the number of values removed.
func (t *Tree[K, V]) EraseMulti(key K) int {
	count, _ := t.EraseRange(t.EqualRange(key))
	return count
}

// Delete removes the value with a key equivalent to key, returning its value
// and true if found.
func (t *Tree[K, V]) Delete(key K) (_ V, _ bool) {
	c := t.Find(key)
	if !c.Valid() {
		return
	}
	value := c.node.values[c.pos]
	t.Erase(c)
	return value, true
}

// rebalanceAfterDelete restores the minimum fill of the nodes from c.node
// upwards after a value was removed at c, and returns the cursor to the value
// now at that position.
func (t *Tree[K, V]) rebalanceAfterDelete(c Cursor[K, V]) Cursor[K, V] {
	res := c
	for first := true; ; first = false {
		if c.node == t.root {
			t.tryShrink()
			if t.Empty() {
				return t.End()
			}
			break
		}
		if t.minFill <= c.node.count() {
			break
		}
		merged := t.tryMergeOrRebalance(&c)
		// The value res points at may have moved to a sibling.
		if first {
			res = c
		}
		if !merged {
			break
		}
		c.pos = c.node.position
		c.node = c.node.parent
	}
	if res.pos == res.node.count() {
		res.pos--
		res.increment()
	}
	return res
}

// tryMergeOrRebalance brings c.node back to the minimum fill by merging it
// with a sibling or by taking values from one, and reports whether a merge
// happened (leaving the parent one value short).  The cursor follows the
// values of c.node.
func (t *Tree[K, V]) tryMergeOrRebalance(c *Cursor[K, V]) bool {
	n := c.node
	parent := n.parent
	if 0 < n.position {
		left := parent.children[n.position-1]
		if 1+left.count()+n.count() <= t.maxValues {
			c.pos += 1 + left.count()
			t.mergeNodes(left, n)
			c.node = left
			return true
		}
	}
	if n.position < parent.count() {
		right := parent.children[n.position+1]
		if 1+n.count()+right.count() <= t.maxValues {
			t.mergeNodes(n, right)
			return true
		}
		if t.minFill < right.count() {
			toMove := (right.count() - n.count()) / 2
			if toMove < 1 {
				toMove = 1
			}
			n.rebalanceRightToLeft(toMove, right)
			return false
		}
	}
	if 0 < n.position {
		left := parent.children[n.position-1]
		if t.minFill < left.count() {
			toMove := (left.count() - n.count()) / 2
			if toMove < 1 {
				toMove = 1
			}
			left.rebalanceLeftToRight(toMove, n)
			c.pos += toMove
		}
	}
	return false
}

// mergeNodes merges right, the next sibling of left, into left and releases
// right.
func (t *Tree[K, V]) mergeNodes(left, right *node[K, V]) {
	left.merge(right)
	if right == t.rightmost {
		t.rightmost = left
	}
	t.alloc.release(right)
}

// tryShrink removes an empty root, promoting its only child or emptying the
// tree.
func (t *Tree[K, V]) tryShrink() {
	root := t.root
	if 0 < root.count() {
		return
	}
	if root.leaf {
		t.root, t.leftmost, t.rightmost = nil, nil, nil
	} else {
		child := root.children[0]
		child.parent, child.position = nil, 0
		root.children.truncate(0)
		t.root = child
	}
	t.alloc.release(root)
}
