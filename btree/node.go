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

// slots stores the keys, values or children of a node.  Nodes allocate slots
// with one spare slot beyond their capacity, so none of these helpers
// reallocate in normal operation.
type slots[T any] []T

// insertAt inserts a value into the given index, pushing all subsequent values
// forward.
func (s *slots[T]) insertAt(index int, v T) {
	var zero T
	*s = append(*s, zero)
	if index < len(*s) {
		copy((*s)[index+1:], (*s)[index:])
	}
	(*s)[index] = v
}

// insertRange opens a run of m zero values at the given index, pushing all
// subsequent values forward.
func (s *slots[T]) insertRange(index, m int) {
	n := len(*s)
	if cap(*s) < n+m {
		grown := make(slots[T], n, n+m)
		copy(grown, *s)
		*s = grown
	}
	*s = (*s)[:n+m]
	copy((*s)[index+m:], (*s)[index:n])
	var zero T
	for i := index; i < index+m; i++ {
		(*s)[i] = zero
	}
}

// removeAt removes a value at a given index, pulling all subsequent values
// back.
func (s *slots[T]) removeAt(index int) T {
	v := (*s)[index]
	copy((*s)[index:], (*s)[index+1:])
	var zero T
	(*s)[len(*s)-1] = zero
	*s = (*s)[:len(*s)-1]
	return v
}

// removeRange removes the values in [i, j), pulling all subsequent values
// back.
func (s *slots[T]) removeRange(i, j int) {
	n := copy((*s)[i:], (*s)[j:])
	s.truncate(i + n)
}

// truncate truncates this instance at index so that it contains only the
// first index values. index must be less than or equal to length.
func (s *slots[T]) truncate(index int) {
	var toClear slots[T]
	*s, toClear = (*s)[:index], (*s)[index:]
	var zero T
	for i := 0; i < len(toClear); i++ {
		toClear[i] = zero
	}
}

// node is a single page of the tree.
//
// It must at all times maintain the invariant that either
//   - leaf and children == nil, or
//   - !leaf and len(children) == len(keys) + 1,
//
// and every key in children[i] orders before keys[i], which orders before
// every key in children[i+1].
type node[K, V any] struct {
	keys     slots[K]
	values   slots[V]
	children slots[*node[K, V]]

	// parent is the node whose children hold this node, or nil for the root.
	// It is an observation only: a node is owned by the children slot of its
	// parent (or by the tree, for the root), never by its children.
	parent *node[K, V]

	// position is the index of this node in parent.children.
	position int

	leaf bool
}

// newNode creates an empty node able to hold maxValues values plus one spare.
func newNode[K, V any](leaf bool, maxValues int) *node[K, V] {
	n := &node[K, V]{
		keys:   make(slots[K], 0, maxValues+1),
		values: make(slots[V], 0, maxValues+1),
		leaf:   leaf,
	}
	if !leaf {
		n.children = make(slots[*node[K, V]], 0, maxValues+2)
	}
	return n
}

// reset clears a node for reuse, dropping references to keys, values and
// children so they can be collected.
func (n *node[K, V]) reset() {
	n.keys.truncate(0)
	n.values.truncate(0)
	if !n.leaf {
		n.children.truncate(0)
	}
	n.parent = nil
	n.position = 0
}

func (n *node[K, V]) count() int {
	return len(n.keys)
}

func (n *node[K, V]) isLeaf() bool {
	return n.leaf
}

func (n *node[K, V]) isRoot() bool {
	return n.parent == nil
}

func (n *node[K, V]) key(i int) K {
	return n.keys[i]
}

func (n *node[K, V]) value(i int) V {
	return n.values[i]
}

func (n *node[K, V]) child(i int) *node[K, V] {
	return n.children[i]
}

// lowerBound returns the index of the first key not less than key, and
// whether that key is equal to key.
func (n *node[K, V]) lowerBound(key K, s *searcher[K]) (int, bool) {
	return s.lowerExact(n.keys, key)
}

// upperBound returns the index of the first key greater than key.
func (n *node[K, V]) upperBound(key K, s *searcher[K]) int {
	return s.upper(n.keys, key)
}

// reindex refreshes the parent links of the children from index i onwards.
func (n *node[K, V]) reindex(i int) {
	for ; i < len(n.children); i++ {
		n.children[i].parent = n
		n.children[i].position = i
	}
}

// leftmostLeaf returns the first leaf of the subtree rooted at n.
func (n *node[K, V]) leftmostLeaf() *node[K, V] {
	for !n.leaf {
		n = n.children[0]
	}
	return n
}

// rightmostLeaf returns the last leaf of the subtree rooted at n.
func (n *node[K, V]) rightmostLeaf() *node[K, V] {
	for !n.leaf {
		n = n.children[len(n.children)-1]
	}
	return n
}

// insertValue inserts a key/value pair at index i.  On internal nodes the
// caller is responsible for inserting the matching child.
func (n *node[K, V]) insertValue(i int, key K, value V) {
	n.keys.insertAt(i, key)
	n.values.insertAt(i, value)
}

// insertChild inserts c into the children at index i.
func (n *node[K, V]) insertChild(i int, c *node[K, V]) {
	n.children.insertAt(i, c)
	n.reindex(i)
}

// removeValue removes and returns the key/value pair at index i of a leaf.
func (n *node[K, V]) removeValue(i int) (K, V) {
	return n.keys.removeAt(i), n.values.removeAt(i)
}

// removeValueAndChild removes the key/value pair at index i together with
// the child to its right.
func (n *node[K, V]) removeValueAndChild(i int) {
	n.keys.removeAt(i)
	n.values.removeAt(i)
	n.children.removeAt(i + 1)
	n.reindex(i + 1)
}

// rebalanceRightToLeft moves toMove values from right, the next sibling of n,
// into n.  The delimiting value in the parent rotates through: it becomes the
// first moved value of n and the last moved value of right replaces it.
func (n *node[K, V]) rebalanceRightToLeft(toMove int, right *node[K, V]) {
	parent := n.parent
	// Move the delimiting value in the parent to the left node.
	n.keys = append(n.keys, parent.keys[n.position])
	n.values = append(n.values, parent.values[n.position])
	// Move the (toMove - 1) values from the right node to the left node.
	n.keys = append(n.keys, right.keys[:toMove-1]...)
	n.values = append(n.values, right.values[:toMove-1]...)
	// Move the new delimiting value to the parent from the right node.
	parent.keys[n.position] = right.keys[toMove-1]
	parent.values[n.position] = right.values[toMove-1]
	// Shift the values in the right node to their correct positions.
	right.keys.removeRange(0, toMove)
	right.values.removeRange(0, toMove)
	if !n.leaf {
		start := len(n.children)
		n.children = append(n.children, right.children[:toMove]...)
		right.children.removeRange(0, toMove)
		n.reindex(start)
		right.reindex(0)
	}
}

// rebalanceLeftToRight moves toMove values from n into right, the next
// sibling of n, rotating through the delimiting value in the parent.
func (n *node[K, V]) rebalanceLeftToRight(toMove int, right *node[K, V]) {
	parent := n.parent
	count := n.count()
	// Make room in the right node for the new values.
	right.keys.insertRange(0, toMove)
	right.values.insertRange(0, toMove)
	// Move the delimiting value in the parent to the right node.
	right.keys[toMove-1] = parent.keys[n.position]
	right.values[toMove-1] = parent.values[n.position]
	// Move the (toMove - 1) values from the left node to the right node.
	copy(right.keys[:toMove-1], n.keys[count-toMove+1:])
	copy(right.values[:toMove-1], n.values[count-toMove+1:])
	// Move the new delimiting value to the parent from the left node.
	parent.keys[n.position] = n.keys[count-toMove]
	parent.values[n.position] = n.values[count-toMove]
	n.keys.truncate(count - toMove)
	n.values.truncate(count - toMove)
	if !n.leaf {
		right.children.insertRange(0, toMove)
		copy(right.children[:toMove], n.children[count-toMove+1:])
		n.children.truncate(count - toMove + 1)
		right.reindex(0)
	}
}

// split keeps the first at values in n, promotes the value at index at into
// the parent and moves the remaining values (and their children) into dest,
// which becomes the next sibling of n.
func (n *node[K, V]) split(at int, dest *node[K, V]) {
	parent := n.parent
	dest.keys = append(dest.keys, n.keys[at+1:]...)
	dest.values = append(dest.values, n.values[at+1:]...)
	key, value := n.keys[at], n.values[at]
	n.keys.truncate(at)
	n.values.truncate(at)
	if !n.leaf {
		dest.children = append(dest.children, n.children[at+1:]...)
		n.children.truncate(at + 1)
		dest.reindex(0)
	}
	parent.insertValue(n.position, key, value)
	parent.insertChild(n.position+1, dest)
}

// merge moves the delimiting value from the parent and every value of src,
// the next sibling of n, into n.  src is left empty and detached from the
// parent.
func (n *node[K, V]) merge(src *node[K, V]) {
	parent := n.parent
	n.keys = append(n.keys, parent.keys[n.position])
	n.values = append(n.values, parent.values[n.position])
	n.keys = append(n.keys, src.keys...)
	n.values = append(n.values, src.values...)
	if !n.leaf {
		start := len(n.children)
		n.children = append(n.children, src.children...)
		n.reindex(start)
		src.children.truncate(0)
	}
	src.keys.truncate(0)
	src.values.truncate(0)
	parent.removeValueAndChild(n.position)
	src.parent = nil
}
