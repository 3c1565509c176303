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

// Iterator allows callers of Ascend* and Descend* to iterate in-order over
// portions of the tree.  When this function returns false, iteration will
// stop and the associated Ascend* or Descend* function will immediately
// return.
type Iterator[K, V any] func(key K, value V) bool

// ascend calls iterator for every value from c onwards until stop reports
// true for a key or iterator returns false.
func (t *Tree[K, V]) ascend(c Cursor[K, V], stop func(K) bool, iterator Iterator[K, V]) {
	for ; c.Valid(); c.increment() {
		key := c.node.keys[c.pos]
		if stop != nil && stop(key) {
			return
		}
		if !iterator(key, c.node.values[c.pos]) {
			return
		}
	}
}

// descend calls iterator for every value before c, last first, until stop
// reports true for a key or iterator returns false.
func (t *Tree[K, V]) descend(c Cursor[K, V], stop func(K) bool, iterator Iterator[K, V]) {
	for c.node != nil && c.decrement() {
		key := c.node.keys[c.pos]
		if stop != nil && stop(key) {
			return
		}
		if !iterator(key, c.node.values[c.pos]) {
			return
		}
	}
}

// AscendRange calls the iterator for every value within the range
// [greaterOrEqual, lessThan), until iterator returns false.
func (t *Tree[K, V]) AscendRange(greaterOrEqual, lessThan K, iterator Iterator[K, V]) {
	t.ascend(t.LowerBound(greaterOrEqual), func(key K) bool {
		return !t.cmp.less(key, lessThan)
	}, iterator)
}

// AscendLessThan calls the iterator for every value within the range
// [first, pivot), until iterator returns false.
func (t *Tree[K, V]) AscendLessThan(pivot K, iterator Iterator[K, V]) {
	t.ascend(t.Begin(), func(key K) bool {
		return !t.cmp.less(key, pivot)
	}, iterator)
}

// AscendGreaterOrEqual calls the iterator for every value within the range
// [pivot, last], until iterator returns false.
func (t *Tree[K, V]) AscendGreaterOrEqual(pivot K, iterator Iterator[K, V]) {
	t.ascend(t.LowerBound(pivot), nil, iterator)
}

// Ascend calls the iterator for every value within the range
// [first, last], until iterator returns false.
func (t *Tree[K, V]) Ascend(iterator Iterator[K, V]) {
	t.ascend(t.Begin(), nil, iterator)
}

// DescendRange calls the iterator for every value within the range
// [lessOrEqual, greaterThan), until iterator returns false.
func (t *Tree[K, V]) DescendRange(lessOrEqual, greaterThan K, iterator Iterator[K, V]) {
	t.descend(t.UpperBound(lessOrEqual), func(key K) bool {
		return !t.cmp.less(greaterThan, key)
	}, iterator)
}

// DescendLessOrEqual calls the iterator for every value within the range
// [pivot, first], until iterator returns false.
func (t *Tree[K, V]) DescendLessOrEqual(pivot K, iterator Iterator[K, V]) {
	t.descend(t.UpperBound(pivot), nil, iterator)
}

// DescendGreaterThan calls the iterator for every value within the range
// [last, pivot), until iterator returns false.
func (t *Tree[K, V]) DescendGreaterThan(pivot K, iterator Iterator[K, V]) {
	t.descend(t.End(), func(key K) bool {
		return !t.cmp.less(pivot, key)
	}, iterator)
}

// Descend calls the iterator for every value within the range
// [last, first], until iterator returns false.
func (t *Tree[K, V]) Descend(iterator Iterator[K, V]) {
	t.descend(t.End(), nil, iterator)
}

// Min returns the smallest key in the tree and its value, or false if the
// tree is empty.
func (t *Tree[K, V]) Min() (_ K, _ V, _ bool) {
	if t.root == nil {
		return
	}
	return t.leftmost.keys[0], t.leftmost.values[0], true
}

// Max returns the largest key in the tree and its value, or false if the
// tree is empty.
func (t *Tree[K, V]) Max() (_ K, _ V, _ bool) {
	if t.root == nil {
		return
	}
	last := t.rightmost.count() - 1
	return t.rightmost.keys[last], t.rightmost.values[last], true
}

// DeleteMin removes the smallest key in the tree and returns it with its
// value, or false if the tree is empty.
func (t *Tree[K, V]) DeleteMin() (_ K, _ V, _ bool) {
	if t.root == nil {
		return
	}
	c := t.Begin()
	key, value := c.node.keys[0], c.node.values[0]
	t.Erase(c)
	return key, value, true
}

// DeleteMax removes the largest key in the tree and returns it with its
// value, or false if the tree is empty.
func (t *Tree[K, V]) DeleteMax() (_ K, _ V, _ bool) {
	if t.root == nil {
		return
	}
	c := t.End()
	c.pos--
	key, value := c.node.keys[c.pos], c.node.values[c.pos]
	t.Erase(c)
	return key, value, true
}

// DeleteNearest removes the first value whose key is not less than key, or
// the largest value if there is none, and returns it.
func (t *Tree[K, V]) DeleteNearest(key K) (_ K, _ V, _ bool) {
	if t.root == nil {
		return
	}
	c := t.LowerBound(key)
	if !c.Valid() {
		return t.DeleteMax()
	}
	k, v := c.node.keys[c.pos], c.node.values[c.pos]
	t.Erase(c)
	return k, v, true
}

// ReplaceOrInsert adds the given key and value to the tree.  If a value with
// an equivalent key is already present, it is replaced (key included) and the
// old key and value are returned with true.
func (t *Tree[K, V]) ReplaceOrInsert(key K, value V) (_ K, _ V, _ bool, err error) {
	c, inserted, err := t.InsertUnique(key, value)
	if err != nil || inserted {
		return
	}
	k, v := c.node.keys[c.pos], c.node.values[c.pos]
	c.node.keys[c.pos], c.node.values[c.pos] = key, value
	return k, v, true, nil
}
