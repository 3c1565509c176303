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
	"github.com/golang/glog"
)

// compatible reports whether nodes of other can be adopted by t, i.e. both
// trees share node capacity and either share an allocator or each own a
// private free list, whose heap nodes may change hands.
func (t *Tree[K, V]) compatible(other *Tree[K, V]) bool {
	if t.maxValues != other.maxValues {
		return false
	}
	return t.alloc == other.alloc || t.private && other.private
}

// swapContents exchanges the values of two compatible trees.
func (t *Tree[K, V]) swapContents(other *Tree[K, V]) {
	t.root, other.root = other.root, t.root
	t.leftmost, other.leftmost = other.leftmost, t.leftmost
	t.rightmost, other.rightmost = other.rightmost, t.rightmost
	t.size, other.size = other.size, t.size
}

// MergeUnique moves every value of other whose key is not present in t into
// t.  Values whose key t already holds stay in other, and t keeps its own
// values for those keys.
//
// If the allocator fails, the values moved so far stay moved, every value is
// in exactly one of the trees, and the error wraps ErrResourceExhausted.
func (t *Tree[K, V]) MergeUnique(other *Tree[K, V]) error {
	return t.merge(other, true)
}

// MergeMulti moves every value of other into t.  Values of other follow the
// values of t with an equivalent key, in their order in other.
//
// If the allocator fails, the values moved so far stay moved, every value is
// in exactly one of the trees, and the error wraps ErrResourceExhausted.
func (t *Tree[K, V]) MergeMulti(other *Tree[K, V]) error {
	return t.merge(other, false)
}

func (t *Tree[K, V]) merge(other *Tree[K, V], unique bool) error {
	if t == other || other.Empty() {
		return nil
	}
	total := other.size
	compatible := t.compatible(other)
	if t.Empty() && compatible {
		t.swapContents(other)
		glog.V(2).Infof("btree: merged %d values by adoption", total)
		return nil
	}

	// Start from the tree with the smaller minimum so that more of the
	// donor lies beyond the receiver's maximum and can be appended.  t then
	// holds the donor's values, which must yield to the receiver's.
	swapped := false
	if compatible && !t.Empty() && t.cmp.less(other.leftmost.keys[0], t.leftmost.keys[0]) {
		t.swapContents(other)
		swapped = true
	}

	var (
		moved    int
		err      error
		consumed []bool
		prev     Cursor[K, V]
	)
	split := other.Begin()
	if !t.Empty() {
		split = other.UpperBound(t.rightmost.keys[t.rightmost.count()-1])
	}
	c := other.Begin()
	for ; c != split; c.increment() {
		key, value := c.node.keys[c.pos], c.node.values[c.pos]
		var (
			at       Cursor[K, V]
			inserted bool
		)
		switch {
		case unique:
			at, inserted, err = t.InsertUnique(key, value)
			if err == nil && !inserted && swapped {
				// The value in t came from the donor: trade places.
				at.node.keys[at.pos], c.node.keys[c.pos] = key, at.node.keys[at.pos]
				at.node.values[at.pos], c.node.values[c.pos] = value, at.node.values[at.pos]
			}
		case swapped:
			// Equivalent values of the receiver go first, in order.
			pos := t.last(t.searchLower(key))
			if prev.Valid() && !t.cmp.less(prev.node.keys[prev.pos], key) {
				pos = prev
				pos.increment()
			}
			at, err = t.insertAt(pos, key, value)
			inserted = err == nil
		default:
			at, err = t.InsertMulti(key, value)
			inserted = err == nil
		}
		if err != nil {
			break
		}
		prev = at
		consumed = append(consumed, inserted)
		if inserted {
			moved++
		}
	}

	// Everything beyond the receiver's maximum is appended in order.
	appended := 0
	if err == nil {
		for e := split; e.Valid(); e.increment() {
			if _, err = t.insertAt(t.End(), e.node.keys[e.pos], e.node.values[e.pos]); err != nil {
				break
			}
			appended++
		}
	}

	// Erase what moved, suffix first and then the prefix from its end, so
	// that the ordinals of the values still to be erased never shift.
	if appended == other.size-len(consumed) {
		other.EraseRange(split, other.End())
	} else {
		e := split
		for i := 0; i < appended; i++ {
			e = other.Erase(e)
		}
	}
	e := other.Begin()
	for i := 0; i < len(consumed); i++ {
		e.increment()
	}
	for i := len(consumed) - 1; 0 <= i; i-- {
		e.decrement()
		if consumed[i] {
			e = other.Erase(e)
		}
	}
	moved += appended

	glog.V(2).Infof("btree: merged %d values, %d left in donor", moved, other.size)
	return err
}
