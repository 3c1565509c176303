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
	"github.com/cockroachdb/errors"
)

// Verify checks the structure of a tree holding equivalent keys and panics
// with an assertion failure describing the first violation found.
func (t *Tree[K, V]) Verify() {
	t.verify(false)
}

// VerifyUnique is Verify for a tree that must not hold equivalent keys.
func (t *Tree[K, V]) VerifyUnique() {
	t.verify(true)
}

func (t *Tree[K, V]) verify(unique bool) {
	if t.root == nil {
		if t.size != 0 || t.leftmost != nil || t.rightmost != nil {
			panic(errors.AssertionFailedf("empty tree of size %d has leaves", t.size))
		}
		return
	}
	if !t.root.isRoot() {
		panic(errors.AssertionFailedf("root has a parent"))
	}
	if t.root.count() == 0 {
		panic(errors.AssertionFailedf("root of a tree of size %d is empty", t.size))
	}
	v := verifier[K, V]{t: t, unique: unique, depth: -1}
	if size := v.node(t.root, nil, nil, 0); size != t.size {
		panic(errors.AssertionFailedf("tree holds %d values but reports %d", size, t.size))
	}
	if t.leftmost != t.root.leftmostLeaf() {
		panic(errors.AssertionFailedf("leftmost is not the first leaf"))
	}
	if t.rightmost != t.root.rightmostLeaf() {
		panic(errors.AssertionFailedf("rightmost is not the last leaf"))
	}
}

type verifier[K, V any] struct {
	t      *Tree[K, V]
	unique bool
	depth  int
}

// ordered reports whether a may precede b.
func (v *verifier[K, V]) ordered(a, b K) bool {
	if v.unique {
		return v.t.cmp.less(a, b)
	}
	return !v.t.cmp.less(b, a)
}

// node checks the subtree rooted at n, whose keys must lie within lo and hi
// where given, and returns the number of values it holds.
func (v *verifier[K, V]) node(n *node[K, V], lo, hi *K, level int) int {
	count := n.count()
	if v.t.maxValues < count {
		panic(errors.AssertionFailedf("node at level %d holds %d values, more than %d", level, count, v.t.maxValues))
	}
	if !n.isRoot() && count < v.t.minFill {
		panic(errors.AssertionFailedf("node at level %d holds %d values, fewer than %d", level, count, v.t.minFill))
	}
	if len(n.values) != count {
		panic(errors.AssertionFailedf("node at level %d holds %d keys but %d values", level, count, len(n.values)))
	}
	for i := 1; i < count; i++ {
		if !v.ordered(n.keys[i-1], n.keys[i]) {
			panic(errors.AssertionFailedf("keys %v and %v out of order at level %d", n.keys[i-1], n.keys[i], level))
		}
	}
	if lo != nil && !v.ordered(*lo, n.keys[0]) {
		panic(errors.AssertionFailedf("key %v at level %d below its separator %v", n.keys[0], level, *lo))
	}
	if hi != nil && !v.ordered(n.keys[count-1], *hi) {
		panic(errors.AssertionFailedf("key %v at level %d above its separator %v", n.keys[count-1], level, *hi))
	}
	if n.leaf {
		if len(n.children) != 0 {
			panic(errors.AssertionFailedf("leaf at level %d has children", level))
		}
		if v.depth < 0 {
			v.depth = level
		} else if v.depth != level {
			panic(errors.AssertionFailedf("leaves at levels %d and %d", v.depth, level))
		}
		return count
	}
	if len(n.children) != count+1 {
		panic(errors.AssertionFailedf("internal node at level %d has %d values and %d children", level, count, len(n.children)))
	}
	size := count
	for i, c := range n.children {
		if c.parent != n || c.position != i {
			panic(errors.AssertionFailedf("child %d at level %d is linked to position %d of another node", i, level+1, c.position))
		}
		clo, chi := lo, hi
		if 0 < i {
			clo = &n.keys[i-1]
		}
		if i < count {
			chi = &n.keys[i]
		}
		size += v.node(c, clo, chi, level+1)
	}
	return size
}
