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
	"testing"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenarioTree returns the tree built by inserting 5, 1, 3, 2, 4 with room
// for three values per node: a root [3] over leaves [1 2] and [4 5].
func scenarioTree() *Tree[int, int] {
	tr := newTree(3)
	for _, key := range []int{5, 1, 3, 2, 4} {
		tr.InsertUnique(key, key)
	}
	return tr
}

func requireAssertion(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "no assertion failure")
		err, ok := r.(error)
		require.True(t, ok, "panicked with %v", r)
		assert.True(t, errors.HasAssertionFailure(err), "%v", err)
	}()
	f()
}

func TestVerifyCorruption(t *testing.T) {
	for name, corrupt := range map[string]func(tr *Tree[int, int]){
		"order": func(tr *Tree[int, int]) {
			leaf := tr.leftmost
			leaf.keys[0], leaf.keys[1] = leaf.keys[1], leaf.keys[0]
		},
		"separator": func(tr *Tree[int, int]) {
			tr.root.keys[0] = 0
		},
		"size": func(tr *Tree[int, int]) {
			tr.size++
		},
		"parent": func(tr *Tree[int, int]) {
			tr.rightmost.parent = nil
		},
		"position": func(tr *Tree[int, int]) {
			tr.rightmost.position = 0
		},
		"leftmost": func(tr *Tree[int, int]) {
			tr.leftmost = tr.rightmost
		},
		"rightmost": func(tr *Tree[int, int]) {
			tr.rightmost = tr.leftmost
		},
		"underfull": func(tr *Tree[int, int]) {
			tr.rightmost.removeValue(1)
			tr.rightmost.removeValue(0)
			tr.size -= 2
		},
		"overfull": func(tr *Tree[int, int]) {
			tr.rightmost.insertValue(2, 6, 6)
			tr.rightmost.insertValue(3, 7, 7)
			tr.size += 2
		},
		"values": func(tr *Tree[int, int]) {
			tr.leftmost.values = tr.leftmost.values[:1]
		},
	} {
		t.Run(name, func(t *testing.T) {
			tr := scenarioTree()
			tr.VerifyUnique()
			corrupt(tr)
			requireAssertion(t, tr.Verify)
		})
	}
}

func TestVerifyUniqueness(t *testing.T) {
	tr := newTree(3)
	for _, key := range []int{1, 2, 2, 3, 3, 3} {
		tr.InsertMulti(key, key)
	}
	tr.Verify()
	requireAssertion(t, tr.VerifyUnique)

	empty := newTree(3)
	empty.VerifyUnique()
	empty.size = 1
	requireAssertion(t, empty.Verify)
}

func TestStats(t *testing.T) {
	s := newTree(3).Stats()
	assert.Zero(t, s.Nodes)
	assert.Zero(t, s.Fullness)
	assert.Zero(t, s.Overhead)

	tr := scenarioTree()
	s = tr.Stats()
	assert.Equal(t, 5, s.Size)
	assert.Equal(t, 2, s.Height)
	assert.Equal(t, 2, s.LeafNodes)
	assert.Equal(t, 1, s.InternalNodes)
	assert.Equal(t, 3, s.Nodes)
	assert.InDelta(t, 5.0/9.0, s.Fullness, 1e-9)
	assert.Equal(t, int(unsafe.Sizeof(*tr))+2*NodeBytes[int, int](true, 3)+NodeBytes[int, int](false, 3), s.BytesUsed)
	assert.Positive(t, s.Overhead)
	assert.Positive(t, s.AverageBytesPerValue)
}

func TestString(t *testing.T) {
	assert.Equal(t, "", newTree(3).String())
	assert.Equal(t, "NODE:[3]\n  NODE:[1 2]\n  NODE:[4 5]\n", scenarioTree().String())
}
