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
	"fmt"
	"io"
	"strings"
	"unsafe"
)

// Stats describes the shape and memory use of a tree.
type Stats struct {
	Size          int
	Height        int
	LeafNodes     int
	InternalNodes int
	Nodes         int

	// BytesUsed is the memory taken by the tree header and its nodes.
	BytesUsed int
	// AverageBytesPerValue is the expected memory per value of a tree
	// filled in random order.
	AverageBytesPerValue float64
	// Fullness is the fraction of value slots in use, 0 for an empty tree.
	Fullness float64
	// Overhead is the memory per value not taken by the value itself, 0 for
	// an empty tree.
	Overhead float64
}

// Stats walks the tree and reports its shape and memory use.
func (t *Tree[K, V]) Stats() (s Stats) {
	s.Size, s.Height = t.size, t.Height()
	if t.root != nil {
		t.root.countNodes(&s)
	}
	s.Nodes = s.LeafNodes + s.InternalNodes
	s.BytesUsed = int(unsafe.Sizeof(*t)) +
		s.LeafNodes*NodeBytes[K, V](true, t.maxValues) +
		s.InternalNodes*NodeBytes[K, V](false, t.maxValues)
	s.AverageBytesPerValue = float64(NodeBytes[K, V](true, t.maxValues)) / (float64(t.maxValues+t.minFill) / 2)
	if 0 < s.Size {
		var e Entry[K, V]
		s.Fullness = float64(s.Size) / float64(s.Nodes*t.maxValues)
		s.Overhead = float64(s.BytesUsed-s.Size*int(unsafe.Sizeof(e))) / float64(s.Size)
	}
	return
}

func (n *node[K, V]) countNodes(s *Stats) {
	if n.leaf {
		s.LeafNodes++
		return
	}
	s.InternalNodes++
	for _, c := range n.children {
		c.countNodes(s)
	}
}

// print writes the subtree rooted at n, one node per line, indented by
// level.
func (n *node[K, V]) print(w io.Writer, level int) {
	fmt.Fprintf(w, "%sNODE:%v\n", strings.Repeat("  ", level), []K(n.keys))
	for _, c := range n.children {
		c.print(w, level+1)
	}
}

// String dumps the keys of every node for debugging.
func (t *Tree[K, V]) String() string {
	var b strings.Builder
	if t.root != nil {
		t.root.print(&b, 0)
	}
	return b.String()
}
