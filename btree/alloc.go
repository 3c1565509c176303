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
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/golang/glog"
)

const (
	// DefaultFreeListSize is the number of nodes kept by the free list a tree
	// creates when no allocator is configured.
	DefaultFreeListSize = 32

	// DefaultTargetNodeSize is the node size in bytes from which the node
	// capacity is derived when none is configured.
	DefaultTargetNodeSize = 256

	// minMaxValues is the smallest node capacity a tree accepts.
	minMaxValues = 3
)

// NodeBytes returns the number of bytes taken by a node holding up to
// maxValues keys of type K and values of type V, including its child slots
// when it is internal.
func NodeBytes[K, V any](leaf bool, maxValues int) int {
	var (
		k K
		v V
		n node[K, V]
	)
	size := int(unsafe.Sizeof(n)) + (maxValues+1)*(int(unsafe.Sizeof(k))+int(unsafe.Sizeof(v)))
	if !leaf {
		size += (maxValues + 2) * int(unsafe.Sizeof(&n))
	}
	return size
}

// MaxValuesForNodeSize returns the largest node capacity whose leaves fit in
// target bytes, but never less than 3.
func MaxValuesForNodeSize[K, V any](target int) int {
	var (
		k K
		v V
		n node[K, V]
	)
	per := int(unsafe.Sizeof(k)) + int(unsafe.Sizeof(v))
	if per == 0 {
		per = 1
	}
	maxValues := (target-int(unsafe.Sizeof(n)))/per - 1
	if maxValues < minMaxValues {
		return minMaxValues
	}
	return maxValues
}

// Allocator supplies and reclaims the nodes of a tree.  Every implementation
// follows the same contract: allocate hands out an empty node with room for
// maxValues values (or fails without side effects), and release takes back a
// node that no tree references any more.
type Allocator[K, V any] interface {
	allocate(leaf bool, maxValues int) (*node[K, V], error)
	release(n *node[K, V])
}

// capacity returns the node capacity a node was allocated with.
func capacity[K, V any](n *node[K, V]) int {
	return cap(n.keys) - 1
}

type heapAllocator[K, V any] struct{}

// HeapAllocator allocates every node from the Go heap and leaves released
// nodes to the garbage collector.
func HeapAllocator[K, V any]() Allocator[K, V] {
	return heapAllocator[K, V]{}
}

func (heapAllocator[K, V]) allocate(leaf bool, maxValues int) (*node[K, V], error) {
	return newNode[K, V](leaf, maxValues), nil
}

func (heapAllocator[K, V]) release(*node[K, V]) {}

// FreeList represents a free list of tree nodes. By default each tree has its
// own FreeList, but multiple trees can share the same FreeList.
// Two trees using the same freelist are safe for concurrent write access.
type FreeList[K, V any] struct {
	mu        sync.Mutex
	leaves    []*node[K, V]
	internals []*node[K, V]
}

// NewFreeList creates a new free list.
// size is the maximum number of leaf and of internal nodes kept.
func NewFreeList[K, V any](size int) *FreeList[K, V] {
	return &FreeList[K, V]{
		leaves:    make([]*node[K, V], 0, size),
		internals: make([]*node[K, V], 0, size),
	}
}

func (f *FreeList[K, V]) list(leaf bool) *[]*node[K, V] {
	if leaf {
		return &f.leaves
	}
	return &f.internals
}

func (f *FreeList[K, V]) allocate(leaf bool, maxValues int) (n *node[K, V], _ error) {
	f.mu.Lock()
	list := f.list(leaf)
	index := len(*list) - 1
	if index < 0 || capacity((*list)[index]) != maxValues {
		f.mu.Unlock()
		return newNode[K, V](leaf, maxValues), nil
	}
	n = (*list)[index]
	(*list)[index] = nil
	*list = (*list)[:index]
	f.mu.Unlock()
	return
}

// release adds the given node to the list, or discards it if the list is
// full.
func (f *FreeList[K, V]) release(n *node[K, V]) {
	n.reset()
	f.mu.Lock()
	if list := f.list(n.leaf); len(*list) < cap(*list) {
		*list = append(*list, n)
	}
	f.mu.Unlock()
}

// Len returns the number of nodes currently held by the free list.
func (f *FreeList[K, V]) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.leaves) + len(f.internals)
}

// Arena allocates nodes in chunks and recycles released nodes without
// returning them to the garbage collector until the arena itself is dropped.
// An arena serves a single node capacity, fixed by its first allocation;
// requests for other capacities fall back to the heap.  Arenas are not safe
// for concurrent use.
type Arena[K, V any] struct {
	chunk     int
	maxValues int
	leaves    []*node[K, V]
	internals []*node[K, V]
	chunks    int
}

// NewArena creates an arena that carves chunk nodes of each kind at a time.
func NewArena[K, V any](chunk int) *Arena[K, V] {
	if chunk <= 0 {
		panic("bad chunk size")
	}
	return &Arena[K, V]{chunk: chunk}
}

func (a *Arena[K, V]) allocate(leaf bool, maxValues int) (*node[K, V], error) {
	if a.maxValues == 0 {
		a.maxValues = maxValues
	}
	if a.maxValues != maxValues {
		return newNode[K, V](leaf, maxValues), nil
	}
	list := &a.leaves
	if !leaf {
		list = &a.internals
	}
	if len(*list) == 0 {
		a.grow(list, leaf)
	}
	index := len(*list) - 1
	n := (*list)[index]
	(*list)[index] = nil
	*list = (*list)[:index]
	return n, nil
}

// grow carves a new chunk of nodes whose slots share backing arrays.
func (a *Arena[K, V]) grow(list *[]*node[K, V], leaf bool) {
	width := a.maxValues + 1
	nodes := make([]node[K, V], a.chunk)
	keys := make(slots[K], a.chunk*width)
	values := make(slots[V], a.chunk*width)
	var children slots[*node[K, V]]
	if !leaf {
		children = make(slots[*node[K, V]], a.chunk*(width+1))
	}
	for i := range nodes {
		n := &nodes[i]
		n.leaf = leaf
		n.keys = keys[i*width : i*width : (i+1)*width]
		n.values = values[i*width : i*width : (i+1)*width]
		if !leaf {
			n.children = children[i*(width+1) : i*(width+1) : (i+1)*(width+1)]
		}
		*list = append(*list, n)
	}
	a.chunks++
}

func (a *Arena[K, V]) release(n *node[K, V]) {
	if capacity(n) != a.maxValues {
		return
	}
	n.reset()
	if n.leaf {
		a.leaves = append(a.leaves, n)
	} else {
		a.internals = append(a.internals, n)
	}
}

// Chunks returns the number of chunks carved so far.
func (a *Arena[K, V]) Chunks() int {
	return a.chunks
}

// MemoryResource is a source of memory measured in bytes, in the manner of a
// polymorphic memory resource: allocators charge it for every node they hand
// out and credit it for every node they take back.
type MemoryResource interface {
	// Allocate reserves bytes, or returns an error if it cannot.
	Allocate(bytes int) error
	// Deallocate returns bytes previously reserved with Allocate.
	Deallocate(bytes int)
}

type resourceAllocator[K, V any] struct {
	resource MemoryResource
	base     Allocator[K, V]
}

// NewResourceAllocator returns an allocator that charges every node to the
// given memory resource before obtaining it from base.  A nil base allocates
// from the heap.
func NewResourceAllocator[K, V any](resource MemoryResource, base Allocator[K, V]) Allocator[K, V] {
	if base == nil {
		base = HeapAllocator[K, V]()
	}
	return &resourceAllocator[K, V]{resource: resource, base: base}
}

func (r *resourceAllocator[K, V]) allocate(leaf bool, maxValues int) (*node[K, V], error) {
	bytes := NodeBytes[K, V](leaf, maxValues)
	if err := r.resource.Allocate(bytes); err != nil {
		glog.Warningf("memory resource refused a %d-byte node: %v", bytes, err)
		return nil, errors.Mark(errors.Wrapf(err, "allocate %d-byte node", bytes), ErrResourceExhausted)
	}
	n, err := r.base.allocate(leaf, maxValues)
	if err != nil {
		r.resource.Deallocate(bytes)
		return nil, err
	}
	return n, nil
}

func (r *resourceAllocator[K, V]) release(n *node[K, V]) {
	r.resource.Deallocate(NodeBytes[K, V](n.leaf, capacity(n)))
	r.base.release(n)
}

// LimitedResource is a MemoryResource that refuses to hand out more than a
// fixed number of bytes at a time.  It is safe for concurrent use.
type LimitedResource struct {
	limit atomic.Int64
	used  atomic.Int64
}

// NewLimitedResource creates a resource of limit bytes.
func NewLimitedResource(limit int) *LimitedResource {
	r := &LimitedResource{}
	r.limit.Store(int64(limit))
	return r
}

// Allocate reserves bytes if the limit allows it.
func (r *LimitedResource) Allocate(bytes int) error {
	for {
		used, limit := r.used.Load(), r.limit.Load()
		if limit < used+int64(bytes) {
			return errors.Wrapf(ErrResourceExhausted, "%d of %d bytes in use, %d requested", used, limit, bytes)
		}
		if r.used.CompareAndSwap(used, used+int64(bytes)) {
			return nil
		}
	}
}

// Deallocate returns bytes to the resource.
func (r *LimitedResource) Deallocate(bytes int) {
	r.used.Add(-int64(bytes))
}

// InUse returns the number of bytes currently reserved.
func (r *LimitedResource) InUse() int {
	return int(r.used.Load())
}

// SetLimit changes the number of bytes the resource may hand out.
func (r *LimitedResource) SetLimit(limit int) {
	r.limit.Store(int64(limit))
}
