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

// Package pool organizes a collection of sized samples so that callers can
// repeatedly draw the sample whose size is nearest to a request.  Drawn
// samples wait in a recycle bin until the pool is reset, so every sample is
// drawn exactly once per round.
package pool

import (
	"math"

	"github.com/cockroachdb/errors"

	"github.com/9rum/btree/btree"
	"github.com/9rum/btree/internal/data"
)

// Sample represents a single sample in the pool.
type Sample struct {
	Index int
	Size  int
}

// Less orders samples by size, and samples of equal size by index.
func (s Sample) Less(than Sample) bool {
	if s.Size == than.Size {
		return s.Index < than.Index
	}
	return s.Size < than.Size
}

// Pool is a set of samples ordered by size.
type Pool struct {
	items      *btree.Set[Sample]
	recycleBin *btree.Set[Sample]
	gen        *data.Generator
}

// New creates a pool holding a sample of each given size, indexed from base.
// Random draws use a generator seeded with seed.
func New(sizes []int, base int, seed int64, opts ...btree.Options[Sample, struct{}]) (*Pool, error) {
	cmp := btree.ItemComparator[Sample]()
	// Both sets draw from the same allocator so that a reset can hand whole
	// trees from one to the other.
	var opt btree.Options[Sample, struct{}]
	if 0 < len(opts) {
		opt = opts[0]
	}
	if opt.Allocator == nil {
		opt.Allocator = btree.NewFreeList[Sample, struct{}](btree.DefaultFreeListSize)
	}
	p := &Pool{
		items:      btree.NewSet(cmp, opt),
		recycleBin: btree.NewSet(cmp, opt),
		gen:        data.NewGenerator(seed),
	}
	samples := make([]Sample, len(sizes))
	for index, size := range sizes {
		samples[index] = Sample{Index: base + index, Size: size}
	}
	if n, err := p.items.InsertAll(samples...); err != nil {
		p.Close()
		return nil, errors.Wrapf(err, "insert %d samples", len(samples))
	} else if n != len(samples) {
		p.Close()
		return nil, errors.Newf("%d duplicate samples", len(samples)-n)
	}
	return p, nil
}

// Partitions creates one pool per partition.  Indices run sequentially
// across partitions.
func Partitions(partitions [][]int, seed int64, opts ...btree.Options[Sample, struct{}]) ([]*Pool, error) {
	pools := make([]*Pool, 0, len(partitions))
	base := 0
	for rank, sizes := range partitions {
		p, err := New(sizes, base, seed+int64(rank), opts...)
		if err != nil {
			for _, p := range pools {
				p.Close()
			}
			return nil, errors.Wrapf(err, "partition %d", rank)
		}
		pools = append(pools, p)
		base += len(sizes)
	}
	return pools, nil
}

// Len returns the number of samples not yet drawn in this round.
func (p *Pool) Len() int {
	return p.items.Len()
}

// Take draws the smallest sample not smaller than size, or the largest
// sample if there is none.  It reports false if the pool is exhausted.
func (p *Pool) Take(size int) (Sample, bool, error) {
	item, _, ok := p.items.Tree().DeleteNearest(Sample{Index: math.MinInt, Size: size})
	if !ok {
		return Sample{}, false, nil
	}
	if _, _, err := p.recycleBin.Insert(item); err != nil {
		// Put the sample back so that it is not lost.
		if _, _, err := p.items.Insert(item); err != nil {
			return item, false, errors.Wrapf(err, "restore sample %d", item.Index)
		}
		return Sample{}, false, errors.Wrapf(err, "recycle sample %d", item.Index)
	}
	return item, true, nil
}

// Rand draws a sample nearest to a size chosen uniformly between the
// smallest and the largest size left.
func (p *Pool) Rand() (Sample, bool, error) {
	min, ok := p.items.Min()
	if !ok {
		return Sample{}, false, nil
	}
	max, _ := p.items.Max()
	return p.Take(min.Size + p.gen.Intn(max.Size-min.Size+1))
}

// Reset starts a new round: every drawn sample is returned to the pool.
func (p *Pool) Reset() error {
	if err := p.recycleBin.Merge(p.items); err != nil {
		return errors.Wrap(err, "reset pool")
	}
	p.items.Swap(p.recycleBin)
	return nil
}

// Close releases the samples of the pool.
func (p *Pool) Close() {
	p.items.Clear()
	p.recycleBin.Clear()
}
