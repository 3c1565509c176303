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

package pool

import (
	"math"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/golang/glog"

	"github.com/9rum/btree/btree"
	"github.com/9rum/btree/internal/data"
)

// Packer assembles mini-batches from one pool per worker, balancing the
// total sample size each worker receives in a step while limiting its peak.
type Packer struct {
	pools     []*Pool
	localSize int
	binSize   int
	steps     int
	gen       *data.Generator
}

// NewPacker creates a packer over the given partitions, one per worker.
// batchSize is the number of samples per step across all workers.
func NewPacker(partitions [][]int, batchSize int, seed int64, opts ...btree.Options[Sample, struct{}]) (*Packer, error) {
	worldSize := len(partitions)
	if worldSize == 0 || batchSize < worldSize {
		return nil, errors.Newf("cannot split batches of %d samples across %d workers", batchSize, worldSize)
	}
	pools, err := Partitions(partitions, seed, opts...)
	if err != nil {
		return nil, err
	}
	var total, count int
	for _, sizes := range partitions {
		for _, size := range sizes {
			total += size
		}
		count += len(sizes)
	}
	localSize := batchSize / worldSize
	binSize := 0
	if 0 < count {
		binSize = int(math.Round(float64(total) / float64(count) * float64(localSize)))
	}
	steps := count / batchSize
	if count%batchSize != 0 {
		steps++
	}
	glog.V(1).Infof("packing %d samples into %d steps of %d per worker, bin size %d", count, steps, localSize, binSize)
	return &Packer{
		pools:     pools,
		localSize: localSize,
		binSize:   binSize,
		steps:     steps,
		gen:       data.NewGenerator(seed),
	}, nil
}

// Len returns the number of steps in an epoch.
func (p *Packer) Len() int {
	return p.steps
}

// Schedule selects the samples of the next step, one row per worker.  Each
// worker's bin is filled in a first-fit-decreasing fashion: every draw asks
// its pool for the sample nearest to the room left in the bin.
func (p *Packer) Schedule() ([][]int, error) {
	bins := make([]int, len(p.pools))
	indices := make([][]int, 0, len(p.pools))
	for len(indices) < cap(indices) {
		indices = append(indices, make([]int, 0, p.localSize))
	}

	for rank, pool := range p.pools {
		for len(indices[rank]) < cap(indices[rank]) {
			sample, ok, err := pool.Take(p.binSize - bins[rank])
			if err != nil {
				return nil, errors.Wrapf(err, "worker %d", rank)
			}
			if !ok {
				break
			}
			indices[rank] = append(indices[rank], sample.Index)
			bins[rank] += sample.Size
		}
	}
	return indices, nil
}

// Next schedules a whole epoch and returns the sample indices of each worker
// in training order.  Full steps are shuffled; a trailing partial step stays
// last.  Every pool is reset afterwards for the next epoch.
func (p *Packer) Next() ([][]int, error) {
	steps := make([][][]int, 0, p.steps)
	for len(steps) < cap(steps) {
		step, err := p.Schedule()
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}

	shuffled := len(steps)
	if 0 < shuffled && len(steps[shuffled-1][0]) < p.localSize {
		shuffled--
	}
	p.gen.Shuffle(shuffled, func(i, j int) {
		steps[i], steps[j] = steps[j], steps[i]
	})

	for rank, pool := range p.pools {
		if err := pool.Reset(); err != nil {
			return nil, errors.Wrapf(err, "worker %d", rank)
		}
	}
	return transpose(steps, len(p.pools)), nil
}

// transpose converts a tensor of shape (steps, workers, local batch) into a
// matrix of shape (workers, samples).
func transpose(tensor [][][]int, worldSize int) [][]int {
	matrix := make([][]int, worldSize)

	var wg sync.WaitGroup
	for rank := range matrix {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			for _, step := range tensor {
				matrix[rank] = append(matrix[rank], step[rank]...)
			}
		}(rank)
	}
	wg.Wait()

	return matrix
}

// Close releases the samples of every pool.
func (p *Packer) Close() {
	for _, pool := range p.pools {
		pool.Close()
	}
	p.pools = nil
}
