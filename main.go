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

// Package main implements the diagnostics driver.  It loads a generated
// workload into a B-tree set, optionally merges a second set into it,
// verifies the result and reports the shape and memory use of the tree.
package main

import (
	"flag"

	"github.com/cockroachdb/errors"
	"github.com/golang/glog"

	"github.com/9rum/btree/btree"
	"github.com/9rum/btree/internal/data"
	"github.com/9rum/btree/internal/pool"
)

type config struct {
	n        int
	max      int
	seed     int64
	workload string
	erase    float64
	merge    int
	limit    int
	arena    int
	workers  int
	batch    int
}

func main() {
	var cfg config
	flag.IntVar(&cfg.n, "n", 100000, "The number of keys to insert")
	flag.IntVar(&cfg.max, "max", 0, "The number of values per node, derived from the node size if zero")
	flag.Int64Var(&cfg.seed, "seed", 1, "The seed of the workload generator")
	flag.StringVar(&cfg.workload, "workload", "random", "The insertion order: random, ascending or descending")
	flag.Float64Var(&cfg.erase, "erase", 0, "The probability of erasing a random key after each insertion")
	flag.IntVar(&cfg.merge, "merge", 0, "The number of random keys of a second set merged into the first")
	flag.IntVar(&cfg.limit, "limit", 0, "The number of bytes the nodes may take, unlimited if zero")
	flag.IntVar(&cfg.arena, "arena", 0, "The number of nodes per arena chunk, no arena if zero")
	flag.IntVar(&cfg.workers, "workers", 0, "The number of workers to pack an epoch of the loaded keys for, no packing if zero")
	flag.IntVar(&cfg.batch, "batch", 64, "The number of samples per packed step across all workers")
	flag.Parse()
	defer glog.Flush()

	if err := run(cfg); err != nil {
		glog.Fatalf("failed to run: %v", err)
	}
}

func run(cfg config) error {
	order, err := data.ParseOrder(cfg.workload)
	if err != nil {
		return err
	}
	opts := btree.Options[int, struct{}]{MaxValues: cfg.max}
	if 0 < cfg.arena {
		opts.Allocator = btree.NewArena[int, struct{}](cfg.arena)
	}
	var resource *btree.LimitedResource
	if 0 < cfg.limit {
		resource = btree.NewLimitedResource(cfg.limit)
		opts.Allocator = btree.NewResourceAllocator(resource, opts.Allocator)
	}

	gen := data.NewGenerator(cfg.seed)
	set := btree.NewOrderedSet(opts)
	for _, op := range gen.Workload(order, cfg.n, cfg.erase) {
		if op.Erase {
			set.Delete(op.Key)
			continue
		}
		if _, _, err := set.Insert(op.Key); err != nil {
			return errors.Wrapf(err, "insert %d after %d values", op.Key, set.Len())
		}
	}
	glog.Infof("loaded %d values in %s order", set.Len(), order)

	if 0 < cfg.merge {
		other := btree.NewOrderedSet(opts)
		if _, err := other.InsertAll(gen.Sample(cfg.merge, 2*cfg.n)...); err != nil {
			return errors.Wrap(err, "load merge donor")
		}
		donor := other.Len()
		if err := set.Merge(other); err != nil {
			return errors.Wrap(err, "merge")
		}
		glog.Infof("merged %d of %d donor values", donor-other.Len(), donor)
		other.Verify()
	}

	set.Verify()
	s := set.Stats()
	glog.Infof("size=%d height=%d nodes=%d (leaf=%d internal=%d) max values=%d",
		s.Size, s.Height, s.Nodes, s.LeafNodes, s.InternalNodes, set.Tree().MaxValues())
	glog.Infof("bytes used=%d average bytes per value=%.2f fullness=%.3f overhead=%.2f",
		s.BytesUsed, s.AverageBytesPerValue, s.Fullness, s.Overhead)
	if resource != nil {
		glog.Infof("memory resource: %d of %d bytes in use", resource.InUse(), cfg.limit)
	}

	if 0 < cfg.workers {
		return pack(set.Keys(), cfg)
	}
	return nil
}

// pack treats the loaded keys as sample sizes, deals them round-robin to the
// workers and reports the total size each worker receives in an epoch.
func pack(sizes []int, cfg config) error {
	partitions := make([][]int, cfg.workers)
	for i, size := range sizes {
		partitions[i%cfg.workers] = append(partitions[i%cfg.workers], size)
	}
	packer, err := pool.NewPacker(partitions, cfg.batch, cfg.seed)
	if err != nil {
		return errors.Wrap(err, "create packer")
	}
	defer packer.Close()

	matrix, err := packer.Next()
	if err != nil {
		return errors.Wrap(err, "pack epoch")
	}
	// Sample indices run sequentially across the partitions.
	var indexed []int
	for _, partition := range partitions {
		indexed = append(indexed, partition...)
	}
	for rank, indices := range matrix {
		total := 0
		for _, index := range indices {
			total += indexed[index]
		}
		glog.Infof("worker %d: %d samples of total size %d in %d steps", rank, len(indices), total, packer.Len())
	}
	return nil
}
