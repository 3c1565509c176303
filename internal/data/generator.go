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

// Package data provides explicitly seeded generators of keys and operation
// streams for tests, benchmarks and the diagnostics driver.  Nothing in this
// package keeps process-wide random state.
package data

import (
	"math/rand"

	"github.com/cockroachdb/errors"
)

// Generator produces deterministic key sequences from its seed.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a new generator with the given seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Intn returns a random number in the range [0, n).
func (g *Generator) Intn(n int) int {
	return g.rng.Intn(n)
}

// Float64 returns a random number in the range [0.0, 1.0).
func (g *Generator) Float64() float64 {
	return g.rng.Float64()
}

// Perm returns a random permutation of the keys in the range [0, n).
func (g *Generator) Perm(n int) []int {
	return g.rng.Perm(n)
}

// Shuffle randomizes the order of n elements using the swap function.
func (g *Generator) Shuffle(n int, swap func(i, j int)) {
	g.rng.Shuffle(n, swap)
}

// Range returns the keys in the range [0, n) in ascending order.
func Range(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// RangeRev returns the keys in the range [0, n) in descending order.
func RangeRev(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = n - 1 - i
	}
	return out
}

// Sample returns n random keys in the range [0, max), possibly repeating.
func (g *Generator) Sample(n, max int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = g.rng.Intn(max)
	}
	return out
}

// Order is the order in which a workload inserts its keys.
type Order int

const (
	Random Order = iota
	Ascending
	Descending
)

// ParseOrder parses the name of an order.
func ParseOrder(name string) (Order, error) {
	switch name {
	case "random":
		return Random, nil
	case "ascending":
		return Ascending, nil
	case "descending":
		return Descending, nil
	}
	return Random, errors.Newf("unknown order %q", name)
}

func (o Order) String() string {
	switch o {
	case Ascending:
		return "ascending"
	case Descending:
		return "descending"
	default:
		return "random"
	}
}

// Op is a single step of a workload.
type Op struct {
	Erase bool
	Key   int
}

// Workload inserts the keys in the range [0, n) in the given order, and
// after each insertion erases a random earlier key with probability erase.
// Every erased key was inserted and not yet erased.
func (g *Generator) Workload(order Order, n int, erase float64) []Op {
	var keys []int
	switch order {
	case Ascending:
		keys = Range(n)
	case Descending:
		keys = RangeRev(n)
	default:
		keys = g.Perm(n)
	}
	ops := make([]Op, 0, n)
	live := make([]int, 0, n)
	for _, key := range keys {
		ops = append(ops, Op{Key: key})
		live = append(live, key)
		if 0 < erase && g.rng.Float64() < erase {
			i := g.rng.Intn(len(live))
			ops = append(ops, Op{Erase: true, Key: live[i]})
			live[i] = live[len(live)-1]
			live = live[:len(live)-1]
		}
	}
	return ops
}
