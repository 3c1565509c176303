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
	"reflect"
	"sort"

	"golang.org/x/exp/constraints"
)

// SearchStrategy selects how the sorted slots of a node are searched.
type SearchStrategy int

const (
	// SearchAuto uses linear search for integer keys ordered by
	// OrderedComparator in nodes of up to linearSearchMaxValues slots, and
	// binary search otherwise.
	SearchAuto SearchStrategy = iota
	// SearchBinary always uses binary search.
	SearchBinary
	// SearchLinear always uses linear search.
	SearchLinear
)

// linearSearchMaxValues bounds the node capacity for which SearchAuto picks
// linear search.
const linearSearchMaxValues = 64

// searcher holds the search routines over a node's sorted keys.  It is built
// once per tree so that the comparator shape is never inspected on the hot
// path.
type searcher[K any] struct {
	// lower returns the index of the first key not less than key.
	lower func(keys []K, key K) int
	// lowerExact is lower plus whether the key at that index equals key.
	lowerExact func(keys []K, key K) (int, bool)
	// upper returns the index of the first key greater than key.
	upper func(keys []K, key K) int
}

// Comparator orders the keys of a tree.  It is either a boolean "less"
// predicate or a three-way "compare" function; both must describe a strict
// weak ordering.  Build one with LessComparator, CompareComparator,
// OrderedComparator or ItemComparator.
type Comparator[K any] struct {
	less     func(a, b K) bool
	compare  func(a, b K) int
	threeWay bool
	integral bool
	binary   searcher[K]
	linear   searcher[K]
}

// LessComparator adapts a boolean less-than predicate.
//
// If !less(a, b) && !less(b, a), we treat this to mean a == b.
func LessComparator[K any](less func(a, b K) bool) Comparator[K] {
	if less == nil {
		panic("nil less function")
	}
	return Comparator[K]{
		less: less,
		compare: func(a, b K) int {
			switch {
			case less(a, b):
				return -1
			case less(b, a):
				return 1
			}
			return 0
		},
		binary: searcher[K]{
			lower: func(keys []K, key K) int {
				return sort.Search(len(keys), func(i int) bool {
					return !less(keys[i], key)
				})
			},
			lowerExact: func(keys []K, key K) (int, bool) {
				i := sort.Search(len(keys), func(i int) bool {
					return !less(keys[i], key)
				})
				return i, i < len(keys) && !less(key, keys[i])
			},
			upper: func(keys []K, key K) int {
				return sort.Search(len(keys), func(i int) bool {
					return less(key, keys[i])
				})
			},
		},
		linear: searcher[K]{
			lower: func(keys []K, key K) int {
				for i := range keys {
					if !less(keys[i], key) {
						return i
					}
				}
				return len(keys)
			},
			lowerExact: func(keys []K, key K) (int, bool) {
				for i := range keys {
					if !less(keys[i], key) {
						return i, !less(key, keys[i])
					}
				}
				return len(keys), false
			},
			upper: func(keys []K, key K) int {
				for i := range keys {
					if less(key, keys[i]) {
						return i
					}
				}
				return len(keys)
			},
		},
	}
}

// CompareComparator adapts a three-way comparison returning a negative
// number, zero or a positive number when a is less than, equal to or greater
// than b.  Searches record an exact match from the same comparison that
// positions them, halving the comparator calls of a lookup.
func CompareComparator[K any](compare func(a, b K) int) Comparator[K] {
	if compare == nil {
		panic("nil compare function")
	}
	// lowerExact keeps the leftmost slot that compared equal: once a slot
	// matches, the search only narrows towards lower indices.
	lowerExact := func(keys []K, key K) (int, bool) {
		lo, hi, exact := 0, len(keys), false
		for lo < hi {
			mid := int(uint(lo+hi) >> 1)
			if c := compare(keys[mid], key); c < 0 {
				lo = mid + 1
			} else {
				hi = mid
				if c == 0 {
					exact = true
				}
			}
		}
		return lo, exact
	}
	return Comparator[K]{
		less: func(a, b K) bool {
			return compare(a, b) < 0
		},
		compare:  compare,
		threeWay: true,
		binary: searcher[K]{
			lower: func(keys []K, key K) int {
				i, _ := lowerExact(keys, key)
				return i
			},
			lowerExact: lowerExact,
			upper: func(keys []K, key K) int {
				return sort.Search(len(keys), func(i int) bool {
					return 0 < compare(keys[i], key)
				})
			},
		},
		linear: searcher[K]{
			lower: func(keys []K, key K) int {
				for i := range keys {
					if 0 <= compare(keys[i], key) {
						return i
					}
				}
				return len(keys)
			},
			lowerExact: func(keys []K, key K) (int, bool) {
				for i := range keys {
					if c := compare(keys[i], key); 0 <= c {
						return i, c == 0
					}
				}
				return len(keys), false
			},
			upper: func(keys []K, key K) int {
				for i := range keys {
					if 0 < compare(keys[i], key) {
						return i
					}
				}
				return len(keys)
			},
		},
	}
}

// OrderedComparator orders keys with the built-in < operator.  The search
// routines are instantiated for K directly, so no comparator function is
// called while searching a node.  NaN float keys are not supported.
func OrderedComparator[K constraints.Ordered]() Comparator[K] {
	var zero K
	return Comparator[K]{
		less:     lessOrdered[K],
		compare:  compareOrdered[K],
		threeWay: true,
		integral: isIntegral(reflect.TypeOf(zero)),
		binary: searcher[K]{
			lower:      lowerOrdered[K],
			lowerExact: lowerExactOrdered[K],
			upper:      upperOrdered[K],
		},
		linear: searcher[K]{
			lower: func(keys []K, key K) int {
				for i := range keys {
					if key <= keys[i] {
						return i
					}
				}
				return len(keys)
			},
			lowerExact: func(keys []K, key K) (int, bool) {
				for i := range keys {
					if key <= keys[i] {
						return i, key == keys[i]
					}
				}
				return len(keys), false
			},
			upper: func(keys []K, key K) int {
				for i := range keys {
					if key < keys[i] {
						return i
					}
				}
				return len(keys)
			},
		},
	}
}

func lessOrdered[K constraints.Ordered](a, b K) bool {
	return a < b
}

func compareOrdered[K constraints.Ordered](a, b K) int {
	switch {
	case a < b:
		return -1
	case b < a:
		return 1
	}
	return 0
}

func lowerOrdered[K constraints.Ordered](keys []K, key K) int {
	lo, hi := 0, len(keys)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if keys[mid] < key {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

func lowerExactOrdered[K constraints.Ordered](keys []K, key K) (int, bool) {
	i := lowerOrdered(keys, key)
	return i, i < len(keys) && keys[i] == key
}

func upperOrdered[K constraints.Ordered](keys []K, key K) int {
	lo, hi := 0, len(keys)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if key < keys[mid] {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// isIntegral reports whether t is an integer kind.  This uses reflection to
// mimic a type switch on the type parameter, which also matches named
// integer types.
func isIntegral(t reflect.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	default:
		return false
	}
}

// Less reports whether a orders before b.
func (c Comparator[K]) Less(a, b K) bool {
	return c.less(a, b)
}

// Compare returns the three-way ordering of a and b.
func (c Comparator[K]) Compare(a, b K) int {
	return c.compare(a, b)
}

// ThreeWay reports whether the comparator reports equality and ordering in a
// single call.
func (c Comparator[K]) ThreeWay() bool {
	return c.threeWay
}

func (c Comparator[K]) valid() bool {
	return c.less != nil
}

// searcher picks the search routines for a tree with the given strategy and
// node capacity.
func (c Comparator[K]) searcher(strategy SearchStrategy, maxValues int) searcher[K] {
	switch strategy {
	case SearchLinear:
		return c.linear
	case SearchBinary:
		return c.binary
	default:
		if c.integral && maxValues <= linearSearchMaxValues {
			return c.linear
		}
		return c.binary
	}
}
