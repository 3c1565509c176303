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

// Package guard provides a single-writer/multiple-reader guard around a
// value.  Readers and writers wait by spinning, so it suits short critical
// sections such as lookups in an in-memory tree.
package guard

import (
	"runtime"
	"sync/atomic"
)

// Guard wraps a value of type T.  Any number of readers may borrow the value
// at once; a writer borrows it exclusively.  The zero value guards the zero
// value of T.
type Guard[T any] struct {
	readers atomic.Int32
	writer  atomic.Bool
	value   T
}

// New creates a guard around value.
func New[T any](value T) *Guard[T] {
	return &Guard[T]{value: value}
}

// RLock borrows the value for reading, waiting while a writer holds it.
func (g *Guard[T]) RLock() {
	for {
		for g.writer.Load() {
			runtime.Gosched()
		}
		g.readers.Add(1)
		if !g.writer.Load() {
			return
		}
		// A writer got in between: step back and wait for it.
		g.readers.Add(-1)
	}
}

// RUnlock returns a value borrowed with RLock.
func (g *Guard[T]) RUnlock() {
	if g.readers.Add(-1) < 0 {
		panic("guard: RUnlock without RLock")
	}
}

// Lock borrows the value exclusively, waiting for other writers and for
// every reader to return it.
func (g *Guard[T]) Lock() {
	for !g.writer.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
	for g.readers.Load() != 0 {
		runtime.Gosched()
	}
}

// Unlock returns a value borrowed with Lock.
func (g *Guard[T]) Unlock() {
	if !g.writer.CompareAndSwap(true, false) {
		panic("guard: Unlock without Lock")
	}
}

// Readers returns the number of readers currently holding the value.
func (g *Guard[T]) Readers() int {
	return int(g.readers.Load())
}

// Read calls f with the value while holding it for reading.
func (g *Guard[T]) Read(f func(T)) {
	g.RLock()
	defer g.RUnlock()
	f(g.value)
}

// Write calls f with a pointer to the value while holding it exclusively.
func (g *Guard[T]) Write(f func(*T)) {
	g.Lock()
	defer g.Unlock()
	f(&g.value)
}
