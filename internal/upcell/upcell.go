// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package upcell provides a container for state that is shared across the
// kernel but only ever touched by one flow of control at a time.  On a
// uniprocessor kernel with cooperative scheduling there is no contention to
// wait out: a second acquire of a held cell can only mean re-entry from the
// same flow, which is a programming fault.  The cell therefore panics
// instead of blocking.
//
// Access is scoped to a closure and must never be held across a scheduling
// point.
package upcell

import "sync"

// Cell holds a value of type T and grants exclusive access to it.
type Cell[T any] struct {
	mu  sync.Mutex
	val T
}

// New creates a cell holding val.
func New[T any](val T) *Cell[T] {
	return &Cell[T]{val: val}
}

// With runs f with exclusive access to the cell's value.  Mutations made
// through the pointer are retained after f returns.
func (c *Cell[T]) With(f func(v *T)) {
	if !c.mu.TryLock() {
		panic("Acquiring an exclusive cell that is already in use.")
	}
	defer c.mu.Unlock()
	f(&c.val)
}
