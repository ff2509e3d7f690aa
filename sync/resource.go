// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sync provides the primitives kernel tasks coordinate with: a
// polling mutex, a blocking mutex, a counting semaphore and a condition
// variable.  The lockable primitives also implement the Resource
// accounting interface that contention analysis, such as the deadlock
// package, consumes.
//
// The primitives suspend the calling task through the kernel's block and
// yield operations, so they may only be used from a task flow, never from
// the idle flow or the host.
package sync

import (
	"v.io/x/ukern/task"
)

// Claim records how many units of a resource a task holds or demands.
type Claim struct {
	TID   task.TID
	Units uint
}

// Resource is the accounting surface a lockable primitive exposes for
// contention analysis.  The methods report instantaneous state and have
// no side effects; two calls may straddle a lock transfer, so callers
// must not assume a stable snapshot across them.
type Resource interface {
	// Available returns the number of units currently free to allocate.
	Available() uint
	// Allocation returns the current holders and how many units each
	// holds.
	Allocation() []Claim
	// Need returns the tasks queued on the resource, each demanding one
	// more unit than it holds.
	Need() []Claim
}
