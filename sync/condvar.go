// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sync

import (
	"v.io/x/ukern/internal/deque"
	"v.io/x/ukern/internal/upcell"
	"v.io/x/ukern/task"
)

// condvarState is the state of a Condvar.
type condvarState struct {
	waitQueue deque.T[*task.TCB]
}

// Condvar is a condition variable built on the kernel's block and wakeup
// operations.  It carries no predicate of its own; callers re-check
// their condition after Wait returns.
type Condvar struct {
	k     *task.Kernel
	inner *upcell.Cell[condvarState]
}

// NewCondvar creates a Condvar with no waiters.  A nil kernel selects
// the process-wide default kernel.
func NewCondvar(k *task.Kernel) *Condvar {
	if k == nil {
		k = task.Default()
	}
	return &Condvar{k: k, inner: upcell.New(condvarState{})}
}

// Signal wakes the longest-parked waiter, if there is one.
func (c *Condvar) Signal() {
	var wake *task.TCB
	c.inner.With(func(st *condvarState) {
		if t, ok := st.waitQueue.PopFront(); ok {
			wake = t
		}
	})
	if wake != nil {
		c.k.WakeupTask(wake)
	}
}

// Wait releases m, parks the calling task until a Signal reaches it, and
// re-acquires m before returning.
func (c *Condvar) Wait(m Mutex) {
	m.Unlock()
	t := c.k.CurrentTask()
	c.inner.With(func(st *condvarState) {
		st.waitQueue.PushBack(t)
	})
	c.k.BlockCurrentAndRunNext()
	m.Lock()
}
