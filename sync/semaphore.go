// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sync

import (
	"v.io/x/lib/vlog"
	"v.io/x/ukern/internal/deque"
	"v.io/x/ukern/internal/upcell"
	"v.io/x/ukern/task"
)

var _ Resource = (*Semaphore)(nil)

// semState is the state of a Semaphore.  While count is negative its
// magnitude equals the number of parked waiters.
type semState struct {
	count       int64
	allocatedTo map[task.TID]struct{}
	waitQueue   deque.T[*task.TCB]
}

// Semaphore is a counting semaphore built on the kernel's block and
// wakeup operations.  Each recorded holder holds exactly one unit; a
// task that calls Down twice still appears once in the holder set.
type Semaphore struct {
	k     *task.Kernel
	inner *upcell.Cell[semState]
}

// NewSemaphore creates a semaphore with n units available.  A nil kernel
// selects the process-wide default kernel.
func NewSemaphore(k *task.Kernel, n uint) *Semaphore {
	if k == nil {
		k = task.Default()
	}
	return &Semaphore{k: k, inner: upcell.New(semState{
		count:       int64(n),
		allocatedTo: map[task.TID]struct{}{},
	})}
}

// Down acquires one unit, parking the calling task until one is
// released.  Waiters acquire in the order they blocked.
func (s *Semaphore) Down() {
	t := s.k.CurrentTask()
	parked := false
	s.inner.With(func(st *semState) {
		st.count--
		if st.count < 0 {
			st.waitQueue.PushBack(t)
			parked = true
		} else {
			st.allocatedTo[t.TID()] = struct{}{}
		}
	})
	if !parked {
		return
	}
	vlog.VI(2).Infof("ukern[%v]: task %v waits on semaphore", s.k.Name(), t.TID())
	// The Up that releases a unit to this task records it as a holder
	// before the wakeup, so there is nothing left to update here.
	s.k.BlockCurrentAndRunNext()
}

// Up releases one unit, waking the head waiter if there is one.  The
// release is attributed to the calling task whether or not it was the
// acquirer, so a unit may be handed between tasks by convention.  When a
// waiter takes the unit it is recorded as a holder before the wakeup,
// even though it has not resumed yet.
func (s *Semaphore) Up() {
	tid := s.k.CurrentTID()
	var wake *task.TCB
	s.inner.With(func(st *semState) {
		delete(st.allocatedTo, tid)
		st.count++
		if st.count <= 0 {
			// A waiter ought to exist at this count; an empty queue is
			// a no-op rather than a fault.
			if t, ok := st.waitQueue.PopFront(); ok {
				st.allocatedTo[t.TID()] = struct{}{}
				wake = t
			}
		}
	})
	if wake != nil {
		vlog.VI(2).Infof("ukern[%v]: semaphore unit handed to task %v", s.k.Name(), wake.TID())
		s.k.WakeupTask(wake)
	}
}

// Available returns the number of units free to allocate, 0 while tasks
// are waiting.
func (s *Semaphore) Available() uint {
	var n uint
	s.inner.With(func(st *semState) {
		if st.count > 0 {
			n = uint(st.count)
		}
	})
	return n
}

// Allocation lists the holders in increasing tid order, one unit each.
func (s *Semaphore) Allocation() []Claim {
	var claims []Claim
	s.inner.With(func(st *semState) {
		tids := make([]task.TID, 0, len(st.allocatedTo))
		for tid := range st.allocatedTo {
			tids = append(tids, tid)
		}
		task.SortTIDs(tids)
		for _, tid := range tids {
			claims = append(claims, Claim{TID: tid, Units: 1})
		}
	})
	return claims
}

// Need lists the parked waiters in block order.
func (s *Semaphore) Need() []Claim {
	var claims []Claim
	s.inner.With(func(st *semState) {
		st.waitQueue.Iter(func(t *task.TCB) bool {
			claims = append(claims, Claim{TID: t.TID(), Units: 1})
			return true
		})
	})
	return claims
}
