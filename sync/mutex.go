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

// Mutex is the locking contract shared by MutexSpin and MutexBlocking.
// Lock may suspend the calling task.
type Mutex interface {
	Resource
	// Lock acquires the mutex, suspending the calling task until it is
	// available.
	Lock()
	// Unlock releases the mutex.
	Unlock()
}

var (
	_ Mutex = (*MutexSpin)(nil)
	_ Mutex = (*MutexBlocking)(nil)
)

// spinState is the state of a MutexSpin.  allocatedTo is meaningful only
// while locked.
type spinState struct {
	locked      bool
	allocatedTo task.TID
}

// MutexSpin is a mutex whose waiters poll.  A task that finds the mutex
// held yields the processor and retries, so contenders keep cycling
// through the ready queue instead of parking on a wait queue.
type MutexSpin struct {
	k     *task.Kernel
	inner *upcell.Cell[spinState]
}

// NewMutexSpin creates an unlocked MutexSpin.  A nil kernel selects the
// process-wide default kernel.
func NewMutexSpin(k *task.Kernel) *MutexSpin {
	if k == nil {
		k = task.Default()
	}
	return &MutexSpin{k: k, inner: upcell.New(spinState{})}
}

// Lock acquires m, yielding the processor until the holder releases it.
func (m *MutexSpin) Lock() {
	tid := m.k.CurrentTID()
	for {
		acquired := false
		m.inner.With(func(s *spinState) {
			if !s.locked {
				s.locked = true
				s.allocatedTo = tid
				acquired = true
			}
		})
		if acquired {
			return
		}
		m.k.SuspendCurrentAndRunNext()
	}
}

// Unlock releases m.  Waiters are not woken explicitly; they find the
// mutex free on their next poll.  Unlocking a free MutexSpin is accepted
// silently.
func (m *MutexSpin) Unlock() {
	m.inner.With(func(s *spinState) {
		s.locked = false
		s.allocatedTo = 0
	})
}

// Available returns 1 when m is free, 0 while it is held.
func (m *MutexSpin) Available() uint {
	var n uint
	m.inner.With(func(s *spinState) {
		if !s.locked {
			n = 1
		}
	})
	return n
}

// Allocation names the holder while m is held.
func (m *MutexSpin) Allocation() []Claim {
	var claims []Claim
	m.inner.With(func(s *spinState) {
		if s.locked {
			claims = []Claim{{TID: s.allocatedTo, Units: 1}}
		}
	})
	return claims
}

// Need is always empty.  Polling contenders stay runnable rather than
// queueing on m.
func (m *MutexSpin) Need() []Claim {
	return nil
}

// blockingState is the state of a MutexBlocking.  allocatedTo is
// meaningful only while locked.
type blockingState struct {
	locked      bool
	allocatedTo task.TID
	waitQueue   deque.T[*task.TCB]
}

// MutexBlocking is a mutex whose waiters park on a FIFO wait queue.
// Unlock hands the mutex to the head waiter directly: the locked flag
// stays set across the transfer, so the mutex is never observably free
// between one holder and the next.
type MutexBlocking struct {
	k     *task.Kernel
	inner *upcell.Cell[blockingState]
}

// NewMutexBlocking creates an unlocked MutexBlocking.  A nil kernel
// selects the process-wide default kernel.
func NewMutexBlocking(k *task.Kernel) *MutexBlocking {
	if k == nil {
		k = task.Default()
	}
	return &MutexBlocking{k: k, inner: upcell.New(blockingState{})}
}

// Lock acquires m, parking the calling task until the holder hands the
// mutex over.  Contenders acquire in the order they blocked.
func (m *MutexBlocking) Lock() {
	t := m.k.CurrentTask()
	parked := false
	m.inner.With(func(s *blockingState) {
		if s.locked {
			s.waitQueue.PushBack(t)
			parked = true
		} else {
			s.locked = true
			s.allocatedTo = t.TID()
		}
	})
	if !parked {
		return
	}
	vlog.VI(2).Infof("ukern[%v]: task %v waits on mutex", m.k.Name(), t.TID())
	// The handoff in Unlock records this task as the holder before the
	// wakeup, so there is nothing left to update here.
	m.k.BlockCurrentAndRunNext()
}

// Unlock releases m, waking the head waiter if there is one.  The
// transfer is recorded before the wakeup: the woken task is the holder
// from this point on, even though it has not resumed yet.  Unlocking a
// MutexBlocking that is not locked is a fatal misuse.
func (m *MutexBlocking) Unlock() {
	var wake *task.TCB
	m.inner.With(func(s *blockingState) {
		if !s.locked {
			panic("Unlocking a mutex that is not locked.")
		}
		if t, ok := s.waitQueue.PopFront(); ok {
			s.allocatedTo = t.TID()
			wake = t
		} else {
			s.locked = false
			s.allocatedTo = 0
		}
	})
	if wake != nil {
		vlog.VI(2).Infof("ukern[%v]: mutex handed to task %v", m.k.Name(), wake.TID())
		m.k.WakeupTask(wake)
	}
}

// Available returns 1 when m is free, 0 while it is held.
func (m *MutexBlocking) Available() uint {
	var n uint
	m.inner.With(func(s *blockingState) {
		if !s.locked {
			n = 1
		}
	})
	return n
}

// Allocation names the holder while m is held.  During a handoff the
// incoming task is recorded before it resumes.
func (m *MutexBlocking) Allocation() []Claim {
	var claims []Claim
	m.inner.With(func(s *blockingState) {
		if s.locked {
			claims = []Claim{{TID: s.allocatedTo, Units: 1}}
		}
	})
	return claims
}

// Need lists the parked contenders in block order.
func (m *MutexBlocking) Need() []Claim {
	var claims []Claim
	m.inner.With(func(s *blockingState) {
		s.waitQueue.Iter(func(t *task.TCB) bool {
			claims = append(claims, Claim{TID: t.TID(), Units: 1})
			return true
		})
	})
	return claims
}
