// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package task

import (
	"container/heap"
	"time"
)

// timerEntry schedules a wakeup for a sleeping task.
type timerEntry struct {
	at   time.Time
	task *TCB
}

type timerHeap []*timerEntry

func (th timerHeap) Len() int { return len(th) }

func (th timerHeap) Less(i, j int) bool {
	return th[i].at.Before(th[j].at)
}

func (th timerHeap) Swap(i, j int) {
	th[i], th[j] = th[j], th[i]
}

func (th *timerHeap) Push(x interface{}) {
	*th = append(*th, x.(*timerEntry))
}

func (th *timerHeap) Pop() interface{} {
	old := *th
	n := len(old)
	e := old[n-1]
	*th = old[0 : n-1]
	return e
}

// SleepCurrent blocks the current task for at least d of kernel time.
// The idle flow wakes the task once the deadline passes.  Panics when
// the processor is idle.
func (k *Kernel) SleepCurrent(d time.Duration) {
	t := k.mustCurrent()
	k.addTimer(k.tk.Now().Add(d), t)
	k.BlockCurrentAndRunNext()
}

// addTimer registers a wakeup for t at the given kernel time.
func (k *Kernel) addTimer(at time.Time, t *TCB) {
	k.tcell.With(func(th *timerHeap) {
		heap.Push(th, &timerEntry{at: at, task: t})
	})
}

// checkTimers wakes every sleeping task whose deadline has passed.  The
// idle flow calls it before each dispatch, so expired sleepers compete
// for the processor like any other ready task.
func (k *Kernel) checkTimers() {
	now := k.tk.Now()
	var expired []*TCB
	k.tcell.With(func(th *timerHeap) {
		for th.Len() > 0 {
			top := (*th)[0]
			if top.at.After(now) {
				break
			}
			expired = append(expired, top.task)
			heap.Pop(th)
		}
	})
	for _, t := range expired {
		k.WakeupTask(t)
	}
}

// nextDeadline returns how long until the earliest pending wakeup, if
// there is one.  A non-positive duration means the deadline has already
// passed.
func (k *Kernel) nextDeadline() (time.Duration, bool) {
	var (
		d  time.Duration
		ok bool
	)
	now := k.tk.Now()
	k.tcell.With(func(th *timerHeap) {
		if th.Len() > 0 {
			d = (*th)[0].at.Sub(now)
			ok = true
		}
	})
	return d, ok
}
