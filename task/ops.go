// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package task

import (
	"errors"
	"runtime"

	"v.io/x/lib/vlog"
)

// ErrBadPriority is returned by SetPriority for priorities below
// MinPriority.
var ErrBadPriority = errors.New("priority must be at least 2")

// SuspendCurrentAndRunNext yields the processor: the current task goes
// back on the ready queue (advancing its stride) and the idle flow picks
// the next task.  The call returns when the task is dispatched again.
func (k *Kernel) SuspendCurrentAndRunNext() {
	t := k.TakeCurrentTask()
	if t == nil {
		panic("Suspending with no current task.")
	}
	t.markReady()
	k.AddTask(t)
	k.stats.yields.Incr(1)
	k.Schedule(t.cx)
}

// BlockCurrentAndRunNext takes the current task off the processor
// without re-queuing it.  The task stays parked until WakeupTask puts it
// back on the ready queue; the call returns when it is next dispatched.
func (k *Kernel) BlockCurrentAndRunNext() {
	t := k.TakeCurrentTask()
	if t == nil {
		panic("Blocking with no current task.")
	}
	t.markBlocked()
	k.stats.blocks.Incr(1)
	k.Schedule(t.cx)
}

// ExitCurrentAndRunNext ends the current task and hands the processor to
// the idle flow.  It does not return; deferred calls in the task body
// still run, on the dying flow, before the idle flow resumes.
func (k *Kernel) ExitCurrentAndRunNext() {
	k.exitCurrent()
	runtime.Goexit()
}

// exitCurrent records the end of the current task.  The spawn wrapper's
// deferred handoff resumes the idle flow once the dying goroutine is
// done.
func (k *Kernel) exitCurrent() {
	t := k.TakeCurrentTask()
	if t == nil {
		panic("Exiting with no current task.")
	}
	t.markExited()
	k.live.Add(-1)
	k.stats.exits.Incr(1)
	vlog.VI(2).Infof("ukern[%v]: task %v exited", k.name, t.tid)
}

// WakeupTask marks t ready and puts it back on the ready queue.  It is
// called by whatever the task was blocked on: a synchronization
// primitive handing over a resource, or the timer path after a sleep
// deadline.
func (k *Kernel) WakeupTask(t *TCB) {
	t.markReady()
	k.AddTask(t)
	k.stats.wakeups.Incr(1)
}

// SetPriority changes the current task's scheduling priority and returns
// the value set.  Values below MinPriority are rejected with
// ErrBadPriority and leave the priority unchanged.  Panics when the
// processor is idle.
func (k *Kernel) SetPriority(prio int64) (int64, error) {
	if prio < MinPriority {
		return 0, ErrBadPriority
	}
	t := k.mustCurrent()
	t.inner.With(func(st *tcbState) {
		st.priority = uint64(prio)
	})
	return prio, nil
}

// CountSyscall records one occurrence of syscall id against the current
// task.  Panics when the processor is idle or the id is out of range.
func (k *Kernel) CountSyscall(id int) {
	t := k.mustCurrent()
	t.inner.With(func(st *tcbState) {
		st.syscallTimes[id]++
	})
}

// SyscallTimes returns a copy of the current task's per-syscall
// counters.  Panics when the processor is idle.
func (k *Kernel) SyscallTimes() [MaxSyscallNum]uint32 {
	t := k.mustCurrent()
	var times [MaxSyscallNum]uint32
	t.inner.With(func(st *tcbState) {
		times = st.syscallTimes
	})
	return times
}

// CurrentTaskStatus returns the scheduling status of the current task.
// Panics when the processor is idle.
func (k *Kernel) CurrentTaskStatus() TaskStatus {
	return k.mustCurrent().Status()
}

// CurrentRunTime returns the kernel time in milliseconds since the
// current task was first dispatched.  Panics when the processor is idle.
func (k *Kernel) CurrentRunTime() int64 {
	t := k.mustCurrent()
	now := k.nowMicros()
	var ms int64
	t.inner.With(func(st *tcbState) {
		if st.started {
			ms = (now - st.startMicros) / 1000
		}
	})
	return ms
}

// CurrentTaskInfo bundles the current task's status, syscall counters
// and run time into one snapshot.  Panics when the processor is idle.
func (k *Kernel) CurrentTaskInfo() TaskInfo {
	t := k.mustCurrent()
	now := k.nowMicros()
	var info TaskInfo
	t.inner.With(func(st *tcbState) {
		info.Status = st.status
		info.SyscallTimes = st.syscallTimes
		if st.started {
			info.RunTimeMillis = (now - st.startMicros) / 1000
		}
	})
	return info
}
