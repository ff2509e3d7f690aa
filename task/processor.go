// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package task

import (
	"v.io/x/lib/vlog"
)

// Processor records what the virtual CPU is doing: the task currently
// executing on it, if any, and the context of the idle flow that picks
// the next task to dispatch.
type Processor struct {
	current *TCB
	idleCx  *TaskContext
}

// RunTasks is the idle flow: it dispatches ready tasks one at a time
// until the kernel is halted, or until every spawned task has exited
// (unless the kernel was created with RunForever).  The host calls it on
// a goroutine of its own; it parks while a task runs and resumes at the
// task's next scheduling point.
func (k *Kernel) RunTasks() {
	vlog.VI(1).Infof("ukern[%v]: boot %v", k.name, k.bootID)
	for !k.halted.Load() {
		k.checkTimers()
		next := k.FetchTask()
		if next == nil {
			if !k.runForever && k.LiveTasks() == 0 {
				vlog.VI(1).Infof("ukern[%v]: all tasks exited, halting", k.name)
				return
			}
			k.idleWait()
			continue
		}
		var idleCx *TaskContext
		k.pcell.With(func(p *Processor) {
			idleCx = p.idleCx
			next.markRunning(k.nowMicros())
			p.current = next
		})
		k.stats.dispatches.Incr(1)
		vlog.VI(3).Infof("ukern[%v]: dispatching task %v", k.name, next.tid)
		switchContext(idleCx, next.cx)
	}
	vlog.VI(1).Infof("ukern[%v]: halted", k.name)
}

// idleWait parks the idle flow until something creates work: a task
// becomes ready, the next sleep deadline passes, or the kernel is
// halted.
func (k *Kernel) idleWait() {
	vlog.VI(2).Infof("ukern[%v]: no tasks available, idling", k.name)
	k.stats.idles.Incr(1)
	if d, ok := k.nextDeadline(); ok {
		select {
		case <-k.kick:
		case <-k.tk.After(d):
		}
		return
	}
	<-k.kick
}

// TakeCurrentTask removes and returns the current task, leaving the
// processor with no current task.  Returns nil if the processor is idle.
func (k *Kernel) TakeCurrentTask() *TCB {
	var t *TCB
	k.pcell.With(func(p *Processor) {
		t = p.current
		p.current = nil
	})
	return t
}

// CurrentTask returns the current task, or nil if the processor is idle.
func (k *Kernel) CurrentTask() *TCB {
	var t *TCB
	k.pcell.With(func(p *Processor) {
		t = p.current
	})
	return t
}

// mustCurrent returns the current task and panics if the processor is
// idle.  Kernel operations that only make sense on behalf of a running
// task use it.
func (k *Kernel) mustCurrent() *TCB {
	t := k.CurrentTask()
	if t == nil {
		panic("No current task.")
	}
	return t
}

// CurrentTID returns the identifier of the current task.  Panics when
// the processor is idle.
func (k *Kernel) CurrentTID() TID {
	return k.mustCurrent().tid
}

// CurrentUserToken returns the user address space token of the current
// task.  Panics when the processor is idle.
func (k *Kernel) CurrentUserToken() UserToken {
	return k.mustCurrent().UserToken()
}

// CurrentTrapContext returns the trap context handle of the current
// task.  Panics when the processor is idle.
func (k *Kernel) CurrentTrapContext() TrapContext {
	return k.mustCurrent().TrapContext()
}

// Schedule hands the processor back to the idle flow, parking the
// calling flow on cx until the task is dispatched again.  Callers
// normally reach it through the *AndRunNext operations, which record the
// task's state before giving up the processor.
func (k *Kernel) Schedule(cx *TaskContext) {
	var idleCx *TaskContext
	k.pcell.With(func(p *Processor) {
		idleCx = p.idleCx
	})
	switchContext(cx, idleCx)
}

// resumeIdle hands the processor to the idle flow without parking the
// caller.  Only the exit path uses it; the calling goroutine is about to
// end.
func (k *Kernel) resumeIdle() {
	var idleCx *TaskContext
	k.pcell.With(func(p *Processor) {
		idleCx = p.idleCx
	})
	idleCx.handoff()
}
