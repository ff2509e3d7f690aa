// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package task

import (
	"fmt"

	"v.io/x/ukern/internal/upcell"
)

const (
	// MaxSyscallNum bounds the syscall identifiers tracked per task.
	MaxSyscallNum = 500
	// MinPriority is the smallest priority a task may be assigned.
	MinPriority = 2
	// DefaultPriority is the priority tasks start with.
	DefaultPriority = 16
)

// UserToken identifies the user address space a task claims to run
// against.  The kernel stores and returns it without interpreting it.
type UserToken uint64

// TrapContext is an opaque handle to the trap state a task entered the
// kernel with.  The kernel stores and returns it without interpreting it.
type TrapContext interface{}

// TaskStatus describes where a task is in its lifecycle.
type TaskStatus int

const (
	// StatusReady means the task sits on the ready queue awaiting dispatch.
	StatusReady TaskStatus = iota
	// StatusRunning means the task is the one the processor is executing.
	StatusRunning
	// StatusBlocked means the task waits for a wakeup and is on no queue.
	StatusBlocked
	// StatusExited means the task has ended and will never run again.
	StatusExited
)

func (s TaskStatus) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusRunning:
		return "Running"
	case StatusBlocked:
		return "Blocked"
	case StatusExited:
		return "Exited"
	}
	return fmt.Sprintf("TaskStatus(%d)", int(s))
}

// TaskInfo is a snapshot of a task's accounting state.
type TaskInfo struct {
	// Status is the task's scheduling status at the time of the snapshot.
	Status TaskStatus
	// SyscallTimes counts how often each syscall identifier was recorded.
	SyscallTimes [MaxSyscallNum]uint32
	// RunTimeMillis is the kernel time in milliseconds since the task was
	// first dispatched.
	RunTimeMillis int64
}

// TCB is the task control block: the kernel's record of one task.  The
// identifier and switch context are fixed at creation; everything else
// lives behind an exclusive cell and is only touched by the flow of
// control currently holding the processor.
type TCB struct {
	tid   TID
	cx    *TaskContext
	inner *upcell.Cell[tcbState]
}

// tcbState is the mutable part of a task control block.
type tcbState struct {
	status   TaskStatus
	priority uint64
	// stride accumulates one pass per enqueue; the ready queue is ordered
	// by it.  64 bits wide, with no wraparound handling.
	stride uint64
	// startMicros records the kernel clock at first dispatch, and is never
	// updated afterwards.
	started      bool
	startMicros  int64
	syscallTimes [MaxSyscallNum]uint32
	userToken    UserToken
	trap         TrapContext
}

func newTCB(tid TID, cfg TaskConfig) *TCB {
	return &TCB{
		tid: tid,
		cx:  newTaskContext(),
		inner: upcell.New(tcbState{
			status:    StatusReady,
			priority:  DefaultPriority,
			userToken: cfg.UserToken,
			trap:      cfg.Trap,
		}),
	}
}

// TID returns the task's identifier.
func (t *TCB) TID() TID {
	return t.tid
}

// Context returns the task's switch context, for handing to Schedule
// when a caller suspends the task outside the *AndRunNext operations.
func (t *TCB) Context() *TaskContext {
	return t.cx
}

// Status returns the task's scheduling status.
func (t *TCB) Status() TaskStatus {
	var s TaskStatus
	t.inner.With(func(st *tcbState) {
		s = st.status
	})
	return s
}

// Priority returns the task's scheduling priority.
func (t *TCB) Priority() uint64 {
	var p uint64
	t.inner.With(func(st *tcbState) {
		p = st.priority
	})
	return p
}

// UserToken returns the task's user address space token.
func (t *TCB) UserToken() UserToken {
	var tok UserToken
	t.inner.With(func(st *tcbState) {
		tok = st.userToken
	})
	return tok
}

// TrapContext returns the task's trap context handle.
func (t *TCB) TrapContext() TrapContext {
	var tc TrapContext
	t.inner.With(func(st *tcbState) {
		tc = st.trap
	})
	return tc
}

// bumpStride advances the task's stride by one pass and returns the new
// value.  The pass shrinks as the priority grows, which is what earns
// high-priority tasks their larger share of dispatches.
func (t *TCB) bumpStride() uint64 {
	var stride uint64
	t.inner.With(func(st *tcbState) {
		st.stride += BigStride / st.priority
		stride = st.stride
	})
	return stride
}

// markRunning moves the task to Running and stamps its start time on
// first dispatch.
func (t *TCB) markRunning(nowMicros int64) {
	t.inner.With(func(st *tcbState) {
		st.status = StatusRunning
		if !st.started {
			st.started = true
			st.startMicros = nowMicros
		}
	})
}

func (t *TCB) markReady() {
	t.inner.With(func(st *tcbState) {
		st.status = StatusReady
	})
}

func (t *TCB) markBlocked() {
	t.inner.With(func(st *tcbState) {
		st.status = StatusBlocked
	})
}

func (t *TCB) markExited() {
	t.inner.With(func(st *tcbState) {
		st.status = StatusExited
	})
}
