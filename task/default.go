// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package task

import (
	"sync"
	"time"
)

var (
	defaultOnce   sync.Once
	defaultKernel *Kernel
)

// Default returns the process-wide kernel, creating it on first use with
// default options.  Programs that need their own options should create a
// Kernel explicitly and ignore the package-level functions.
func Default() *Kernel {
	defaultOnce.Do(func() {
		defaultKernel = NewKernel(Options{})
	})
	return defaultKernel
}

// Spawn creates a task on the default kernel.
func Spawn(entry func()) *TCB {
	return Default().Spawn(entry)
}

// SpawnTask creates a task on the default kernel from cfg.
func SpawnTask(cfg TaskConfig) *TCB {
	return Default().SpawnTask(cfg)
}

// RunTasks runs the default kernel's dispatch loop.
func RunTasks() {
	Default().RunTasks()
}

// AddTask places t on the default kernel's ready queue.
func AddTask(t *TCB) {
	Default().AddTask(t)
}

// FetchTask removes the lowest-stride task from the default kernel's
// ready queue, or returns nil if no task is ready.
func FetchTask() *TCB {
	return Default().FetchTask()
}

// TakeCurrentTask removes and returns the default kernel's current task.
func TakeCurrentTask() *TCB {
	return Default().TakeCurrentTask()
}

// CurrentTask returns the default kernel's current task, or nil.
func CurrentTask() *TCB {
	return Default().CurrentTask()
}

// CurrentTID returns the identifier of the default kernel's current task.
func CurrentTID() TID {
	return Default().CurrentTID()
}

// CurrentUserToken returns the current task's user address space token.
func CurrentUserToken() UserToken {
	return Default().CurrentUserToken()
}

// CurrentTrapContext returns the current task's trap context handle.
func CurrentTrapContext() TrapContext {
	return Default().CurrentTrapContext()
}

// Schedule hands the default kernel's processor back to its idle flow.
func Schedule(cx *TaskContext) {
	Default().Schedule(cx)
}

// SuspendCurrentAndRunNext yields the default kernel's processor.
func SuspendCurrentAndRunNext() {
	Default().SuspendCurrentAndRunNext()
}

// BlockCurrentAndRunNext blocks the default kernel's current task.
func BlockCurrentAndRunNext() {
	Default().BlockCurrentAndRunNext()
}

// ExitCurrentAndRunNext ends the default kernel's current task.  It does
// not return.
func ExitCurrentAndRunNext() {
	Default().ExitCurrentAndRunNext()
}

// WakeupTask re-queues a blocked task on the default kernel.
func WakeupTask(t *TCB) {
	Default().WakeupTask(t)
}

// SleepCurrent blocks the default kernel's current task for at least d.
func SleepCurrent(d time.Duration) {
	Default().SleepCurrent(d)
}

// SetPriority changes the current task's priority on the default kernel.
func SetPriority(prio int64) (int64, error) {
	return Default().SetPriority(prio)
}

// CountSyscall records a syscall occurrence against the current task of
// the default kernel.
func CountSyscall(id int) {
	Default().CountSyscall(id)
}

// SyscallTimes returns the current task's syscall counters on the
// default kernel.
func SyscallTimes() [MaxSyscallNum]uint32 {
	return Default().SyscallTimes()
}

// CurrentTaskStatus returns the current task's status on the default
// kernel.
func CurrentTaskStatus() TaskStatus {
	return Default().CurrentTaskStatus()
}

// CurrentRunTime returns the current task's run time on the default
// kernel, in milliseconds.
func CurrentRunTime() int64 {
	return Default().CurrentRunTime()
}

// CurrentTaskInfo returns the current task's accounting snapshot on the
// default kernel.
func CurrentTaskInfo() TaskInfo {
	return Default().CurrentTaskInfo()
}
