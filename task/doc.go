// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package task implements the scheduling core of a cooperative
// uniprocessor kernel hosted inside a Go process.
//
// A Kernel owns a ready queue of tasks ordered by stride scheduling and
// a processor that dispatches them one at a time.  Each task runs on its
// own goroutine, but the kernel serializes them: exactly one flow of
// control (either the idle dispatch flow or a single task) is ever
// runnable, and control moves between flows only at explicit scheduling
// points.  A task runs until it yields, blocks, sleeps or exits; there
// is no preemption.
//
// The stride scheduler picks the ready task with the smallest
// accumulated stride.  Every time a task is enqueued its stride grows
// by BigStride divided by its priority, so over time each task's share
// of dispatches is proportional to its priority.  Ties keep their
// arrival order.
//
// The dispatch loop is driven by RunTasks, which the host calls on a
// goroutine of its own.  Tasks enter the system through Spawn and give
// up the processor through SuspendCurrentAndRunNext,
// BlockCurrentAndRunNext, SleepCurrent or ExitCurrentAndRunNext.
// Blocked tasks are re-queued by WakeupTask, typically from the
// synchronization primitives built on top of this package.
//
// The package-level functions operate on a process-wide default kernel,
// created on first use.  Independent kernels can be created with
// NewKernel; tasks must not migrate between kernels.
package task
