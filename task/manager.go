// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package task

import (
	"v.io/x/ukern/internal/deque"
)

// BigStride is the numerator shared by all tasks when deriving the pass
// from the priority.  pass = BigStride / priority, so a higher priority
// means a smaller pass, a slower-growing stride, and more dispatches.
const BigStride = 1 << 30

// readyEntry pairs a task with the stride recorded when it was enqueued.
// The queue is ordered by the recorded value, which stays fixed even if
// the task's stride advances before it is fetched.
type readyEntry struct {
	task   *TCB
	stride uint64
}

// TaskManager maintains the ready queue, ordered by ascending stride.
// It is not safe for concurrent use; the kernel keeps it behind an
// exclusive cell.
type TaskManager struct {
	readyQueue deque.T[readyEntry]
}

// Add advances the task's stride by its pass and inserts the task in
// front of the first queued entry with a strictly larger stride.  Equal
// strides keep their arrival order.
func (m *TaskManager) Add(t *TCB) {
	stride := t.bumpStride()
	index := -1
	pos := 0
	m.readyQueue.Iter(func(e readyEntry) bool {
		if e.stride > stride {
			index = pos
			return false
		}
		pos++
		return true
	})
	if index >= 0 {
		m.readyQueue.Insert(index, readyEntry{task: t, stride: stride})
	} else {
		m.readyQueue.PushBack(readyEntry{task: t, stride: stride})
	}
}

// Fetch removes and returns the ready task with the smallest recorded
// stride, or nil if the queue is empty.
func (m *TaskManager) Fetch() *TCB {
	e, ok := m.readyQueue.PopFront()
	if !ok {
		return nil
	}
	return e.task
}

// Len returns the number of ready tasks.
func (m *TaskManager) Len() int {
	return m.readyQueue.Size()
}

// AddTask places t on the kernel's ready queue, advancing its stride,
// and nudges the idle flow in case it is parked waiting for work.
func (k *Kernel) AddTask(t *TCB) {
	k.mcell.With(func(m *TaskManager) {
		m.Add(t)
	})
	k.kickIdle()
}

// FetchTask removes the lowest-stride task from the ready queue, or
// returns nil if no task is ready.  The dispatch loop calls it before
// every dispatch; external callers normally leave fetching to RunTasks.
func (k *Kernel) FetchTask() *TCB {
	var t *TCB
	k.mcell.With(func(m *TaskManager) {
		t = m.Fetch()
	})
	return t
}

// ReadyTasks returns the number of tasks on the ready queue.
func (k *Kernel) ReadyTasks() int {
	var n int
	k.mcell.With(func(m *TaskManager) {
		n = m.Len()
	})
	return n
}
