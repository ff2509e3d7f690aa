// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package task

// TaskContext is the hosted analog of a flow of control's saved register
// state.  Each flow (every task, plus the idle dispatch flow) owns a gate
// channel that its goroutine parks on while switched out.  Handing the
// processor to a flow means placing a token on its gate.
//
// A gate holds at most one token: a switched-out flow has either zero
// tokens (parked) or one (resumed but not yet running).  The buffer lets
// the sender continue without waiting for the receiver's goroutine to be
// scheduled by the Go runtime.
type TaskContext struct {
	gate chan struct{}
}

func newTaskContext() *TaskContext {
	return &TaskContext{gate: make(chan struct{}, 1)}
}

// switchContext transfers the processor from the calling flow to the flow
// parked on to.  The caller parks on from until the processor is handed
// back to it.
func switchContext(from, to *TaskContext) {
	to.gate <- struct{}{}
	<-from.gate
}

// handoff resumes the flow parked on c without parking the caller.  Only
// used when the calling flow is about to end.
func (c *TaskContext) handoff() {
	c.gate <- struct{}{}
}

// park blocks the calling flow until the processor is handed to c.
func (c *TaskContext) park() {
	<-c.gate
}
