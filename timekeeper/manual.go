// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package timekeeper

import (
	"container/heap"
	"sync"
	"time"
)

// ManualTime is a TimeKeeper whose clock only moves when whoever drives
// the kernel advances it.
type ManualTime interface {
	TimeKeeper
	// AdvanceTime moves the clock forward by d and fires every wakeup
	// that has come due.  A non-positive d fires due wakeups without
	// moving the clock.
	AdvanceTime(d time.Duration)
	// Requests reports the delay of every After and Sleep call as it is
	// made, so a driver can decide how far to advance the clock.
	Requests() <-chan time.Duration
}

// NewManualTime returns a ManualTime whose clock starts at the zero time.
func NewManualTime() ManualTime {
	c := &manualClock{
		// Sized so that callers of After are unlikely to block on
		// reporting their delay before the driver reads it.
		requests: make(chan time.Duration, 1000),
	}
	heap.Init(&c.pending)
	return c
}

// wakeup is a pending After: the channel to notify once the clock
// reaches due.
type wakeup struct {
	due time.Time
	ch  chan<- time.Time
}

// wakeupHeap orders pending wakeups by due time.
type wakeupHeap []*wakeup

func (h wakeupHeap) Len() int           { return len(h) }
func (h wakeupHeap) Less(i, j int) bool { return h[i].due.Before(h[j].due) }
func (h wakeupHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *wakeupHeap) Push(x interface{}) {
	*h = append(*h, x.(*wakeup))
}

func (h *wakeupHeap) Pop() interface{} {
	old := *h
	n := len(old)
	w := old[n-1]
	*h = old[:n-1]
	return w
}

type manualClock struct {
	mu       sync.Mutex
	now      time.Time
	pending  wakeupHeap
	requests chan time.Duration
}

// Now implements TimeKeeper.Now.
func (c *manualClock) Now() time.Time {
	defer c.mu.Unlock()
	c.mu.Lock()
	return c.now
}

// After implements TimeKeeper.After.  The delay is reported on Requests
// whether or not it is already due.
func (c *manualClock) After(d time.Duration) <-chan time.Time {
	defer c.mu.Unlock()
	c.mu.Lock()
	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- c.now
	} else {
		heap.Push(&c.pending, &wakeup{due: c.now.Add(d), ch: ch})
	}
	c.requests <- d
	return ch
}

// Sleep implements TimeKeeper.Sleep.
func (c *manualClock) Sleep(d time.Duration) {
	<-c.After(d)
}

// AdvanceTime implements ManualTime.AdvanceTime.
func (c *manualClock) AdvanceTime(d time.Duration) {
	defer c.mu.Unlock()
	c.mu.Lock()
	if d > 0 {
		c.now = c.now.Add(d)
	}
	for c.pending.Len() > 0 {
		next := c.pending[0]
		if next.due.After(c.now) {
			return
		}
		next.ch <- c.now
		heap.Pop(&c.pending)
	}
}

// Requests implements ManualTime.Requests.
func (c *manualClock) Requests() <-chan time.Duration { return c.requests }
