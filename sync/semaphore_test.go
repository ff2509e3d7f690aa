// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sync

import (
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"v.io/x/ukern/task"
)

func TestSemaphoreHandoff(t *testing.T) {
	k := task.NewKernel(task.Options{Name: "sem-handoff"})
	s := NewSemaphore(k, 1)

	availAfterUp := uint(99)
	var bHolds []Claim
	k.Spawn(func() {
		s.Down()
		// Let the second task park on the semaphore.
		k.SuspendCurrentAndRunNext()
		s.Up()
		availAfterUp = s.Available()
	})
	b := k.Spawn(func() {
		s.Down()
		bHolds = s.Allocation()
	})
	k.RunTasks()

	if got, want := availAfterUp, uint(0); got != want {
		t.Errorf("Expected %d available after the handoff, got %d instead", want, got)
	}
	if got, want := bHolds, []Claim{{TID: b.TID(), Units: 1}}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected allocation %v, got %v instead", want, got)
	}
	if got, want := s.Allocation(), []Claim{{TID: b.TID(), Units: 1}}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected allocation %v, got %v instead", want, got)
	}
	if got, want := s.Available(), uint(0); got != want {
		t.Errorf("Expected %d available, got %d instead", want, got)
	}
}

func TestSemaphoreFIFO(t *testing.T) {
	k := task.NewKernel(task.Options{Name: "sem-fifo"})
	s := NewSemaphore(k, 0)

	var order []task.TID
	var waiters []*task.TCB
	for i := 0; i != 3; i++ {
		waiters = append(waiters, k.Spawn(func() {
			s.Down()
			order = append(order, k.CurrentTID())
		}))
	}
	k.Spawn(func() {
		for i := 0; i != 3; i++ {
			s.Up()
			k.SuspendCurrentAndRunNext()
		}
	})
	k.RunTasks()

	want := []task.TID{waiters[0].TID(), waiters[1].TID(), waiters[2].TID()}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("Expected wakeup order %v, got %v instead", want, order)
	}
}

func TestSemaphoreCriticalSection(t *testing.T) {
	k := task.NewKernel(task.Options{Name: "sem-critical"})
	s := NewSemaphore(k, 1)

	var count int
	for i := 0; i != 10; i++ {
		k.Spawn(func() {
			for j := 0; j != 20; j++ {
				s.Down()
				// Critical section.
				count++
				if count > 1 {
					t.Errorf("Race detected")
				}
				k.SuspendCurrentAndRunNext()
				count--
				s.Up()
			}
		})
	}
	k.RunTasks()

	if count != 0 {
		t.Errorf("Expected no task in the critical section, got %d", count)
	}
}

func TestSemaphoreConservation(t *testing.T) {
	const initial = 3
	k := task.NewKernel(task.Options{Name: "sem-conservation"})
	s := NewSemaphore(k, initial)

	check := func() {
		var count int64
		var waiters int
		s.inner.With(func(st *semState) {
			count = st.count
			waiters = st.waitQueue.Size()
		})
		if (count < 0 && waiters != int(-count)) || (count >= 0 && waiters != 0) {
			t.Errorf("Count %d inconsistent with %d waiters:\n%s",
				count, waiters, spew.Sdump(s.Allocation(), s.Need()))
		}
		var want uint
		if count > 0 {
			want = uint(count)
		}
		if got := s.Available(); got != want {
			t.Errorf("Expected %d available with count %d, got %d instead", want, count, got)
		}
	}

	for i := 0; i != 6; i++ {
		k.Spawn(func() {
			for j := 0; j != 5; j++ {
				s.Down()
				check()
				k.SuspendCurrentAndRunNext()
				check()
				s.Up()
				check()
			}
		})
	}
	k.RunTasks()

	if got, want := s.Available(), uint(initial); got != want {
		t.Errorf("Expected %d available, got %d instead", want, got)
	}
	if got := s.Allocation(); len(got) != 0 {
		t.Errorf("Expected no allocation, got %v", got)
	}
	if got := s.Need(); len(got) != 0 {
		t.Errorf("Expected no need, got %v", got)
	}
}

func TestSemaphoreUpFromEmptyQueue(t *testing.T) {
	k := task.NewKernel(task.Options{Name: "sem-empty-wake"})
	s := NewSemaphore(k, 0)

	// Force the pathological state: a negative count with no parked
	// waiter.  Up must treat the empty queue as a no-op.
	s.inner.With(func(st *semState) { st.count = -1 })
	k.Spawn(func() {
		s.Up()
		if got, want := s.Available(), uint(0); got != want {
			t.Errorf("Expected %d available, got %d instead", want, got)
		}
	})
	k.RunTasks()
}
