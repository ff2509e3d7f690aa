// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package deque

import (
	"math/rand"
	"reflect"
	"testing"
	"time"
)

func drain(q *T[int]) []int {
	var items []int
	for {
		item, ok := q.PopFront()
		if !ok {
			return items
		}
		items = append(items, item)
	}
}

func TestEmpty(t *testing.T) {
	var q T[int]
	if got, want := q.Size(), 0; got != want {
		t.Errorf("Expected size %d, got %d instead", want, got)
	}
	if _, ok := q.PopFront(); ok {
		t.Errorf("Expected PopFront on an empty queue to report no item")
	}
	if _, ok := q.PopBack(); ok {
		t.Errorf("Expected PopBack on an empty queue to report no item")
	}
	if _, ok := q.Front(); ok {
		t.Errorf("Expected Front on an empty queue to report no item")
	}
	if _, ok := q.Back(); ok {
		t.Errorf("Expected Back on an empty queue to report no item")
	}
}

func TestOrdering(t *testing.T) {
	const n = 100
	tests := []struct {
		name     string
		push     func(q *T[int], item int)
		pop      func(q *T[int]) (int, bool)
		reversed bool
	}{
		{"PushBack/PopFront", (*T[int]).PushBack, (*T[int]).PopFront, false},
		{"PushFront/PopBack", (*T[int]).PushFront, (*T[int]).PopBack, false},
		{"PushBack/PopBack", (*T[int]).PushBack, (*T[int]).PopBack, true},
		{"PushFront/PopFront", (*T[int]).PushFront, (*T[int]).PopFront, true},
	}
	for _, test := range tests {
		var q T[int]
		for i := 0; i != n; i++ {
			test.push(&q, i)
		}
		if got, want := q.Size(), n; got != want {
			t.Errorf("%s: Expected size %d, got %d instead", test.name, want, got)
		}
		for i := 0; i != n; i++ {
			want := i
			if test.reversed {
				want = n - 1 - i
			}
			item, ok := test.pop(&q)
			if !ok || item != want {
				t.Errorf("%s: Expected %d, got %v (ok=%v)", test.name, want, item, ok)
			}
		}
		if _, ok := test.pop(&q); ok {
			t.Errorf("%s: Expected the queue to be empty after draining", test.name)
		}
	}
}

func TestClear(t *testing.T) {
	var q T[int]
	for i := 0; i != 100; i++ {
		q.PushBack(i)
	}
	q.Clear()
	if got, want := q.Size(), 0; got != want {
		t.Errorf("Expected size %d, got %d instead", want, got)
	}
	if _, ok := q.PopFront(); ok {
		t.Errorf("Expected an empty queue after Clear")
	}
	q.PushBack(7)
	if item, ok := q.PopFront(); !ok || item != 7 {
		t.Errorf("Expected a cleared queue to be reusable, got %v (ok=%v)", item, ok)
	}
}

func TestInsert(t *testing.T) {
	var q T[int]
	q.Insert(0, 10)
	q.Insert(1, 30)
	q.Insert(1, 20)
	q.Insert(0, 0)
	q.Insert(100, 40)
	if got, want := drain(&q), []int{0, 10, 20, 30, 40}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v instead", want, got)
	}

	// Rotate the ring so the live region wraps, then insert in the middle.
	for i := 0; i != 4; i++ {
		q.PushBack(i)
	}
	q.PopFront()
	q.PopFront()
	q.PushBack(4) // live region wraps around the end of the array here
	q.Insert(1, 100)
	if got, want := drain(&q), []int{2, 100, 3, 4}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v instead", want, got)
	}
}

// TestRandom drives the queue with a random op sequence and checks every
// observation against a plain slice holding the same contents.
func TestRandom(t *testing.T) {
	seed := time.Now().UnixNano()
	t.Logf("Seeded pseudo-random number generator with %v", seed)
	rng := rand.New(rand.NewSource(seed))
	var q T[int]
	var model []int
	for i := 0; i != 1000; i++ {
		if got, want := q.Size(), len(model); got != want {
			t.Fatalf("Expected size %d, got %d instead", want, got)
		}
		if len(model) > 0 {
			if item, ok := q.Front(); !ok || item != model[0] {
				t.Fatalf("Expected front %d, got %v (ok=%v)", model[0], item, ok)
			}
			if item, ok := q.Back(); !ok || item != model[len(model)-1] {
				t.Fatalf("Expected back %d, got %v (ok=%v)", model[len(model)-1], item, ok)
			}
		}
		switch rng.Intn(5) {
		case 0:
			item := rng.Intn(10000)
			q.PushFront(item)
			model = append([]int{item}, model...)
		case 1:
			item := rng.Intn(10000)
			q.PushBack(item)
			model = append(model, item)
		case 2:
			pos := rng.Intn(len(model) + 1)
			item := rng.Intn(10000)
			q.Insert(pos, item)
			model = append(model[:pos], append([]int{item}, model[pos:]...)...)
		case 3:
			item, ok := q.PopFront()
			if len(model) == 0 {
				if ok {
					t.Fatalf("Expected an empty queue, got %v", item)
				}
				continue
			}
			if !ok || item != model[0] {
				t.Fatalf("Expected %d, got %v (ok=%v)", model[0], item, ok)
			}
			model = model[1:]
		case 4:
			item, ok := q.PopBack()
			if len(model) == 0 {
				if ok {
					t.Fatalf("Expected an empty queue, got %v", item)
				}
				continue
			}
			if !ok || item != model[len(model)-1] {
				t.Fatalf("Expected %d, got %v (ok=%v)", model[len(model)-1], item, ok)
			}
			model = model[:len(model)-1]
		}
	}
}

func TestIter(t *testing.T) {
	var q T[int]
	for i := 0; i != 10; i++ {
		var seen []int
		q.Iter(func(item int) bool {
			seen = append(seen, item)
			return true
		})
		if got, want := len(seen), i; got != want {
			t.Errorf("Expected %d items, got %d instead", want, got)
		}
		for j, item := range seen {
			if item != j {
				t.Errorf("Expected %d at position %d, got %d instead", j, j, item)
			}
		}
		q.PushBack(i)
	}

	// Returning false stops the iteration.
	iterations := 0
	q.Iter(func(item int) bool {
		iterations++
		return item < 5
	})
	if got, want := iterations, 6; got != want {
		t.Errorf("Expected %d iterations, got %d instead", want, got)
	}
}

func BenchmarkPushPopFront(b *testing.B) {
	var q T[int]
	for i := 0; i < b.N; i++ {
		q.PushFront(i)
	}
	for i := 0; i < b.N; i++ {
		q.PopFront()
	}
}

func BenchmarkPushPopBack(b *testing.B) {
	var q T[int]
	for i := 0; i < b.N; i++ {
		q.PushBack(i)
	}
	for i := 0; i < b.N; i++ {
		q.PopBack()
	}
}
