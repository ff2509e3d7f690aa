// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package deque implements a deque using a circular array.
package deque

const (
	initialQueueSize = 4
)

// T is the type of queues.
type T[E any] struct {
	contents []E

	// Boundary cases.
	// o If full, size==len and fx==bx
	// o If empty, size==0 and fx==bx
	// o On initialization, contents=nil, size==0, fx==bx.
	size int // Number of elements in the queue.
	fx   int // Index of the first element.
	bx   int // Index one past the last element (the index of the last element is (bx-1)%len).
}

// Size returns the number of items in the queue.
func (q *T[E]) Size() int {
	return q.size
}

// Clear removes all the elements of the queue.
func (q *T[E]) Clear() {
	q.fx = 0
	q.bx = 0
	q.size = 0
	q.contents = nil
}

// PushBack adds an element to the back of the queue.
func (q *T[E]) PushBack(item E) {
	q.reserve()
	q.contents[q.bx] = item
	q.bx = (q.bx + 1) % len(q.contents)
	q.size++
}

// PushFront adds an element to the front of the deque.
func (q *T[E]) PushFront(item E) {
	q.reserve()
	q.fx = (q.fx + len(q.contents) - 1) % len(q.contents)
	q.contents[q.fx] = item
	q.size++
}

// Insert adds an element at position i counted from the front, shifting
// later elements toward the back.  Position 0 is the front; positions at
// or past the current size append at the back.
func (q *T[E]) Insert(i int, item E) {
	if i <= 0 {
		q.PushFront(item)
		return
	}
	if i >= q.size {
		q.PushBack(item)
		return
	}
	q.reserve()
	for j := q.size; j > i; j-- {
		to := (q.fx + j) % len(q.contents)
		from := (q.fx + j - 1) % len(q.contents)
		q.contents[to] = q.contents[from]
	}
	q.contents[(q.fx+i)%len(q.contents)] = item
	q.bx = (q.bx + 1) % len(q.contents)
	q.size++
}

// Front returns the first element of the deque, or false if there is none.
func (q *T[E]) Front() (E, bool) {
	if q.size == 0 {
		var zero E
		return zero, false
	}
	return q.contents[q.fx], true
}

// Back returns the last element of the deque, or false if there is none.
func (q *T[E]) Back() (E, bool) {
	if q.size == 0 {
		var zero E
		return zero, false
	}
	return q.contents[(q.bx+len(q.contents)-1)%len(q.contents)], true
}

// PopFront removes an element from the front of the queue and returns it.
func (q *T[E]) PopFront() (E, bool) {
	var zero E
	if q.size == 0 {
		return zero, false
	}
	item := q.contents[q.fx]
	q.contents[q.fx] = zero
	q.fx = (q.fx + 1) % len(q.contents)
	q.size--
	return item, true
}

// PopBack removes an element from the back of the queue and returns it.
func (q *T[E]) PopBack() (E, bool) {
	var zero E
	if q.size == 0 {
		return zero, false
	}
	q.bx = (q.bx + len(q.contents) - 1) % len(q.contents)
	item := q.contents[q.bx]
	q.contents[q.bx] = zero
	q.size--
	return item, true
}

// Iter iterates over the elements of the deque.  f should return false to
// terminate the iteration early.
func (q *T[E]) Iter(f func(item E) bool) {
	for i := 0; i != q.size; i++ {
		ix := (q.fx + i) % len(q.contents)
		if !f(q.contents[ix]) {
			break
		}
	}
}

// Reserve space for at least one additional element.
func (q *T[E]) reserve() {
	if q.size == len(q.contents) {
		if q.contents == nil {
			q.contents = make([]E, initialQueueSize)
			return
		}
		contents := make([]E, q.size*2)
		i := copy(contents, q.contents[q.fx:])
		copy(contents[i:], q.contents[:q.fx])
		q.contents = contents
		q.fx = 0
		q.bx = q.size
	}
}
