// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package upcell

import "testing"

func TestWith(t *testing.T) {
	c := New(0)
	for i := 0; i != 10; i++ {
		c.With(func(v *int) {
			*v++
		})
	}
	c.With(func(v *int) {
		if *v != 10 {
			t.Errorf("Expected 10, actual %d", *v)
		}
	})
}

func TestStructValue(t *testing.T) {
	type counters struct {
		hits, misses int
	}
	c := New(counters{})
	c.With(func(v *counters) {
		v.hits = 3
		v.misses = 1
	})
	c.With(func(v *counters) {
		if v.hits != 3 || v.misses != 1 {
			t.Errorf("Expected {3 1}, actual %+v", *v)
		}
	})
}

func TestReentryPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Expected re-entrant access to panic")
		}
	}()
	c := New(0)
	c.With(func(*int) {
		c.With(func(*int) {})
	})
}

func TestReleasedAfterPanic(t *testing.T) {
	c := New(0)
	func() {
		defer func() {
			recover()
		}()
		c.With(func(*int) {
			panic("boom")
		})
	}()
	// The cell must be free again once the panicking access unwinds.
	c.With(func(v *int) {
		*v = 7
	})
	c.With(func(v *int) {
		if *v != 7 {
			t.Errorf("Expected 7, actual %d", *v)
		}
	})
}
