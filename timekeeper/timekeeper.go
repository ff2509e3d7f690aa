// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package timekeeper defines the clock a kernel runs against, and allows
// switching between real time and simulated time.  Task start times, run
// times and sleep deadlines all come from the same TimeKeeper, so tests
// can drive them with a manual clock.
package timekeeper

import "time"

// TimeKeeper hides the time package behind an interface, so code that
// waits on the clock can run against simulated time.  What a duration
// means is up to the implementation.
type TimeKeeper interface {
	// After returns a channel on which the current time is sent once d
	// has elapsed.
	After(d time.Duration) <-chan time.Time
	// Sleep pauses the calling goroutine for at least d.  Non-positive
	// durations return immediately.
	Sleep(d time.Duration)
	// Now returns the current time.
	Now() time.Time
}

// realTime delegates to the time package.
type realTime struct{}

// RealTime returns the TimeKeeper backed by the system clock.
func RealTime() TimeKeeper {
	return realTime{}
}

func (realTime) After(d time.Duration) <-chan time.Time { return time.After(d) }
func (realTime) Sleep(d time.Duration)                  { time.Sleep(d) }
func (realTime) Now() time.Time                         { return time.Now() }
