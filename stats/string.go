// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import (
	"sync"
	"time"
)

// String implements the StatsObject interface.
type String struct {
	mu         sync.RWMutex
	value      string
	lastUpdate time.Time
}

// NewString creates a new String StatsObject with the given name and
// returns a pointer to it.
func NewString(name string) *String {
	s := String{}
	add(name, &s)
	return &s
}

// Set sets the value of the object.
func (s *String) Set(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUpdate = time.Now()
	s.value = value
}

// LastUpdate returns the time at which the object was last updated.
func (s *String) LastUpdate() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdate
}

// Value returns the value of the object.
func (s *String) Value() interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// stringFunc implements the StatsObject interface by calling a
// user-supplied function.
type stringFunc struct {
	value func() string
}

// NewStringFunc creates a new StatsObject whose value is derived from
// the given function.
func NewStringFunc(name string, value func() string) {
	add(name, stringFunc{value})
}

func (f stringFunc) LastUpdate() time.Time { return time.Now() }
func (f stringFunc) Value() interface{}    { return f.value() }
