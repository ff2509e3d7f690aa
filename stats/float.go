// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import (
	"sync"
	"time"
)

// Float implements the StatsObject interface.
type Float struct {
	mu         sync.RWMutex
	value      float64
	lastUpdate time.Time
}

// NewFloat creates a new Float StatsObject with the given name and
// returns a pointer to it.
func NewFloat(name string) *Float {
	f := Float{}
	add(name, &f)
	return &f
}

// Set sets the value of the object.
func (f *Float) Set(value float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUpdate = time.Now()
	f.value = value
}

// Incr increments the value of the object.
func (f *Float) Incr(delta float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value += delta
	f.lastUpdate = time.Now()
}

// LastUpdate returns the time at which the object was last updated.
func (f *Float) LastUpdate() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.lastUpdate
}

// Value returns the value of the object.
func (f *Float) Value() interface{} {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.value
}

// floatFunc implements the StatsObject interface by calling a
// user-supplied function.
type floatFunc struct {
	value func() float64
}

// NewFloatFunc creates a new StatsObject whose value is derived from
// the given function.
func NewFloatFunc(name string, value func() float64) {
	add(name, floatFunc{value})
}

func (f floatFunc) LastUpdate() time.Time { return time.Now() }
func (f floatFunc) Value() interface{}    { return f.value() }
