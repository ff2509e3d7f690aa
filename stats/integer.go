// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import (
	"sync"
	"time"
)

// Integer implements the StatsObject interface.
type Integer struct {
	mu         sync.RWMutex
	value      int64
	lastUpdate time.Time
}

// NewInteger creates a new Integer StatsObject with the given name and
// returns a pointer to it.
func NewInteger(name string) *Integer {
	i := Integer{}
	add(name, &i)
	return &i
}

// Set sets the value of the object.
func (i *Integer) Set(value int64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.lastUpdate = time.Now()
	i.value = value
}

// Incr increments the value of the object.
func (i *Integer) Incr(delta int64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.value += delta
	i.lastUpdate = time.Now()
}

// LastUpdate returns the time at which the object was last updated.
func (i *Integer) LastUpdate() time.Time {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.lastUpdate
}

// Value returns the value of the object.
func (i *Integer) Value() interface{} {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.value
}

// IntValue returns the value of the object as an int64.
func (i *Integer) IntValue() int64 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.value
}

// integerFunc implements the StatsObject interface by calling a
// user-supplied function.
type integerFunc struct {
	value func() int64
}

// NewIntegerFunc creates a new StatsObject whose value is derived from
// the given function.
func NewIntegerFunc(name string, value func() int64) {
	add(name, integerFunc{value})
}

func (f integerFunc) LastUpdate() time.Time { return time.Now() }
func (f integerFunc) Value() interface{}    { return f.value() }
