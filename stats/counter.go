// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

// Counter implements the StatsObject interface.  Unlike Integer it is
// meant for monotonically advancing values sampled by collectors; the
// two are kept as distinct types so call sites document their intent.
type Counter struct {
	Integer
}

// NewCounter creates a new Counter StatsObject with the given name and
// returns a pointer to it.
func NewCounter(name string) *Counter {
	c := Counter{}
	add(name, &c)
	return &c
}
