// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package task

import "slices"

// TID is the task identifier type.  The zero TID is never assigned to a
// task, so it can stand for "no task".
type TID int

// SortTIDs sorts task identifiers in increasing order, in place.
func SortTIDs(tids []TID) {
	slices.Sort(tids)
}

// TIDGenerator returns a function that hands out task identifiers,
// starting from 1.
func TIDGenerator() func() TID {
	var last TID
	return func() TID {
		last++
		return last
	}
}
