// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package deadlock detects unresolvable contention over the resource
// accounting that the sync primitives expose.  A detection pass snapshots
// each resource once and decides, by a banker-style feasibility argument,
// which tasks can still run to completion: a task with its demands
// covered by the free units is assumed to finish and return what it
// holds, growing the free pool for the rest.  Tasks left over when no
// more progress can be assumed are deadlocked.
//
// Detection runs on kernel context: call it from a task, typically a
// dedicated monitor spawned alongside the workload.
package deadlock

import (
	"fmt"

	"v.io/x/lib/toposort"
	"v.io/x/lib/vlog"
	"v.io/x/ukern/sync"
	"v.io/x/ukern/task"
)

// Detector runs detection passes.  The zero value is ready to use.
type Detector struct {
	// Name tags the detector's log lines.  Defaults to "detector".
	Name string
}

// Report is the outcome of one detection pass.
type Report struct {
	// Deadlocked lists the tasks that cannot make progress, in
	// increasing tid order.  Empty when the snapshot is feasible.
	Deadlocked []task.TID
	// Cycles names the wait-for cycles among the deadlocked tasks, empty
	// when none were found.  Multi-unit resources can deadlock without a
	// single-unit cycle, so Deadlocked is authoritative and Cycles is
	// diagnostic.
	Cycles string
}

// Deadlock reports whether the pass found stuck tasks.
func (r Report) Deadlock() bool {
	return len(r.Deadlocked) > 0
}

// snapshot is one resource's accounting, read exactly once per pass.
// The accounting interface promises nothing across two calls, so the
// pass runs on these copies.
type snapshot struct {
	available  uint
	allocation []sync.Claim
	need       []sync.Claim
}

// Check runs one detection pass over resources.
func (d *Detector) Check(resources ...sync.Resource) Report {
	name := d.Name
	if name == "" {
		name = "detector"
	}
	snaps := make([]snapshot, len(resources))
	for i, r := range resources {
		snaps[i] = snapshot{r.Available(), r.Allocation(), r.Need()}
	}

	// Per-task allocation and demand vectors indexed by resource.
	alloc := map[task.TID][]uint{}
	need := map[task.TID][]uint{}
	vector := func(m map[task.TID][]uint, tid task.TID) []uint {
		v, ok := m[tid]
		if !ok {
			v = make([]uint, len(resources))
			m[tid] = v
		}
		return v
	}
	for i, s := range snaps {
		for _, c := range s.allocation {
			vector(alloc, c.TID)[i] += c.Units
		}
		for _, c := range s.need {
			vector(need, c.TID)[i] += c.Units
		}
	}
	tidSet := map[task.TID]bool{}
	for tid := range alloc {
		tidSet[tid] = true
	}
	for tid := range need {
		tidSet[tid] = true
	}
	tids := make([]task.TID, 0, len(tidSet))
	for tid := range tidSet {
		tids = append(tids, tid)
	}
	task.SortTIDs(tids)

	work := make([]uint, len(resources))
	for i, s := range snaps {
		work[i] = s.available
	}
	finished := map[task.TID]bool{}
	for progress := true; progress; {
		progress = false
		for _, tid := range tids {
			if finished[tid] || !covered(need[tid], work) {
				continue
			}
			for i, units := range alloc[tid] {
				work[i] += units
			}
			finished[tid] = true
			progress = true
		}
	}

	var report Report
	for _, tid := range tids {
		if !finished[tid] {
			report.Deadlocked = append(report.Deadlocked, tid)
		}
	}
	if !report.Deadlock() {
		vlog.VI(1).Infof("deadlock[%s]: %d resources, %d tasks, feasible", name, len(resources), len(tids))
		return report
	}
	report.Cycles = dumpCycles(snaps, report.Deadlocked)
	vlog.Errorf("deadlock[%s]: tasks %v cannot make progress %s", name, report.Deadlocked, report.Cycles)
	return report
}

// covered reports whether every demanded unit is covered by the free
// pool.  A task with no recorded demand is trivially covered.
func covered(need, work []uint) bool {
	for i, n := range need {
		if n > work[i] {
			return false
		}
	}
	return true
}

// dumpCycles names the wait-for cycles among the stuck tasks: a waiter
// depends on every holder of the resource it is parked on.
func dumpCycles(snaps []snapshot, stuck []task.TID) string {
	stuckSet := map[task.TID]bool{}
	for _, tid := range stuck {
		stuckSet[tid] = true
	}
	var sorter toposort.Sorter
	for _, tid := range stuck {
		sorter.AddNode(tid)
	}
	for _, s := range snaps {
		for _, w := range s.need {
			if !stuckSet[w.TID] {
				continue
			}
			for _, h := range s.allocation {
				if !stuckSet[h.TID] || h.TID == w.TID {
					continue
				}
				sorter.AddEdge(w.TID, h.TID)
			}
		}
	}
	_, cycles := sorter.Sort()
	if len(cycles) == 0 {
		return ""
	}
	return toposort.DumpCycles(cycles, func(v interface{}) string {
		return fmt.Sprintf("task %d", v.(task.TID))
	})
}
