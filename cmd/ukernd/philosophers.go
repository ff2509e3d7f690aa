// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"

	"v.io/x/lib/cmdline"
	"v.io/x/lib/vlog"
	"v.io/x/ukern/deadlock"
	"v.io/x/ukern/sync"
	"v.io/x/ukern/task"
)

var cmdPhilosophers = &cmdline.Command{
	Runner: cmdline.RunnerFunc(runPhilosophers),
	Name:   "philosophers",
	Short:  "Run the dining philosophers",
	Long: `
Dining philosophers on blocking mutexes.  Each philosopher alternates
between thinking and eating, taking the two forks next to it for every
meal.  By default the last philosopher takes its forks in reversed
order, which breaks the circular wait and lets everyone finish.  With
-deadlock every philosopher takes its left fork first; a monitor task
runs the deadlock detector and halts the kernel once the circular wait
has formed.
`,
}

var (
	flagPhilosophers int
	flagRounds       int
	flagDeadlock     bool
)

func init() {
	cmdPhilosophers.Flags.IntVar(&flagPhilosophers, "philosophers", 5, "number of philosophers at the table")
	cmdPhilosophers.Flags.IntVar(&flagRounds, "rounds", 3, "number of meals per philosopher")
	cmdPhilosophers.Flags.BoolVar(&flagDeadlock, "deadlock", false, "take the left fork first everywhere, forming a circular wait")
}

func runPhilosophers(env *cmdline.Env, args []string) error {
	if len(args) != 0 {
		return env.UsageErrorf("expected 0 args, got %d", len(args))
	}
	if flagPhilosophers < 2 {
		return env.UsageErrorf("need at least 2 philosophers, got %d", flagPhilosophers)
	}
	if flagRounds < 1 {
		return env.UsageErrorf("need at least 1 round, got %d", flagRounds)
	}
	return philosophers(env.Stdout, flagPhilosophers, flagRounds, flagDeadlock, flagStats)
}

func philosophers(out io.Writer, n, rounds int, leftFirst, dump bool) error {
	k := task.NewKernel(task.Options{Name: "philosophers"})
	forks := make([]*sync.MutexBlocking, n)
	resources := make([]sync.Resource, n)
	for i := range forks {
		forks[i] = sync.NewMutexBlocking(k)
		resources[i] = forks[i]
	}

	meals := make([]int, n)
	for i := 0; i != n; i++ {
		i := i
		k.Spawn(func() {
			first, second := forks[i], forks[(i+1)%n]
			if !leftFirst && i == n-1 {
				// Reversing one philosopher's order breaks the circular wait.
				first, second = second, first
			}
			for r := 0; r != rounds; r++ {
				first.Lock()
				// Thinking with one fork in hand gives the neighbors a turn.
				k.SuspendCurrentAndRunNext()
				second.Lock()
				meals[i]++
				vlog.VI(1).Infof("philosopher %d finished meal %d", i, meals[i])
				second.Unlock()
				first.Unlock()
				k.SuspendCurrentAndRunNext()
			}
		})
	}

	var report deadlock.Report
	k.Spawn(func() {
		d := deadlock.Detector{Name: "philosophers"}
		for k.LiveTasks() > 1 {
			report = d.Check(resources...)
			if report.Deadlock() {
				k.Halt()
				return
			}
			k.SuspendCurrentAndRunNext()
		}
	})
	k.RunTasks()

	if report.Deadlock() {
		fmt.Fprintf(out, "deadlock detected: tasks %v\n", report.Deadlocked)
		if report.Cycles != "" {
			fmt.Fprintf(out, "circular wait: %s\n", report.Cycles)
		}
	} else {
		for i, m := range meals {
			fmt.Fprintf(out, "philosopher %d ate %d times\n", i, m)
		}
		fmt.Fprintf(out, "no deadlock\n")
	}
	if dump {
		dumpStats(out, "philosophers")
	}
	return nil
}
