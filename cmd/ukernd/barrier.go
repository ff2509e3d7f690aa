// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"

	"v.io/x/lib/cmdline"
	"v.io/x/ukern/sync"
	"v.io/x/ukern/task"
)

var cmdBarrier = &cmdline.Command{
	Runner: cmdline.RunnerFunc(runBarrier),
	Name:   "barrier",
	Short:  "Run a semaphore rendezvous",
	Long: `
Workers arrive at a barrier built from a mutex-protected count and a
semaphore turnstile.  No worker proceeds until the last one has
arrived; the last worker releases one turnstile unit per waiter.
`,
}

var flagWorkers int

func init() {
	cmdBarrier.Flags.IntVar(&flagWorkers, "workers", 4, "number of workers meeting at the barrier")
}

func runBarrier(env *cmdline.Env, args []string) error {
	if len(args) != 0 {
		return env.UsageErrorf("expected 0 args, got %d", len(args))
	}
	if flagWorkers < 1 {
		return env.UsageErrorf("need at least 1 worker, got %d", flagWorkers)
	}
	return barrier(env.Stdout, flagWorkers, flagStats)
}

func barrier(out io.Writer, n int, dump bool) error {
	k := task.NewKernel(task.Options{Name: "barrier"})
	mu := sync.NewMutexBlocking(k)
	turnstile := sync.NewSemaphore(k, 0)

	arrived := 0
	for i := 0; i != n; i++ {
		i := i
		k.Spawn(func() {
			fmt.Fprintf(out, "worker %d arrives\n", i)
			mu.Lock()
			arrived++
			last := arrived == n
			mu.Unlock()
			if last {
				for j := 0; j != n-1; j++ {
					turnstile.Up()
				}
			} else {
				turnstile.Down()
			}
			fmt.Fprintf(out, "worker %d proceeds\n", i)
		})
	}
	k.RunTasks()

	fmt.Fprintf(out, "all %d workers through the barrier\n", n)
	if dump {
		dumpStats(out, "barrier")
	}
	return nil
}
