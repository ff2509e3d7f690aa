// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"

	"v.io/x/lib/cmdline"
	"v.io/x/lib/vlog"
	"v.io/x/ukern/task"
)

var cmdStride = &cmdline.Command{
	Runner: cmdline.RunnerFunc(runStride),
	Name:   "stride",
	Short:  "Show the stride scheduler's proportional shares",
	Long: `
Spawns one yielding task per priority and runs the kernel through a
fixed number of dispatches.  Each task's share of the dispatches
settles near its share of the priority sum, which is what stride
scheduling is for.
`,
}

var flagDispatches int

func init() {
	cmdStride.Flags.IntVar(&flagDispatches, "dispatches", 600, "total number of dispatches to hand out")
}

func runStride(env *cmdline.Env, args []string) error {
	if len(args) != 0 {
		return env.UsageErrorf("expected 0 args, got %d", len(args))
	}
	if flagDispatches < 1 {
		return env.UsageErrorf("need at least 1 dispatch, got %d", flagDispatches)
	}
	return stride(env.Stdout, flagDispatches, flagStats)
}

func stride(out io.Writer, total int, dump bool) error {
	k := task.NewKernel(task.Options{Name: "stride"})
	priorities := []int64{2, 4, 8, 16}
	counts := make([]int, len(priorities))

	remaining := total
	for i, p := range priorities {
		i, p := i, p
		k.Spawn(func() {
			if _, err := k.SetPriority(p); err != nil {
				vlog.Fatalf("SetPriority(%d) failed: %v", p, err)
			}
			for remaining > 0 {
				remaining--
				counts[i]++
				k.SuspendCurrentAndRunNext()
			}
		})
	}
	k.RunTasks()

	var sum int64
	for _, p := range priorities {
		sum += p
	}
	for i, p := range priorities {
		share := 100 * float64(counts[i]) / float64(total)
		ideal := 100 * float64(p) / float64(sum)
		fmt.Fprintf(out, "priority %d: %d dispatches (%.1f%%, ideal %.1f%%)\n", p, counts[i], share, ideal)
	}
	if dump {
		dumpStats(out, "stride")
	}
	return nil
}
