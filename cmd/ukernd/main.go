// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The following enables go generate to generate the doc.go file.
//go:generate go run v.io/x/lib/cmdline/gendoc .

package main

import (
	"fmt"
	"io"

	"v.io/x/lib/cmdline"
	"v.io/x/ukern/stats"
	_ "v.io/x/ukern/stats/sysstats"
)

var flagStats bool

func init() {
	for _, c := range []*cmdline.Command{cmdPhilosophers, cmdStride, cmdBarrier} {
		c.Flags.BoolVar(&flagStats, "stats", false, "Dump the kernel's stats registry once the demo completes.")
	}
}

func main() {
	cmdRoot := &cmdline.Command{
		Name:  "ukernd",
		Short: "Demos for the hosted task kernel",
		Long: `
Command ukernd runs demos built on the hosted task kernel: stride
scheduling, blocking synchronization primitives and deadlock detection.
Each demo boots a fresh kernel, spawns its tasks and prints what
happened.
`,
		Children: []*cmdline.Command{
			cmdPhilosophers,
			cmdStride,
			cmdBarrier,
		},
	}
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(cmdRoot)
}

// dumpStats prints the stats registry subtree of the named kernel.
func dumpStats(w io.Writer, kernel string) {
	it := stats.Walk("ukern/" + kernel)
	for it.Advance() {
		kv := it.Value()
		fmt.Fprintf(w, "%s: %v\n", kv.Key, kv.Value)
	}
}
