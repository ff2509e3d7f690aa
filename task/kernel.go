// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package task

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"v.io/x/lib/vlog"
	"v.io/x/ukern/internal/upcell"
	"v.io/x/ukern/stats"
	"v.io/x/ukern/timekeeper"
)

// Options configures a Kernel.
type Options struct {
	// Name tags the kernel's log lines and stats entries.  Defaults to
	// "kernel".
	Name string
	// TimeKeeper supplies the kernel clock.  Defaults to real time.
	TimeKeeper timekeeper.TimeKeeper
	// RunForever keeps the idle flow parked when every spawned task has
	// exited, instead of returning from RunTasks.  Halt still stops it.
	RunForever bool
}

// TaskConfig describes a task to spawn.
type TaskConfig struct {
	// Entry is the task body.  The task exits when it returns.
	Entry func()
	// UserToken is the address space token returned by CurrentUserToken
	// while the task runs.
	UserToken UserToken
	// Trap is the handle returned by CurrentTrapContext while the task
	// runs.
	Trap TrapContext
}

// Kernel ties together the ready queue, the processor, the timers and
// the clock of one simulated uniprocessor.  Kernels are independent of
// each other; a task belongs to the kernel that spawned it.
type Kernel struct {
	name       string
	bootID     uuid.UUID
	tk         timekeeper.TimeKeeper
	bootTime   time.Time
	runForever bool

	mcell *upcell.Cell[TaskManager]
	pcell *upcell.Cell[Processor]
	tcell *upcell.Cell[timerHeap]

	nextTID func() TID
	live    atomic.Int64
	halted  atomic.Bool
	// kick nudges the idle flow out of idleWait.  Capacity 1: a single
	// pending nudge is enough, extra ones are dropped.
	kick chan struct{}

	stats kernelStats
}

// kernelStats counts scheduling events.  The counters are exported under
// ukern/<name>/ in the stats registry.
type kernelStats struct {
	spawns     *stats.Integer
	dispatches *stats.Integer
	yields     *stats.Integer
	blocks     *stats.Integer
	wakeups    *stats.Integer
	exits      *stats.Integer
	idles      *stats.Integer
}

// NewKernel creates an idle kernel.  Spawn tasks onto it, then call
// RunTasks to start dispatching.
func NewKernel(opts Options) *Kernel {
	name := opts.Name
	if name == "" {
		name = "kernel"
	}
	tk := opts.TimeKeeper
	if tk == nil {
		tk = timekeeper.RealTime()
	}
	id, err := uuid.NewUUID()
	if err != nil {
		panic(err)
	}
	k := &Kernel{
		name:       name,
		bootID:     id,
		tk:         tk,
		bootTime:   tk.Now(),
		runForever: opts.RunForever,
		mcell:      upcell.New(TaskManager{}),
		pcell:      upcell.New(Processor{idleCx: newTaskContext()}),
		tcell:      upcell.New(timerHeap{}),
		nextTID:    TIDGenerator(),
		kick:       make(chan struct{}, 1),
	}
	k.initStats()
	return k
}

func (k *Kernel) initStats() {
	prefix := "ukern/" + k.name
	k.stats.spawns = stats.NewInteger(prefix + "/spawns")
	k.stats.dispatches = stats.NewInteger(prefix + "/dispatches")
	k.stats.yields = stats.NewInteger(prefix + "/yields")
	k.stats.blocks = stats.NewInteger(prefix + "/blocks")
	k.stats.wakeups = stats.NewInteger(prefix + "/wakeups")
	k.stats.exits = stats.NewInteger(prefix + "/exits")
	k.stats.idles = stats.NewInteger(prefix + "/idles")
	stats.NewString(prefix + "/boot-id").Set(k.bootID.String())
	stats.NewIntegerFunc(prefix+"/live-tasks", func() int64 { return k.LiveTasks() })
	stats.NewIntegerFunc(prefix+"/ready-tasks", func() int64 { return int64(k.ReadyTasks()) })
}

// Name returns the kernel's name.
func (k *Kernel) Name() string {
	return k.name
}

// BootID returns the unique identifier minted for this kernel instance.
func (k *Kernel) BootID() uuid.UUID {
	return k.bootID
}

// LiveTasks returns the number of spawned tasks that have not exited.
func (k *Kernel) LiveTasks() int64 {
	return k.live.Load()
}

// NowMicros reads the kernel clock in microseconds since boot.
func (k *Kernel) NowMicros() int64 {
	return k.nowMicros()
}

func (k *Kernel) nowMicros() int64 {
	return k.tk.Now().Sub(k.bootTime).Microseconds()
}

// kickIdle nudges the idle flow if it is parked waiting for work.
func (k *Kernel) kickIdle() {
	select {
	case k.kick <- struct{}{}:
	default:
	}
}

// Spawn creates a task that runs entry and places it on the ready queue.
func (k *Kernel) Spawn(entry func()) *TCB {
	return k.SpawnTask(TaskConfig{Entry: entry})
}

// SpawnTask creates a task from cfg and places it on the ready queue.
// Spawning is only safe from a task already running on this kernel, or
// from the host before RunTasks starts.
func (k *Kernel) SpawnTask(cfg TaskConfig) *TCB {
	if cfg.Entry == nil {
		panic("Spawning a task with no entry.")
	}
	t := newTCB(k.nextTID(), cfg)
	k.live.Add(1)
	k.stats.spawns.Incr(1)
	go func() {
		// The handoff must be the last thing the dying goroutine does, so
		// deferred calls in the task body finish before the idle flow
		// resumes.
		defer k.resumeIdle()
		t.cx.park()
		cfg.Entry()
		k.exitCurrent()
	}()
	k.AddTask(t)
	vlog.VI(2).Infof("ukern[%v]: spawned task %v", k.name, t.tid)
	return t
}

// Halt stops the idle flow: RunTasks returns at its next iteration.
// Tasks that have not exited stay parked on their contexts.  Safe to
// call from a task or from the host.
func (k *Kernel) Halt() {
	k.halted.Store(true)
	k.kickIdle()
}

// Halted reports whether Halt has been called.
func (k *Kernel) Halted() bool {
	return k.halted.Load()
}
