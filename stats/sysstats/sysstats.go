// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sysstats exports statistics about the host process and machine
// into the stats registry.  Importing the package is enough; the values
// refresh in the background.
package sysstats

import (
	"net/url"
	"os"
	"reflect"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"v.io/x/lib/metadata"
	"v.io/x/ukern/stats"
)

// EnvDiskPaths names the environment variable holding a comma-separated
// list of paths to export disk usage stats for.
const EnvDiskPaths = "UKERN_SYS_STATS_DISK_PATHS"

const refreshPeriod = 10 * time.Second

var (
	countersMu sync.Mutex
	counters   = map[string]*stats.Counter{}
)

func init() {
	now := time.Now()
	stats.NewInteger("system/start-time-unix").Set(now.Unix())
	stats.NewString("system/start-time-rfc1123").Set(now.Format(time.RFC1123))
	stats.NewString("system/cmdline").Set(strings.Join(os.Args, " "))
	stats.NewString("system/version").Set(runtime.Version())
	stats.NewInteger("system/pid").Set(int64(os.Getpid()))
	stats.NewInteger("system/num-cpu").Set(int64(runtime.NumCPU()))
	stats.NewIntegerFunc("system/num-goroutine", func() int64 { return int64(runtime.NumGoroutine()) })
	stats.NewIntegerFunc("system/GOMAXPROCS", func() int64 { return int64(runtime.GOMAXPROCS(0)) })
	if hostname, err := os.Hostname(); err == nil {
		stats.NewString("system/hostname").Set(hostname)
	}
	exportEnviron()
	exportMetadata()
	startRefreshers()
}

func exportEnviron() {
	var kv []stats.KeyValue
	for _, entry := range os.Environ() {
		if parts := strings.SplitN(entry, "=", 2); len(parts) == 2 {
			kv = append(kv, stats.KeyValue{Key: parts[0], Value: parts[1]})
		}
	}
	stats.NewMap("system/environ").Set(kv)
}

func exportMetadata() {
	var kv []stats.KeyValue
	for id, value := range metadata.ToMap() {
		kv = append(kv, stats.KeyValue{Key: id, Value: value})
	}
	stats.NewMap("system/metadata").Set(kv)
}

// A refresher produces one round of counter updates.
type refresher func()

// startRefreshers exports the memory stats synchronously, so they are
// available as soon as the package is imported, and then keeps every
// exported group fresh from a single background goroutine.
func startRefreshers() {
	rs := []refresher{refreshMemStats, refreshSysMem, refreshSysCPU}
	rs = append(rs, diskRefreshers()...)
	refreshMemStats()
	go func() {
		for {
			for _, r := range rs {
				r()
			}
			time.Sleep(refreshPeriod)
		}
	}()
}

var memStatsFields = fieldsOf(runtime.MemStats{})

func refreshMemStats() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	setCounters("system/memstats", ms, memStatsFields)
}

var sysMemFields = fieldsOf(mem.VirtualMemoryStat{})

func refreshSysMem() {
	if vm, err := mem.VirtualMemory(); err == nil {
		setCounters("system/sysmem", *vm, sysMemFields)
	}
}

// cpuSample flattens the gopsutil cpu readings into one exportable
// struct.
type cpuSample struct {
	Percent   float64
	User      float64
	System    float64
	Idle      float64
	Nice      float64
	Iowait    float64
	Irq       float64
	Softirq   float64
	Steal     float64
	Guest     float64
	GuestNice float64
}

var sysCPUFields = fieldsOf(cpuSample{})

func refreshSysCPU() {
	// With no interval, Percent measures since the previous call, which
	// makes each refresh an average over one refresh period.
	pcts, err := cpu.Percent(0, false)
	if err != nil || len(pcts) == 0 {
		return
	}
	times, err := cpu.Times(false)
	if err != nil || len(times) == 0 {
		return
	}
	t := times[0]
	setCounters("system/syscpu", cpuSample{
		Percent:   pcts[0],
		User:      t.User,
		System:    t.System,
		Idle:      t.Idle,
		Nice:      t.Nice,
		Iowait:    t.Iowait,
		Irq:       t.Irq,
		Softirq:   t.Softirq,
		Steal:     t.Steal,
		Guest:     t.Guest,
		GuestNice: t.GuestNice,
	}, sysCPUFields)
}

func diskRefreshers() []refresher {
	paths := os.Getenv(EnvDiskPaths)
	if paths == "" {
		return nil
	}
	fields := fieldsOf(disk.UsageStat{})
	var rs []refresher
	for _, path := range strings.Split(paths, ",") {
		path := path
		root := "system/sysdisk/" + url.PathEscape(path)
		rs = append(rs, func() {
			if usage, err := disk.Usage(path); err == nil {
				setCounters(root, *usage, fields)
			}
		})
	}
	return rs
}

// fieldsOf returns the names of the struct fields whose kind the counter
// export can represent.
func fieldsOf(s interface{}) []string {
	var names []string
	v := reflect.ValueOf(s)
	v.FieldByNameFunc(func(name string) bool {
		switch v.FieldByName(name).Kind() {
		case reflect.Bool, reflect.Uint32, reflect.Uint64, reflect.Float64:
			names = append(names, name)
		}
		return false
	})
	return names
}

// setCounters records the named fields of s under root.  The kinds
// mirror the fieldsOf filter.
func setCounters(root string, s interface{}, fields []string) {
	v := reflect.ValueOf(s)
	for _, name := range fields {
		f := v.FieldByName(name)
		var n int64
		switch f.Kind() {
		case reflect.Bool:
			if f.Bool() {
				n = 1
			}
		case reflect.Uint32, reflect.Uint64:
			n = int64(f.Uint())
		case reflect.Float64:
			n = int64(f.Float())
		default:
			continue
		}
		counterFor(root + "/" + name).Set(n)
	}
}

func counterFor(name string) *stats.Counter {
	defer countersMu.Unlock()
	countersMu.Lock()
	c, ok := counters[name]
	if !ok {
		c = stats.NewCounter(name)
		counters[name] = c
	}
	return c
}
