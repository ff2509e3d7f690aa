// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats_test

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	libstats "v.io/x/ukern/stats"
)

func doWalk(root string) []libstats.KeyValue {
	out := []libstats.KeyValue{}
	for it := libstats.Walk(root); it.Advance(); {
		out = append(out, it.Value())
	}
	return out
}

func TestRegistry(t *testing.T) {
	dispatches := libstats.NewCounter("sched/run/dispatches")
	load := libstats.NewFloat("sched/run/load")
	state := libstats.NewString("sched/run/state")

	dispatches.Set(4)
	dispatches.Incr(1)
	load.Set(0.75)
	state.Set("running")

	v, err := libstats.Value("sched/run/dispatches")
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if got, want := v, int64(5); got != want {
		t.Errorf("Expected %v, got %v instead", want, got)
	}
	if got, want := dispatches.IntValue(), int64(5); got != want {
		t.Errorf("Expected %v, got %v instead", want, got)
	}
	if v, err = libstats.Value("sched/run/load"); err != nil || v != 0.75 {
		t.Errorf("Expected 0.75, got %v (err=%v)", v, err)
	}
	if v, err = libstats.Value("sched/run/state"); err != nil || v != "running" {
		t.Errorf("Expected running, got %v (err=%v)", v, err)
	}
	if dispatches.LastUpdate().IsZero() {
		t.Errorf("Expected a last-update time after Set")
	}

	if _, err := libstats.Value("sched/run/nothing"); !errors.Is(err, libstats.ErrNoExist) {
		t.Errorf("Expected ErrNoExist, got %v instead", err)
	}

	// Registering the same name again replaces the object.
	libstats.NewInteger("sched/run/dispatches").Set(-1)
	if v, err = libstats.Value("sched/run/dispatches"); err != nil || v != int64(-1) {
		t.Errorf("Expected -1 after replacement, got %v (err=%v)", v, err)
	}
}

func TestWalk(t *testing.T) {
	libstats.NewInteger("walk/tasks/live").Set(3)
	libstats.NewInteger("walk/tasks/ready").Set(2)
	libstats.NewString("walk/boot-id").Set("bid")

	if got, want := doWalk("walk/tasks"), []libstats.KeyValue{
		{Key: "live", Value: int64(3)},
		{Key: "ready", Value: int64(2)},
	}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %#v, got %#v instead", want, got)
	}

	// Walking an exact name yields that object with an empty key.
	if got, want := doWalk("walk/boot-id"), []libstats.KeyValue{
		{Key: "", Value: "bid"},
	}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %#v, got %#v instead", want, got)
	}

	if got := doWalk("walk/none"); len(got) != 0 {
		t.Errorf("Expected an empty walk, got %#v", got)
	}

	// The iterator holds a snapshot; later updates don't show through.
	it := libstats.Walk("walk/tasks")
	libstats.NewInteger("walk/tasks/live").Set(100)
	for it.Advance() {
		if kv := it.Value(); kv.Key == "live" && kv.Value != int64(3) {
			t.Errorf("Expected the snapshot value 3, got %v instead", kv.Value)
		}
	}
}

func TestFuncObjects(t *testing.T) {
	n := int64(0)
	libstats.NewIntegerFunc("funcs/calls", func() int64 { n++; return n })
	libstats.NewFloatFunc("funcs/ratio", func() float64 { return float64(n) / 2 })
	libstats.NewStringFunc("funcs/mode", func() string { return fmt.Sprintf("gen-%d", n) })

	if v, err := libstats.Value("funcs/calls"); err != nil || v != int64(1) {
		t.Errorf("Expected 1, got %v (err=%v)", v, err)
	}
	// The function runs on every read.
	if v, err := libstats.Value("funcs/calls"); err != nil || v != int64(2) {
		t.Errorf("Expected 2, got %v (err=%v)", v, err)
	}
	if v, err := libstats.Value("funcs/ratio"); err != nil || v != float64(1) {
		t.Errorf("Expected 1, got %v (err=%v)", v, err)
	}
	if v, err := libstats.Value("funcs/mode"); err != nil || v != "gen-2" {
		t.Errorf("Expected gen-2, got %v (err=%v)", v, err)
	}
}

func TestMap(t *testing.T) {
	m := libstats.NewMap("syscalls/counts")
	m.Set([]libstats.KeyValue{
		{Key: "yield", Value: uint64(1)},
		{Key: "gettime", Value: 2},
		{Key: "load", Value: float64(10)},
	})

	// The map itself reports nil; the contents appear as children.
	if v, err := libstats.Value("syscalls/counts"); err != nil || v != nil {
		t.Errorf("Expected nil, got %v (err=%v)", v, err)
	}
	if got, want := doWalk("syscalls/counts"), []libstats.KeyValue{
		{Key: "", Value: nil},
		{Key: "gettime", Value: int64(2)},
		{Key: "load", Value: float64(10)},
		{Key: "yield", Value: uint64(1)},
	}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %#v, got %#v instead", want, got)
	}

	// Incr preserves the type of the existing value.
	incrs := []struct {
		key   string
		delta int64
		want  interface{}
	}{
		{"yield", 2, uint64(3)},
		{"yield", -1, uint64(2)},
		{"gettime", 5, int64(7)},
		{"load", -2, float64(8)},
		{"trap", -2, int64(-2)},
	}
	for _, incr := range incrs {
		if got := m.Incr(incr.key, incr.delta); got != incr.want {
			t.Errorf("Incr(%q, %d): Expected %v, got %v instead", incr.key, incr.delta, incr.want, got)
		}
		if v, err := libstats.Value("syscalls/counts/" + incr.key); err != nil || v != incr.want {
			t.Errorf("%s: Expected %v, got %v (err=%v)", incr.key, incr.want, v, err)
		}
	}

	m.Delete([]string{"yield"})
	if _, err := libstats.Value("syscalls/counts/yield"); !errors.Is(err, libstats.ErrNoExist) {
		t.Errorf("Expected ErrNoExist after delete, got %v instead", err)
	}
	if got, want := m.Keys(), []string{"gettime", "load", "trap"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected keys %v, got %v instead", want, got)
	}
}

func TestDelete(t *testing.T) {
	libstats.NewInteger("del/tree/one").Set(1)
	libstats.NewInteger("del/tree/two").Set(2)
	libstats.NewInteger("del/leaf").Set(3)

	if err := libstats.Delete("del/tree"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	for _, name := range []string{"del/tree/one", "del/tree/two"} {
		if _, err := libstats.GetStatsObject(name); !errors.Is(err, libstats.ErrNoExist) {
			t.Errorf("%s: Expected ErrNoExist, got %v instead", name, err)
		}
	}
	if _, err := libstats.GetStatsObject("del/leaf"); err != nil {
		t.Errorf("Expected del/leaf to survive, got %v", err)
	}
	if err := libstats.Delete("del/tree"); !errors.Is(err, libstats.ErrNoExist) {
		t.Errorf("Expected ErrNoExist on a second delete, got %v instead", err)
	}
	if err := libstats.Delete("del/leaf"); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := libstats.NewCounter("conc/total")
	var wg sync.WaitGroup
	for i := 0; i != 8; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := fmt.Sprintf("conc/worker-%d", i)
			libstats.NewInteger(name).Set(int64(i))
			for j := 0; j != 100; j++ {
				c.Incr(1)
				doWalk("conc")
			}
		}()
	}
	wg.Wait()
	if got, want := c.IntValue(), int64(800); got != want {
		t.Errorf("Expected %v, got %v instead", want, got)
	}
	if got, want := len(doWalk("conc")), 9; got != want {
		t.Errorf("Expected %d objects, got %d instead", want, got)
	}
}
