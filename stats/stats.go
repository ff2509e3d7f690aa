// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stats implements a global repository of stats objects.  Each
// object has a name and a value.  Example:
//
//	bar1 := stats.NewInteger("foo/bar1")
//	bar2 := stats.NewFloat("foo/bar2")
//	bar3 := stats.NewCounter("foo/bar3")
//	bar1.Set(1)
//	bar2.Set(2)
//	bar3.Set(3)
//
// The values can later be retrieved with:
//
//	v, err := stats.Value("foo/bar1")
package stats

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrNoExist is returned when a stats object is not found.
var ErrNoExist = errors.New("stats object does not exist")

// StatsObject is the interface for objects stored in the stats
// repository.
type StatsObject interface {
	// LastUpdate is used by WatchGlob to decide which updates to send.
	LastUpdate() time.Time
	// Value returns the current value of the object.
	Value() interface{}
}

// KeyValue stores a Key and a Value.
type KeyValue struct {
	Key   string
	Value interface{}
}

var (
	repoLock sync.RWMutex
	repo     = map[string]StatsObject{}
)

// add registers the object under name, replacing any previous object
// with that name.
func add(name string, obj StatsObject) {
	repoLock.Lock()
	defer repoLock.Unlock()
	repo[name] = obj
}

// remove unregisters name.
func remove(name string) {
	repoLock.Lock()
	defer repoLock.Unlock()
	delete(repo, name)
}

// GetStatsObject returns the object with the given name, or ErrNoExist
// if it doesn't exist.
func GetStatsObject(name string) (StatsObject, error) {
	repoLock.RLock()
	defer repoLock.RUnlock()
	obj, ok := repo[name]
	if !ok {
		return nil, ErrNoExist
	}
	return obj, nil
}

// Value returns the value of the object with the given name, or
// ErrNoExist if it doesn't exist.
func Value(name string) (interface{}, error) {
	obj, err := GetStatsObject(name)
	if err != nil {
		return nil, err
	}
	return obj.Value(), nil
}

// Delete deletes the object with the given name and all its children,
// if any.  Returns ErrNoExist if neither the name nor any child of it
// is registered.
func Delete(name string) error {
	prefix := name + "/"
	repoLock.Lock()
	defer repoLock.Unlock()
	found := false
	if _, ok := repo[name]; ok {
		found = true
		delete(repo, name)
	}
	for n := range repo {
		if strings.HasPrefix(n, prefix) {
			found = true
			delete(repo, n)
		}
	}
	if !found {
		return ErrNoExist
	}
	return nil
}

// Walk returns an iterator over the objects whose name is root or lies
// under root, in lexicographic key order.  The returned keys are
// relative to root.  It takes a snapshot of the repository; objects
// added or deleted during the iteration are not reflected.
func Walk(root string) *Iterator {
	prefix := ""
	if root != "" {
		prefix = root + "/"
	}
	type entry struct {
		key string
		obj StatsObject
	}
	repoLock.RLock()
	entries := make([]entry, 0, len(repo))
	for n, obj := range repo {
		if n == root {
			entries = append(entries, entry{key: "", obj: obj})
			continue
		}
		if strings.HasPrefix(n, prefix) {
			entries = append(entries, entry{key: strings.TrimPrefix(n, prefix), obj: obj})
		}
	}
	repoLock.RUnlock()
	// Values are read outside of the repository lock; some objects take
	// locks of their own to produce them.
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })
	kvs := make([]KeyValue, len(entries))
	for i, e := range entries {
		kvs[i] = KeyValue{Key: e.key, Value: e.obj.Value()}
	}
	return &Iterator{kvs: kvs, index: -1}
}

// Iterator iterates over a snapshot of stats objects.
type Iterator struct {
	kvs   []KeyValue
	index int
}

// Advance stages the next element so that the client can retrieve it
// with Value.  It returns true iff there is an element to retrieve.
func (it *Iterator) Advance() bool {
	it.index++
	return it.index < len(it.kvs)
}

// Value returns the element that was staged by Advance.
func (it *Iterator) Value() KeyValue {
	return it.kvs[it.index]
}
