// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import (
	"sort"
	"sync"
	"time"
)

// Map implements the StatsObject interface.  The map keys appear in the
// repository as children of the map's name.
type Map struct {
	name       string
	mu         sync.RWMutex
	value      map[string]mapValue // GUARDED_BY(mu)
	lastUpdate time.Time           // GUARDED_BY(mu)
}

type mapValue struct {
	lastUpdate time.Time
	value      interface{}
}

// NewMap creates a new Map StatsObject with the given name and returns
// a pointer to it.
func NewMap(name string) *Map {
	m := Map{name: name, value: make(map[string]mapValue)}
	add(name, &m)
	return &m
}

// Set sets the values of the map.  Integer values are normalized to
// int64.
func (m *Map) Set(kvpairs []KeyValue) {
	now := time.Now()
	var added []string
	m.mu.Lock()
	for _, kv := range kvpairs {
		if _, ok := m.value[kv.Key]; !ok {
			added = append(added, kv.Key)
		}
		m.value[kv.Key] = mapValue{now, normalize(kv.Value)}
	}
	m.lastUpdate = now
	m.mu.Unlock()
	// Registered outside of mu to keep the lock ordering one-way.
	for _, key := range added {
		add(m.name+"/"+key, mapChild{m, key})
	}
}

// Incr increments the value of the given key by delta, creating it with
// the value delta if it doesn't exist, and returns the new value.  The
// existing value's type is preserved.
func (m *Map) Incr(key string, delta int64) interface{} {
	now := time.Now()
	created := false
	m.mu.Lock()
	old, ok := m.value[key]
	var value interface{}
	if !ok {
		created = true
		value = delta
	} else {
		switch v := old.value.(type) {
		case int64:
			value = v + delta
		case uint64:
			if delta >= 0 {
				value = v + uint64(delta)
			} else {
				value = v - uint64(-delta)
			}
		case float64:
			value = v + float64(delta)
		default:
			m.mu.Unlock()
			return nil
		}
	}
	m.value[key] = mapValue{now, value}
	m.lastUpdate = now
	m.mu.Unlock()
	if created {
		add(m.name+"/"+key, mapChild{m, key})
	}
	return value
}

// Delete deletes the given keys from the map object.
func (m *Map) Delete(keys []string) {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.value, k)
	}
	m.lastUpdate = time.Now()
	m.mu.Unlock()
	for _, k := range keys {
		remove(m.name + "/" + k)
	}
}

// Keys returns a sorted list of all the keys in the map.
func (m *Map) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := []string{}
	for k := range m.value {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LastUpdate returns the time at which the object was last updated.
func (m *Map) LastUpdate() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastUpdate
}

// Value returns nil.  The map's contents are exposed through its
// children.
func (m *Map) Value() interface{} {
	return nil
}

// mapChild gives one key of a Map a presence in the repository.
type mapChild struct {
	m   *Map
	key string
}

func (c mapChild) LastUpdate() time.Time {
	c.m.mu.RLock()
	defer c.m.mu.RUnlock()
	return c.m.value[c.key].lastUpdate
}

func (c mapChild) Value() interface{} {
	c.m.mu.RLock()
	defer c.m.mu.RUnlock()
	return c.m.value[c.key].value
}

func normalize(v interface{}) interface{} {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return uint64(x)
	case uint8:
		return uint64(x)
	case uint16:
		return uint64(x)
	case uint32:
		return uint64(x)
	case float32:
		return float64(x)
	}
	return v
}
