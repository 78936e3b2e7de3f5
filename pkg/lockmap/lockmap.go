// Package lockmap provides mutual exclusion per key.
package lockmap

import (
	"sync"
)

// LockMap locks by key: callers holding different keys never block
// each other. Entries are dropped once no caller holds or waits for them.
type LockMap[K comparable] struct {
	mutex   sync.Mutex
	entries map[K]*Entry[K]
}

// Entry is a locked key.
type Entry[K comparable] struct {
	// Value is arbitrary data shared by the holders of the key (one at a
	// time). It survives between holders as long as the entry exists.
	Value any

	locker sync.Mutex
	owner  *LockMap[K]
	key    K
	users  int
}

// New returns an empty LockMap.
func New[K comparable]() *LockMap[K] {
	return &LockMap[K]{
		entries: map[K]*Entry[K]{},
	}
}

// Lock blocks until the key is free and locks it.
func (m *LockMap[K]) Lock(key K) *Entry[K] {
	m.mutex.Lock()
	entry := m.entries[key]
	if entry == nil {
		entry = &Entry[K]{owner: m, key: key}
		m.entries[key] = entry
	}
	entry.users++
	m.mutex.Unlock()

	entry.locker.Lock()
	return entry
}

// Len returns the amount of keys currently held or waited for.
func (m *LockMap[K]) Len() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.entries)
}

// Unlock releases the key.
func (e *Entry[K]) Unlock() {
	e.locker.Unlock()

	m := e.owner
	m.mutex.Lock()
	defer m.mutex.Unlock()
	e.users--
	if e.users == 0 {
		delete(m.entries, e.key)
	}
}
