// Package memo is the process-lifetime loader cache shared by the query
// services. There is no invalidation: the first successful load of a key is
// kept until the process exits. Failed loads are not stored.
package memo

import (
	"sync"

	"hotel_bookings/internal/adapters/observability"
)

type entry struct {
	mu   sync.Mutex
	done bool
	val  any
}

type Memo struct {
	name    string
	mu      sync.Mutex
	entries map[string]*entry
}

// New returns an empty Memo; name labels its cache metrics.
func New(name string) *Memo {
	return &Memo{name: name, entries: make(map[string]*entry)}
}

// Load returns the value stored under key, calling fn to produce it if no
// load has succeeded yet. Concurrent callers of one key wait for the load in
// flight; different keys load independently.
func (m *Memo) Load(key string, fn func() (any, error)) (any, error) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		e = &entry{}
		m.entries[key] = e
	}
	m.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done {
		observability.ObserveCache(m.name, "hit")
		return e.val, nil
	}
	observability.ObserveCache(m.name, "miss")
	v, err := fn()
	if err != nil {
		return nil, err
	}
	e.val, e.done = v, true
	return v, nil
}
