package geolib

import (
	"context"
	"sync"

	"github.com/benbjohnson/clock"
)

type pendingEntry struct {
	handlers []Handler
	cancel   context.CancelFunc
	timer    *clock.Timer
}

// stop disarms timeout governor and cancels an outbound request. It
// is safe to call it only after entry was taken from the registry.
func (p *pendingEntry) stop() {
	if p.timer != nil {
		p.timer.Stop()
	}

	if p.cancel != nil {
		p.cancel()
	}
}

func (p *pendingEntry) deliver(info Information) {
	for _, handler := range p.handlers {
		handler(info)
	}
}

type registry struct {
	mutex   sync.Mutex
	entries map[string]*pendingEntry
}

// Insert attaches handler to a pending entry of the key. If there is
// no such entry, spawn is called to create it. Spawn is executed under
// the lock so it must not call registry methods.
//
// Returns true if a new entry was created: it means that caller has to
// dispatch a request.
func (r *registry) Insert(key string, handler Handler, spawn func() *pendingEntry) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if entry, ok := r.entries[key]; ok {
		entry.handlers = append(entry.handlers, handler)

		return false
	}

	entry := spawn()
	entry.handlers = append(entry.handlers, handler)
	r.entries[key] = entry

	return true
}

func (r *registry) Take(key string) (*pendingEntry, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	entry, ok := r.entries[key]
	if ok {
		delete(r.entries, key)
	}

	return entry, ok
}

// TakeEntry removes an entry only if it is exactly the same entry which
// is stored for the key. A stale timer or a failed dispatch should never
// steal an entry created by a later Insert.
func (r *registry) TakeEntry(key string, entry *pendingEntry) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if current, ok := r.entries[key]; ok && current == entry {
		delete(r.entries, key)

		return true
	}

	return false
}

func (r *registry) TakeAll() map[string]*pendingEntry {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	rv := r.entries
	r.entries = map[string]*pendingEntry{}

	return rv
}

func (r *registry) Len() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return len(r.entries)
}

func newRegistry() *registry {
	return &registry{
		entries: map[string]*pendingEntry{},
	}
}
