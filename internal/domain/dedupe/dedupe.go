// Package dedupe tracks rating submission IDs so a retried submission is
// applied at most once.
package dedupe

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
)

// DefaultMaxSize bounds the tracker when no option is given.
const DefaultMaxSize = 50000

// Deduper records seen submission IDs.
type Deduper interface {
	// SeenAndRecord reports whether id was already recorded and records it
	// if not. The check and the insert happen under one lock.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so the submission can be retried, e.g. after the
	// queue rejected it.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// inMemoryDeduper keeps IDs in a map plus an insertion-ordered list.
// Bounded mode (maxSize > 0) evicts the oldest ID first; unbounded mode
// never evicts and skips the list.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates an in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]*list.Element)
	if d.maxSize > 0 {
		d.order = list.New()
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	if d.order == nil {
		d.seen[id] = nil
		d.size.Add(1)
		return false
	}

	if len(d.seen) >= d.maxSize {
		d.evictOldest()
	}
	d.seen[id] = d.order.PushBack(id)
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	el, ok := d.seen[id]
	if !ok {
		return
	}
	delete(d.seen, id)
	if el != nil {
		d.order.Remove(el)
	}
	d.size.Add(-1)
}

// evictOldest drops the front of the list. Caller holds d.mu.
func (d *inMemoryDeduper) evictOldest() {
	front := d.order.Front()
	if front == nil {
		return
	}
	d.order.Remove(front)
	delete(d.seen, front.Value.(string))
	d.size.Add(-1)
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
