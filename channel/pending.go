// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package channel

import "sync"

// pendingTable maps request IDs to the promises awaiting their
// responses. It has its own lock, independent of the notification
// registry, so a stalled notification handler can never block request
// completion. Entries are one-shot: fulfilment always removes them.
type pendingTable struct {
	mu    sync.Mutex
	slots map[int64]*promise
}

func newPendingTable() *pendingTable {
	return &pendingTable{slots: make(map[int64]*promise)}
}

func (t *pendingTable) insert(id int64, p *promise) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.slots[id] = p
}

// remove takes the slot for id out of the table, reporting whether it
// was present.
func (t *pendingTable) remove(id int64) (*promise, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.slots[id]
	if ok {
		delete(t.slots, id)
	}
	return p, ok
}

// drain atomically empties the table and returns every outstanding
// promise.
func (t *pendingTable) drain() []*promise {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*promise, 0, len(t.slots))
	for _, p := range t.slots {
		out = append(out, p)
	}
	t.slots = make(map[int64]*promise)
	return out
}

func (t *pendingTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.slots)
}
