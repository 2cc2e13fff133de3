// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package channel

import "sync"

// NotificationHandler receives every server-pushed frame bearing the
// notification ID it was registered under. The frame includes the
// 12-byte header; use Channel.DeserializeMessage to decode the
// payload. Handlers run on the transport's delivery goroutine and
// should not block.
type NotificationHandler func(frame []byte)

// notificationRegistry maps notification IDs to their handlers.
// Unlike pending requests, entries are recurring: delivery does not
// remove them.
type notificationRegistry struct {
	mu       sync.Mutex
	handlers map[int64]NotificationHandler
}

func newNotificationRegistry() *notificationRegistry {
	return &notificationRegistry{handlers: make(map[int64]NotificationHandler)}
}

// register installs handler for id. Registering over an existing ID
// replaces the handler: last registration wins.
func (r *notificationRegistry) register(id int64, handler NotificationHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[id] = handler
}

func (r *notificationRegistry) unregister(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, id)
}

func (r *notificationRegistry) lookup(id int64) (NotificationHandler, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handlers[id]
	return h, ok
}

func (r *notificationRegistry) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = make(map[int64]NotificationHandler)
}
