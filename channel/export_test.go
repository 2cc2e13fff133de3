// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package channel

import "github.com/prometheus/client_golang/prometheus"

// PendingCount exposes the pending table size for tests.
func (ch *Channel) PendingCount() int {
	return ch.pending.len()
}

// GenerateRequestID exposes ID generation for tests.
func (ch *Channel) GenerateRequestID() int64 {
	return ch.generateRequestID()
}

func (c *Collector) RequestsSent() prometheus.Counter    { return c.requestsSent }
func (c *Collector) Responses() prometheus.Counter       { return c.responses }
func (c *Collector) Notifications() prometheus.Counter   { return c.notifications }
func (c *Collector) Unroutable() prometheus.Counter      { return c.unroutable }
func (c *Collector) DrainedRequests() prometheus.Counter { return c.drainedRequests }
func (c *Collector) PendingRequests() prometheus.Gauge   { return c.pendingRequests }
