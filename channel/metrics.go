// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package channel

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "ignite_channel"

// Collector is a prometheus.Collector that collects metrics about one
// channel. Registration is the owner's concern.
type Collector struct {
	requestsSent    prometheus.Counter
	responses       prometheus.Counter
	notifications   prometheus.Counter
	unroutable      prometheus.Counter
	drainedRequests prometheus.Counter
	pendingRequests prometheus.Gauge
}

// NewMetricsCollector returns a new Collector.
func NewMetricsCollector() *Collector {
	return &Collector{
		requestsSent: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "requests_sent_total",
				Help:      "The number of requests handed to the transport.",
			},
		),
		responses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "responses_total",
				Help:      "The number of response frames correlated to a request.",
			},
		),
		notifications: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "notifications_total",
				Help:      "The number of frames delivered to notification handlers.",
			},
		),
		unroutable: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "unroutable_frames_total",
				Help:      "The number of inbound frames dropped for want of a matching ID.",
			},
		),
		drainedRequests: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "drained_requests_total",
				Help:      "The number of pending requests failed by channel termination.",
			},
		),
		pendingRequests: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "pending_requests",
				Help:      "The number of requests awaiting a response.",
			},
		),
	}
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.requestsSent.Describe(ch)
	c.responses.Describe(ch)
	c.notifications.Describe(ch)
	c.unroutable.Describe(ch)
	c.drainedRequests.Describe(ch)
	c.pendingRequests.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.requestsSent.Collect(ch)
	c.responses.Collect(ch)
	c.notifications.Collect(ch)
	c.unroutable.Collect(ch)
	c.drainedRequests.Collect(ch)
	c.pendingRequests.Collect(ch)
}
