// Package stats exports per-client page-buffer counters to Prometheus.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package stats

import (
	"sync"

	"github.com/NVIDIA/exchange/exchange"
	"github.com/prometheus/client_golang/prometheus"
)

const promNamespace = "exchange"

var (
	descPages = prometheus.NewDesc(
		prometheus.BuildFQName(promNamespace, "", "pages_received_total"),
		"Number of pages received from the remote buffer", []string{"endpoint"}, nil)
	descScheduled = prometheus.NewDesc(
		prometheus.BuildFQName(promNamespace, "", "requests_scheduled_total"),
		"Number of requests scheduled", []string{"endpoint"}, nil)
	descCompleted = prometheus.NewDesc(
		prometheus.BuildFQName(promNamespace, "", "requests_completed_total"),
		"Number of finished request attempts", []string{"endpoint"}, nil)
	descFailed = prometheus.NewDesc(
		prometheus.BuildFQName(promNamespace, "", "requests_failed_total"),
		"Number of failed request attempts", []string{"endpoint"}, nil)
)

// Tracker is a prometheus.Collector over a registered set of clients;
// it reads only their Status() snapshots.
type Tracker struct {
	mu      sync.RWMutex
	clients map[string]*exchange.Client // keyed by Client.Key()
}

// interface guard
var _ prometheus.Collector = (*Tracker)(nil)

func NewTracker() *Tracker {
	return &Tracker{clients: make(map[string]*exchange.Client, 8)}
}

func (t *Tracker) Reg(c *exchange.Client) {
	t.mu.Lock()
	t.clients[c.Key()] = c
	t.mu.Unlock()
}

func (t *Tracker) Unreg(c *exchange.Client) {
	t.mu.Lock()
	delete(t.clients, c.Key())
	t.mu.Unlock()
}

func (*Tracker) Describe(ch chan<- *prometheus.Desc) {
	ch <- descPages
	ch <- descScheduled
	ch <- descCompleted
	ch <- descFailed
}

func (t *Tracker) Collect(ch chan<- prometheus.Metric) {
	t.mu.RLock()
	for _, c := range t.clients {
		snap := c.Status()
		ch <- prometheus.MustNewConstMetric(descPages, prometheus.CounterValue,
			float64(snap.PagesReceived), snap.URI)
		ch <- prometheus.MustNewConstMetric(descScheduled, prometheus.CounterValue,
			float64(snap.RequestsScheduled), snap.URI)
		ch <- prometheus.MustNewConstMetric(descCompleted, prometheus.CounterValue,
			float64(snap.RequestsCompleted), snap.URI)
		ch <- prometheus.MustNewConstMetric(descFailed, prometheus.CounterValue,
			float64(snap.RequestsFailed), snap.URI)
	}
	t.mu.RUnlock()
}
