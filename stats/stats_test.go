// Package stats exports per-client page-buffer counters to Prometheus.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package stats_test

import (
	"testing"
	"time"

	"github.com/NVIDIA/exchange/exchange"
	"github.com/NVIDIA/exchange/stats"
	"github.com/NVIDIA/exchange/tools/tassert"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type (
	nopSink struct{}
	nopExec struct{}
)

func (nopSink) AddPage(*exchange.Client, *exchange.Page) {}
func (nopSink) RequestComplete(*exchange.Client)         {}
func (nopSink) ClientFinished(*exchange.Client)          {}
func (nopSink) ClientFailed(*exchange.Client, error)     {}
func (nopExec) Submit(f func())                          { go f() }
func (nopExec) SubmitAfter(d time.Duration, f func())    { time.AfterFunc(d, f) }

func TestTrackerCollect(t *testing.T) {
	tracker := stats.NewTracker()
	c := exchange.NewClient(&exchange.Args{
		URI:  "http://h/t",
		Sink: nopSink{},
		Exec: nopExec{},
	})
	tracker.Reg(c)
	n := testutil.CollectAndCount(tracker)
	tassert.Errorf(t, n == 4, "expected 4 metrics, got %d", n)

	tracker.Unreg(c)
	n = testutil.CollectAndCount(tracker)
	tassert.Errorf(t, n == 0, "expected 0 metrics after unreg, got %d", n)
}
