// Package exchange implements the client side of the inter-node page exchange.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package exchange

import (
	"sync"
	"time"

	"github.com/NVIDIA/exchange/cmn/mono"
)

const (
	iniErrDelay = time.Millisecond
	maxErrDelay = 100 * time.Millisecond
)

// rtry tracks the current error streak: the delay before the next attempt
// (1ms seed, doubling to the 100ms cap) and the streak's wall-clock start.
// A successful response zeroes both.
type rtry struct {
	nanotime func() int64
	mu       sync.Mutex
	delay    time.Duration
	started  int64 // mono; valid while running
	running  bool  // error clock is running
}

func newRtry(nanotime func() int64) *rtry {
	if nanotime == nil {
		nanotime = mono.NanoTime
	}
	return &rtry{nanotime: nanotime}
}

// ensure the error clock is running (a scheduled wait counts against the
// error budget as well)
func (r *rtry) startClock() {
	r.mu.Lock()
	if !r.running {
		r.started = r.nanotime()
		r.running = true
	}
	r.mu.Unlock()
}

func (r *rtry) noteError() {
	r.mu.Lock()
	if !r.running {
		r.started = r.nanotime()
		r.running = true
	}
	if r.delay == 0 {
		r.delay = iniErrDelay
	} else {
		r.delay = min(r.delay<<1, maxErrDelay)
	}
	r.mu.Unlock()
}

func (r *rtry) reset() {
	r.mu.Lock()
	r.started = 0
	r.running = false
	r.delay = 0
	r.mu.Unlock()
}

func (r *rtry) elapsed() (d time.Duration) {
	r.mu.Lock()
	if r.running {
		d = time.Duration(r.nanotime() - r.started)
	}
	r.mu.Unlock()
	return
}

func (r *rtry) nextDelay() (d time.Duration) {
	r.mu.Lock()
	d = r.delay
	r.mu.Unlock()
	return
}
