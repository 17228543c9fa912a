// Package exchange implements the client side of the inter-node page exchange.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package exchange

import (
	"testing"
	"time"

	"github.com/NVIDIA/exchange/tools/tassert"
)

func TestRtryEnvelope(t *testing.T) {
	var now int64
	r := newRtry(func() int64 { return now })

	tassert.Errorf(t, r.nextDelay() == 0, "initial delay must be 0")
	want := []time.Duration{1, 2, 4, 8, 16, 32, 64, 100, 100, 100}
	for i, ms := range want {
		r.noteError()
		d := r.nextDelay()
		tassert.Errorf(t, d == ms*time.Millisecond, "step %d: delay %v, want %vms", i, d, ms)
	}
}

func TestRtryClock(t *testing.T) {
	var now int64
	r := newRtry(func() int64 { return now })

	tassert.Errorf(t, r.elapsed() == 0, "no streak, no elapsed")
	r.startClock()
	now = int64(30 * time.Millisecond)
	tassert.Errorf(t, r.elapsed() == 30*time.Millisecond, "elapsed %v", r.elapsed())

	// startClock is idempotent within a streak
	r.startClock()
	now = int64(45 * time.Millisecond)
	tassert.Errorf(t, r.elapsed() == 45*time.Millisecond, "elapsed %v", r.elapsed())

	// noteError keeps the running clock too
	r.noteError()
	tassert.Errorf(t, r.elapsed() == 45*time.Millisecond, "elapsed %v", r.elapsed())
}

func TestRtryResetZeroesBoth(t *testing.T) {
	var now int64
	r := newRtry(func() int64 { return now })
	r.noteError()
	r.noteError()
	now = int64(time.Second)
	tassert.Errorf(t, r.nextDelay() == 2*time.Millisecond, "delay %v", r.nextDelay())

	r.reset()
	tassert.Errorf(t, r.nextDelay() == 0, "delay must be 0 after success")
	tassert.Errorf(t, r.elapsed() == 0, "error clock must be stopped after success")

	// a fresh streak starts over at the seed
	r.noteError()
	tassert.Errorf(t, r.nextDelay() == time.Millisecond, "delay %v", r.nextDelay())
}
