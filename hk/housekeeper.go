// Package hk provides a mechanism to execute one-shot functions
// immediately or at a specified delay. A shared housekeeping goroutine keeps
// the deadlines; each function runs on its own goroutine.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package hk

import (
	"container/heap"
	"sync"
	"time"

	"github.com/NVIDIA/exchange/cmn/atomic"
	"github.com/NVIDIA/exchange/cmn/cos"
	"github.com/NVIDIA/exchange/cmn/debug"
	"github.com/NVIDIA/exchange/cmn/mono"
)

const workChCap = 512

// no deadline in the heap can be further out than this without being re-armed
const maxIdle = time.Hour

type (
	request struct {
		f     func()
		at    int64  // mono deadline
		index int    // heap stuff
	}
	// one-shot delayed/immediate executor
	Housekeeper struct {
		name      string
		stopCh    cos.StopCh
		workCh    chan *request
		timers    []*request    // min-heap by deadline
		timer     *time.Timer
		startedCh chan struct{}
		once      sync.Once
		running   atomic.Bool
	}
)

// interface guard
var _ heap.Interface = (*Housekeeper)(nil)

func New(name string) (hk *Housekeeper) {
	hk = &Housekeeper{
		name:      name,
		workCh:    make(chan *request, workChCap),
		timers:    make([]*request, 0, 16),
		startedCh: make(chan struct{}),
	}
	hk.stopCh.Init()
	return
}

func (hk *Housekeeper) Name() string { return hk.name }

// Submit dispatches f immediately, on its own goroutine.
func (*Housekeeper) Submit(f func()) { go f() }

// SubmitAfter schedules f to run (once) d from now.
func (hk *Housekeeper) SubmitAfter(d time.Duration, f func()) {
	if d <= 0 {
		hk.Submit(f)
		return
	}
	hk.workCh <- &request{f: f, at: mono.NanoTime() + d.Nanoseconds()}
}

func (hk *Housekeeper) Run() {
	hk.running.Store(true)
	hk.timer = time.NewTimer(maxIdle)
	defer hk.timer.Stop()
	hk.once.Do(func() { close(hk.startedCh) })
	for {
		select {
		case <-hk.timer.C:
			hk.dispatch()
		case req, ok := <-hk.workCh:
			if !ok {
				return
			}
			heap.Push(hk, req)
			hk.dispatch()
		case <-hk.stopCh.Listen():
			hk.running.Store(false)
			return
		}
	}
}

func (hk *Housekeeper) Stop()           { hk.stopCh.Close() }
func (hk *Housekeeper) IsRunning() bool { return hk.running.Load() }
func (hk *Housekeeper) WaitStarted()    { <-hk.startedCh }

// pop and run everything that is due; re-arm the timer for the next deadline
func (hk *Housekeeper) dispatch() {
	now := mono.NanoTime()
	for len(hk.timers) > 0 && hk.timers[0].at <= now {
		req := heap.Pop(hk).(*request)
		go req.f()
	}
	if len(hk.timers) == 0 {
		hk.timer.Reset(maxIdle)
		return
	}
	debug.Assert(hk.timers[0].at > now)
	hk.timer.Reset(time.Duration(hk.timers[0].at - now))
}

//
// min-heap of pending requests
//

func (hk *Housekeeper) Len() int { return len(hk.timers) }

func (hk *Housekeeper) Less(i, j int) bool { return hk.timers[i].at < hk.timers[j].at }

func (hk *Housekeeper) Swap(i, j int) {
	hk.timers[i], hk.timers[j] = hk.timers[j], hk.timers[i]
	hk.timers[i].index = i
	hk.timers[j].index = j
}

func (hk *Housekeeper) Push(x any) {
	req := x.(*request)
	req.index = len(hk.timers)
	hk.timers = append(hk.timers, req)
}

func (hk *Housekeeper) Pop() any {
	old := hk.timers
	n := len(old)
	req := old[n-1]
	hk.timers = old[:n-1]
	return req
}
