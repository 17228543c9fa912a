// Package exchange implements the client side of the inter-node page exchange.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package exchange

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/NVIDIA/exchange/cmn/atomic"
	"github.com/NVIDIA/exchange/cmn/cos"
	"github.com/NVIDIA/exchange/cmn/debug"
	"github.com/NVIDIA/exchange/cmn/nlog"
)

// Client pulls one remote buffer: GET <uri>/<token> in a long-polling loop,
// DELETE <uri> once the buffer is complete. At most one HTTP request is in
// flight at any time; the owner re-arms the client via ScheduleRequest upon
// every RequestComplete until ClientFinished or ClientFailed.
//
// Two clients are considered the same buffer iff their URIs are equal -
// owners key sets and maps by Key().
type Client struct {
	sink      EventSink
	exec      Executor
	requester Requester
	readPages PageReader
	rtry      *rtry

	uri         string
	loghdr      string
	maxRespSize int64
	minErrDur   time.Duration

	// counters; observable without the lock
	pagesReceived     atomic.Int64
	requestsScheduled atomic.Int64
	requestsCompleted atomic.Int64
	requestsFailed    atomic.Int64

	mu         sync.Mutex
	inflight   *inflight
	token      uint64
	lastUpdate time.Time
	closed     bool
	scheduled  bool
	completed  bool
}

// the single outstanding HTTP request
type inflight struct {
	cancel context.CancelFunc
	method string
	phase  atomic.Int32
}

const (
	phaseSending = int32(iota + 1)
	phaseReading
)

const stateNotScheduled = "not scheduled"

func (rh *inflight) String() string {
	switch rh.phase.Load() {
	case phaseSending:
		return rh.method + ": sending request"
	case phaseReading:
		return rh.method + ": processing response"
	}
	return rh.method
}

func NewClient(args *Args) *Client {
	debug.Assert(args.URI != "")
	debug.Assert(args.Sink != nil && args.Exec != nil)
	c := &Client{
		sink:        args.Sink,
		exec:        args.Exec,
		requester:   args.Requester,
		readPages:   args.ReadPages,
		rtry:        newRtry(args.NanoTime),
		uri:         args.URI,
		maxRespSize: args.MaxResponseSize,
		minErrDur:   args.MinErrorDuration,
		lastUpdate:  time.Now(),
	}
	if c.requester == nil {
		c.requester = http.DefaultClient
	}
	if c.readPages == nil {
		c.readPages = ReadPages
	}
	c.loghdr = "pbc-" + cos.GenTie() + "[" + c.uri + "]"
	return c
}

// Key is the client's identity: owners running duplicates to one endpoint
// need a different key.
func (c *Client) Key() string { return c.uri }

func (c *Client) URI() string { return c.uri }

func (c *Client) IsRunning() bool {
	c.mu.Lock()
	running := c.inflight != nil
	c.mu.Unlock()
	return running
}

// ScheduleRequest arms the client: a delayed task on the executor that will
// issue the next GET (or, once the buffer completed, the final DELETE).
// No-op while closed, in flight, or already scheduled.
func (c *Client) ScheduleRequest() {
	c.mu.Lock()
	if c.closed || c.inflight != nil || c.scheduled {
		c.mu.Unlock()
		return
	}
	c.scheduled = true
	c.mu.Unlock()

	// the delay counts against the error budget
	c.rtry.startClock()
	c.requestsScheduled.Inc()
	c.exec.SubmitAfter(c.rtry.nextDelay(), c.work)
}

// the delayed task: install the in-flight handle under the lock, dispatch
// the blocking I/O outside of it
func (c *Client) work() {
	var run func()
	c.mu.Lock()
	c.scheduled = false
	if c.closed || c.inflight != nil {
		c.mu.Unlock()
		return
	}
	if c.completed {
		run = c.sendDelete()
	} else {
		run = c.sendGetResults()
	}
	c.lastUpdate = time.Now()
	c.mu.Unlock()

	c.exec.Submit(run)
}

// Close is idempotent: cancels the in-flight request, if any, and fires a
// best-effort DELETE whose response is intentionally ignored. Never blocks.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	rh := c.inflight
	c.inflight = nil
	c.lastUpdate = time.Now()
	c.mu.Unlock()

	if rh != nil {
		rh.cancel()
	}
	c.exec.Submit(c.deleteRemote)
}

// fire-and-forget server-side cleanup
func (c *Client) deleteRemote() {
	req, err := http.NewRequest(http.MethodDelete, c.uri, http.NoBody)
	if err != nil {
		debug.AssertNoErr(err)
		return
	}
	resp, err := c.requester.Do(req)
	if err != nil {
		if verbose {
			nlog.Infof("%s: best-effort delete: %v", c.loghdr, err)
		}
		return
	}
	cos.DrainAndClose(resp.Body)
}

//
// GET
//

// under lock
func (c *Client) sendGetResults() func() {
	debug.AssertMutexLocked(&c.mu)
	ctx, cancel := context.WithCancel(context.Background())
	rh := &inflight{cancel: cancel, method: http.MethodGet}
	rh.phase.Store(phaseSending)
	c.inflight = rh
	token := c.token
	return func() { c.doGet(ctx, rh, token) }
}

func (c *Client) doGet(ctx context.Context, rh *inflight, token uint64) {
	url := c.uri + "/" + strconv.FormatUint(token, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		c.failGet(rh, err)
		return
	}
	req.Header.Set(HdrMaxSize, strconv.FormatInt(c.maxRespSize, 10))
	resp, err := c.requester.Do(req)
	if err != nil {
		c.failGet(rh, err)
		return
	}
	rh.phase.Store(phaseReading)
	res, err := Decode(resp, c.readPages, c.maxRespSize)
	if err != nil {
		c.failGet(rh, err)
		return
	}
	c.doneGet(rh, res)
}

// success continuation
func (c *Client) doneGet(rh *inflight, res *PagesResponse) {
	debug.Assert(res.NextToken() >= res.Token(), res.String())
	c.rtry.reset()

	var pages []*Page
	c.mu.Lock()
	if c.closed || c.inflight != rh {
		c.mu.Unlock()
		return // raced with Close; notifications are skipped
	}
	if res.Token() == c.token {
		pages = res.Pages()
		c.token = res.NextToken()
	}
	// else: server replay of an already-acknowledged window - discard
	if res.ClientComplete() {
		c.completed = true
	}
	c.inflight = nil
	c.lastUpdate = time.Now()
	c.mu.Unlock()

	debug.AssertMutexNotLocked(&c.mu)
	for _, page := range pages {
		c.pagesReceived.Inc()
		c.sink.AddPage(c, page)
	}
	c.requestsCompleted.Inc()
	c.sink.RequestComplete(c)
}

// failure continuation
func (c *Client) failGet(rh *inflight, err error) {
	errDur := c.rtry.elapsed()
	switch {
	case cos.IsErrClientURLTimeout(err) && verbose:
		nlog.Infof("%s: timed out: %v", c.loghdr, err)
	case cos.IsRetriableConnErr(err) && verbose:
		nlog.Infof("%s: conn error: %v", c.loghdr, err)
	}
	if errors.Is(err, ErrResponseTooLarge) {
		err = NewErrPageTooLarge(c.uri, c.maxRespSize)
	} else if !IsStructured(err) && errDur > c.minErrDur {
		err = NewErrPageTransportTimeout(c.uri, errDur)
	}
	c.handleFailure(rh, err)
}

//
// DELETE (issued only after the server reported buffer-complete)
//

// under lock
func (c *Client) sendDelete() func() {
	debug.AssertMutexLocked(&c.mu)
	ctx, cancel := context.WithCancel(context.Background())
	rh := &inflight{cancel: cancel, method: http.MethodDelete}
	rh.phase.Store(phaseSending)
	c.inflight = rh
	return func() { c.doDelete(ctx, rh) }
}

func (c *Client) doDelete(ctx context.Context, rh *inflight) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.uri, http.NoBody)
	if err != nil {
		c.failDelete(rh, err)
		return
	}
	resp, err := c.requester.Do(req)
	if err != nil {
		c.failDelete(rh, err)
		return
	}
	rh.phase.Store(phaseReading)
	cos.DrainAndClose(resp.Body)
	if resp.StatusCode/100 != 2 {
		// non-2xx stays transient; persistent streaks promote below
		c.failDelete(rh, fmt.Errorf("unexpected status %s deleting %s", resp.Status, c.uri))
		return
	}
	c.doneDelete(rh)
}

func (c *Client) doneDelete(rh *inflight) {
	c.rtry.reset()
	c.mu.Lock()
	if c.closed || c.inflight != rh {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.inflight = nil
	c.lastUpdate = time.Now()
	c.mu.Unlock()

	debug.AssertMutexNotLocked(&c.mu)
	c.requestsCompleted.Inc()
	c.sink.ClientFinished(c)
}

func (c *Client) failDelete(rh *inflight, err error) {
	errDur := c.rtry.elapsed()
	nlog.Errorf("%s: delete failed: %v", c.loghdr, err)
	if !IsStructured(err) && errDur > c.minErrDur {
		err = NewErrTooManyRequestsFailed(c.uri, errDur)
	}
	c.handleFailure(rh, err)
}

//
// common failure path
//

func (c *Client) handleFailure(rh *inflight, err error) {
	c.mu.Lock()
	if c.closed {
		// raced with Close (which also cleared inflight); skip notifications
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.requestsFailed.Inc()
	c.requestsCompleted.Inc()
	debug.AssertMutexNotLocked(&c.mu)
	if IsStructured(err) {
		c.sink.ClientFailed(c, err)
	} else if verbose {
		nlog.Infof("%s: transient: %v", c.loghdr, err)
	}
	c.rtry.noteError()

	c.mu.Lock()
	if c.inflight == rh {
		c.inflight = nil
	}
	c.lastUpdate = time.Now()
	c.mu.Unlock()

	c.sink.RequestComplete(c)
}
