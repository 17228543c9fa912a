// Package exchange implements the client side of the inter-node page exchange.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package exchange

import (
	"time"

	"github.com/NVIDIA/exchange/cmn/cos"
)

// observable client states, in precedence order (first matching flag wins)
const (
	StateClosed    = "closed"
	StateRunning   = "running"
	StateScheduled = "scheduled"
	StateCompleted = "completed"
	StateQueued    = "queued"
)

// Snapshot is a point-in-time, read-only view of one client.
type Snapshot struct {
	LastUpdate        time.Time `json:"last_update"`
	URI               string    `json:"uri"`
	State             string    `json:"state"`
	HTTPRequestState  string    `json:"http_request_state"`
	PagesReceived     int64     `json:"pages_received"`
	RequestsScheduled int64     `json:"requests_scheduled"`
	RequestsCompleted int64     `json:"requests_completed"`
	RequestsFailed    int64     `json:"requests_failed"`
}

func (c *Client) Status() (snap Snapshot) {
	snap.URI = c.uri
	snap.PagesReceived = c.pagesReceived.Load()
	snap.RequestsScheduled = c.requestsScheduled.Load()
	snap.RequestsCompleted = c.requestsCompleted.Load()
	snap.RequestsFailed = c.requestsFailed.Load()

	c.mu.Lock()
	snap.State = c.stateLocked()
	snap.LastUpdate = c.lastUpdate
	if c.inflight != nil {
		snap.HTTPRequestState = c.inflight.String()
	} else {
		snap.HTTPRequestState = stateNotScheduled
	}
	c.mu.Unlock()
	return
}

func (c *Client) stateLocked() string {
	switch {
	case c.closed:
		return StateClosed
	case c.inflight != nil:
		return StateRunning
	case c.scheduled:
		return StateScheduled
	case c.completed:
		return StateCompleted
	default:
		return StateQueued
	}
}

func (c *Client) String() string {
	c.mu.Lock()
	state := c.stateLocked()
	c.mu.Unlock()
	return c.loghdr + "[" + stateAbbrev(state) + "]"
}

func stateAbbrev(state string) string {
	switch state {
	case StateClosed:
		return "CL"
	case StateRunning:
		return "RUN"
	case StateScheduled:
		return "SCH"
	case StateCompleted:
		return "CPL"
	default:
		return "Q"
	}
}

func (snap *Snapshot) String() string { return string(cos.MustMarshal(snap)) }
