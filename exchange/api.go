// Package exchange implements the client side of the inter-node page exchange:
// a long-polling client that repeatedly pulls an ordered, token-cursored
// stream of serialized pages from a remote buffer endpoint over HTTP and
// deletes the remote buffer when done (see README for the wire protocol).
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package exchange

import (
	"net/http"
	"os"
	"strconv"
	"time"
)

// wire-level headers and media type
const (
	HdrPageToken      = "X-Presto-Page-Token"
	HdrPageNextToken  = "X-Presto-Page-Next-Token"
	HdrBufferComplete = "X-Presto-Buffer-Complete"
	HdrMaxSize        = "X-Presto-Max-Size"

	ContentTypePages = "application/x-presto-pages"
)

type (
	// the underlying HTTP transport; *http.Client satisfies it
	Requester interface {
		Do(req *http.Request) (*http.Response, error)
	}

	// delayed/immediate task submission capability (see hk.Housekeeper)
	Executor interface {
		Submit(f func())
		SubmitAfter(d time.Duration, f func())
	}

	// EventSink is the owner's side of the contract. All four notifications
	// are delivered on the executor and never under the client's lock;
	// implementations must not block.
	EventSink interface {
		// zero or more times per GET, in server order
		AddPage(c *Client, page *Page)
		// exactly once per finished GET attempt, success or failure, and once
		// per failed DELETE attempt; after a fatal failure it follows
		// ClientFailed. A successful DELETE signals ClientFinished instead.
		RequestComplete(c *Client)
		// exactly once, after the final DELETE succeeds
		ClientFinished(c *Client)
		// at most once, on fatal (structured) failure
		ClientFailed(c *Client, cause error)
	}

	// client construction arguments
	Args struct {
		Sink             EventSink
		Exec             Executor
		Requester        Requester     // nil => http.DefaultClient
		ReadPages        PageReader    // nil => the default page codec (see ReadPages)
		NanoTime         func() int64  // nil => mono.NanoTime; tests override
		URI              string        // base endpoint; GET appends /<token>
		MaxResponseSize  int64         // caps one GET's body (X-Presto-Max-Size)
		MinErrorDuration time.Duration // error-streak length that turns transient into fatal
	}
)

var verbose bool

func init() {
	if a := os.Getenv("EXCHANGE_VERBOSE"); a != "" {
		verbose, _ = strconv.ParseBool(a)
	}
}
