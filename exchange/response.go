// Package exchange implements the client side of the inter-node page exchange.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package exchange

import (
	"fmt"
)

// PagesResponse is the immutable result of one GET against the remote
// buffer: the (token, nextToken) window, the pages that fulfill it, and the
// server's buffer-complete flag.
type PagesResponse struct {
	pages          []*Page
	token          uint64
	nextToken      uint64
	clientComplete bool
}

func NewPagesResponse(token, nextToken uint64, pages []*Page, complete bool) *PagesResponse {
	// the pages slice may alias a decoder's working buffer
	cloned := make([]*Page, len(pages))
	copy(cloned, pages)
	return &PagesResponse{token: token, nextToken: nextToken, pages: cloned, clientComplete: complete}
}

func EmptyPagesResponse(token, nextToken uint64, complete bool) *PagesResponse {
	return &PagesResponse{token: token, nextToken: nextToken, clientComplete: complete}
}

func (r *PagesResponse) Token() uint64        { return r.token }
func (r *PagesResponse) NextToken() uint64    { return r.nextToken }
func (r *PagesResponse) Pages() []*Page       { return r.pages }
func (r *PagesResponse) NumPages() int        { return len(r.pages) }
func (r *PagesResponse) ClientComplete() bool { return r.clientComplete }

func (r *PagesResponse) String() string {
	return fmt.Sprintf("presp[%d=>%d, n=%d, complete=%t]",
		r.token, r.nextToken, len(r.pages), r.clientComplete)
}
