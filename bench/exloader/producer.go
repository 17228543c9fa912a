// Package main: exloader is a load generator for the exchange page-buffer
// client. It stands up a synthetic in-process producer and drains it.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/NVIDIA/exchange/cmn/atomic"
	"github.com/NVIDIA/exchange/cmn/cos"
	"github.com/NVIDIA/exchange/cmn/nlog"
	"github.com/NVIDIA/exchange/exchange"
)

// producer serves numBuffers independent page buffers:
//
//	GET  /buffer/<i>/<token>
//	DELETE /buffer/<i>
type producer struct {
	srv      *http.Server
	ln       net.Listener
	buffers  []*buffer
	deleted  atomic.Int32
	pageSize int
	batch    int
}

// pages are immutable once generated; the token in the GET path selects the
// window, so a replayed token simply re-serves the same window
type buffer struct {
	pages [][]byte
}

func newProducer(numBuffers, pagesPerBuffer, pageSize int, seed int64) (*producer, error) {
	p := &producer{pageSize: pageSize, batch: 8}
	rnd := rand.New(rand.NewSource(seed))
	p.buffers = make([]*buffer, numBuffers)
	for i := range p.buffers {
		b := &buffer{pages: make([][]byte, pagesPerBuffer)}
		for j := range b.pages {
			pg := make([]byte, pageSize)
			rnd.Read(pg)
			b.pages[j] = pg
		}
		p.buffers[i] = b
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	p.ln = ln
	mux := http.NewServeMux()
	mux.HandleFunc("/buffer/", p.handle)
	p.srv = &http.Server{Handler: mux}
	go p.srv.Serve(ln)
	return p, nil
}

func (p *producer) stop() { p.srv.Close() }

func (p *producer) endpoint(i int) string {
	return fmt.Sprintf("http://%s/buffer/%d", p.ln.Addr(), i)
}

func (p *producer) handle(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/buffer/"), "/")
	idx, err := strconv.Atoi(parts[0])
	if err != nil || idx < 0 || idx >= len(p.buffers) {
		http.Error(w, "no such buffer", http.StatusNotFound)
		return
	}
	b := p.buffers[idx]
	switch r.Method {
	case http.MethodDelete:
		p.deleted.Inc()
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		if len(parts) != 2 {
			http.Error(w, "missing token", http.StatusBadRequest)
			return
		}
		token, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			http.Error(w, "bad token", http.StatusBadRequest)
			return
		}
		p.pages(w, b, token)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (p *producer) pages(w http.ResponseWriter, b *buffer, token uint64) {
	if token > uint64(len(b.pages)) {
		nlog.Warningln("token", token, "out of range")
		http.Error(w, "token out of range", http.StatusBadRequest)
		return
	}
	var (
		hdr   = w.Header()
		first = int(token)
		last  = min(first+p.batch, len(b.pages))
	)
	hdr.Set(exchange.HdrPageToken, strconv.Itoa(first))
	hdr.Set(exchange.HdrPageNextToken, strconv.Itoa(last))
	hdr.Set(exchange.HdrBufferComplete, strconv.FormatBool(last == len(b.pages)))
	if first == last {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	hdr.Set(cos.HdrContentType, exchange.ContentTypePages)
	var buf []byte
	for _, pg := range b.pages[first:last] {
		buf = exchange.AppendPage(buf, int32(len(pg)/8), pg, true /*lz4*/)
	}
	w.Write(buf)
}
