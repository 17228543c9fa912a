// Package main: exloader is a load generator for the exchange page-buffer
// client. It stands up a synthetic in-process producer and drains it.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/NVIDIA/exchange/cmn/atomic"
	"github.com/NVIDIA/exchange/cmn/cos"
	"github.com/NVIDIA/exchange/cmn/mono"
	"github.com/NVIDIA/exchange/cmn/nlog"
	"github.com/NVIDIA/exchange/exchange"
	"github.com/NVIDIA/exchange/hk"
	"github.com/NVIDIA/exchange/stats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

type params struct {
	numBuffers     int
	pagesPerBuffer int
	pageSize       int
	maxRespSize    int64
	minErrDur      time.Duration
	timeout        time.Duration
	seed           int64
	promAddr       string
	verbose        bool
}

// consumer is the owner of one client: re-arms it on every RequestComplete
// and tears it down on the terminal notification.
type consumer struct {
	done  chan struct{}
	errs  *cos.Errs
	bytes atomic.Int64
	pages atomic.Int64
}

func (cs *consumer) AddPage(_ *exchange.Client, page *exchange.Page) {
	cs.pages.Inc()
	cs.bytes.Add(page.Size())
}

func (cs *consumer) RequestComplete(c *exchange.Client) { c.ScheduleRequest() }

func (cs *consumer) ClientFinished(*exchange.Client) { close(cs.done) }

func (cs *consumer) ClientFailed(c *exchange.Client, cause error) {
	cs.errs.Add(cause)
	c.Close()
	close(cs.done)
}

func main() {
	var p params
	flag.IntVar(&p.numBuffers, "buffers", 16, "number of upstream buffers to drain")
	flag.IntVar(&p.pagesPerBuffer, "pages", 256, "pages per buffer")
	flag.IntVar(&p.pageSize, "pagesize", 32*1024, "page payload size")
	flag.Int64Var(&p.maxRespSize, "maxresp", 1024*1024, "max response size (X-Presto-Max-Size)")
	flag.DurationVar(&p.minErrDur, "minerr", 30*time.Second, "error persistence threshold")
	flag.DurationVar(&p.timeout, "timeout", 2*time.Minute, "overall deadline")
	flag.Int64Var(&p.seed, "seed", 0, "random seed; mono nanotime if zero")
	flag.StringVar(&p.promAddr, "prom", "", "optional prometheus listen address, e.g. :8090")
	flag.BoolVar(&p.verbose, "v", false, "log to stderr")
	flag.Parse()

	nlog.SetTitle("exloader")
	nlog.SetToStderr(p.verbose)
	if p.seed == 0 {
		p.seed = mono.NanoTime()
	}
	cos.InitShortID(uint64(p.seed))

	if err := run(&p); err != nil {
		nlog.Errorln(err)
		nlog.Flush(true)
		os.Exit(1)
	}
	nlog.Flush(true)
}

func run(p *params) error {
	prod, err := newProducer(p.numBuffers, p.pagesPerBuffer, p.pageSize, p.seed)
	if err != nil {
		return err
	}
	defer prod.stop()

	keeper := hk.New("exloader")
	go keeper.Run()
	keeper.WaitStarted()
	defer keeper.Stop()

	tracker := stats.NewTracker()
	if p.promAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(tracker)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go http.ListenAndServe(p.promAddr, mux)
	}

	var (
		errs      cos.Errs
		consumers = make([]*consumer, p.numBuffers)
		started   = mono.NanoTime()
	)
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	group, ctx := errgroup.WithContext(ctx)
	for i := range p.numBuffers {
		cs := &consumer{done: make(chan struct{}), errs: &errs}
		consumers[i] = cs
		client := exchange.NewClient(&exchange.Args{
			URI:              prod.endpoint(i),
			MaxResponseSize:  p.maxRespSize,
			MinErrorDuration: p.minErrDur,
			Sink:             cs,
			Exec:             keeper,
		})
		tracker.Reg(client)
		group.Go(func() error {
			defer client.Close()
			client.ScheduleRequest()
			select {
			case <-cs.done:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})
	}
	err = group.Wait()
	if cnt, joined := errs.JoinErr(); cnt > 0 {
		return joined
	}
	if err != nil {
		return err
	}
	report(p, consumers, mono.Since(started), prod)
	return nil
}

func report(p *params, consumers []*consumer, elapsed time.Duration, prod *producer) {
	var totalPages, totalBytes int64
	for _, cs := range consumers {
		totalPages += cs.pages.Load()
		totalBytes += cs.bytes.Load()
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintf(w, "buffers\t%d\n", p.numBuffers)
	fmt.Fprintf(w, "pages\t%d\n", totalPages)
	fmt.Fprintf(w, "bytes\t%d\n", totalBytes)
	fmt.Fprintf(w, "deleted\t%d\n", prod.deleted.Load())
	fmt.Fprintf(w, "elapsed\t%v\n", elapsed)
	w.Flush()
}
