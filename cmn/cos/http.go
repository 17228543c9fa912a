// Package cos provides common low-level types and utilities for all exchange packages
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"io"
)

const (
	HdrContentType = "Content-Type"

	ContentJSON = "application/json"
)

// cap the amount drained before close
const maxDrainSize = 256 * 1024

func Close(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}

func DrainReader(r io.Reader) {
	_, _ = io.CopyN(io.Discard, r, maxDrainSize)
}

func DrainAndClose(rc io.ReadCloser) {
	if rc == nil {
		return
	}
	DrainReader(rc)
	_ = rc.Close()
}

// cappedReader reads at most limit bytes; an attempt to read past the limit
// returns errOver.
type cappedReader struct {
	r       io.Reader
	errOver error
	left    int64
}

func NewCappedReader(r io.Reader, limit int64, errOver error) io.Reader {
	return &cappedReader{r: r, left: limit, errOver: errOver}
}

func (cr *cappedReader) Read(p []byte) (n int, err error) {
	if cr.left <= 0 {
		// at the cap: distinguish EOF from overflow
		var b [1]byte
		n, err = cr.r.Read(b[:])
		if n > 0 {
			return 0, cr.errOver
		}
		if err != nil {
			return 0, err
		}
		return 0, cr.errOver
	}
	if int64(len(p)) > cr.left {
		p = p[:cr.left]
	}
	n, err = cr.r.Read(p)
	cr.left -= int64(n)
	return n, err
}
