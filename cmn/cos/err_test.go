// Package cos provides common low-level types and utilities for all exchange packages
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package cos_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/NVIDIA/exchange/cmn/cos"
	"github.com/NVIDIA/exchange/tools/tassert"
)

func TestErrsDedup(t *testing.T) {
	var errs cos.Errs
	errs.Add(errors.New("boom"))
	errs.Add(errors.New("boom"))
	errs.Add(errors.New("bang"))
	tassert.Errorf(t, errs.Cnt() == 2, "cnt %d", errs.Cnt())

	cnt, joined := errs.JoinErr()
	tassert.Errorf(t, cnt == 2, "join cnt %d", cnt)
	tassert.Fatalf(t, joined != nil, "expected joined error")
	tassert.Errorf(t, strings.Contains(errs.Error(), "more error"), "%s", errs.Error())
}

func TestCappedReader(t *testing.T) {
	sentinel := errors.New("over the cap")

	// under the cap: reads through to EOF
	r := cos.NewCappedReader(bytes.NewReader([]byte("0123456789")), 32, sentinel)
	b, err := io.ReadAll(r)
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, len(b) == 10, "read %d", len(b))

	// exactly at the cap: still EOF
	r = cos.NewCappedReader(bytes.NewReader([]byte("0123456789")), 10, sentinel)
	b, err = io.ReadAll(r)
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, len(b) == 10, "read %d", len(b))

	// past the cap: the sentinel
	r = cos.NewCappedReader(bytes.NewReader([]byte("0123456789")), 9, sentinel)
	_, err = io.ReadAll(r)
	tassert.Fatalf(t, errors.Is(err, sentinel), "expected sentinel, got %v", err)
}
