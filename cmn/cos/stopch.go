// Package cos provides common low-level types and utilities for all exchange packages
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"github.com/NVIDIA/exchange/cmn/atomic"
)

type StopCh struct {
	ch      chan struct{}
	stopped atomic.Bool
}

func NewStopCh() (s *StopCh) {
	s = &StopCh{}
	s.Init()
	return
}

func (s *StopCh) Init() { s.ch = make(chan struct{}) }

func (s *StopCh) Listen() <-chan struct{} { return s.ch }

func (s *StopCh) Close() {
	if s.stopped.CAS(false, true) {
		close(s.ch)
	}
}
