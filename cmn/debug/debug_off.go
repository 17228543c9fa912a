//go:build !debug

// Package provides debug utilities
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package debug

import (
	"sync"
)

func ON() bool { return false }

func Infof(_ string, _ ...any) {}

func Func(_ func()) {}

func Assert(_ bool, _ ...any)            {}
func AssertFunc(_ func() bool, _ ...any) {}
func AssertNoErr(_ error)                {}
func Assertf(_ bool, _ string, _ ...any) {}

func AssertMutexLocked(_ *sync.Mutex)    {}
func AssertMutexNotLocked(_ *sync.Mutex) {}
