//go:build !mono

// Package mono provides low-level monotonic time
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package mono

import (
	"time"
)

var started = time.Now()

func NanoTime() int64 { return int64(time.Since(started)) }
