// Package hk provides a mechanism to execute one-shot functions
// immediately or at a specified delay. A shared housekeeping goroutine keeps
// the deadlines; each function runs on its own goroutine.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package hk_test

import (
	"sync"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Housekeeper", func() {
	It("should dispatch immediate work right away", func() {
		fired := make(chan struct{})
		keeper.Submit(func() { close(fired) })
		Eventually(fired, time.Second).Should(BeClosed())
	})

	It("should respect the requested delay", func() {
		fired := make(chan struct{})
		keeper.SubmitAfter(150*time.Millisecond, func() { close(fired) })
		Consistently(fired, 50*time.Millisecond).ShouldNot(BeClosed())
		Eventually(fired, time.Second).Should(BeClosed())
	})

	It("should fire delayed tasks in deadline order", func() {
		var (
			mu    sync.Mutex
			order []string
		)
		note := func(s string) func() {
			return func() {
				mu.Lock()
				order = append(order, s)
				mu.Unlock()
			}
		}
		keeper.SubmitAfter(120*time.Millisecond, note("slow"))
		keeper.SubmitAfter(30*time.Millisecond, note("fast"))
		Eventually(func() []string {
			mu.Lock()
			defer mu.Unlock()
			return append([]string(nil), order...)
		}, time.Second).Should(Equal([]string{"fast", "slow"}))
	})

	It("should treat a non-positive delay as immediate", func() {
		fired := make(chan struct{})
		keeper.SubmitAfter(0, func() { close(fired) })
		Eventually(fired, time.Second).Should(BeClosed())
	})
})
