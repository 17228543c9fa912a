//go:build debug

// Package provides debug utilities
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package debug

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/NVIDIA/exchange/cmn/nlog"
)

const mutexLocked = 1

func ON() bool { return true }

func Infof(f string, a ...any) {
	nlog.InfoDepth(1, fmt.Sprintf("[DEBUG] "+f, a...))
}

func Func(f func()) { f() }

func Assert(cond bool, a ...any) {
	if !cond {
		msg := "DEBUG PANIC"
		if len(a) > 0 {
			msg += ": " + fmt.Sprint(a...)
		}
		nlog.ErrorDepth(1, msg)
		nlog.Flush(true)
		panic(msg)
	}
}

func AssertFunc(f func() bool, a ...any) { Assert(f(), a...) }

func AssertNoErr(err error) {
	if err != nil {
		nlog.ErrorDepth(1, err)
		nlog.Flush(true)
		panic(err)
	}
}

func Assertf(cond bool, f string, a ...any) {
	if !cond {
		Assert(false, fmt.Sprintf(f, a...))
	}
}

func AssertMutexLocked(m *sync.Mutex) {
	state := reflect.ValueOf(m).Elem().FieldByName("state")
	Assert(state.Int()&mutexLocked == mutexLocked, "Mutex not Locked")
}

func AssertMutexNotLocked(m *sync.Mutex) {
	state := reflect.ValueOf(m).Elem().FieldByName("state")
	Assert(state.Int()&mutexLocked == 0, "Mutex Locked")
}
