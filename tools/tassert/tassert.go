// Package tassert provides common asserts for tests
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package tassert

import (
	"fmt"
	"runtime/debug"
	"testing"
)

func CheckFatal(tb testing.TB, err error) {
	if err != nil {
		printStack()
		tb.Fatal(err)
	}
}

func CheckError(tb testing.TB, err error) {
	if err != nil {
		printStack()
		tb.Error(err)
	}
}

func Fatalf(tb testing.TB, cond bool, msg string, args ...any) {
	if !cond {
		printStack()
		tb.Fatalf(msg, args...)
	}
}

func Errorf(tb testing.TB, cond bool, msg string, args ...any) {
	if !cond {
		printStack()
		tb.Errorf(msg, args...)
	}
}

func printStack() {
	fmt.Println(string(debug.Stack()))
}
