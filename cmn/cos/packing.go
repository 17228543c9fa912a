// Package cos provides common low-level types and utilities for all exchange packages
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"github.com/NVIDIA/exchange/cmn/debug"
	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.Config{
	EscapeHTML:             false,
	ValidateJsonRawMessage: false,
	SortMapKeys:            true,
}.Froze()

func MustMarshal(v any) []byte {
	b, err := jsonAPI.Marshal(v)
	debug.AssertNoErr(err)
	return b
}

func MorphMarshal(data, v any) error {
	b, err := jsonAPI.Marshal(data)
	if err != nil {
		return err
	}
	return jsonAPI.Unmarshal(b, v)
}
