// Package cos provides common low-level types and utilities for all exchange packages
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"sync"

	"github.com/NVIDIA/exchange/cmn/atomic"
	"github.com/NVIDIA/exchange/cmn/mono"
	"github.com/teris-io/shortid"
)

// Alphabet for generating UUIDs, similar to the shortid.DEFAULT_ABC
// NOTE: len(uuidABC) > 0x3f - see GenTie()
const uuidABC = "-5nZJDft6LuzsjGNpPwY7rQa39vehq4i1cV2FROo8yHSlC0BUEdWbIxMmTgKXAk_"

const LenShortID = 9 // UUID length, as per https://github.com/teris-io/shortid#id-length

var (
	sid     *shortid.Shortid
	sidOnce sync.Once
	rtie    atomic.Uint32
)

func InitShortID(seed uint64) {
	sid = shortid.MustNew(4 /*worker*/, uuidABC, seed)
}

//
// UUID
//

func GenUUID() (uuid string) {
	sidOnce.Do(func() {
		if sid == nil {
			InitShortID(uint64(mono.NanoTime()))
		}
	})
	var h, t string
	uuid = sid.MustGenerate()
	if !isAlpha(uuid[0]) {
		tie := int(rtie.Add(1))
		h = string(rune('A' + tie%26))
	}
	c := uuid[len(uuid)-1]
	if c == '-' || c == '_' {
		tie := int(rtie.Add(1))
		t = string(rune('a' + tie%26))
	}
	return h + uuid + t
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// 3-letter tie breaker (fast)
func GenTie() string {
	tie := rtie.Add(1)
	b0 := uuidABC[tie&0x3f]
	b1 := uuidABC[-tie&0x3f]
	b2 := uuidABC[(tie>>2)&0x3f]
	return string([]byte{b0, b1, b2})
}
