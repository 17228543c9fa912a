// Package exchange implements the client side of the inter-node page exchange.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package exchange_test

import (
	"bytes"
	"testing"

	"github.com/NVIDIA/exchange/exchange"
	"github.com/NVIDIA/exchange/tools/tassert"
)

func TestPageCodecCorrupt(t *testing.T) {
	payload := []byte("some page payload")
	var body []byte
	body = exchange.AppendPage(body, 1, payload, false)

	// flip the codec byte to an unknown value
	body[4] = 0x7f
	_, err := exchange.ReadPages(bytes.NewReader(body))
	tassert.Fatalf(t, err != nil, "expected unknown-codec error")

	// truncated payload
	body[4] = 0
	_, err = exchange.ReadPages(bytes.NewReader(body[:len(body)-3]))
	tassert.Fatalf(t, err != nil, "expected short-read error")
}

func TestPageCodecEmptyStream(t *testing.T) {
	pages, err := exchange.ReadPages(bytes.NewReader(nil))
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, len(pages) == 0, "pages %d", len(pages))
}
