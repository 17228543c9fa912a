// Package exchange implements the client side of the inter-node page exchange.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package exchange_test

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/NVIDIA/exchange/exchange"
	"github.com/NVIDIA/exchange/tools/tassert"
	"github.com/OneOfOne/xxhash"
)

func mkResp(t *testing.T, status int, hdrs map[string]string, body []byte) *http.Response {
	req, err := http.NewRequest(http.MethodGet, "http://h/t/0", http.NoBody)
	tassert.CheckFatal(t, err)
	hdr := http.Header{}
	for k, v := range hdrs {
		hdr.Set(k, v)
	}
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     hdr,
		Body:       io.NopCloser(bytes.NewReader(body)),
		Request:    req,
	}
}

func tokenHdrs(token, next, complete string) map[string]string {
	return map[string]string{
		exchange.HdrPageToken:      token,
		exchange.HdrPageNextToken:  next,
		exchange.HdrBufferComplete: complete,
	}
}

func TestDecodeNoContent(t *testing.T) {
	resp := mkResp(t, http.StatusNoContent, tokenHdrs("3", "3", "false"), nil)
	res, err := exchange.Decode(resp, exchange.ReadPages, 0)
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, res.Token() == 3 && res.NextToken() == 3, "tokens %d/%d", res.Token(), res.NextToken())
	tassert.Errorf(t, res.NumPages() == 0, "pages %d", res.NumPages())
	tassert.Errorf(t, !res.ClientComplete(), "unexpected complete")
}

func TestDecodeBadStatus(t *testing.T) {
	resp := mkResp(t, http.StatusServiceUnavailable, tokenHdrs("0", "0", "false"), nil)
	_, err := exchange.Decode(resp, exchange.ReadPages, 0)
	var te *exchange.ErrPageTransport
	tassert.Fatalf(t, errors.As(err, &te), "expected transport error, got %v", err)
	tassert.Errorf(t, te.Status() == http.StatusServiceUnavailable, "status %d", te.Status())
}

func TestDecodeWrongContentType(t *testing.T) {
	hdrs := tokenHdrs("0", "1", "false")
	hdrs["Content-Type"] = "text/html; charset=utf-8"
	resp := mkResp(t, http.StatusOK, hdrs, []byte("<html>oops</html>"))
	_, err := exchange.Decode(resp, exchange.ReadPages, 0)
	var te *exchange.ErrPageTransport
	tassert.Fatalf(t, errors.As(err, &te), "expected transport error, got %v", err)
	tassert.Errorf(t, strings.Contains(err.Error(), exchange.ContentTypePages), "err %v", err)
}

func TestDecodeMissingHeader(t *testing.T) {
	for _, missing := range []string{
		exchange.HdrPageToken, exchange.HdrPageNextToken, exchange.HdrBufferComplete,
	} {
		hdrs := tokenHdrs("0", "1", "false")
		delete(hdrs, missing)
		resp := mkResp(t, http.StatusNoContent, hdrs, nil)
		_, err := exchange.Decode(resp, exchange.ReadPages, 0)
		var te *exchange.ErrPageTransport
		tassert.Fatalf(t, errors.As(err, &te), "expected transport error, got %v", err)
		tassert.Errorf(t, strings.Contains(err.Error(), missing), "error must name %s: %v", missing, err)
	}
}

func TestDecodePages(t *testing.T) {
	var (
		raw        = []byte("tiny")
		comprsible = bytes.Repeat([]byte("abcd1234"), 512)
	)
	var body []byte
	body = exchange.AppendPage(body, 1, raw, false)
	body = exchange.AppendPage(body, 512, comprsible, true /*lz4*/)

	hdrs := tokenHdrs("7", "9", "true")
	hdrs["Content-Type"] = exchange.ContentTypePages
	resp := mkResp(t, http.StatusOK, hdrs, body)
	res, err := exchange.Decode(resp, exchange.ReadPages, int64(len(body)))
	tassert.CheckFatal(t, err)

	tassert.Fatalf(t, res.NumPages() == 2, "pages %d", res.NumPages())
	tassert.Errorf(t, res.Token() == 7 && res.NextToken() == 9 && res.ClientComplete(), "%s", res)
	pages := res.Pages()
	tassert.Errorf(t, bytes.Equal(pages[0].Data, raw) && pages[0].Rows == 1, "page 0 mismatch")
	tassert.Errorf(t, bytes.Equal(pages[1].Data, comprsible) && pages[1].Rows == 512, "page 1 mismatch")
	tassert.Errorf(t, pages[1].Digest == xxhash.Checksum64(comprsible), "digest mismatch")
}

func TestDecodeTooLarge(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 4096)
	var body []byte
	body = exchange.AppendPage(body, 1, payload, false)

	hdrs := tokenHdrs("0", "1", "false")
	hdrs["Content-Type"] = exchange.ContentTypePages
	resp := mkResp(t, http.StatusOK, hdrs, body)
	_, err := exchange.Decode(resp, exchange.ReadPages, 128)
	tassert.Fatalf(t, errors.Is(err, exchange.ErrResponseTooLarge), "expected too-large hint, got %v", err)
}
