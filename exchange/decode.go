// Package exchange implements the client side of the inter-node page exchange.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package exchange

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/NVIDIA/exchange/cmn/cos"
	pkgerr "github.com/pkg/errors"
)

// Decode parses one GET response into a PagesResponse:
//   - 204 No Content => empty response carrying the header-derived tokens
//   - any other non-200 status => *ErrPageTransport
//   - 200 with a non page-stream content type => *ErrPageTransport
//     (covers error pages served under 200)
//   - missing token/next-token/complete header => *ErrPageTransport
//
// The body is consumed through readPages capped at maxSize (0 = no cap) and
// closed on all exit paths.
func Decode(resp *http.Response, readPages PageReader, maxSize int64) (*PagesResponse, error) {
	defer cos.DrainAndClose(resp.Body)

	uri := ""
	if resp.Request != nil && resp.Request.URL != nil {
		uri = resp.Request.URL.String()
	}
	token, err := headerUint64(resp.Header, HdrPageToken, uri)
	if err != nil {
		return nil, err
	}
	nextToken, err := headerUint64(resp.Header, HdrPageNextToken, uri)
	if err != nil {
		return nil, err
	}
	complete, err := headerBool(resp.Header, HdrBufferComplete, uri)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNoContent {
		return EmptyPagesResponse(token, nextToken, complete), nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, NewErrPageTransport(resp.StatusCode,
			"unexpected response status "+resp.Status, uri)
	}
	if !isPageStream(resp.Header.Get(cos.HdrContentType)) {
		return nil, NewErrPageTransport(resp.StatusCode,
			"expected "+ContentTypePages+", got "+resp.Header.Get(cos.HdrContentType), uri)
	}

	body := io.Reader(resp.Body)
	if maxSize > 0 {
		body = cos.NewCappedReader(resp.Body, maxSize, ErrResponseTooLarge)
	}
	pages, err := readPages(body)
	if err != nil {
		if errors.Is(err, ErrResponseTooLarge) {
			return nil, err // the client rewrites it to *ErrPageTooLarge
		}
		return nil, NewErrPageTransportCause(pkgerr.Wrap(err, "decode pages"), uri)
	}
	return NewPagesResponse(token, nextToken, pages, complete), nil
}

func headerUint64(hdr http.Header, name, uri string) (uint64, error) {
	s := hdr.Get(name)
	if s == "" {
		return 0, NewErrPageTransport(0, "missing required header "+name, uri)
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, NewErrPageTransport(0, "malformed header "+name+"="+s, uri)
	}
	return v, nil
}

func headerBool(hdr http.Header, name, uri string) (bool, error) {
	switch s := hdr.Get(name); s {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "":
		return false, NewErrPageTransport(0, "missing required header "+name, uri)
	default:
		return false, NewErrPageTransport(0, "malformed header "+name+"="+s, uri)
	}
}

func isPageStream(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == ContentTypePages
}
