// Package exchange implements the client side of the inter-node page exchange.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package exchange

import (
	"encoding/binary"
	"io"

	"github.com/NVIDIA/exchange/cmn/debug"
	"github.com/OneOfOne/xxhash"
	"github.com/pierrec/lz4/v3"
	"github.com/pkg/errors"
)

// Page wire frame:
//
//	[uint32 rowCount][byte codec][uint32 uncompressedSize][uint32 size][payload]
//
// all integers big-endian; codec enum below
const (
	codecRaw = byte(iota)
	codecLZ4
)

const pageHdrSize = 4 + 1 + 4 + 4

// sanity cap on a single page's uncompressed payload
const maxPageSize = 128 * 1024 * 1024

type (
	// Page is an opaque binary record plus its row count. The client never
	// inspects Data; Digest (xxhash64 of the uncompressed payload) is
	// computed by the codec for the owner's integrity accounting.
	Page struct {
		Data   []byte
		Digest uint64
		Rows   int32
	}

	// PageReader deserializes an ordered list of pages from a body stream.
	PageReader func(r io.Reader) ([]*Page, error)
)

func (p *Page) Size() int64 { return int64(len(p.Data)) }

// ReadPages is the default PageReader: it consumes the stream to EOF,
// decompressing LZ4-coded payloads.
func ReadPages(r io.Reader) (pages []*Page, err error) {
	var hdr [pageHdrSize]byte
	for {
		if _, err = io.ReadFull(r, hdr[:]); err != nil {
			if err == io.EOF {
				return pages, nil
			}
			return nil, errors.Wrap(err, "read page header")
		}
		var (
			rows    = int32(binary.BigEndian.Uint32(hdr[0:]))
			codec   = hdr[4]
			rawSize = binary.BigEndian.Uint32(hdr[5:])
			size    = binary.BigEndian.Uint32(hdr[9:])
		)
		if rows < 0 || rawSize > maxPageSize || size > maxPageSize {
			return nil, errors.Errorf("corrupted page header (rows %d, size %d/%d)", rows, rawSize, size)
		}
		payload := make([]byte, size)
		if _, err = io.ReadFull(r, payload); err != nil {
			return nil, errors.Wrap(err, "read page payload")
		}
		page := &Page{Rows: rows}
		switch codec {
		case codecRaw:
			debug.Assert(rawSize == size)
			page.Data = payload
		case codecLZ4:
			data := make([]byte, rawSize)
			n, errd := lz4.UncompressBlock(payload, data)
			if errd != nil {
				return nil, errors.Wrap(errd, "lz4 page payload")
			}
			if uint32(n) != rawSize {
				return nil, errors.Errorf("lz4 page payload: short block (%d != %d)", n, rawSize)
			}
			page.Data = data
		default:
			return nil, errors.Errorf("unknown page codec %d", codec)
		}
		page.Digest = xxhash.Checksum64(page.Data)
		pages = append(pages, page)
	}
}

// AppendPage serializes one page onto buf, LZ4-compressing the payload when
// compress is set and the block actually shrinks. Producer/test-side helper.
func AppendPage(buf []byte, rows int32, payload []byte, compress bool) []byte {
	var (
		codec = codecRaw
		body  = payload
	)
	if compress && len(payload) > 0 {
		ht := make([]int, 1<<16)
		dst := make([]byte, len(payload))
		if n, err := lz4.CompressBlock(payload, dst, ht); err == nil && n > 0 && n < len(payload) {
			codec = codecLZ4
			body = dst[:n]
		}
	}
	var hdr [pageHdrSize]byte
	binary.BigEndian.PutUint32(hdr[0:], uint32(rows))
	hdr[4] = codec
	binary.BigEndian.PutUint32(hdr[5:], uint32(len(payload)))
	binary.BigEndian.PutUint32(hdr[9:], uint32(len(body)))
	buf = append(buf, hdr[:]...)
	return append(buf, body...)
}
