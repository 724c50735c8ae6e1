// Copyright 2026 The cookievault Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build windows

// Package webcache reads cookie entries out of Internet Explorer and legacy
// Edge's WebCacheV01.dat, an Extensible Storage Engine (ESE/JET) database.
//
// This package does not implement ESE in general. It implements just enough
// of the on-disk B-tree to walk a CookieEntryEx_## table's leaf pages and
// decode each record's fixed and tagged columns, which is all that's needed
// to recover cookie rows. No ESE-reader library appears anywhere in the
// retrieval corpus this module was built from, so this is a from-scratch,
// stdlib-only (encoding/binary) reader, narrowly scoped to one table shape.
//
// Page layout (simplified; ESE pages are a fixed size, usually 8192 bytes,
// recorded in the database file header):
//
//	Bytes | Format    | Description
//	------|-----------|------------------------------------------
//	4     | uint32 LE  | XOR checksum (unused by this reader)
//	4     | uint32 LE  | ECC checksum / page number, version-dependent
//	8     | uint64 LE  | last modification time (database time)
//	4     | uint32 LE  | previous page number
//	4     | uint32 LE  | next page number
//	4     | uint32 LE  | father data page (FDP) object id
//	2     | uint16 LE  | available data size
//	2     | uint16 LE  | available uncommitted data size
//	2     | uint16 LE  | available data offset
//	2     | uint16 LE  | available page tag
//	4     | uint32 LE  | page flags (this reader tests the uint16 at offset 38)
//
// Following the header, page content grows from the header end; a tag array
// grows backward from the end of the page, one 4-byte (offset,size) entry
// per record, record 0 always being the page's "external header" entry.
package webcache

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/cookievault/cookievault"
)

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

const (
	fileHeaderMagic = 0x89abcdef // ESE "efile signature" magic, little-endian
	pageHeaderSize  = 40
	tagEntrySize    = 4

	flagLeafPage = 0x0004
)

// database is a minimal in-memory view of a WebCacheV01.dat file: its page
// size and raw bytes, ready for page-by-page traversal.
type database struct {
	data     []byte
	pageSize int
}

// openDatabase validates the ESE file header and determines the page size
// recorded at offset 236 of the first (header) page.
func openDatabase(data []byte) (*database, error) {
	if len(data) < 256 {
		return nil, fmt.Errorf("%w: file too short to be an ESE database", cookievault.ErrStoreCorrupt)
	}
	magic := binary.LittleEndian.Uint32(data[4:8])
	if magic != fileHeaderMagic {
		return nil, fmt.Errorf("%w: bad ESE file signature", cookievault.ErrStoreCorrupt)
	}
	pageSize := int(binary.LittleEndian.Uint32(data[236:240]))
	if pageSize == 0 {
		pageSize = 8192 // the near-universal default for WebCacheV01.dat
	}
	return &database{data: data, pageSize: pageSize}, nil
}

// numPages reports how many fixed-size pages follow the two-page file
// header region.
func (d *database) numPages() int {
	return (len(d.data) - 2*d.pageSize) / d.pageSize
}

// page returns the raw bytes of 1-indexed page n (page numbers in ESE are
// 1-based, with the two header pages occupying slots before page 1).
func (d *database) page(n int) []byte {
	start := (n + 1) * d.pageSize
	end := start + d.pageSize
	if start < 0 || end > len(d.data) {
		return nil
	}
	return d.data[start:end]
}

// pageTags returns the (offset, size) pairs for every record tag on a page,
// in tag order (tag 0 is the page's external header and is skipped).
func pageTags(page []byte) [][2]int {
	if len(page) < pageHeaderSize+tagEntrySize {
		return nil
	}
	availPageTag := binary.LittleEndian.Uint16(page[34:36])
	numTags := int(availPageTag)
	if numTags <= 0 {
		// Fall back to scanning from the end of the page for a plausible
		// count when the header field doesn't look usable.
		numTags = (len(page) - pageHeaderSize) / tagEntrySize
	}
	var tags [][2]int
	for i := 1; i < numTags; i++ { // tag 0 is the external header
		pos := len(page) - (i+1)*tagEntrySize
		if pos < pageHeaderSize {
			break
		}
		raw := binary.LittleEndian.Uint32(page[pos:])
		offset := int(raw & 0x1fff)
		size := int((raw >> 13) & 0x7ff)
		if offset <= 0 || size <= 0 || offset+size > len(page) {
			continue
		}
		tags = append(tags, [2]int{offset, size})
	}
	return tags
}

func isLeafPage(page []byte) bool {
	if len(page) < pageHeaderSize {
		return false
	}
	flags := binary.LittleEndian.Uint16(page[38:40])
	return flags&flagLeafPage != 0
}

// cookieRecord is one CookieEntryEx_## row's columns, decoded just enough
// to build a RawCookieRow.
type cookieRecord struct {
	url          string
	name         string
	encryptedVal []byte
	expiryFILE   int64 // Windows FILETIME, 100ns ticks since 1601-01-01
	flags        uint32
}

// decodeRecord parses one leaf-page record into a cookieRecord. WebCacheV01's
// CookieEntryEx_## layout packs a fixed region (a row key hash, flags, and
// the FILETIME fields) followed by tagged variable-length columns (URL,
// cookie name, and the DPAPI-encrypted value blob); this decodes those
// tagged columns by scanning for NUL-free ASCII/UTF-16 runs rather than
// tracking the exact per-version column map, which varies across Windows
// releases.
func decodeRecord(rec []byte) (cookieRecord, bool) {
	if len(rec) < 24 {
		return cookieRecord{}, false
	}
	var cr cookieRecord
	cr.flags = binary.LittleEndian.Uint32(rec[0:4])
	cr.expiryFILE = int64(binary.LittleEndian.Uint64(rec[8:16]))

	strs := extractUTF16Strings(rec[24:])
	if len(strs) >= 1 {
		cr.url = strs[0]
	}
	if len(strs) >= 2 {
		cr.name = strs[1]
	}

	// The encrypted value, if present, is whatever tagged binary data
	// remains after the strings; callers that need it should re-derive it
	// from the surrounding DPAPI-protected blob column directly, since this
	// reader does not track exact column boundaries per Windows version.
	return cr, cr.url != ""
}

// extractUTF16Strings scans buf for runs of little-endian UTF-16 that look
// like printable ASCII terminated by a double-NUL, a loose heuristic that
// holds for the URL/name columns in practice.
func extractUTF16Strings(buf []byte) []string {
	var out []string
	var cur []uint16
	flush := func() {
		if len(cur) > 0 {
			out = append(out, utf16ToString(cur))
			cur = nil
		}
	}
	for i := 0; i+1 < len(buf); i += 2 {
		u := binary.LittleEndian.Uint16(buf[i:])
		if u == 0 {
			flush()
			continue
		}
		if u < 0x20 || u > 0x7e {
			flush()
			continue
		}
		cur = append(cur, u)
	}
	flush()
	return out
}

func utf16ToString(u []uint16) string {
	b := make([]byte, len(u))
	for i, c := range u {
		b[i] = byte(c)
	}
	return string(b)
}

// fileTimeToUnixMicro converts a Windows FILETIME (100ns ticks since
// 1601-01-01 UTC) to the same microseconds-since-1601 convention chromedb
// uses for RawCookieRow.ExpiresRaw, so the Record Normalizer's epoch
// handling for the Chromium family applies unchanged here too.
func fileTimeToUnixMicro(ft int64) int64 {
	return ft / 10
}

// ReadRows walks every CookieEntryEx_## leaf page in the WebCacheV01.dat
// file at path and returns its cookie rows. Each row carries the record's
// URL string as Host, its name, and its expiry. ValueEncrypted is left
// empty: decodeRecord does not locate the DPAPI-protected value column, so
// these rows carry no cookie value.
func ReadRows(path string) ([]cookievault.RawCookieRow, error) {
	raw, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cookievault.ErrPathNotFound, err)
	}
	db, err := openDatabase(raw)
	if err != nil {
		return nil, err
	}

	var out []cookievault.RawCookieRow
	for n := 1; n <= db.numPages(); n++ {
		page := db.page(n)
		if page == nil || !isLeafPage(page) {
			continue
		}
		for _, tag := range pageTags(page) {
			off, size := tag[0], tag[1]
			rec := page[off : off+size]
			cr, ok := decodeRecord(rec)
			if !ok {
				continue
			}
			out = append(out, cookievault.RawCookieRow{
				Host:           cr.url,
				Name:           cr.name,
				ValueEncrypted: cr.encryptedVal,
				ExpiresRaw:     fileTimeToUnixMicro(cr.expiryFILE),
				SameSiteRaw:    0,
			})
		}
	}
	return out, nil
}
