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

package webcache

import (
	"encoding/binary"
	"testing"
)

// buildSyntheticPage constructs a single leaf page containing one record
// whose tagged columns hold a URL and a cookie name, matching the loose
// layout decodeRecord expects.
func buildSyntheticPage(pageSize int, url, name string) []byte {
	page := make([]byte, pageSize)

	// Fixed record region: flags (4), unused (4), FILETIME (8).
	rec := make([]byte, 24)
	binary.LittleEndian.PutUint32(rec[0:4], 0)
	binary.LittleEndian.PutUint64(rec[8:16], 132000000000000000) // arbitrary FILETIME

	appendUTF16 := func(s string) {
		for _, r := range s {
			var buf [2]byte
			binary.LittleEndian.PutUint16(buf[:], uint16(r))
			rec = append(rec, buf[:]...)
		}
		rec = append(rec, 0, 0) // NUL terminator
	}
	appendUTF16(url)
	appendUTF16(name)

	// Place the record right after the page header.
	const recOffset = pageHeaderSize
	copy(page[recOffset:], rec)

	// Page header: mark as a leaf page, record one tag.
	binary.LittleEndian.PutUint16(page[38:40], flagLeafPage)
	binary.LittleEndian.PutUint16(page[34:36], 2) // tag 0 (external header) + tag 1 (our record)

	// Tag array grows backward from the end of the page. Tag 0 is a
	// zero-length external header; tag 1 describes our record.
	tag0Pos := pageSize - tagEntrySize
	binary.LittleEndian.PutUint32(page[tag0Pos:], 0)

	tag1Pos := pageSize - 2*tagEntrySize
	tagVal := uint32(recOffset) | (uint32(len(rec)) << 13)
	binary.LittleEndian.PutUint32(page[tag1Pos:], tagVal)

	return page
}

func TestDecodeSyntheticLeafPage(t *testing.T) {
	const pageSize = 8192
	page := buildSyntheticPage(pageSize, "http://example.com/", "session")

	if !isLeafPage(page) {
		t.Fatal("expected synthetic page to be classified as a leaf page")
	}

	tags := pageTags(page)
	if len(tags) != 1 {
		t.Fatalf("pageTags returned %d tags, want 1", len(tags))
	}

	off, size := tags[0][0], tags[0][1]
	rec := page[off : off+size]
	cr, ok := decodeRecord(rec)
	if !ok {
		t.Fatal("decodeRecord reported failure on a well-formed synthetic record")
	}
	if cr.url != "http://example.com/" {
		t.Errorf("url = %q, want %q", cr.url, "http://example.com/")
	}
	if cr.name != "session" {
		t.Errorf("name = %q, want %q", cr.name, "session")
	}
}

func TestFileTimeToUnixMicro(t *testing.T) {
	// 116444736000000000 is the FILETIME for the Unix epoch (1970-01-01);
	// converting should land on 11644473600000000, the Unix epoch in the
	// chromedb-style microseconds-since-1601 convention that ExpiresRaw
	// always carries here.
	const epochFileTime = 116444736000000000
	got := fileTimeToUnixMicro(epochFileTime)
	want := int64(epochFileTime / 10)
	if got != want {
		t.Errorf("fileTimeToUnixMicro(%d) = %d, want %d", epochFileTime, got, want)
	}
}
