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

package cookievault

import (
	"testing"
	"time"
)

func TestMatchesDomain(t *testing.T) {
	tests := []struct {
		host    string
		domains []string
		want    bool
	}{
		{"example.com", nil, true},
		{"example.com", []string{"example.com"}, true},
		{"sub.example.com", []string{"example.com"}, true},
		{".example.com", []string{"example.com"}, true},
		{"example.com", []string{".example.com"}, true},
		{"notexample.com", []string{"example.com"}, false},
		{"example.com", []string{"other.com"}, false},
	}
	for _, tc := range tests {
		if got := matchesDomain(tc.host, tc.domains); got != tc.want {
			t.Errorf("matchesDomain(%q, %v) = %v, want %v", tc.host, tc.domains, got, tc.want)
		}
	}
}

func TestChromiumMicrosToTime(t *testing.T) {
	// 11644473600 seconds between 1601-01-01 and 1970-01-01; an epoch-micros
	// value of exactly that many seconds (in microseconds) should land on
	// the Unix epoch.
	got := chromiumMicrosToTime(chromeEpochOffset * 1e6)
	want := time.Unix(0, 0).UTC()
	if !got.Equal(want) {
		t.Errorf("chromiumMicrosToTime = %v, want %v", got, want)
	}
}

func TestNormalizeFirefoxExpiryIsUnixSeconds(t *testing.T) {
	const unixSeconds = 1893456000 // 2030-01-01 UTC
	rows := []RawCookieRow{{
		Host:       "example.com",
		Name:       "session",
		ValuePlain: "abc",
		ExpiresRaw: unixSeconds,
	}}
	deps := cipherDeps{family: FamilyFirefox, warnf: func(string, ...any) {}}

	got := normalize(rows, deps, nil)
	if len(got) != 1 {
		t.Fatalf("normalize returned %d cookies, want 1", len(got))
	}
	want := time.Unix(unixSeconds, 0).UTC()
	if !got[0].Expires.Equal(want) {
		t.Errorf("Expires = %v, want %v", got[0].Expires, want)
	}
}

func TestNormalizeChromiumExpiryIsMicrosSince1601(t *testing.T) {
	rows := []RawCookieRow{{
		Host:       "example.com",
		Name:       "session",
		ValuePlain: "abc",
		ExpiresRaw: chromeEpochOffset * 1e6,
	}}
	deps := cipherDeps{family: FamilyChromium, warnf: func(string, ...any) {}}

	got := normalize(rows, deps, nil)
	if len(got) != 1 {
		t.Fatalf("normalize returned %d cookies, want 1", len(got))
	}
	if !got[0].Expires.Equal(time.Unix(0, 0).UTC()) {
		t.Errorf("Expires = %v, want Unix epoch", got[0].Expires)
	}
}

func TestNormalizeDropsUndecryptableRow(t *testing.T) {
	rows := []RawCookieRow{{
		Host:           "example.com",
		Name:           "session",
		ValueEncrypted: []byte("v10not-block-aligned"),
	}}
	deps := cipherDeps{
		family:      FamilyChromium,
		chromiumKey: make([]byte, 16), // present but the ciphertext below is malformed
		warnf:       func(string, ...any) {},
	}

	got := normalize(rows, deps, nil)
	if len(got) != 0 {
		t.Errorf("normalize returned %d cookies, want 0 (undecryptable row should be dropped)", len(got))
	}
}

func TestNormalizeDropsRowWithNoKeyRecovered(t *testing.T) {
	rows := []RawCookieRow{{
		Host:           "example.com",
		Name:           "session",
		ValueEncrypted: []byte("v10whatever"),
	}}
	deps := cipherDeps{family: FamilyChromium, warnf: func(string, ...any) {}}

	got := normalize(rows, deps, nil)
	if len(got) != 0 {
		t.Errorf("normalize returned %d cookies, want 0 (no key recovered, nothing to decrypt with)", len(got))
	}
}

func TestNormalizeAppliesDomainFilterAfterDecode(t *testing.T) {
	rows := []RawCookieRow{
		{Host: "example.com", Name: "a", ValuePlain: "1"},
		{Host: "other.com", Name: "b", ValuePlain: "2"},
	}
	deps := cipherDeps{family: FamilyChromium, warnf: func(string, ...any) {}}

	got := normalize(rows, deps, []string{"example.com"})
	if len(got) != 1 || got[0].Name != "a" {
		t.Errorf("normalize with domain filter = %+v, want only the example.com row", got)
	}
}

func TestResolveValuePlainWins(t *testing.T) {
	r := RawCookieRow{ValuePlain: "plain-value", ValueEncrypted: []byte("v10whatever")}
	got, ok := resolveValue(r, cipherDeps{warnf: func(string, ...any) {}})
	if !ok || got != "plain-value" {
		t.Errorf("resolveValue = (%q, %v), want (%q, true)", got, ok, "plain-value")
	}
}

func TestResolveValueEmptyIsLegitimate(t *testing.T) {
	got, ok := resolveValue(RawCookieRow{}, cipherDeps{warnf: func(string, ...any) {}})
	if !ok || got != "" {
		t.Errorf("resolveValue on an empty row = (%q, %v), want (\"\", true)", got, ok)
	}
}
