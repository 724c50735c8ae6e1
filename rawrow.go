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

// RawCookieRow is the store-specific intermediate record produced by every
// store reader (chromedb, firefox, bincookie, webcache) before the Record
// Normalizer turns it into a C.
type RawCookieRow struct {
	Host  string
	Name  string
	Path  string

	// ValuePlain is used verbatim if non-empty. Otherwise ValueEncrypted is
	// decrypted through the cipher suite.
	ValuePlain     string
	ValueEncrypted []byte

	// ExpiresRaw is the expiration in the store's native epoch:
	// Chromium/WebCache: microseconds since 1601-01-01 UTC.
	// Firefox: seconds since 1970-01-01 UTC.
	// Safari: not used; ExpiresRawFloat carries seconds since 2001-01-01.
	ExpiresRaw int64

	// ExpiresRawFloat carries Safari's float64 "seconds since 2001-01-01"
	// expiration. IsFloatExpiry distinguishes it from ExpiresRaw.
	ExpiresRawFloat float64
	IsFloatExpiry   bool

	Secure   bool
	HTTPOnly bool

	// SameSiteRaw is the store's SameSite code (bincookie stores the
	// already-mapped cookievault.SameSite value). The Record Normalizer's
	// clampSameSite keeps -1, 1 and 2 and maps every other value to
	// SameSiteUnspecified.
	SameSiteRaw int64
}
