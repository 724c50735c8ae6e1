// Copyright 2020 Michael J. Fromberger. All Rights Reserved.
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

// Package cookievault extracts and decodes HTTP cookies from the on-disk
// stores of locally-installed web browsers.
//
// The package recovers each browser family's master encryption key from the
// platform keystore (DPAPI on Windows, libsecret/kwallet on Linux, Keychain
// on macOS, the NSS key4.db for Firefox), decrypts per-record ciphertext
// according to the scheme its version prefix selects, and normalizes the
// result into a flat sequence of plaintext cookie records. It does not
// write cookies back, and it does not touch the network.
package cookievault

import "time"

// C is a format-independent representation of a browser cookie.
type C struct {
	Name   string
	Value  string
	Domain string
	Path   string

	Expires  time.Time // if zero, has no expiration (a session cookie)
	Created  time.Time
	Flags    Flags
	SameSite SameSite
}

// HasExpires reports whether c has an expiration time.
func (c C) HasExpires() bool { return !c.Expires.IsZero() }

// ExpiresUnix returns the expiration of c as Unix seconds, and reports
// whether it has one. Session cookies (no expiration) return (0, false).
func (c C) ExpiresUnix() (int64, bool) {
	if !c.HasExpires() {
		return 0, false
	}
	return c.Expires.Unix(), true
}

// SameSite describes a first-party cookie policy, using the four-value
// enumeration shared by all supported browser families.
type SameSite int

// Enumerators for SameSite policies.
const (
	SameSiteNone        SameSite = -1 // unrestricted; send to all origins
	SameSiteUnspecified SameSite = 0  // unknown or unspecified policy
	SameSiteLax         SameSite = 1  // top-level navigations and 3rd-party GET requests
	SameSiteStrict      SameSite = 2  // first-party context only
)

var sameSiteStrings = map[SameSite]string{
	SameSiteNone:        "None",
	SameSiteUnspecified: "Unspecified",
	SameSiteLax:         "Lax",
	SameSiteStrict:      "Strict",
}

func (s SameSite) String() string {
	if name, ok := sameSiteStrings[s]; ok {
		return name
	}
	return "Unspecified"
}

// Flags represents the optional flags that can be set on a cookie.
type Flags struct {
	Secure   bool // only send this cookie on an encrypted connection
	HTTPOnly bool // do not expose this cookie to scripts
}
