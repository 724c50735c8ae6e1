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

// Family identifies which decoding/decryption pipeline a browser uses.
type Family int

// Enumerators for Family.
const (
	FamilyChromium Family = iota
	FamilyFirefox
	FamilySafari
	FamilyIE
)

func (f Family) String() string {
	switch f {
	case FamilyChromium:
		return "chromium"
	case FamilyFirefox:
		return "firefox"
	case FamilySafari:
		return "safari"
	case FamilyIE:
		return "ie"
	default:
		return "unknown"
	}
}

// BrowserConfig is a static per-browser descriptor: everything the
// extraction pipeline needs to know to locate and decode one browser
// family's cookie store, independent of any particular installed profile.
type BrowserConfig struct {
	// Channel is the display name, e.g. "Google Chrome", "Brave".
	Channel string

	// Family selects the decoding pipeline.
	Family Family

	// DataPaths is a list of OS-specific glob patterns rooted at each OS's
	// profile tree. Patterns embed environment-variable placeholders
	// (%LOCALAPPDATA%, $HOME, ~, $XDG_CONFIG_HOME, $XDG_DATA_HOME) that are
	// expanded by pathresolve before globbing. Patterns for an OS other than
	// the one actually running simply fail to expand to anything that
	// exists, and are skipped.
	DataPaths []string

	// CookieFileRelative is the cookie store's path relative to a matched
	// profile directory, e.g. "Cookies", "Network/Cookies", "cookies.sqlite".
	CookieFileRelative string

	// KeyFileRelative is the master-key file's path relative to a matched
	// profile directory or, failing that, to its parent (the browser's data
	// root), e.g. "key4.db" inside a Firefox profile, "Local State" beside
	// Chromium's profile directories. Empty if the family keeps its key
	// outside any file (OS keystore).
	KeyFileRelative string

	// OSCryptName is the libsecret "application" attribute Chromium stores
	// its Safe Storage password under on Linux, e.g. "chrome", "chromium".
	// Empty if not applicable.
	OSCryptName string

	// RequireKeyFile marks the key file as fatal-if-missing: extract and the
	// *V2 functions fail the profile when it is set and no key file was
	// found. None of the built-in configs set it, since one config serves
	// every OS; a Chromium profile without Local State on Windows therefore
	// yields no key, and its encrypted values are dropped.
	RequireKeyFile bool
}
