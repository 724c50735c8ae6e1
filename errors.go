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

package cookievault

import "errors"

// Sentinel errors reported by the extraction pipeline. Callers can match
// these with errors.Is even though most sites wrap them with additional
// context via fmt.Errorf("...: %w", ...).
var (
	// ErrPathNotFound is reported when no profile or key file matches any of
	// a BrowserConfig's glob patterns.
	ErrPathNotFound = errors.New("cookievault: path not found")

	// ErrStoreLocked is reported when a cookie store could not be opened,
	// even after the copy-to-temp fallback.
	ErrStoreLocked = errors.New("cookievault: store locked")

	// ErrStoreCorrupt is reported when a cookie store opened but its schema
	// or contents could not be parsed.
	ErrStoreCorrupt = errors.New("cookievault: store corrupt")

	// ErrKeystoreUnavailable is reported when the OS keystore (libsecret,
	// kwallet, Keychain) could not be reached at all.
	ErrKeystoreUnavailable = errors.New("cookievault: keystore unavailable")

	// ErrKeyNotFound is reported when the keystore was reached but held no
	// entry for the requested browser.
	ErrKeyNotFound = errors.New("cookievault: key not found")

	// ErrKeyMalformed is reported when key material was found but could not
	// be parsed or unwrapped into a usable master key.
	ErrKeyMalformed = errors.New("cookievault: key malformed")

	// ErrUnknownScheme is reported when a ciphertext's version prefix does
	// not match any known encryption scheme.
	ErrUnknownScheme = errors.New("cookievault: unknown encryption scheme")

	// ErrAuthTagMismatch is reported when AES-GCM authentication fails.
	ErrAuthTagMismatch = errors.New("cookievault: authentication tag mismatch")

	// ErrPaddingInvalid is reported when AES-CBC PKCS7 padding is malformed,
	// which usually means the decryption key is wrong.
	ErrPaddingInvalid = errors.New("cookievault: invalid padding")

	// ErrUtf8Invalid is reported when a decrypted value is not valid UTF-8.
	ErrUtf8Invalid = errors.New("cookievault: decrypted value is not valid UTF-8")

	// ErrNoDecoderMatched is reported by AnyBrowser when no known decoder
	// could make sense of the given path.
	ErrNoDecoderMatched = errors.New("cookievault: no decoder matched")
)
