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

// Package keyvault recovers a browser family's master decryption key from
// whatever the host OS uses to guard it: DPAPI and the Local State file on
// Windows, libsecret or kwallet over D-Bus on Linux, the login Keychain on
// macOS. Each platform's mechanics live in a build-tag-gated file
// (windows.go, linux.go, darwin.go); this file holds the OS-agnostic parts:
// the Local State JSON shape and the PBKDF2 derivation shared by Linux and
// macOS.
package keyvault

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/cookievault/cookievault"
	"github.com/cookievault/cookievault/cryptkit"
)

// MasterKey is a recovered decryption key, ready to hand to cryptkit.
type MasterKey []byte

const dpapiKeyPrefix = "DPAPI"

type localStateFile struct {
	OSCrypt struct {
		EncryptedKey         string `json:"encrypted_key"`
		AppBoundEncryptedKey string `json:"app_bound_encrypted_key"`
	} `json:"os_crypt"`
}

// LocalState holds the two key envelopes Chromium's "Local State" file
// carries: the DPAPI-wrapped AES-256 key used by the "v10"/"v11" schemes,
// and (Windows 10+, Chrome 127+) the app-bound envelope used by "v20".
type LocalState struct {
	EncryptedKey   []byte // DPAPI blob, "DPAPI" prefix already stripped
	AppBoundBase64 string // opaque; v20 is not unwrapped by this package
}

// ReadLocalState parses a Chromium "Local State" file.
func ReadLocalState(path string) (LocalState, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return LocalState{}, fmt.Errorf("%w: reading Local State: %v", cookievault.ErrPathNotFound, err)
	}
	var ls localStateFile
	if err := json.Unmarshal(raw, &ls); err != nil {
		return LocalState{}, fmt.Errorf("%w: parsing Local State: %v", cookievault.ErrKeyMalformed, err)
	}
	encKey, err := base64.StdEncoding.DecodeString(ls.OSCrypt.EncryptedKey)
	if err != nil {
		return LocalState{}, fmt.Errorf("%w: decoding encrypted_key: %v", cookievault.ErrKeyMalformed, err)
	}
	if len(encKey) < len(dpapiKeyPrefix) || string(encKey[:len(dpapiKeyPrefix)]) != dpapiKeyPrefix {
		return LocalState{}, fmt.Errorf("%w: encrypted_key missing DPAPI prefix", cookievault.ErrKeyMalformed)
	}
	return LocalState{
		EncryptedKey:   encKey[len(dpapiKeyPrefix):],
		AppBoundBase64: ls.OSCrypt.AppBoundEncryptedKey,
	}, nil
}

// RecoverChromiumKey recovers the master key for a Chromium-family browser.
// localStatePath may be empty on platforms (Linux, macOS) where the key
// comes entirely from the OS keystore; osCryptName is the libsecret
// "application" attribute (Linux) or Keychain service-name component
// (macOS), and is ignored on Windows.
func RecoverChromiumKey(osCryptName, localStatePath string) (MasterKey, error) {
	return platformChromiumKey(osCryptName, localStatePath)
}

// deriveFromPassphrase derives a CBC key from a keystore-recovered
// passphrase, using the PBKDF2 iteration count the platform mandates (1003
// on macOS, 1 on Linux).
func deriveFromPassphrase(passphrase string, iterations int) MasterKey {
	return MasterKey(cryptkit.DeriveCBCKey(passphrase, iterations))
}
