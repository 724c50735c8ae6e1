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

//go:build darwin

package keyvault

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/cookievault/cookievault"
)

// platformChromiumKey recovers the macOS master key: the "<channel> Safe
// Storage" generic password from the login Keychain, PBKDF2'd with 1003
// iterations, the value Chromium has used on macOS since it adopted
// PBKDF2-derived Safe Storage keys.
func platformChromiumKey(osCryptName, _ string) (MasterKey, error) {
	passphrase, err := keychainPassphrase(osCryptName)
	if err != nil {
		return nil, err
	}
	return deriveFromPassphrase(passphrase, 1003), nil
}

// keychainPassphrase shells out to the "security" CLI, the same mechanism
// Chromium's own os_crypt_mac.mm uses via the Security framework; there is
// no cgo-free way to call SecKeychain* directly from Go.
func keychainPassphrase(osCryptName string) (string, error) {
	service := osCryptName + " Safe Storage"
	cmd := exec.Command("security", "find-generic-password", "-w", "-s", service, "-a", osCryptName)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%w: security find-generic-password: %v", cookievault.ErrKeyNotFound, err)
	}
	return strings.TrimSpace(string(out)), nil
}
