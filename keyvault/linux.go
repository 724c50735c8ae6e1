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

//go:build linux

package keyvault

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	keyring "github.com/ppacher/go-dbus-keyring"

	"github.com/cookievault/cookievault"
)

// fallbackPassphrase is the passphrase Chromium uses when it is built
// without a keyring backend (e.g. "--password-store=basic"), or when
// neither libsecret nor kwallet responds. It's a long-documented constant,
// not a secret.
const fallbackPassphrase = "peanuts"

// platformChromiumKey recovers the Linux master key: Chromium's Safe
// Storage passphrase from the libsecret Secret Service, falling back to
// kwallet and then to the "peanuts" constant, PBKDF2'd with a single
// iteration exactly as Chromium itself does.
func platformChromiumKey(osCryptName, _ string) (MasterKey, error) {
	passphrase, err := secretServicePassphrase(osCryptName)
	if err != nil {
		passphrase, err = kwalletPassphrase(osCryptName)
	}
	if err != nil {
		passphrase = fallbackPassphrase
	}
	return deriveFromPassphrase(passphrase, 1), nil
}

// secretServicePassphrase looks up the first item whose "application"
// attribute is osCryptName in the default libsecret collection, over the
// Secret Service D-Bus API.
func secretServicePassphrase(osCryptName string) (string, error) {
	conn, err := dbus.SessionBusPrivate()
	if err != nil {
		return "", fmt.Errorf("%w: dbus session bus: %v", cookievault.ErrKeystoreUnavailable, err)
	}
	defer conn.Close()
	if err := conn.Auth(nil); err != nil {
		return "", fmt.Errorf("%w: dbus auth: %v", cookievault.ErrKeystoreUnavailable, err)
	}
	if err := conn.Hello(); err != nil {
		return "", fmt.Errorf("%w: dbus hello: %v", cookievault.ErrKeystoreUnavailable, err)
	}

	svc, err := keyring.GetSecretService(conn)
	if err != nil {
		return "", fmt.Errorf("%w: secret service: %v", cookievault.ErrKeystoreUnavailable, err)
	}
	session, err := svc.OpenSession()
	if err != nil {
		return "", fmt.Errorf("%w: opening session: %v", cookievault.ErrKeystoreUnavailable, err)
	}

	collection, err := svc.GetDefaultCollection()
	if err != nil {
		return "", fmt.Errorf("%w: default collection: %v", cookievault.ErrKeystoreUnavailable, err)
	}
	items, err := collection.SearchItems(map[string]string{"application": osCryptName})
	if err != nil || len(items) == 0 {
		return "", fmt.Errorf("%w: no Safe Storage entry for %q", cookievault.ErrKeyNotFound, osCryptName)
	}
	secret, err := items[0].GetSecret(session.Path())
	if err != nil {
		return "", fmt.Errorf("%w: reading secret: %v", cookievault.ErrKeyNotFound, err)
	}
	return string(secret.Value), nil
}

// kwalletPassphrase asks kwalletd for the same entry via its own D-Bus
// interface, for desktops where libsecret has no Secret Service provider.
func kwalletPassphrase(osCryptName string) (string, error) {
	conn, err := dbus.SessionBusPrivate()
	if err != nil {
		return "", fmt.Errorf("%w: dbus session bus: %v", cookievault.ErrKeystoreUnavailable, err)
	}
	defer conn.Close()
	if err := conn.Auth(nil); err != nil {
		return "", fmt.Errorf("%w: dbus auth: %v", cookievault.ErrKeystoreUnavailable, err)
	}

	obj := conn.Object("org.kde.kwalletd5", dbus.ObjectPath("/modules/kwalletd5"))
	var handle int32
	if err := obj.Call("org.kde.KWallet.open", 0, "kdewallet", int64(0), "cookievault").Store(&handle); err != nil {
		return "", fmt.Errorf("%w: kwallet open: %v", cookievault.ErrKeystoreUnavailable, err)
	}

	var entry string
	folder := "Chromium Keys"
	key := osCryptName + " Safe Storage"
	if err := obj.Call("org.kde.KWallet.readPassword", 0, handle, folder, key, "cookievault").Store(&entry); err != nil || entry == "" {
		return "", fmt.Errorf("%w: no kwallet entry for %q", cookievault.ErrKeyNotFound, osCryptName)
	}
	return entry, nil
}
