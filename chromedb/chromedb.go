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

// Package chromedb reads a Chromium-family cookie database: Chrome,
// Chromium, Brave, Edge, Vivaldi, Opera, and Opera GX all share this schema,
// varying only in the directories they install to. Decryption of
// encrypted_value is left to the caller's cipher suite (see cryptkit); this
// package only surfaces the raw rows.
package chromedb

import (
	"fmt"

	"github.com/cookievault/cookievault"
	"github.com/cookievault/cookievault/storeutil"

	_ "modernc.org/sqlite" // registers the "sqlite" driver ReadRows opens
)

const readCookiesStmt = `
SELECT
  rowid, name, value, encrypted_value, host_key, path,
  expires_utc, creation_utc,
  is_secure, is_httponly, samesite
FROM cookies;`

// ReadRows opens path read-only (falling back to a temp-file copy if the
// browser holds it WAL-locked) and returns every row in store order as a
// RawCookieRow, leaving decryption to the caller's cipher suite.
func ReadRows(path string) ([]cookievault.RawCookieRow, error) {
	db, cleanup, err := storeutil.OpenReadOnly("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cookievault.ErrStoreLocked, err)
	}
	defer cleanup()
	defer db.Close()

	rows, err := db.Query(readCookiesStmt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cookievault.ErrStoreCorrupt, err)
	}
	defer rows.Close()

	var out []cookievault.RawCookieRow
	for rows.Next() {
		var rowID, expiresUTC, creationUTC, isSecure, isHTTPOnly, sameSite int64
		var name, value, hostKey, path string
		var encValue []byte
		if err := rows.Scan(&rowID, &name, &value, &encValue, &hostKey, &path,
			&expiresUTC, &creationUTC, &isSecure, &isHTTPOnly, &sameSite); err != nil {
			return nil, fmt.Errorf("%w: %v", cookievault.ErrStoreCorrupt, err)
		}
		out = append(out, cookievault.RawCookieRow{
			Host:           hostKey,
			Name:           name,
			Path:           path,
			ValuePlain:     value,
			ValueEncrypted: encValue,
			ExpiresRaw:     expiresUTC,
			Secure:         isSecure != 0,
			HTTPOnly:       isHTTPOnly != 0,
			SameSiteRaw:    sameSite,
		})
	}
	return out, rows.Err()
}
