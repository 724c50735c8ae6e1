// Copyright 2023 Michael J. Fromberger. All Rights Reserved.
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

// Package firefox reads a Firefox-family cookies database. Firefox itself,
// LibreWolf, and other Gecko forks all share the moz_cookies schema.
package firefox

import (
	"fmt"

	"github.com/cookievault/cookievault"
	"github.com/cookievault/cookievault/storeutil"

	_ "modernc.org/sqlite" // registers the "sqlite" driver ReadRows opens
)

const readCookiesStmt = `SELECT ` +
	`id, name, value, host, path, expiry, creationTime, isSecure, isHttpOnly, sameSite ` +
	`FROM moz_cookies`

// ReadRows opens path read-only (falling back to a temp-file copy if a
// running Firefox holds it locked) and returns every row in store order.
// Firefox cookie values are stored in the clear; ValueEncrypted is left
// empty, and the Record Normalizer passes ValuePlain through unchanged.
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
		var rowID, expiry, creationTime, sameSite int64
		var isSecure, isHTTPOnly bool
		var name, value, host, path string
		if err := rows.Scan(&rowID, &name, &value, &host, &path, &expiry, &creationTime,
			&isSecure, &isHTTPOnly, &sameSite); err != nil {
			return nil, fmt.Errorf("%w: %v", cookievault.ErrStoreCorrupt, err)
		}
		_ = rowID
		out = append(out, cookievault.RawCookieRow{
			Host:        host,
			Name:        name,
			Path:        path,
			ValuePlain:  value,
			ExpiresRaw:  expiry,
			Secure:      isSecure,
			HTTPOnly:    isHTTPOnly,
			SameSiteRaw: sameSite,
		})
	}
	return out, rows.Err()
}
