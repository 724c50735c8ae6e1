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

// Package storeutil holds small helpers shared by the store-reader
// packages (chromedb, firefox): opening a SQLite file read-only,
// and falling back to a copy-to-temp-file strategy when the original is
// held open (WAL-locked) by a running browser.
package storeutil

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/creachadair/atomicfile"
)

// SafeCopy copies src into a fresh temp directory and returns the copy's
// path along with a cleanup func that removes the temp directory. The
// caller must call cleanup on every exit path, including errors after
// SafeCopy returns successfully.
func SafeCopy(src string) (copyPath string, cleanup func(), err error) {
	dir, err := os.MkdirTemp("", "cookievault-*")
	if err != nil {
		return "", func() {}, fmt.Errorf("creating temp dir: %w", err)
	}
	cleanup = func() { os.RemoveAll(dir) }

	dst := filepath.Join(dir, filepath.Base(src))
	if err := copyFile(src, dst); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("copying %q: %w", src, err)
	}

	// SQLite may also need the WAL and shared-memory sidecar files to read a
	// consistent snapshot; copy them if present, best-effort.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := copyFile(src+suffix, dst+suffix); err == nil {
			continue // copied
		}
		// absence is fine; these files only exist while WAL mode is active
	}

	return dst, cleanup, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := atomicfile.New(dst, 0600)
	if err != nil {
		return err
	}
	defer out.Cancel()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// OpenReadOnly opens path as a read-only SQLite database using the given
// driver name. If the direct open fails or the connection cannot be probed
// (the usual symptom of a WAL lock held by a running browser), it falls
// back to copying the file to a temp location via SafeCopy and opening the
// copy instead. The returned cleanup func must always be called; it is a
// no-op when no copy was made.
func OpenReadOnly(driver, path string) (db *sql.DB, cleanup func(), err error) {
	noop := func() {}

	dsn := fmt.Sprintf("file:%s?mode=ro&immutable=1", path)
	if db, err = sql.Open(driver, dsn); err == nil {
		if perr := db.Ping(); perr == nil {
			return db, noop, nil
		}
		db.Close()
	}

	copyPath, cleanup, cerr := SafeCopy(path)
	if cerr != nil {
		return nil, noop, fmt.Errorf("store locked and copy failed: %w", cerr)
	}
	copyDSN := fmt.Sprintf("file:%s?mode=ro", copyPath)
	db, err = sql.Open(driver, copyDSN)
	if err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("opening copied store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		cleanup()
		return nil, noop, fmt.Errorf("opening copied store: %w", err)
	}
	return db, cleanup, nil
}
