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

//go:build !windows

// Package webcache reads cookie entries out of Internet Explorer and legacy
// Edge's WebCacheV01.dat. That format only exists on Windows; on every
// other platform ReadRows reports ErrPathNotFound immediately, so callers
// in browsers.go can call it unconditionally without a runtime.GOOS check.
package webcache

import (
	"fmt"

	"github.com/cookievault/cookievault"
)

// ReadRows always fails on non-Windows platforms.
func ReadRows(path string) ([]cookievault.RawCookieRow, error) {
	return nil, fmt.Errorf("%w: WebCacheV01.dat only exists on Windows", cookievault.ErrPathNotFound)
}
