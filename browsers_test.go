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

package cookievault_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cookievault/cookievault"
)

func TestOctoConfigMatchesOperaGX(t *testing.T) {
	if cookievault.OctoConfig.OSCryptName != cookievault.OperaGXConfig.OSCryptName {
		t.Errorf("OctoConfig.OSCryptName = %q, want %q (identical to Opera GX)",
			cookievault.OctoConfig.OSCryptName, cookievault.OperaGXConfig.OSCryptName)
	}
	if len(cookievault.OctoConfig.DataPaths) != len(cookievault.OperaGXConfig.DataPaths) {
		t.Errorf("OctoConfig.DataPaths = %v, want the same patterns as OperaGXConfig", cookievault.OctoConfig.DataPaths)
	}
}

// LoadAll must never return an error, even on a machine with no supported
// browser installed: every per-channel failure is swallowed.
func TestLoadAllNeverErrors(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LOCALAPPDATA", "")
	t.Setenv("APPDATA", "")
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")

	cookies := cookievault.LoadAll("example.com")
	if cookies == nil {
		return // fine: nil slice is the zero value when nothing matched
	}
}

func TestAnyBrowserNoDecoderMatched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-cookie-store")
	if err := os.WriteFile(path, []byte("not a recognizable cookie store format"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := cookievault.AnyBrowser(path, nil, "")
	if err == nil {
		t.Fatal("AnyBrowser on a garbage file succeeded, want an error")
	}
	if !errors.Is(err, cookievault.ErrNoDecoderMatched) {
		t.Errorf("AnyBrowser error = %v, want it to wrap ErrNoDecoderMatched", err)
	}
}

func TestAnyBrowserUnknownPath(t *testing.T) {
	_, err := cookievault.AnyBrowser(filepath.Join(t.TempDir(), "missing"), nil, "")
	if err == nil {
		t.Fatal("AnyBrowser on a missing path succeeded, want an error")
	}
}
