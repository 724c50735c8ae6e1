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

// Package pathresolve expands a BrowserConfig's glob patterns into concrete
// profile and key-file paths on the current machine.
//
// Patterns embed environment-variable placeholders such as %LOCALAPPDATA%,
// $HOME, ~, $XDG_CONFIG_HOME, and $XDG_DATA_HOME. Expansion is literal
// string substitution followed by filepath.Glob, exactly as spec'd: a
// pattern written for an OS other than the one currently running simply
// expands to something that matches nothing (an empty env var, or a path
// that doesn't exist) and is silently skipped, so one BrowserConfig can
// carry glob patterns for every supported OS without any runtime.GOOS
// branching here.
package pathresolve

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotFound is returned when no candidate in a pattern list matches
// anything on disk.
var ErrNotFound = errors.New("pathresolve: no matching path")

// ProfilePaths is one resolved profile: its cookie store and (if any) its
// sibling master-key file.
type ProfilePaths struct {
	ProfileDir string
	CookieFile string
	KeyFile    string // empty if the config has no KeyFileRelative
}

// Config is the subset of cookievault.BrowserConfig pathresolve needs. It is
// duplicated here (rather than imported) to keep this package free of a
// dependency on the root package, matching the teacher's habit of keeping
// subpackages import-light.
type Config struct {
	DataPaths          []string
	CookieFileRelative string
	KeyFileRelative    string
}

// expand substitutes environment-variable placeholders in pattern with
// their current values, then returns the result for globbing.
func expand(pattern string) string {
	home, _ := os.UserHomeDir()
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" && home != "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	xdgData := os.Getenv("XDG_DATA_HOME")
	if xdgData == "" && home != "" {
		xdgData = filepath.Join(home, ".local", "share")
	}

	r := strings.NewReplacer(
		"%LOCALAPPDATA%", os.Getenv("LOCALAPPDATA"),
		"%APPDATA%", os.Getenv("APPDATA"),
		"%USERPROFILE%", os.Getenv("USERPROFILE"),
		"$XDG_CONFIG_HOME", xdgConfig,
		"$XDG_DATA_HOME", xdgData,
		"$HOME", home,
	)
	out := r.Replace(pattern)
	if strings.HasPrefix(out, "~") {
		out = home + strings.TrimPrefix(out, "~")
	}
	return os.ExpandEnv(out)
}

// candidateProfileDirs expands and globs every pattern in patterns,
// returning the directories that actually exist on disk, stably sorted.
func candidateProfileDirs(patterns []string) []string {
	var dirs []string
	seen := make(map[string]bool)
	for _, pat := range patterns {
		expanded := expand(pat)
		if expanded == "" {
			continue
		}
		matches, err := filepath.Glob(expanded)
		if err != nil {
			continue
		}
		for _, m := range matches {
			if fi, err := os.Stat(m); err == nil && fi.IsDir() && !seen[m] {
				seen[m] = true
				dirs = append(dirs, m)
			}
		}
	}
	sort.Strings(dirs)
	return dirs
}

// Resolve returns the first matching (key file, cookie file) pair, per the
// single-profile API. A missing key file is reported as an empty string,
// not an error; callers that require one (Chromium on Windows) must check
// BrowserConfig.RequireKeyFile themselves.
func Resolve(cfg Config) (ProfilePaths, error) {
	all, err := ResolveAll(cfg)
	if err != nil {
		return ProfilePaths{}, err
	}
	return all[0], nil
}

// ResolveAll returns every matching profile's paths, stably sorted by
// cookie-file path, per the multi-profile API.
func ResolveAll(cfg Config) ([]ProfilePaths, error) {
	dirs := candidateProfileDirs(cfg.DataPaths)
	var out []ProfilePaths
	for _, dir := range dirs {
		cookieFile := filepath.Join(dir, cfg.CookieFileRelative)
		if _, err := os.Stat(cookieFile); err != nil {
			continue
		}
		pp := ProfilePaths{ProfileDir: dir, CookieFile: cookieFile}
		if cfg.KeyFileRelative != "" {
			// Firefox keeps key4.db inside the profile directory itself;
			// Chromium on Windows keeps Local State one level up, beside
			// the per-profile directories (Default, Profile 1, ...). Try
			// both so one Config shape serves either layout.
			if keyFile := filepath.Join(dir, cfg.KeyFileRelative); fileExists(keyFile) {
				pp.KeyFile = keyFile
			} else if keyFile := filepath.Join(filepath.Dir(dir), cfg.KeyFileRelative); fileExists(keyFile) {
				pp.KeyFile = keyFile
			}
		}
		out = append(out, pp)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: tried %d pattern(s)", ErrNotFound, len(cfg.DataPaths))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CookieFile < out[j].CookieFile })
	return out, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
