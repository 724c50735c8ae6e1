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

package cookievault

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cookievault/cookievault/bincookie"
	"github.com/cookievault/cookievault/chromedb"
	"github.com/cookievault/cookievault/firefox"
	"github.com/cookievault/cookievault/keyvault"
	"github.com/cookievault/cookievault/keyvault/nss"
	"github.com/cookievault/cookievault/pathresolve"
	"github.com/cookievault/cookievault/webcache"
)

// chromiumConfig builds the BrowserConfig shared by every Chromium-family
// channel: only the data-root glob patterns, OS-crypt application name, and
// display name differ between them.
func chromiumConfig(channel, osCryptName string, dataPaths []string) BrowserConfig {
	return BrowserConfig{
		Channel:            channel,
		Family:             FamilyChromium,
		DataPaths:          dataPaths,
		CookieFileRelative: "Network/Cookies",
		KeyFileRelative:    "Local State",
		OSCryptName:        osCryptName,
	}
}

// ChromeConfig is Google Chrome's BrowserConfig.
var ChromeConfig = chromiumConfig("Google Chrome", "chrome", []string{
	"%LOCALAPPDATA%/Google/Chrome/User Data/*",
	"$HOME/.config/google-chrome/*",
	"$HOME/Library/Application Support/Google/Chrome/*",
})

// ChromiumConfig is the open-source Chromium browser's BrowserConfig.
var ChromiumConfig = chromiumConfig("Chromium", "chromium", []string{
	"%LOCALAPPDATA%/Chromium/User Data/*",
	"$HOME/.config/chromium/*",
	"$HOME/Library/Application Support/Chromium/*",
})

// BraveConfig is Brave's BrowserConfig.
var BraveConfig = chromiumConfig("Brave", "brave", []string{
	"%LOCALAPPDATA%/BraveSoftware/Brave-Browser/User Data/*",
	"$HOME/.config/BraveSoftware/Brave-Browser/*",
	"$HOME/Library/Application Support/BraveSoftware/Brave-Browser/*",
})

// EdgeConfig is Microsoft Edge's BrowserConfig.
var EdgeConfig = chromiumConfig("Microsoft Edge", "msedge", []string{
	"%LOCALAPPDATA%/Microsoft/Edge/User Data/*",
	"$HOME/.config/microsoft-edge/*",
	"$HOME/Library/Application Support/Microsoft Edge/*",
})

// VivaldiConfig is Vivaldi's BrowserConfig.
var VivaldiConfig = chromiumConfig("Vivaldi", "vivaldi", []string{
	"%LOCALAPPDATA%/Vivaldi/User Data/*",
	"$HOME/.config/vivaldi/*",
	"$HOME/Library/Application Support/Vivaldi/*",
})

// OperaConfig is Opera's BrowserConfig. Unlike the others, Opera keeps one
// profile directly under its data root rather than Default/Profile N
// subdirectories, so its pattern has no trailing /*.
var OperaConfig = chromiumConfig("Opera", "opera", []string{
	"%APPDATA%/Opera Software/Opera Stable",
	"$HOME/.config/opera",
	"$HOME/Library/Application Support/com.operasoftware.Opera",
})

// OperaGXConfig is Opera GX's BrowserConfig.
var OperaGXConfig = chromiumConfig("Opera GX", "opera gx", []string{
	"%APPDATA%/Opera Software/Opera GX Stable",
	"$HOME/Library/Application Support/com.operasoftware.OperaGX",
})

// OctoConfig is Octo Browser's BrowserConfig. Octo is a Chromium fork built
// on top of Opera GX's profile layout and Safe Storage application name;
// upstream has no separate path convention for it, so this is deliberately
// identical to OperaGXConfig rather than an independent guess.
var OctoConfig = OperaGXConfig

// FirefoxConfig is Firefox's BrowserConfig.
var FirefoxConfig = BrowserConfig{
	Channel:            "Firefox",
	Family:             FamilyFirefox,
	CookieFileRelative: "cookies.sqlite",
	KeyFileRelative:    "key4.db",
	DataPaths: []string{
		"%APPDATA%/Mozilla/Firefox/Profiles/*",
		"$HOME/.mozilla/firefox/*",
		"$HOME/Library/Application Support/Firefox/Profiles/*",
	},
}

// LibreWolfConfig is LibreWolf's BrowserConfig, a Firefox fork with the same
// profile layout under its own product name.
var LibreWolfConfig = BrowserConfig{
	Channel:            "LibreWolf",
	Family:             FamilyFirefox,
	CookieFileRelative: "cookies.sqlite",
	KeyFileRelative:    "key4.db",
	DataPaths: []string{
		"%APPDATA%/librewolf/Profiles/*",
		"$HOME/.librewolf/*",
		"$HOME/Library/Application Support/LibreWolf/Profiles/*",
	},
}

// SafariConfig is Safari's BrowserConfig. macOS only.
var SafariConfig = BrowserConfig{
	Channel:            "Safari",
	Family:             FamilySafari,
	CookieFileRelative: "Cookies.binarycookies",
	DataPaths: []string{
		"$HOME/Library/Containers/com.apple.Safari/Data/Library/Cookies",
		"$HOME/Library/Cookies",
	},
}

// InternetExplorerConfig is legacy Internet Explorer's (and pre-Chromium
// Edge's) BrowserConfig. Windows only. WebCacheV01.dat is a single shared
// file, not a per-profile tree, so DataPaths has one static candidate and
// RequireKeyFile is false: values are DPAPI-wrapped, tied to the logged-in
// user, with no separate key file to find.
var InternetExplorerConfig = BrowserConfig{
	Channel:            "Internet Explorer",
	Family:             FamilyIE,
	CookieFileRelative: "WebCacheV01.dat",
	DataPaths: []string{
		"%LOCALAPPDATA%/Microsoft/Windows/WebCache",
	},
}

// Chrome returns Google Chrome's cookies, filtered to domains if non-empty.
func Chrome(domains ...string) ([]C, error) { return extract(ChromeConfig, domains) }

// Chromium returns the open-source Chromium browser's cookies.
func Chromium(domains ...string) ([]C, error) { return extract(ChromiumConfig, domains) }

// Brave returns Brave's cookies.
func Brave(domains ...string) ([]C, error) { return extract(BraveConfig, domains) }

// Edge returns Microsoft Edge's cookies.
func Edge(domains ...string) ([]C, error) { return extract(EdgeConfig, domains) }

// Vivaldi returns Vivaldi's cookies.
func Vivaldi(domains ...string) ([]C, error) { return extract(VivaldiConfig, domains) }

// Opera returns Opera's cookies.
func Opera(domains ...string) ([]C, error) { return extract(OperaConfig, domains) }

// OperaGX returns Opera GX's cookies.
func OperaGX(domains ...string) ([]C, error) { return extract(OperaGXConfig, domains) }

// Octo returns Octo Browser's cookies.
func Octo(domains ...string) ([]C, error) { return extract(OctoConfig, domains) }

// Firefox returns Firefox's cookies.
func Firefox(domains ...string) ([]C, error) { return extract(FirefoxConfig, domains) }

// LibreWolf returns LibreWolf's cookies.
func LibreWolf(domains ...string) ([]C, error) { return extract(LibreWolfConfig, domains) }

// Safari returns Safari's cookies. Only meaningful on macOS; on other
// platforms DataPaths matches nothing and it returns ErrPathNotFound.
func Safari(domains ...string) ([]C, error) { return extract(SafariConfig, domains) }

// InternetExplorer returns Internet Explorer's (and legacy Edge's) cookies.
// Only meaningful on Windows.
func InternetExplorer(domains ...string) ([]C, error) {
	return extract(InternetExplorerConfig, domains)
}

// ProfileResult pairs one profile's cookies with that profile's installed
// browser version, for the multi-profile *V2 family of functions.
type ProfileResult struct {
	Cookies     []C
	LastVersion string // empty if no "Last Version" file was found
}

// extractByProfile is like extract, but keeps each matched profile's
// cookies separate instead of flattening them into one slice, so callers
// can pair them with per-profile metadata such as the installed version.
func extractByProfile(cfg BrowserConfig, domains []string) ([]ProfileResult, error) {
	paths, err := pathresolve.ResolveAll(pathresolve.Config{
		DataPaths:          cfg.DataPaths,
		CookieFileRelative: cfg.CookieFileRelative,
		KeyFileRelative:    cfg.KeyFileRelative,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPathNotFound, err)
	}

	var out []ProfileResult
	for _, pp := range paths {
		if cfg.RequireKeyFile && pp.KeyFile == "" {
			return nil, fmt.Errorf("%w: %s requires a key file", ErrPathNotFound, cfg.Channel)
		}
		rows, err := readRows(cfg, pp)
		if err != nil {
			return nil, err
		}
		deps, err := resolveCipherDeps(cfg, pp)
		if err != nil {
			return nil, err
		}
		out = append(out, ProfileResult{
			Cookies:     normalize(rows, deps, domains),
			LastVersion: readLastVersion(filepath.Dir(pp.ProfileDir)),
		})
	}
	return out, nil
}

// ChromeV2 returns Chrome's cookies grouped by profile, alongside each
// profile's installed version string read from the "Last Version" file in
// the browser's data root, beside the profile directories.
func ChromeV2(domains ...string) ([]ProfileResult, error) {
	return extractByProfile(ChromeConfig, domains)
}

// BraveV2 returns Brave's cookies grouped by profile.
func BraveV2(domains ...string) ([]ProfileResult, error) {
	return extractByProfile(BraveConfig, domains)
}

// EdgeV2 returns Microsoft Edge's cookies grouped by profile.
func EdgeV2(domains ...string) ([]ProfileResult, error) {
	return extractByProfile(EdgeConfig, domains)
}

// FirefoxV2 returns Firefox's cookies grouped by profile. Firefox profile
// directories have no "Last Version" sibling, so LastVersion is always "".
func FirefoxV2(domains ...string) ([]ProfileResult, error) {
	return extractByProfile(FirefoxConfig, domains)
}

// readLastVersion reads the "Last Version" file inside dir, trimmed of
// surrounding whitespace. Returns "" if the file doesn't exist.
func readLastVersion(dir string) string {
	b, err := os.ReadFile(filepath.Join(dir, "Last Version"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

// LoadAll returns cookies from every browser installed on the current
// machine, trying each supported channel in turn and silently skipping any
// that aren't installed or fail to decrypt. It never returns an error: a
// browser that isn't present is indistinguishable from one that is but
// yielded nothing.
func LoadAll(domains ...string) []C {
	configs := []BrowserConfig{
		FirefoxConfig,
		LibreWolfConfig,
		OperaConfig,
		OperaGXConfig,
		EdgeConfig,
		ChromeConfig,
		ChromiumConfig,
		BraveConfig,
		VivaldiConfig,
		SafariConfig,
		InternetExplorerConfig,
	}
	var all []C
	for _, cfg := range configs {
		cookies, err := extract(cfg, domains)
		if err != nil {
			continue
		}
		all = append(all, cookies...)
	}
	return all
}

// knownChromiumConfigs lists every Chromium-family BrowserConfig AnyBrowser
// tries when asked to decode a cookies file of unknown provenance, in order
// to pick the right OSCryptName for Linux keystore lookups.
var knownChromiumConfigs = []BrowserConfig{
	ChromeConfig, BraveConfig, ChromiumConfig, EdgeConfig,
	OperaConfig, OperaGXConfig, VivaldiConfig,
}

// AnyBrowser decodes a cookie store at an arbitrary path whose browser of
// origin isn't known up front: it tries the Chromium decoder (against every
// known Chromium channel's OSCryptName, since the Linux keystore lookup
// needs one), then Firefox, then Safari, then Internet Explorer, returning
// the first one that reads successfully. keyPath is the sibling key file
// (Local State for Chromium, key4.db for Firefox); callers that don't know
// it can pass "" and rely on the OS keystore where that's enough.
func AnyBrowser(cookiesPath string, domains []string, keyPath string) ([]C, error) {
	if rows, err := chromedb.ReadRows(cookiesPath); err == nil {
		deps := cipherDeps{family: FamilyChromium, warnf: noopWarnf}
		for _, kc := range knownChromiumConfigs {
			if key, err := keyvault.RecoverChromiumKey(kc.OSCryptName, keyPath); err == nil {
				deps.chromiumKey = key
				break
			}
		}
		return normalize(rows, deps, domains), nil
	}

	if rows, err := firefox.ReadRows(cookiesPath); err == nil {
		deps := cipherDeps{family: FamilyFirefox, warnf: noopWarnf}
		if keyPath != "" {
			if key, err := nss.Unlock(keyPath); err == nil {
				deps.nssKey = key
			}
		}
		return normalize(rows, deps, domains), nil
	}

	if rows, err := bincookie.ReadRows(cookiesPath); err == nil {
		return normalize(rows, cipherDeps{family: FamilySafari, warnf: noopWarnf}, domains), nil
	}

	if rows, err := webcache.ReadRows(cookiesPath); err == nil {
		return normalize(rows, cipherDeps{family: FamilyIE, warnf: noopWarnf}, domains), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrNoDecoderMatched, cookiesPath)
}

func noopWarnf(string, ...any) {}
