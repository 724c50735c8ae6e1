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
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cookievault/cookievault/bincookie"
	"github.com/cookievault/cookievault/chromedb"
	"github.com/cookievault/cookievault/cryptkit"
	"github.com/cookievault/cookievault/firefox"
	"github.com/cookievault/cookievault/keyvault"
	"github.com/cookievault/cookievault/keyvault/nss"
	"github.com/cookievault/cookievault/pathresolve"
	"github.com/cookievault/cookievault/webcache"
)

const chromeEpochOffset = 11644473600

// cipherDeps bundles the key material needed to decrypt whatever
// RawCookieRow.ValueEncrypted a store produced, resolved once per extract
// call and reused across every row.
type cipherDeps struct {
	family      Family
	chromiumKey []byte      // CBC/GCM key, may be nil if recovery failed
	nssKey      nss.Key3DES // 3DES key for Firefox's key4.db, may be nil
	warnf       func(string, ...any)
}

// extract resolves every profile matching cfg, reads its store, and
// normalizes the rows into plaintext cookies, filtered by domains (no
// filter if domains is empty).
func extract(cfg BrowserConfig, domains []string) ([]C, error) {
	paths, err := pathresolve.ResolveAll(pathresolve.Config{
		DataPaths:          cfg.DataPaths,
		CookieFileRelative: cfg.CookieFileRelative,
		KeyFileRelative:    cfg.KeyFileRelative,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPathNotFound, err)
	}

	var all []C
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

		all = append(all, normalize(rows, deps, domains)...)
	}
	return all, nil
}

// readRows dispatches to the Store Reader matching cfg.Family.
func readRows(cfg BrowserConfig, pp pathresolve.ProfilePaths) ([]RawCookieRow, error) {
	switch cfg.Family {
	case FamilyChromium:
		return chromedb.ReadRows(pp.CookieFile)
	case FamilyFirefox:
		return firefox.ReadRows(pp.CookieFile)
	case FamilySafari:
		return bincookie.ReadRows(pp.CookieFile)
	case FamilyIE:
		return webcache.ReadRows(pp.CookieFile)
	default:
		return nil, fmt.Errorf("%w: unknown family %v", ErrUnknownScheme, cfg.Family)
	}
}

// resolveCipherDeps recovers whatever key material cfg.Family's decryption
// scheme needs. A failure to recover a key is not itself fatal for
// Chromium/Firefox: it is logged, and rows that turn out to need decryption
// are dropped by resolveValue. A missing key file fails the profile only
// when RequireKeyFile is set, which extract checks before calling this.
func resolveCipherDeps(cfg BrowserConfig, pp pathresolve.ProfilePaths) (cipherDeps, error) {
	deps := cipherDeps{family: cfg.Family, warnf: log.Printf}
	switch cfg.Family {
	case FamilyChromium:
		key, err := keyvault.RecoverChromiumKey(cfg.OSCryptName, pp.KeyFile)
		if err != nil {
			deps.warnf("cookievault: recovering %s key: %v", cfg.Channel, err)
			return deps, nil
		}
		deps.chromiumKey = key
	case FamilyFirefox:
		if pp.KeyFile == "" {
			return deps, nil
		}
		key, err := nss.Unlock(pp.KeyFile)
		if err != nil {
			deps.warnf("cookievault: unlocking %s key4.db: %v", cfg.Channel, err)
			return deps, nil
		}
		deps.nssKey = key
	}
	return deps, nil
}

// normalize applies the Record Normalizer's steps to rows in order: resolve
// the plaintext value (plain if present, else decrypt; drop+warn on
// failure), decode SameSite and expiration per family, then apply the
// domain filter.
func normalize(rows []RawCookieRow, deps cipherDeps, domains []string) []C {
	var out []C
	for _, r := range rows {
		value, ok := resolveValue(r, deps)
		if !ok {
			continue
		}
		c := C{
			Name:   r.Name,
			Value:  value,
			Domain: r.Host,
			Path:   r.Path,
			Flags: Flags{
				Secure:   r.Secure,
				HTTPOnly: r.HTTPOnly,
			},
			SameSite: clampSameSite(r.SameSiteRaw),
		}
		switch {
		case r.IsFloatExpiry:
			if r.ExpiresRawFloat != 0 {
				c.Expires = time.Unix(int64(r.ExpiresRawFloat)+macEpochOffset, 0).UTC()
			}
		case deps.family == FamilyFirefox:
			// moz_cookies.expiry is Unix seconds, not Chromium's
			// microseconds-since-1601 epoch.
			if r.ExpiresRaw != 0 {
				c.Expires = time.Unix(r.ExpiresRaw, 0).UTC()
			}
		case r.ExpiresRaw != 0:
			c.Expires = chromiumMicrosToTime(r.ExpiresRaw)
		}
		if !matchesDomain(c.Domain, domains) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// clampSameSite maps a raw SameSite column value to the generic enum,
// collapsing anything outside {-1,0,1,2} to SameSiteUnspecified rather than
// carrying an out-of-range SameSite through to callers.
func clampSameSite(v int64) SameSite {
	switch SameSite(v) {
	case SameSiteNone, SameSiteLax, SameSiteStrict:
		return SameSite(v)
	default:
		return SameSiteUnspecified
	}
}

const macEpochOffset = 978307200

func chromiumMicrosToTime(usec int64) time.Time {
	sec := usec/1e6 - chromeEpochOffset
	nsec := (usec % 1e6) * 1000
	return time.Unix(sec, nsec).UTC()
}

// resolveValue implements the plain/encrypted fallback: use ValuePlain if
// non-empty, else decrypt ValueEncrypted through the scheme its prefix (or
// the row's family-specific key) selects. A row whose ciphertext can't be
// decrypted is dropped, not fatal to the rest of the profile.
func resolveValue(r RawCookieRow, deps cipherDeps) (string, bool) {
	if r.ValuePlain != "" {
		return r.ValuePlain, true
	}
	if len(r.ValueEncrypted) == 0 {
		return "", true // legitimately empty value
	}
	if deps.chromiumKey != nil {
		pt, _, err := cryptkit.Decrypt(r.ValueEncrypted, deps.chromiumKey)
		if err != nil {
			deps.warnf("cookievault: dropping %s/%s: %v", r.Host, r.Name, err)
			return "", false
		}
		pt = cryptkit.StripHostHash(r.Host, pt)
		if !utf8.Valid(pt) {
			deps.warnf("cookievault: dropping %s/%s: %v", r.Host, r.Name, ErrUtf8Invalid)
			return "", false
		}
		return string(pt), true
	}
	if deps.nssKey != nil {
		pt, err := deps.nssKey.Unwrap(r.ValueEncrypted)
		if err != nil {
			deps.warnf("cookievault: dropping %s/%s: %v", r.Host, r.Name, err)
			return "", false
		}
		if !utf8.Valid(pt) {
			deps.warnf("cookievault: dropping %s/%s: %v", r.Host, r.Name, ErrUtf8Invalid)
			return "", false
		}
		return string(pt), true
	}
	if deps.family == FamilyIE {
		pt, err := keyvault.UnwrapDPAPIBlob(r.ValueEncrypted)
		if err != nil {
			deps.warnf("cookievault: dropping %s/%s: %v", r.Host, r.Name, err)
			return "", false
		}
		if !utf8.Valid(pt) {
			deps.warnf("cookievault: dropping %s/%s: %v", r.Host, r.Name, ErrUtf8Invalid)
			return "", false
		}
		return string(pt), true
	}
	deps.warnf("cookievault: dropping %s/%s: no key recovered to decrypt it with", r.Host, r.Name)
	return "", false
}

// matchesDomain implements spec.md §6's filter: kept with no filter set, or
// if host equals a filter domain, or host ends with the filter domain
// prefixed by a dot, or the filter domain is host with a leading dot.
func matchesDomain(host string, domains []string) bool {
	if len(domains) == 0 {
		return true
	}
	for _, d := range domains {
		if host == d {
			return true
		}
		if dotSuffixMatch(host, d) || d == "."+host {
			return true
		}
	}
	return false
}

// dotSuffixMatch reports whether b, prefixed with a leading dot, is a
// suffix of a (e.g. a="sub.example.com", b="example.com" -> true via
// ".example.com").
func dotSuffixMatch(a, b string) bool {
	dotted := b
	if !strings.HasPrefix(dotted, ".") {
		dotted = "." + dotted
	}
	return strings.HasSuffix(a, dotted)
}
