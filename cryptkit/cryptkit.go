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

// Package cryptkit decrypts Chromium-family cookie ciphertext. Every scheme
// shares a 3-byte version prefix: "v10"/"v11" select AES-128-CBC (Linux,
// macOS) or AES-256-GCM (Windows); "v20" is the app-bound envelope this
// package declines to unwrap; anything else is assumed to be a raw DPAPI
// blob (legacy Windows and Internet Explorer). The prefix alone can't tell
// CBC and GCM apart, since both use "v10"/"v11" depending on platform, so
// Decrypt dispatches on the length of the key the caller already recovered:
// a 16-byte key is the PBKDF2-derived Safe Storage key used for CBC, a
// 32-byte key is the DPAPI-unwrapped master key used for GCM.
package cryptkit

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha1"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/cookievault/cookievault"
)

const (
	keySalt  = "saltysalt"
	ivString = "                " // 16 spaces, the fixed Chromium CBC IV
	keyBytes = 16

	gcmKeyBytes  = 32
	gcmNonceSize = 12
	gcmTagSize   = 16
)

// Scheme identifies which decryption path a ciphertext's version prefix
// selects.
type Scheme int

// Enumerators for Scheme.
const (
	SchemeUnknown  Scheme = iota
	SchemeCBC             // "v10"/"v11", Linux and macOS
	SchemeGCM             // "v10"/"v11", Windows
	SchemeAppBound        // "v20", declined
	SchemeDPAPI           // no recognized prefix; raw DPAPI blob
)

// DeriveCBCKey derives the AES-128-CBC key from a browser's Safe Storage
// passphrase. iterations is 1003 on macOS and 1 on Linux.
func DeriveCBCKey(passphrase string, iterations int) []byte {
	return pbkdf2.Key([]byte(passphrase), []byte(keySalt), iterations, keyBytes, sha1.New)
}

// StripHostHash removes host's 32-byte SHA-256 prefix from buf if it is
// actually present, returning buf unchanged otherwise. Chromium v10+ and the
// Windows store prepend SHA-256(host) to decrypted plaintext, but the
// Linux/macOS CBC path does not; callers that don't know which apply should
// always route the plaintext through here rather than stripping
// unconditionally.
func StripHostHash(host string, buf []byte) []byte {
	if len(buf) < sha256.Size {
		return buf
	}
	want := sha256.Sum256([]byte(host))
	if !bytes.Equal(buf[:sha256.Size], want[:]) {
		return buf
	}
	return buf[sha256.Size:]
}

// Decrypt dispatches val to the scheme its prefix and key select. A "v10"/
// "v11" prefix is ambiguous between CBC and GCM on its own, so Decrypt
// resolves it from len(key): 16 bytes is the CBC Safe Storage key, 32 bytes
// is the GCM master key DPAPI unwraps on Windows. DPAPI-prefixed values (no
// v1x prefix at all) are returned via ErrUnknownScheme, since unwrapping
// DPAPI blobs requires the keyvault package's platform hook, not a key the
// caller holds here; callers on Windows should route those bytes to
// keyvault instead.
func Decrypt(val, key []byte) ([]byte, Scheme, error) {
	switch {
	case bytes.HasPrefix(val, []byte("v20")):
		return nil, SchemeAppBound, fmt.Errorf("%w: v20 app-bound encryption is not supported", cookievault.ErrUnknownScheme)
	case bytes.HasPrefix(val, []byte("v10")), bytes.HasPrefix(val, []byte("v11")):
		switch len(key) {
		case keyBytes:
			pt, err := DecryptCBC(val, key)
			return pt, SchemeCBC, err
		case gcmKeyBytes:
			pt, err := DecryptGCM(val, key)
			return pt, SchemeGCM, err
		default:
			return nil, SchemeUnknown, fmt.Errorf("%w: key length %d bytes matches neither CBC (%d) nor GCM (%d)",
				cookievault.ErrKeyMalformed, len(key), keyBytes, gcmKeyBytes)
		}
	default:
		return nil, SchemeDPAPI, fmt.Errorf("%w: no v1x prefix, likely a raw DPAPI blob", cookievault.ErrUnknownScheme)
	}
}

// DecryptCBC decrypts val (a "v10"/"v11"-prefixed ciphertext) with
// AES-128-CBC and the fixed Chromium IV, removing PKCS7 padding.
func DecryptCBC(val, key []byte) ([]byte, error) {
	if len(val) < 3 {
		return nil, fmt.Errorf("%w: ciphertext too short", cookievault.ErrStoreCorrupt)
	}
	body := append([]byte(nil), val[3:]...)
	if len(body) == 0 || len(body)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext is not block-aligned", cookievault.ErrPaddingInvalid)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cookievault.ErrKeyMalformed, err)
	}
	dec := cipher.NewCBCDecrypter(block, []byte(ivString))
	dec.CryptBlocks(body, body)
	return unpad(body)
}

// DecryptGCM decrypts val (a "v10"/"v11"-prefixed ciphertext) with
// AES-256-GCM, per the Windows layout: 3-byte prefix, 12-byte nonce,
// ciphertext, 16-byte tag.
func DecryptGCM(val, key []byte) ([]byte, error) {
	if len(val) < 3+gcmNonceSize+gcmTagSize {
		return nil, fmt.Errorf("%w: ciphertext too short for GCM framing", cookievault.ErrStoreCorrupt)
	}
	nonce := val[3 : 3+gcmNonceSize]
	ciphertext := val[3+gcmNonceSize:]

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cookievault.ErrKeyMalformed, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cookievault.ErrKeyMalformed, err)
	}
	pt, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cookievault.ErrAuthTagMismatch, err)
	}
	return pt, nil
}

func unpad(buf []byte) ([]byte, error) {
	np := int(buf[len(buf)-1])
	if np < 1 || np > aes.BlockSize || np > len(buf) {
		return nil, fmt.Errorf("%w: padding count %d out of range", cookievault.ErrPaddingInvalid, np)
	}
	for i := len(buf) - np; i < len(buf); i++ {
		if int(buf[i]) != np {
			return nil, fmt.Errorf("%w: padding bytes do not match count", cookievault.ErrPaddingInvalid)
		}
	}
	return buf[:len(buf)-np], nil
}
