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

package cryptkit_test

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/cookievault/cookievault"
	"github.com/cookievault/cookievault/cryptkit"
)

// sealCBC builds a synthetic "v10"/"v11"-style ciphertext the way Chromium's
// Linux/macOS store does: fixed IV, PKCS7 padding, 3-byte version prefix.
func sealCBC(t *testing.T, prefix string, key, plain []byte) []byte {
	t.Helper()
	pad := aes.BlockSize - len(plain)%aes.BlockSize
	if pad == 0 {
		pad = aes.BlockSize
	}
	body := append(append([]byte(nil), plain...), make([]byte, pad)...)
	for i := len(plain); i < len(body); i++ {
		body[i] = byte(pad)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatalf("aes.NewCipher: %v", err)
	}
	cipher.NewCBCEncrypter(block, []byte("                ")).CryptBlocks(body, body)
	return append([]byte(prefix), body...)
}

// sealGCM builds a synthetic "v10"/"v11"-style ciphertext the way
// Chromium's Windows store does: 3-byte prefix, 12-byte nonce, ciphertext,
// 16-byte tag.
func sealGCM(t *testing.T, prefix string, key, plain []byte) []byte {
	t.Helper()
	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatalf("aes.NewCipher: %v", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		t.Fatalf("cipher.NewGCM: %v", err)
	}
	nonce := make([]byte, 12)
	if _, err := rand.Read(nonce); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	ct := gcm.Seal(nil, nonce, plain, nil)
	out := append([]byte(prefix), nonce...)
	return append(out, ct...)
}

func TestDecryptCBCRoundTrip(t *testing.T) {
	key := cryptkit.DeriveCBCKey("peanuts", 1)
	plain := []byte("session=abc123")

	for _, prefix := range []string{"v10", "v11"} {
		val := sealCBC(t, prefix, key, plain)
		got, scheme, err := cryptkit.Decrypt(val, key)
		if err != nil {
			t.Fatalf("Decrypt(%s): %v", prefix, err)
		}
		if scheme != cryptkit.SchemeCBC {
			t.Errorf("Decrypt(%s) scheme = %v, want SchemeCBC", prefix, scheme)
		}
		if string(got) != string(plain) {
			t.Errorf("Decrypt(%s) = %q, want %q", prefix, got, plain)
		}
	}
}

func TestDecryptGCMRoundTrip(t *testing.T) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	plain := []byte("session=abc123")

	for _, prefix := range []string{"v10", "v11"} {
		val := sealGCM(t, prefix, key, plain)
		got, scheme, err := cryptkit.Decrypt(val, key)
		if err != nil {
			t.Fatalf("Decrypt(%s): %v", prefix, err)
		}
		if scheme != cryptkit.SchemeGCM {
			t.Errorf("Decrypt(%s) scheme = %v, want SchemeGCM", prefix, scheme)
		}
		if string(got) != string(plain) {
			t.Errorf("Decrypt(%s) = %q, want %q", prefix, got, plain)
		}
	}
}

func TestDecryptV20Declined(t *testing.T) {
	val := append([]byte("v20"), make([]byte, 32)...)
	_, scheme, err := cryptkit.Decrypt(val, nil)
	if err == nil {
		t.Fatal("Decrypt(v20) succeeded, want an error")
	}
	if scheme != cryptkit.SchemeAppBound {
		t.Errorf("Decrypt(v20) scheme = %v, want SchemeAppBound", scheme)
	}
}

func TestDecryptUnknownPrefixIsDPAPI(t *testing.T) {
	_, scheme, err := cryptkit.Decrypt([]byte{0x01, 0x02, 0x03, 0x04}, nil)
	if err == nil {
		t.Fatal("Decrypt(unknown prefix) succeeded, want an error")
	}
	if scheme != cryptkit.SchemeDPAPI {
		t.Errorf("Decrypt(unknown prefix) scheme = %v, want SchemeDPAPI", scheme)
	}
}

// TestDecryptDispatchesOnKeyLengthNotCiphertextLength exercises the bug this
// package used to have: a long CBC plaintext (long enough to make the
// ciphertext exceed a GCM nonce+tag's worth of bytes) must still decrypt as
// CBC when given a 16-byte key, not get misrouted to GCM.
func TestDecryptDispatchesOnKeyLengthNotCiphertextLength(t *testing.T) {
	key := cryptkit.DeriveCBCKey("peanuts", 1)
	plain := []byte("a cookie value long enough that the ciphertext alone " +
		"would exceed a GCM nonce and tag's combined length")
	val := sealCBC(t, "v10", key, plain)

	got, scheme, err := cryptkit.Decrypt(val, key)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if scheme != cryptkit.SchemeCBC {
		t.Errorf("Decrypt scheme = %v, want SchemeCBC", scheme)
	}
	if string(got) != string(plain) {
		t.Errorf("Decrypt = %q, want %q", got, plain)
	}
}

func TestDecryptWrongKeyFails(t *testing.T) {
	key := cryptkit.DeriveCBCKey("peanuts", 1)
	wrongKey := cryptkit.DeriveCBCKey("wrong", 1)
	val := sealCBC(t, "v10", key, []byte("session=abc123"))

	if _, _, err := cryptkit.Decrypt(val, wrongKey); err == nil {
		t.Fatal("Decrypt with wrong key succeeded, want an error")
	}
}

func TestDecryptKeyLengthMismatch(t *testing.T) {
	val := append([]byte("v10"), make([]byte, 16)...)
	if _, _, err := cryptkit.Decrypt(val, make([]byte, 10)); err == nil {
		t.Fatal("Decrypt with a 10-byte key succeeded, want an error")
	} else if !errors.Is(err, cookievault.ErrKeyMalformed) {
		t.Errorf("Decrypt error %v does not wrap ErrKeyMalformed", err)
	}
}

func TestStripHostHash(t *testing.T) {
	const host = "example.com"
	want := []byte("cookie-value")
	sum := sha256.Sum256([]byte(host))
	buf := append(append([]byte(nil), sum[:]...), want...)
	if got := cryptkit.StripHostHash(host, buf); string(got) != string(want) {
		t.Errorf("StripHostHash = %q, want %q", got, want)
	}

	short := []byte("too short")
	if got := cryptkit.StripHostHash(host, short); string(got) != string(short) {
		t.Errorf("StripHostHash on short input = %q, want unchanged %q", got, short)
	}

	// A value that merely happens to be >= 32 bytes but doesn't start with
	// SHA-256(host) must be returned verbatim, not truncated.
	notAHash := append(make([]byte, 32), want...)
	if got := cryptkit.StripHostHash(host, notAHash); string(got) != string(notAHash) {
		t.Errorf("StripHostHash on a non-matching 32-byte prefix = %q, want it left unchanged", got)
	}
}

func TestErrorsWrapSentinels(t *testing.T) {
	val := sealCBC(t, "v10", cryptkit.DeriveCBCKey("peanuts", 1), []byte("x"))
	val = val[:len(val)-1] // break block alignment
	if _, err := cryptkit.DecryptCBC(val, cryptkit.DeriveCBCKey("peanuts", 1)); err == nil {
		t.Fatal("DecryptCBC on misaligned ciphertext succeeded, want an error")
	} else if !errors.Is(err, cookievault.ErrPaddingInvalid) {
		t.Errorf("DecryptCBC error %v does not wrap ErrPaddingInvalid", err)
	}
}
