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

//go:build windows

package keyvault

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/cookievault/cookievault"
)

var (
	modcrypt32             = windows.NewLazySystemDLL("crypt32.dll")
	modkernel32            = windows.NewLazySystemDLL("kernel32.dll")
	procCryptUnprotectData = modcrypt32.NewProc("CryptUnprotectData")
	procLocalFree          = modkernel32.NewProc("LocalFree")
)

type dataBlob struct {
	cbData uint32
	pbData *byte
}

func newBlob(data []byte) dataBlob {
	if len(data) == 0 {
		return dataBlob{}
	}
	return dataBlob{cbData: uint32(len(data)), pbData: &data[0]}
}

func (b *dataBlob) bytes() []byte {
	return unsafe.Slice(b.pbData, int(b.cbData))
}

// unprotect calls the DPAPI CryptUnprotectData API to unwrap blob, which
// Chromium (and Internet Explorer) encrypt under the current Windows user's
// logon credentials with no additional entropy.
func unprotect(blob []byte) ([]byte, error) {
	in := newBlob(blob)
	var out dataBlob

	r, _, err := procCryptUnprotectData.Call(
		uintptr(unsafe.Pointer(&in)),
		0,                      // ppszDataDescr
		0,                      // pOptionalEntropy
		0,                      // pvReserved
		0,                      // pPromptStruct
		0,                      // dwFlags
		uintptr(unsafe.Pointer(&out)),
	)
	if r == 0 {
		return nil, fmt.Errorf("%w: CryptUnprotectData failed: %v", cookievault.ErrKeyMalformed, err)
	}
	defer procLocalFree.Call(uintptr(unsafe.Pointer(out.pbData)))

	plain := make([]byte, out.cbData)
	copy(plain, out.bytes())
	return plain, nil
}

// platformChromiumKey recovers the AES-256 master key from "Local State":
// its os_crypt.encrypted_key, minus the "DPAPI" prefix, unwrapped with the
// current user's DPAPI credentials. Unlike Linux/macOS this key is used
// directly, with no PBKDF2 step.
func platformChromiumKey(_ string, localStatePath string) (MasterKey, error) {
	if localStatePath == "" {
		return nil, fmt.Errorf("%w: Local State path required on Windows", cookievault.ErrPathNotFound)
	}
	ls, err := ReadLocalState(localStatePath)
	if err != nil {
		return nil, err
	}
	key, err := unprotect(ls.EncryptedKey)
	if err != nil {
		return nil, err
	}
	return MasterKey(key), nil
}

// UnwrapDPAPIBlob unwraps a raw DPAPI-protected value, such as an Internet
// Explorer or legacy Edge cookie, or a pre-v10 Chromium value. Unlike the
// Chromium Safe Storage key, no passphrase or Local State lookup is
// involved: DPAPI ties the blob to the current Windows user's logon
// credentials directly.
func UnwrapDPAPIBlob(blob []byte) ([]byte, error) {
	return unprotect(blob)
}
