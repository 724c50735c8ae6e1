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

// Package nss reads the Firefox family's key4.db, an SQLite database
// holding the NSS software token's global salt and a PKCS#7-ish
// PBES2-wrapped private key entry. Firefox cookie values are plaintext by
// default, but form- and extension-stored secrets (and, on some builds,
// cookie values) are unwrapped through this same key, so the Record
// Normalizer's generic decrypt fallback routes here for the Firefox family.
package nss

import (
	"bytes"
	"crypto/cipher"
	"crypto/des"
	"crypto/sha1"
	"crypto/sha256"
	"database/sql"
	"encoding/asn1"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/cookievault/cookievault"
)

const (
	queryMetaData   = "SELECT item1, item2 FROM metaData WHERE id = 'password'"
	queryNssPrivate = "SELECT a11, a102 FROM nssPrivate"
)

var oidPBES2 = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 5, 13}

type algorithmIdentifier struct {
	Algorithm  asn1.ObjectIdentifier
	Parameters asn1.RawValue `asn1:"optional"`
}

type pbes2Params struct {
	KeyDerivationFunc algorithmIdentifier
	EncryptionScheme  algorithmIdentifier
}

type pbkdf2Params struct {
	Salt           []byte
	IterationCount int
}

type wrappedEntry struct {
	Algo      algorithmIdentifier
	Encrypted []byte
}

// Key3DES is the 24-byte 3DES-CBC key recovered from key4.db, ready to
// unwrap any nssPrivate row belonging to the same database.
type Key3DES []byte

// Unlock opens path (a key4.db file) and derives the 3DES unwrapping key by
// decrypting the metaData "password-check" entry with an empty master
// password, the default for a profile with no user-set primary password.
func Unlock(path string) (Key3DES, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro&immutable=1", path))
	if err != nil {
		return nil, fmt.Errorf("%w: opening key4.db: %v", cookievault.ErrKeystoreUnavailable, err)
	}
	defer db.Close()

	var globalSalt, entry []byte
	if err := db.QueryRow(queryMetaData).Scan(&globalSalt, &entry); err != nil {
		return nil, fmt.Errorf("%w: reading metaData: %v", cookievault.ErrKeyNotFound, err)
	}

	key, iv, err := deriveKeyAndIV(globalSalt, nil, entry)
	if err != nil {
		return nil, err
	}

	checkPlain, err := decrypt3DES(key, iv, entry)
	if err != nil {
		return nil, fmt.Errorf("%w: password-check entry did not decrypt; primary password set?", cookievault.ErrKeyMalformed)
	}
	if !bytes.HasPrefix(checkPlain, []byte(passwordCheckValue)) {
		return nil, fmt.Errorf("%w: password-check entry decrypted to an unexpected value; wrong master key", cookievault.ErrKeyMalformed)
	}

	return Key3DES(key), nil
}

// passwordCheckValue is the fixed plaintext NSS encrypts into the metaData
// "password-check" entry; Unlock derives the right key iff decrypting that
// entry reproduces this prefix.
const passwordCheckValue = "password-check"

// Unwrap decrypts one nssPrivate row's CKA_VALUE (a1, a102 columns) using
// the key recovered by Unlock, returning the raw unwrapped key bytes.
func (k Key3DES) Unwrap(wrapped []byte) ([]byte, error) {
	var entry wrappedEntry
	if _, err := asn1.Unmarshal(wrapped, &entry); err != nil {
		return nil, fmt.Errorf("%w: parsing wrapped entry: %v", cookievault.ErrKeyMalformed, err)
	}
	scheme, err := parseAlgo(entry.Algo)
	if err != nil {
		return nil, err
	}
	// Every nssPrivate row is wrapped with the same master key Unlock
	// recovered; the per-row PBES2 params only carry this row's IV.
	return decrypt3DES([]byte(k), scheme.iv, wrapped)
}

// ReadPrivateKeys enumerates the nssPrivate table and returns each row's
// decrypted CKA_VALUE, keyed by its CKA_ID (column a11).
func ReadPrivateKeys(path string, key Key3DES) (map[string][]byte, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro&immutable=1", path))
	if err != nil {
		return nil, fmt.Errorf("%w: opening key4.db: %v", cookievault.ErrKeystoreUnavailable, err)
	}
	defer db.Close()

	rows, err := db.Query(queryNssPrivate)
	if err != nil {
		return nil, fmt.Errorf("%w: querying nssPrivate: %v", cookievault.ErrStoreCorrupt, err)
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var id string
		var wrapped []byte
		if err := rows.Scan(&id, &wrapped); err != nil {
			continue
		}
		plain, err := key.Unwrap(wrapped)
		if err != nil {
			continue // a row this key can't unwrap isn't fatal to the rest
		}
		out[id] = plain
	}
	return out, rows.Err()
}

// pbes2Scheme holds the PBES2 parameters parsed out of an algorithmIdentifier:
// the PBKDF2 salt and iteration count, and the encryption scheme's IV.
type pbes2Scheme struct {
	salt           []byte
	iterationCount int
	iv             []byte
}

// parseAlgo parses algo as PBES2(PBKDF2-HMAC-SHA256, ...), the only NSS wrap
// algorithm this package supports.
func parseAlgo(algo algorithmIdentifier) (pbes2Scheme, error) {
	if !algo.Algorithm.Equal(oidPBES2) {
		return pbes2Scheme{}, fmt.Errorf("%w: unsupported NSS wrap algorithm %v", cookievault.ErrUnknownScheme, algo.Algorithm)
	}
	var params pbes2Params
	if _, err := asn1.Unmarshal(algo.Parameters.FullBytes, &params); err != nil {
		return pbes2Scheme{}, fmt.Errorf("%w: parsing PBES2 params: %v", cookievault.ErrKeyMalformed, err)
	}
	var kdf pbkdf2Params
	if _, err := asn1.Unmarshal(params.KeyDerivationFunc.Parameters.FullBytes, &kdf); err != nil {
		return pbes2Scheme{}, fmt.Errorf("%w: parsing PBKDF2 params: %v", cookievault.ErrKeyMalformed, err)
	}
	var schemeIV []byte
	if _, err := asn1.Unmarshal(params.EncryptionScheme.Parameters.FullBytes, &schemeIV); err != nil {
		return pbes2Scheme{}, fmt.Errorf("%w: parsing encryption-scheme IV: %v", cookievault.ErrKeyMalformed, err)
	}
	return pbes2Scheme{salt: kdf.Salt, iterationCount: kdf.IterationCount, iv: schemeIV}, nil
}

// deriveKeyAndIV derives the 24-byte 3DES key and 8-byte IV for entry's
// encryption scheme. NSS does not feed globalSalt and primaryPassword
// straight into PBKDF2; it first folds them through SHA-1 (the same way the
// legacy key3.db format keyed its PBE schemes), and uses that digest as the
// PBKDF2 password.
func deriveKeyAndIV(globalSalt, primaryPassword, entry []byte) (key, iv []byte, err error) {
	var w wrappedEntry
	if _, err := asn1.Unmarshal(entry, &w); err != nil {
		return nil, nil, fmt.Errorf("%w: parsing password-check entry: %v", cookievault.ErrKeyMalformed, err)
	}
	scheme, err := parseAlgo(w.Algo)
	if err != nil {
		return nil, nil, err
	}
	folded := sha1.Sum(append(append([]byte(nil), globalSalt...), primaryPassword...))
	derived := pbkdf2.Key(folded[:], scheme.salt, scheme.iterationCount, 32, sha256.New)
	return derived[:24], scheme.iv, nil
}

func decrypt3DES(key, iv, entry []byte) ([]byte, error) {
	var w wrappedEntry
	if _, err := asn1.Unmarshal(entry, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", cookievault.ErrKeyMalformed, err)
	}
	block, err := des.NewTripleDESCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cookievault.ErrKeyMalformed, err)
	}
	if len(w.Encrypted)%block.BlockSize() != 0 {
		return nil, fmt.Errorf("%w: ciphertext is not block-aligned", cookievault.ErrPaddingInvalid)
	}
	out := make([]byte, len(w.Encrypted))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, w.Encrypted)
	return stripPKCS7(out), nil
}

func stripPKCS7(buf []byte) []byte {
	if len(buf) == 0 {
		return buf
	}
	n := int(buf[len(buf)-1])
	if n < 1 || n > len(buf) {
		return buf
	}
	return buf[:len(buf)-n]
}
