// SPDX-License-Identifier: MIT

package bundle

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5" // #nosec G501 -- EVP_BytesToKey compatibility, not used for integrity
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// ErrBundleLocked is returned for every decryption failure. A wrong password
// and a damaged payload are indistinguishable on purpose.
var ErrBundleLocked = errors.New("wrong password or corrupt data")

const (
	saltedMagic = "Salted__"
	saltLen     = 8
	keyLen      = 32
	ivLen       = aes.BlockSize
)

// KDF names.
const (
	KDFMD5    = "md5"
	KDFPBKDF2 = "pbkdf2"
)

// Decrypter opens OpenSSL "Salted__" envelopes as written by
// `openssl enc -aes-256-cbc` and CryptoJS passphrase encryption.
type Decrypter struct {
	Password   string
	KDF        string
	Iterations int
}

// Decrypt accepts the envelope as raw bytes or as base64 text.
func (d Decrypter) Decrypt(data []byte) ([]byte, error) {
	raw, err := envelope(data)
	if err != nil {
		return nil, err
	}

	salt := raw[len(saltedMagic) : len(saltedMagic)+saltLen]
	ciphertext := raw[len(saltedMagic)+saltLen:]
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d", ErrBundleLocked, len(ciphertext))
	}

	key, iv, err := d.derive(salt)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBundleLocked, err)
	}

	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ciphertext)
	return unpad(plain)
}

func envelope(data []byte) ([]byte, error) {
	if bytes.HasPrefix(data, []byte(saltedMagic)) {
		if len(data) < len(saltedMagic)+saltLen {
			return nil, fmt.Errorf("%w: truncated header", ErrBundleLocked)
		}
		return data, nil
	}

	text := bytes.Join(bytes.Fields(data), nil)
	raw := make([]byte, base64.StdEncoding.DecodedLen(len(text)))
	n, err := base64.StdEncoding.Decode(raw, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBundleLocked, err)
	}
	raw = raw[:n]
	if !bytes.HasPrefix(raw, []byte(saltedMagic)) || len(raw) < len(saltedMagic)+saltLen {
		return nil, fmt.Errorf("%w: missing salt header", ErrBundleLocked)
	}
	return raw, nil
}

func (d Decrypter) derive(salt []byte) (key, iv []byte, err error) {
	var material []byte
	switch d.KDF {
	case "", KDFMD5:
		material = evpBytesToKey([]byte(d.Password), salt, keyLen+ivLen)
	case KDFPBKDF2:
		iter := d.Iterations
		if iter <= 0 {
			iter = 10000
		}
		material = pbkdf2.Key([]byte(d.Password), salt, iter, keyLen+ivLen, sha256.New)
	default:
		return nil, nil, fmt.Errorf("unknown kdf %q", d.KDF)
	}
	return material[:keyLen], material[keyLen:], nil
}

// evpBytesToKey is OpenSSL's EVP_BytesToKey with MD5 and one iteration.
func evpBytesToKey(password, salt []byte, n int) []byte {
	var (
		out  []byte
		prev []byte
	)
	for len(out) < n {
		h := md5.New() // #nosec G401
		h.Write(prev)
		h.Write(password)
		h.Write(salt)
		prev = h.Sum(nil)
		out = append(out, prev...)
	}
	return out[:n]
}

func unpad(b []byte) ([]byte, error) {
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, fmt.Errorf("%w: bad padding", ErrBundleLocked)
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, fmt.Errorf("%w: bad padding", ErrBundleLocked)
		}
	}
	return b[:len(b)-n], nil
}

// Seal encrypts plaintext into a base64 "Salted__" envelope readable by
// Decrypt and by `openssl enc -d -a -aes-256-cbc`.
func (d Decrypter) Seal(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	key, iv, err := d.derive(salt)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	pad := aes.BlockSize - len(plaintext)%aes.BlockSize
	padded := append(bytes.Clone(plaintext), bytes.Repeat([]byte{byte(pad)}, pad)...)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	raw := make([]byte, 0, len(saltedMagic)+saltLen+len(ciphertext))
	raw = append(raw, saltedMagic...)
	raw = append(raw, salt...)
	raw = append(raw, ciphertext...)

	out := make([]byte, base64.StdEncoding.EncodedLen(len(raw)))
	base64.StdEncoding.Encode(out, raw)
	return out, nil
}
