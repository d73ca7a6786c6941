package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/argon2"
)

// Sealed file layout: salt (16) || nonce (12) || AES-256-GCM ciphertext+tag.
const (
	sealSaltSize  = 16
	sealNonceSize = 12

	// Argon2id parameters (OWASP minimum: 19 MiB memory, 2 passes, 1 lane).
	argonTime    = 2
	argonMemory  = 19 * 1024 // KiB
	argonThreads = 1
)

// SealFile encrypts inPath under a password-derived key and writes the
// sealed form to outPath. A fresh random salt and nonce are drawn per call;
// the same file sealed twice never produces the same bytes.
func SealFile(inPath, outPath string, password []byte) error {
	plaintext, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	salt := make([]byte, sealSaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	aead, err := sealAEAD(password, salt)
	if err != nil {
		return err
	}
	nonce := make([]byte, sealNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}
	out := make([]byte, 0, sealSaltSize+sealNonceSize+len(plaintext)+aead.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	out = aead.Seal(out, nonce, plaintext, nil)
	return os.WriteFile(outPath, out, 0o600)
}

// UnsealFile reverses SealFile. A wrong password surfaces as ErrBadPassword
// via the GCM authentication tag.
func UnsealFile(inPath, outPath string, password []byte) error {
	sealed, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	if len(sealed) < sealSaltSize+sealNonceSize {
		return fmt.Errorf("%w: sealed file too short", ErrBadCiphertext)
	}
	salt := sealed[:sealSaltSize]
	nonce := sealed[sealSaltSize : sealSaltSize+sealNonceSize]
	aead, err := sealAEAD(password, salt)
	if err != nil {
		return err
	}
	plaintext, err := aead.Open(nil, nonce, sealed[sealSaltSize+sealNonceSize:], nil)
	if err != nil {
		return ErrBadPassword
	}
	return os.WriteFile(outPath, plaintext, 0o600)
}

// sealAEAD derives the AES-256-GCM cipher from a password and salt.
func sealAEAD(password, salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, 32)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
