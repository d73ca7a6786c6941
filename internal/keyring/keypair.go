// Package keyring locates, creates and persists the secp256k1 key pairs
// behind dotenv files: public keys live in the dotenv file itself, private
// keys in .env.keys, the process environment, or the global JSON keystore.
package keyring

import (
	"errors"
	"fmt"
	"time"

	"github.com/linux-china/dotenvx-go/internal/crypto"
)

// Sentinel errors - resolution
var (
	ErrMissingPublicKey  = errors.New("dotenvx: public key not found, check the DOTENV_PUBLIC_KEY environment variable or the dotenv file")
	ErrMissingPrivateKey = errors.New("dotenvx: private key not found, check the DOTENV_PRIVATE_KEY environment variable or the .env.keys file")
	ErrKeyMismatch       = errors.New("dotenvx: the public key does not match the private key")
)

// KeyPair is one secp256k1 pair plus the bookkeeping stored alongside it
// in the global keystore.
type KeyPair struct {
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
	Path       string `json:"path,omitempty"`
	Group      string `json:"group,omitempty"`
	Name       string `json:"name,omitempty"`
	Profile    string `json:"profile,omitempty"`
	Comment    string `json:"comment,omitempty"`
	Timestamp  string `json:"timestamp,omitempty"`
}

// Generate creates a fresh pair stamped with the local time.
func Generate(profile string) (KeyPair, error) {
	sk, pk, err := crypto.GenerateKeyPair()
	if err != nil {
		return KeyPair{}, err
	}
	return KeyPair{
		PublicKey:  pk,
		PrivateKey: sk,
		Profile:    profile,
		Timestamp:  time.Now().Format("2006-01-02T15:04:05-07:00"),
	}, nil
}

// Validate re-derives the public key from the private key and checks it
// reproduces the stored public key exactly.
func (kp KeyPair) Validate() error {
	derived, err := crypto.DerivePublicKey(kp.PrivateKey)
	if err != nil {
		return err
	}
	if derived != kp.PublicKey {
		return fmt.Errorf("%w: %s", ErrKeyMismatch, kp.PublicKey)
	}
	return nil
}

// IsGlobalProfile reports whether a profile addresses the global keystore
// under $HOME rather than the working tree.
func IsGlobalProfile(profile string) bool {
	return len(profile) > 2 && profile[:2] == "g_"
}
