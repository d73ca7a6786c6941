// Package crypto implements the cryptographic primitives behind dotenvx
// files: secp256k1 key pairs, the ECIES envelope used for encrypted values,
// ECDSA file signatures, and the password-based file seal.
package crypto

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
)

// GenerateKeyPair creates a new secp256k1 key pair and returns both halves
// as lowercase hex: the private key as the raw 32-byte scalar, the public
// key in compressed 33-byte SEC1 form.
func GenerateKeyPair() (privateKeyHex, publicKeyHex string, err error) {
	privKey, err := btcec.NewPrivateKey()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate private key: %w", err)
	}
	privateKeyHex = hex.EncodeToString(privKey.Serialize())
	publicKeyHex = hex.EncodeToString(privKey.PubKey().SerializeCompressed())
	return privateKeyHex, publicKeyHex, nil
}

// DerivePublicKey recomputes the compressed public key for a private key
// given as hex. It is the consistency anchor for every stored key pair:
// a pair is valid iff DerivePublicKey(sk) equals the stored public key.
func DerivePublicKey(privateKeyHex string) (string, error) {
	privKey, err := parsePrivateKey(privateKeyHex)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(privKey.PubKey().SerializeCompressed()), nil
}

// parsePrivateKey decodes a 32-byte hex scalar into a btcec private key.
func parsePrivateKey(privateKeyHex string) (*btcec.PrivateKey, error) {
	raw, err := hex.DecodeString(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: private key is not valid hex", ErrBadKey)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("%w: private key must be 32 bytes, got %d", ErrBadKey, len(raw))
	}
	privKey := secpPrivKeyFromBytes(raw)
	if privKey.Key.IsZero() {
		return nil, fmt.Errorf("%w: private key is zero", ErrBadKey)
	}
	return privKey, nil
}

// secpPrivKeyFromBytes wraps btcec's constructor so parsePrivateKey reads
// as one validation pipeline.
func secpPrivKeyFromBytes(raw []byte) *btcec.PrivateKey {
	return btcec.PrivKeyFromBytes(raw)
}

// parsePublicKey decodes a compressed or uncompressed hex public key.
func parsePublicKey(publicKeyHex string) (*btcec.PublicKey, error) {
	raw, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: public key is not valid hex", ErrBadKey)
	}
	pubKey, err := btcec.ParsePubKey(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadKey, err)
	}
	return pubKey, nil
}
