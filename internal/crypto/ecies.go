package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"golang.org/x/crypto/hkdf"
)

// EncryptedPrefix is the in-band marker for encrypted dotenv values.
const EncryptedPrefix = "encrypted:"

// ECIES wire layout, shared with the other dotenvx implementations:
// ephemeral public key (65, uncompressed) || nonce (16) || GCM tag (16) || ciphertext.
// The AES-256 key is HKDF-SHA256(ephemeral_pub || shared_point), both points
// in uncompressed form, with no salt and no info.
const (
	eciesEphemeralSize = 65
	eciesNonceSize     = 16
	eciesTagSize       = 16
	eciesOverhead      = eciesEphemeralSize + eciesNonceSize + eciesTagSize
)

// EncryptValue encrypts plaintext for the holder of publicKeyHex and returns
// the self-framed "encrypted:<base64>" token. Only the public key is needed,
// so any party with the dotenv file can add or update encrypted entries.
func EncryptValue(publicKeyHex string, plaintext []byte) (string, error) {
	pubKey, err := parsePublicKey(publicKeyHex)
	if err != nil {
		return "", err
	}
	ephemeral, err := btcec.NewPrivateKey()
	if err != nil {
		return "", fmt.Errorf("failed to generate ephemeral key: %w", err)
	}
	ephemeralPub := ephemeral.PubKey().SerializeUncompressed()
	aead, err := eciesAEAD(ephemeralPub, sharedPoint(ephemeral, pubKey))
	if err != nil {
		return "", err
	}
	nonce := make([]byte, eciesNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := aead.Seal(nil, nonce, plaintext, nil)
	ciphertext, tag := sealed[:len(sealed)-eciesTagSize], sealed[len(sealed)-eciesTagSize:]

	out := make([]byte, 0, eciesOverhead+len(ciphertext))
	out = append(out, ephemeralPub...)
	out = append(out, nonce...)
	out = append(out, tag...)
	out = append(out, ciphertext...)
	return EncryptedPrefix + base64.StdEncoding.EncodeToString(out), nil
}

// DecryptValue reverses EncryptValue with the private key. The token may
// carry the "encrypted:" prefix or be the bare base64 payload.
func DecryptValue(privateKeyHex, token string) ([]byte, error) {
	privKey, err := parsePrivateKey(privateKeyHex)
	if err != nil {
		return nil, err
	}
	payload, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(token, EncryptedPrefix))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64", ErrBadCiphertext)
	}
	if len(payload) < eciesOverhead {
		return nil, fmt.Errorf("%w: payload too short", ErrBadCiphertext)
	}
	ephemeralPub, err := btcec.ParsePubKey(payload[:eciesEphemeralSize])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid ephemeral key", ErrBadCiphertext)
	}
	aead, err := eciesAEAD(payload[:eciesEphemeralSize], sharedPoint(privKey, ephemeralPub))
	if err != nil {
		return nil, err
	}
	nonce := payload[eciesEphemeralSize : eciesEphemeralSize+eciesNonceSize]
	tag := payload[eciesEphemeralSize+eciesNonceSize : eciesOverhead]
	ciphertext := payload[eciesOverhead:]

	sealed := make([]byte, 0, len(ciphertext)+eciesTagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrBadCiphertext
	}
	return plaintext, nil
}

// IsEncrypted reports whether a dotenv value carries the encrypted marker.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, EncryptedPrefix)
}

// sharedPoint computes the ECDH point k*P in uncompressed form.
func sharedPoint(priv *btcec.PrivateKey, pub *btcec.PublicKey) []byte {
	var point, result btcec.JacobianPoint
	pub.AsJacobian(&point)
	btcec.ScalarMultNonConst(&priv.Key, &point, &result)
	result.ToAffine()
	return btcec.NewPublicKey(&result.X, &result.Y).SerializeUncompressed()
}

// eciesAEAD derives the AES-256-GCM cipher for one envelope.
func eciesAEAD(ephemeralPub, shared []byte) (cipher.AEAD, error) {
	ikm := make([]byte, 0, len(ephemeralPub)+len(shared))
	ikm = append(ikm, ephemeralPub...)
	ikm = append(ikm, shared...)
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, nil, nil), key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCMWithNonceSize(block, eciesNonceSize)
}
