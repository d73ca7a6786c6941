package crypto

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// SignMessage hashes the whitespace-trimmed message with SHA-256, signs the
// digest with ECDSA over secp256k1, and returns the 64-byte R||S signature
// base64-encoded. This is the form stored on "# sign:" lines.
func SignMessage(privateKeyHex, message string) (string, error) {
	raw, err := SignBytes(privateKeyHex, []byte(strings.TrimSpace(message)))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// SignBytes signs message bytes as-is and returns the raw 64-byte compact
// signature. Callers assembling JWTs use this form directly.
func SignBytes(privateKeyHex string, message []byte) ([]byte, error) {
	privKey, err := parsePrivateKey(privateKeyHex)
	if err != nil {
		return nil, err
	}
	digest := sha256.Sum256(message)
	return compactSignature(ecdsa.Sign(privKey, digest[:])), nil
}

// VerifyMessage mirrors SignMessage: it returns false on a signature
// mismatch and an error on malformed keys or signatures.
func VerifyMessage(publicKeyHex, message, signatureB64 string) (bool, error) {
	pubKey, err := parsePublicKey(publicKeyHex)
	if err != nil {
		return false, err
	}
	sigBytes, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return false, fmt.Errorf("%w: signature is not valid base64", ErrBadCiphertext)
	}
	sig, err := parseCompactSignature(sigBytes)
	if err != nil {
		return false, err
	}
	digest := sha256.Sum256([]byte(strings.TrimSpace(message)))
	return sig.Verify(digest[:], pubKey), nil
}

// compactSignature converts a DER signature to R||S (64 bytes) with low-S
// normalization so the same message and key always serialize identically.
func compactSignature(sig *ecdsa.Signature) []byte {
	r, s := extractRSFromDER(sig.Serialize())
	if s.IsOverHalfOrder() {
		s.Negate()
	}
	out := make([]byte, 64)
	r.PutBytesUnchecked(out[:32])
	s.PutBytesUnchecked(out[32:])
	return out
}

// extractRSFromDER pulls the R and S scalars out of a DER-encoded
// signature: 0x30 [len] 0x02 [r_len] [r] 0x02 [s_len] [s].
func extractRSFromDER(der []byte) (*btcec.ModNScalar, *btcec.ModNScalar) {
	offset := 2

	offset++ // R integer tag
	rLen := int(der[offset])
	offset++
	rBytes := der[offset : offset+rLen]
	offset += rLen

	offset++ // S integer tag
	sLen := int(der[offset])
	offset++
	sBytes := der[offset : offset+sLen]

	// DER prepends 0x00 to positive values with the high bit set.
	if len(rBytes) == 33 && rBytes[0] == 0 {
		rBytes = rBytes[1:]
	}
	if len(sBytes) == 33 && sBytes[0] == 0 {
		sBytes = sBytes[1:]
	}

	rPadded := make([]byte, 32)
	sPadded := make([]byte, 32)
	copy(rPadded[32-len(rBytes):], rBytes)
	copy(sPadded[32-len(sBytes):], sBytes)

	r := new(btcec.ModNScalar)
	s := new(btcec.ModNScalar)
	r.SetByteSlice(rPadded)
	s.SetByteSlice(sPadded)
	return r, s
}

// parseCompactSignature parses a 64-byte R||S signature.
func parseCompactSignature(sigBytes []byte) (*ecdsa.Signature, error) {
	if len(sigBytes) != 64 {
		return nil, fmt.Errorf("%w: signature must be 64 bytes, got %d", ErrBadCiphertext, len(sigBytes))
	}
	r := new(btcec.ModNScalar)
	s := new(btcec.ModNScalar)
	if r.SetByteSlice(sigBytes[:32]) {
		return nil, fmt.Errorf("%w: signature r value overflows", ErrBadCiphertext)
	}
	if s.SetByteSlice(sigBytes[32:]) {
		return nil, fmt.Errorf("%w: signature s value overflows", ErrBadCiphertext)
	}
	if r.IsZero() || s.IsZero() {
		return nil, fmt.Errorf("%w: signature r or s is zero", ErrBadCiphertext)
	}
	return ecdsa.NewSignature(r, s), nil
}
