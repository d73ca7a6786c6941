package dotenvx

import (
	"github.com/linux-china/dotenvx-go/internal/crypto"
	"github.com/linux-china/dotenvx-go/internal/envops"
	"github.com/linux-china/dotenvx-go/internal/keyring"
)

// Sentinel errors. Every failure mode of the library and CLI unwraps to
// one of these, so callers can branch with errors.Is.
var (
	// ErrMissingPublicKey means no public key was found in the dotenv
	// file, the environment, or by derivation.
	ErrMissingPublicKey = keyring.ErrMissingPublicKey
	// ErrMissingPrivateKey means no private key was found in the
	// environment, .env.keys, or the global keystore.
	ErrMissingPrivateKey = keyring.ErrMissingPrivateKey
	// ErrKeyMismatch means the resolved public and private keys are not
	// two halves of one pair.
	ErrKeyMismatch = keyring.ErrKeyMismatch
	// ErrBadKey means a key was not valid hex of the right length.
	ErrBadKey = crypto.ErrBadKey
	// ErrBadCiphertext means an encrypted value failed to decrypt.
	ErrBadCiphertext = crypto.ErrBadCiphertext
	// ErrBadPassword means a sealed keystore failed authentication.
	ErrBadPassword = crypto.ErrBadPassword
	// ErrBadKeyName means a set operation used an invalid identifier.
	ErrBadKeyName = envops.ErrBadKeyName
	// ErrSignatureInvalid means a file signature failed verification.
	ErrSignatureInvalid = envops.ErrSignatureInvalid
	// ErrSignatureMissing means verification found no signature line.
	ErrSignatureMissing = envops.ErrSignatureMissing
)
