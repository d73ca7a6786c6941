package crypto

import "errors"

// Sentinel errors - keys and ciphertext
var (
	ErrBadKey        = errors.New("dotenvx: malformed key")
	ErrBadCiphertext = errors.New("dotenvx: ciphertext is malformed or was encrypted for a different key")
	ErrBadPassword   = errors.New("dotenvx: wrong password")
)
