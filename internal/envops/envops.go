// Package envops implements the whole-file operations of the dotenvx CLI:
// init, encrypt, decrypt, get, set, rotate, verify, ls and diff. Every
// operation computes its result in memory and performs at most one write
// per file, so a failing step never leaves a half-rewritten file behind.
package envops

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"regexp"

	"github.com/linux-china/dotenvx-go/internal/envfile"
	"github.com/linux-china/dotenvx-go/internal/keyring"
)

// Sentinel errors - operations
var (
	ErrBadKeyName       = errors.New("dotenvx: key name must match ^[A-Za-z_][A-Za-z0-9_]*$")
	ErrSignatureMissing = errors.New("dotenvx: the file does not contain a signature")
	ErrSignatureInvalid = errors.New("dotenvx: signature is invalid")
	ErrPublicKeyExists  = errors.New("dotenvx: the file already declares a public key")
)

// Options tunes one file operation.
type Options struct {
	// Keys restricts the operation to entries whose normalized key
	// matches one of these glob patterns (*?[] syntax).
	Keys []string
	// Sign maintains the front-matter signature after encryption.
	Sign bool
	// Stdout computes the result without writing the file.
	Stdout bool
}

// Result reports what an operation did to one file.
type Result struct {
	Path    string
	Content string
	Changed bool
}

// keySelector compiles glob patterns against normalized keys. An empty
// pattern list selects everything.
type keySelector struct {
	fileName string
	patterns []string
}

func newKeySelector(fileName string, patterns []string) keySelector {
	normalized := make([]string, 0, len(patterns))
	for _, p := range patterns {
		normalized = append(normalized, envfile.NormalizeKey(p, fileName))
	}
	return keySelector{fileName: fileName, patterns: normalized}
}

func (s keySelector) matches(key string) bool {
	if len(s.patterns) == 0 {
		return true
	}
	normalized := envfile.NormalizeKey(key, s.fileName)
	for _, pattern := range s.patterns {
		if ok, err := path.Match(pattern, normalized); err == nil && ok {
			return true
		}
	}
	return false
}

var keyNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
var propertiesKeyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

// validateKeyName enforces the identifier rule for new entries. Properties
// keys additionally allow dots and dashes.
func validateKeyName(key, fileName string) error {
	pattern := keyNamePattern
	if envfile.IsProperties(fileName) {
		pattern = propertiesKeyPattern
	}
	if !pattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrBadKeyName, key)
	}
	return nil
}

// filePublicKey resolves the public key to encrypt a file under: the
// file's own declaration first, then the resolver tiers.
func filePublicKey(r *keyring.Resolver, doc *envfile.Document) (string, error) {
	if publicKey, ok := doc.PublicKey(); ok {
		return publicKey, nil
	}
	return r.PublicKey(doc.Profile)
}

// filePrivateKey resolves the private key for a file, preferring a
// keystore hit on the file's declared public key.
func filePrivateKey(r *keyring.Resolver, doc *envfile.Document) (string, error) {
	hint, _ := doc.PublicKey()
	return r.PrivateKey(doc.Profile, hint)
}

// ensureFilePair returns the pair to encrypt a file under, generating and
// persisting a fresh one when the file has no key yet.
func ensureFilePair(r *keyring.Resolver, doc *envfile.Document) (string, bool, error) {
	if publicKey, err := filePublicKey(r, doc); err == nil {
		return publicKey, false, nil
	}
	pair, err := keyring.Generate(doc.Profile)
	if err != nil {
		return "", false, err
	}
	pair.Path = doc.Path
	if doc.Path != "" {
		pair.Name = filepath.Base(filepath.Dir(doc.Path))
	}
	if err := r.Persist(pair, nil); err != nil {
		return "", false, err
	}
	return pair.PublicKey, true, nil
}

// finish writes the result when it changed, unless stdout mode is on.
func finish(doc *envfile.Document, content string, changed, stdout bool) (*Result, error) {
	res := &Result{Path: doc.Path, Content: content, Changed: changed}
	if stdout || !changed {
		return res, nil
	}
	if err := writeFile(doc.Path, content); err != nil {
		return nil, err
	}
	return res, nil
}
