package envops

import (
	"os"

	"github.com/linux-china/dotenvx-go/internal/crypto"
	"github.com/linux-china/dotenvx-go/internal/envfile"
	"github.com/linux-china/dotenvx-go/internal/keyring"
)

// DecryptFile rewrites every selected encrypted entry back to plaintext.
// Re-running on a plain file is a no-op.
func DecryptFile(r *keyring.Resolver, path string, opts Options) (*Result, error) {
	doc, err := envfile.Load(path)
	if err != nil {
		return nil, err
	}
	changed := false
	selector := newKeySelector(doc.Name, opts.Keys)
	var privateKey string
	for _, entry := range doc.Entries() {
		if !crypto.IsEncrypted(entry.Value) || !selector.matches(entry.Key) {
			continue
		}
		if privateKey == "" {
			if privateKey, err = filePrivateKey(r, doc); err != nil {
				return nil, err
			}
		}
		plaintext, err := crypto.DecryptValue(privateKey, entry.Value)
		if err != nil {
			return nil, err
		}
		if doc.Set(entry.Key, string(plaintext)) {
			changed = true
		}
	}
	content := doc.String()
	if original, err := os.ReadFile(path); err == nil {
		changed = content != string(original)
	}
	return finish(doc, content, changed, opts.Stdout)
}

// ReadDecrypted returns the file's entries with every encrypted value
// decrypted, in file order, without touching the file. The private key is
// resolved once, and only when an encrypted value is present.
func ReadDecrypted(r *keyring.Resolver, path string) ([]envfile.Entry, error) {
	doc, err := envfile.Load(path)
	if err != nil {
		return nil, err
	}
	return decryptEntries(r, doc)
}

// DecryptDocument decrypts an already-parsed document's entries, for
// callers holding content that never touched the filesystem.
func DecryptDocument(r *keyring.Resolver, doc *envfile.Document) ([]envfile.Entry, error) {
	return decryptEntries(r, doc)
}

func decryptEntries(r *keyring.Resolver, doc *envfile.Document) ([]envfile.Entry, error) {
	entries := doc.Entries()
	var privateKey string
	for i, entry := range entries {
		if !crypto.IsEncrypted(entry.Value) {
			continue
		}
		if privateKey == "" {
			var err error
			if privateKey, err = filePrivateKey(r, doc); err != nil {
				return nil, err
			}
		}
		plaintext, err := crypto.DecryptValue(privateKey, entry.Value)
		if err != nil {
			return nil, err
		}
		entries[i].Value = string(plaintext)
	}
	return entries, nil
}

// Get resolves one value: entries are looked up by normalized key and
// decrypted when needed.
func Get(r *keyring.Resolver, path, key string) (string, error) {
	doc, err := envfile.Load(path)
	if err != nil {
		return "", err
	}
	key = envfile.NormalizeKey(key, doc.Name)
	value, ok := doc.Get(key)
	if !ok {
		return "", os.ErrNotExist
	}
	if !crypto.IsEncrypted(value) {
		return value, nil
	}
	privateKey, err := filePrivateKey(r, doc)
	if err != nil {
		return "", err
	}
	plaintext, err := crypto.DecryptValue(privateKey, value)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// DecryptToken decrypts one literal encrypted token under a profile's
// private key.
func DecryptToken(r *keyring.Resolver, profile, token string) (string, error) {
	privateKey, err := r.PrivateKey(profile, "")
	if err != nil {
		return "", err
	}
	plaintext, err := crypto.DecryptValue(privateKey, token)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
