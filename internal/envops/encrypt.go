package envops

import (
	"os"
	"path/filepath"

	"github.com/linux-china/dotenvx-go/internal/crypto"
	"github.com/linux-china/dotenvx-go/internal/envfile"
	"github.com/linux-china/dotenvx-go/internal/keyring"
)

// EncryptFile encrypts every selected plain entry under the file's public
// key, generating a key pair on first use. Re-running on an already
// encrypted file is a no-op. With opts.Sign the front-matter signature is
// recomputed over the signature-less text.
func EncryptFile(r *keyring.Resolver, path string, opts Options) (*Result, error) {
	doc, err := envfile.Load(path)
	if os.IsNotExist(err) {
		// A missing target becomes a fresh file carrying just the header.
		if doc, err = envfile.Parse(filepath.Base(path), ""); err != nil {
			return nil, err
		}
		doc.Path = absPath(path)
	} else if err != nil {
		return nil, err
	}
	publicKey, _, err := ensureFilePair(r, doc)
	if err != nil {
		return nil, err
	}
	changed := false
	if _, ok := doc.PublicKey(); !ok {
		doc.InsertPublicKey(publicKey)
		changed = true
	}
	selector := newKeySelector(doc.Name, opts.Keys)
	for _, entry := range doc.Entries() {
		if envfile.IsPublicKeyName(entry.Key) || crypto.IsEncrypted(entry.Value) {
			continue
		}
		if !selector.matches(entry.Key) {
			continue
		}
		token, err := crypto.EncryptValue(publicKey, []byte(entry.Value))
		if err != nil {
			return nil, err
		}
		if doc.Set(entry.Key, token) {
			changed = true
		}
	}
	content := doc.String()
	if opts.Sign {
		content, err = signContent(r, doc, content)
		if err != nil {
			return nil, err
		}
	}
	if original, err := os.ReadFile(path); err == nil {
		changed = content != string(original)
	}
	return finish(doc, content, changed, opts.Stdout)
}

// signContent recomputes the signature over the signature-less text and
// places it inside the front matter. ECDSA here is deterministic
// (RFC 6979), so re-signing unchanged content reproduces the same line.
func signContent(r *keyring.Resolver, doc *envfile.Document, content string) (string, error) {
	privateKey, err := filePrivateKey(r, doc)
	if err != nil {
		return "", err
	}
	// The signed message is the final text minus the signature line, so the
	// front-matter block has to exist before the digest is taken.
	base := envfile.EnsureFrontMatter(envfile.RemoveSignature(content))
	signature, err := crypto.SignMessage(privateKey, base)
	if err != nil {
		return "", err
	}
	return envfile.WithSignature(base, signature), nil
}
