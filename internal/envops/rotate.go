package envops

import (
	"path/filepath"

	"github.com/linux-china/dotenvx-go/internal/crypto"
	"github.com/linux-china/dotenvx-go/internal/envfile"
	"github.com/linux-china/dotenvx-go/internal/keyring"
)

// Rotate decrypts every encrypted entry with the current private key,
// generates a fresh pair, and re-encrypts exactly the entries that were
// encrypted before. The dotenv file is rewritten once; the keys file and
// the keystore are updated with the new pair. A signed file is re-signed
// under the new key.
func Rotate(r *keyring.Resolver, path string, opts Options) (*Result, error) {
	doc, err := envfile.Load(path)
	if err != nil {
		return nil, err
	}

	var encryptedKeys []string
	var plaintexts [][]byte
	var privateKey string
	for _, entry := range doc.Entries() {
		if !crypto.IsEncrypted(entry.Value) {
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
		encryptedKeys = append(encryptedKeys, entry.Key)
		plaintexts = append(plaintexts, plaintext)
	}

	pair, err := keyring.Generate(doc.Profile)
	if err != nil {
		return nil, err
	}
	doc.InsertPublicKey(pair.PublicKey)
	for i, key := range encryptedKeys {
		token, err := crypto.EncryptValue(pair.PublicKey, plaintexts[i])
		if err != nil {
			return nil, err
		}
		doc.Set(key, token)
	}

	content := doc.String()
	if _, signed := envfile.Signature(content); signed {
		signature, err := crypto.SignMessage(pair.PrivateKey, envfile.RemoveSignature(content))
		if err != nil {
			return nil, err
		}
		content = envfile.WithSignature(content, signature)
	}

	if !opts.Stdout {
		pair.Path = doc.Path
		pair.Name = filepath.Base(filepath.Dir(doc.Path))
		if err := r.Persist(pair, nil); err != nil {
			return nil, err
		}
	}
	return finish(doc, content, true, opts.Stdout)
}
