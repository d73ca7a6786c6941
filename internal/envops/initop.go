package envops

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/linux-china/dotenvx-go/internal/envfile"
	"github.com/linux-china/dotenvx-go/internal/keyring"
)

// CanonicalProfiles are the environments a global init provisions, plus
// one reserved pair for the cloud channel.
var CanonicalProfiles = []string{"dev", "test", "perf", "sandbox", "stage", "prod"}

// CloudProfile names the reserved cloud-channel pair.
const CloudProfile = "cloud"

// InitFile creates a dotenv file with a front-matter block, a public-key
// header and one sample entry, and persists the new pair. A file that
// already declares a public key is refused; a plain file without one gets
// the header inserted.
func InitFile(r *keyring.Resolver, path string) (*keyring.KeyPair, error) {
	name := filepath.Base(path)
	pair, err := keyring.Generate(envfile.ProfileFromFileName(name))
	if err != nil {
		return nil, err
	}

	var doc *envfile.Document
	existing, err := envfile.Load(path)
	switch {
	case err == nil:
		if _, ok := existing.PublicKey(); ok {
			return nil, fmt.Errorf("%w: %s", ErrPublicKeyExists, path)
		}
		existing.InsertPublicKey(pair.PublicKey)
		doc = existing
	case os.IsNotExist(err):
		content := envfile.NewFileContent(name, filepath.Base(filepath.Dir(absPath(path))),
			pair.PublicKey, []envfile.Entry{{Key: "KEY1", Value: "value1"}})
		if doc, err = envfile.Parse(name, content); err != nil {
			return nil, err
		}
		doc.Path = absPath(path)
	default:
		return nil, err
	}

	if err := writeFile(doc.Path, doc.String()); err != nil {
		return nil, err
	}
	pair.Path = doc.Path
	pair.Name = filepath.Base(filepath.Dir(doc.Path))
	if err := r.Persist(pair, nil); err != nil {
		return nil, err
	}
	return &pair, nil
}

// InitGlobal provisions $HOME/.env.keys with one pair per canonical
// profile plus the reserved cloud pair, recording each in the keystore.
// Profiles that already have a key line keep it.
func InitGlobal(r *keyring.Resolver) ([]keyring.KeyPair, error) {
	keysPath := filepath.Join(r.Home, keyring.KeysFileName)
	existing := map[string]string{}
	if entries, err := keyring.ReadKeysFile(keysPath); err == nil {
		existing = entries
	}
	profiles := append(append([]string{}, CanonicalProfiles...), CloudProfile)
	var created []keyring.KeyPair
	for _, profile := range profiles {
		keyName := envfile.PrivateKeyNameFor(profile)
		if existing[keyName] != "" {
			continue
		}
		pair, err := keyring.Generate(profile)
		if err != nil {
			return nil, err
		}
		if err := keyring.WritePrivateKey(keysPath, keyName, pair.PrivateKey); err != nil {
			return nil, err
		}
		if err := r.Store().Record(pair); err != nil {
			return nil, err
		}
		created = append(created, pair)
	}
	return created, nil
}
